package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/schoolsite/internal/domain"
)

const (
	keyPrefix    = "schoolsite"
	idField      = "id"
	createdField = "created_at"
)

// Client implements domain.RemoteClient on Redis. Records of one entity and
// tenant live as JSON values in a single hash keyed by record id; ids come
// from a per-entity counter.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient wraps a go-redis client.
func NewClient(rdb *redis.Client, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, logger: logger.With("component", "redis_client"), now: time.Now}
}

// Open connects with opts and verifies the connection with a ping.
func Open(ctx context.Context, opts *redis.Options, logger *slog.Logger) (*Client, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewClient(rdb, logger), nil
}

func recordsKey(e domain.Entity, tenantID int64) string {
	if !e.Scoped() {
		return keyPrefix + ":" + e.Name
	}
	return fmt.Sprintf("%s:%s:%d", keyPrefix, e.Name, tenantID)
}

func seqKey(e domain.Entity) string {
	return keyPrefix + ":" + e.Name + ":seq"
}

// Query loads the tenant's hash and filters, orders and limits it locally.
// The key itself scopes the read to one tenant.
func (c *Client) Query(ctx context.Context, e domain.Entity, f domain.Filter) ([]json.RawMessage, error) {
	if e.Scoped() && f.TenantID <= 0 {
		return nil, domain.ErrUnscopedQuery
	}

	values, err := c.rdb.HGetAll(ctx, recordsKey(e, f.TenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALL %s: %w", e.Name, err)
	}
	return selectRecords(values, e, f, c.logger)
}

// Mutate applies an insert, update or delete on the tenant's hash.
func (c *Client) Mutate(ctx context.Context, e domain.Entity, m domain.Mutation) (json.RawMessage, error) {
	if e.Scoped() && m.TenantID <= 0 {
		return nil, domain.ErrUnscopedQuery
	}
	key := recordsKey(e, m.TenantID)

	switch m.Op {
	case domain.OpInsert:
		id, err := c.rdb.Incr(ctx, seqKey(e)).Result()
		if err != nil {
			return nil, fmt.Errorf("INCR %s: %w", seqKey(e), err)
		}
		record, err := insertRecord(m.Payload, e, id, m.TenantID, c.now())
		if err != nil {
			return nil, err
		}
		if err := c.rdb.HSet(ctx, key, strconv.FormatInt(id, 10), string(record)).Err(); err != nil {
			return nil, fmt.Errorf("HSET %s: %w", e.Name, err)
		}
		return record, nil

	case domain.OpUpdate:
		field := strconv.FormatInt(m.ID, 10)
		current, err := c.rdb.HGet(ctx, key, field).Result()
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("HGET %s: %w", e.Name, err)
		}
		record, err := mergeRecord([]byte(current), m.Payload, e, m.ID, m.TenantID)
		if err != nil {
			return nil, err
		}
		if err := c.rdb.HSet(ctx, key, field, string(record)).Err(); err != nil {
			return nil, fmt.Errorf("HSET %s: %w", e.Name, err)
		}
		return record, nil

	case domain.OpDelete:
		n, err := c.rdb.HDel(ctx, key, strconv.FormatInt(m.ID, 10)).Result()
		if err != nil {
			return nil, fmt.Errorf("HDEL %s: %w", e.Name, err)
		}
		if n == 0 {
			return nil, domain.ErrNotFound
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported mutation %q", m.Op)
	}
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

type record struct {
	raw    json.RawMessage
	fields map[string]any
}

// selectRecords applies the filter to raw hash values. Records whose tenant
// column disagrees with the filter are skipped.
func selectRecords(values map[string]string, e domain.Entity, f domain.Filter, logger *slog.Logger) ([]json.RawMessage, error) {
	records := make([]record, 0, len(values))
	for field, value := range values {
		fields, err := decodeFields([]byte(value))
		if err != nil {
			logger.Warn("skipping undecodable record", "entity", e.Name, "field", field, "error", err)
			continue
		}
		if e.Scoped() && !equalJSON(fields[e.TenantColumn], f.TenantID) {
			logger.Warn("skipping record stored under the wrong tenant", "entity", e.Name, "field", field)
			continue
		}
		if !matchesAll(fields, f.Where) {
			continue
		}
		records = append(records, record{raw: json.RawMessage(value), fields: fields})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return compareValues(records[i].fields[idField], records[j].fields[idField]) < 0
	})
	if f.OrderBy != "" {
		sort.SliceStable(records, func(i, j int) bool {
			cmp := compareValues(records[i].fields[f.OrderBy], records[j].fields[f.OrderBy])
			if f.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if f.Limit > 0 && len(records) > f.Limit {
		records = records[:f.Limit]
	}

	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = r.raw
	}
	return out, nil
}

// insertRecord builds a new record from payload and stamps created_at when
// the payload does not carry one.
func insertRecord(payload json.RawMessage, e domain.Entity, id, tenantID int64, now time.Time) (json.RawMessage, error) {
	stamp, err := json.Marshal(map[string]string{createdField: now.UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return nil, err
	}
	return mergeRecord(stamp, payload, e, id, tenantID)
}

// mergeRecord overlays payload on current and pins the id and tenant column.
func mergeRecord(current, payload json.RawMessage, e domain.Entity, id, tenantID int64) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &merged); err != nil {
			return nil, fmt.Errorf("decode stored %s: %w", e.Name, err)
		}
	}
	if len(payload) > 0 {
		var patch map[string]json.RawMessage
		if err := json.Unmarshal(payload, &patch); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Name, err)
		}
		for k, v := range patch {
			merged[k] = v
		}
	}
	merged[idField] = json.RawMessage(strconv.FormatInt(id, 10))
	if e.Scoped() {
		merged[e.TenantColumn] = json.RawMessage(strconv.FormatInt(tenantID, 10))
	}
	return json.Marshal(merged)
}

func decodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func matchesAll(fields map[string]any, where map[string]any) bool {
	for k, want := range where {
		if !equalJSON(fields[k], want) {
			return false
		}
	}
	return true
}

// equalJSON compares two values by their JSON encoding.
func equalJSON(got, want any) bool {
	a, err := json.Marshal(got)
	if err != nil {
		return false
	}
	b, err := json.Marshal(want)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// compareValues orders numbers numerically, RFC 3339 timestamps by instant,
// other strings lexically and nil first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if an, ok := a.(json.Number); ok {
		if bn, ok := b.(json.Number); ok {
			af, _ := an.Float64()
			bf, _ := bn.Float64()
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if at, bt, ok := parseTimes(as, bs); ok {
				return at.Compare(bt)
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func parseTimes(a, b string) (time.Time, time.Time, bool) {
	at, err := time.Parse(time.RFC3339Nano, a)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bt, err := time.Parse(time.RFC3339Nano, b)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return at, bt, true
}
