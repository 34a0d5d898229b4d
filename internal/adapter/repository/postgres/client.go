package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/V4T54L/schoolsite/internal/domain"
)

const idColumn = "id"

var errNothingToUpdate = errors.New("update payload has no columns")

// Client implements domain.RemoteClient on PostgreSQL. Each entity maps to
// the table of the same name; rows are returned as row_to_json objects.
type Client struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClient wraps an open database handle.
func NewClient(db *sql.DB, logger *slog.Logger) *Client {
	return &Client{db: db, logger: logger.With("component", "postgres_client")}
}

// Open connects to dsn and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewClient(db, logger), nil
}

// Query runs a tenant-scoped SELECT.
func (c *Client) Query(ctx context.Context, e domain.Entity, f domain.Filter) ([]json.RawMessage, error) {
	if e.Scoped() && f.TenantID <= 0 {
		return nil, domain.ErrUnscopedQuery
	}

	query, args := buildSelect(e, f)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", e.Name, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", e.Name, err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", e.Name, err)
	}
	return out, nil
}

// Mutate applies an insert, update or delete. The tenant column is always
// taken from m.TenantID, never from the payload.
func (c *Client) Mutate(ctx context.Context, e domain.Entity, m domain.Mutation) (json.RawMessage, error) {
	if e.Scoped() && m.TenantID <= 0 {
		return nil, domain.ErrUnscopedQuery
	}

	switch m.Op {
	case domain.OpInsert:
		return c.insert(ctx, e, m)
	case domain.OpUpdate:
		return c.update(ctx, e, m)
	case domain.OpDelete:
		return nil, c.delete(ctx, e, m)
	default:
		return nil, fmt.Errorf("unsupported mutation %q", m.Op)
	}
}

func (c *Client) insert(ctx context.Context, e domain.Entity, m domain.Mutation) (json.RawMessage, error) {
	payload, cols, err := preparePayload(e, m, true)
	if err != nil {
		return nil, err
	}

	table := pq.QuoteIdentifier(e.Name)
	colList := quoteAll(cols)
	query := fmt.Sprintf(
		"INSERT INTO %s AS t (%s) SELECT %s FROM json_populate_record(NULL::%s, $1::json) RETURNING row_to_json(t)::text",
		table, colList, colList, table,
	)

	var raw string
	if err := c.db.QueryRowContext(ctx, query, payload).Scan(&raw); err != nil {
		return nil, fmt.Errorf("insert %s: %w", e.Name, err)
	}
	return json.RawMessage(raw), nil
}

func (c *Client) update(ctx context.Context, e domain.Entity, m domain.Mutation) (json.RawMessage, error) {
	payload, cols, err := preparePayload(e, m, false)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errNothingToUpdate
	}

	table := pq.QuoteIdentifier(e.Name)
	colList := quoteAll(cols)
	query := fmt.Sprintf(
		"UPDATE %s AS t SET (%s) = (SELECT %s FROM json_populate_record(NULL::%s, $1::json)) WHERE t.%s = $2",
		table, colList, colList, table, pq.QuoteIdentifier(idColumn),
	)
	args := []any{payload, m.ID}
	if e.Scoped() {
		query += " AND t." + pq.QuoteIdentifier(e.TenantColumn) + " = $3"
		args = append(args, m.TenantID)
	}
	query += " RETURNING row_to_json(t)::text"

	var raw string
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", e.Name, err)
	}
	return json.RawMessage(raw), nil
}

func (c *Client) delete(ctx context.Context, e domain.Entity, m domain.Mutation) error {
	query := fmt.Sprintf("DELETE FROM %s AS t WHERE t.%s = $1", pq.QuoteIdentifier(e.Name), pq.QuoteIdentifier(idColumn))
	args := []any{m.ID}
	if e.Scoped() {
		query += " AND t." + pq.QuoteIdentifier(e.TenantColumn) + " = $2"
		args = append(args, m.TenantID)
	}

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", e.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", e.Name, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close closes the underlying database handle.
func (c *Client) Close() error {
	return c.db.Close()
}

func buildSelect(e domain.Entity, f domain.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT row_to_json(t)::text FROM ")
	b.WriteString(pq.QuoteIdentifier(e.Name))
	b.WriteString(" AS t")

	var conds []string
	var args []any
	if e.Scoped() {
		args = append(args, f.TenantID)
		conds = append(conds, fmt.Sprintf("t.%s = $%d", pq.QuoteIdentifier(e.TenantColumn), len(args)))
	}
	for _, col := range sortedKeys(f.Where) {
		args = append(args, f.Where[col])
		conds = append(conds, fmt.Sprintf("t.%s = $%d", pq.QuoteIdentifier(col), len(args)))
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	if f.OrderBy != "" {
		b.WriteString(" ORDER BY t.")
		b.WriteString(pq.QuoteIdentifier(f.OrderBy))
		if f.Descending {
			b.WriteString(" DESC")
		}
		if f.OrderBy != idColumn {
			b.WriteString(", t.")
			b.WriteString(pq.QuoteIdentifier(idColumn))
		}
	}
	if f.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", f.Limit)
	}
	return b.String(), args
}

// preparePayload pins the tenant column, drops the id column and returns the
// payload as a JSON string with its sorted column list.
func preparePayload(e domain.Entity, m domain.Mutation, pinTenant bool) (string, []string, error) {
	fields := map[string]json.RawMessage{}
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &fields); err != nil {
			return "", nil, fmt.Errorf("decode %s payload: %w", e.Name, err)
		}
	}
	delete(fields, idColumn)
	if e.Scoped() {
		if pinTenant {
			fields[e.TenantColumn] = json.RawMessage(fmt.Sprintf("%d", m.TenantID))
		} else {
			delete(fields, e.TenantColumn)
		}
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", e.Name, err)
	}
	return string(payload), sortedKeys(fields), nil
}

func quoteAll(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	return strings.Join(quoted, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
