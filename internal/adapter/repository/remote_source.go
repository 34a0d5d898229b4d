package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// RemoteSource implements every entity strategy against the remote client.
// Each call asks the provider for the client; a nil client is reported as
// ErrBackendUnavailable.
type RemoteSource struct {
	clients ClientProvider
	timeout time.Duration
}

// NewRemoteSource creates a RemoteSource. A zero timeout leaves calls bounded
// by the caller's context only.
func NewRemoteSource(clients ClientProvider, timeout time.Duration) *RemoteSource {
	return &RemoteSource{clients: clients, timeout: timeout}
}

func (s *RemoteSource) client(ctx context.Context) (domain.RemoteClient, context.Context, context.CancelFunc, error) {
	c := s.clients.Client(ctx)
	if c == nil {
		return nil, ctx, func() {}, ErrBackendUnavailable
	}
	if s.timeout <= 0 {
		return c, ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return c, ctx, cancel, nil
}

func (s *RemoteSource) query(ctx context.Context, e domain.Entity, f domain.Filter) (raws []json.RawMessage, err error) {
	c, ctx, cancel, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer recoverRemote("query", e, &err)
	return c.Query(ctx, e, f)
}

func (s *RemoteSource) mutate(ctx context.Context, e domain.Entity, m domain.Mutation) (raw json.RawMessage, err error) {
	c, ctx, cancel, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer recoverRemote(string(m.Op), e, &err)
	return c.Mutate(ctx, e, m)
}

// recoverRemote turns a panic inside the remote client into an error so it
// is handled like any other backend failure.
func recoverRemote(op string, e domain.Entity, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %s %s: %v", ErrRemotePanic, op, e.Name, r)
	}
}

// ListSchools reads the school catalog.
func (s *RemoteSource) ListSchools(ctx context.Context) ([]domain.Tenant, error) {
	raws, err := s.query(ctx, domain.EntitySchools, domain.Filter{OrderBy: "id"})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Tenant](domain.EntitySchools, raws)
}

func (s *RemoteSource) ListPosts(ctx context.Context, schoolID int64) ([]domain.Post, error) {
	raws, err := s.query(ctx, domain.EntityPosts, domain.Filter{
		TenantID:   schoolID,
		Where:      map[string]any{"is_published": true},
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Post](domain.EntityPosts, raws)
}

func (s *RemoteSource) FindPost(ctx context.Context, schoolID int64, slug string) (*domain.Post, error) {
	raws, err := s.query(ctx, domain.EntityPosts, domain.Filter{
		TenantID: schoolID,
		Where:    map[string]any{"is_published": true, "slug": slug},
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	posts, err := decodeAll[domain.Post](domain.EntityPosts, raws)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domain.ErrNotFound
	}
	return &posts[0], nil
}

func (s *RemoteSource) CreatePost(ctx context.Context, schoolID int64, in domain.PostInput) (*domain.Post, error) {
	return write[domain.Post](ctx, s, domain.EntityPosts, domain.OpInsert, schoolID, 0, in)
}

func (s *RemoteSource) UpdatePost(ctx context.Context, schoolID, id int64, in domain.PostInput) (*domain.Post, error) {
	return write[domain.Post](ctx, s, domain.EntityPosts, domain.OpUpdate, schoolID, id, in)
}

func (s *RemoteSource) DeletePost(ctx context.Context, schoolID, id int64) error {
	_, err := s.mutate(ctx, domain.EntityPosts, domain.Mutation{Op: domain.OpDelete, TenantID: schoolID, ID: id})
	return err
}

func (s *RemoteSource) ListStaff(ctx context.Context, schoolID int64) ([]domain.Staff, error) {
	raws, err := s.query(ctx, domain.EntityStaff, domain.Filter{
		TenantID: schoolID,
		Where:    map[string]any{"is_public": true},
		OrderBy:  "sort_order",
	})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Staff](domain.EntityStaff, raws)
}

func (s *RemoteSource) CreateStaff(ctx context.Context, schoolID int64, in domain.StaffInput) (*domain.Staff, error) {
	return write[domain.Staff](ctx, s, domain.EntityStaff, domain.OpInsert, schoolID, 0, in)
}

func (s *RemoteSource) UpdateStaff(ctx context.Context, schoolID, id int64, in domain.StaffInput) (*domain.Staff, error) {
	return write[domain.Staff](ctx, s, domain.EntityStaff, domain.OpUpdate, schoolID, id, in)
}

func (s *RemoteSource) DeleteStaff(ctx context.Context, schoolID, id int64) error {
	_, err := s.mutate(ctx, domain.EntityStaff, domain.Mutation{Op: domain.OpDelete, TenantID: schoolID, ID: id})
	return err
}

func write[T any](ctx context.Context, s *RemoteSource, e domain.Entity, op domain.MutationOp, schoolID, id int64, in any) (*T, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Name, err)
	}
	raw, err := s.mutate(ctx, e, domain.Mutation{Op: op, TenantID: schoolID, ID: id, Payload: payload})
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Name, err)
	}
	return &out, nil
}

func decodeAll[T any](e domain.Entity, raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name, err)
		}
		out = append(out, v)
	}
	return out, nil
}
