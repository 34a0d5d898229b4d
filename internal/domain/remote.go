package domain

import (
	"context"
	"encoding/json"
)

// Entity names a record collection on the remote backend. TenantColumn is
// the field that scopes records to a school; an empty TenantColumn marks an
// unscoped collection such as the school catalog itself.
type Entity struct {
	Name         string
	TenantColumn string
}

// Scoped reports whether every access to the entity must carry a tenant id.
func (e Entity) Scoped() bool {
	return e.TenantColumn != ""
}

var (
	EntitySchools = Entity{Name: "schools"}
	EntityPosts   = Entity{Name: "posts", TenantColumn: "school_id"}
	EntityStaff   = Entity{Name: "staff", TenantColumn: "school_id"}
)

// Filter describes a tenant-scoped read. Where holds equality predicates.
type Filter struct {
	TenantID   int64
	Where      map[string]any
	OrderBy    string
	Descending bool
	Limit      int
}

// MutationOp enumerates write operations.
type MutationOp string

const (
	OpInsert MutationOp = "insert"
	OpUpdate MutationOp = "update"
	OpDelete MutationOp = "delete"
)

// Mutation describes a tenant-scoped write. ID is ignored for inserts.
// Payload is a JSON object of column values.
type Mutation struct {
	Op       MutationOp
	TenantID int64
	ID       int64
	Payload  json.RawMessage
}

// RemoteClient is the capability the data layer needs from a remote backend.
// Implementations must scope every access to a scoped entity by the tenant
// id on the server side and return ErrUnscopedQuery when it is missing.
type RemoteClient interface {
	// Query returns the matching records as JSON objects.
	Query(ctx context.Context, entity Entity, filter Filter) ([]json.RawMessage, error)

	// Mutate applies a write and returns the resulting record, or nil for deletes.
	Mutate(ctx context.Context, entity Entity, m Mutation) (json.RawMessage, error)

	Close() error
}
