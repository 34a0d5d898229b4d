package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist for the tenant.
	ErrNotFound = errors.New("record not found")

	// ErrUnscopedQuery is returned when a scoped entity is accessed without a tenant id.
	ErrUnscopedQuery = errors.New("query on tenant-scoped entity without tenant id")

	// ErrInvalidTenant is returned for tenant ids that cannot identify a school.
	ErrInvalidTenant = errors.New("invalid tenant id")
)
