// Package tenant maps request hostnames to the school they belong to.
package tenant

import (
	"errors"
	"fmt"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// ErrDuplicateRoutingKey is returned when two tenants share a routing key.
var ErrDuplicateRoutingKey = errors.New("duplicate routing key")

// Catalog is an immutable index of tenants by routing key and id.
type Catalog struct {
	tenants []domain.Tenant
	byKey   map[string]int
	byID    map[int64]int
}

// NewCatalog indexes tenants. Tenants without a usable id or routing key are
// rejected, as are duplicates.
func NewCatalog(tenants []domain.Tenant) (*Catalog, error) {
	c := &Catalog{
		tenants: make([]domain.Tenant, 0, len(tenants)),
		byKey:   make(map[string]int, len(tenants)),
		byID:    make(map[int64]int, len(tenants)),
	}
	for _, t := range tenants {
		if t.ID <= 0 {
			return nil, fmt.Errorf("tenant %q: %w", t.Domain, domain.ErrInvalidTenant)
		}
		key := t.RoutingKey()
		if key == "" {
			return nil, fmt.Errorf("tenant %d: empty routing key: %w", t.ID, domain.ErrInvalidTenant)
		}
		if _, ok := c.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoutingKey, key)
		}
		if _, ok := c.byID[t.ID]; ok {
			return nil, fmt.Errorf("tenant %d listed twice: %w", t.ID, domain.ErrInvalidTenant)
		}
		c.byKey[key] = len(c.tenants)
		c.byID[t.ID] = len(c.tenants)
		c.tenants = append(c.tenants, t)
	}
	return c, nil
}

// Lookup returns a copy of the tenant whose routing key equals the
// normalised host, or nil.
func (c *Catalog) Lookup(host string) *domain.Tenant {
	key := domain.NormalizeHost(host)
	if key == "" {
		return nil
	}
	i, ok := c.byKey[key]
	if !ok {
		return nil
	}
	t := c.tenants[i]
	return &t
}

// ByID returns a copy of the tenant with the given id, or nil.
func (c *Catalog) ByID(id int64) *domain.Tenant {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	t := c.tenants[i]
	return &t
}

// Len returns the number of tenants.
func (c *Catalog) Len() int {
	return len(c.tenants)
}

// Tenants returns a copy of every tenant in catalog order.
func (c *Catalog) Tenants() []domain.Tenant {
	out := make([]domain.Tenant, len(c.tenants))
	copy(out, c.tenants)
	return out
}
