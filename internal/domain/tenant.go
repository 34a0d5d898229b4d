package domain

import "strings"

// Tenant represents one school site served by this process.
// Domain is the routing key and is unique across the catalog.
type Tenant struct {
	ID         int64  `json:"id"`
	Domain     string `json:"domain"`
	Name       string `json:"name"`
	ThemeColor string `json:"theme_color,omitempty"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Tagline    string `json:"tagline,omitempty"`
	About      string `json:"about,omitempty"`
	Vision     string `json:"vision,omitempty"`
	Mission    string `json:"mission,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
}

// RoutingKey returns the normalised domain used for host lookups.
func (t Tenant) RoutingKey() string {
	return NormalizeHost(t.Domain)
}

// NormalizeHost lowercases a hostname and strips surrounding whitespace,
// a port suffix and a trailing dot. It returns "" for input that cannot be
// a hostname.
func NormalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "[") {
		// IPv6 literal, optionally with a port.
		end := strings.Index(h, "]")
		if end < 0 {
			return ""
		}
		return h[1:end]
	}
	if i := strings.LastIndex(h, ":"); i >= 0 {
		if strings.Count(h, ":") > 1 {
			return ""
		}
		h = h[:i]
	}
	h = strings.TrimSuffix(h, ".")
	if h == "" || strings.ContainsAny(h, "/ \t?#@") {
		return ""
	}
	return h
}

// ResolutionContext is the derived view of which tenant is active.
// Build it with NewResolutionContext so that IsPlatformMode always matches
// ActiveTenant.
type ResolutionContext struct {
	ActiveTenant              *Tenant `json:"active_tenant"`
	IsPlatformMode            bool    `json:"is_platform_mode"`
	IsDeveloperOverrideActive bool    `json:"is_developer_override_active"`
}

// NewResolutionContext returns a context for the given tenant. A nil tenant
// means platform mode.
func NewResolutionContext(t *Tenant, overridden bool) ResolutionContext {
	return ResolutionContext{
		ActiveTenant:              t,
		IsPlatformMode:            t == nil,
		IsDeveloperOverrideActive: overridden,
	}
}

// TenantID returns the active tenant id, or 0 in platform mode.
func (c ResolutionContext) TenantID() int64 {
	if c.ActiveTenant == nil {
		return 0
	}
	return c.ActiveTenant.ID
}

// Clone returns a context that shares no memory with c.
func (c ResolutionContext) Clone() ResolutionContext {
	if c.ActiveTenant != nil {
		t := *c.ActiveTenant
		c.ActiveTenant = &t
	}
	return c
}
