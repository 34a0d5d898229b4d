package middleware

import (
	"context"
	"net/http"

	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/tenant"
)

// ContextResolver resolves the tenant context of a request host.
type ContextResolver interface {
	ContextFor(host string) domain.ResolutionContext
}

type resolutionKey struct{}

// Tenant resolves the school a request is addressed to and stores the
// resulting context on the request.
func Tenant(resolver ContextResolver, trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := resolver.ContextFor(tenant.HostFromRequest(r, trustForwarded))
			next.ServeHTTP(w, r.WithContext(WithResolution(r.Context(), rc)))
		})
	}
}

// WithResolution returns a copy of ctx carrying rc.
func WithResolution(ctx context.Context, rc domain.ResolutionContext) context.Context {
	return context.WithValue(ctx, resolutionKey{}, rc)
}

// ResolutionFrom returns the context stored by Tenant. Requests that never
// went through Tenant are in platform mode.
func ResolutionFrom(ctx context.Context) domain.ResolutionContext {
	rc, ok := ctx.Value(resolutionKey{}).(domain.ResolutionContext)
	if !ok {
		return domain.NewResolutionContext(nil, false)
	}
	return rc
}
