package tenant

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/domain"
)

// ErrDeveloperModeDisabled is returned by override setters when developer
// mode is off or compiled out.
var ErrDeveloperModeDisabled = errors.New("developer mode is disabled")

const (
	modeTenant   = "tenant"
	modePlatform = "platform"
	modeUnknown  = "unknown"
	modeOverride = "override"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithDeveloperMode allows the developer override. It has no effect in
// binaries built with the production tag.
func WithDeveloperMode(enabled bool) Option {
	return func(r *Resolver) {
		r.override = newDeveloperOverride(enabled)
	}
}

// WithPlatformDomains lists hosts that serve the platform landing page.
// They resolve to platform mode like any unknown host but are not reported
// as misses.
func WithPlatformDomains(domains []string) Option {
	return func(r *Resolver) {
		for _, d := range domains {
			if h := domain.NormalizeHost(d); h != "" {
				r.platform[h] = struct{}{}
			}
		}
	}
}

// Resolver turns hostnames into resolution contexts.
//
// ContextFor is safe for concurrent per-request use. SetHost and
// ActiveContext keep one process-wide context for single-operator tooling
// such as the preview stream. The developer override applies to both.
type Resolver struct {
	catalog  *Catalog
	logger   *slog.Logger
	metrics  *metrics.SiteMetrics
	platform map[string]struct{}

	// writeMu serialises recomputation so observers see changes in order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	override  *developerOverride
	host      string
	active    domain.ResolutionContext
	observers map[int]func(domain.ResolutionContext)
	nextObs   int
}

// NewResolver creates a Resolver over catalog. The active context starts in
// platform mode until SetHost is called.
func NewResolver(catalog *Catalog, logger *slog.Logger, m *metrics.SiteMetrics, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:   catalog,
		logger:    logger.With("component", "tenant_resolver"),
		metrics:   m,
		platform:  make(map[string]struct{}),
		override:  newDeveloperOverride(false),
		active:    domain.NewResolutionContext(nil, false),
		observers: make(map[int]func(domain.ResolutionContext)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.override.enabled() {
		r.logger.Warn("developer override enabled; any tenant can be previewed from any host")
	}
	return r
}

// ResolveFromHost returns the tenant whose routing key matches host exactly,
// ignoring case, port and a trailing dot. Unknown, empty or malformed hosts
// yield nil. The developer override is not consulted.
func (r *Resolver) ResolveFromHost(host string) *domain.Tenant {
	return r.catalog.Lookup(host)
}

// Tenants returns every school in the catalog.
func (r *Resolver) Tenants() []domain.Tenant {
	return r.catalog.Tenants()
}

// ContextFor resolves the context of one request addressed to host.
func (r *Resolver) ContextFor(host string) domain.ResolutionContext {
	r.mu.RLock()
	ctx, mode := r.compute(host)
	r.mu.RUnlock()

	r.metrics.Resolution(mode)
	return ctx
}

// SetHost records the host of the process-wide context and notifies
// observers when it changed.
func (r *Resolver) SetHost(host string) {
	host = domain.NormalizeHost(host)
	r.mu.RLock()
	unchanged := host == r.host
	r.mu.RUnlock()
	if unchanged {
		return
	}
	r.update(func() error {
		r.host = host
		return nil
	})
}

// ActiveContext returns a snapshot of the process-wide context.
func (r *Resolver) ActiveContext() domain.ResolutionContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active.Clone()
}

// DeveloperModeEnabled reports whether the override can be used.
func (r *Resolver) DeveloperModeEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.override.enabled()
}

// SetDeveloperOverride pins the active tenant to id, or to platform mode when
// id is nil, regardless of the host. The latest call wins. An id missing from
// the catalog is logged and treated as platform mode.
func (r *Resolver) SetDeveloperOverride(id *int64) error {
	return r.update(func() error {
		if err := r.override.set(id); err != nil {
			return err
		}
		if id != nil && r.catalog.ByID(*id) == nil {
			r.logger.Warn("developer override names an unknown tenant, using platform mode", "tenant_id", *id)
		}
		return nil
	})
}

// ClearDeveloperOverride returns to host-based resolution.
func (r *Resolver) ClearDeveloperOverride() error {
	return r.update(r.override.clear)
}

// Subscribe registers fn to receive the process-wide context after every
// recomputation. fn must not call SetHost or the override setters. The
// returned function unregisters fn.
func (r *Resolver) Subscribe(fn func(domain.ResolutionContext)) func() {
	r.mu.Lock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}

func (r *Resolver) update(change func() error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	if err := change(); err != nil {
		r.mu.Unlock()
		return err
	}
	ctx, mode := r.compute(r.host)
	r.active = ctx
	_, overridden := r.override.current()
	observers := make([]func(domain.ResolutionContext), 0, len(r.observers))
	for _, fn := range r.observers {
		observers = append(observers, fn)
	}
	r.mu.Unlock()

	r.metrics.Resolution(mode)
	r.metrics.SetOverrideActive(overridden)
	r.logger.Debug("resolution context changed",
		"mode", mode,
		"tenant_id", ctx.TenantID(),
		"override", ctx.IsDeveloperOverrideActive,
	)
	for _, fn := range observers {
		fn(ctx.Clone())
	}
	return nil
}

// compute must be called with r.mu held.
func (r *Resolver) compute(host string) (domain.ResolutionContext, string) {
	if id, ok := r.override.current(); ok {
		if id == nil {
			return domain.NewResolutionContext(nil, true), modeOverride
		}
		return domain.NewResolutionContext(r.catalog.ByID(*id), true), modeOverride
	}

	if t := r.catalog.Lookup(host); t != nil {
		return domain.NewResolutionContext(t, false), modeTenant
	}
	if _, ok := r.platform[domain.NormalizeHost(host)]; ok || host == "" {
		return domain.NewResolutionContext(nil, false), modePlatform
	}
	r.logger.Debug("no tenant for host", "host", host)
	return domain.NewResolutionContext(nil, false), modeUnknown
}
