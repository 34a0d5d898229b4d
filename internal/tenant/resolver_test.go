package tenant

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/domain"
)

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(mustCatalog(t, testTenants()), logger, metrics.NewSiteMetrics(prometheus.NewRegistry()), opts...)
}

func TestResolver_UnknownHostsArePlatformMode(t *testing.T) {
	r := newTestResolver(t)

	for _, host := range []string{"", "   ", "unknown.mysite.test", "mysite.test", "sub.smkpelita.mysite.test", "http://smkpelita.mysite.test", "::::"} {
		t.Run(host, func(t *testing.T) {
			assert.Nil(t, r.ResolveFromHost(host))

			ctx := r.ContextFor(host)
			assert.Nil(t, ctx.ActiveTenant)
			assert.True(t, ctx.IsPlatformMode)
			assert.False(t, ctx.IsDeveloperOverrideActive)
		})
	}
}

func TestResolver_KnownHostsResolveCaseInsensitively(t *testing.T) {
	r := newTestResolver(t)

	for _, tenant := range testTenants() {
		for _, host := range []string{tenant.RoutingKey(), tenant.Domain, fmt.Sprintf("%s:443", tenant.Domain)} {
			got := r.ResolveFromHost(host)
			require.NotNil(t, got, host)
			assert.Equal(t, tenant.ID, got.ID)

			ctx := r.ContextFor(host)
			assert.False(t, ctx.IsPlatformMode)
			assert.Equal(t, tenant.ID, ctx.TenantID())
		}
	}
}

func TestResolver_PlatformDomains(t *testing.T) {
	r := newTestResolver(t, WithPlatformDomains([]string{"MySite.test", ""}))

	ctx := r.ContextFor("mysite.test")
	assert.True(t, ctx.IsPlatformMode)
	assert.Nil(t, r.ResolveFromHost("mysite.test"))
}

func TestResolver_SetHost(t *testing.T) {
	r := newTestResolver(t)
	assert.True(t, r.ActiveContext().IsPlatformMode, "starts in platform mode")

	r.SetHost("SMKPELITA.mysite.test")
	assert.Equal(t, int64(1), r.ActiveContext().TenantID())

	r.SetHost("nowhere.test")
	assert.True(t, r.ActiveContext().IsPlatformMode)
}

func TestResolver_SetHostUnchangedDoesNotNotify(t *testing.T) {
	r := newTestResolver(t)

	var notified int
	r.Subscribe(func(domain.ResolutionContext) { notified++ })

	r.SetHost("smkpelita.mysite.test")
	r.SetHost("SMKPELITA.mysite.test:8080")
	r.SetHost("sman3.mysite.test")
	assert.Equal(t, 2, notified)
}

func TestResolver_ActiveContextIsACopy(t *testing.T) {
	r := newTestResolver(t)

	var observed domain.ResolutionContext
	r.Subscribe(func(ctx domain.ResolutionContext) { observed = ctx })
	r.SetHost("smkpelita.mysite.test")

	got := r.ActiveContext()
	require.NotNil(t, got.ActiveTenant)
	got.ActiveTenant.ID = 99
	got.ActiveTenant.Name = "Tampered"
	require.NotNil(t, observed.ActiveTenant)
	observed.ActiveTenant.ID = 98

	again := r.ActiveContext()
	assert.Equal(t, int64(1), again.TenantID())
	assert.NotEqual(t, "Tampered", again.ActiveTenant.Name)
	assert.Equal(t, int64(1), r.ResolveFromHost("smkpelita.mysite.test").ID)
}

func TestResolver_OverrideDisabled(t *testing.T) {
	r := newTestResolver(t, WithDeveloperMode(false))
	r.SetHost("smkpelita.mysite.test")
	before := r.ActiveContext()

	var notified int
	r.Subscribe(func(domain.ResolutionContext) { notified++ })

	id := int64(5)
	assert.ErrorIs(t, r.SetDeveloperOverride(&id), ErrDeveloperModeDisabled)
	assert.ErrorIs(t, r.SetDeveloperOverride(nil), ErrDeveloperModeDisabled)
	assert.ErrorIs(t, r.ClearDeveloperOverride(), ErrDeveloperModeDisabled)

	assert.Equal(t, before, r.ActiveContext())
	assert.Equal(t, int64(2), r.ContextFor("sman3.mysite.test").TenantID())
	assert.False(t, r.DeveloperModeEnabled())
	assert.Zero(t, notified, "rejected overrides must not notify")
}

func TestResolver_Subscribe(t *testing.T) {
	r := newTestResolver(t)

	var got []domain.ResolutionContext
	cancel := r.Subscribe(func(ctx domain.ResolutionContext) {
		got = append(got, ctx)
	})

	r.SetHost("smkpelita.mysite.test")
	r.SetHost("sman3.mysite.test")
	cancel()
	cancel()
	r.SetHost("sdn5.mysite.test")

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].TenantID())
	assert.Equal(t, int64(2), got[1].TenantID())
}

func TestResolver_ContextForIsolatedPerRequest(t *testing.T) {
	r := newTestResolver(t)
	hosts := map[string]int64{
		"smkpelita.mysite.test": 1,
		"sman3.mysite.test":     2,
		"sdn5.mysite.test":      5,
		"unknown.test":          0,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 400)
	for i := 0; i < 100; i++ {
		for host, want := range hosts {
			host, want := host, want
			wg.Add(1)
			go func() {
				defer wg.Done()
				if got := r.ContextFor(host).TenantID(); got != want {
					errs <- fmt.Errorf("ContextFor(%q) = %d, want %d", host, got, want)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
