package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/schoolsite/internal/adapter/api/handler"
	"github.com/V4T54L/schoolsite/internal/adapter/api/middleware"
	"github.com/V4T54L/schoolsite/internal/adapter/metrics"
	"github.com/V4T54L/schoolsite/internal/adapter/repository"
	"github.com/V4T54L/schoolsite/internal/adapter/repository/fixture"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/domain/mocks"
	"github.com/V4T54L/schoolsite/internal/pkg/config"
	"github.com/V4T54L/schoolsite/internal/pkg/credentials"
	"github.com/V4T54L/schoolsite/internal/tenant"
	"github.com/V4T54L/schoolsite/internal/usecase"
)

const adminKey = "test-admin-key"

// newTestServer wires the full stack over the embedded fixture dataset.
func newTestServer(t *testing.T, devMode bool) http.Handler {
	t.Helper()
	h, _ := newTestStack(t, devMode)
	return h
}

func newTestStack(t *testing.T, devMode bool) (http.Handler, *usecase.PreviewUseCase) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewSiteMetrics(prometheus.NewRegistry())

	cfg, err := config.LoadFrom(map[string]string{
		"ADMIN_API_KEY":    adminKey,
		"ADMIN_RATE_BURST": "100",
	})
	require.NoError(t, err)

	ds, err := fixture.Load("")
	require.NoError(t, err)
	repos := repository.New(credentials.Load(nil), &mocks.ClientProvider{}, fixture.NewStore(ds, logger), 0, logger, m)

	catalog, err := tenant.NewCatalog(repos.Schools.ListSchools(context.Background()))
	require.NoError(t, err)
	resolver := tenant.NewResolver(catalog, logger, m, tenant.WithDeveloperMode(devMode))

	preview := usecase.NewPreviewUseCase(resolver, resolver)
	broker := handler.NewSSEBroker(preview, logger)
	t.Cleanup(broker.Close)

	return NewRouter(cfg, logger, Deps{
		Resolver: resolver,
		Site:     usecase.NewSiteContentUseCase(resolver, repos.Posts, repos.Staff, logger),
		Admin:    usecase.NewAdminContentUseCase(repos.Posts, repos.Staff, logger),
		Preview:  preview,
		Events:   broker,
		Source:   repos.Source,
	}, resolver.DeveloperModeEnabled()), preview
}

func do(t *testing.T, h http.Handler, method, host, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return doFrom(t, h, "", method, host, path, body, headers)
}

// doFrom is do with an explicit peer address; empty keeps the httptest default.
func doFrom(t *testing.T, h http.Handler, remoteAddr, method, host, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Host = host
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestRouter_PublicContent(t *testing.T) {
	h := newTestServer(t, false)

	rr := do(t, h, http.MethodGet, "smkpelita.mysite.test", "/api/site", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	site := decode[domain.ResolutionContext](t, rr)
	assert.Equal(t, int64(1), site.TenantID())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	rr = do(t, h, http.MethodGet, "SMKPELITA.mysite.test:8080", "/api/posts", "", nil)
	posts := decode[[]domain.Post](t, rr)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, int64(1), p.SchoolID)
	}

	rr = do(t, h, http.MethodGet, "smkpelita.mysite.test", "/api/posts/science-olympiad", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "another school's post is not reachable by slug")

	rr = do(t, h, http.MethodGet, "sman3.mysite.test", "/api/posts/science-olympiad", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "unknown.test", "/api/staff", "", nil)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "unknown.test", "/health", "", nil)
	assert.JSONEq(t, `{"status":"ok","source":"fixture"}`, rr.Body.String())
}

func TestRouter_AdminFlow(t *testing.T) {
	h := newTestServer(t, false)
	host := "sman3.mysite.test"
	key := map[string]string{middleware.AdminKeyHeader: adminKey}

	rr := do(t, h, http.MethodPost, host, "/api/admin/staff", `{"name": "Pak Joko", "is_public": true}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, host, "/api/admin/staff", `{"name": "Pak Joko", "position": "Librarian", "is_public": true, "sort_order": 9}`, key)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.Staff](t, rr)
	assert.Equal(t, int64(2), created.SchoolID, "admin writes are scoped to the request host")

	staff := decode[[]domain.Staff](t, do(t, h, http.MethodGet, host, "/api/staff", "", nil))
	assert.Equal(t, "Pak Joko", staff[len(staff)-1].Name)

	other := decode[[]domain.Staff](t, do(t, h, http.MethodGet, "smkpelita.mysite.test", "/api/staff", "", nil))
	for _, st := range other {
		assert.NotEqual(t, "Pak Joko", st.Name)
	}

	rr = do(t, h, http.MethodDelete, "smkpelita.mysite.test", "/api/admin/staff/"+strconv.FormatInt(created.ID, 10), "", key)
	assert.Equal(t, http.StatusNotFound, rr.Code, "cannot delete another school's staff")

	rr = do(t, h, http.MethodDelete, host, "/api/admin/staff/"+strconv.FormatInt(created.ID, 10), "", key)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodPost, "unknown.test", "/api/admin/posts", `{"title": "Hi"}`, key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, host, "/api/admin/posts", `{"title": "Sports Day", "is_published": true}`, key)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "sports-day", decode[domain.Post](t, rr).Slug)
}

func TestRouter_DevRoutes(t *testing.T) {
	t.Run("not mounted without developer mode", func(t *testing.T) {
		h := newTestServer(t, false)
		rr := doFrom(t, h, "127.0.0.1:50000", http.MethodGet, "localhost", "/dev/context", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
