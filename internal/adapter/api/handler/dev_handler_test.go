package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/V4T54L/schoolsite/internal/domain"
)

type mockPreview struct {
	current domain.ResolutionContext
}

func (m *mockPreview) Tenants() []domain.Tenant {
	return []domain.Tenant{{ID: 1, Domain: "smkpelita.mysite.test"}}
}

func (m *mockPreview) Current() domain.ResolutionContext {
	return m.current
}

func TestDevHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("List Tenants", func(t *testing.T) {
		h := NewDevHandler(&mockPreview{}, logger)

		rr := httptest.NewRecorder()
		h.ListTenants(rr, httptest.NewRequest(http.MethodGet, "/dev/tenants", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", rr.Code)
		}
		var tenants []domain.Tenant
		if err := json.Unmarshal(rr.Body.Bytes(), &tenants); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(tenants) != 1 || tenants[0].ID != 1 {
			t.Errorf("unexpected tenants %+v", tenants)
		}
	})

	t.Run("Get Context", func(t *testing.T) {
		h := NewDevHandler(&mockPreview{current: domain.NewResolutionContext(&domain.Tenant{ID: 5}, true)}, logger)

		rr := httptest.NewRecorder()
		h.GetContext(rr, httptest.NewRequest(http.MethodGet, "/dev/context", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", rr.Code)
		}
		var rc domain.ResolutionContext
		if err := json.Unmarshal(rr.Body.Bytes(), &rc); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if rc.TenantID() != 5 || !rc.IsDeveloperOverrideActive {
			t.Errorf("unexpected context %+v", rc)
		}
	})
}
