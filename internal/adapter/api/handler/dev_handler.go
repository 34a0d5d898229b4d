package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// Preview is the read side of the developer preview. The override itself is
// only changed in-process.
type Preview interface {
	Tenants() []domain.Tenant
	Current() domain.ResolutionContext
}

// DevHandler exposes the developer preview state. It is only mounted when
// developer mode is enabled.
type DevHandler struct {
	uc     Preview
	logger *slog.Logger
}

// NewDevHandler creates a new DevHandler.
func NewDevHandler(uc Preview, logger *slog.Logger) *DevHandler {
	return &DevHandler{uc: uc, logger: logger}
}

// ListTenants handles GET /dev/tenants
func (h *DevHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, h.uc.Tenants())
}

// GetContext handles GET /dev/context
func (h *DevHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, h.uc.Current())
}
