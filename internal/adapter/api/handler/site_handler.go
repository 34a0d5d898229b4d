package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/schoolsite/internal/adapter/api/middleware"
	"github.com/V4T54L/schoolsite/internal/domain"
)

// SiteContent is the public content use case.
type SiteContent interface {
	Posts(ctx context.Context, rc domain.ResolutionContext) []domain.Post
	Post(ctx context.Context, rc domain.ResolutionContext, slug string) (*domain.Post, error)
	Staff(ctx context.Context, rc domain.ResolutionContext) []domain.Staff
}

// SiteHandler serves the public pages' data for the school a request
// resolved to.
type SiteHandler struct {
	uc     SiteContent
	source string
	logger *slog.Logger
}

// NewSiteHandler creates a new SiteHandler. source names the data source in
// use and is reported by the health check.
func NewSiteHandler(uc SiteContent, source string, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{uc: uc, source: source, logger: logger}
}

// HealthCheck is a simple health check endpoint.
func (h *SiteHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok", "source": h.source})
}

// GetSite returns the resolution context of the request.
// GET /api/site
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, middleware.ResolutionFrom(r.Context()))
}

// ListPosts returns the published posts of the school.
// GET /api/posts
func (h *SiteHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	rc := middleware.ResolutionFrom(r.Context())
	respondWithJSON(w, h.logger, http.StatusOK, h.uc.Posts(r.Context(), rc))
}

// GetPost returns one published post of the school.
// GET /api/posts/{slug}
func (h *SiteHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	rc := middleware.ResolutionFrom(r.Context())
	post, err := h.uc.Post(r.Context(), rc, chi.URLParam(r, "slug"))
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, post)
}

// ListStaff returns the public staff of the school.
// GET /api/staff
func (h *SiteHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	rc := middleware.ResolutionFrom(r.Context())
	respondWithJSON(w, h.logger, http.StatusOK, h.uc.Staff(r.Context(), rc))
}
