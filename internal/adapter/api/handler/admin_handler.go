package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/V4T54L/schoolsite/internal/adapter/api/middleware"
	"github.com/V4T54L/schoolsite/internal/domain"
)

// AdminContent is the content editing use case.
type AdminContent interface {
	CreateStaff(ctx context.Context, rc domain.ResolutionContext, in domain.StaffInput) (*domain.Staff, error)
	UpdateStaff(ctx context.Context, rc domain.ResolutionContext, id int64, in domain.StaffInput) (*domain.Staff, error)
	DeleteStaff(ctx context.Context, rc domain.ResolutionContext, id int64) error
	CreatePost(ctx context.Context, rc domain.ResolutionContext, in domain.PostInput) (*domain.Post, error)
	UpdatePost(ctx context.Context, rc domain.ResolutionContext, id int64, in domain.PostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, rc domain.ResolutionContext, id int64) error
}

// AdminHandler handles HTTP requests that edit a school's content. The
// school is always the one the request host resolves to.
type AdminHandler struct {
	uc     AdminContent
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(uc AdminContent, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, logger: logger}
}

// CreateStaff handles POST /api/admin/staff
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var in domain.StaffInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}

	st, err := h.uc.CreateStaff(r.Context(), middleware.ResolutionFrom(r.Context()), in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, st)
}

// UpdateStaff handles PUT /api/admin/staff/{id}
func (h *AdminHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request: invalid id", http.StatusBadRequest)
		return
	}
	var in domain.StaffInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}

	st, err := h.uc.UpdateStaff(r.Context(), middleware.ResolutionFrom(r.Context()), id, in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, st)
}

// DeleteStaff handles DELETE /api/admin/staff/{id}
func (h *AdminHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request: invalid id", http.StatusBadRequest)
		return
	}

	if err := h.uc.DeleteStaff(r.Context(), middleware.ResolutionFrom(r.Context()), id); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreatePost handles POST /api/admin/posts
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in domain.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}

	post, err := h.uc.CreatePost(r.Context(), middleware.ResolutionFrom(r.Context()), in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/admin/posts/{id}
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request: invalid id", http.StatusBadRequest)
		return
	}
	var in domain.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}

	post, err := h.uc.UpdatePost(r.Context(), middleware.ResolutionFrom(r.Context()), id, in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, post)
}

// DeletePost handles DELETE /api/admin/posts/{id}
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request: invalid id", http.StatusBadRequest)
		return
	}

	if err := h.uc.DeletePost(r.Context(), middleware.ResolutionFrom(r.Context()), id); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
