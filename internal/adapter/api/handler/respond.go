package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/schoolsite/internal/adapter/repository"
	"github.com/V4T54L/schoolsite/internal/domain"
	"github.com/V4T54L/schoolsite/internal/usecase"
)

const maxPayloadBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError maps use case and repository errors to HTTP statuses.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrNoActiveTenant), errors.Is(err, domain.ErrInvalidTenant):
		http.Error(w, "Bad Request: no school is served on this host", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, repository.ErrBackendUnavailable):
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	default:
		logger.Error("request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "Bad Request: Failed to decode JSON", http.StatusBadRequest)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
