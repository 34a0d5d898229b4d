package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey is a middleware factory that guards admin routes with a shared
// key sent in the X-Admin-Key header. An empty key rejects every request.
func AdminKey(key string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminKeyHeader)
			if got == "" {
				logger.Warn("admin key missing from request", "remote_addr", r.RemoteAddr, "request_id", RequestIDFrom(r.Context()))
				http.Error(w, "Unauthorized: admin key required", http.StatusUnauthorized)
				return
			}

			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.Warn("invalid admin key provided", "remote_addr", r.RemoteAddr, "request_id", RequestIDFrom(r.Context()))
				http.Error(w, "Unauthorized: invalid admin key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
