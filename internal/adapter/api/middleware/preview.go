package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/V4T54L/schoolsite/internal/tenant"
)

// HostTracker follows the host a developer is browsing.
type HostTracker interface {
	Follow(host string)
}

// TrackHost feeds the host of every request into the developer preview so
// the process-wide context follows the site being browsed.
func TrackHost(tracker HostTracker, trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracker.Follow(tenant.HostFromRequest(r, trustForwarded))
			next.ServeHTTP(w, r)
		})
	}
}

// LoopbackOnly rejects requests whose peer is not a loopback address.
func LoopbackOnly(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
				logger.Warn("rejected non-local developer request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "Forbidden: developer routes are local only", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
