package tenant

import (
	"net/http"
	"strings"

	"github.com/V4T54L/schoolsite/internal/domain"
)

// HostFromRequest returns the normalised hostname a request was addressed to.
// X-Forwarded-Host is consulted only when trustForwarded is set.
func HostFromRequest(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if host := domain.NormalizeHost(first); host != "" {
				return host
			}
		}
	}
	return domain.NormalizeHost(r.Host)
}
