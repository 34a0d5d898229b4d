package tenant

import (
	"net/http/httptest"
	"testing"
)

func TestHostFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		forwarded string
		trust     bool
		want      string
	}{
		{name: "plain host", host: "SMKPelita.mysite.test", want: "smkpelita.mysite.test"},
		{name: "host with port", host: "smkpelita.mysite.test:8080", want: "smkpelita.mysite.test"},
		{name: "forwarded ignored when untrusted", host: "internal:8080", forwarded: "smkpelita.mysite.test", want: "internal"},
		{name: "forwarded used when trusted", host: "internal:8080", forwarded: "smkpelita.mysite.test", trust: true, want: "smkpelita.mysite.test"},
		{name: "first forwarded entry wins", host: "internal", forwarded: "sman3.mysite.test, proxy.local", trust: true, want: "sman3.mysite.test"},
		{name: "malformed forwarded falls back", host: "internal", forwarded: "bad host", trust: true, want: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/site", nil)
			req.Host = tt.host
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Host", tt.forwarded)
			}
			if got := HostFromRequest(req, tt.trust); got != tt.want {
				t.Errorf("HostFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
