// Package credentials reads the remote backend endpoint and key from the
// process environment. Missing values are a supported configuration: the
// data layer then serves fixture data.
package credentials

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/caarlos0/env/v10"
)

// Pair is the endpoint and key used to reach the remote backend.
type Pair struct {
	Endpoint string
	Key      string
}

// LogValue keeps the key and any URL password out of logs.
func (p Pair) LogValue() slog.Value {
	endpoint := p.Endpoint
	if u, err := url.Parse(p.Endpoint); err == nil {
		endpoint = u.Redacted()
	}
	return slog.GroupValue(slog.String("endpoint", endpoint))
}

// rawEnv lists the accepted variables. Both key names are honoured so that
// renaming the key variable does not require a code change; the anon key
// wins when both are set.
type rawEnv struct {
	Endpoint       string `env:"BACKEND_URL"`
	AnonKey        string `env:"BACKEND_ANON_KEY"`
	PublishableKey string `env:"BACKEND_PUBLISHABLE_KEY"`
}

// Source exposes the credentials read at startup. The zero value has no
// credentials.
type Source struct {
	pair Pair
	ok   bool
}

var fromEnv = sync.OnceValue(func() Source {
	return load(env.Options{})
})

// FromEnv returns the credentials of the current process. The environment is
// read on the first call only.
func FromEnv() Source {
	return fromEnv()
}

// Load builds a Source from the given variables instead of the process
// environment. A nil map means no variables are set.
func Load(vars map[string]string) Source {
	if vars == nil {
		vars = map[string]string{}
	}
	return load(env.Options{Environment: vars})
}

// Static returns a Source holding p, or an empty Source if p is incomplete.
func Static(p Pair) Source {
	return newSource(p.Endpoint, p.Key)
}

func load(opts env.Options) Source {
	var raw rawEnv
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return Source{}
	}
	return newSource(raw.Endpoint, firstNonEmpty(raw.AnonKey, raw.PublishableKey))
}

func newSource(endpoint, key string) Source {
	endpoint = strings.TrimSpace(endpoint)
	key = strings.TrimSpace(key)
	if endpoint == "" || key == "" {
		return Source{}
	}
	return Source{pair: Pair{Endpoint: endpoint, Key: key}, ok: true}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// HasBackendCredentials reports whether both endpoint and key are set.
func (s Source) HasBackendCredentials() bool {
	return s.ok
}

// Credentials returns the pair and whether it is present.
func (s Source) Credentials() (Pair, bool) {
	return s.pair, s.ok
}
