package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Backend credentials are read separately by the credentials package.
type Config struct {
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsAddr        string        `env:"METRICS_ADDR" envDefault:":9091"`
	DevMode            bool          `env:"DEV_MODE" envDefault:"false"`
	DevOverrideTenant  string        `env:"DEV_OVERRIDE_TENANT"` // school id or "platform", pinned at startup
	FixturePath        string        `env:"FIXTURE_PATH"`
	AdminAPIKey        string        `env:"ADMIN_API_KEY"`
	AdminRateLimit     float64       `env:"ADMIN_RATE_LIMIT" envDefault:"5"` // requests per second
	AdminRateBurst     int           `env:"ADMIN_RATE_BURST" envDefault:"10"`
	ConnectTimeout     time.Duration `env:"BACKEND_CONNECT_TIMEOUT" envDefault:"10s"`
	QueryTimeout       time.Duration `env:"BACKEND_QUERY_TIMEOUT" envDefault:"5s"`
	TrustForwardedHost bool          `env:"TRUST_FORWARDED_HOST" envDefault:"false"`
	PlatformDomains    []string      `env:"PLATFORM_DOMAINS" envSeparator:","`
	LogRedactFields    []string      `env:"LOG_REDACT_FIELDS" envSeparator:"," envDefault:"email,phone,password,admin_key"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	return cfg, nil
}
