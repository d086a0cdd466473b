package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CSRFSecret signs the anti-forgery tokens issued with each session.
	CSRFSecret string `env:"CSRF_SECRET"`

	Session  SessionConfig
	Upstream UpstreamConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type SessionConfig struct {
	// TTL is the absolute dashboard session lifetime.
	TTL time.Duration `env:"SESSION_TTL, default=12h"`
	// Revalidate is how long a confirmed identity is trusted before the
	// route guard re-checks it against the booking API.
	Revalidate time.Duration `env:"SESSION_REVALIDATE, default=5m"`
	// CookieSecure should only be disabled in local development.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE, default=true"`
}

type UpstreamConfig struct {
	// BaseURL is the prefixed booking API base, e.g. https://api.example.com/api.
	BaseURL string `env:"UPSTREAM_URL, default=http://localhost:8000/api"`
	// RootURL is the base for the CSRF priming endpoint, which the backend
	// serves at the host root rather than under the API prefix. Empty means
	// "use BaseURL's origin".
	RootURL string `env:"UPSTREAM_ROOT_URL"`
	// Timeout bounds every round trip, identity checks included.
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT, default=5s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_gateway"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.CSRFSecret == "" && cfg.Env != "development" {
		return nil, fmt.Errorf("config: CSRF_SECRET is required outside development")
	}
	return &cfg, nil
}
