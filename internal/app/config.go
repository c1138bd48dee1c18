package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Session store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL     string `usage:"Redis connection URL (STOREFRONT_REDIS_URL or REDIS_URL)" flag:"redis-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing; enables API key auth when a database is configured" flag:"api-key-pepper"`
	Backend      BackendConfig
	Session      SessionConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// BackendConfig points at the cart, order and profile services.
type BackendConfig struct {
	BaseURL string        `usage:"Base URL of the storefront backend" flag:"backend-url"`
	Timeout time.Duration `default:"10s" usage:"Per-request backend timeout" flag:"backend-timeout"`
}

// SessionConfig controls where checkout sessions live and for how long.
type SessionConfig struct {
	Store           string        `default:"memory" usage:"Session store: memory, postgres or redis" flag:"session-store"`
	TTL             time.Duration `default:"24h" usage:"Idle session lifetime" flag:"session-ttl"`
	CleanupInterval time.Duration `default:"10m" usage:"Expired session sweep interval" flag:"session-cleanup-interval"`
}

// CheckoutConfig tunes order placement.
type CheckoutConfig struct {
	ClearRemoteCart bool `default:"false" usage:"Remove ordered lines from the remote cart after an order" flag:"clear-remote-cart"`
	AllowTestCards  bool `default:"false" usage:"Accept well-known test card numbers" flag:"allow-test-cards"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a .env file, environment variables,
// YAML config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend URL is required: set STOREFRONT_BACKEND_BASE_URL")
	}
	switch c.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres session store requires STOREFRONT_DATABASE_URL or DATABASE_URL")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("redis session store requires STOREFRONT_REDIS_URL or REDIS_URL")
		}
	default:
		return errors.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.APIKeyPepper != "" && c.DatabaseURL == "" {
		return errors.New("API key auth requires a database URL")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RedisURL == "" {
		c.RedisURL = os.Getenv("REDIS_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
