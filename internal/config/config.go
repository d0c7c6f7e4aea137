package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/tracing"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort      int  `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	// Origins allowed to call the API with cookies. "*" echoes any origin.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Collection store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// MongoDB
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"storefront"`

	// Collection TTL in hours for redis and mongo (default: 30 days). 0 keeps
	// collections forever.
	CollectionTTL int `env:"COLLECTION_TTL_HOURS" envDefault:"720"`

	// Store operations slower than this are logged at warn. 0 disables.
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Kafka. Empty disables collection events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Dashboard auth. An empty AUTH_EMAIL accepts any email and password.
	AuthSecret   string `env:"AUTH_SECRET" envDefault:"dev-secret-change-me"`
	AuthEmail    string `env:"AUTH_EMAIL" envDefault:""`
	AuthPassword string `env:"AUTH_PASSWORD" envDefault:""`

	// Per-session rate limit on the cart and wishlist endpoints. 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	Tracing tracing.Config

	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "storefront"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CollectionTTLDuration returns the collection TTL as a duration.
func (c *Config) CollectionTTLDuration() time.Duration {
	return time.Duration(c.CollectionTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendMongo}, c.StoreBackend) {
		return fmt.Errorf("STORE_BACKEND must be one of file, redis, mongo, got %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendFile && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required for the file backend")
	}
	if c.CollectionTTL < 0 {
		return fmt.Errorf("COLLECTION_TTL_HOURS must not be negative, got %d", c.CollectionTTL)
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if (c.AuthEmail == "") != (c.AuthPassword == "") {
		return fmt.Errorf("AUTH_EMAIL and AUTH_PASSWORD must be set together")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}
