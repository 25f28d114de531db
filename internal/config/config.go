package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/evergrove/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8001"`

	// PostgreSQL. When REPOSITORY_BACKEND is "memory" the postgres settings
	// are ignored and an in-process store is used instead.
	RepositoryBackend string `env:"REPOSITORY_BACKEND" envDefault:"postgres"`
	PostgresHost      string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort      int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser      string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass      string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB        string `env:"STOREFRONT_DB_NAME" envDefault:"storefront_db"`
	PostgresSSL       string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis product cache. Disabled when the address is empty.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string `env:"JWT_SECRET,required"`

	// Image asset storage: "local" writes under MediaRoot, "memory" is for
	// tests and ephemeral environments.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaBaseURL   string `env:"MEDIA_BASE_URL" envDefault:"http://localhost:8001"`

	// Quote provider
	QuoteAPIURL       string        `env:"QUOTE_API_URL" envDefault:"https://zenquotes.io/api/random"`
	QuoteFetchTimeout time.Duration `env:"QUOTE_FETCH_TIMEOUT" envDefault:"3s"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	switch cfg.RepositoryBackend {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid REPOSITORY_BACKEND %q, must be postgres or memory", cfg.RepositoryBackend)
	}
	switch cfg.StorageBackend {
	case "local", "memory":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q, must be local or memory", cfg.StorageBackend)
	}
	if cfg.RepositoryBackend == "postgres" {
		if cfg.PostgresHost == "" {
			return nil, fmt.Errorf("POSTGRES_HOST is required")
		}
		if cfg.PostgresUser == "" {
			return nil, fmt.Errorf("POSTGRES_USER is required")
		}
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}
	if cfg.QuoteFetchTimeout <= 0 {
		return nil, fmt.Errorf("QUOTE_FETCH_TIMEOUT must be positive")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisEnabled reports whether the product read cache should be mounted.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
