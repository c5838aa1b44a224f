// Package config reads service configuration from the environment.
// A .env file in the working directory is loaded first when present;
// real environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	rlconfig "inkwell/internal/ratelimit/config"
	"inkwell/internal/ratelimit/models"
	pstrings "inkwell/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server     Server
	Log        Log
	Tracing    Tracing
	Token      Token
	RateLimit  rlconfig.Config
	Reputation Reputation
	Audit      Audit
	Redis      RedisConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	Admin      Admin
	// StoreTimeout bounds every shared-store call made while admitting a request.
	StoreTimeout time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	TrustedProxies  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// SeedDemoData fills the stores with demo subjects at startup.
	SeedDemoData bool
}

// Log configures the process logger.
type Log struct {
	Level string
	// File, when set, receives logs through a rotating writer in addition to stdout.
	File string
}

// Tracing selects the span exporter path. When enabled, spans go to the
// global OpenTelemetry provider.
type Tracing struct {
	Enabled bool
}

// Token configures credential issuance and verification.
type Token struct {
	AccessSecret   string
	RefreshSecret  string
	Issuer         string
	Audience       string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	ReuseDetection bool
}

// Reputation configures blocking behaviour outside the rate limiter.
type Reputation struct {
	BlockOnMaliciousInput bool
	MaliciousBlockFor     time.Duration
}

// Audit configures the audit sink.
type Audit struct {
	Driver        string // memory | postgres | sqlite
	SQLitePath    string
	Retention     time.Duration
	PruneInterval time.Duration
	AsyncBuffer   int
}

// RedisConfig configures the shared store. An empty URL selects the in-process store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures PostgreSQL. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the optional audit mirror. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	ClientID   string
	// MaxBufferedRecords caps records awaiting delivery; beyond it the
	// mirror drops instead of blocking the request path.
	MaxBufferedRecords int
}

// Admin configures the operator surface.
type Admin struct {
	Token string
}

const (
	devAccessSecret  = "dev-access-secret-change-in-production"
	devRefreshSecret = "dev-refresh-secret-change-in-production"
)

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Server: Server{
			Addr:            p.str("ADDR", ":8080"),
			Environment:     p.str("ENVIRONMENT", "local"),
			TrustedProxies:  pstrings.SplitList(os.Getenv("TRUSTED_PROXIES")),
			RequestTimeout:  p.duration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
			SeedDemoData:    p.boolean("SEED_DEMO_DATA", false),
		},
		Log: Log{
			Level: p.str("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Tracing: Tracing{
			Enabled: p.boolean("TRACING_ENABLED", true),
		},
		Token: Token{
			AccessSecret:   p.str("JWT_ACCESS_SECRET", devAccessSecret),
			RefreshSecret:  p.str("JWT_REFRESH_SECRET", devRefreshSecret),
			Issuer:         p.str("JWT_ISSUER", "inkwell"),
			Audience:       p.str("JWT_AUDIENCE", "inkwell-api"),
			AccessTTL:      p.duration("ACCESS_TOKEN_TTL", 7*24*time.Hour),
			RefreshTTL:     p.duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
			ReuseDetection: p.boolean("REFRESH_REUSE_DETECTION", true),
		},
		RateLimit: *rlconfig.DefaultConfig(),
		Reputation: Reputation{
			BlockOnMaliciousInput: p.boolean("BLOCK_ON_MALICIOUS_INPUT", false),
			MaliciousBlockFor:     p.duration("MALICIOUS_INPUT_BLOCK_DURATION", time.Hour),
		},
		Audit: Audit{
			Driver:        p.str("AUDIT_DRIVER", "memory"),
			SQLitePath:    p.str("AUDIT_SQLITE_PATH", "audit.db"),
			Retention:     p.duration("AUDIT_RETENTION", 90*24*time.Hour),
			PruneInterval: p.duration("AUDIT_PRUNE_INTERVAL", time.Hour),
			AsyncBuffer:   p.integer("AUDIT_ASYNC_BUFFER", 0),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 20),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    p.integer("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: p.str("KAFKA_AUDIT_TOPIC", "inkwell.audit.security"),
			ClientID:   p.str("KAFKA_CLIENT_ID", "inkwell"),

			MaxBufferedRecords: p.integer("KAFKA_MAX_BUFFERED_RECORDS", 10_000),
		},
		Admin: Admin{
			Token: os.Getenv("ADMIN_API_TOKEN"),
		},
		StoreTimeout: p.duration("STORE_TIMEOUT", 250*time.Millisecond),
	}

	for _, scope := range models.Scopes {
		prefix := "RATE_LIMIT_" + envName(scope) + "_"
		limit := cfg.RateLimit.Scopes[scope]
		limit.Window = p.duration(prefix+"WINDOW", limit.Window)
		limit.Max = p.integer(prefix+"MAX", limit.Max)
		limit.FailClosed = p.boolean(prefix+"FAIL_CLOSED", limit.FailClosed)
		cfg.RateLimit.Scopes[scope] = limit
	}
	cfg.RateLimit.AutoBlock.Threshold = p.integer("AUTO_BLOCK_THRESHOLD", cfg.RateLimit.AutoBlock.Threshold)
	cfg.RateLimit.AutoBlock.Lookback = p.duration("AUTO_BLOCK_LOOKBACK", cfg.RateLimit.AutoBlock.Lookback)
	cfg.RateLimit.AutoBlock.Duration = p.duration("AUTO_BLOCK_DURATION", cfg.RateLimit.AutoBlock.Duration)
	cfg.RateLimit.GlobalPerSecond = p.integer("GLOBAL_RATE_PER_SECOND", cfg.RateLimit.GlobalPerSecond)
	cfg.RateLimit.GlobalBurst = p.integer("GLOBAL_RATE_BURST", cfg.RateLimit.GlobalBurst)

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	var errs []error
	if c.Token.AccessSecret == c.Token.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.IsProduction() && (c.Token.AccessSecret == devAccessSecret || c.Token.RefreshSecret == devRefreshSecret) {
		errs = append(errs, errors.New("development JWT secrets are not allowed in production"))
	}
	if c.IsProduction() && c.Server.SeedDemoData {
		errs = append(errs, errors.New("SEED_DEMO_DATA is not allowed in production"))
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if err := c.RateLimit.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Audit.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("AUDIT_DRIVER=postgres requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_DRIVER %q", c.Audit.Driver))
	}
	if c.Audit.Retention <= 0 {
		errs = append(errs, errors.New("AUDIT_RETENTION must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func envName(scope models.Scope) string {
	return strings.ToUpper(strings.ReplaceAll(string(scope), "-", "_"))
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}
