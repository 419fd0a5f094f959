// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Generate GenerateConfig
	History  HistoryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps request bodies, including schema text (default: 1MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"1048576"`
}

// DatabaseConfig holds PostgreSQL connection settings.
// Only used when HISTORY_BACKEND is "postgres".
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// GenerateConfig holds dataset generation limits.
type GenerateConfig struct {
	// MaxRecords is the largest record count accepted per run (default: 10000)
	MaxRecords int `env:"GENERATE_MAX_RECORDS" default:"10000"`

	// DefaultCount pre-fills the record count in the UI and CLI (default: 10)
	DefaultCount int `env:"GENERATE_DEFAULT_COUNT" default:"10"`

	// DefaultFormat pre-selects the output format (default: json)
	DefaultFormat string `env:"GENERATE_DEFAULT_FORMAT" default:"json"`

	// MaxConcurrent is the maximum number of parallel generation runs (default: 5)
	MaxConcurrent int `env:"GENERATE_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a generation slot (default: 30s)
	MaxWaitTime time.Duration `env:"GENERATE_MAX_WAIT_TIME" default:"30s"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	// Backend selects storage: memory, postgres or sqlite (default: memory)
	Backend string `env:"HISTORY_BACKEND" default:"memory"`

	// Limit is the number of most recent runs kept (default: 10)
	Limit int `env:"HISTORY_LIMIT" default:"10"`

	// Key is the fixed name history is stored under (default: dataGeneratorHistory)
	Key string `env:"HISTORY_KEY" default:"dataGeneratorHistory"`

	// SQLitePath is the database file for the sqlite backend (default: datagen.db)
	SQLitePath string `env:"HISTORY_SQLITE_PATH" default:"datagen.db"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// GenerateLimit is requests per minute for generation endpoints (default: 30)
	GenerateLimit int `env:"RATE_LIMIT_GENERATE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
