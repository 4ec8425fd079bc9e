// Package config provides centralized configuration management for the service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"time"

	"csvcleaner/internal/clean"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Clean    CleanConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds optional Postgres settings for the cleaning-run audit
// trail. When URL is empty the service runs without a database and audit
// recording is disabled.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional).
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// StoreConfig holds temporary file storage settings.
type StoreConfig struct {
	// Dir is the directory for uploaded and cleaned files (default: ./uploads)
	Dir string `env:"STORE_DIR" default:"./uploads"`

	// MaxFileSize is the maximum allowed upload size in bytes (default: 100MB)
	MaxFileSize int64 `env:"STORE_MAX_FILE_SIZE" default:"104857600"`

	// Expiration is how long stored files stay downloadable (default: 15m)
	Expiration time.Duration `env:"STORE_EXPIRATION" default:"15m"`

	// CleanupInterval is how often the sweeper removes expired files (default: 5m)
	CleanupInterval time.Duration `env:"STORE_CLEANUP_INTERVAL" default:"5m"`
}

// CleanConfig holds pipeline concurrency limits and the defaults applied when
// a clean request omits an option.
type CleanConfig struct {
	// MaxConcurrent is the maximum number of parallel cleaning jobs (default: 5)
	MaxConcurrent int `env:"CLEAN_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a job slot (default: 30s)
	MaxWaitTime time.Duration `env:"CLEAN_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single cleaning job (default: 2m)
	Timeout time.Duration `env:"CLEAN_TIMEOUT" default:"2m"`

	// DefaultStrategy is the outlier strategy when unspecified: cap, remove or transform (default: cap)
	DefaultStrategy string `env:"CLEAN_DEFAULT_STRATEGY" default:"cap"`

	// DefaultZScore is the default z-score threshold (default: 3.0)
	DefaultZScore float64 `env:"CLEAN_DEFAULT_ZSCORE" default:"3.0"`

	// DefaultIQRMultiplier is the default IQR fence multiplier (default: 1.5)
	DefaultIQRMultiplier float64 `env:"CLEAN_DEFAULT_IQR_MULTIPLIER" default:"1.5"`

	// DefaultStandardize controls whether numeric columns are rescaled by default (default: false)
	DefaultStandardize bool `env:"CLEAN_DEFAULT_STANDARDIZE" default:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for the upload endpoint (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
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
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// Pipeline returns the pipeline configuration built from the configured
// defaults. Per-request options override these.
func (c *CleanConfig) Pipeline() clean.Config {
	return clean.Config{
		OutlierStrategy: clean.Strategy(c.DefaultStrategy),
		ZScoreThreshold: c.DefaultZScore,
		IQRMultiplier:   c.DefaultIQRMultiplier,
		Standardize:     c.DefaultStandardize,
	}
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
