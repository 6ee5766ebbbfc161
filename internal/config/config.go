// internal/config/config.go
package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the enrichment pipeline
type Config struct {
	// Log source
	Source SourceConfig

	// Ownership registry
	Registry RegistryConfig

	// Optional local GeoIP fallback
	GeoIP GeoIPConfig

	// Optional PostgreSQL archive
	Archive ArchiveConfig

	// Output rendering
	OutputFormat string // "text" or "json"

	// Logging
	LogLevel string
}

// SourceConfig selects where log lines come from
type SourceConfig struct {
	Mode          string // "file", "follow" or "redis"
	Path          string // file mode; "-" reads stdin
	FollowCommand string // follow mode; run and tailed, split on spaces
	RedisAddr     string
	RedisQueue    string
}

// RegistryConfig holds RDAP registry client configuration
type RegistryConfig struct {
	BaseURL string
	Timeout time.Duration
	MinTLS  string // lowest negotiated TLS version: 1.0 - 1.3
}

// GeoIPConfig holds the optional MMDB fallback configuration
type GeoIPConfig struct {
	DBPath string // empty disables the fallback
}

// ArchiveConfig holds PostgreSQL archive configuration
type ArchiveConfig struct {
	Enabled        bool
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ConnectionName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Load creates a new Config with values from environment variables or
// defaults. A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Source: SourceConfig{
			Mode:          "file",
			Path:          "-",
			FollowCommand: "journalctl -kf --no-pager",
			RedisAddr:     "localhost:6379",
			RedisQueue:    "fwtrace:lines",
		},

		Registry: RegistryConfig{
			BaseURL: "https://rdap.org/ip",
			Timeout: 5 * time.Second,
			MinTLS:  "1.2",
		},

		Archive: ArchiveConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "fwtrace",
			Password:        "fwtrace",
			DBName:          "fwtrace",
			SSLMode:         "disable",
			ConnectionName:  "fw_archive",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 2 * time.Minute,
		},

		OutputFormat: "text",
		LogLevel:     "info",
	}

	loadSourceConfig(cfg)
	loadRegistryConfig(cfg)
	loadGeoIPConfig(cfg)
	loadArchiveConfig(cfg)
	loadOutputConfig(cfg)

	return cfg
}

// loadSourceConfig loads log source configuration from environment
func loadSourceConfig(cfg *Config) {
	if env := os.Getenv("SOURCE_MODE"); env != "" {
		cfg.Source.Mode = env
	}

	if env := os.Getenv("SOURCE_PATH"); env != "" {
		cfg.Source.Path = env
	}

	if env := os.Getenv("FOLLOW_COMMAND"); env != "" {
		cfg.Source.FollowCommand = env
	}

	if env := os.Getenv("REDIS_ADDR"); env != "" {
		cfg.Source.RedisAddr = env
	}

	if env := os.Getenv("REDIS_QUEUE"); env != "" {
		cfg.Source.RedisQueue = env
	}
}

// loadRegistryConfig loads registry client configuration from environment
func loadRegistryConfig(cfg *Config) {
	if env := os.Getenv("RDAP_BASE_URL"); env != "" {
		cfg.Registry.BaseURL = env
	}

	if env := os.Getenv("RDAP_TIMEOUT"); env != "" {
		if val, err := time.ParseDuration(env); err == nil && val > 0 {
			cfg.Registry.Timeout = val
		}
	}

	if env := os.Getenv("RDAP_MIN_TLS"); env != "" {
		cfg.Registry.MinTLS = env
	}
}

// loadGeoIPConfig loads the GeoIP fallback configuration from environment
func loadGeoIPConfig(cfg *Config) {
	if env := os.Getenv("GEOIP_DB"); env != "" {
		cfg.GeoIP.DBPath = env
	}
}

// loadArchiveConfig loads archive configuration from environment
func loadArchiveConfig(cfg *Config) {
	if env := os.Getenv("ARCHIVE_ENABLED"); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			cfg.Archive.Enabled = val
		}
	}

	if env := os.Getenv("DB_HOST"); env != "" {
		cfg.Archive.Host = env
	}

	if env := os.Getenv("DB_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			cfg.Archive.Port = port
		}
	}

	if env := os.Getenv("DB_USER"); env != "" {
		cfg.Archive.User = env
	}

	if env := os.Getenv("DB_PASSWORD"); env != "" {
		cfg.Archive.Password = env
	}

	if env := os.Getenv("DB_NAME"); env != "" {
		cfg.Archive.DBName = env
	}

	if env := os.Getenv("DB_SSL_MODE"); env != "" {
		cfg.Archive.SSLMode = env
	}

	if env := os.Getenv("DB_CONNECTION_NAME"); env != "" {
		cfg.Archive.ConnectionName = env
	}

	if env := os.Getenv("DB_MAX_OPEN_CONNS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			cfg.Archive.MaxOpenConns = val
		}
	}

	if env := os.Getenv("DB_MAX_IDLE_CONNS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val >= 0 {
			cfg.Archive.MaxIdleConns = val
		}
	}

	if env := os.Getenv("DB_CONN_MAX_LIFETIME"); env != "" {
		if val, err := time.ParseDuration(env); err == nil {
			cfg.Archive.ConnMaxLifetime = val
		}
	}

	if env := os.Getenv("DB_CONN_MAX_IDLE_TIME"); env != "" {
		if val, err := time.ParseDuration(env); err == nil {
			cfg.Archive.ConnMaxIdleTime = val
		}
	}
}

// loadOutputConfig loads output and logging configuration from environment
func loadOutputConfig(cfg *Config) {
	if env := os.Getenv("OUTPUT_FORMAT"); env != "" {
		cfg.OutputFormat = env
	}

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
}

// tlsVersions maps the config names to the crypto/tls constants
var tlsVersions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// TLSVersion returns the crypto/tls constant for the configured floor
func (r *RegistryConfig) TLSVersion() uint16 {
	if v, ok := tlsVersions[r.MinTLS]; ok {
		return v
	}
	return tls.VersionTLS12
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Source.Mode {
	case "file":
		if c.Source.Path == "" {
			return &ValidationError{Field: "Source.Path", Message: "cannot be empty in file mode"}
		}
	case "follow":
		if c.Source.FollowCommand == "" {
			return &ValidationError{Field: "Source.FollowCommand", Message: "cannot be empty in follow mode"}
		}
	case "redis":
		if c.Source.RedisQueue == "" {
			return &ValidationError{Field: "Source.RedisQueue", Message: "cannot be empty in redis mode"}
		}
	default:
		return &ValidationError{Field: "Source.Mode", Message: "must be 'file', 'follow' or 'redis'"}
	}

	if c.Registry.BaseURL == "" {
		return &ValidationError{Field: "Registry.BaseURL", Message: "cannot be empty"}
	}

	if c.Registry.Timeout <= 0 {
		return &ValidationError{Field: "Registry.Timeout", Message: "must be greater than 0"}
	}

	if _, ok := tlsVersions[c.Registry.MinTLS]; !ok {
		return &ValidationError{Field: "Registry.MinTLS", Message: "must be one of 1.0, 1.1, 1.2, 1.3"}
	}

	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return &ValidationError{Field: "OutputFormat", Message: "must be 'text' or 'json'"}
	}

	if c.Archive.Enabled {
		if err := c.Archive.Validate(); err != nil {
			return fmt.Errorf("archive config error: %w", err)
		}
	}

	return nil
}

// Validate validates archive configuration
func (a *ArchiveConfig) Validate() error {
	if a.Host == "" {
		return &ValidationError{Field: "Host", Message: "cannot be empty"}
	}

	if a.Port <= 0 || a.Port > 65535 {
		return &ValidationError{Field: "Port", Message: "must be between 1 and 65535"}
	}

	if a.User == "" {
		return &ValidationError{Field: "User", Message: "cannot be empty"}
	}

	if a.DBName == "" {
		return &ValidationError{Field: "DBName", Message: "cannot be empty"}
	}

	if a.ConnectionName == "" {
		return &ValidationError{Field: "ConnectionName", Message: "cannot be empty"}
	}

	if a.MaxOpenConns <= 0 {
		return &ValidationError{Field: "MaxOpenConns", Message: "must be greater than 0"}
	}

	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s %s", e.Field, e.Message)
}
