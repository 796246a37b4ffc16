package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for the BugDaily server
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	Features FeatureConfig  `json:"features"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig contains the connection pool configuration
type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"-"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	AcquireTimeout  time.Duration `json:"acquire_timeout"`
	QueryTimeout    time.Duration `json:"query_timeout"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`
	Bootstrap       bool          `json:"bootstrap"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// FeatureConfig contains feature-specific configuration
type FeatureConfig struct {
	Reports ReportsConfig `json:"reports"`
}

// ReportsConfig contains configuration for the report feed
type ReportsConfig struct {
	Enabled         bool `json:"enabled"`
	DefaultPageSize int  `json:"default_page_size"`
	MaxPageSize     int  `json:"max_page_size"`
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	driver := strings.ToLower(getEnvOrDefault("BUGDAILY_DB_DRIVER", DriverPostgres))
	defaultDSN := ""
	if driver == DriverSQLite {
		defaultDSN = "./bugdaily.db"
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("BUGDAILY_PORT", 4000),
			Host:            getEnvOrDefault("BUGDAILY_HOST", "0.0.0.0"),
			ShutdownTimeout: getEnvAsDuration("BUGDAILY_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          driver,
			DSN:             getEnvOrDefault("DATABASE_URL", defaultDSN),
			MaxOpenConns:    getEnvAsInt("BUGDAILY_DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("BUGDAILY_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("BUGDAILY_DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AcquireTimeout:  getEnvAsDuration("BUGDAILY_DB_ACQUIRE_TIMEOUT", 5*time.Second),
			QueryTimeout:    getEnvAsDuration("BUGDAILY_DB_QUERY_TIMEOUT", 10*time.Second),
			ConnectTimeout:  getEnvAsDuration("BUGDAILY_DB_CONNECT_TIMEOUT", 30*time.Second),
			Bootstrap:       getEnvAsBool("BUGDAILY_DB_BOOTSTRAP", false),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("BUGDAILY_LOG_LEVEL", "info"),
			Format: getEnvOrDefault("BUGDAILY_LOG_FORMAT", "text"),
		},
		Features: FeatureConfig{
			Reports: ReportsConfig{
				Enabled:         getEnvAsBool("BUGDAILY_ENABLE_REPORTS", true),
				DefaultPageSize: getEnvAsInt("BUGDAILY_REPORTS_DEFAULT_PAGE_SIZE", 40),
				MaxPageSize:     getEnvAsInt("BUGDAILY_REPORTS_MAX_PAGE_SIZE", 200),
			},
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewConfigurationError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return NewConfigurationError(fmt.Sprintf("unsupported database driver: %q", c.Database.Driver), nil)
	}

	if c.Database.DSN == "" {
		return NewConfigurationError("DATABASE_URL is required", nil)
	}

	if c.Database.MaxOpenConns < 1 {
		return NewConfigurationError("max open connections must be at least 1", nil)
	}

	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return NewConfigurationError("max idle connections must be between 0 and max open connections", nil)
	}

	if c.Database.AcquireTimeout <= 0 || c.Database.QueryTimeout <= 0 {
		return NewConfigurationError("acquire and query timeouts must be positive", nil)
	}

	reports := c.Features.Reports
	if reports.MaxPageSize < 1 || reports.MaxPageSize > 200 {
		return NewConfigurationError("max page size must be between 1 and 200", nil)
	}
	if reports.DefaultPageSize < 1 || reports.DefaultPageSize > reports.MaxPageSize {
		return NewConfigurationError("default page size must be between 1 and max page size", nil)
	}

	return nil
}

// IsFeatureEnabled checks if a feature is enabled
func (c *Config) IsFeatureEnabled(featureName string) bool {
	switch strings.ToLower(featureName) {
	case "reports":
		return c.Features.Reports.Enabled
	default:
		return false
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
