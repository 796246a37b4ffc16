package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"bugdaily/internal/features/reports/models"
	"bugdaily/internal/features/reports/services"
)

// Config is the watch client's config file
type Config struct {
	Server          string `yaml:"server"`
	Timeout         string `yaml:"timeout,omitempty"`
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
	Debounce        string `yaml:"debounce,omitempty"`
	PageSize        int    `yaml:"page_size,omitempty"`

	Severity string `yaml:"severity"`
	Platform string `yaml:"platform,omitempty"`
	Since    string `yaml:"since"`
	Query    string `yaml:"query,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig points at a local server and shows critical reports from
// the last 24 hours.
func DefaultConfig() *Config {
	return &Config{
		Server:          "http://localhost:4000",
		Timeout:         "15s",
		RefreshInterval: "60s",
		Debounce:        "400ms",
		PageSize:        40,
		Severity:        string(models.SeverityCritical),
		Since:           services.DefaultWindowToken,
		LogLevel:        "info",
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "bugdaily", "config.yaml")
}

// LogPath is where the watch client logs while the terminal is in use
func LogPath() string {
	return filepath.Join(xdg.StateHome, "bugdaily", "watch.log")
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the server URL and the durations
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url scheme must be http or https, got %q", u.Scheme)
	}

	for name, value := range map[string]string{
		"timeout":          c.Timeout,
		"refresh_interval": c.RefreshInterval,
		"debounce":         c.Debounce,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.PageSize < 0 || c.PageSize > 200 {
		return fmt.Errorf("page_size must be between 1 and 200, got %d", c.PageSize)
	}

	return nil
}

// Duration parses one of the duration fields, falling back to def when it
// is empty or malformed.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
