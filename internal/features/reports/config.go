package reports

import (
	"fmt"

	"bugdaily/internal/core"
)

// Config represents report feed configuration
type Config struct {
	Enabled         bool
	DefaultPageSize int
	MaxPageSize     int
	Bootstrap       bool
}

// NewConfig creates the feed config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled:         coreConfig.Features.Reports.Enabled,
		DefaultPageSize: coreConfig.Features.Reports.DefaultPageSize,
		MaxPageSize:     coreConfig.Features.Reports.MaxPageSize,
		Bootstrap:       coreConfig.Database.Bootstrap,
	}
}

// Validate validates the feed configuration
func (c *Config) Validate() error {
	if c.MaxPageSize < 1 || c.MaxPageSize > 200 {
		return core.NewValidationError(fmt.Sprintf("max page size must be between 1 and 200, got %d", c.MaxPageSize), nil)
	}

	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return core.NewValidationError(fmt.Sprintf("default page size must be between 1 and %d", c.MaxPageSize), nil)
	}

	return nil
}
