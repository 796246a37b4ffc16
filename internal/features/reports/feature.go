package reports

import (
	"context"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/handlers"
	"bugdaily/internal/features/reports/migrations"
	"bugdaily/internal/features/reports/services"
)

// Feature serves the read-only report feed
type Feature struct {
	*core.Lifecycle
	config       *Config
	migrationMgr *migrations.Manager
	repository   *services.Repository
	feedService  *services.FeedService
	handlers     *handlers.Handlers
}

// NewFeature creates the report feed feature. now may be nil.
func NewFeature(logger *core.Logger, db *core.Database, config *Config, now services.Clock) *Feature {
	lifecycle := core.NewLifecycle("reports", "Disclosed vulnerability report feed", config.Enabled, logger)
	featureLogger := lifecycle.Logger()

	repository := services.NewRepository(db, featureLogger)
	feedService := services.NewFeedService(repository, featureLogger, now)

	f := &Feature{
		Lifecycle:    lifecycle,
		config:       config,
		migrationMgr: migrations.NewManager(db, featureLogger),
		repository:   repository,
		feedService:  feedService,
		handlers:     handlers.NewHandlers(featureLogger, feedService, config.DefaultPageSize, config.MaxPageSize),
	}

	f.OnStart("validate config", func(context.Context) error {
		return f.config.Validate()
	})
	if config.Bootstrap {
		f.OnStart("bootstrap schema", f.migrationMgr.Migrate)
	}

	return f
}

// Routes returns the HTTP routes for the report feed
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "GET", Path: "/reports", Handler: f.handlers.ListReports},
		{Method: "GET", Path: "/reports/platforms", Handler: f.handlers.ListPlatforms},
		{Method: "GET", Path: "/api/reports", Handler: f.handlers.ListReports},
	}
}
