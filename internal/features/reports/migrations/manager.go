package migrations

import (
	"context"
	"fmt"

	"bugdaily/internal/core"
)

// Manager applies the reports schema
type Manager struct {
	migrationService *core.MigrationService
	logger           *core.Logger
}

// NewManager creates a new reports migration manager
func NewManager(db *core.Database, logger *core.Logger) *Manager {
	return &Manager{
		migrationService: core.NewMigrationService(db, logger),
		logger:           logger,
	}
}

// Migrations returns all reports migrations in order
func (m *Manager) Migrations() []core.Migration {
	return []core.Migration{
		Migration001CreateReportsTable,
	}
}

// Migrate applies all pending migrations
func (m *Manager) Migrate(ctx context.Context) error {
	if err := m.migrationService.InitMigrations(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	for _, migration := range m.Migrations() {
		if err := m.migrationService.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}

	m.logger.Info("Reports schema up to date")
	return nil
}

// Rollback rolls back the most recently applied reports migration
func (m *Manager) Rollback(ctx context.Context) error {
	if err := m.migrationService.InitMigrations(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	applied, err := m.migrationService.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var last *core.Migration
	for _, a := range applied {
		for _, migration := range m.Migrations() {
			if a.Version == migration.Version {
				migration := migration
				last = &migration
			}
		}
	}

	if last == nil {
		return fmt.Errorf("no reports migrations have been applied")
	}

	return m.migrationService.RollbackMigration(ctx, *last)
}
