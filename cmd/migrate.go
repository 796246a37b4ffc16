package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/migrations"
)

var flagRollback bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the reports schema to the configured database",
	Long:  "migrate creates the reports table and its indexes. Production schemas are owned by the ingester; use this for development databases.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&flagRollback, "rollback", false, "roll back the most recent migration instead")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	config, err := core.LoadConfig()
	if err != nil {
		return err
	}

	logger := core.NewLoggerFromConfig(config.Log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := core.OpenDatabase(ctx, config.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	manager := migrations.NewManager(db, logger.ForFeature("reports"))
	if flagRollback {
		return manager.Rollback(ctx)
	}
	return manager.Migrate(ctx)
}
