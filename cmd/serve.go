package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bugdaily/internal/core"
	"bugdaily/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report feed over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := core.LoadConfig()
	if err != nil {
		return err
	}

	logger := core.NewLoggerFromConfig(config.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := core.OpenDatabase(ctx, config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "driver", config.Database.Driver, "error", err)
		return err
	}

	srv, err := server.New(config, logger, db)
	if err != nil {
		db.Close()
		logger.Error("Failed to create server", "error", err)
		return err
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}
