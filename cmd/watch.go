package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"bugdaily/internal/client"
	"bugdaily/internal/core"
	"bugdaily/internal/feed"
	"bugdaily/internal/tui"
)

var (
	flagConfig   string
	flagServer   string
	flagSeverity string
	flagPlatform string
	flagSince    string
	flagQuery    string
	flagPageSize int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the report feed from the terminal",
	RunE:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&flagConfig, "config", "", "path to config file (default $XDG_CONFIG_HOME/bugdaily/config.yaml)")
	f.StringVar(&flagServer, "server", "", "base URL of the bugdaily server")
	f.StringVar(&flagSeverity, "severity", "", "initial severity filter (critical, high, medium, low, info, all)")
	f.StringVar(&flagPlatform, "platform", "", "initial platform filter")
	f.StringVar(&flagSince, "since", "", "initial time window (24h, 3d, 7d, 30d, 90d)")
	f.StringVar(&flagQuery, "query", "", "initial search text")
	f.IntVar(&flagPageSize, "page-size", 0, "reports per page")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := client.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyWatchFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openWatchLog(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	api := client.New(cfg.Server, client.WithTimeout(client.Duration(cfg.Timeout, 15*time.Second)))

	logger.Info("Starting watch", "server", cfg.Server, "severity", cfg.Severity, "since", cfg.Since)

	return tui.Run(tui.RunOpts{
		Fetcher:   api,
		Platforms: api,
		Feed:      feedConfig(cfg),
		Logger:    logger,
	})
}

func applyWatchFlags(cmd *cobra.Command, cfg *client.Config) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = flagServer
	}
	if flags.Changed("severity") {
		cfg.Severity = flagSeverity
	}
	if flags.Changed("platform") {
		cfg.Platform = flagPlatform
	}
	if flags.Changed("since") {
		cfg.Since = flagSince
	}
	if flags.Changed("query") {
		cfg.Query = flagQuery
	}
	if flags.Changed("page-size") {
		cfg.PageSize = flagPageSize
	}
}

func feedConfig(cfg *client.Config) feed.Config {
	def := feed.DefaultConfig()

	severity := cfg.Severity
	if severity == "all" {
		severity = ""
	}

	return feed.Config{
		Debounce:        client.Duration(cfg.Debounce, def.Debounce),
		RefreshInterval: client.Duration(cfg.RefreshInterval, def.RefreshInterval),
		PageSize:        cfg.PageSize,
		Text:            cfg.Query,
		Severity:        severity,
		Platform:        cfg.Platform,
		Since:           cfg.Since,
	}
}

// openWatchLog logs to a file since the terminal belongs to the TUI
func openWatchLog(level string) (*core.Logger, func(), error) {
	path := client.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := core.NewLoggerWithOptions(core.LoggerOptions{Writer: f, Level: level})
	return logger, func() { f.Close() }, nil
}
