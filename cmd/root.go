package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var flagEnvFile string

var rootCmd = &cobra.Command{
	Use:   "bugdaily",
	Short: "Daily feed of publicly disclosed bug bounty reports",
	Long:  "bugdaily serves a filterable, paginated feed of disclosed vulnerability reports and watches it from the terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(flagEnvFile)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "load environment variables from this file (default .env when present)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(watchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bugdaily %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// loadEnv loads .env if it exists. An explicitly named file must exist.
func loadEnv(path string) error {
	if path == "" {
		godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
