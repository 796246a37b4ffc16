package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bugdaily/internal/client"
)

func TestWatchFlagsOverrideConfig(t *testing.T) {
	cfg := client.DefaultConfig()

	if err := watchCmd.Flags().Parse([]string{"--severity", "all", "--since", "7d", "--page-size", "10"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	applyWatchFlags(watchCmd, cfg)

	if cfg.Severity != "all" || cfg.Since != "7d" || cfg.PageSize != 10 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Server != "http://localhost:4000" {
		t.Errorf("unset flags must not override the config, server = %q", cfg.Server)
	}

	fc := feedConfig(cfg)
	if fc.Severity != "" {
		t.Errorf("severity all should clear the filter, got %q", fc.Severity)
	}
	if fc.Debounce != 400*time.Millisecond || fc.RefreshInterval != time.Minute {
		t.Errorf("timings = %v %v", fc.Debounce, fc.RefreshInterval)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-06-01")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}

	if !strings.Contains(out.String(), "bugdaily 1.2.3 (commit: abc123") {
		t.Errorf("output = %q", out.String())
	}
}
