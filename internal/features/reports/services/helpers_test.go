package services

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"
	"time"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/migrations"
	"bugdaily/internal/features/reports/models"

	_ "modernc.org/sqlite"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *core.Logger {
	return core.NewLoggerWithOptions(core.LoggerOptions{Writer: io.Discard})
}

// newTestDB opens a file-backed SQLite pool with the reports schema applied.
// A file is used instead of :memory: so that concurrent connections share data.
func newTestDB(t *testing.T) *core.Database {
	t.Helper()

	cfg := core.DatabaseConfig{
		Driver:         core.DriverSQLite,
		DSN:            filepath.Join(t.TempDir(), "reports.db"),
		MaxOpenConns:   4,
		MaxIdleConns:   4,
		AcquireTimeout: 2 * time.Second,
		QueryTimeout:   5 * time.Second,
	}

	raw, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	raw.SetMaxOpenConns(cfg.MaxOpenConns)

	db := core.NewDatabase(raw, testLogger(), cfg)
	t.Cleanup(func() { raw.Close() })

	if err := migrations.NewManager(db, testLogger()).Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	return db
}

type seedReport struct {
	id        string
	title     string
	platform  string
	severity  string
	program   *string
	bounty    *float64
	currency  *string
	published time.Time
	weakness  *string
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func seed(t *testing.T, db *core.Database, reports ...seedReport) {
	t.Helper()

	for _, r := range reports {
		platform := r.platform
		if platform == "" {
			platform = "HackerOne"
		}
		severity := r.severity
		if severity == "" {
			severity = string(models.SeverityCritical)
		}
		title := r.title
		if title == "" {
			title = "Report " + r.id
		}

		_, err := db.ExecContext(context.Background(), `
			INSERT INTO reports (hash, source_id, title, platform, severity, program, bounty, currency, published_at, url, weakness)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			r.id, "https://example.com/"+r.id, title, platform, severity,
			r.program, r.bounty, r.currency, r.published.UTC(), "https://example.com/"+r.id, r.weakness,
		)
		if err != nil {
			t.Fatalf("Failed to seed report %s: %v", r.id, err)
		}
	}
}

func newTestService(db *core.Database) *FeedService {
	return NewFeedService(NewRepository(db, testLogger()), testLogger(), func() time.Time { return testNow })
}

func ids(items []models.Report) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
