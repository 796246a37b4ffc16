package migrations

import (
	"bugdaily/internal/core"
)

// Migration001CreateReportsTable creates the reports table read by the feed.
// Production databases are provisioned by the ingester; this exists for
// local development and tests.
var Migration001CreateReportsTable = core.Migration{
	Version:     1,
	Name:        "create_reports_table",
	Description: "Create the disclosed reports table",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS reports (
			hash TEXT PRIMARY KEY,
			source_id TEXT,
			title TEXT NOT NULL,
			platform TEXT NOT NULL,
			severity TEXT NOT NULL,
			program TEXT,
			bounty NUMERIC,
			currency TEXT,
			published_at TIMESTAMP NOT NULL,
			url TEXT NOT NULL,
			weakness TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reports_published_at ON reports(published_at DESC, hash);
		CREATE INDEX IF NOT EXISTS idx_reports_severity ON reports(severity);
		CREATE INDEX IF NOT EXISTS idx_reports_platform ON reports(platform);
	`,
	PostgresUpSQL: `
		CREATE TABLE IF NOT EXISTS reports (
			hash TEXT PRIMARY KEY,
			source_id TEXT,
			title TEXT NOT NULL,
			platform TEXT NOT NULL,
			severity TEXT NOT NULL,
			program TEXT,
			bounty NUMERIC,
			currency TEXT,
			published_at TIMESTAMPTZ NOT NULL,
			url TEXT NOT NULL,
			weakness TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reports_published_at ON reports(published_at DESC, hash);
		CREATE INDEX IF NOT EXISTS idx_reports_severity ON reports(severity);
		CREATE INDEX IF NOT EXISTS idx_reports_platform ON reports(platform);
	`,
	DownSQL: `
		DROP INDEX IF EXISTS idx_reports_platform;
		DROP INDEX IF EXISTS idx_reports_severity;
		DROP INDEX IF EXISTS idx_reports_published_at;
		DROP TABLE IF EXISTS reports;
	`,
}
