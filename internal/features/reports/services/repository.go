package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/models"

	"golang.org/x/sync/errgroup"
)

// Repository reads pages of reports from the shared pool. It never retries;
// every storage failure is returned as STORAGE_UNAVAILABLE.
type Repository struct {
	db     *core.Database
	logger *core.Logger
}

// NewRepository creates a repository on an injected pool
func NewRepository(db *core.Database, logger *core.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const reportColumns = `hash, title, platform, severity, program, bounty, currency, published_at, url, weakness`

// FetchPage runs the page query and the count query for the same predicate
// concurrently, each on its own pooled connection.
func (r *Repository) FetchPage(ctx context.Context, filter CompiledFilter, page, pageSize int) (*models.FeedPage, error) {
	where := filter.Where()

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM reports %s ORDER BY published_at DESC, hash ASC LIMIT %s OFFSET %s`,
		reportColumns, where, filter.Placeholder(1), filter.Placeholder(2),
	)
	offset, addressable := pageOffset(page, pageSize)
	pageArgs := append(append([]any{}, filter.Args...), pageSize, offset)

	countQuery := fmt.Sprintf(`SELECT count(*) FROM reports %s`, where)

	var (
		items []models.Report
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	if addressable {
		g.Go(func() error {
			return r.db.WithConn(gctx, func(qctx context.Context, conn *sql.Conn) error {
				var err error
				items, err = queryReports(qctx, conn, pageQuery, pageArgs)
				return err
			})
		})
	}
	g.Go(func() error {
		return r.db.WithConn(gctx, func(qctx context.Context, conn *sql.Conn) error {
			return conn.QueryRowContext(qctx, countQuery, filter.Args...).Scan(&total)
		})
	})

	if err := g.Wait(); err != nil {
		r.logger.WithContext(ctx).Error("Report query failed", "error", err, "page", page, "page_size", pageSize)
		if core.IsStorageUnavailable(err) {
			return nil, err
		}
		return nil, core.NewStorageUnavailableError("failed to query reports", err)
	}

	if items == nil {
		items = []models.Report{}
	}

	return &models.FeedPage{
		Page:     page,
		PageSize: pageSize,
		Total:    int(total),
		Items:    items,
	}, nil
}

// pageOffset returns the row offset of page. A page whose offset does not
// fit in an int64 is past the end of any store and reports false.
func pageOffset(page, pageSize int) (int64, bool) {
	if page < 1 || pageSize < 1 {
		return 0, true
	}
	if int64(page-1) > math.MaxInt64/int64(pageSize) {
		return 0, false
	}
	return int64(page-1) * int64(pageSize), true
}

// Platforms returns the distinct platform names present in the store
func (r *Repository) Platforms(ctx context.Context) ([]string, error) {
	var platforms []string
	err := r.db.WithConn(ctx, func(qctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(qctx, `SELECT DISTINCT platform FROM reports ORDER BY platform`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var platform string
			if err := rows.Scan(&platform); err != nil {
				return err
			}
			platforms = append(platforms, platform)
		}
		return rows.Err()
	})
	if err != nil {
		if core.IsStorageUnavailable(err) {
			return nil, err
		}
		return nil, core.NewStorageUnavailableError("failed to query platforms", err)
	}

	return platforms, nil
}

func queryReports(ctx context.Context, conn *sql.Conn, query string, args []any) ([]models.Report, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var (
			report                      models.Report
			severity                    string
			program, currency, weakness sql.NullString
			bounty                      sql.NullFloat64
		)

		err := rows.Scan(
			&report.ID,
			&report.Title,
			&report.Platform,
			&severity,
			&program,
			&bounty,
			&currency,
			&report.PublishedAt,
			&report.URL,
			&weakness,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		report.Severity = models.Severity(severity)
		report.PublishedAt = report.PublishedAt.UTC()
		report.Program = nullableString(program)
		report.Weakness = nullableString(weakness)
		report.Currency = nullableString(currency)
		if bounty.Valid {
			amount := bounty.Float64
			report.Bounty = &amount
			if report.Currency == nil {
				c := models.DefaultCurrency
				report.Currency = &c
			}
		}

		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
