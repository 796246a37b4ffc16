package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database is the process-wide connection pool. It is created once by
// OpenDatabase and injected into every consumer.
type Database struct {
	*sql.DB
	logger         *Logger
	driver         string
	acquireTimeout time.Duration
	queryTimeout   time.Duration
}

// NewDatabase wraps an already opened pool. Timeouts fall back to the
// defaults used by LoadConfig when zero.
func NewDatabase(db *sql.DB, logger *Logger, cfg DatabaseConfig) *Database {
	acquire := cfg.AcquireTimeout
	if acquire <= 0 {
		acquire = 5 * time.Second
	}
	query := cfg.QueryTimeout
	if query <= 0 {
		query = 10 * time.Second
	}

	return &Database{
		DB:             db,
		logger:         logger,
		driver:         cfg.Driver,
		acquireTimeout: acquire,
		queryTimeout:   query,
	}
}

// OpenDatabase opens the pool, applies the bounded pool settings and waits
// for the backend to answer a ping, backing off exponentially until
// cfg.ConnectTimeout elapses.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig, logger *Logger) (*Database, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, NewConfigurationError("failed to open database", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	database := NewDatabase(db, logger, cfg)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = cfg.ConnectTimeout

	ping := func() error {
		return database.PingWithTimeout(ctx, database.acquireTimeout)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("Database not reachable yet", "driver", cfg.Driver, "retry_in", next, "error", err)
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		db.Close()
		return nil, NewStorageUnavailableError("database unreachable", err)
	}

	logger.Info("Database connected",
		"driver", cfg.Driver,
		"max_open_connections", cfg.MaxOpenConns,
		"acquire_timeout", database.acquireTimeout,
	)
	return database, nil
}

// Driver returns the name of the sql driver backing the pool
func (db *Database) Driver() string {
	return db.driver
}

// PingWithTimeout pings the database with a timeout
func (db *Database) PingWithTimeout(ctx context.Context, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return db.PingContext(pingCtx)
}

// WithConn acquires one connection from the pool, waiting at most the
// acquire timeout, and releases it when fn returns, panics, or ctx is
// cancelled.
func (db *Database) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, db.acquireTimeout)
	conn, err := db.Conn(acquireCtx)
	cancelAcquire()
	if err != nil {
		return NewStorageUnavailableError("failed to acquire database connection", err)
	}
	defer conn.Close()

	queryCtx, cancel := context.WithTimeout(ctx, db.queryTimeout)
	defer cancel()

	return fn(queryCtx, conn)
}

// ExecWithTimeout executes a command with the configured query timeout
func (db *Database) ExecWithTimeout(ctx context.Context, query string, args ...any) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, db.queryTimeout)
	defer cancel()

	return db.ExecContext(queryCtx, query, args...)
}

// Close closes the pool
func (db *Database) Close() error {
	db.logger.Info("Closing database connection pool")
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// LogStats logs database statistics
func (db *Database) LogStats() {
	stats := db.Stats()
	db.logger.Info("Database stats",
		"max_open_connections", stats.MaxOpenConnections,
		"open_connections", stats.OpenConnections,
		"in_use", stats.InUse,
		"idle", stats.Idle,
		"wait_count", stats.WaitCount,
		"wait_duration", stats.WaitDuration,
		"max_idle_closed", stats.MaxIdleClosed,
		"max_lifetime_closed", stats.MaxLifetimeClosed,
	)
}
