package core

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{Writer: io.Discard})
}

func TestOpenDatabaseSQLite(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:         DriverSQLite,
		DSN:            filepath.Join(t.TempDir(), "open.db"),
		MaxOpenConns:   2,
		MaxIdleConns:   1,
		AcquireTimeout: time.Second,
		QueryTimeout:   time.Second,
		ConnectTimeout: time.Second,
	}

	db, err := OpenDatabase(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	defer db.Close()

	if db.Driver() != DriverSQLite {
		t.Errorf("driver = %q", db.Driver())
	}
	if got := db.Stats().MaxOpenConnections; got != 2 {
		t.Errorf("max open connections = %d, want 2", got)
	}
}

func TestOpenDatabaseUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(context.Background(), DatabaseConfig{Driver: "nope", DSN: "x"}, testLogger())
	if !HasCode(err, ErrCodeConfiguration) {
		t.Errorf("error = %v, want %s", err, ErrCodeConfiguration)
	}
}

func TestWithConnAcquireTimeout(t *testing.T) {
	raw, err := sql.Open(DriverSQLite, filepath.Join(t.TempDir(), "pool.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer raw.Close()
	raw.SetMaxOpenConns(1)

	db := NewDatabase(raw, testLogger(), DatabaseConfig{
		Driver:         DriverSQLite,
		AcquireTimeout: 50 * time.Millisecond,
		QueryTimeout:   time.Second,
	})

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- db.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	start := time.Now()
	err = db.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		t.Error("second connection should not have been acquired")
		return nil
	})
	elapsed := time.Since(start)

	if !IsStorageUnavailable(err) {
		t.Errorf("error = %v, want STORAGE_UNAVAILABLE", err)
	}
	if elapsed > time.Second {
		t.Errorf("acquisition waited %v, want about 50ms", elapsed)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first WithConn: %v", err)
	}

	// The held connection went back to the pool.
	if err := db.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		return conn.PingContext(ctx)
	}); err != nil {
		t.Errorf("connection was not released: %v", err)
	}
}

func TestWithConnReleasesOnError(t *testing.T) {
	raw, err := sql.Open(DriverSQLite, filepath.Join(t.TempDir(), "release.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer raw.Close()
	raw.SetMaxOpenConns(1)

	db := NewDatabase(raw, testLogger(), DatabaseConfig{Driver: DriverSQLite, AcquireTimeout: 100 * time.Millisecond})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := db.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("iteration %d: error = %v, want boom", i, err)
		}
	}

	if got := db.Stats().InUse; got != 0 {
		t.Errorf("connections in use = %d, want 0", got)
	}
}
