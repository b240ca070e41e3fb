// Package testutil provides database test helpers.
// SQLite helpers run anywhere; PostgreSQL helpers live behind the
// integration build tag and expect a running server (POSTGRES_URL).
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupSQLite creates an in-memory SQLite database for testing.
// The connection is automatically closed when the test completes.
func SetupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}

	// The in-memory database lives per-connection; pooling beyond one
	// connection would silently hand out empty databases.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupSQLiteFile creates a file-based SQLite database in the test's
// temp dir and returns its path alongside the connection. Use it when a
// test needs several independent connections to one database, e.g. for
// concurrency tests. busy_timeout makes competing writers wait instead
// of failing with SQLITE_BUSY.
func SetupSQLiteFile(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "strata_test.db")
	db := OpenSQLiteFile(t, path)
	return db, path
}

// OpenSQLiteFile opens an additional connection to a file-based test
// database created by SetupSQLiteFile.
func OpenSQLiteFile(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		t.Fatalf("failed to open sqlite file: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite file: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
