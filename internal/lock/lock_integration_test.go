//go:build integration

package lock

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/testutil"
)

// Each testutil.SetupPostgres connection is pinned to a single physical
// connection, so it behaves as one stable advisory-lock session.

func tryKey(t *testing.T, db *sql.DB) bool {
	t.Helper()
	var got bool
	if err := db.QueryRow("SELECT pg_try_advisory_lock($1)", Key()).Scan(&got); err != nil {
		t.Fatalf("pg_try_advisory_lock: %v", err)
	}
	return got
}

func unlockKey(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("SELECT pg_advisory_unlock($1)", Key()); err != nil {
		t.Fatalf("pg_advisory_unlock: %v", err)
	}
}

func TestMigrationLockPostgres(t *testing.T) {
	db := testutil.SetupPostgres(t)
	other := testutil.SetupPostgres(t)
	ctx := context.Background()

	ran := false
	err := WithMigrationLock(ctx, db, dialect.Postgres(), 5*time.Second, func(ctx context.Context) error {
		ran = true
		// The lock is held for the duration of the body.
		if tryKey(t, other) {
			unlockKey(t, other)
			t.Error("second session acquired the lock while the body was running")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithMigrationLock: %v", err)
	}
	if !ran {
		t.Fatal("body never ran")
	}

	// Released on the success path.
	if !tryKey(t, other) {
		t.Fatal("lock still held after WithMigrationLock returned")
	}
	unlockKey(t, other)
}

func TestMigrationLockTimeoutPostgres(t *testing.T) {
	holder := testutil.SetupPostgres(t)
	if !tryKey(t, holder) {
		t.Fatal("holder session could not take the lock")
	}
	defer unlockKey(t, holder)

	db := testutil.SetupPostgres(t)
	timeout := time.Second

	ran := false
	start := time.Now()
	err := WithMigrationLock(context.Background(), db, dialect.Postgres(), timeout, func(ctx context.Context) error {
		ran = true
		return nil
	})
	elapsed := time.Since(start)

	if !sterr.Is(err, sterr.ErrLockTimeout) {
		t.Fatalf("error = %v, want %s", err, sterr.ErrLockTimeout)
	}
	if ran {
		t.Error("body ran without holding the lock")
	}
	if elapsed < timeout {
		t.Errorf("gave up after %v, before the %v timeout", elapsed, timeout)
	}
}

func TestMigrationLockReleasedOnBodyError(t *testing.T) {
	db := testutil.SetupPostgres(t)
	other := testutil.SetupPostgres(t)

	wantErr := errors.New("unit failed")
	err := WithMigrationLock(context.Background(), db, dialect.Postgres(), 5*time.Second, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want the body's error", err)
	}

	// The failure path must still release; another session acquires
	// immediately, with no timeout wait.
	if !tryKey(t, other) {
		t.Fatal("lock still held after the body errored")
	}
	unlockKey(t, other)
}
