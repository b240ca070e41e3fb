// Package lock serializes concurrent migration runs across independent
// processes. On PostgreSQL it uses a session-scoped advisory lock, so a
// crashed process releases the lock when its session dies. SQLite has no
// advisory primitive; there the engine relies on per-unit transactional
// atomicity plus the unique constraint on the version token, and treats
// a losing insert as "already applied, not an error."
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
)

// lockName scopes the advisory lock to migration execution for this engine.
// The 64-bit key is derived from it with FNV-1a, matching across processes.
const lockName = "strata:migrations"

// DefaultTimeout is used when the caller passes a zero timeout.
const DefaultTimeout = 30 * time.Second

// pollInterval is how often acquisition is retried while blocked.
const pollInterval = 250 * time.Millisecond

// Key returns the 64-bit advisory lock key.
func Key() int64 {
	h := fnv.New64a()
	h.Write([]byte(lockName))
	return int64(h.Sum64())
}

// Owner returns a diagnostic identity for this process's lock attempts.
func Owner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + "/" + uuid.NewString()
}

// WithMigrationLock runs body while holding the migration lock.
//
// On dialects with an advisory primitive the lock is acquired on a
// dedicated session before body runs and released on every exit path.
// Acquisition blocks up to timeout and then fails with ErrLockTimeout;
// migrations never proceed un-coordinated when the lock is required but
// unavailable.
//
// On dialects without one, body runs directly and correctness falls to
// the unique-token conflict detection in the runner.
func WithMigrationLock(ctx context.Context, db *sql.DB, d dialect.Dialect, timeout time.Duration, body func(ctx context.Context) error) error {
	if !d.SupportsAdvisoryLock() {
		return body(ctx)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Advisory locks are session-scoped, so the acquire and release must
	// happen on the same physical connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		return sterr.Wrap(sterr.ErrSQLConnection, err, "failed to obtain lock session")
	}
	defer conn.Close()

	owner := Owner()
	if err := acquire(ctx, conn, timeout, owner); err != nil {
		return err
	}

	defer func() {
		// Release with a fresh context in case ctx was cancelled mid-body.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx, conn); err != nil {
			slog.Warn("failed to release migration lock", "owner", owner, "error", err)
		}
	}()

	return body(ctx)
}

func acquire(ctx context.Context, conn *sql.Conn, timeout time.Duration, owner string) error {
	deadline := time.Now().Add(timeout)

	for {
		var acquired bool
		err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", Key()).Scan(&acquired)
		if err != nil {
			return sterr.Wrap(sterr.ErrSQLExecution, err, "failed to acquire migration lock")
		}
		if acquired {
			slog.Debug("migration lock acquired", "owner", owner)
			return nil
		}

		if time.Now().After(deadline) {
			return sterr.New(sterr.ErrLockTimeout, "migration lock not acquired within timeout").
				With("timeout", timeout.String()).
				With("owner", owner).
				WithHelp("another process may be migrating; retry or raise --lock-timeout")
		}

		select {
		case <-ctx.Done():
			return sterr.Wrap(sterr.ErrLockTimeout, ctx.Err(), "migration lock wait cancelled")
		case <-time.After(pollInterval):
		}
	}
}

func release(ctx context.Context, conn *sql.Conn) error {
	var released bool
	err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", Key()).Scan(&released)
	if err != nil {
		return sterr.Wrap(sterr.ErrLockRelease, err, "failed to release migration lock")
	}
	if !released {
		return sterr.New(sterr.ErrLockRelease, fmt.Sprintf("advisory lock %d was not held by this session", Key()))
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// on the version token. In the no-advisory-lock fallback this is how a
// runner learns that a concurrent process already applied the unit.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}

	// modernc.org/sqlite surfaces SQLITE_CONSTRAINT_UNIQUE/PRIMARYKEY in
	// the message text.
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
