// Package version tracks which migration units have been applied.
// It owns the reserved strata_migrations table: one row per committed
// unit, appended inside the same transaction as the unit's statements so
// a crash mid-apply never leaves a partially-applied, unrecorded unit.
package version

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
)

// TableName is the name of the reserved version tracking table.
// Its schema is frozen; see Dialect.VersionTableSQL.
const TableName = "strata_migrations"

// Record represents one applied migration unit.
type Record struct {
	Token      string
	AppliedAt  time.Time
	Checksum   string
	ExecTimeMs int
}

// Store reads and appends applied-version records.
// It is the only writer of the reserved table.
type Store struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewStore creates a Store for the given connection and dialect.
func NewStore(db *sql.DB, d dialect.Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// EnsureTable creates the version tracking table if it doesn't exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	ddl := s.dialect.VersionTableSQL(TableName)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return classify(err, "create version table").WithSQL(ddl)
	}
	return nil
}

// CurrentVersion returns the highest applied token.
// The second return is false when no unit has been applied yet,
// including when the reserved table does not exist at all.
func (s *Store) CurrentVersion(ctx context.Context) (string, bool, error) {
	query := fmt.Sprintf("SELECT MAX(token) FROM %s", s.dialect.QuoteIdent(TableName))

	var token sql.NullString
	err := s.db.QueryRowContext(ctx, query).Scan(&token)
	if err != nil {
		if isMissingTable(err) {
			return "", false, nil
		}
		return "", false, classify(err, "read current version")
	}

	if !token.Valid {
		return "", false, nil
	}
	return token.String, true, nil
}

// HasRecorded checks if a unit has an applied record.
func (s *Store) HasRecorded(ctx context.Context, token string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE token = %s LIMIT 1",
		s.dialect.QuoteIdent(TableName), s.dialect.Placeholder(1),
	)

	var one int
	err := s.db.QueryRowContext(ctx, query, token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		if isMissingTable(err) {
			return false, nil
		}
		return false, classify(err, "check applied record").WithToken(token)
	}
	return true, nil
}

// Applied returns all applied records ordered by token.
// Returns an empty slice when the reserved table does not exist.
func (s *Store) Applied(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT token, applied_at, checksum, exec_time_ms FROM %s ORDER BY token ASC",
		s.dialect.QuoteIdent(TableName),
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, classify(err, "query applied records")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var appliedAt any
		var checksum sql.NullString
		var execTime sql.NullInt64

		if err := rows.Scan(&r.Token, &appliedAt, &checksum, &execTime); err != nil {
			return nil, sterr.Wrap(sterr.ErrSQLExecution, err, "failed to scan applied record")
		}

		r.AppliedAt = parseAppliedAt(appliedAt)
		if checksum.Valid {
			r.Checksum = checksum.String
		}
		if execTime.Valid {
			r.ExecTimeMs = int(execTime.Int64)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, sterr.Wrap(sterr.ErrSQLExecution, err, "error iterating applied records")
	}

	return records, nil
}

// Record appends one applied-version record inside the caller's
// transaction. The caller commits or rolls back; this method never does.
// A unique-constraint violation on the token column means another process
// already applied the unit; callers detect that via lock.IsUniqueViolation.
func (s *Store) Record(ctx context.Context, tx *sql.Tx, token, checksum string, execTime time.Duration) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (token, checksum, exec_time_ms) VALUES (%s, %s, %s)",
		s.dialect.QuoteIdent(TableName),
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3),
	)

	_, err := tx.ExecContext(ctx, query, token, checksum, int(execTime.Milliseconds()))
	if err != nil {
		return err
	}
	return nil
}

// UpdateExecTime sets the execution time on a record appended earlier in
// the same transaction, once the unit's statements have finished.
func (s *Store) UpdateExecTime(ctx context.Context, tx *sql.Tx, token string, execTime time.Duration) error {
	query := fmt.Sprintf(
		"UPDATE %s SET exec_time_ms = %s WHERE token = %s",
		s.dialect.QuoteIdent(TableName),
		s.dialect.Placeholder(1), s.dialect.Placeholder(2),
	)

	if _, err := tx.ExecContext(ctx, query, int(execTime.Milliseconds()), token); err != nil {
		return sterr.Wrap(sterr.ErrVersionRecord, err, "failed to update exec time").WithToken(token)
	}
	return nil
}

// parseAppliedAt converts the database timestamp to time.Time.
// SQLite stores timestamps as strings; PostgreSQL returns time.Time.
// An unparseable value yields the zero time rather than masking the
// problem with the current clock.
func parseAppliedAt(val any) time.Time {
	switch t := val.(type) {
	case time.Time:
		return t
	case string:
		formats := []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
		}
		for _, format := range formats {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed
			}
		}
		return time.Time{}
	case []byte:
		return parseAppliedAt(string(t))
	default:
		return time.Time{}
	}
}

// classify maps driver-level failures onto the engine taxonomy.
// A closed or unreachable connection becomes ErrStoreUnavailable, which
// is never retried here: callers own reconnection policy.
func classify(err error, op string) *sterr.Error {
	if isUnavailable(err) {
		return sterr.Wrap(sterr.ErrStoreUnavailable, err, "failed to "+op)
	}
	return sterr.Wrap(sterr.ErrSQLExecution, err, "failed to "+op)
}

func isUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

// isMissingTable reports whether err means the reserved table has not
// been created yet. That state is "version: none", not an error.
func isMissingTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42P01" // undefined_table
	}
	return strings.Contains(err.Error(), "no such table")
}
