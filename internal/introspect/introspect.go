// Package introspect provides live schema introspection for all supported
// dialects. It queries database system catalogs to discover tables and
// columns, exposing one uniform descriptor shape upward.
//
// Results are never cached: trigger validation runs against whatever the
// store holds at call time, since earlier statements in the same run may
// have created the tables being checked.
package introspect

import (
	"context"
	"database/sql"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
)

// ColumnDescriptor describes one column of a live table.
type ColumnDescriptor struct {
	Name         string
	Nullable     bool
	DeclaredType string // Raw SQL type as the catalog reports it (VARCHAR, INTEGER, ...)
}

// Introspector queries database catalogs to discover schema information.
type Introspector interface {
	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// Columns returns the ordered column list for a table.
	// Returns an empty slice if the table does not exist.
	Columns(ctx context.Context, tableName string) ([]ColumnDescriptor, error)

	// Tables returns all user table names, sorted, excluding the
	// engine's reserved version table.
	Tables(ctx context.Context) ([]string, error)
}

// New creates an Introspector for the given dialect.
// Returns nil if the dialect is not supported.
func New(db *sql.DB, d dialect.Dialect) Introspector {
	switch d.Name() {
	case "postgres":
		return &postgresIntrospector{db: db, dialect: d}
	case "sqlite":
		return &sqliteIntrospector{db: db, dialect: d}
	default:
		return nil
	}
}

// wrapIntrospect wraps a catalog query failure as an introspection error
// with optional table context.
func wrapIntrospect(err error, op string, table string) *sterr.Error {
	e := sterr.Wrap(sterr.ErrIntrospection, err, "failed to "+op)
	if table != "" {
		e.WithTable(table)
	}
	return e
}

// internalTables lists tables that should be skipped during introspection.
var internalTables = map[string]bool{
	"strata_migrations": true,
}

// isInternalTable checks if a table should be skipped.
func isInternalTable(name string) bool {
	return internalTables[name]
}
