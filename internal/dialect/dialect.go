// Package dialect provides database-specific behavior for the migration
// engine: identifier quoting, parameter placeholders, the version-table
// DDL, and capability flags that gate locking and permission handling.
package dialect

// Dialect defines the interface for database-specific behavior.
// Implementations exist for PostgreSQL and SQLite.
type Dialect interface {
	// Name returns the dialect name (postgres, sqlite).
	Name() string

	// QuoteIdent quotes an identifier (table/column name) for the dialect.
	// PostgreSQL/SQLite: "name"
	QuoteIdent(name string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, $2, $3, ...
	// SQLite: ?, ?, ?, ...
	Placeholder(index int) string

	// SupportsTransactionalDDL returns true if DDL can be wrapped in transactions.
	// PostgreSQL: true
	// SQLite: true
	SupportsTransactionalDDL() bool

	// SupportsAdvisoryLock returns true if the engine exposes a named,
	// session-scoped advisory lock primitive.
	// PostgreSQL: true (pg_try_advisory_lock)
	// SQLite: false (falls back to unique-token conflict detection)
	SupportsAdvisoryLock() bool

	// SupportsPrivilegeModel returns true if the engine has roles and grants.
	// PostgreSQL: true
	// SQLite: false (PermissionReconciler is a no-op)
	SupportsPrivilegeModel() bool

	// VersionTableSQL returns the CREATE TABLE IF NOT EXISTS statement for
	// the reserved version table. Its shape is frozen: token column,
	// applied-at column, checksum, exec time. Altering it incompatibly
	// would orphan every existing deployment.
	VersionTableSQL(table string) string
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "sqlite", "sqlite3".
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "postgres", "postgresql":
		return Postgres()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "sqlite"}
}

// DriverName returns the database/sql driver name registered for the dialect.
func DriverName(d Dialect) string {
	if d.Name() == "postgres" {
		return "postgres"
	}
	return "sqlite"
}
