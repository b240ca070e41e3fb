package dialect

import (
	"fmt"
	"strings"
)

type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect {
	return sqliteDialect{}
}

func (sqliteDialect) Name() string {
	return "sqlite"
}

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) Placeholder(index int) string {
	return "?"
}

func (sqliteDialect) SupportsTransactionalDDL() bool {
	return true
}

func (sqliteDialect) SupportsAdvisoryLock() bool {
	return false
}

func (sqliteDialect) SupportsPrivilegeModel() bool {
	return false
}

func (d sqliteDialect) VersionTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    token        TEXT PRIMARY KEY,
    applied_at   TEXT NOT NULL DEFAULT (datetime('now')),
    checksum     TEXT,
    exec_time_ms INTEGER
)`, d.QuoteIdent(table))
}
