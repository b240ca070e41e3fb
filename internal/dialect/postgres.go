package dialect

import (
	"fmt"
	"strings"
)

type postgresDialect struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect {
	return postgresDialect{}
}

func (postgresDialect) Name() string {
	return "postgres"
}

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (postgresDialect) SupportsTransactionalDDL() bool {
	return true
}

func (postgresDialect) SupportsAdvisoryLock() bool {
	return true
}

func (postgresDialect) SupportsPrivilegeModel() bool {
	return true
}

func (d postgresDialect) VersionTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    token        VARCHAR(128) PRIMARY KEY,
    applied_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    checksum     VARCHAR(64),
    exec_time_ms INTEGER
)`, d.QuoteIdent(table))
}
