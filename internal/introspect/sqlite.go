package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hlop3z/strata/internal/dialect"
)

type sqliteIntrospector struct {
	db      *sql.DB
	dialect dialect.Dialect
}

func (s *sqliteIntrospector) TableExists(ctx context.Context, tableName string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, tableName).Scan(&count)

	if err != nil {
		return false, wrapIntrospect(err, "check table existence", tableName)
	}
	return count > 0, nil
}

func (s *sqliteIntrospector) Columns(ctx context.Context, tableName string) ([]ColumnDescriptor, error) {
	// PRAGMA table_info does not support placeholders; the identifier is
	// quoted through the dialect instead.
	query := fmt.Sprintf("PRAGMA table_info(%s)", s.dialect.QuoteIdent(tableName))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapIntrospect(err, "introspect columns", tableName)
	}
	defer rows.Close()

	var columns []ColumnDescriptor
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)

		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, wrapIntrospect(err, "scan column", tableName)
		}

		columns = append(columns, ColumnDescriptor{
			Name:         name,
			Nullable:     notNull == 0 && pk == 0,
			DeclaredType: typ,
		})
	}

	return columns, rows.Err()
}

func (s *sqliteIntrospector) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapIntrospect(err, "list tables", "")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapIntrospect(err, "scan table name", "")
		}
		if isInternalTable(name) {
			continue
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}
