package introspect

import (
	"context"
	"database/sql"

	"github.com/hlop3z/strata/internal/dialect"
)

type postgresIntrospector struct {
	db      *sql.DB
	dialect dialect.Dialect
}

func (p *postgresIntrospector) TableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_tables
			WHERE schemaname = current_schema() AND tablename = $1
		)
	`, tableName).Scan(&exists)

	if err != nil {
		return false, wrapIntrospect(err, "check table existence", tableName)
	}
	return exists, nil
}

func (p *postgresIntrospector) Columns(ctx context.Context, tableName string) ([]ColumnDescriptor, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema()
			AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := p.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, wrapIntrospect(err, "introspect columns", tableName)
	}
	defer rows.Close()

	var columns []ColumnDescriptor
	for rows.Next() {
		var col ColumnDescriptor
		var isNullable string

		if err := rows.Scan(&col.Name, &col.DeclaredType, &isNullable); err != nil {
			return nil, wrapIntrospect(err, "scan column", tableName)
		}
		col.Nullable = isNullable == "YES"
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (p *postgresIntrospector) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT tablename FROM pg_tables
		WHERE schemaname = current_schema()
		ORDER BY tablename
	`

	rows, err := p.db.QueryContext(ctx, query)
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
