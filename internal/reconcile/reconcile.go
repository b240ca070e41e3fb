// Package reconcile re-applies schema-level grants after a destructive
// schema reset. The migration principal owns every object it creates;
// the runtime principal only needs DML access. Default-privilege rules
// make objects the migration principal creates later automatically
// visible to the runtime principal without per-object grants.
package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
)

// Reconciler reconciles grants between the migration principal and the
// runtime principal on backends with a privilege model.
type Reconciler struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// New creates a Reconciler. The connection must belong to the migration
// principal, since only the object owner may alter default privileges.
func New(db *sql.DB, d dialect.Dialect) *Reconciler {
	return &Reconciler{db: db, dialect: d}
}

// ReconcileAfterReset re-grants schema usage and DML to runtimeRole and
// installs default-privilege rules in the named schema.
// On backends without a privilege model this is a no-op, not an error.
func (r *Reconciler) ReconcileAfterReset(ctx context.Context, schema, runtimeRole string) error {
	if !r.dialect.SupportsPrivilegeModel() {
		slog.Debug("permission reconcile skipped", "dialect", r.dialect.Name())
		return nil
	}

	if schema == "" {
		schema = "public"
	}

	quotedSchema := r.dialect.QuoteIdent(schema)
	quotedRole := r.dialect.QuoteIdent(runtimeRole)

	statements := []string{
		fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", quotedSchema, quotedRole),
		fmt.Sprintf("GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA %s TO %s", quotedSchema, quotedRole),
		fmt.Sprintf("GRANT USAGE, SELECT ON ALL SEQUENCES IN SCHEMA %s TO %s", quotedSchema, quotedRole),
		fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT SELECT, INSERT, UPDATE, DELETE ON TABLES TO %s", quotedSchema, quotedRole),
		fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA %s GRANT USAGE, SELECT ON SEQUENCES TO %s", quotedSchema, quotedRole),
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return sterr.Wrap(sterr.ErrReconcile, err, "failed to reconcile permissions").
				With("role", runtimeRole).
				With("schema", schema).
				WithSQL(stmt)
		}
	}

	slog.Info("permissions reconciled", "schema", schema, "role", runtimeRole)
	return nil
}
