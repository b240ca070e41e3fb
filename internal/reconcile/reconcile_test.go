package reconcile

import (
	"context"
	"testing"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/testutil"
)

func TestReconcileNoPrivilegeModel(t *testing.T) {
	// SQLite has no roles or grants; reconcile must be a silent no-op,
	// never an error, so callers can run it unconditionally.
	db := testutil.SetupSQLite(t)
	r := New(db, dialect.SQLite())

	if err := r.ReconcileAfterReset(context.Background(), "", "app_runtime"); err != nil {
		t.Errorf("ReconcileAfterReset: %v", err)
	}
}
