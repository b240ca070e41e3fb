//go:build integration

package reconcile

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/testutil"
)

// createRuntimeRole creates a throwaway NOLOGIN role to stand in for the
// application's restricted principal. Roles are cluster-wide, so the name
// is randomized and everything it was granted is dropped on cleanup.
func createRuntimeRole(t *testing.T, db *sql.DB) string {
	t.Helper()

	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		t.Fatal(err)
	}
	role := "strata_rt_" + hex.EncodeToString(raw)

	if _, err := db.Exec(fmt.Sprintf("CREATE ROLE %s NOLOGIN", role)); err != nil {
		t.Fatalf("create role: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(fmt.Sprintf("DROP OWNED BY %s", role))
		db.Exec(fmt.Sprintf("DROP ROLE IF EXISTS %s", role))
	})
	return role
}

func hasTablePrivilege(t *testing.T, db *sql.DB, role, table, privilege string) bool {
	t.Helper()
	var ok bool
	err := db.QueryRow("SELECT has_table_privilege($1, $2, $3)", role, table, privilege).Scan(&ok)
	if err != nil {
		t.Fatalf("has_table_privilege(%s, %s, %s): %v", role, table, privilege, err)
	}
	return ok
}

func TestReconcileAfterResetPostgres(t *testing.T) {
	db := testutil.SetupPostgres(t)
	ctx := context.Background()

	var schema string
	if err := db.QueryRow("SELECT current_schema()").Scan(&schema); err != nil {
		t.Fatalf("current_schema: %v", err)
	}

	// The state after a destructive reset: freshly created objects the
	// runtime role has no grants on.
	if _, err := db.Exec("CREATE TABLE accounts (id BIGSERIAL PRIMARY KEY, email TEXT NOT NULL)"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	role := createRuntimeRole(t, db)
	if hasTablePrivilege(t, db, role, schema+".accounts", "SELECT") {
		t.Fatal("fresh role unexpectedly has SELECT before reconcile")
	}

	r := New(db, dialect.Postgres())
	if err := r.ReconcileAfterReset(ctx, schema, role); err != nil {
		t.Fatalf("ReconcileAfterReset: %v", err)
	}

	var usage bool
	if err := db.QueryRow("SELECT has_schema_privilege($1, $2, 'USAGE')", role, schema).Scan(&usage); err != nil {
		t.Fatalf("has_schema_privilege: %v", err)
	}
	if !usage {
		t.Error("role lacks USAGE on the schema")
	}

	for _, privilege := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if !hasTablePrivilege(t, db, role, schema+".accounts", privilege) {
			t.Errorf("role lacks %s on accounts", privilege)
		}
	}

	var seq bool
	err := db.QueryRow("SELECT has_sequence_privilege($1, $2, 'USAGE, SELECT')", role, schema+".accounts_id_seq").Scan(&seq)
	if err != nil {
		t.Fatalf("has_sequence_privilege: %v", err)
	}
	if !seq {
		t.Error("role lacks USAGE, SELECT on the id sequence")
	}

	t.Run("default privileges cover later objects", func(t *testing.T) {
		if _, err := db.Exec("CREATE TABLE audit_log (id BIGSERIAL PRIMARY KEY, note TEXT)"); err != nil {
			t.Fatalf("create: %v", err)
		}
		if !hasTablePrivilege(t, db, role, schema+".audit_log", "INSERT") {
			t.Error("table created after reconcile is not covered by default privileges")
		}
	})
}

func TestReconcileUnknownRolePostgres(t *testing.T) {
	db := testutil.SetupPostgres(t)

	var schema string
	if err := db.QueryRow("SELECT current_schema()").Scan(&schema); err != nil {
		t.Fatalf("current_schema: %v", err)
	}

	r := New(db, dialect.Postgres())
	err := r.ReconcileAfterReset(context.Background(), schema, "strata_role_that_does_not_exist")
	if !sterr.Is(err, sterr.ErrReconcile) {
		t.Errorf("error = %v, want %s", err, sterr.ErrReconcile)
	}
}
