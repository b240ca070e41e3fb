package main

import (
	"errors"
	"os"
	"testing"
)

const e2eSchema = `
CREATE TABLE accounts (
    id INTEGER PRIMARY KEY,
    email TEXT NOT NULL
);

CREATE TABLE account_activity_times (
    id INTEGER PRIMARY KEY,
    last_login_at TEXT
);
`

// References account_id, which the migrated schema does not have.
const e2eDriftedTrigger = `
CREATE TRIGGER log_login
AFTER UPDATE ON accounts
BEGIN
    INSERT INTO account_activity_times (account_id, last_login_at)
    VALUES (NEW.id, datetime('now'));
END;
`

// runCLI executes one command invocation against a fresh command tree,
// the way main does. Flag registration resets the package-level flag
// variables, so invocations do not leak state into each other.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCLILifecycle(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")

	if err := runCLI(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, path := range []string{"strata.yaml", "migrations/001_initial_schema.sql", "triggers/sqlite.sql"} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("init did not create %s: %v", path, err)
		}
	}

	unitPath := "migrations/001_initial_schema.sql"
	if err := os.WriteFile(unitPath, []byte(e2eSchema), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, "migrate", "-d", "app.db"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := runCLI(t, "migrate", "-d", "app.db"); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := runCLI(t, "status", "-d", "app.db"); err != nil {
		t.Fatalf("status: %v", err)
	}

	// The scaffolded trigger artifact holds no definitions yet.
	if err := runCLI(t, "validate", "-d", "app.db"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	t.Run("drifted trigger fails validate", func(t *testing.T) {
		if err := os.WriteFile("triggers/sqlite.sql", []byte(e2eDriftedTrigger), 0o644); err != nil {
			t.Fatal(err)
		}
		err := runCLI(t, "validate", "-d", "app.db")
		if !errors.Is(err, errReported) {
			t.Errorf("validate error = %v, want the reported sentinel", err)
		}
	})

	t.Run("edited unit fails verify", func(t *testing.T) {
		edited := e2eSchema + "\nCREATE INDEX idx_accounts_email ON accounts (email);\n"
		if err := os.WriteFile(unitPath, []byte(edited), 0o644); err != nil {
			t.Fatal(err)
		}
		err := runCLI(t, "verify", "-d", "app.db")
		if !errors.Is(err, errReported) {
			t.Errorf("verify error = %v, want the reported sentinel", err)
		}

		if err := os.WriteFile(unitPath, []byte(e2eSchema), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := runCLI(t, "verify", "-d", "app.db"); err != nil {
			t.Errorf("verify after restore: %v", err)
		}
	})
}

func TestCLIMissingDatabaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")

	err := runCLI(t, "status")
	if err == nil || errors.Is(err, errReported) {
		t.Errorf("status error = %v, want a printable error", err)
	}
}
