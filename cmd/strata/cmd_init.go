package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

const configTemplate = `# Strata configuration
# database_url is the migration principal; runtime_role is the
# restricted role the application connects as.
database_url: ${DATABASE_URL}

migrations_dir: ./migrations
triggers_dir: ./triggers

# Uncomment to pin the dialect instead of detecting it from the URL.
# dialect: postgres

# Role to re-grant after destructive schema rebuilds (postgres only).
# runtime_role: app_runtime

# schema: public
# lock_timeout: 30s
`

const firstUnitTemplate = `-- 001_initial_schema.sql
-- Statements here run inside one transaction with the version record.

-- CREATE TABLE users (
--     id BIGSERIAL PRIMARY KEY,
--     email TEXT NOT NULL UNIQUE,
--     created_at TIMESTAMPTZ NOT NULL DEFAULT now()
-- );
`

const triggerTemplate = `-- Trigger SQL for %s.
-- Validated against the migrated schema by "strata validate".
`

// initCmd scaffolds a new strata project in the current directory.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold migrations/, triggers/ and strata.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			created := 0

			for _, dir := range []string{"migrations", "triggers"} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}

			files := map[string]string{
				"strata.yaml":                       configTemplate,
				"migrations/001_initial_schema.sql": firstUnitTemplate,
				"triggers/postgres.sql":             fmt.Sprintf(triggerTemplate, "PostgreSQL"),
				"triggers/sqlite.sql":               fmt.Sprintf(triggerTemplate, "SQLite"),
			}

			for path, content := range files {
				if _, err := os.Stat(path); err == nil {
					fmt.Printf("%s %s already exists, skipping\n", cli.Note("·"), path)
					continue
				}
				if err := os.WriteFile(filepath.Clean(path), []byte(content), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Printf("%s created %s\n", cli.Success("✓"), path)
				created++
			}

			if created > 0 {
				fmt.Printf("\n%s set DATABASE_URL and run %s\n",
					cli.Note("next:"), cli.Code("strata migrate"))
			}
			return nil
		},
	}
}
