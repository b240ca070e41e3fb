package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
	"github.com/hlop3z/strata/pkg/strata"
)

// migrateCmd applies pending migrations.
func migrateCmd() *cobra.Command {
	var target string
	var skipLock bool
	var lockTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Long: `Apply pending migrations to the database.

Each unit runs in its own transaction together with its version record,
so a crash never leaves an applied-but-unrecorded unit. Concurrent
runners are serialized by an advisory lock where the backend offers one.`,
		Example: `  # Apply all pending migrations
  strata migrate

  # Apply up to a specific version token
  strata migrate --target 004

  # Skip lock coordination (single-runner CI only)
  strata migrate --skip-lock

  # Set custom lock timeout
  strata migrate --lock-timeout 60s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []strata.Option
			if skipLock {
				opts = append(opts, strata.WithSkipLock())
			}
			if lockTimeout > 0 {
				opts = append(opts, strata.WithLockTimeout(lockTimeout))
			}

			client, err := newClient(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.RunPendingMigrations(target)
			if err != nil {
				return err
			}

			if len(result.Applied) == 0 && len(result.Skipped) == 0 {
				fmt.Println(cli.Success("✓") + " migrations up to date")
				return nil
			}

			for _, token := range result.Applied {
				fmt.Printf("%s applied %s\n", cli.Success("✓"), token)
			}
			for _, token := range result.Skipped {
				fmt.Printf("%s %s already applied by another process\n", cli.Note("·"), token)
			}
			fmt.Printf("\n%s, now at %s\n",
				cli.Success(cli.FormatCount(len(result.Applied), "unit applied", "units applied")),
				cli.Header(result.Current))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", strata.TargetLatest, "Stop after this version token")
	cmd.Flags().BoolVar(&skipLock, "skip-lock", false, "Skip migration lock coordination")
	cmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 0, "Maximum wait for the migration lock")

	return cmd
}
