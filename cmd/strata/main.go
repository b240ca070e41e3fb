// Package main provides the CLI for the Strata migration engine.
// Strata applies ordered, versioned schema changes exactly once, stays
// correct when several processes migrate concurrently at boot, and
// cross-validates hand-written trigger SQL against the migrated schema.
//
// Usage:
//
//	strata init                  # Scaffold migrations/, triggers/, strata.yaml
//	strata migrate               # Apply pending migrations
//	strata migrate --target 004  # Apply up to a specific version token
//	strata status                # Show applied/pending units
//	strata history               # Show applied units with timestamps
//	strata validate              # Check trigger SQL against the live schema
//	strata verify                # Check applied checksums against unit files
//	strata reconcile             # Re-grant runtime-principal access
//	strata watch                 # Re-validate on artifact changes
package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"

	// Database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	databaseURL string
	configFile  string
	noColor     bool
)

// errReported marks a failure whose details have already been printed.
// main still exits non-zero but must not print anything more. Returned
// instead of calling os.Exit inside RunE so deferred cleanup runs.
var errReported = errors.New("reported")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "strata",
		Short:   "Schema migration and trigger consistency engine",
		Long:    `Strata applies ordered, versioned schema migrations exactly once across concurrent processes, and validates hand-written trigger SQL against the schema those migrations produce.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				cli.SetColorEnabled(false)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", "", "Database connection URL")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "strata.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		migrateCmd(),
		statusCmd(),
		historyCmd(),
		validateCmd(),
		verifyCmd(),
		reconcileCmd(),
		watchCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			cli.PrintError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
