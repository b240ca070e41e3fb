package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

// validateCmd checks trigger SQL artifacts against the live schema.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate trigger SQL against the migrated schema",
		Long: `Validate hand-written trigger SQL against the live database schema.

Every table, column, and row-context reference (row-before/row-after)
in the trigger artifact must resolve against the schema the migrations
produced. A non-empty finding list exits non-zero so CI pipelines fail.`,
		Example: `  # Validate triggers for the configured dialect
  strata validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			findings, err := client.ValidateTriggerConsistency()
			if err != nil {
				return err
			}

			if len(findings) == 0 {
				fmt.Println(cli.Success("✓") + " trigger SQL is consistent with the schema")
				return nil
			}

			cli.PrintFindings(os.Stdout, findings)
			return errReported
		},
	}
}
