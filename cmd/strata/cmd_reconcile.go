package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

// reconcileCmd re-grants runtime-principal access after schema changes.
func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Re-grant runtime role access to schema objects",
		Long: `Re-grant the runtime role's access to all tables and sequences.

Destructive schema rebuilds drop object-level grants along with the
objects. This restores the restricted runtime principal's read/write
access and sets default privileges so future objects are covered too.`,
		Example: `  # Re-grant access for the role from strata.yaml
  strata reconcile`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.ReconcilePermissions(); err != nil {
				return err
			}
			fmt.Println(cli.Success("✓") + " runtime role permissions reconciled")
			return nil
		},
	}
}
