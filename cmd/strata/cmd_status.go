package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

// statusCmd shows applied/pending units.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			statuses, err := client.MigrationStatus()
			if err != nil {
				return err
			}

			if len(statuses) == 0 {
				fmt.Println(cli.Dim("no migration units found"))
				return nil
			}

			pending := 0
			for _, s := range statuses {
				marker := cli.Success("✓ applied")
				if !s.Applied {
					marker = cli.Warning("• pending")
					pending++
				}
				fmt.Printf("  %s  %s  %s\n", s.Token, marker, cli.Dim(s.Name))
			}

			fmt.Println()
			if pending == 0 {
				fmt.Println(cli.Success("up to date"))
			} else {
				fmt.Println(cli.Warning(cli.FormatCount(pending, "pending unit", "pending units")))
			}
			return nil
		},
	}
}
