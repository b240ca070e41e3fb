package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

// historyCmd shows applied units with details.
func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show applied migrations with timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.History()
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println(cli.Dim("no migrations applied yet"))
				return nil
			}

			for _, r := range records {
				at := "unknown"
				if !r.AppliedAt.IsZero() {
					at = r.AppliedAt.UTC().Format(time.RFC3339)
				}
				fmt.Printf("  %s  %s  %s\n", cli.Header(r.Token), at,
					cli.Dim(fmt.Sprintf("%dms", r.ExecTimeMs)))
			}
			return nil
		},
	}
}
