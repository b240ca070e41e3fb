package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
)

// verifyCmd compares applied checksums against the unit files on disk.
func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify applied migrations match the files on disk",
		Long: `Verify that previously applied migration files have not been edited.

Applied checksums and on-disk unit checksums are folded into Merkle
roots; matching roots prove the applied history is byte-identical to
the current files. Any divergence is listed per token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Verify()
			if err != nil {
				return err
			}

			if len(result.Diverged) == 0 {
				fmt.Println(cli.Success("✓") + " applied history matches unit files")
				fmt.Printf("  root %s\n", cli.Dim(result.AppliedRoot))
				return nil
			}

			for _, d := range result.Diverged {
				switch d.Kind {
				case "missing-on-disk":
					fmt.Printf("%s %s was applied but its file is missing\n",
						cli.Error("✗"), cli.Header(d.Token))
				default:
					fmt.Printf("%s %s was edited after being applied\n",
						cli.Error("✗"), cli.Header(d.Token))
					fmt.Printf("    recorded %s\n", cli.Dim(d.Recorded))
					fmt.Printf("    on disk  %s\n", cli.Dim(d.Actual))
				}
			}
			fmt.Printf("\n%s\n", cli.Error(cli.FormatCount(len(result.Diverged), "diverged unit", "diverged units")))
			return errReported
		},
	}
}
