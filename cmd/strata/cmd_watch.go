package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/strata/internal/cli"
	"github.com/hlop3z/strata/internal/watch"
)

// watchCmd re-validates trigger SQL whenever artifacts change.
func watchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate trigger SQL on artifact changes",
		Long: `Watch the migrations and triggers directories and re-run trigger
validation whenever a file changes. Useful while editing trigger SQL
against a local database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			revalidate := func() {
				findings, err := client.ValidateTriggerConsistency()
				if err != nil {
					cli.PrintError(os.Stderr, err)
					return
				}
				if len(findings) == 0 {
					fmt.Printf("%s %s trigger SQL consistent\n",
						cli.Dim(time.Now().Format("15:04:05")), cli.Success("✓"))
					return
				}
				cli.PrintFindings(os.Stdout, findings)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dirs := []string{cfg.MigrationsDir, cfg.TriggersDir}
			fmt.Printf("%s watching %s and %s\n", cli.Note("→"), cfg.MigrationsDir, cfg.TriggersDir)

			revalidate()
			return watch.Watch(ctx, dirs, debounce, revalidate)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay before re-validating after a change")

	return cmd
}
