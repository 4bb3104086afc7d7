package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Load the configuration file and environment overrides and report
any errors. The store is not opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			path := opts.configPath()
			if path == "" {
				path = "(defaults)"
			}
			fmt.Fprintf(out, "✓ %s is valid\n", path)
			fmt.Fprintf(out, "  database: %s\n", cfg.Database.Driver)
			entries := cfg.ScheduleEntries()
			fmt.Fprintf(out, "  scheduled jobs: %d\n", len(entries))
			for _, e := range entries {
				fmt.Fprintf(out, "    %s  %s\n", e.Job, e.Schedule)
			}
			return nil
		},
	}
}
