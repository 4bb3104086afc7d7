package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds the global flags.
type rootOptions struct {
	configFile string
	verbose    bool
	logLevel   string
	format     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "radsweep",
		Short: "radsweep - retention and reconciliation for RADIUS accounting data",
		Long: `radsweep applies retention rules to a RADIUS accounting database.

Jobs can be run once from the command line or on cron schedules with
"radsweep serve", which also exposes an admin API and Prometheus metrics.

Configuration is read from the file given with --config (or $RADSWEEP_CONFIG)
and RADSWEEP_* environment variables. Without a file, defaults are used.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (default $RADSWEEP_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "o", "text", "output format: text, json, csv")

	for _, jc := range jobCommands {
		cmd.AddCommand(newJobCmd(opts, jc))
	}
	cmd.AddCommand(
		newJobsCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)

	return cmd
}
