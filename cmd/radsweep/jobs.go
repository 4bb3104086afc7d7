package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"radsweep-hq/radsweep/pkg/cli"
	"radsweep-hq/radsweep/pkg/jobs"
	"radsweep-hq/radsweep/pkg/retention"
)

// jobCommand describes the CLI surface of one retention job.
type jobCommand struct {
	use     string
	job     string
	short   string
	example string
	age     bool
	methods bool
	basis   bool
}

var jobCommands = []jobCommand{
	{
		use:     "cleanup-stale-sessions",
		job:     retention.OpCleanupStaleSessions,
		short:   "Close sessions that never received a stop record",
		example: "  radsweep cleanup-stale-sessions --older-than-days 30",
		age:     true,
	},
	{
		use:     "delete-unverified-users",
		job:     retention.OpDeleteUnverifiedUsers,
		short:   "Delete accounts that never completed verification",
		example: "  radsweep delete-unverified-users --older-than-days 2 --exclude-methods mobile_phone,bank_card",
		age:     true,
		methods: true,
	},
	{
		use:     "deactivate-expired-users",
		job:     retention.OpDeactivateExpiredUsers,
		short:   "Deactivate accounts whose import batch has expired",
		example: "  radsweep deactivate-expired-users --dry-run",
	},
	{
		use:     "delete-old-users",
		job:     retention.OpDeleteOldUsers,
		short:   "Delete accounts whose import batch expired long ago",
		example: "  radsweep delete-old-users --older-than-days 90 --basis joined",
		age:     true,
		basis:   true,
	},
	{
		use:     "delete-old-auth-attempts",
		job:     retention.OpDeleteOldAuthAttempts,
		short:   "Delete old authentication attempt logs",
		example: "  radsweep delete-old-auth-attempts --older-than-days 180",
		age:     true,
	},
	{
		use:     "delete-old-sessions",
		job:     retention.OpDeleteOldSessions,
		short:   "Delete old closed accounting sessions",
		example: "  radsweep delete-old-sessions --older-than-days 365",
		age:     true,
	},
}

// outcomeView renders a run outcome for the output formatters.
type outcomeView struct {
	*jobs.Outcome
}

func (v outcomeView) Text() string {
	return v.Summary()
}

func newJobCmd(opts *rootOptions, jc jobCommand) *cobra.Command {
	var (
		olderThan int
		excluded  []string
		basis     string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:     jc.use,
		Short:   jc.short,
		Example: jc.example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			if format == cli.FormatCSV {
				return cli.NewConfigError("format", "csv output is only available for list commands")
			}

			ctx, stop := cli.SetupSignalHandler(cmd.Context())
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			overrides := jobs.Params{}
			flags := cmd.Flags()
			if flags.Changed("older-than-days") {
				overrides[retention.ParamAgeThresholdDays] = strconv.Itoa(olderThan)
			}
			if flags.Changed("exclude-methods") {
				overrides[retention.ParamExcludedMethods] = strings.Join(excluded, ",")
			}
			if flags.Changed("basis") {
				overrides[retention.ParamBasis] = basis
			}
			if flags.Changed("dry-run") {
				overrides[retention.ParamDryRun] = strconv.FormatBool(dryRun)
			}

			outcome := a.runner.Run(ctx, jc.job, a.configuredParams(jc.job).Merge(overrides))
			if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), outcomeView{outcome}); err != nil {
				return err
			}
			if !outcome.Succeeded() {
				return cli.NewCommandError(jc.use, outcome.Err)
			}
			return nil
		},
	}

	if jc.age {
		cmd.Flags().IntVar(&olderThan, "older-than-days", 0, "age threshold in days (default from config or job)")
	}
	if jc.methods {
		cmd.Flags().StringSliceVar(&excluded, "exclude-methods", nil, "registration methods to keep (comma-separated)")
	}
	if jc.basis {
		cmd.Flags().StringVar(&basis, "basis", string(retention.BasisExpiration), "age basis: expiration or joined")
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "count matching records without changing them")

	return cmd
}

// jobTable lists registered jobs with their configured schedules.
type jobTable struct {
	rows [][]string
}

func (t jobTable) Header() []string {
	return []string{"job", "schedule", "params", "description"}
}

func (t jobTable) Rows() [][]string {
	return t.rows
}

func newJobsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List retention jobs and their schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// The job list does not need a live store.
			registry := jobs.NewRegistry(nil, nil)

			table := jobTable{}
			for _, j := range registry.All() {
				schedule := "-"
				if jc, ok := cfg.Jobs[j.Name()]; ok && jc.IsEnabled() {
					schedule = jc.Schedule
				}
				names := make([]string, 0, len(j.Params()))
				for _, p := range j.Params() {
					names = append(names, p.Name)
				}
				table.rows = append(table.rows, []string{
					j.Name(), schedule, strings.Join(names, ","), j.Description(),
				})
			}

			if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table); err != nil {
				return fmt.Errorf("failed to write job list: %w", err)
			}
			return nil
		},
	}
}
