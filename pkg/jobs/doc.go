// Package jobs exposes the retention operations as named, independently
// invocable jobs.
//
// A Registry maps job names (cleanup_stale_sessions, delete_unverified_users,
// ...) to Job values that parse string parameters and run the matching
// retention operation. A Runner executes jobs, assigns each run an ID,
// classifies failures and records an Outcome in its History and with an
// optional Recorder (the Prometheus collector in production). A Scheduler
// drives the Runner from cron expressions.
//
// Basic usage:
//
//	registry := jobs.NewRegistry(store, nil)
//	runner := jobs.NewRunner(registry, &jobs.RunnerConfig{Timeout: 10 * time.Minute})
//	outcome := runner.Run(ctx, "delete_unverified_users", jobs.Params{
//	    "age_threshold_days": "2",
//	    "excluded_methods":   "mobile_phone",
//	})
//	fmt.Println(outcome.Summary())
package jobs
