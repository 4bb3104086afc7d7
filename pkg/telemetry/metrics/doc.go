// Package metrics exposes Prometheus metrics for radsweep.
//
// A Collector owns a private registry. It is passed to jobs.NewRunner as
// the run Recorder, and in serve mode it also reads the scheduler at scrape
// time:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	runner := jobs.NewRunner(registry, &jobs.RunnerConfig{Recorder: collector})
//	collector.WatchScheduler(scheduler)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// With the default namespace and subsystem the exported series are
// radsweep_retention_job_runs_total, radsweep_retention_job_failures_total,
// radsweep_retention_job_records_affected_total,
// radsweep_retention_job_records_skipped_total,
// radsweep_retention_job_duration_seconds,
// radsweep_retention_job_last_success_timestamp_seconds,
// radsweep_retention_scheduled_jobs and
// radsweep_retention_job_next_run_timestamp_seconds.
package metrics
