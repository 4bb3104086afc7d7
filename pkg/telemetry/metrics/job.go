package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"radsweep-hq/radsweep/pkg/config"
	"radsweep-hq/radsweep/pkg/jobs"
)

// JobMetrics tracks retention job runs.
//
// Metrics:
//   - radsweep_retention_job_runs_total: Runs by job and status
//   - radsweep_retention_job_failures_total: Failed runs by job and error kind
//   - radsweep_retention_job_records_affected_total: Records changed (dry runs excluded)
//   - radsweep_retention_job_records_skipped_total: Corrupt records left untouched
//   - radsweep_retention_job_duration_seconds: Run duration histogram
//   - radsweep_retention_job_last_success_timestamp_seconds: Completion time of the last successful run
type JobMetrics struct {
	runsTotal       *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	affectedTotal   *prometheus.CounterVec
	skippedTotal    *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	lastSuccessTime *prometheus.GaugeVec
}

// NewJobMetrics creates and registers job metrics with the provided registry.
func NewJobMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JobMetrics {
	jm := &JobMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_runs_total",
				Help:      "Total number of retention job runs",
			},
			[]string{"job", "status", "dry_run"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_failures_total",
				Help:      "Total number of failed retention job runs by error kind",
			},
			[]string{"job", "kind"},
		),

		affectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_records_affected_total",
				Help:      "Total number of records deleted, deactivated or closed",
			},
			[]string{"job"},
		),

		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_records_skipped_total",
				Help:      "Total number of corrupt records skipped",
			},
			[]string{"job"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_duration_seconds",
				Help:      "Duration of retention job runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"job"},
		),

		lastSuccessTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "job_last_success_timestamp_seconds",
				Help:      "Unix time at which the last successful run finished",
			},
			[]string{"job"},
		),
	}

	registry.MustRegister(
		jm.runsTotal,
		jm.failuresTotal,
		jm.affectedTotal,
		jm.skippedTotal,
		jm.duration,
		jm.lastSuccessTime,
	)

	return jm
}

// RecordRun records one run. Counts from dry runs only show up in
// job_runs_total since nothing was changed.
func (jm *JobMetrics) RecordRun(o *jobs.Outcome) {
	dryRun := o.Result != nil && o.Result.DryRun

	jm.runsTotal.WithLabelValues(o.Job, string(o.Status), strconv.FormatBool(dryRun)).Inc()
	jm.duration.WithLabelValues(o.Job).Observe(o.Duration.Seconds())

	if !o.Succeeded() {
		jm.failuresTotal.WithLabelValues(o.Job, string(o.ErrorKind)).Inc()
		return
	}

	finished := o.StartedAt.Add(o.Duration)
	jm.lastSuccessTime.WithLabelValues(o.Job).Set(float64(finished.UnixNano()) / 1e9)

	if dryRun {
		return
	}
	jm.affectedTotal.WithLabelValues(o.Job).Add(float64(o.Affected()))
	jm.skippedTotal.WithLabelValues(o.Job).Add(float64(o.Skipped()))
}
