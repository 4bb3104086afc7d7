package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"radsweep-hq/radsweep/pkg/config"
	"radsweep-hq/radsweep/pkg/jobs"
)

// ScheduleSource lists registered job schedules. *jobs.Scheduler
// implements it.
type ScheduleSource interface {
	NextRuns() []jobs.ScheduledJob
}

// ScheduleCollector exports scheduler state at scrape time.
//
// Metrics:
//   - radsweep_retention_scheduled_jobs: Number of jobs with an active schedule
//   - radsweep_retention_job_next_run_timestamp_seconds: Next scheduled run per job
type ScheduleCollector struct {
	source    ScheduleSource
	scheduled *prometheus.Desc
	nextRun   *prometheus.Desc
}

// NewScheduleCollector creates a collector reading from source.
func NewScheduleCollector(cfg *config.MetricsConfig, source ScheduleSource) *ScheduleCollector {
	return &ScheduleCollector{
		source: source,
		scheduled: prometheus.NewDesc(
			prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, "scheduled_jobs"),
			"Number of jobs with an active schedule",
			nil, nil,
		),
		nextRun: prometheus.NewDesc(
			prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, "job_next_run_timestamp_seconds"),
			"Unix time of the next scheduled run",
			[]string{"job", "schedule"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (sc *ScheduleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sc.scheduled
	ch <- sc.nextRun
}

// Collect implements prometheus.Collector.
func (sc *ScheduleCollector) Collect(ch chan<- prometheus.Metric) {
	runs := sc.source.NextRuns()

	ch <- prometheus.MustNewConstMetric(sc.scheduled, prometheus.GaugeValue, float64(len(runs)))
	for _, r := range runs {
		if r.Next == nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(sc.nextRun, prometheus.GaugeValue,
			float64(r.Next.Unix()), r.Job, r.Schedule)
	}
}
