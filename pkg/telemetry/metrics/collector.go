package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"radsweep-hq/radsweep/pkg/config"
	"radsweep-hq/radsweep/pkg/jobs"
)

// Collector owns the Prometheus registry for radsweep and records job runs.
// It implements jobs.Recorder.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	jobMetrics *JobMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry with the Go
// runtime and process collectors is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "radsweep",
//		Subsystem: "retention",
//	}
//	collector := metrics.NewCollector(cfg, nil)
//	runner := jobs.NewRunner(registry, &jobs.RunnerConfig{Recorder: collector})
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		jobMetrics: NewJobMetrics(cfg, registry),
	}
}

// RecordRun records a completed job run.
func (c *Collector) RecordRun(outcome *jobs.Outcome) {
	if !c.config.Enabled {
		return
	}
	c.jobMetrics.RecordRun(outcome)
}

// WatchScheduler exports the schedules of s as gauges. Values are read at
// scrape time.
func (c *Collector) WatchScheduler(s ScheduleSource) {
	c.registry.MustRegister(NewScheduleCollector(c.config, s))
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
