package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"radsweep-hq/radsweep/pkg/retention"
	"radsweep-hq/radsweep/pkg/telemetry/logging"
)

// Recorder observes completed runs.
type Recorder interface {
	RecordRun(outcome *Outcome)
}

// RunnerConfig contains configuration for the Runner.
type RunnerConfig struct {
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration

	// HistorySize is the number of outcomes kept in memory.
	// Default: 100
	HistorySize int

	// Recorder, if set, is told about every run.
	Recorder Recorder
}

// Runner executes registered jobs and records their outcomes.
type Runner struct {
	registry *Registry
	config   RunnerConfig
	history  *History
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(registry *Registry, config *RunnerConfig) *Runner {
	var cfg RunnerConfig
	if config != nil {
		cfg = *config
	}

	return &Runner{
		registry: registry,
		config:   cfg,
		history:  NewHistory(cfg.HistorySize),
		logger:   slog.Default().With("component", "jobs.runner"),
		now:      time.Now,
	}
}

// Registry returns the runner's job registry.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// History returns the runner's outcome history.
func (r *Runner) History() *History {
	return r.history
}

// Run executes the named job. It never returns nil; failures are reported
// through Outcome.Status, Outcome.ErrorKind and Outcome.Err.
func (r *Runner) Run(ctx context.Context, name string, params Params) *Outcome {
	return r.RunWithTrigger(ctx, name, params, "cli")
}

// RunWithTrigger is Run with an explicit trigger label for logs and history.
func (r *Runner) RunWithTrigger(ctx context.Context, name string, params Params, trigger string) *Outcome {
	outcome := &Outcome{
		RunID:     uuid.NewString(),
		Job:       name,
		Params:    params,
		Trigger:   trigger,
		StartedAt: r.now(),
	}

	logger := r.logger.With("job", name, "run_id", outcome.RunID, "trigger", trigger)
	logger.Debug("job started", "params", params)

	ctx = logging.WithRun(ctx, outcome.RunID, name, trigger)
	result, err := r.execute(ctx, name, params)
	outcome.Duration = r.now().Sub(outcome.StartedAt)

	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Error = err.Error()
		outcome.ErrorKind = Classify(err)
		logger.Error("job failed",
			"error", err,
			"error_kind", outcome.ErrorKind,
			"duration", outcome.Duration,
		)
	} else {
		outcome.Status = StatusSuccess
		outcome.Result = result
		logger.Info("job completed",
			"affected", result.Affected,
			"skipped", result.Skipped,
			"age_threshold_days", result.Threshold,
			"dry_run", result.DryRun,
			"duration", outcome.Duration,
		)
	}

	r.history.Add(outcome)
	// Unregistered names are caller input; keep them out of metric labels.
	if r.config.Recorder != nil && outcome.ErrorKind != KindUnknownJob {
		r.config.Recorder.RecordRun(outcome)
	}

	return outcome
}

func (r *Runner) execute(ctx context.Context, name string, params Params) (result *retention.Result, err error) {
	job, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("job %s panicked: %v", name, p)
		}
	}()

	return job.Run(ctx, params)
}
