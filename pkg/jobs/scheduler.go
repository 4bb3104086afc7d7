package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Entry schedules one job.
type Entry struct {
	Job      string
	Schedule string // standard five-field cron expression or descriptor (@daily)
	Params   Params
}

// ValidateSchedule checks a cron expression.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}

// Scheduler runs jobs on cron schedules. A run of one job is skipped while
// the previous run of the same job is still in progress; different jobs run
// independently.
type Scheduler struct {
	runner  *Runner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	entries map[string]cron.EntryID
	specs   map[string]string
	running bool

	// guarded holds one SkipIfStillRunning job per name, kept across
	// reloads so a run started before a reload still blocks the next tick.
	guarded map[string]cron.Job

	// bindMu guards ctx and params, which scheduled runs read. It is
	// separate from mu because Stop holds mu while waiting for runs.
	bindMu sync.RWMutex
	ctx    context.Context
	params map[string]Params
}

// NewScheduler creates a new Scheduler for runner.
func NewScheduler(runner *Runner) *Scheduler {
	logger := slog.Default().With("component", "jobs.scheduler")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		runner: runner,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
		specs:   make(map[string]string),
		guarded: make(map[string]cron.Job),
		params:  make(map[string]Params),
	}
}

// Start registers entries and starts the scheduler. Runs use ctx; when ctx
// is cancelled the scheduler stops.
func (s *Scheduler) Start(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.bindMu.Lock()
	s.ctx = ctx
	s.bindMu.Unlock()

	if err := s.register(entries); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("job scheduler started", "jobs", len(s.entries))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Reload replaces all schedules. Runs already in progress are not affected.
// On error the previous schedules stay in place.
func (s *Scheduler) Reload(entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(entries); err != nil {
		return err
	}

	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = make(map[string]cron.EntryID)
	s.specs = make(map[string]string)

	if err := s.register(entries); err != nil {
		return err
	}

	s.logger.Info("job schedules reloaded", "jobs", len(s.entries))
	return nil
}

func (s *Scheduler) validate(entries []Entry) error {
	seen := make(map[string]bool)
	for _, e := range entries {
		if _, err := s.runner.Registry().Get(e.Job); err != nil {
			return err
		}
		if seen[e.Job] {
			return fmt.Errorf("job %s scheduled twice", e.Job)
		}
		seen[e.Job] = true
		if err := ValidateSchedule(e.Schedule); err != nil {
			return fmt.Errorf("job %s: %w", e.Job, err)
		}
		if err := s.runner.Registry().Validate(e.Job, e.Params); err != nil {
			return fmt.Errorf("job %s: %w", e.Job, err)
		}
	}
	return nil
}

// register adds entries to cron. Callers must hold s.mu.
func (s *Scheduler) register(entries []Entry) error {
	if err := s.validate(entries); err != nil {
		return err
	}

	s.bindMu.Lock()
	for _, e := range entries {
		s.params[e.Job] = e.Params
	}
	s.bindMu.Unlock()

	for _, e := range entries {
		id, err := s.cron.AddJob(e.Schedule, s.guardedJob(e.Job))
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", e.Job, err)
		}
		s.entries[e.Job] = id
		s.specs[e.Job] = e.Schedule

		s.logger.Info("job scheduled", "job", e.Job, "schedule", e.Schedule)
	}
	return nil
}

// guardedJob returns the cron job for name, creating it on first use.
// Callers must hold s.mu.
func (s *Scheduler) guardedJob(name string) cron.Job {
	if j, ok := s.guarded[name]; ok {
		return j
	}

	skip := cron.SkipIfStillRunning(cronLogger{logger: s.logger.With("job", name)})
	j := skip(cron.FuncJob(func() {
		ctx, params := s.binding(name)
		s.runner.RunWithTrigger(ctx, name, params, "schedule")
	}))
	s.guarded[name] = j
	return j
}

// binding returns the run context and the current params for name.
func (s *Scheduler) binding(name string) (context.Context, Params) {
	s.bindMu.RLock()
	defer s.bindMu.RUnlock()

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, s.params[name]
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("job scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run of a job, or nil if the job is not
// scheduled.
func (s *Scheduler) NextRun(job string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[job]
	if !ok {
		return nil
	}

	next := s.cron.Entry(id).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// ScheduledJob describes a registered schedule.
type ScheduledJob struct {
	Job      string     `json:"job"`
	Schedule string     `json:"schedule"`
	Next     *time.Time `json:"next_run,omitempty"`
}

// NextRuns lists scheduled jobs ordered by name.
func (s *Scheduler) NextRuns() []ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduled := make([]ScheduledJob, 0, len(s.entries))
	for job, id := range s.entries {
		sj := ScheduledJob{Job: job, Schedule: s.specs[job]}
		if next := s.cron.Entry(id).Next; !next.IsZero() {
			sj.Next = &next
		}
		scheduled = append(scheduled, sj)
	}
	sort.Slice(scheduled, func(i, j int) bool { return scheduled[i].Job < scheduled[j].Job })
	return scheduled
}
