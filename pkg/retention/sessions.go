package retention

import (
	"context"
	"fmt"
	"log/slog"

	"radsweep-hq/radsweep/pkg/accounting"
)

// StaleSessionParams configures a StaleSessionReconciler run.
type StaleSessionParams struct {
	// AgeThresholdDays is how long a session may go without activity
	// before it is closed.
	AgeThresholdDays int

	// DryRun counts the sessions that would be closed without closing them.
	DryRun bool
}

// StaleSessionReconciler closes sessions whose stop was never recorded.
// A stale session is given stop time = last activity (update time, or start
// time if no update arrived), session time = stop - start, and update time =
// stop. Sessions with no start time or with an update before their start
// are skipped and counted.
type StaleSessionReconciler struct {
	store  accounting.Store
	clock  Clock
	logger *slog.Logger
}

// NewStaleSessionReconciler creates a new StaleSessionReconciler.
func NewStaleSessionReconciler(store accounting.Store, opts *Options) *StaleSessionReconciler {
	o := opts.resolve("retention.sessions")
	return &StaleSessionReconciler{
		store:  store,
		clock:  o.Clock,
		logger: o.Logger,
	}
}

// Run closes stale sessions.
func (r *StaleSessionReconciler) Run(ctx context.Context, params StaleSessionParams) (*Result, error) {
	cutoff, err := Cutoff(r.clock.Now(), params.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: OpCleanupStaleSessions,
		Threshold: params.AgeThresholdDays,
		Cutoff:    cutoff,
		DryRun:    params.DryRun,
	}

	filter := StaleSessionsFilter(cutoff)

	if params.DryRun {
		consistent := filter
		consistent.Validity = accounting.ValidityConsistent
		if result.Affected, err = r.store.CountSessions(ctx, consistent); err != nil {
			return nil, fmt.Errorf("count stale sessions: %w", err)
		}

		corrupt := filter
		corrupt.Validity = accounting.ValidityCorrupt
		if result.Skipped, err = r.store.CountSessions(ctx, corrupt); err != nil {
			return nil, fmt.Errorf("count corrupt sessions: %w", err)
		}
	} else {
		closed, err := r.store.CloseSessions(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("close stale sessions: %w", err)
		}
		result.Affected = closed.Closed
		result.Skipped = closed.Skipped
	}

	if result.Skipped > 0 {
		r.logger.WarnContext(ctx, "skipped corrupt sessions",
			"skipped", result.Skipped,
			"cutoff", cutoff,
		)
	}

	r.logger.InfoContext(ctx, result.Summary(),
		"operation", result.Operation,
		"age_threshold_days", params.AgeThresholdDays,
		"cutoff", cutoff,
		"affected", result.Affected,
		"skipped", result.Skipped,
		"dry_run", params.DryRun,
	)

	return result, nil
}
