package retention

import (
	"context"
	"fmt"
	"log/slog"

	"radsweep-hq/radsweep/pkg/accounting"
)

// AuditParams configures an AuditLogPurger call.
type AuditParams struct {
	AgeThresholdDays int
	DryRun           bool
}

// AuditLogPurger deletes old authentication attempts and old closed
// accounting sessions. The two record kinds are purged by separate calls,
// each with its own threshold.
type AuditLogPurger struct {
	store  accounting.Store
	clock  Clock
	logger *slog.Logger
}

// NewAuditLogPurger creates a new AuditLogPurger.
func NewAuditLogPurger(store accounting.Store, opts *Options) *AuditLogPurger {
	o := opts.resolve("retention.audit")
	return &AuditLogPurger{
		store:  store,
		clock:  o.Clock,
		logger: o.Logger,
	}
}

// PurgeAuthAttempts deletes authentication attempts older than the threshold.
func (p *AuditLogPurger) PurgeAuthAttempts(ctx context.Context, params AuditParams) (*Result, error) {
	cutoff, err := Cutoff(p.clock.Now(), params.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: OpDeleteOldAuthAttempts,
		Threshold: params.AgeThresholdDays,
		Cutoff:    cutoff,
		DryRun:    params.DryRun,
	}

	filter := OldAuthAttemptsFilter(cutoff)
	if params.DryRun {
		result.Affected, err = p.store.CountAuthAttempts(ctx, filter)
	} else {
		result.Affected, err = p.store.DeleteAuthAttempts(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("delete old auth attempts: %w", err)
	}

	p.log(ctx, result)
	return result, nil
}

// PurgeSessions deletes closed sessions that stopped before the threshold.
// Open sessions are never deleted.
func (p *AuditLogPurger) PurgeSessions(ctx context.Context, params AuditParams) (*Result, error) {
	cutoff, err := Cutoff(p.clock.Now(), params.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: OpDeleteOldSessions,
		Threshold: params.AgeThresholdDays,
		Cutoff:    cutoff,
		DryRun:    params.DryRun,
	}

	filter := OldSessionsFilter(cutoff)
	if params.DryRun {
		result.Affected, err = p.store.CountSessions(ctx, filter)
	} else {
		result.Affected, err = p.store.DeleteSessions(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("delete old sessions: %w", err)
	}

	p.log(ctx, result)
	return result, nil
}

func (p *AuditLogPurger) log(ctx context.Context, result *Result) {
	p.logger.InfoContext(ctx, result.Summary(),
		"operation", result.Operation,
		"age_threshold_days", result.Threshold,
		"cutoff", result.Cutoff,
		"affected", result.Affected,
		"dry_run", result.DryRun,
	)
}
