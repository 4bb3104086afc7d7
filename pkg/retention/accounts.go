package retention

import (
	"context"
	"fmt"
	"log/slog"

	"radsweep-hq/radsweep/pkg/accounting"
)

// Basis selects which age the old account purge measures.
type Basis string

const (
	// BasisExpiration measures age from the import batch expiry.
	BasisExpiration Basis = "expiration"

	// BasisJoined measures age from the join date and only considers
	// inactive accounts.
	BasisJoined Basis = "joined"
)

// ParseBasis parses a basis name. The empty string selects BasisExpiration.
func ParseBasis(raw string) (Basis, error) {
	switch Basis(raw) {
	case "", BasisExpiration:
		return BasisExpiration, nil
	case BasisJoined:
		return BasisJoined, nil
	default:
		return "", NewInvalidArgumentError(ParamBasis, raw, "must be expiration or joined")
	}
}

// UnverifiedParams configures an UnverifiedAccountPurger run.
type UnverifiedParams struct {
	AgeThresholdDays int

	// ExcludedMethods lists registration methods whose pending accounts
	// are kept regardless of age.
	ExcludedMethods []accounting.Method

	DryRun bool
}

// UnverifiedAccountPurger deletes accounts that registered but never
// completed verification. Accounts without a verification record are out of
// scope and never deleted.
type UnverifiedAccountPurger struct {
	store   accounting.Store
	clock   Clock
	logger  *slog.Logger
	methods *MethodSet
}

// NewUnverifiedAccountPurger creates a new UnverifiedAccountPurger.
func NewUnverifiedAccountPurger(store accounting.Store, opts *Options) *UnverifiedAccountPurger {
	o := opts.resolve("retention.unverified")
	return &UnverifiedAccountPurger{
		store:   store,
		clock:   o.Clock,
		logger:  o.Logger,
		methods: o.Methods,
	}
}

// Run deletes unverified accounts older than the threshold.
func (p *UnverifiedAccountPurger) Run(ctx context.Context, params UnverifiedParams) (*Result, error) {
	if err := p.methods.Validate(params.ExcludedMethods); err != nil {
		return nil, err
	}

	cutoff, err := Cutoff(p.clock.Now(), params.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: OpDeleteUnverifiedUsers,
		Threshold: params.AgeThresholdDays,
		Cutoff:    cutoff,
		Excluded:  params.ExcludedMethods,
		DryRun:    params.DryRun,
	}

	filter := UnverifiedAccountsFilter(cutoff, params.ExcludedMethods)
	if params.DryRun {
		result.Affected, err = p.store.CountAccounts(ctx, filter)
	} else {
		result.Affected, err = p.store.DeleteAccounts(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("delete unverified accounts: %w", err)
	}

	p.logger.InfoContext(ctx, result.Summary(),
		"operation", result.Operation,
		"age_threshold_days", params.AgeThresholdDays,
		"excluded_methods", FormatMethods(params.ExcludedMethods),
		"cutoff", cutoff,
		"affected", result.Affected,
		"dry_run", params.DryRun,
	)

	return result, nil
}

// ExpiredParams configures an ExpiredAccountDeactivator run.
type ExpiredParams struct {
	DryRun bool
}

// ExpiredAccountDeactivator disables active accounts whose import batch has
// expired.
type ExpiredAccountDeactivator struct {
	store  accounting.Store
	clock  Clock
	logger *slog.Logger
}

// NewExpiredAccountDeactivator creates a new ExpiredAccountDeactivator.
func NewExpiredAccountDeactivator(store accounting.Store, opts *Options) *ExpiredAccountDeactivator {
	o := opts.resolve("retention.expired")
	return &ExpiredAccountDeactivator{
		store:  store,
		clock:  o.Clock,
		logger: o.Logger,
	}
}

// Run deactivates accounts of batches expired at or before now.
func (d *ExpiredAccountDeactivator) Run(ctx context.Context, params ExpiredParams) (*Result, error) {
	now := d.clock.Now()
	result := &Result{
		Operation: OpDeactivateExpiredUsers,
		Cutoff:    now,
		DryRun:    params.DryRun,
	}

	var err error
	filter := ExpiredAccountsFilter(now)
	if params.DryRun {
		result.Affected, err = d.store.CountAccounts(ctx, filter)
	} else {
		result.Affected, err = d.store.DeactivateAccounts(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("deactivate expired accounts: %w", err)
	}

	d.logger.InfoContext(ctx, result.Summary(),
		"operation", result.Operation,
		"now", now,
		"affected", result.Affected,
		"dry_run", params.DryRun,
	)

	return result, nil
}

// OldAccountParams configures an OldAccountPurger run.
type OldAccountParams struct {
	AgeThresholdDays int
	Basis            Basis
	DryRun           bool
}

// OldAccountPurger hard-deletes accounts past their useful life.
type OldAccountPurger struct {
	store  accounting.Store
	clock  Clock
	logger *slog.Logger
}

// NewOldAccountPurger creates a new OldAccountPurger.
func NewOldAccountPurger(store accounting.Store, opts *Options) *OldAccountPurger {
	o := opts.resolve("retention.old_accounts")
	return &OldAccountPurger{
		store:  store,
		clock:  o.Clock,
		logger: o.Logger,
	}
}

// Run deletes old accounts according to params.Basis.
func (p *OldAccountPurger) Run(ctx context.Context, params OldAccountParams) (*Result, error) {
	basis, err := ParseBasis(string(params.Basis))
	if err != nil {
		return nil, err
	}

	cutoff, err := Cutoff(p.clock.Now(), params.AgeThresholdDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Operation: OpDeleteOldUsers,
		Threshold: params.AgeThresholdDays,
		Cutoff:    cutoff,
		Basis:     basis,
		DryRun:    params.DryRun,
	}

	filter := OldAccountsFilter(cutoff, basis)
	if params.DryRun {
		result.Affected, err = p.store.CountAccounts(ctx, filter)
	} else {
		result.Affected, err = p.store.DeleteAccounts(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("delete old accounts: %w", err)
	}

	p.logger.InfoContext(ctx, result.Summary(),
		"operation", result.Operation,
		"age_threshold_days", params.AgeThresholdDays,
		"basis", basis,
		"cutoff", cutoff,
		"affected", result.Affected,
		"dry_run", params.DryRun,
	)

	return result, nil
}
