package jobs

import (
	"context"
	"errors"
	"fmt"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/retention"
)

// ErrUnknownJob is returned when a job name is not registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is a named retention operation that accepts string parameters.
type Job interface {
	Name() string
	Description() string
	Params() []ParamSpec
	Run(ctx context.Context, params Params) (*retention.Result, error)
}

// runFunc executes an operation with already parsed parameters.
type runFunc func(ctx context.Context) (*retention.Result, error)

// job adapts a bind function to the Job interface. bind parses parameters
// and returns the bound operation without touching the store.
type job struct {
	name        string
	description string
	params      []ParamSpec
	bind        func(r *paramReader) (runFunc, error)
}

func (j *job) Name() string        { return j.name }
func (j *job) Description() string { return j.description }
func (j *job) Params() []ParamSpec { return j.params }

// Validate checks params without running the operation.
func (j *job) Validate(params Params) error {
	_, err := j.prepare(params)
	return err
}

// Run validates params and runs the operation. Validation failures are
// returned before any store access.
func (j *job) Run(ctx context.Context, params Params) (*retention.Result, error) {
	run, err := j.prepare(params)
	if err != nil {
		return nil, err
	}
	return run(ctx)
}

func (j *job) prepare(params Params) (runFunc, error) {
	reader, err := newParamReader(params, j.params)
	if err != nil {
		return nil, err
	}
	return j.bind(reader)
}

// Registry holds the available jobs in a stable order.
type Registry struct {
	jobs  map[string]Job
	order []string
}

// NewRegistry creates a registry with every retention job bound to store.
func NewRegistry(store accounting.Store, opts *retention.Options) *Registry {
	methods := retention.DefaultMethodSet()
	if opts != nil && opts.Methods != nil {
		methods = opts.Methods
	}

	reconciler := retention.NewStaleSessionReconciler(store, opts)
	unverified := retention.NewUnverifiedAccountPurger(store, opts)
	expired := retention.NewExpiredAccountDeactivator(store, opts)
	oldAccounts := retention.NewOldAccountPurger(store, opts)
	audit := retention.NewAuditLogPurger(store, opts)

	r := &Registry{jobs: make(map[string]Job)}

	r.Register(&job{
		name:        retention.OpCleanupStaleSessions,
		description: "close sessions that never received a stop record",
		params:      []ParamSpec{ageParam(retention.DefaultStaleSessionDays), dryRunParam},
		bind: func(p *paramReader) (runFunc, error) {
			days, err := p.days()
			if err != nil {
				return nil, err
			}
			dryRun, err := p.dryRun()
			if err != nil {
				return nil, err
			}
			params := retention.StaleSessionParams{AgeThresholdDays: days, DryRun: dryRun}
			return func(ctx context.Context) (*retention.Result, error) {
				return reconciler.Run(ctx, params)
			}, nil
		},
	})

	r.Register(&job{
		name:        retention.OpDeleteUnverifiedUsers,
		description: "delete accounts that never completed verification",
		params: []ParamSpec{
			ageParam(retention.DefaultUnverifiedDays),
			{
				Name:        retention.ParamExcludedMethods,
				Description: "comma-separated registration methods to keep",
			},
			dryRunParam,
		},
		bind: func(p *paramReader) (runFunc, error) {
			days, err := p.days()
			if err != nil {
				return nil, err
			}
			excluded, err := methods.Parse(p.raw(retention.ParamExcludedMethods))
			if err != nil {
				return nil, err
			}
			dryRun, err := p.dryRun()
			if err != nil {
				return nil, err
			}
			params := retention.UnverifiedParams{
				AgeThresholdDays: days,
				ExcludedMethods:  excluded,
				DryRun:           dryRun,
			}
			return func(ctx context.Context) (*retention.Result, error) {
				return unverified.Run(ctx, params)
			}, nil
		},
	})

	r.Register(&job{
		name:        retention.OpDeactivateExpiredUsers,
		description: "deactivate accounts whose import batch has expired",
		params:      []ParamSpec{dryRunParam},
		bind: func(p *paramReader) (runFunc, error) {
			dryRun, err := p.dryRun()
			if err != nil {
				return nil, err
			}
			params := retention.ExpiredParams{DryRun: dryRun}
			return func(ctx context.Context) (*retention.Result, error) {
				return expired.Run(ctx, params)
			}, nil
		},
	})

	r.Register(&job{
		name:        retention.OpDeleteOldUsers,
		description: "delete accounts whose import batch expired long ago",
		params: []ParamSpec{
			ageParam(retention.DefaultOldAccountDays),
			{
				Name:        retention.ParamBasis,
				Default:     string(retention.BasisExpiration),
				Description: "age basis: expiration or joined",
			},
			dryRunParam,
		},
		bind: func(p *paramReader) (runFunc, error) {
			days, err := p.days()
			if err != nil {
				return nil, err
			}
			basis, err := retention.ParseBasis(p.raw(retention.ParamBasis))
			if err != nil {
				return nil, err
			}
			dryRun, err := p.dryRun()
			if err != nil {
				return nil, err
			}
			params := retention.OldAccountParams{AgeThresholdDays: days, Basis: basis, DryRun: dryRun}
			return func(ctx context.Context) (*retention.Result, error) {
				return oldAccounts.Run(ctx, params)
			}, nil
		},
	})

	r.Register(&job{
		name:        retention.OpDeleteOldAuthAttempts,
		description: "delete old authentication attempt logs",
		params:      []ParamSpec{ageParam(retention.DefaultAuditLogDays), dryRunParam},
		bind: func(p *paramReader) (runFunc, error) {
			params, err := auditParams(p)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context) (*retention.Result, error) {
				return audit.PurgeAuthAttempts(ctx, params)
			}, nil
		},
	})

	r.Register(&job{
		name:        retention.OpDeleteOldSessions,
		description: "delete old closed accounting sessions",
		params:      []ParamSpec{ageParam(retention.DefaultAuditLogDays), dryRunParam},
		bind: func(p *paramReader) (runFunc, error) {
			params, err := auditParams(p)
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context) (*retention.Result, error) {
				return audit.PurgeSessions(ctx, params)
			}, nil
		},
	})

	return r
}

func auditParams(p *paramReader) (retention.AuditParams, error) {
	days, err := p.days()
	if err != nil {
		return retention.AuditParams{}, err
	}
	dryRun, err := p.dryRun()
	if err != nil {
		return retention.AuditParams{}, err
	}
	return retention.AuditParams{AgeThresholdDays: days, DryRun: dryRun}, nil
}

// Register adds a job, replacing any job with the same name.
func (r *Registry) Register(j Job) {
	if _, exists := r.jobs[j.Name()]; !exists {
		r.order = append(r.order, j.Name())
	}
	r.jobs[j.Name()] = j
}

// Get returns the job with the given name.
func (r *Registry) Get(name string) (Job, error) {
	j, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return j, nil
}

// Names returns the registered job names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Validate checks params for the named job without running it. Jobs that
// do not implement Validate(Params) error accept any params here and are
// checked when they run.
func (r *Registry) Validate(name string, params Params) error {
	j, err := r.Get(name)
	if err != nil {
		return err
	}
	if v, ok := j.(interface{ Validate(Params) error }); ok {
		return v.Validate(params)
	}
	return nil
}

// All returns the registered jobs in registration order.
func (r *Registry) All() []Job {
	all := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.jobs[name])
	}
	return all
}
