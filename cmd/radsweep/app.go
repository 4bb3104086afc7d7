package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/accounting/storage"
	"radsweep-hq/radsweep/pkg/cli"
	"radsweep-hq/radsweep/pkg/config"
	"radsweep-hq/radsweep/pkg/jobs"
	"radsweep-hq/radsweep/pkg/retention"
	"radsweep-hq/radsweep/pkg/telemetry/logging"
	"radsweep-hq/radsweep/pkg/telemetry/metrics"
)

// app is the wiring shared by every command that touches the store.
type app struct {
	cfg       *config.Config
	store     accounting.Store
	runner    *jobs.Runner
	collector *metrics.Collector
	logger    *slog.Logger

	reloadMu sync.Mutex
}

// configPath resolves --config, falling back to $RADSWEEP_CONFIG.
func (o *rootOptions) configPath() string {
	if o.configFile != "" {
		return o.configFile
	}
	return os.Getenv("RADSWEEP_CONFIG")
}

// loadConfig loads configuration and installs the process logger.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(o.configPath())
	if err != nil {
		return nil, cli.NewConfigError(o.configPath(), err.Error())
	}

	switch {
	case o.logLevel != "":
		cfg.Telemetry.Logging.Level = o.logLevel
	case o.verbose:
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    true,
	}); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	return cfg, nil
}

// openStore opens the configured accounting store.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (accounting.Store, error) {
	slog.Info("opening accounting store",
		"driver", cfg.Driver,
		"dsn", cfg.DSN,
		"path", cfg.Path,
	)

	if cfg.Driver == config.MemoryDriver {
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewSQLStore(ctx, cfg.SQLConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// newApp loads configuration and wires store, jobs and metrics.
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	methods, err := retention.NewMethodSet(cfg.Retention.ExtraMethods...)
	if err != nil {
		return nil, cli.NewConfigError("retention.extra_methods", err.Error())
	}

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	registry := jobs.NewRegistry(store, &retention.Options{Methods: methods})
	runner := jobs.NewRunner(registry, &jobs.RunnerConfig{
		Timeout:     cfg.Retention.RunTimeout,
		HistorySize: cfg.Retention.HistorySize,
		Recorder:    collector,
	})

	return &app{
		cfg:       cfg,
		store:     store,
		runner:    runner,
		collector: collector,
		logger:    slog.Default().With("component", "cmd"),
	}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}

// configuredParams returns the parameters set for job in the config file.
func (a *app) configuredParams(job string) jobs.Params {
	params := make(jobs.Params)
	for k, v := range a.cfg.Jobs[job].Params {
		params[k] = v
	}
	return params
}
