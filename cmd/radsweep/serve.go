package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"radsweep-hq/radsweep/pkg/cli"
	"radsweep-hq/radsweep/pkg/config"
	"radsweep-hq/radsweep/pkg/jobs"
	"radsweep-hq/radsweep/pkg/server"
	"radsweep-hq/radsweep/pkg/telemetry/health"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled jobs and the admin API",
		Long: `Start the job scheduler and the admin HTTP server.

Jobs with a schedule in the config file run on their cron expression.
The admin API exposes health probes, the job list, run history and
manual runs. Prometheus metrics are served when enabled.

Sending SIGHUP, or editing the config file when server.watch_config is
set, reloads job schedules and parameters without a restart.`,
		Example: `  radsweep serve --config radsweep.yaml
  radsweep serve --listen 0.0.0.0:9812`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := cli.SetupSignalHandler(cmd.Context())
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("listen") {
				a.cfg.Server.ListenAddress = listen
			}
			return a.serve(ctx, opts.configPath())
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "admin listen address (overrides server.listen_address)")

	return cmd
}

// serve runs the scheduler and admin server until ctx is cancelled.
func (a *app) serve(ctx context.Context, configPath string) error {
	scheduler := jobs.NewScheduler(a.runner)
	if err := scheduler.Start(ctx, a.cfg.ScheduleEntries()); err != nil {
		return cli.NewConfigError("jobs", err.Error())
	}
	defer scheduler.Stop()
	a.collector.WatchScheduler(scheduler)

	checker := health.New(5 * time.Second)
	checker.RegisterCheck("store", a.store.Ping)
	checker.RegisterCheck("scheduler", func(context.Context) error {
		if !scheduler.IsRunning() {
			return errors.New("scheduler is not running")
		}
		return nil
	})

	srvOpts := server.Options{
		Runner:    a.runner,
		Schedules: scheduler,
		Health:    checker,
		Version: health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
			GoVersion: runtime.Version(),
		},
	}
	if a.cfg.Telemetry.Metrics.Enabled {
		srvOpts.Metrics = a.collector.Handler()
		srvOpts.MetricsPath = a.cfg.Telemetry.Metrics.Path
	}
	srv := server.NewServer(&a.cfg.Server, srvOpts)

	reload := func(next *config.Config) error {
		return a.reload(scheduler, next)
	}

	if configPath != "" {
		sighup, stopSignals := cli.ReloadSignals()
		defer stopSignals()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-sighup:
					a.logger.Info("received SIGHUP, reloading configuration", "path", configPath)
					next, err := config.LoadConfigWithEnvOverrides(configPath)
					if err != nil {
						a.logger.Error("failed to reload configuration", "error", err)
						continue
					}
					if err := reload(next); err != nil {
						a.logger.Error("failed to apply configuration", "error", err)
					}
				}
			}
		}()

		if a.cfg.Server.WatchConfig {
			watcher, err := config.NewWatcher(configPath, config.DefaultDebounceInterval)
			if err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer watcher.Stop()
			go func() {
				if err := watcher.Watch(ctx, reload); err != nil && !errors.Is(err, context.Canceled) {
					a.logger.Error("config watcher stopped", "error", err)
				}
			}()
		}
	}

	a.logger.Info("radsweep started",
		"version", Version,
		"store", fmt.Sprint(a.store),
		"scheduled_jobs", len(a.cfg.ScheduleEntries()),
		"listen_address", a.cfg.Server.ListenAddress,
	)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("admin server failed: %w", err)
	}
	a.logger.Info("radsweep stopped")
	return nil
}

// reload applies job settings from next. Settings outside the jobs section
// take effect on restart only.
func (a *app) reload(scheduler *jobs.Scheduler, next *config.Config) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	if err := scheduler.Reload(next.ScheduleEntries()); err != nil {
		return err
	}

	if !reflect.DeepEqual(a.cfg.Database, next.Database) ||
		!reflect.DeepEqual(a.cfg.Server, next.Server) ||
		!reflect.DeepEqual(a.cfg.Telemetry, next.Telemetry) ||
		!reflect.DeepEqual(a.cfg.Retention, next.Retention) {
		a.logger.Warn("configuration changes outside jobs require a restart")
	}

	a.cfg.Jobs = next.Jobs
	a.logger.Info("configuration reloaded", "scheduled_jobs", len(next.ScheduleEntries()))
	return nil
}
