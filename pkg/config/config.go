package config

import "time"

// Config is the root configuration structure for radsweep.
type Config struct {
	// Database selects and tunes the accounting store.
	Database DatabaseConfig `yaml:"database"`

	// Retention contains settings shared by all retention jobs.
	Retention RetentionConfig `yaml:"retention"`

	// Jobs maps job names (e.g., "cleanup_stale_sessions") to their
	// schedule and parameters.
	Jobs map[string]JobConfig `yaml:"jobs"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains configuration for the admin HTTP server started by
	// "radsweep serve".
	Server ServerConfig `yaml:"server"`
}

// DatabaseConfig contains configuration for the accounting store.
type DatabaseConfig struct {
	// Driver selects the backend.
	// Options: "sqlite", "sqlite3", "postgres", "mysql", "memory"
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// DSN is the driver-specific connection string. Required for postgres
	// and mysql.
	DSN string `yaml:"dsn"`

	// Path is the SQLite database file, used when DSN is empty.
	// Default: "data/radius.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MigrateOnStart applies pending schema migrations when the store is
	// opened.
	// Default: false
	MigrateOnStart bool `yaml:"migrate_on_start"`
}

// RetentionConfig contains settings shared by all retention jobs.
type RetentionConfig struct {
	// ExtraMethods adds registration methods to the built-in set accepted
	// in excluded_methods lists.
	ExtraMethods []string `yaml:"extra_methods"`

	// RunTimeout bounds a single job run. Zero means no limit.
	// Default: 30m
	RunTimeout time.Duration `yaml:"run_timeout"`

	// HistorySize is the number of run outcomes kept in memory.
	// Default: 100
	HistorySize int `yaml:"history_size"`
}

// JobConfig configures one scheduled job.
type JobConfig struct {
	// Enabled turns the schedule on or off. A job with a schedule is
	// enabled unless this is explicitly false.
	Enabled *bool `yaml:"enabled"`

	// Schedule is a standard cron expression (e.g., "0 3 * * *") or
	// descriptor (e.g., "@daily").
	Schedule string `yaml:"schedule"`

	// Params are the job parameters (e.g., age_threshold_days: "30").
	Params map[string]string `yaml:"params"`
}

// IsEnabled reports whether the job should be scheduled.
func (j JobConfig) IsEnabled() bool {
	if j.Schedule == "" {
		return false
	}
	return j.Enabled == nil || *j.Enabled
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "radsweep"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "retention"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for job duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// ServerConfig contains configuration for the admin HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:9812"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Manual job runs are synchronous, so keep this above the
	// longest expected run.
	// Default: 30m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// WatchConfig reloads job schedules when the configuration file changes.
	// Default: true
	WatchConfig bool `yaml:"watch_config"`
}
