package config

import "time"

// Default values for configuration fields.
const (
	// Database defaults
	DefaultDatabaseDriver       = "sqlite"
	DefaultDatabasePath         = "data/radius.db"
	DefaultDatabaseMaxOpenConns = 10
	DefaultDatabaseMaxIdleConns = 5
	DefaultDatabaseBusyTimeout  = 5 * time.Second

	// Retention defaults
	DefaultRunTimeout  = 30 * time.Minute
	DefaultHistorySize = 100

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "radsweep"
	DefaultMetricsSubsystem = "retention"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9812"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultWatchConfig     = true
)

// DefaultDurationBuckets are the default job duration histogram buckets.
var DefaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600}

// DefaultConfig returns a configuration with every field at its default.
func DefaultConfig() *Config {
	cfg := baseConfig()
	ApplyDefaults(cfg)
	return cfg
}

// baseConfig holds the boolean options whose default is true. They cannot
// be filled by ApplyDefaults, so YAML is decoded on top of this value and an
// explicit false survives.
func baseConfig() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
		Server: ServerConfig{WatchConfig: DefaultWatchConfig},
	}
}

// isSQLiteDriver reports whether driver stores data in a local file.
func isSQLiteDriver(driver string) bool {
	return driver == "sqlite" || driver == "sqlite3"
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.Database.Path == "" && cfg.Database.DSN == "" && isSQLiteDriver(cfg.Database.Driver) {
		cfg.Database.Path = DefaultDatabasePath
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDatabaseMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = min(DefaultDatabaseMaxIdleConns, cfg.Database.MaxOpenConns)
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = DefaultDatabaseBusyTimeout
	}

	// Retention defaults
	if cfg.Retention.RunTimeout == 0 {
		cfg.Retention.RunTimeout = DefaultRunTimeout
	}
	if cfg.Retention.HistorySize == 0 {
		cfg.Retention.HistorySize = DefaultHistorySize
	}

	if cfg.Jobs == nil {
		cfg.Jobs = make(map[string]JobConfig)
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}
