package config

import (
	"reflect"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"database.driver", cfg.Database.Driver, DefaultDatabaseDriver},
		{"database.path", cfg.Database.Path, DefaultDatabasePath},
		{"database.max_open_conns", cfg.Database.MaxOpenConns, DefaultDatabaseMaxOpenConns},
		{"database.max_idle_conns", cfg.Database.MaxIdleConns, DefaultDatabaseMaxIdleConns},
		{"database.busy_timeout", cfg.Database.BusyTimeout, DefaultDatabaseBusyTimeout},
		{"retention.run_timeout", cfg.Retention.RunTimeout, DefaultRunTimeout},
		{"retention.history_size", cfg.Retention.HistorySize, DefaultHistorySize},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, DefaultLoggingLevel},
		{"telemetry.logging.format", cfg.Telemetry.Logging.Format, DefaultLoggingFormat},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, DefaultMetricsPath},
		{"telemetry.metrics.namespace", cfg.Telemetry.Metrics.Namespace, DefaultMetricsNamespace},
		{"telemetry.metrics.subsystem", cfg.Telemetry.Metrics.Subsystem, DefaultMetricsSubsystem},
		{"server.listen_address", cfg.Server.ListenAddress, DefaultListenAddress},
		{"server.read_timeout", cfg.Server.ReadTimeout, DefaultReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeout, DefaultWriteTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeout, DefaultShutdownTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if cfg.Jobs == nil {
		t.Error("jobs map is nil")
	}
	if !reflect.DeepEqual(cfg.Telemetry.Metrics.DurationBuckets, DefaultDurationBuckets) {
		t.Errorf("duration buckets = %v, want %v", cfg.Telemetry.Metrics.DurationBuckets, DefaultDurationBuckets)
	}
}

func TestApplyDefaults_PreservesValues(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "postgres", DSN: "postgres://db/radius", MaxOpenConns: 3},
		Server:   ServerConfig{ListenAddress: ":9000"},
	}
	ApplyDefaults(cfg)

	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Path != "" {
		t.Errorf("path = %q, want empty when dsn is set", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 3 {
		t.Errorf("max_open_conns = %d, want 3", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.ListenAddress != ":9000" {
		t.Errorf("listen_address = %q, want :9000", cfg.Server.ListenAddress)
	}
}

func TestApplyDefaults_Database(t *testing.T) {
	tests := []struct {
		name     string
		database DatabaseConfig
		wantPath string
		wantIdle int
	}{
		{
			name:     "sqlite gets default path",
			database: DatabaseConfig{Driver: "sqlite3"},
			wantPath: DefaultDatabasePath,
			wantIdle: DefaultDatabaseMaxIdleConns,
		},
		{
			name:     "postgres without dsn gets no path",
			database: DatabaseConfig{Driver: "postgres"},
			wantIdle: DefaultDatabaseMaxIdleConns,
		},
		{
			name:     "memory gets no path",
			database: DatabaseConfig{Driver: MemoryDriver},
			wantIdle: DefaultDatabaseMaxIdleConns,
		},
		{
			name:     "idle clamped to small pool",
			database: DatabaseConfig{Driver: "sqlite", MaxOpenConns: 2},
			wantPath: DefaultDatabasePath,
			wantIdle: 2,
		},
		{
			name:     "explicit idle kept",
			database: DatabaseConfig{Driver: "sqlite", MaxOpenConns: 20, MaxIdleConns: 8},
			wantPath: DefaultDatabasePath,
			wantIdle: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: tt.database}
			ApplyDefaults(cfg)

			if cfg.Database.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", cfg.Database.Path, tt.wantPath)
			}
			if cfg.Database.MaxIdleConns != tt.wantIdle {
				t.Errorf("max_idle_conns = %d, want %d", cfg.Database.MaxIdleConns, tt.wantIdle)
			}
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(first, *cfg) {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if !cfg.Server.WatchConfig {
		t.Error("config watching should be enabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}
