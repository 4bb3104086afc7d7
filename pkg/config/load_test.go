package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radsweep.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://radius@db/radius
  migrate_on_start: true
retention:
  extra_methods: [voucher]
  run_timeout: 5m
jobs:
  cleanup_stale_sessions:
    schedule: "*/15 * * * *"
    params:
      age_threshold_days: "7"
  delete_old_users:
    enabled: false
    schedule: "@daily"
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
server:
  listen_address: ":9900"
  watch_config: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Database.Driver != "postgres" || !cfg.Database.MigrateOnStart {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.Path != "" {
		t.Errorf("path = %q, want empty", cfg.Database.Path)
	}
	if cfg.Retention.RunTimeout != 5*time.Minute {
		t.Errorf("run_timeout = %v, want 5m", cfg.Retention.RunTimeout)
	}
	if len(cfg.Retention.ExtraMethods) != 1 || cfg.Retention.ExtraMethods[0] != "voucher" {
		t.Errorf("extra_methods = %v", cfg.Retention.ExtraMethods)
	}
	if got := cfg.Jobs["cleanup_stale_sessions"].Params["age_threshold_days"]; got != "7" {
		t.Errorf("age_threshold_days = %q, want 7", got)
	}
	if cfg.Jobs["delete_old_users"].IsEnabled() {
		t.Error("delete_old_users should be disabled")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("explicit metrics.enabled: false was overridden")
	}
	if cfg.Server.WatchConfig {
		t.Error("explicit watch_config: false was overridden")
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read_timeout = %v, want default", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "database: [",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown key",
			content: "databse:\n  driver: sqlite\n",
			wantErr: "failed to parse",
		},
		{
			name:    "validation failure",
			content: "database:\n  driver: oracle\n",
			wantErr: "database.driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.Driver != DefaultDatabaseDriver {
		t.Errorf("driver = %q, want default", cfg.Database.Driver)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n  path: /tmp/file.db\n")

	t.Setenv("RADSWEEP_DATABASE_PATH", "/var/lib/radius.db")
	t.Setenv("RADSWEEP_DATABASE_MAX_OPEN_CONNS", "2")
	t.Setenv("RADSWEEP_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("RADSWEEP_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("RADSWEEP_SERVER_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Database.Path != "/var/lib/radius.db" {
		t.Errorf("path = %q", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns != 2 {
		t.Errorf("max_open_conns = %d, want 2", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 2 {
		t.Errorf("max_idle_conns = %d, want it clamped to 2", cfg.Database.MaxIdleConns)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be disabled by env")
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown_timeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("RADSWEEP_DATABASE_DRIVER", "memory")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Database.Driver != MemoryDriver {
		t.Errorf("driver = %q, want memory", cfg.Database.Driver)
	}
}

func TestLoadConfigWithEnvOverrides_Malformed(t *testing.T) {
	t.Setenv("RADSWEEP_DATABASE_MAX_OPEN_CONNS", "many")
	t.Setenv("RADSWEEP_SERVER_READ_TIMEOUT", "soon")

	_, err := LoadConfigWithEnvOverrides("")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoadConfig_Example(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "radsweep.yaml"))
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}

	entries := cfg.ScheduleEntries()
	if len(entries) != 5 {
		t.Errorf("got %d scheduled jobs, want 5 (delete_old_sessions is disabled)", len(entries))
	}
	for _, e := range entries {
		if e.Job == "delete_old_sessions" {
			t.Error("disabled job was scheduled")
		}
	}
}

func TestLoadConfigWithEnvOverrides_DriverDerivedPath(t *testing.T) {
	t.Setenv("RADSWEEP_DATABASE_DRIVER", "postgres")
	t.Setenv("RADSWEEP_DATABASE_DSN", "postgres://radius@db/radius")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Database.Path != "" {
		t.Errorf("path = %q, want empty for postgres", cfg.Database.Path)
	}
}

func TestLoadConfig_ValidationMessage(t *testing.T) {
	path := writeConfig(t, "database:\n  max_open_conns: 1\n  max_idle_conns: 3\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if n := strings.Count(err.Error(), "configuration validation failed"); n != 1 {
		t.Errorf("message repeats its prefix %d times: %q", n, err.Error())
	}
}
