package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"radsweep-hq/radsweep/pkg/accounting/storage"
	"radsweep-hq/radsweep/pkg/jobs"
	"radsweep-hq/radsweep/pkg/retention"
)

// MemoryDriver selects the in-memory store. Data does not survive a restart.
const MemoryDriver = "memory"

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "database.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// KnownJobs lists the job names accepted under the jobs section.
var KnownJobs = []string{
	retention.OpCleanupStaleSessions,
	retention.OpDeleteUnverifiedUsers,
	retention.OpDeactivateExpiredUsers,
	retention.OpDeleteOldUsers,
	retention.OpDeleteOldAuthAttempts,
	retention.OpDeleteOldSessions,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateJobs(cfg.Jobs, cfg.Retention.ExtraMethods)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateDatabase(cfg *DatabaseConfig) []FieldError {
	var errs []FieldError

	drivers := append(storage.SupportedDrivers(), MemoryDriver)
	if !slices.Contains(drivers, cfg.Driver) {
		errs = append(errs, FieldError{
			Field:   "database.driver",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(drivers, ", ")),
		})
	}

	switch cfg.Driver {
	case "postgres", "mysql":
		if cfg.DSN == "" {
			errs = append(errs, FieldError{
				Field:   "database.dsn",
				Message: fmt.Sprintf("dsn is required for the %s driver", cfg.Driver),
			})
		}
	case "sqlite", "sqlite3":
		if cfg.DSN == "" && cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "database.path",
				Message: "path or dsn is required for sqlite",
			})
		}
	}

	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "database.max_open_conns",
			Message: "must be non-negative",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "database.max_idle_conns",
			Message: "must be non-negative",
		})
	}
	if cfg.MaxOpenConns > 0 && cfg.MaxIdleConns > cfg.MaxOpenConns {
		errs = append(errs, FieldError{
			Field:   "database.max_idle_conns",
			Message: "must not exceed max_open_conns",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "database.busy_timeout",
			Message: "busy timeout must be positive",
		})
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if _, err := retention.NewMethodSet(cfg.ExtraMethods...); err != nil {
		errs = append(errs, FieldError{
			Field:   "retention.extra_methods",
			Message: err.Error(),
		})
	}
	if cfg.RunTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.run_timeout",
			Message: "run timeout must be positive",
		})
	}
	if cfg.HistorySize < 0 {
		errs = append(errs, FieldError{
			Field:   "retention.history_size",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateJobs(cfgs map[string]JobConfig, extraMethods []string) []FieldError {
	var errs []FieldError

	// Invalid extras are reported by validateRetention; params are then
	// checked against the built-in methods.
	methods, err := retention.NewMethodSet(extraMethods...)
	if err != nil {
		methods = retention.DefaultMethodSet()
	}
	registry := jobs.NewRegistry(nil, &retention.Options{Methods: methods})

	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		job := cfgs[name]
		prefix := "jobs." + name

		if !slices.Contains(KnownJobs, name) {
			errs = append(errs, FieldError{
				Field:   prefix,
				Message: fmt.Sprintf("unknown job (known jobs: %s)", strings.Join(KnownJobs, ", ")),
			})
			continue
		}

		if err := registry.Validate(name, jobs.Params(job.Params)); err != nil {
			field := prefix + ".params"
			var argErr *retention.InvalidArgumentError
			if errors.As(err, &argErr) {
				field += "." + argErr.Param
			}
			errs = append(errs, FieldError{Field: field, Message: err.Error()})
		}

		if job.Schedule == "" {
			if job.Enabled != nil && *job.Enabled {
				errs = append(errs, FieldError{
					Field:   prefix + ".schedule",
					Message: "schedule is required when the job is enabled",
				})
			}
			continue
		}
		if err := jobs.ValidateSchedule(job.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".schedule",
				Message: err.Error(),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLevels, ", ")),
		})
	}

	validFormats := []string{"json", "text", "console"}
	if !slices.Contains(validFormats, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validFormats, ", ")),
		})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "path must start with /",
			})
		}
		if cfg.Metrics.Namespace == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.namespace",
				Message: "namespace is required when metrics are enabled",
			})
		}
		if !sort.Float64sAreSorted(cfg.Metrics.DurationBuckets) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be in increasing order",
			})
		}
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}
