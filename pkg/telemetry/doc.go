// Package telemetry groups the observability packages used by radsweep.
//
// # Components
//
//   - logging: structured slog logging with run context and redaction
//   - metrics: Prometheus metrics for job runs and schedules
//   - health: liveness and readiness checks for the admin server
//
// Each component is configured from config.TelemetryConfig and wired in
// cmd/radsweep.
package telemetry
