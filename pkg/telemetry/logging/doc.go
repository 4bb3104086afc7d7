// Package logging builds the process-wide slog logger.
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//
// Job runs attach their identity to the context:
//
//	ctx = logging.WithRun(ctx, runID, "delete_old_sessions", "schedule")
//	logger.InfoContext(ctx, "Deleted 12 session(s)") // includes run_id, job, trigger
//
// # Redaction
//
// With Redact enabled, database passwords in "dsn" attributes, values of
// secret-looking keys and subscriber identifiers are masked:
//
//   - dsn: postgres://radius:secret@db/radius → postgres://radius:xxxxx@db/radius
//   - password: hunter2 → [REDACTED]
//   - username: alice@example.net → a***@example.net
package logging
