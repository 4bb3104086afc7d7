package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/jobs"
	"radsweep-hq/radsweep/pkg/retention"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("database.driver", "unsupported driver")

	expected := "config error in database.driver: unsupported driver"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("delete-old-sessions", underlyingErr)

	expected := "command delete-old-sessions failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("CommandError does not unwrap to the underlying error")
	}
}

func TestExitCode(t *testing.T) {
	storeErr := &accounting.StorageError{Backend: "sqlite", Operation: "delete", Cause: errors.New("locked")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", NewConfigError("format", "bad"), ExitInvalidArgument},
		{"invalid argument", NewCommandError("x", retention.NewInvalidArgumentError("age_threshold_days", "-1", "must be non-negative")), ExitInvalidArgument},
		{"unknown job", fmt.Errorf("run: %w", jobs.ErrUnknownJob), ExitInvalidArgument},
		{"store unavailable", NewCommandError("x", storeErr), ExitStoreUnavailable},
		{"timeout", fmt.Errorf("run: %w", context.DeadlineExceeded), ExitTimeout},
		{"other", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
