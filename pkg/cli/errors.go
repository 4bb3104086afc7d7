package cli

import (
	"errors"
	"fmt"

	"radsweep-hq/radsweep/pkg/jobs"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitInvalidArgument  = 2
	ExitStoreUnavailable = 3
	ExitTimeout          = 4
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitInvalidArgument
	}

	switch jobs.Classify(err) {
	case jobs.KindInvalidArgument, jobs.KindUnknownJob:
		return ExitInvalidArgument
	case jobs.KindStoreUnavailable:
		return ExitStoreUnavailable
	case jobs.KindTimeout:
		return ExitTimeout
	default:
		return ExitFailure
	}
}
