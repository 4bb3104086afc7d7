package retention

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument classifies rejected operation parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a parameter that failed validation.
type InvalidArgumentError struct {
	Param  string // Parameter name ("age_threshold_days", "excluded_methods", ...)
	Value  string // Offending value as given
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%q: %s", e.Param, e.Value, e.Reason)
}

// Is reports ErrInvalidArgument for every InvalidArgumentError.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewInvalidArgumentError creates a new InvalidArgumentError.
func NewInvalidArgumentError(param, value, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{
		Param:  param,
		Value:  value,
		Reason: reason,
	}
}
