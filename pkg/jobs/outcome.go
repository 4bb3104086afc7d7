package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/retention"
)

// Status is the final state of a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ErrorKind classifies a failed run.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindUnknownJob       ErrorKind = "unknown_job"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindTimeout          ErrorKind = "timeout"
	KindInternal         ErrorKind = "internal"
)

// Classify maps an error returned by a job to an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, retention.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrUnknownJob):
		return KindUnknownJob
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, accounting.ErrStoreUnavailable):
		return KindStoreUnavailable
	default:
		return KindInternal
	}
}

// Outcome records one job run.
type Outcome struct {
	RunID     string            `json:"run_id"`
	Job       string            `json:"job"`
	Params    Params            `json:"params,omitempty"`
	Trigger   string            `json:"trigger"` // "cli", "schedule", "http"
	Status    Status            `json:"status"`
	Result    *retention.Result `json:"result,omitempty"`
	ErrorKind ErrorKind         `json:"error_kind,omitempty"`
	Error     string            `json:"error,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration_ns"`

	// Err is the error that failed the run.
	Err error `json:"-"`
}

// Succeeded reports whether the run completed without error.
func (o *Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Affected returns the number of records affected, or zero on failure.
func (o *Outcome) Affected() int64 {
	if o.Result == nil {
		return 0
	}
	return o.Result.Affected
}

// Skipped returns the number of records skipped, or zero on failure.
func (o *Outcome) Skipped() int64 {
	if o.Result == nil {
		return 0
	}
	return o.Result.Skipped
}

// Summary returns the operator summary of the run.
func (o *Outcome) Summary() string {
	if o.Succeeded() {
		return o.Result.Summary()
	}
	return fmt.Sprintf("%s failed (%s): %s", o.Job, o.ErrorKind, o.Error)
}
