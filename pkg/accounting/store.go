package accounting

import (
	"context"
	"time"
)

// VerificationState narrows an AccountFilter by verification status.
type VerificationState int

const (
	// VerificationAny does not look at verification records.
	VerificationAny VerificationState = iota

	// VerificationPending matches accounts that have a verification record
	// whose verified flag is false. Accounts without a record never match.
	VerificationPending
)

// AccountFilter selects accounts. All set fields are combined with AND.
type AccountFilter struct {
	// CreatedBefore matches accounts joined strictly before this instant.
	CreatedBefore *time.Time

	// Verification restricts matches by verification record state.
	Verification VerificationState

	// ExcludeMethods drops accounts whose verification method is listed.
	// Only meaningful together with VerificationPending.
	ExcludeMethods []Method

	// ExpiredBy matches accounts whose import batch has a non-nil expiry at
	// or before this instant.
	ExpiredBy *time.Time

	// ExpiredBefore matches accounts whose import batch has a non-nil expiry
	// strictly before this instant.
	ExpiredBefore *time.Time

	// Active matches on the account's active flag when set.
	Active *bool
}

// IsZero reports whether the filter would match every account.
func (f AccountFilter) IsZero() bool {
	return f.CreatedBefore == nil &&
		f.Verification == VerificationAny &&
		f.ExpiredBy == nil &&
		f.ExpiredBefore == nil &&
		f.Active == nil
}

// SessionState narrows a SessionFilter by open/closed state.
type SessionState int

const (
	SessionAny SessionState = iota
	SessionOpen
	SessionClosed
)

// SessionValidity narrows a SessionFilter by whether the session can be
// closed consistently (see Session.IsCorrupt).
type SessionValidity int

const (
	ValidityAny SessionValidity = iota
	ValidityConsistent
	ValidityCorrupt
)

// SessionFilter selects accounting sessions. All set fields are combined
// with AND.
type SessionFilter struct {
	State    SessionState
	Validity SessionValidity

	// InactiveBefore matches sessions whose last activity (update time, or
	// start time when no update was recorded) is strictly before this instant.
	InactiveBefore *time.Time

	// StoppedBefore matches sessions whose stop time is set and strictly
	// before this instant.
	StoppedBefore *time.Time
}

// IsZero reports whether the filter would match every session.
func (f SessionFilter) IsZero() bool {
	return f.State == SessionAny &&
		f.Validity == ValidityAny &&
		f.InactiveBefore == nil &&
		f.StoppedBefore == nil
}

// AuthAttemptFilter selects authentication attempt log entries.
type AuthAttemptFilter struct {
	// Before matches attempts logged strictly before this instant.
	Before *time.Time
}

// IsZero reports whether the filter would match every attempt.
func (f AuthAttemptFilter) IsZero() bool {
	return f.Before == nil
}

// CloseResult reports the outcome of a CloseSessions call.
type CloseResult struct {
	// Closed is the number of sessions given a stop time.
	Closed int64

	// Skipped is the number of sessions that matched the filter but were
	// corrupt and left untouched.
	Skipped int64
}

// Store is the storage contract used by retention operations.
// Implementations must be safe for concurrent use. Mutating calls refuse
// zero filters so that a bug upstream cannot wipe a whole table.
type Store interface {
	// CountAccounts returns the number of accounts matching the filter.
	CountAccounts(ctx context.Context, filter AccountFilter) (int64, error)

	// DeactivateAccounts clears the active flag on every matching account
	// that is still active and returns how many rows changed.
	DeactivateAccounts(ctx context.Context, filter AccountFilter) (int64, error)

	// DeleteAccounts removes matching accounts. Verification records go with
	// them through the backend's cascade rules.
	DeleteAccounts(ctx context.Context, filter AccountFilter) (int64, error)

	// CountSessions returns the number of sessions matching the filter.
	CountSessions(ctx context.Context, filter SessionFilter) (int64, error)

	// CloseSessions closes matching open sessions: stop time becomes the last
	// activity, session time is recomputed and update time is set to the stop
	// time. Corrupt sessions are counted in CloseResult.Skipped instead.
	// State and Validity on the filter are ignored.
	CloseSessions(ctx context.Context, filter SessionFilter) (CloseResult, error)

	// DeleteSessions removes matching sessions.
	DeleteSessions(ctx context.Context, filter SessionFilter) (int64, error)

	// CountAuthAttempts returns the number of attempts matching the filter.
	CountAuthAttempts(ctx context.Context, filter AuthAttemptFilter) (int64, error)

	// DeleteAuthAttempts removes matching attempts.
	DeleteAuthAttempts(ctx context.Context, filter AuthAttemptFilter) (int64, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
