package retention

import (
	"fmt"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

// Operation names. They double as job names.
const (
	OpCleanupStaleSessions   = "cleanup_stale_sessions"
	OpDeleteUnverifiedUsers  = "delete_unverified_users"
	OpDeactivateExpiredUsers = "deactivate_expired_users"
	OpDeleteOldUsers         = "delete_old_users"
	OpDeleteOldAuthAttempts  = "delete_old_auth_attempts"
	OpDeleteOldSessions      = "delete_old_sessions"
)

// Parameter names shared by jobs, CLI flags and HTTP query strings.
const (
	ParamAgeThresholdDays = "age_threshold_days"
	ParamExcludedMethods  = "excluded_methods"
	ParamBasis            = "basis"
	ParamDryRun           = "dry_run"
)

// Default age thresholds in days.
const (
	DefaultStaleSessionDays = 30
	DefaultUnverifiedDays   = 1
	DefaultOldAccountDays   = 1
	DefaultAuditLogDays     = 365
)

// Result describes one completed operation run.
type Result struct {
	Operation string `json:"operation"`

	// Threshold is the age threshold in days. Zero for operations without one.
	Threshold int `json:"age_threshold_days"`

	// Cutoff is the instant records had to be strictly older than. For
	// deactivate_expired_users it is the evaluation time.
	Cutoff time.Time `json:"cutoff"`

	Excluded []accounting.Method `json:"excluded_methods,omitempty"`
	Basis    Basis               `json:"basis,omitempty"`

	// Affected is the number of records changed, or that would be changed
	// on a dry run.
	Affected int64 `json:"affected"`

	// Skipped is the number of matching records left alone because they
	// were corrupt.
	Skipped int64 `json:"skipped"`

	DryRun bool `json:"dry_run"`
}

// Summary returns a one-line operator summary of the run.
func (r *Result) Summary() string {
	var s string
	switch r.Operation {
	case OpCleanupStaleSessions:
		s = fmt.Sprintf("%s %d stale session(s) inactive for more than %d day(s)",
			r.verb("Closed", "Would close"), r.Affected, r.Threshold)
		if r.Skipped > 0 {
			s += fmt.Sprintf("; skipped %d corrupt session(s)", r.Skipped)
		}
	case OpDeleteUnverifiedUsers:
		excluded := "none"
		if len(r.Excluded) > 0 {
			excluded = FormatMethods(r.Excluded)
		}
		s = fmt.Sprintf("%s %d unverified account(s) older than %d day(s) with registration method other than %s",
			r.verb("Deleted", "Would delete"), r.Affected, r.Threshold, excluded)
	case OpDeactivateExpiredUsers:
		s = fmt.Sprintf("%s %d account(s) of expired import batches",
			r.verb("Deactivated", "Would deactivate"), r.Affected)
	case OpDeleteOldUsers:
		if r.Basis == BasisJoined {
			s = fmt.Sprintf("%s %d inactive account(s) joined more than %d day(s) ago",
				r.verb("Deleted", "Would delete"), r.Affected, r.Threshold)
		} else {
			s = fmt.Sprintf("%s %d account(s) whose import batch expired more than %d day(s) ago",
				r.verb("Deleted", "Would delete"), r.Affected, r.Threshold)
		}
	case OpDeleteOldAuthAttempts:
		s = fmt.Sprintf("%s %d authentication attempt(s) older than %d day(s)",
			r.verb("Deleted", "Would delete"), r.Affected, r.Threshold)
	case OpDeleteOldSessions:
		s = fmt.Sprintf("%s %d closed session(s) older than %d day(s)",
			r.verb("Deleted", "Would delete"), r.Affected, r.Threshold)
	default:
		s = fmt.Sprintf("%s: %d record(s) affected, %d skipped", r.Operation, r.Affected, r.Skipped)
	}
	return s
}

func (r *Result) verb(done, would string) string {
	if r.DryRun {
		return would
	}
	return done
}
