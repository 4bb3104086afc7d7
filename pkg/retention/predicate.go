package retention

import (
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

// The functions below are the single place where operation parameters become
// store filters. All age comparisons are strict: a record exactly at the
// cutoff does not match.

// UnverifiedAccountsFilter selects accounts joined before cutoff that have a
// verification record still pending and whose method is not excluded.
// Accounts without a verification record never match.
func UnverifiedAccountsFilter(cutoff time.Time, excluded []accounting.Method) accounting.AccountFilter {
	return accounting.AccountFilter{
		CreatedBefore:  &cutoff,
		Verification:   accounting.VerificationPending,
		ExcludeMethods: excluded,
	}
}

// ExpiredAccountsFilter selects active accounts whose import batch expired
// at or before now.
func ExpiredAccountsFilter(now time.Time) accounting.AccountFilter {
	active := true
	return accounting.AccountFilter{
		ExpiredBy: &now,
		Active:    &active,
	}
}

// OldAccountsFilter selects accounts for the old account purge.
// BasisExpiration matches accounts whose batch expired before cutoff;
// BasisJoined matches inactive accounts joined before cutoff.
func OldAccountsFilter(cutoff time.Time, basis Basis) accounting.AccountFilter {
	if basis == BasisJoined {
		active := false
		return accounting.AccountFilter{
			CreatedBefore: &cutoff,
			Active:        &active,
		}
	}
	return accounting.AccountFilter{
		ExpiredBefore: &cutoff,
	}
}

// StaleSessionsFilter selects open sessions whose last activity is before
// cutoff.
func StaleSessionsFilter(cutoff time.Time) accounting.SessionFilter {
	return accounting.SessionFilter{
		State:          accounting.SessionOpen,
		InactiveBefore: &cutoff,
	}
}

// OldSessionsFilter selects closed sessions stopped before cutoff. Open
// sessions never match.
func OldSessionsFilter(cutoff time.Time) accounting.SessionFilter {
	return accounting.SessionFilter{
		State:         accounting.SessionClosed,
		StoppedBefore: &cutoff,
	}
}

// OldAuthAttemptsFilter selects attempts logged before cutoff.
func OldAuthAttemptsFilter(cutoff time.Time) accounting.AuthAttemptFilter {
	return accounting.AuthAttemptFilter{
		Before: &cutoff,
	}
}
