package accounting

import "time"

// Method is the registration method recorded on a VerificationRecord.
type Method string

// Registration methods known to the accounting schema.
const (
	MethodUnspecified Method = ""
	MethodManual      Method = "manual"
	MethodEmail       Method = "email"
	MethodMobilePhone Method = "mobile_phone"
	MethodBankCard    Method = "bank_card"
	MethodIDCard      Method = "id_card"
	MethodSPID        Method = "spid"
	MethodSocial      Method = "social"
	MethodSAML        Method = "saml"
)

// KnownMethods returns the built-in registration methods, excluding
// MethodUnspecified.
func KnownMethods() []Method {
	return []Method{
		MethodManual,
		MethodEmail,
		MethodMobilePhone,
		MethodBankCard,
		MethodIDCard,
		MethodSPID,
		MethodSocial,
		MethodSAML,
	}
}

// Account is a network-access user account.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"` // date joined
	IsActive  bool      `json:"is_active"`
	BatchID   string    `json:"batch_id,omitempty"` // empty when not imported
}

// VerificationRecord tracks whether an account completed registration.
type VerificationRecord struct {
	AccountID  string `json:"account_id"`
	Method     Method `json:"method"`
	IsVerified bool   `json:"is_verified"`
}

// ImportBatch is a cohort of accounts provisioned together.
type ImportBatch struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Session is a single accounting session.
//
// A closed session satisfies SessionTime == StopTime-StartTime and
// UpdateTime == StopTime.
type Session struct {
	UniqueID    string     `json:"unique_id"`
	Username    string     `json:"username"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	StopTime    *time.Time `json:"stop_time,omitempty"`
	UpdateTime  *time.Time `json:"update_time,omitempty"`
	SessionTime *int64     `json:"session_time,omitempty"` // seconds
}

// IsOpen reports whether the session has no stop time.
func (s *Session) IsOpen() bool {
	return s.StopTime == nil
}

// LastActivity returns the update time, falling back to the start time.
// It returns nil when neither is set.
func (s *Session) LastActivity() *time.Time {
	if s.UpdateTime != nil {
		return s.UpdateTime
	}
	return s.StartTime
}

// IsCorrupt reports whether the session cannot be closed consistently:
// the start time is missing or the last update precedes it.
func (s *Session) IsCorrupt() bool {
	if s.StartTime == nil {
		return true
	}
	return s.UpdateTime != nil && s.UpdateTime.Before(*s.StartTime)
}

// AuthAttempt is one logged authentication attempt.
type AuthAttempt struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Reply       string    `json:"reply"` // e.g. Access-Accept, Access-Reject
	AttemptedAt time.Time `json:"attempted_at"`
}
