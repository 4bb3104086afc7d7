package storage

import (
	"context"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

// Fixtures writes and reads individual records. Production data is written
// by the authentication and import paths; these calls exist so tests can
// prepare and inspect a store through either backend.
type Fixtures interface {
	InsertBatch(ctx context.Context, batch *accounting.ImportBatch) error
	InsertAccount(ctx context.Context, account *accounting.Account) error
	InsertVerification(ctx context.Context, record *accounting.VerificationRecord) error
	InsertSession(ctx context.Context, session *accounting.Session) error
	InsertAuthAttempt(ctx context.Context, attempt *accounting.AuthAttempt) error

	GetAccount(ctx context.Context, id string) (*accounting.Account, error)
	GetVerification(ctx context.Context, accountID string) (*accounting.VerificationRecord, error)
	GetSession(ctx context.Context, uniqueID string) (*accounting.Session, error)
}

// Both backends keep whole seconds.
func truncate(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

func truncatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := truncate(*t)
	return &v
}

// InsertBatch stores an import batch.
func (s *MemoryStore) InsertBatch(ctx context.Context, batch *accounting.ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batchCopy := *batch
	batchCopy.ExpiresAt = truncatePtr(batch.ExpiresAt)
	s.batches[batch.ID] = &batchCopy
	return nil
}

// InsertAccount stores an account.
func (s *MemoryStore) InsertAccount(ctx context.Context, account *accounting.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountCopy := *account
	accountCopy.CreatedAt = truncate(account.CreatedAt)
	s.accounts[account.ID] = &accountCopy
	return nil
}

// InsertVerification stores a verification record, replacing any existing
// record for the same account.
func (s *MemoryStore) InsertVerification(ctx context.Context, record *accounting.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[record.AccountID]; !ok {
		return accounting.NewStorageError("memory", "insert_verification", accounting.ErrNotFound)
	}
	recordCopy := *record
	s.verifications[record.AccountID] = &recordCopy
	return nil
}

// InsertSession stores an accounting session.
func (s *MemoryStore) InsertSession(ctx context.Context, session *accounting.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionCopy := *session
	sessionCopy.StartTime = truncatePtr(session.StartTime)
	sessionCopy.StopTime = truncatePtr(session.StopTime)
	sessionCopy.UpdateTime = truncatePtr(session.UpdateTime)
	if session.SessionTime != nil {
		v := *session.SessionTime
		sessionCopy.SessionTime = &v
	}
	s.sessions[session.UniqueID] = &sessionCopy
	return nil
}

// InsertAuthAttempt stores an authentication attempt.
func (s *MemoryStore) InsertAuthAttempt(ctx context.Context, attempt *accounting.AuthAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attemptCopy := *attempt
	attemptCopy.AttemptedAt = truncate(attempt.AttemptedAt)
	s.attempts[attempt.ID] = &attemptCopy
	return nil
}

// GetAccount returns a copy of the account with the given ID.
func (s *MemoryStore) GetAccount(ctx context.Context, id string) (*accounting.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, accounting.ErrNotFound
	}
	accountCopy := *account
	return &accountCopy, nil
}

// GetVerification returns a copy of the verification record for an account.
func (s *MemoryStore) GetVerification(ctx context.Context, accountID string) (*accounting.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.verifications[accountID]
	if !ok {
		return nil, accounting.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// GetSession returns a copy of the session with the given unique ID.
func (s *MemoryStore) GetSession(ctx context.Context, uniqueID string) (*accounting.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[uniqueID]
	if !ok {
		return nil, accounting.ErrNotFound
	}
	sessionCopy := *session
	return &sessionCopy, nil
}
