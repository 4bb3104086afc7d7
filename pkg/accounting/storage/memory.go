package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

// MemoryStore implements accounting.Store using in-memory maps.
// This implementation is intended for testing only and should not be used in production.
// Every Store call runs under a single lock, which gives it the same
// all-or-nothing behaviour as one SQL statement.
type MemoryStore struct {
	accounts      map[string]*accounting.Account
	verifications map[string]*accounting.VerificationRecord // keyed by account ID
	batches       map[string]*accounting.ImportBatch
	sessions      map[string]*accounting.Session
	attempts      map[string]*accounting.AuthAttempt
	mu            sync.RWMutex

	// failWith, when set, is returned by every Store call.
	failWith error
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[string]*accounting.Account),
		verifications: make(map[string]*accounting.VerificationRecord),
		batches:       make(map[string]*accounting.ImportBatch),
		sessions:      make(map[string]*accounting.Session),
		attempts:      make(map[string]*accounting.AuthAttempt),
	}
}

// FailWith makes every subsequent Store call fail with a StorageError
// wrapping err. Passing nil restores normal behaviour (for testing).
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failWith = err
}

func (s *MemoryStore) check(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return accounting.NewStorageError("memory", operation, err)
	}
	if s.failWith != nil {
		return accounting.NewStorageError("memory", operation, s.failWith)
	}
	return nil
}

// CountAccounts returns the number of accounts matching the filter.
func (s *MemoryStore) CountAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "count_accounts"); err != nil {
		return 0, err
	}

	var count int64
	for _, account := range s.accounts {
		if s.matchesAccount(account, filter) {
			count++
		}
	}
	return count, nil
}

// DeactivateAccounts clears the active flag on matching active accounts.
func (s *MemoryStore) DeactivateAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "deactivate_accounts"); err != nil {
		return 0, err
	}

	var changed int64
	for _, account := range s.accounts {
		if account.IsActive && s.matchesAccount(account, filter) {
			account.IsActive = false
			changed++
		}
	}
	return changed, nil
}

// DeleteAccounts removes matching accounts and their verification records.
func (s *MemoryStore) DeleteAccounts(ctx context.Context, filter accounting.AccountFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "delete_accounts"); err != nil {
		return 0, err
	}

	toDelete := []string{}
	for id, account := range s.accounts {
		if s.matchesAccount(account, filter) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.accounts, id)
		delete(s.verifications, id)
	}
	return int64(len(toDelete)), nil
}

// CountSessions returns the number of sessions matching the filter.
func (s *MemoryStore) CountSessions(ctx context.Context, filter accounting.SessionFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "count_sessions"); err != nil {
		return 0, err
	}

	var count int64
	for _, session := range s.sessions {
		if matchesSession(session, filter) {
			count++
		}
	}
	return count, nil
}

// CloseSessions closes matching open, consistent sessions and counts the
// corrupt ones it had to skip.
func (s *MemoryStore) CloseSessions(ctx context.Context, filter accounting.SessionFilter) (accounting.CloseResult, error) {
	var result accounting.CloseResult
	if filter.InactiveBefore == nil && filter.StoppedBefore == nil {
		return result, accounting.ErrUnboundedFilter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "close_sessions"); err != nil {
		return result, err
	}

	filter.State = accounting.SessionOpen
	filter.Validity = accounting.ValidityAny
	for _, session := range s.sessions {
		if !matchesSession(session, filter) {
			continue
		}
		if session.IsCorrupt() {
			result.Skipped++
			continue
		}

		stop := *session.LastActivity()
		elapsed := int64(stop.Sub(*session.StartTime) / time.Second)
		session.StopTime = &stop
		session.UpdateTime = &stop
		session.SessionTime = &elapsed
		result.Closed++
	}
	return result, nil
}

// DeleteSessions removes matching sessions.
func (s *MemoryStore) DeleteSessions(ctx context.Context, filter accounting.SessionFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "delete_sessions"); err != nil {
		return 0, err
	}

	var deleted int64
	for id, session := range s.sessions {
		if matchesSession(session, filter) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// CountAuthAttempts returns the number of attempts matching the filter.
func (s *MemoryStore) CountAuthAttempts(ctx context.Context, filter accounting.AuthAttemptFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "count_auth_attempts"); err != nil {
		return 0, err
	}

	var count int64
	for _, attempt := range s.attempts {
		if matchesAttempt(attempt, filter) {
			count++
		}
	}
	return count, nil
}

// DeleteAuthAttempts removes matching attempts.
func (s *MemoryStore) DeleteAuthAttempts(ctx context.Context, filter accounting.AuthAttemptFilter) (int64, error) {
	if filter.IsZero() {
		return 0, accounting.ErrUnboundedFilter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "delete_auth_attempts"); err != nil {
		return 0, err
	}

	var deleted int64
	for id, attempt := range s.attempts {
		if matchesAttempt(attempt, filter) {
			delete(s.attempts, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping reports the configured failure, if any.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.check(ctx, "ping")
}

// Close releases resources held by the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*accounting.Account)
	s.verifications = make(map[string]*accounting.VerificationRecord)
	s.batches = make(map[string]*accounting.ImportBatch)
	s.sessions = make(map[string]*accounting.Session)
	s.attempts = make(map[string]*accounting.AuthAttempt)
	return nil
}

// matchesAccount checks if an account matches the filter.
// Callers must hold s.mu.
func (s *MemoryStore) matchesAccount(account *accounting.Account, filter accounting.AccountFilter) bool {
	if filter.CreatedBefore != nil && !account.CreatedAt.Before(*filter.CreatedBefore) {
		return false
	}

	if filter.Active != nil && account.IsActive != *filter.Active {
		return false
	}

	if filter.Verification == accounting.VerificationPending {
		record, ok := s.verifications[account.ID]
		if !ok || record.IsVerified {
			return false
		}
		if slices.Contains(filter.ExcludeMethods, record.Method) {
			return false
		}
	}

	if filter.ExpiredBy != nil || filter.ExpiredBefore != nil {
		batch, ok := s.batches[account.BatchID]
		if !ok || batch.ExpiresAt == nil {
			return false
		}
		if filter.ExpiredBy != nil && batch.ExpiresAt.After(*filter.ExpiredBy) {
			return false
		}
		if filter.ExpiredBefore != nil && !batch.ExpiresAt.Before(*filter.ExpiredBefore) {
			return false
		}
	}

	return true
}

// matchesSession checks if a session matches the filter.
func matchesSession(session *accounting.Session, filter accounting.SessionFilter) bool {
	switch filter.State {
	case accounting.SessionOpen:
		if !session.IsOpen() {
			return false
		}
	case accounting.SessionClosed:
		if session.IsOpen() {
			return false
		}
	}

	switch filter.Validity {
	case accounting.ValidityConsistent:
		if session.IsCorrupt() {
			return false
		}
	case accounting.ValidityCorrupt:
		if !session.IsCorrupt() {
			return false
		}
	}

	if filter.InactiveBefore != nil {
		last := session.LastActivity()
		if last == nil || !last.Before(*filter.InactiveBefore) {
			return false
		}
	}

	if filter.StoppedBefore != nil {
		if session.StopTime == nil || !session.StopTime.Before(*filter.StoppedBefore) {
			return false
		}
	}

	return true
}

// matchesAttempt checks if an attempt matches the filter.
func matchesAttempt(attempt *accounting.AuthAttempt, filter accounting.AuthAttemptFilter) bool {
	if filter.Before != nil && !attempt.AttemptedAt.Before(*filter.Before) {
		return false
	}
	return true
}
