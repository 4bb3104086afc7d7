package retention

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/accounting/storage"
)

// testNow is the fixed "now" used by operation tests.
var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

type testStore interface {
	accounting.Store
	storage.Fixtures
}

// stores returns a fresh memory store and a fresh SQLite store.
func stores(t *testing.T) map[string]testStore {
	t.Helper()

	sqlStore, err := storage.NewSQLStore(context.Background(), &storage.SQLConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "radius.db"),
		MaxOpenConns: 1,
		BusyTimeout:  time.Second,
		Migrate:      true,
	})
	if err != nil {
		t.Fatalf("NewSQLStore() failed: %v", err)
	}
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]testStore{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqlStore,
	}
}

func testOptions() *Options {
	return &Options{Clock: FixedClock{T: testNow}}
}

func daysAgo(days int) time.Time {
	return testNow.AddDate(0, 0, -days)
}

func ptr[T any](v T) *T {
	return &v
}

func seedAccount(t *testing.T, s testStore, id string, created time.Time, active bool, batchID string) {
	t.Helper()
	err := s.InsertAccount(context.Background(), &accounting.Account{
		ID:        id,
		Username:  id,
		CreatedAt: created,
		IsActive:  active,
		BatchID:   batchID,
	})
	if err != nil {
		t.Fatalf("InsertAccount(%s) failed: %v", id, err)
	}
}

func seedVerification(t *testing.T, s testStore, accountID string, method accounting.Method, verified bool) {
	t.Helper()
	err := s.InsertVerification(context.Background(), &accounting.VerificationRecord{
		AccountID:  accountID,
		Method:     method,
		IsVerified: verified,
	})
	if err != nil {
		t.Fatalf("InsertVerification(%s) failed: %v", accountID, err)
	}
}

func seedBatch(t *testing.T, s testStore, id string, expires *time.Time) {
	t.Helper()
	err := s.InsertBatch(context.Background(), &accounting.ImportBatch{ID: id, Name: id, ExpiresAt: expires})
	if err != nil {
		t.Fatalf("InsertBatch(%s) failed: %v", id, err)
	}
}

func seedSession(t *testing.T, s testStore, session *accounting.Session) {
	t.Helper()
	if session.Username == "" {
		session.Username = "user"
	}
	if err := s.InsertSession(context.Background(), session); err != nil {
		t.Fatalf("InsertSession(%s) failed: %v", session.UniqueID, err)
	}
}

func accountExists(t *testing.T, s testStore, id string) bool {
	t.Helper()
	_, err := s.GetAccount(context.Background(), id)
	if errors.Is(err, accounting.ErrNotFound) {
		return false
	}
	if err != nil {
		t.Fatalf("GetAccount(%s) failed: %v", id, err)
	}
	return true
}

// storeWithoutAccess fails the test on any store call. Operations given
// invalid parameters must return before touching it.
type storeWithoutAccess struct {
	t *testing.T
}

func (s storeWithoutAccess) fail(op string) {
	s.t.Helper()
	s.t.Errorf("unexpected store call: %s", op)
}

func (s storeWithoutAccess) CountAccounts(context.Context, accounting.AccountFilter) (int64, error) {
	s.fail("CountAccounts")
	return 0, nil
}

func (s storeWithoutAccess) DeactivateAccounts(context.Context, accounting.AccountFilter) (int64, error) {
	s.fail("DeactivateAccounts")
	return 0, nil
}

func (s storeWithoutAccess) DeleteAccounts(context.Context, accounting.AccountFilter) (int64, error) {
	s.fail("DeleteAccounts")
	return 0, nil
}

func (s storeWithoutAccess) CountSessions(context.Context, accounting.SessionFilter) (int64, error) {
	s.fail("CountSessions")
	return 0, nil
}

func (s storeWithoutAccess) CloseSessions(context.Context, accounting.SessionFilter) (accounting.CloseResult, error) {
	s.fail("CloseSessions")
	return accounting.CloseResult{}, nil
}

func (s storeWithoutAccess) DeleteSessions(context.Context, accounting.SessionFilter) (int64, error) {
	s.fail("DeleteSessions")
	return 0, nil
}

func (s storeWithoutAccess) CountAuthAttempts(context.Context, accounting.AuthAttemptFilter) (int64, error) {
	s.fail("CountAuthAttempts")
	return 0, nil
}

func (s storeWithoutAccess) DeleteAuthAttempts(context.Context, accounting.AuthAttemptFilter) (int64, error) {
	s.fail("DeleteAuthAttempts")
	return 0, nil
}

func (s storeWithoutAccess) Ping(context.Context) error {
	s.fail("Ping")
	return nil
}

func (s storeWithoutAccess) Close() error {
	return nil
}
