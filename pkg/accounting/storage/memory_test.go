package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"radsweep-hq/radsweep/pkg/accounting"
)

func TestMemoryStore_FailWith(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cause := errors.New("connection refused")

	s.FailWith(cause)

	cutoff := time.Now()
	_, err := s.DeleteAuthAttempts(ctx, accounting.AuthAttemptFilter{Before: &cutoff})
	if !errors.Is(err, accounting.ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() should fail")
	}

	s.FailWith(nil)
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() after reset failed: %v", err)
	}
}

func TestMemoryStore_TruncatesToSeconds(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	at := time.Date(2026, 1, 2, 3, 4, 5, 999_000_000, time.UTC)
	if err := s.InsertAccount(ctx, &accounting.Account{ID: "a", Username: "a", CreatedAt: at}); err != nil {
		t.Fatalf("InsertAccount() failed: %v", err)
	}

	got, err := s.GetAccount(ctx, "a")
	if err != nil {
		t.Fatalf("GetAccount() failed: %v", err)
	}
	if got.CreatedAt.Nanosecond() != 0 {
		t.Errorf("CreatedAt = %v, want whole seconds", got.CreatedAt)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.InsertAccount(ctx, &accounting.Account{ID: "a", Username: "a", IsActive: true}); err != nil {
		t.Fatalf("InsertAccount() failed: %v", err)
	}

	got, _ := s.GetAccount(ctx, "a")
	got.IsActive = false

	again, _ := s.GetAccount(ctx, "a")
	if !again.IsActive {
		t.Error("mutating a returned account changed the store")
	}
}

func TestMemoryStore_Close(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.InsertAccount(ctx, &accounting.Account{ID: "a", Username: "a"}); err != nil {
		t.Fatalf("InsertAccount() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	count, err := s.CountAccounts(ctx, accounting.AccountFilter{})
	if err != nil {
		t.Fatalf("CountAccounts() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountAccounts() after Close = %d, want 0", count)
	}
}
