package retention

import (
	"context"
	"errors"
	"strings"
	"testing"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/accounting/storage"
)

func TestUnverifiedAccountPurger_BatchScenario(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedBatch(t, s, "batch", nil)
			for _, id := range []string{"u1", "u2", "u3"} {
				seedAccount(t, s, id, daysAgo(3), true, "batch")
				seedVerification(t, s, id, accounting.MethodEmail, false)
			}

			purger := NewUnverifiedAccountPurger(s, testOptions())

			result, err := purger.Run(ctx, UnverifiedParams{AgeThresholdDays: 2})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 3 {
				t.Errorf("Affected = %d, want 3", result.Affected)
			}

			result, err = purger.Run(ctx, UnverifiedParams{AgeThresholdDays: 2})
			if err != nil {
				t.Fatalf("second Run() failed: %v", err)
			}
			if result.Affected != 0 {
				t.Errorf("second Affected = %d, want 0", result.Affected)
			}
		})
	}
}

func TestUnverifiedAccountPurger_Predicate(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seedAccount(t, s, "no-record", daysAgo(10), true, "")

			seedAccount(t, s, "verified", daysAgo(10), true, "")
			seedVerification(t, s, "verified", accounting.MethodEmail, true)

			seedAccount(t, s, "pending-email", daysAgo(10), true, "")
			seedVerification(t, s, "pending-email", accounting.MethodEmail, false)

			seedAccount(t, s, "pending-phone", daysAgo(10), true, "")
			seedVerification(t, s, "pending-phone", accounting.MethodMobilePhone, false)

			seedAccount(t, s, "pending-blank", daysAgo(10), true, "")
			seedVerification(t, s, "pending-blank", accounting.MethodUnspecified, false)

			seedAccount(t, s, "at-cutoff", daysAgo(1), true, "")
			seedVerification(t, s, "at-cutoff", accounting.MethodEmail, false)

			seedAccount(t, s, "fresh", testNow, true, "")
			seedVerification(t, s, "fresh", accounting.MethodEmail, false)

			purger := NewUnverifiedAccountPurger(s, testOptions())
			result, err := purger.Run(ctx, UnverifiedParams{
				AgeThresholdDays: 1,
				ExcludedMethods:  []accounting.Method{accounting.MethodMobilePhone},
			})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 2 {
				t.Errorf("Affected = %d, want 2", result.Affected)
			}

			want := map[string]bool{
				"no-record":     true,
				"verified":      true,
				"pending-email": false,
				"pending-phone": true,
				"pending-blank": false,
				"at-cutoff":     true,
				"fresh":         true,
			}
			for id, exists := range want {
				if got := accountExists(t, s, id); got != exists {
					t.Errorf("account %s exists = %v, want %v", id, got, exists)
				}
			}

			if _, err := s.GetVerification(ctx, "pending-email"); !errors.Is(err, accounting.ErrNotFound) {
				t.Errorf("verification of deleted account should be gone, got %v", err)
			}
		})
	}
}

func TestUnverifiedAccountPurger_DryRun(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedAccount(t, s, "a", daysAgo(5), true, "")
			seedVerification(t, s, "a", accounting.MethodSAML, false)

			purger := NewUnverifiedAccountPurger(s, testOptions())
			result, err := purger.Run(ctx, UnverifiedParams{AgeThresholdDays: 1, DryRun: true})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 1 {
				t.Errorf("Affected = %d, want 1", result.Affected)
			}
			if !accountExists(t, s, "a") {
				t.Error("dry run deleted the account")
			}
			if !strings.HasPrefix(result.Summary(), "Would delete 1 unverified account(s)") {
				t.Errorf("Summary() = %q", result.Summary())
			}
		})
	}
}

func TestUnverifiedAccountPurger_InvalidArguments(t *testing.T) {
	store := storeWithoutAccess{t: t}
	purger := NewUnverifiedAccountPurger(store, testOptions())

	tests := []struct {
		name   string
		params UnverifiedParams
	}{
		{"negative days", UnverifiedParams{AgeThresholdDays: -1}},
		{"unknown method", UnverifiedParams{AgeThresholdDays: 1, ExcludedMethods: []accounting.Method{"fax"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := purger.Run(context.Background(), tt.params)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestUnverifiedAccountPurger_ExtraMethods(t *testing.T) {
	methods, err := NewMethodSet("voucher")
	if err != nil {
		t.Fatalf("NewMethodSet() failed: %v", err)
	}

	s := stores(t)["memory"]
	seedAccount(t, s, "v", daysAgo(5), true, "")
	seedVerification(t, s, "v", "voucher", false)

	purger := NewUnverifiedAccountPurger(s, &Options{Clock: FixedClock{T: testNow}, Methods: methods})
	result, err := purger.Run(context.Background(), UnverifiedParams{
		AgeThresholdDays: 1,
		ExcludedMethods:  []accounting.Method{"voucher"},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if result.Affected != 0 {
		t.Errorf("Affected = %d, want 0", result.Affected)
	}
}

func TestUnverifiedAccountPurger_StoreUnavailable(t *testing.T) {
	s := storage.NewMemoryStore()
	s.FailWith(errors.New("connection reset"))

	purger := NewUnverifiedAccountPurger(s, testOptions())
	_, err := purger.Run(context.Background(), UnverifiedParams{AgeThresholdDays: 1})
	if !errors.Is(err, accounting.ErrStoreUnavailable) {
		t.Errorf("Run() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestExpiredAccountDeactivator(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedBatch(t, s, "expired", ptr(daysAgo(1)))
			seedBatch(t, s, "expires-now", ptr(testNow))
			seedBatch(t, s, "future", ptr(testNow.AddDate(0, 0, 1)))
			seedBatch(t, s, "forever", nil)

			seedAccount(t, s, "expired", daysAgo(30), true, "expired")
			seedAccount(t, s, "expires-now", daysAgo(30), true, "expires-now")
			seedAccount(t, s, "future", daysAgo(30), true, "future")
			seedAccount(t, s, "forever", daysAgo(30), true, "forever")
			seedAccount(t, s, "standalone", daysAgo(30), true, "")

			deactivator := NewExpiredAccountDeactivator(s, testOptions())
			result, err := deactivator.Run(ctx, ExpiredParams{})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 2 {
				t.Errorf("Affected = %d, want 2", result.Affected)
			}

			active := map[string]bool{
				"expired":     false,
				"expires-now": false,
				"future":      true,
				"forever":     true,
				"standalone":  true,
			}
			for id, want := range active {
				account, err := s.GetAccount(ctx, id)
				if err != nil {
					t.Fatalf("GetAccount(%s) failed: %v", id, err)
				}
				if account.IsActive != want {
					t.Errorf("account %s active = %v, want %v", id, account.IsActive, want)
				}
			}

			result, err = deactivator.Run(ctx, ExpiredParams{})
			if err != nil {
				t.Fatalf("second Run() failed: %v", err)
			}
			if result.Affected != 0 {
				t.Errorf("second Affected = %d, want 0", result.Affected)
			}
		})
	}
}

func TestOldAccountPurger_Expiration(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedBatch(t, s, "long-expired", ptr(daysAgo(5)))
			seedBatch(t, s, "at-cutoff", ptr(daysAgo(1)))
			seedBatch(t, s, "just-expired", ptr(testNow))
			seedBatch(t, s, "forever", nil)

			seedAccount(t, s, "long-expired", daysAgo(60), false, "long-expired")
			seedAccount(t, s, "at-cutoff", daysAgo(60), false, "at-cutoff")
			seedAccount(t, s, "just-expired", daysAgo(60), false, "just-expired")
			seedAccount(t, s, "forever", daysAgo(60), false, "forever")
			seedAccount(t, s, "standalone", daysAgo(60), false, "")

			purger := NewOldAccountPurger(s, testOptions())
			result, err := purger.Run(ctx, OldAccountParams{AgeThresholdDays: 1})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 1 {
				t.Errorf("Affected = %d, want 1", result.Affected)
			}
			if result.Basis != BasisExpiration {
				t.Errorf("Basis = %q, want expiration", result.Basis)
			}
			if accountExists(t, s, "long-expired") {
				t.Error("long-expired account should be deleted")
			}
			if !accountExists(t, s, "at-cutoff") {
				t.Error("account expiring exactly at the cutoff should be kept")
			}

			result, err = purger.Run(ctx, OldAccountParams{AgeThresholdDays: 1})
			if err != nil {
				t.Fatalf("second Run() failed: %v", err)
			}
			if result.Affected != 0 {
				t.Errorf("second Affected = %d, want 0", result.Affected)
			}
		})
	}
}

func TestOldAccountPurger_Joined(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seedAccount(t, s, "old-inactive", daysAgo(400), false, "")
			seedAccount(t, s, "old-active", daysAgo(400), true, "")
			seedAccount(t, s, "new-inactive", daysAgo(10), false, "")

			purger := NewOldAccountPurger(s, testOptions())
			result, err := purger.Run(ctx, OldAccountParams{AgeThresholdDays: 365, Basis: BasisJoined})
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if result.Affected != 1 {
				t.Errorf("Affected = %d, want 1", result.Affected)
			}
			if accountExists(t, s, "old-inactive") || !accountExists(t, s, "old-active") || !accountExists(t, s, "new-inactive") {
				t.Error("wrong accounts deleted")
			}
		})
	}
}

func TestOldAccountPurger_InvalidBasis(t *testing.T) {
	purger := NewOldAccountPurger(storeWithoutAccess{t: t}, testOptions())
	_, err := purger.Run(context.Background(), OldAccountParams{AgeThresholdDays: 1, Basis: "created"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Run() error = %v, want ErrInvalidArgument", err)
	}
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		raw     string
		want    Basis
		wantErr bool
	}{
		{"", BasisExpiration, false},
		{"expiration", BasisExpiration, false},
		{"joined", BasisJoined, false},
		{"Joined", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBasis(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBasis(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBasis(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
