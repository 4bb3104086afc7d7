// Package accounting defines the records a RADIUS accounting database holds and
// the narrow storage contract the retention engine works against.
//
// # Records
//
// Only the fields that retention predicates read or write are modelled:
//
//   - Account: identity row with a join date, an active flag and an optional
//     originating ImportBatch
//   - VerificationRecord: at most one per account, carrying the registration
//     method and whether the account completed verification
//   - ImportBatch: a bulk-provisioned cohort with an optional expiry
//   - Session: one accounting session (radacct row), open while StopTime is nil
//   - AuthAttempt: one append-only authentication attempt (radpostauth row)
//
// # Store
//
// Store exposes bulk count/update/delete calls keyed by declarative filters
// (AccountFilter, SessionFilter, AuthAttemptFilter). Each mutating call is a
// single atomic filter+mutate step in the backend, so a record that changes
// state between selection and action cannot be half-processed.
//
// Backends live in the storage subpackage:
//
//	store, err := storage.NewSQLStore(ctx, &storage.SQLConfig{
//	    Driver: "sqlite",
//	    Path:   "data/radius.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Errors
//
// Backend failures are returned as *StorageError values, which match
// ErrStoreUnavailable under errors.Is. Callers can therefore tell a run that
// matched nothing apart from a run that never reached the database.
package accounting
