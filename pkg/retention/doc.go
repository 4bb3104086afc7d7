// Package retention implements the maintenance operations that keep a RADIUS
// accounting database tidy.
//
// Each operation turns its parameters into a declarative filter (see
// predicate.go) and hands it to a single accounting.Store call, so the
// selection and the mutation happen in one atomic step:
//
//   - StaleSessionReconciler closes sessions that never received a stop
//   - UnverifiedAccountPurger deletes accounts that never finished verification
//   - ExpiredAccountDeactivator disables accounts of expired import batches
//   - OldAccountPurger deletes accounts past their batch expiry (or inactive
//     accounts past their join date)
//   - AuditLogPurger deletes old authentication attempts and closed sessions
//
// Every operation is idempotent: a second run with the same parameters and
// no intervening writes affects nothing. Parameters are validated before the
// store is touched; invalid input yields an *InvalidArgumentError.
//
// Example:
//
//	purger := retention.NewUnverifiedAccountPurger(store, nil)
//	result, err := purger.Run(ctx, retention.UnverifiedParams{
//	    AgeThresholdDays: 1,
//	    ExcludedMethods:  []accounting.Method{accounting.MethodMobilePhone},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Summary())
package retention
