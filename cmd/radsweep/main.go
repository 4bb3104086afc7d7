// radsweep keeps a RADIUS accounting database tidy.
//
// It closes sessions that never received a stop record, removes accounts
// that never verified, deactivates and deletes accounts from expired import
// batches and prunes old authentication attempts and session records.
//
// Usage:
//
//	# Apply the schema to a fresh database
//	radsweep migrate --config radsweep.yaml
//
//	# Run one job now
//	radsweep cleanup-stale-sessions --older-than-days 30
//	radsweep delete-unverified-users --older-than-days 2 --exclude-methods mobile_phone,bank_card --dry-run
//
//	# Run the scheduler and admin API
//	radsweep serve --config radsweep.yaml
package main

import (
	"fmt"
	"os"

	"radsweep-hq/radsweep/pkg/cli"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}
