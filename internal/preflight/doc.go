// Package preflight checks that a lexsearch project can be indexed before a
// run starts.
//
// The package validates:
//   - Write permissions and free disk space in the data directory
//   - File descriptor limits
//   - The enumeration source for the configured mode
//   - Text extraction support for the configured formats
//   - That no other indexing run holds the lock
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New(cfg)
//	results := checker.RunAll(ctx)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
