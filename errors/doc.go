/*
Package errors provides the layered error taxonomy of the persistence engine.

Validation failures (nil arguments, bad input) are ValidationError values.
Wiring failures discovered at startup (unknown provider, missing connection
string, missing database context) are ConfigError values and are fatal.
Backend failures are classified once, at the Data Store boundary, into a
StorageError carrying a Kind and a human-readable message:

	err := errors.NewStorageError("load products", errors.KindDeadlock, backendErr)
	err.Error() // "load products: the operation was chosen as a deadlock victim; try again"

The kinds split into retry-appropriate failures (connectivity, timeout,
deadlock) and integrity failures (unique and foreign key violations):

	if errors.IsTransient(err) {
	    // retry the whole operation
	}
	if errors.IsIntegrity(err) {
	    // the data must change before saving again
	}

Raw backend error types never escape: StorageError only unwraps to
context.Canceled and context.DeadlineExceeded. The original cause stays
available through Cause for logging.
*/
package errors
