package engine

import "errors"

// nonRetryableError wraps an error to signal that retrying the operation
// would be harmful (e.g. duplicate event creation after a post-append
// fold failure). Callers should use IsNonRetryable to detect this
// condition and surface a permanent failure instead of a retry hint.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable returns true from IsNonRetryable checks.
func (e *nonRetryableError) NonRetryable() bool { return true }

// wrapNonRetryable marks an error as non-retryable.
func wrapNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable returns true when the error (or any error in its chain)
// signals that the operation must not be retried. Events are already in
// the journal at that point; re-running the command would decide against
// state that includes them and append a second batch.
func IsNonRetryable(err error) bool {
	var target interface{ NonRetryable() bool }
	if errors.As(err, &target) {
		return target.NonRetryable()
	}
	return false
}
