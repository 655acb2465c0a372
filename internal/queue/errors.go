package queue

// emptyQueueError signals PopHead on an empty store.
type emptyQueueError struct{}

func (emptyQueueError) Error() string { return "empty queue" }

// ErrEmptyQueue constructs the canonical empty-queue error.
func ErrEmptyQueue() error { return emptyQueueError{} }

// IsEmptyQueue reports whether err indicates a pop from an empty store.
func IsEmptyQueue(err error) bool {
	_, ok := err.(emptyQueueError)
	return ok
}

// persistenceError wraps a failed write to the persistence store. The
// in-memory queue remains authoritative for the session; callers surface a
// non-fatal warning because a reload would lose the unsaved change.
type persistenceError struct{ err error }

func (e persistenceError) Error() string { return "persist queue: " + e.err.Error() }

func (e persistenceError) Unwrap() error { return e.err }

// IsPersistenceFailure reports whether err indicates a failed persistence
// write.
func IsPersistenceFailure(err error) bool {
	_, ok := err.(persistenceError)
	return ok
}
