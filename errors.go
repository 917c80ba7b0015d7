package quire

import "errors"

var (
	// ErrNotFound is returned when a record or its content is absent, or hidden by the owner filter
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails, before any store is touched
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is returned when the caller has no verified identity
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStoreFailure is returned when a metadata or blob store reports an unclassified error
	ErrStoreFailure = errors.New("store failure")
	// ErrNoEcho is returned by a RecordRepo when an insert succeeded but the row could not be read back
	ErrNoEcho = errors.New("insert echo unavailable")
)
