package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during external store
// and transport interactions.
var (
	// ErrServiceUnavailable indicates that the external store or
	// transport is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotFound indicates that a requested division or deliberation
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the store rejected a write because newer
	// state already exists; the caller should reload and retry.
	ErrConflict = errors.New("stale write conflict")
)

// SinkError represents a failure to deliver an engine output to the
// external sink. It carries the operation and deliberation so callers
// can correlate retries.
type SinkError struct {
	// Operation is the sink method that failed.
	Operation string

	// DeliberationID identifies the affected deliberation, when known.
	DeliberationID string

	// Err is the underlying transport or persistence error.
	Err error
}

// Error implements the error interface for SinkError.
func (e *SinkError) Error() string {
	if e.DeliberationID == "" {
		return fmt.Sprintf("sink error: operation=%s, err=%v", e.Operation, e.Err)
	}
	return fmt.Sprintf("sink error: operation=%s, deliberation=%s, err=%v", e.Operation, e.DeliberationID, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is/As.
func (e *SinkError) Unwrap() error { return e.Err }
