package draftpick

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the pick is absent from the authority or from a
	// mirror whose existence gates the operation.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means another pick already uses the player name.
	ErrConflict = errors.New("player name already drafted")
	// ErrValidation means the request body is missing or incomplete.
	ErrValidation = errors.New("invalid draft pick request")
	// ErrStoreUnavailable wraps a store failure that is not a missing record.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrPartialFailure means the authority was changed but a mirror write
	// or delete failed afterwards. The authority change is not reverted.
	ErrPartialFailure = errors.New("partial failure")
)

// PartialFailureError reports the mirror stage that failed after the
// authority had already committed.
type PartialFailureError struct {
	ID    int64
	Stage string
	Store Store
	Err   error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("draft pick %d: authority committed but stage %s failed: %v", e.ID, e.Stage, e.Err)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrPartialFailure, e.Err}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
