package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned by deliberation lifecycle operations.
var (
	// ErrAlreadyStarted indicates a start request for a deliberation
	// that is not in the not-started status.
	ErrAlreadyStarted = errors.New("deliberation already started")

	// ErrNotInProgress indicates a stage transition or completion was
	// requested while the deliberation is not in progress.
	ErrNotInProgress = errors.New("deliberation not in progress")

	// ErrNotFinal indicates a final-only operation was invoked on a
	// category deliberation.
	ErrNotFinal = errors.New("not a final deliberation")

	// ErrNotCategory indicates a category-only operation was invoked on
	// a final deliberation.
	ErrNotCategory = errors.New("not a category deliberation")

	// ErrUnknownAward indicates an operation referenced an award that
	// is not configured for the division.
	ErrUnknownAward = errors.New("unknown award")

	// ErrChampionsUnassigned indicates the champions stage cannot close
	// before the champions picklist has at least a first place.
	ErrChampionsUnassigned = errors.New("champions first place not assigned")

	// ErrCategoryUnassigned indicates the core-awards stage cannot
	// close while a rubric category picklist is still empty.
	ErrCategoryUnassigned = errors.New("category award not assigned")

	// ErrWinnerConflict indicates a category picklist contains a team
	// that already holds a champions award.
	ErrWinnerConflict = errors.New("team already holds a champions award")
)

// ResolutionError reports that an end-stage resolution could not be
// committed to the external sink. The deliberation's stage and status
// are left untouched so the close can be retried.
type ResolutionError struct {
	// Stage is the stage whose resolution failed.
	Stage DeliberationStage

	// Err is the underlying sink or validation error.
	Err error
}

// Error implements the error interface for ResolutionError.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution failed: stage=%s, err=%v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ResolutionError) Unwrap() error { return e.Err }

// NewResolutionError wraps err as a ResolutionError for the stage.
func NewResolutionError(stage DeliberationStage, err error) *ResolutionError {
	return &ResolutionError{Stage: stage, Err: err}
}
