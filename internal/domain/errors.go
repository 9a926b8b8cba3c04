package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrSchedulingConflict = errors.New("the selected dates overlap an approved ad, please choose a different range")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("ad request not found")
	ErrInvalidTransition  = errors.New("ad request cannot move to the requested status")

	// ErrNotCurrentlyActive is a transition conflict with its own user message.
	ErrNotCurrentlyActive = fmt.Errorf("%w: ad is not currently active", ErrInvalidTransition)
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SchedulingConflictError carries the approved requests the candidate collided with.
type SchedulingConflictError struct {
	Conflicts []AdRequest
}

func (e *SchedulingConflictError) Error() string {
	return ErrSchedulingConflict.Error()
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrSchedulingConflict
}

// Windows returns the conflicting intervals, which is all the UI needs.
func (e *SchedulingConflictError) Windows() []Interval {
	windows := make([]Interval, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		windows = append(windows, c.Interval())
	}
	return windows
}
