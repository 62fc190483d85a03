package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every "record does not exist" error.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped by errors for operations the current state forbids.
	ErrConflict = errors.New("conflict")

	ErrTaskNotFound      = &kindError{msg: "task not found", kind: ErrNotFound}
	ErrSprintNotFound    = &kindError{msg: "sprint not found", kind: ErrNotFound}
	ErrKaizenLogNotFound = &kindError{msg: "kaizen log not found", kind: ErrNotFound}
	ErrDailyPlanNotFound = &kindError{msg: "daily plan not found", kind: ErrNotFound}
	ErrNoActiveSprint    = &kindError{msg: "no active sprint", kind: ErrConflict}
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError reports malformed input. Nothing has been written when it
// is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a datastore failure. The engine never retries these.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr leaves domain errors untouched and wraps anything else as a
// StoreError tagged with op.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *ValidationError
		store      *StoreError
	)
	if errors.As(err, &validation) || errors.As(err, &store) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
