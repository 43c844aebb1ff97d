package dataset

import "errors"

// ErrSkipped is the reason attached to outcomes whose stage did not run
var ErrSkipped = errors.New("stage skipped")

// Outcome is the result of a pipeline stage that may fail without aborting the report.
// When Ok is false, Err says why the value is absent.
type Outcome[T any] struct {
	Value T
	Ok    bool
	Err   error
}

// Succeeded wraps a stage value
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Ok: true}
}

// Failed records a stage error
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// Skipped records that a stage did not run because its preconditions were not met
func Skipped[T any](reason string) Outcome[T] {
	return Outcome[T]{Err: &skipError{reason: reason}}
}

// Get returns the value and whether it is present
func (o Outcome[T]) Get() (T, bool) {
	return o.Value, o.Ok
}

// Reason returns the absence reason, or "" when the value is present
func (o Outcome[T]) Reason() string {
	if o.Ok || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func (e *skipError) Unwrap() error { return ErrSkipped }
