// Package apperrors defines the error kinds shared by every component.
//
// Validation and not-found errors are recoverable: the conversation boundary
// shows the message and asks again. Computation and external-service errors fail
// the current request but never the process.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrComputation     = errors.New("computation error")
	ErrExternalService = errors.New("external service error")
)

// Error is a classified failure. Msg is safe to show to the user.
type Error struct {
	Err  error
	kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind sentinel of e.
func (e *Error) Is(target error) bool { return target == e.kind }

// Validation reports bad user input.
func Validation(op, msg string) error {
	return &Error{kind: ErrValidation, Op: op, Msg: msg}
}

// NotFound reports an unknown id, location or specialization.
func NotFound(op, msg string) error {
	return &Error{kind: ErrNotFound, Op: op, Msg: msg}
}

// Computation reports a model fit or predict failure.
func Computation(op string, err error) error {
	return &Error{kind: ErrComputation, Op: op, Msg: "we could not compute a result right now", Err: err}
}

// External reports an unavailable scorer, mail server or web API.
func External(op string, err error) error {
	return &Error{kind: ErrExternalService, Op: op, Msg: "an external service is unavailable", Err: err}
}

// Recoverable reports whether the caller should ask the user again.
func Recoverable(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound)
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return "we encountered an internal error"
}
