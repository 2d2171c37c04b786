package error

import (
	"errors"
)

// Wrap attaches a cause to a new Error of the given kind. If cause is nil, an
// opaque cause is created. It preserves the original cause for errors.Is / errors.As
// via Unwrap(). An empty message selects the kind's default.
func Wrap(cause error, kind *Kind, message string, opts ...Option) *Error {
	if cause == nil {
		cause = errors.New("unknown")
	}

	e := kind.newSkip(1, message, opts...)
	e.cause = cause

	return e
}

// Ensure converts any error to *Error.
//
// Behavior:
//   - nil input => nil output
//   - if err is already *Error (or wraps one) => that *Error is returned as-is (same pointer)
//   - otherwise wrap it into an UnknownError whose message is err.Error()
func Ensure(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error

	if errors.As(err, &e) {
		return e
	}

	return Wrap(err, UnknownKind, err.Error())
}
