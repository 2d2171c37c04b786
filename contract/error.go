// Package contract exposes the minimal error interface used by other packages.
//
// Implementations must ensure Payload returns a defensive copy and support
// errors.Unwrap for proper interoperability with standard error helpers.
package contract

import (
	"context"
	"log/slog"
)

// Error is the minimal, stable surface of a canonical application error.
//
// Implementations must:
//   - Respect Go initialisms (HTTPStatus).
//   - Ensure Payload() returns a defensive copy (never the internal value).
//   - Support errors.Unwrap via Unwrap().
//   - Make Log safe to call repeatedly; shared sentinels are logged on each use.
//
// The resolver in package respond only reads an Error; it never mutates one.
type Error interface {
	error
	// TypeTag is the machine-readable kind identifier, e.g. "ValidationError".
	TypeTag() string
	Message() string
	HTTPStatus() int
	// CaptureDiagnostics reports whether a stack trace is meaningful for this error.
	CaptureDiagnostics() bool
	// Payload returns a defensive copy; NEVER return the internal value directly.
	Payload() any
	// Log writes the error to the operational log. It is invoked once per
	// resolved response, not when the error is constructed.
	Log(ctx context.Context, logger *slog.Logger)
	Unwrap() error
}
