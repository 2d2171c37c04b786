// Package error provides the canonical application errors reported by scg-respond.
//
// It defines a single concrete type Error with an immutable, defensively-cloned payload
// and support for errors.Is / errors.As via Unwrap.
package error

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/next-trace/scg-respond/contract"
)

// Error is the canonical error type for scg-respond.
//
// Fields:
//   - TypeTag:            kind identifier (e.g. "ValidationError")
//   - Message:            human-readable description
//   - HTTPStatus:         numeric HTTP status written by the resolver
//   - CaptureDiagnostics: whether a stack is captured and logged at error level
//   - Payload:            optional structured detail, sent as "data"
type Error struct {
	typeTag            string
	message            string
	httpStatus         int
	captureDiagnostics bool
	payload            any
	cause              error
	stack              Stack
}

// compile-time guarantee that *Error implements contract.Error
var _ contract.Error = (*Error)(nil)

// ------ standard error interface

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	// Compact, dev-friendly string. Clients read the envelope instead.
	if e.cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.typeTag, e.httpStatus, e.message, e.cause)
	}

	return fmt.Sprintf("%s (%d): %s", e.typeTag, e.httpStatus, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// ------ contract.Error getters

func (e *Error) TypeTag() string          { return e.typeTag }
func (e *Error) Message() string          { return e.message }
func (e *Error) HTTPStatus() int          { return e.httpStatus }
func (e *Error) CaptureDiagnostics() bool { return e.captureDiagnostics }
func (e *Error) Payload() any             { return clonePayload(e.payload) }

// Stack returns the call stack recorded at construction. It is nil for kinds
// that do not capture diagnostics.
func (e *Error) Stack() Stack { return e.stack }

// Log writes the error to logger. The resolver calls it once for every
// response the error produces, so a shared sentinel logs on each use. A nil
// logger falls back to slog.Default().
//
// Kinds with CaptureDiagnostics log at error level together with the recorded
// stack; the others are expected outcomes and log at debug level.
func (e *Error) Log(ctx context.Context, logger *slog.Logger) {
	if e == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("type", e.typeTag),
		slog.Int("code", e.httpStatus),
		slog.String("message", e.message),
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}

	if !e.captureDiagnostics {
		logger.LogAttrs(ctx, slog.LevelDebug, "application error", attrs...)
		return
	}

	if len(e.stack) > 0 {
		attrs = append(attrs, slog.String("stack", e.stack.String()))
	}

	logger.LogAttrs(ctx, slog.LevelError, "application error", attrs...)
}

// MarshalJSON encodes the error in the current wire shape.
func (e *Error) MarshalJSON() ([]byte, error) {
	return EnvelopeOf(e).MarshalJSON()
}

// ------ copy-on-write helpers (the receiver is never modified)

// WithPayloadKV returns a copy of e whose map payload carries k=v. A nil payload
// starts a new map; a non-map payload is replaced by {"detail": payload, k: v}.
func (e *Error) WithPayloadKV(k string, v any) *Error {
	if e == nil {
		return nil
	}

	var m map[string]any

	switch p := e.payload.(type) {
	case nil:
		m = map[string]any{}
	case map[string]any:
		m = cloneMap(p)
		if m == nil {
			m = map[string]any{}
		}
	default:
		m = map[string]any{"detail": p}
	}

	m[k] = v

	out := e.clone()
	out.payload = m

	return out
}

// WithCause returns a copy of e with cause exposed via Unwrap().
func (e *Error) WithCause(cause error) *Error {
	if e == nil {
		return nil
	}

	out := e.clone()
	out.cause = cause

	return out
}

// WithHTTPStatus returns a copy of e reporting status instead of the kind default.
func (e *Error) WithHTTPStatus(status int) *Error {
	if e == nil {
		return nil
	}

	out := e.clone()
	out.httpStatus = status

	return out
}

func (e *Error) clone() *Error {
	return &Error{
		typeTag:            e.typeTag,
		message:            e.message,
		httpStatus:         e.httpStatus,
		captureDiagnostics: e.captureDiagnostics,
		payload:            clonePayload(e.payload),
		cause:              e.cause,
		stack:              e.stack,
	}
}

func clonePayload(p any) any {
	switch v := p.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		if v == nil {
			return nil
		}
		out := make([]any, len(v))
		copy(out, v)
		return out
	default:
		return p
	}
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}

	out := make(map[string]any, len(in))

	for k, v := range in {
		// Deep-clone nested maps with string keys to avoid leaking internal references.
		if mv, ok := v.(map[string]any); ok {
			out[k] = cloneMap(mv)
			continue
		}

		out[k] = v
	}

	return out
}
