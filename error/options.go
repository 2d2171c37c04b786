package error

// Option configures an Error during construction via Kind.New.
type Option func(*Error)

// defaultHTTPStatus is used for kinds declared without a status and for
// envelopes whose code is missing.
const defaultHTTPStatus = 500

// WithHTTPStatus overrides the kind's default HTTP status for this instance.
func WithHTTPStatus(status int) Option { return func(e *Error) { e.httpStatus = status } }

// WithPayload sets the structured detail sent as "data".
// A map[string]any payload is defensively cloned.
func WithPayload(payload any) Option {
	return func(e *Error) { e.payload = clonePayload(payload) }
}

// WithCause sets the underlying cause to be returned by Unwrap().
func WithCause(cause error) Option { return func(e *Error) { e.cause = cause } }

// StatusOr500 returns status, or 500 when status is not a usable HTTP code.
func StatusOr500(status int) int {
	if status < 100 || status > 999 {
		return defaultHTTPStatus
	}

	return status
}
