package error

import (
	"errors"

	"github.com/next-trace/scg-respond/contract"
)

// KindSpec holds the defaults of an error kind.
type KindSpec struct {
	// Message is used when New is called with an empty message.
	// Defaults to the type tag.
	Message string
	// Code is the default HTTP status. Defaults to 500.
	Code int
	// CaptureDiagnostics enables stack capture and error-level logging.
	CaptureDiagnostics bool
}

// Kind describes one class of canonical error. Kinds are values, not types:
// every instance is an *Error carrying the kind's type tag.
type Kind struct {
	typeTag string
	spec    KindSpec
}

// NewKind declares an error kind. It is the extension point for
// project-specific kinds:
//
//	var ErrConflict = apiError.NewKind("ConflictError", apiError.KindSpec{
//		Message: "Conflict",
//		Code:    http.StatusConflict,
//	})
func NewKind(typeTag string, spec KindSpec) *Kind {
	if spec.Message == "" {
		spec.Message = typeTag
	}

	if spec.Code == 0 {
		spec.Code = defaultHTTPStatus
	}

	return &Kind{typeTag: typeTag, spec: spec}
}

// TypeTag returns the identifier shared by every instance of the kind.
func (k *Kind) TypeTag() string { return k.typeTag }

// HTTPStatus returns the kind's default status.
func (k *Kind) HTTPStatus() int { return k.spec.Code }

// CaptureDiagnostics reports the kind's diagnostics policy.
func (k *Kind) CaptureDiagnostics() bool { return k.spec.CaptureDiagnostics }

// New creates an instance of the kind. An empty message selects the kind's
// default message. Kinds that capture diagnostics record the caller's stack.
func (k *Kind) New(message string, opts ...Option) *Error {
	return k.newSkip(1, message, opts...)
}

func (k *Kind) newSkip(skip int, message string, opts ...Option) *Error {
	if message == "" {
		message = k.spec.Message
	}

	e := &Error{
		typeTag:            k.typeTag,
		message:            message,
		httpStatus:         k.spec.Code,
		captureDiagnostics: k.spec.CaptureDiagnostics,
	}
	for _, o := range opts {
		o(e)
	}

	if e.captureDiagnostics {
		e.stack = Callers(skip + 1)
	}

	return e
}

// Is reports whether err, or any error in its chain, is a canonical error of this kind.
func (k *Kind) Is(err error) bool {
	var ce contract.Error
	if !errors.As(err, &ce) {
		return false
	}

	return ce.TypeTag() == k.typeTag
}
