package error

import "net/http"

// Predefined kinds.
//
// UnauthenticatedKind and ForbiddenKind both report 403: policy layers still
// need to tell "not authenticated" apart from "authenticated but not allowed"
// in audit logs, so they stay separate kinds.
var (
	UnauthenticatedKind = NewKind("UnauthenticatedError", KindSpec{
		Message: "Authentication Required",
		Code:    http.StatusForbidden,
	})
	ForbiddenKind = NewKind("ForbiddenError", KindSpec{
		Message: "Forbidden",
		Code:    http.StatusForbidden,
	})
	ValidationKind = NewKind("ValidationError", KindSpec{
		Message: "ValidationError",
		Code:    http.StatusBadRequest,
	})
	InvalidRequestKind = NewKind("InvalidRequestError", KindSpec{
		Message:            "Invalid request",
		Code:               http.StatusBadRequest,
		CaptureDiagnostics: true,
	})
	NotFoundKind = NewKind("NotFound", KindSpec{
		Message: "NotFound",
		Code:    http.StatusNotFound,
	})
	UnknownKind = NewKind("UnknownError", KindSpec{
		Message:            "Unknown Error",
		Code:               http.StatusInternalServerError,
		CaptureDiagnostics: true,
	})
	InternalServerKind = NewKind("InternalServerError", KindSpec{
		Message:            "Internal Server Error",
		Code:               http.StatusInternalServerError,
		CaptureDiagnostics: true,
	})
)

// NotFound is the shared instance written when a computation yields no value.
var NotFound = NotFoundKind.New("")

// Unauthenticated reports a missing or invalid caller identity.
func Unauthenticated(message string, opts ...Option) *Error {
	return UnauthenticatedKind.newSkip(1, message, opts...)
}

// Forbidden reports an identified caller that is not permitted.
func Forbidden(message string, opts ...Option) *Error {
	return ForbiddenKind.newSkip(1, message, opts...)
}

// Validation reports request content that fails validation.
func Validation(message string, opts ...Option) *Error {
	return ValidationKind.newSkip(1, message, opts...)
}

// InvalidRequest reports a structurally malformed request.
func InvalidRequest(message string, opts ...Option) *Error {
	return InvalidRequestKind.newSkip(1, message, opts...)
}

// Unknown reports a failure whose kind is not recognized.
func Unknown(message string, opts ...Option) *Error {
	return UnknownKind.newSkip(1, message, opts...)
}

// InternalServer reports a failure that carries no usable information.
func InternalServer(message string, opts ...Option) *Error {
	return InternalServerKind.newSkip(1, message, opts...)
}
