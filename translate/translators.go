package translate

import (
	"errors"

	apiError "github.com/next-trace/scg-respond/error"
)

// As builds a translator for errors of type T anywhere in the error chain.
//
//	chain.Register(translate.As(func(e *pgconn.PgError) *apiError.Envelope {
//		if e.Code == "23505" {
//			return &apiError.Envelope{Type: "ConflictError", Message: e.Detail, Code: 409}
//		}
//		return nil
//	}))
func As[T error](fn func(T) *apiError.Envelope) Translator {
	return func(err error) *apiError.Envelope {
		var target T
		if !errors.As(err, &target) {
			return nil
		}

		return fn(target)
	}
}

// Is builds a translator that reports kind for any error matching sentinel via
// errors.Is. The message is the kind's default unless message is set.
func Is(sentinel error, kind *apiError.Kind, message string) Translator {
	return func(err error) *apiError.Envelope {
		if !errors.Is(err, sentinel) {
			return nil
		}

		return apiError.EnvelopeOf(kind.New(message))
	}
}
