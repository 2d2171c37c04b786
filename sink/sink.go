// Package sink adapts the different response-writing conventions to a single
// Send(status, body) operation.
//
// Supported shapes:
//   - Sink:             Send(status, body)
//   - StatusChain:      Status(code).Send(body)
//   - ReversedFunc:     send(body, status)
//   - http.ResponseWriter
//   - *gin.Context
package sink

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

// ErrInvalidSink is returned by Adapt for values that cannot write a response.
var ErrInvalidSink = errors.New("sink: value cannot write a response")

// Sink writes one response. Callers must call Send at most once.
type Sink interface {
	Send(status int, body any) error
}

// BodySender is the second half of the Status(code).Send(body) convention.
type BodySender interface {
	Send(body any) error
}

// StatusChain is the Status(code).Send(body) convention.
type StatusChain interface {
	Status(code int) BodySender
}

// Func adapts a send(status, body) function.
type Func func(status int, body any) error

func (f Func) Send(status int, body any) error { return f(status, body) }

// ReversedFunc adapts a send(body, status) function.
type ReversedFunc func(body any, status int) error

func (f ReversedFunc) Send(status int, body any) error { return f(body, status) }

// Adapt detects the shape of target and returns a Sink for it. Nil values,
// typed nil pointers and unsupported types yield an error wrapping ErrInvalidSink.
func Adapt(target any) (Sink, error) {
	if isNil(target) {
		return nil, fmt.Errorf("%w: nil", ErrInvalidSink)
	}

	switch t := target.(type) {
	case Sink:
		return t, nil
	case *gin.Context:
		return Gin(t), nil
	case http.ResponseWriter:
		return Writer(t, nil), nil
	case StatusChain:
		return Chain(t), nil
	case func(status int, body any) error:
		return Func(t), nil
	case func(body any, status int) error:
		return ReversedFunc(t), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSink, target)
	}
}

// Chain adapts a StatusChain.
func Chain(c StatusChain) Sink {
	return Func(func(status int, body any) error {
		return c.Status(status).Send(body)
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
