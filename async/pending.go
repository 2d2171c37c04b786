// Package async models the pending computations consumed by package respond.
//
// A Pending settles exactly once with either a value (possibly nil) or a failure
// reason. The reason is usually an error, but a recovered panic or an explicit
// Rejected call may carry any value; respond treats non-error reasons as the
// most severe outcome.
package async

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Settlement is the outcome of a pending computation.
type Settlement struct {
	Value any
	// Reason is the failure value when Failed is set. It may be nil or a
	// non-error value.
	Reason any
	Failed bool
}

// Fulfilled returns a successful settlement.
func Fulfilled(v any) Settlement { return Settlement{Value: v} }

// Failure returns a failed settlement.
func Failure(reason any) Settlement { return Settlement{Reason: reason, Failed: true} }

// Panic is the failure reason of a computation that panicked with a value that
// is not an error. Stack is the goroutine stack at the point of recovery.
type Panic struct {
	Value any
	Stack string
}

// Pending is a computation that can be awaited. Await blocks until settlement
// and returns the same Settlement on every call.
type Pending interface {
	Await() Settlement
}

// Finalizer is optionally implemented by a Pending. Done is called once the
// response has been written.
type Finalizer interface {
	Done()
}

// Adapter turns "a pending computation or a plain value" into a Pending.
type Adapter func(v any) Pending

// Normalize is the default Adapter:
//   - a Pending is returned as-is
//   - func() (any, error) is run lazily on Await, see Func
//   - <-chan Settlement is read on Await, see FromChan
//   - anything else, nil included, is an already-settled value
func Normalize(v any) Pending {
	switch p := v.(type) {
	case Pending:
		return p
	case func() (any, error):
		return Func(p)
	case <-chan Settlement:
		return FromChan(p)
	case chan Settlement:
		return FromChan(p)
	default:
		return Resolved(v)
	}
}

type settled Settlement

func (s settled) Await() Settlement { return Settlement(s) }

// Resolved returns a Pending already settled with v.
func Resolved(v any) Pending { return settled(Fulfilled(v)) }

// Rejected returns a Pending already failed with reason.
func Rejected(reason any) Pending { return settled(Failure(reason)) }

// Func returns a Pending that runs fn on the first Await, in the awaiting
// goroutine. A panic inside fn becomes the failure reason: the error itself
// when the panic value is an error, a Panic otherwise.
func Func(fn func() (any, error)) Pending {
	return &lazy{fn: fn}
}

type lazy struct {
	once sync.Once
	fn   func() (any, error)
	res  Settlement
}

func (l *lazy) Await() Settlement {
	l.once.Do(func() { l.res = run(l.fn) })
	return l.res
}

// FromChan returns a Pending settled by the first value received from ch.
// A channel closed without a value settles with a nil value.
func FromChan(ch <-chan Settlement) Pending {
	return &fromChan{ch: ch}
}

type fromChan struct {
	once sync.Once
	ch   <-chan Settlement
	res  Settlement
}

func (c *fromChan) Await() Settlement {
	c.once.Do(func() { c.res = <-c.ch })
	return c.res
}

// Future is a computation running on its own goroutine.
type Future struct {
	done        chan struct{}
	res         Settlement
	awaited     atomic.Bool
	onUnhandled func(reason any)
}

// FutureOption configures a Future.
type FutureOption func(*Future)

// OnUnhandled registers fn to receive a failure reason that was never awaited
// by the time Done is called. The respond resolver awaits every Future before
// calling Done, so fn only fires for futures finalized outside a resolver,
// e.g. ones abandoned after a timeout.
func OnUnhandled(fn func(reason any)) FutureOption {
	return func(f *Future) { f.onUnhandled = fn }
}

// Go starts fn on a new goroutine. A panic inside fn becomes the failure
// reason, as for Func.
func Go(fn func() (any, error), opts ...FutureOption) *Future {
	f := &Future{done: make(chan struct{})}
	for _, o := range opts {
		o(f)
	}

	go func() {
		defer close(f.done)
		f.res = run(fn)
	}()

	return f
}

// Await blocks until fn has returned.
func (f *Future) Await() Settlement {
	<-f.done
	f.awaited.Store(true)

	return f.res
}

// Ready is closed once the computation has settled.
func (f *Future) Ready() <-chan struct{} { return f.done }

// Done reports a settled, failed and never-awaited future to the OnUnhandled
// callback. It does not block.
func (f *Future) Done() {
	if f.awaited.Load() || f.onUnhandled == nil {
		return
	}

	select {
	case <-f.done:
		if f.res.Failed {
			f.onUnhandled(f.res.Reason)
		}
	default:
	}
}

func run(fn func() (any, error)) (res Settlement) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if err, ok := r.(error); ok {
			res = Failure(err)
			return
		}

		res = Failure(Panic{Value: r, Stack: string(debug.Stack())})
	}()

	if fn == nil {
		return Failure(errors.New("async: nil function"))
	}

	v, err := fn()
	if err != nil {
		return Failure(err)
	}

	return Fulfilled(v)
}
