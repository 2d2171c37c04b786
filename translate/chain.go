// Package translate holds the ordered chain of functions that turn foreign
// errors into response envelopes.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	apiError "github.com/next-trace/scg-respond/error"
)

// Translator converts err into an envelope, or returns nil to decline.
type Translator func(err error) *apiError.Envelope

// Chain is an append-only list of translators, consulted in registration order.
//
// Register is not synchronized: register every translator during start-up,
// before the chain is shared with request handlers. Translate is safe for
// concurrent use once registration has stopped.
type Chain struct {
	translators []Translator
	logger      *slog.Logger
}

// NewChain returns a chain holding ts in order. A nil logger falls back to slog.Default().
func NewChain(logger *slog.Logger, ts ...Translator) *Chain {
	c := &Chain{logger: logger}
	for _, t := range ts {
		c.Register(t)
	}

	return c
}

// Register appends t. Nil translators are ignored.
func (c *Chain) Register(t Translator) {
	if t == nil {
		return
	}

	c.translators = append(c.translators, t)
}

// SetLogger replaces the logger used for translator panics. Start-up only.
func (c *Chain) SetLogger(logger *slog.Logger) { c.logger = logger }

// Len reports the number of registered translators.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}

	return len(c.translators)
}

// Translate returns the first non-nil envelope produced for err, or nil when
// every translator declines. A translator that panics is logged at warn level
// and counts as declining; the remaining translators still run.
func (c *Chain) Translate(ctx context.Context, err error) *apiError.Envelope {
	if c == nil {
		return nil
	}

	for i, t := range c.translators {
		if env := c.try(ctx, i, t, err); env != nil {
			return env
		}
	}

	return nil
}

func (c *Chain) try(ctx context.Context, i int, t Translator, err error) (env *apiError.Envelope) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		env = nil

		c.log().LogAttrs(ctx, slog.LevelWarn, "error translator panicked",
			slog.Int("translator", i),
			slog.String("error", err.Error()),
			slog.String("panic", fmt.Sprint(r)),
			slog.String("stack", string(debug.Stack())),
		)
	}()

	return t(err)
}

func (c *Chain) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}

	return c.logger
}
