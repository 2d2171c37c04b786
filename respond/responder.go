package respond

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/next-trace/scg-respond/async"
	apiError "github.com/next-trace/scg-respond/error"
	"github.com/next-trace/scg-respond/sink"
	"github.com/next-trace/scg-respond/translate"
)

// ErrInvalidSink is returned when the response target cannot write a response.
// It signals a programming error at the call site.
var ErrInvalidSink = sink.ErrInvalidSink

// Func is a respond capability bound to one response.
type Func func(pending any, successStatus ...int) error

// Responder resolves pending computations into responses. A Responder is safe
// for concurrent use; RegisterTranslator is the exception and must only be
// called before the Responder serves requests.
type Responder struct {
	logger  *slog.Logger
	verbose bool
	legacy  bool
	adapt   async.Adapter
	chain   *translate.Chain
	metrics *metrics
}

// New builds a Responder from cfg.
func New(cfg Config) *Responder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	adapt := cfg.AsyncAdapter
	if adapt == nil {
		adapt = async.Normalize
	}

	return &Responder{
		logger:  logger,
		verbose: cfg.Verbose,
		legacy:  cfg.LegacyFormat,
		adapt:   adapt,
		chain:   translate.NewChain(logger, cfg.Translators...),
		metrics: newMetrics(cfg.Registerer),
	}
}

// RegisterTranslator appends t to the translator chain. Start-up only.
func (r *Responder) RegisterTranslator(t translate.Translator) {
	r.chain.Register(t)
}

// Resolve awaits pending and writes exactly one response to target.
//
// target is anything sink.Adapt accepts. An unusable target returns an error
// wrapping ErrInvalidSink before pending is touched. successStatus overrides
// the 200 used for present values. The returned error is otherwise only
// non-nil when the sink fails to write.
func (r *Responder) Resolve(target any, pending any, successStatus ...int) error {
	s, err := sink.Adapt(target)
	if err != nil {
		return err
	}

	return r.resolve(context.Background(), s, pending, successCode(successStatus), apiError.Callers(1))
}

// ResolveContext is Resolve with a context for the diagnostics it logs.
// The context does not cancel the wait.
func (r *Responder) ResolveContext(ctx context.Context, target any, pending any, successStatus ...int) error {
	s, err := sink.Adapt(target)
	if err != nil {
		return err
	}

	return r.resolve(ctx, s, pending, successCode(successStatus), apiError.Callers(1))
}

// Attach binds a respond capability to target.
func (r *Responder) Attach(target any) (Func, error) {
	s, err := sink.Adapt(target)
	if err != nil {
		return nil, err
	}

	return r.bind(context.Background(), s), nil
}

// MustAttach is Attach that panics on an unusable target.
func (r *Responder) MustAttach(target any) Func {
	fn, err := r.Attach(target)
	if err != nil {
		panic(err)
	}

	return fn
}

func (r *Responder) bind(ctx context.Context, s sink.Sink) Func {
	return func(pending any, successStatus ...int) error {
		return r.resolve(ctx, s, pending, successCode(successStatus), apiError.Callers(1))
	}
}

func (r *Responder) resolve(ctx context.Context, s sink.Sink, pending any, code int, site apiError.Stack) error {
	p := r.adapt(pending)
	if p == nil {
		p = async.Resolved(nil)
	}

	start := time.Now()
	st := p.Await()
	r.metrics.observeSettle(time.Since(start))

	res := r.classify(ctx, st, code, site)

	werr := s.Send(res.status, res.body)
	r.metrics.count(res.outcome, res.typeTag, res.status)

	if f, ok := p.(async.Finalizer); ok {
		f.Done()
	}

	if werr != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "respond: write response",
			slog.Int("code", res.status),
			slog.String("outcome", res.outcome),
			slog.String("error", werr.Error()),
		)

		return fmt.Errorf("respond: write response: %w", werr)
	}

	return nil
}

func successCode(successStatus []int) int {
	if len(successStatus) > 0 && successStatus[0] != 0 {
		return successStatus[0]
	}

	return http.StatusOK
}
