package respond

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/google/uuid"

	"github.com/next-trace/scg-respond/async"
	"github.com/next-trace/scg-respond/contract"
	apiError "github.com/next-trace/scg-respond/error"
)

type result struct {
	status  int
	body    any
	outcome string
	typeTag string
}

func (r *Responder) classify(ctx context.Context, st async.Settlement, code int, site apiError.Stack) result {
	if !st.Failed {
		if err, ok := st.Value.(error); ok && !isAbsent(err) {
			return r.classifyError(ctx, err, site)
		}

		if isAbsent(st.Value) {
			return result{
				status:  http.StatusNotFound,
				body:    r.render(apiError.EnvelopeOf(apiError.NotFound)),
				outcome: OutcomeNotFound,
				typeTag: apiError.NotFound.TypeTag(),
			}
		}

		return result{status: code, body: st.Value, outcome: OutcomeSuccess}
	}

	if err, ok := st.Reason.(error); ok && !isAbsent(err) {
		return r.classifyError(ctx, err, site)
	}

	return r.internal(ctx, st.Reason, site)
}

func (r *Responder) classifyError(ctx context.Context, err error, site apiError.Stack) result {
	var ce contract.Error
	if errors.As(err, &ce) {
		r.runLogHook(ctx, ce)

		if r.verbose && ce.CaptureDiagnostics() {
			r.logVerbose(ctx, "respond: resolved with error", err, site)
		}

		env := apiError.EnvelopeOf(ce)

		return result{status: env.Code, body: r.render(env), outcome: OutcomeCanonical, typeTag: env.Type}
	}

	var ro apiError.ResponseObjecter
	if errors.As(err, &ro) {
		if env := ro.ResponseObject(); env != nil {
			r.logResponse(ctx, "respond: resolved with error", err, env, site)

			return result{status: env.Status(), body: r.render(env), outcome: OutcomeTranslated, typeTag: env.Type}
		}
	}

	if env := r.chain.Translate(ctx, err); env != nil {
		r.logResponse(ctx, "respond: resolved with error", err, env, site)

		return result{status: env.Status(), body: r.render(env), outcome: OutcomeTranslated, typeTag: env.Type}
	}

	env := apiError.EnvelopeOf(apiError.Unknown(err.Error(), apiError.WithCause(err)))
	r.logResponse(ctx, "respond: unknown error", err, env, site)

	return result{status: env.Code, body: r.render(env), outcome: OutcomeUnknown, typeTag: env.Type}
}

// logResponse records a failure that did not come from a canonical error.
// The warning is always written; verbose mode adds stacks and an incident id.
func (r *Responder) logResponse(ctx context.Context, msg string, err error, env *apiError.Envelope, site apiError.Stack) {
	if r.verbose {
		r.logVerbose(ctx, msg, err, site)
		return
	}

	r.logger.LogAttrs(ctx, slog.LevelWarn, msg,
		slog.String("type", env.Type),
		slog.Int("code", env.Status()),
		slog.String("error", err.Error()),
	)
}

// internal handles a failure reason that is not an error at all.
// A recovered panic is logged with the stack of the panicking goroutine.
func (r *Responder) internal(ctx context.Context, reason any, site apiError.Stack) result {
	attrs := []slog.Attr{slog.String("incident_id", uuid.NewString())}

	if p, ok := reason.(async.Panic); ok {
		attrs = append(attrs,
			slog.String("reason", fmt.Sprintf("%#v", p.Value)),
			slog.String("panic_stack", p.Stack),
		)
	} else {
		attrs = append(attrs, slog.String("reason", fmt.Sprintf("%#v", reason)))
	}

	attrs = append(attrs, slog.String("resolve_stack", site.String()))

	r.logger.LogAttrs(ctx, slog.LevelError, "respond: internal server error, computation failed with a non-error reason", attrs...)

	env := apiError.EnvelopeOf(apiError.InternalServer(""))

	return result{status: env.Code, body: r.render(env), outcome: OutcomeInternal, typeTag: env.Type}
}

// runLogHook invokes the error's own Log. A panicking hook is logged and
// otherwise ignored.
func (r *Responder) runLogHook(ctx context.Context, ce contract.Error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "respond: error log hook panicked",
				slog.String("type", ce.TypeTag()),
				slog.String("panic", fmt.Sprint(p)),
			)
		}
	}()

	ce.Log(ctx, r.logger)
}

func (r *Responder) logVerbose(ctx context.Context, msg string, err error, site apiError.Stack) {
	attrs := []slog.Attr{
		slog.String("incident_id", uuid.NewString()),
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}

	var withStack interface{ Stack() apiError.Stack }
	if errors.As(err, &withStack) {
		if s := withStack.Stack(); len(s) > 0 {
			attrs = append(attrs, slog.String("error_stack", s.String()))
		}
	}

	attrs = append(attrs, slog.String("resolve_stack", site.String()))

	r.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (r *Responder) render(env *apiError.Envelope) any {
	if r.legacy {
		return env.Legacy()
	}

	return env
}

// isAbsent reports values that encode to JSON null: nil and typed nil
// pointers, maps, slices, funcs, channels and interfaces. Zero values such as
// 0, "" and false are present.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
