package respond_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/next-trace/scg-respond/async"
	apiError "github.com/next-trace/scg-respond/error"
	"github.com/next-trace/scg-respond/respond"
	"github.com/next-trace/scg-respond/sink"
	"github.com/next-trace/scg-respond/translate"
)

func newLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// resolveOne resolves pending and asserts exactly one write happened.
func resolveOne(t *testing.T, r *respond.Responder, pending any, successStatus ...int) sink.Write {
	t.Helper()

	rec := sink.NewRecorder(nil)
	if err := r.Resolve(rec, pending, successStatus...); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if rec.Count() != 1 {
		t.Fatalf("expected exactly one write, got %d", rec.Count())
	}

	w, _ := rec.Last()

	return w
}

func bodyJSON(t *testing.T, body any) string {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	return string(b)
}

func TestResolve_CanonicalKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    *apiError.Error
		status int
		tag    string
	}{
		{apiError.Unauthenticated(""), 403, "UnauthenticatedError"},
		{apiError.Forbidden(""), 403, "ForbiddenError"},
		{apiError.Validation("bad field"), 400, "ValidationError"},
		{apiError.InvalidRequest(""), 400, "InvalidRequestError"},
		{apiError.NotFound, 404, "NotFound"},
		{apiError.Unknown(""), 500, "UnknownError"},
		{apiError.InternalServer(""), 500, "InternalServerError"},
	}

	r := respond.New(respond.Config{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))})

	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			t.Parallel()

			for name, pending := range map[string]any{
				"rejected": async.Rejected(tc.err),
				"func":     func() (any, error) { return nil, tc.err },
				"wrapped":  async.Rejected(fmt.Errorf("service: %w", tc.err)),
			} {
				w := resolveOne(t, r, pending)
				if w.Status != tc.status {
					t.Fatalf("%s: status=%d want=%d", name, w.Status, tc.status)
				}

				env, ok := w.Body.(*apiError.Envelope)
				if !ok || env.Type != tc.tag || env.Code != tc.status {
					t.Fatalf("%s: body=%#v", name, w.Body)
				}
			}
		})
	}
}

func TestResolve_PresentValuesAreWrittenUnchanged(t *testing.T) {
	t.Parallel()

	r := respond.New(respond.Config{})

	type item struct{ ID int }

	values := []any{0, "", false, 0.0, struct{}{}, item{ID: 1}, []int{}, map[string]any{}, "hello"}

	for _, v := range values {
		w := resolveOne(t, r, v)
		if w.Status != 200 {
			t.Fatalf("%#v: status=%d want=200", v, w.Status)
		}

		if bodyJSON(t, w.Body) != bodyJSON(t, v) {
			t.Fatalf("%#v: body changed to %#v", v, w.Body)
		}
	}

	if w := resolveOne(t, r, async.Resolved(false), 201); w.Status != 201 || w.Body != false {
		t.Fatalf("override: status=%d body=%#v", w.Status, w.Body)
	}
}

func TestResolve_AbsentValuesAreNotFound(t *testing.T) {
	t.Parallel()

	r := respond.New(respond.Config{})

	var nilPtr *struct{ ID int }
	var nilMap map[string]any

	for _, v := range []any{nil, nilPtr, nilMap, async.Resolved(nil), func() (any, error) { return nil, nil }} {
		w := resolveOne(t, r, v, 201)
		if w.Status != 404 {
			t.Fatalf("%#v: status=%d want=404", v, w.Status)
		}

		if got := bodyJSON(t, w.Body); got != `{"type":"NotFound","message":"NotFound","code":404}` {
			t.Fatalf("%#v: body=%s", v, got)
		}
	}
}

func TestResolve_ErrorValueIsTreatedAsFailure(t *testing.T) {
	t.Parallel()

	r := respond.New(respond.Config{})

	w := resolveOne(t, r, async.Resolved(apiError.Forbidden("admins only")))
	if w.Status != 403 || w.Body.(*apiError.Envelope).Type != "ForbiddenError" {
		t.Fatalf("status=%d body=%#v", w.Status, w.Body)
	}

	w = resolveOne(t, r, errors.New("plain"))
	if w.Status != 500 || w.Body.(*apiError.Envelope).Message != "plain" {
		t.Fatalf("status=%d body=%#v", w.Status, w.Body)
	}
}

type selfDescribing struct{}

func (selfDescribing) Error() string { return "self" }

func (selfDescribing) ResponseObject() *apiError.Envelope {
	return &apiError.Envelope{Type: "RateLimited", Message: "slow down", Code: 429}
}

func TestResolve_ResponseObjecterBypassesChain(t *testing.T) {
	t.Parallel()

	called := false
	r := respond.New(respond.Config{Translators: []translate.Translator{
		func(error) *apiError.Envelope { called = true; return &apiError.Envelope{Type: "Wrong", Code: 400} },
	}})

	w := resolveOne(t, r, async.Rejected(selfDescribing{}))
	if w.Status != 429 || w.Body.(*apiError.Envelope).Type != "RateLimited" {
		t.Fatalf("status=%d body=%#v", w.Status, w.Body)
	}

	if called {
		t.Fatalf("translator chain must not run for self-describing errors")
	}
}

func TestResolve_TranslatorOrder(t *testing.T) {
	t.Parallel()

	var order []string

	e := &apiError.Envelope{Type: "MongoError", Message: "duplicate key", Code: 409}
	r := respond.New(respond.Config{})
	r.RegisterTranslator(func(error) *apiError.Envelope { order = append(order, "t1"); return nil })
	r.RegisterTranslator(func(error) *apiError.Envelope { order = append(order, "t2"); return e })

	w := resolveOne(t, r, async.Rejected(errors.New("E11000")))
	if w.Status != 409 || w.Body != e {
		t.Fatalf("status=%d body=%#v, want exactly E", w.Status, w.Body)
	}

	if strings.Join(order, ",") != "t1,t2" {
		t.Fatalf("order=%v", order)
	}
}

func TestResolve_PanickingTranslator(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()

	panicking := func(error) *apiError.Envelope { panic("broken translator") }
	next := func(error) *apiError.Envelope { return &apiError.Envelope{Type: "Translated", Message: "ok", Code: 422} }

	r := respond.New(respond.Config{Logger: logger, Translators: []translate.Translator{panicking, next}})

	w := resolveOne(t, r, async.Rejected(errors.New("x")))
	if w.Status != 422 {
		t.Fatalf("status=%d want=422", w.Status)
	}

	if !strings.Contains(buf.String(), "error translator panicked") {
		t.Fatalf("expected a warning log, got %s", buf.String())
	}

	r = respond.New(respond.Config{Logger: logger, Translators: []translate.Translator{panicking}})

	w = resolveOne(t, r, async.Rejected(errors.New("db exploded")))
	if got := bodyJSON(t, w.Body); w.Status != 500 || got != `{"type":"UnknownError","message":"db exploded","code":500}` {
		t.Fatalf("status=%d body=%s", w.Status, got)
	}
}

func TestResolve_LegacyFormat(t *testing.T) {
	t.Parallel()

	current := respond.New(respond.Config{})
	legacy := respond.New(respond.Config{LegacyFormat: true})

	w := resolveOne(t, current, async.Rejected(apiError.Validation("bad field")))
	if got := bodyJSON(t, w.Body); w.Status != 400 || got != `{"type":"ValidationError","message":"bad field","code":400}` {
		t.Fatalf("current: status=%d body=%s", w.Status, got)
	}

	w = resolveOne(t, legacy, async.Rejected(apiError.Validation("bad field")))
	if got := bodyJSON(t, w.Body); w.Status != 400 || got != `{"type":"ValidationError","data":["bad field"],"code":400}` {
		t.Fatalf("legacy: status=%d body=%s", w.Status, got)
	}

	w = resolveOne(t, legacy, nil)
	if got := bodyJSON(t, w.Body); w.Status != 404 || got != `{"type":"NotFound","data":["NotFound"],"code":404}` {
		t.Fatalf("legacy not found: status=%d body=%s", w.Status, got)
	}

	w = resolveOne(t, legacy, "ok")
	if w.Body != "ok" {
		t.Fatalf("success bodies must not change shape, got %#v", w.Body)
	}
}

func corruptCache() (any, error) { panic("cache corrupted") }

func TestResolve_NonErrorReasonIsInternalAndAlwaysLogged(t *testing.T) {
	t.Parallel()

	for _, verbose := range []bool{false, true} {
		logger, buf := newLogger()
		r := respond.New(respond.Config{Logger: logger, Verbose: verbose})

		for _, pending := range []any{
			async.Rejected("boom"),
			async.Func(func() (any, error) { panic("boom") }),
		} {
			buf.Reset()

			w := resolveOne(t, r, pending)
			if got := bodyJSON(t, w.Body); w.Status != 500 ||
				got != `{"type":"InternalServerError","message":"Internal Server Error","code":500}` {
				t.Fatalf("status=%d body=%s", w.Status, got)
			}

			out := buf.String()
			if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, `\"boom\"`) {
				t.Fatalf("verbose=%v: expected unconditional error log, got %s", verbose, out)
			}

			if !strings.Contains(out, "TestResolve_NonErrorReasonIsInternalAndAlwaysLogged") {
				t.Fatalf("resolve_stack must point at the caller, got %s", out)
			}

			if !strings.Contains(out, "incident_id") {
				t.Fatalf("missing incident id: %s", out)
			}
		}
	}

	logger, buf := newLogger()
	r := respond.New(respond.Config{Logger: logger})

	if w := resolveOne(t, r, async.Go(corruptCache)); w.Status != 500 {
		t.Fatalf("panicking future: status=%d want=500", w.Status)
	}

	out := buf.String()
	if !strings.Contains(out, `\"cache corrupted\"`) || !strings.Contains(out, "panic_stack") {
		t.Fatalf("expected panic value and stack, got %s", out)
	}

	if !strings.Contains(out, "corruptCache") {
		t.Fatalf("panic_stack must point at the panicking function, got %s", out)
	}

	if w := resolveOne(t, r, async.Rejected(nil)); w.Status != 500 {
		t.Fatalf("nil reason: status=%d want=500", w.Status)
	}
}

var errStale = errors.New("stale version")

func TestResolve_VerboseSwitch(t *testing.T) {
	t.Parallel()

	quietLogger, quiet := newLogger()
	loudLogger, loud := newLogger()

	quietR := respond.New(respond.Config{Logger: quietLogger})
	loudR := respond.New(respond.Config{Logger: loudLogger, Verbose: true})

	resolveOne(t, quietR, async.Rejected(errors.New("mystery")))
	resolveOne(t, loudR, async.Rejected(errors.New("mystery")))

	if out := quiet.String(); !strings.Contains(out, `"level":"WARN"`) ||
		!strings.Contains(out, `"type":"UnknownError"`) || !strings.Contains(out, "mystery") {
		t.Fatalf("unknown errors must always be logged, got %s", out)
	}

	if out := quiet.String(); strings.Contains(out, "resolve_stack") || strings.Contains(out, "incident_id") {
		t.Fatalf("stacks and incident ids are verbose-only, got %s", out)
	}

	quiet.Reset()
	resolveOne(t, respond.New(respond.Config{
		Logger:      quietLogger,
		Translators: []translate.Translator{translate.Is(errStale, apiError.ValidationKind, "stale")},
	}), async.Rejected(errStale))

	if out := quiet.String(); !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"code":400`) {
		t.Fatalf("translated errors must always be logged, got %s", out)
	}

	if out := loud.String(); !strings.Contains(out, "respond: unknown error") || !strings.Contains(out, "resolve_stack") {
		t.Fatalf("verbose responder must log unknown errors with call site, got %s", out)
	}

	loud.Reset()
	resolveOne(t, loudR, async.Rejected(apiError.Validation("expected")))

	if strings.Contains(loud.String(), "resolve_stack") {
		t.Fatalf("errors without diagnostics must not be logged verbosely: %s", loud.String())
	}

	loud.Reset()
	resolveOne(t, loudR, async.Rejected(apiError.InvalidRequest("malformed")))

	if out := loud.String(); !strings.Contains(out, "error_stack") || !strings.Contains(out, "application error") {
		t.Fatalf("diagnostic kinds must log hook and verbose entry, got %s", out)
	}
}

type canonical = apiError.Error

type panickyLogError struct{ *canonical }

func (panickyLogError) Log(_ context.Context, _ *slog.Logger) { panic("log hook failed") }

func TestResolve_PanickingLogHookStillWrites(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()
	r := respond.New(respond.Config{Logger: logger})

	w := resolveOne(t, r, async.Rejected(panickyLogError{apiError.Forbidden("")}))
	if w.Status != 403 {
		t.Fatalf("status=%d want=403", w.Status)
	}

	if !strings.Contains(buf.String(), "log hook panicked") {
		t.Fatalf("expected warning, got %s", buf.String())
	}
}

func TestResolve_InvalidSinkFailsBeforeAwaiting(t *testing.T) {
	t.Parallel()

	r := respond.New(respond.Config{})
	awaited := false

	pending := async.Func(func() (any, error) { awaited = true; return "x", nil })

	for _, target := range []any{nil, "not a response", (*sink.Recorder)(nil)} {
		err := r.Resolve(target, pending)
		if !errors.Is(err, respond.ErrInvalidSink) {
			t.Fatalf("Resolve(%T) err=%v want ErrInvalidSink", target, err)
		}
	}

	if awaited {
		t.Fatalf("pending must not be awaited without a sink")
	}

	if _, err := r.Attach(42); !errors.Is(err, respond.ErrInvalidSink) {
		t.Fatalf("Attach err=%v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("MustAttach must panic on an invalid sink")
		}
	}()

	r.MustAttach(nil)
}

func TestResolve_WriteErrorIsReturned(t *testing.T) {
	t.Parallel()

	errClosed := errors.New("connection closed")
	rec := sink.NewRecorder(errClosed)

	err := respond.New(respond.Config{}).Resolve(rec, "x")
	if !errors.Is(err, errClosed) {
		t.Fatalf("err=%v want %v", err, errClosed)
	}

	if rec.Count() != 1 {
		t.Fatalf("write must not be retried, got %d writes", rec.Count())
	}
}

type finalized struct {
	async.Pending
	done int
}

func (f *finalized) Done() { f.done++ }

func TestResolve_AsyncAdapterAndFinalizer(t *testing.T) {
	t.Parallel()

	var wrapped *finalized

	r := respond.New(respond.Config{AsyncAdapter: func(v any) async.Pending {
		wrapped = &finalized{Pending: async.Normalize(v)}
		return wrapped
	}})

	w := resolveOne(t, r, "value")
	if w.Body != "value" || wrapped.done != 1 {
		t.Fatalf("body=%#v done=%d", w.Body, wrapped.done)
	}

	nilAdapter := respond.New(respond.Config{AsyncAdapter: func(any) async.Pending { return nil }})
	if w := resolveOne(t, nilAdapter, "ignored"); w.Status != 404 {
		t.Fatalf("nil pending: status=%d want=404", w.Status)
	}
}

var errMalformed = apiError.InvalidRequest("malformed payload")

func TestResolve_SentinelIsLoggedOnEveryResolution(t *testing.T) {
	t.Parallel()

	logger, buf := newLogger()
	r := respond.New(respond.Config{Logger: logger})

	for i := 1; i <= 2; i++ {
		resolveOne(t, r, async.Rejected(errMalformed))

		if n := strings.Count(buf.String(), `"msg":"application error"`); n != i {
			t.Fatalf("after %d resolutions got %d log records: %s", i, n, buf.String())
		}
	}
}

func TestResolve_FutureIsAwaitedBeforeDone(t *testing.T) {
	t.Parallel()

	f := async.Go(
		func() (any, error) { return nil, errors.New("handled") },
		async.OnUnhandled(func(any) { t.Errorf("resolved future must not be reported as unhandled") }),
	)

	if w := resolveOne(t, respond.New(respond.Config{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}), f); w.Status != 500 {
		t.Fatalf("status=%d want=500", w.Status)
	}
}

func TestResolve_FutureAndChannel(t *testing.T) {
	t.Parallel()

	r := respond.New(respond.Config{})

	f := async.Go(func() (any, error) { return map[string]int{"n": 1}, nil })
	if w := resolveOne(t, r, f); w.Status != 200 || bodyJSON(t, w.Body) != `{"n":1}` {
		t.Fatalf("future: status=%d body=%#v", w.Status, w.Body)
	}

	ch := make(chan async.Settlement, 1)
	ch <- async.Failure(apiError.Validation("from channel"))

	if w := resolveOne(t, r, ch); w.Status != 400 {
		t.Fatalf("channel: status=%d want=400", w.Status)
	}
}

func TestAttach_BindsSink(t *testing.T) {
	t.Parallel()

	rec := sink.NewRecorder(nil)

	fn, err := respond.New(respond.Config{}).Attach(rec)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	if err := fn(async.Resolved("created"), 201); err != nil {
		t.Fatalf("fn: %v", err)
	}

	if w, _ := rec.Last(); rec.Count() != 1 || w.Status != 201 || w.Body != "created" {
		t.Fatalf("writes=%+v", rec.Writes())
	}
}

func TestResolve_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := respond.New(respond.Config{Registerer: reg})
	// a second Responder on the same registry shares the collectors
	r2 := respond.New(respond.Config{Registerer: reg})

	resolveOne(t, r, "ok")
	resolveOne(t, r2, "ok")
	resolveOne(t, r, nil)
	resolveOne(t, r, async.Rejected(apiError.Validation("")))
	resolveOne(t, r, async.Rejected("boom"))

	expected := `
# HELP scg_respond_resolutions_total Responses written, by outcome, error type and status code.
# TYPE scg_respond_resolutions_total counter
scg_respond_resolutions_total{code="200",outcome="success",type="none"} 2
scg_respond_resolutions_total{code="400",outcome="canonical",type="ValidationError"} 1
scg_respond_resolutions_total{code="404",outcome="not_found",type="NotFound"} 1
scg_respond_resolutions_total{code="500",outcome="internal",type="InternalServerError"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "scg_respond_resolutions_total"); err != nil {
		t.Fatalf("metrics mismatch: %v", err)
	}

	n, err := testutil.GatherAndCount(reg, "scg_respond_settle_seconds")
	if err != nil || n != 1 {
		t.Fatalf("settle histogram count=%d err=%v want=1", n, err)
	}
}
