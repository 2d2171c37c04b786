package respond

import (
	"context"
	"log/slog"

	"github.com/next-trace/scg-respond/async"
	apiError "github.com/next-trace/scg-respond/error"
	"github.com/next-trace/scg-respond/sink"
	"github.com/next-trace/scg-respond/translate"
)

// std is the Responder behind the package-level functions.
//
// The setters below write to it without synchronization. Call them during
// process start-up only, before the first request is resolved.
var std = New(Config{})

// Default returns the package-level Responder.
func Default() *Responder { return std }

// SetDefault replaces the package-level Responder. Start-up only.
func SetDefault(r *Responder) {
	if r != nil {
		std = r
	}
}

// SetVerbose turns on verbose error diagnostics. Start-up only.
func SetVerbose() { std.verbose = true }

// SetLegacyFormat switches error bodies to the legacy shape. Start-up only.
func SetLegacyFormat() { std.legacy = true }

// SetLogger replaces the diagnostics logger. Start-up only.
func SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	std.logger = logger
	std.chain.SetLogger(logger)
}

// SetAsyncAdapter replaces the function that normalizes pending values.
// A nil adapter restores async.Normalize. Start-up only.
func SetAsyncAdapter(adapt async.Adapter) {
	if adapt == nil {
		adapt = async.Normalize
	}

	std.adapt = adapt
}

// RegisterTranslator appends t to the default translator chain. Start-up only.
func RegisterTranslator(t translate.Translator) { std.RegisterTranslator(t) }

// Resolve resolves pending onto target with the default Responder.
func Resolve(target any, pending any, successStatus ...int) error {
	s, err := sink.Adapt(target)
	if err != nil {
		return err
	}

	return std.resolve(context.Background(), s, pending, successCode(successStatus), apiError.Callers(1))
}

// Attach binds the default Responder to target.
func Attach(target any) (Func, error) { return std.Attach(target) }
