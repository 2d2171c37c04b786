package respond

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/next-trace/scg-respond/async"
	"github.com/next-trace/scg-respond/translate"
)

// Config is read once by New. Changing it afterwards has no effect on the
// Responder.
type Config struct {
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Verbose logs every error resolution with the error's stack and the stack
	// of the Resolve call. Non-error failure reasons are logged regardless.
	Verbose bool
	// LegacyFormat writes error bodies as {"type","data":[message, detail],"code"}.
	LegacyFormat bool
	// AsyncAdapter normalizes the pending argument of Resolve. Defaults to async.Normalize.
	AsyncAdapter async.Adapter
	// Translators are consulted in order for errors that are neither canonical
	// nor self-describing.
	Translators []translate.Translator
	// Registerer receives the resolution metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}
