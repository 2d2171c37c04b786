package respond

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of scg_respond_resolutions_total.
const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeCanonical  = "canonical"
	OutcomeTranslated = "translated"
	OutcomeUnknown    = "unknown"
	OutcomeInternal   = "internal"
)

type metrics struct {
	resolutions *prometheus.CounterVec
	settle      prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	m := &metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scg",
			Subsystem: "respond",
			Name:      "resolutions_total",
			Help:      "Responses written, by outcome, error type and status code.",
		}, []string{"outcome", "type", "code"}),
		settle: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scg",
			Subsystem: "respond",
			Name:      "settle_seconds",
			Help:      "Time spent awaiting the pending computation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.resolutions = register(reg, m.resolutions)
	m.settle = register(reg, m.settle)

	return m
}

// register reuses an identical collector that is already registered, so several
// Responders can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}

		panic(err)
	}

	return c
}

func (m *metrics) observeSettle(d time.Duration) {
	if m == nil {
		return
	}

	m.settle.Observe(d.Seconds())
}

func (m *metrics) count(outcome, typeTag string, status int) {
	if m == nil {
		return
	}

	if typeTag == "" {
		typeTag = "none"
	}

	m.resolutions.WithLabelValues(outcome, typeTag, strconv.Itoa(status)).Inc()
}
