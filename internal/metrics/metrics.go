package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for callable invocations.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeBadRequest      = "bad_request"
	OutcomeInternal        = "internal"
	OutcomeConfiguration   = "configuration"
)

// Metrics owns a private registry so tests and multiple servers don't collide
// on the global one.
type Metrics struct {
	reg *prometheus.Registry

	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Calls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitcoach_calls_total",
				Help: "Total number of callable invocations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitcoach_call_duration_seconds",
				Help:    "Duration of callable invocations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"operation"},
		),
	}
}

// Observe records one finished invocation.
func (m *Metrics) Observe(op, outcome string, d time.Duration) {
	m.Calls.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
