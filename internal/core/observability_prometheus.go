package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports generation outcome counters and search
// round-trip latency through a prometheus registry. It fulfills
// MetricsRecorder for deployments scraped by an external collector.
type PrometheusMetricsRecorder struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dircore",
			Subsystem: "vattr",
			Name:      "generate_total",
			Help:      "Virtual attribute generation invocations by provider and outcome.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dircore",
			Subsystem: "vattr",
			Name:      "generate_duration_seconds",
			Help:      "Virtual attribute generation latency by provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if err := reg.Register(rec.outcomes); err != nil {
		return nil, err
	}
	if err := reg.Register(rec.duration); err != nil {
		return nil, err
	}
	return rec, nil
}

// OutcomeCounter returns the counter for a provider/outcome pair, creating
// it on first use. Exposed for assertions in tests.
func (r *PrometheusMetricsRecorder) OutcomeCounter(provider, outcome string) prometheus.Counter {
	return r.outcomes.WithLabelValues(provider, outcome)
}

// Observe records a generation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, provider, outcome string, duration time.Duration) {
	if provider == "" {
		return
	}
	r.outcomes.WithLabelValues(provider, outcome).Inc()
	r.duration.WithLabelValues(provider).Observe(duration.Seconds())
}
