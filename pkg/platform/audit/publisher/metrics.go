package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit appends.
type Metrics struct {
	Written          *prometheus.CounterVec
	AppendFailures   prometheus.Counter
	FallbackFailures prometheus.Counter
	AppendDuration   prometheus.Histogram
}

// NewMetrics registers audit metrics on reg. Tests pass prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Written: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "navbat_audit_records_written_total",
			Help: "Audit records accepted by the primary sink",
		}, []string{"action", "status"}),
		AppendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "navbat_audit_append_failures_total",
			Help: "Audit records the primary sink rejected",
		}),
		FallbackFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "navbat_audit_fallback_failures_total",
			Help: "Audit records lost by both the primary and the fallback sink",
		}),
		AppendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "navbat_audit_append_duration_seconds",
			Help:    "Latency of primary sink appends",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeWritten(action, status string, seconds float64) {
	if m == nil {
		return
	}
	m.Written.WithLabelValues(action, status).Inc()
	m.AppendDuration.Observe(seconds)
}

func (m *Metrics) incAppendFailures() {
	if m == nil {
		return
	}
	m.AppendFailures.Inc()
}

func (m *Metrics) incFallbackFailures() {
	if m == nil {
		return
	}
	m.FallbackFailures.Inc()
}
