package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Metrics provides observability for administrative actions.
type Metrics struct {
	Actions        *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "navbat_admin_actions_total",
			Help: "Administrative actions by action tag and outcome",
		}, []string{"action", "outcome"}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navbat_admin_action_duration_seconds",
			Help:    "Duration of administrative actions including the audit write",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"action"}),
	}
}

func (m *Metrics) Observe(action, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}
