// Package metrics provides observability for the condition module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the condition engine's Prometheus instruments.
type Metrics struct {
	Compares      *prometheus.CounterVec
	InsurerStatus *prometheus.CounterVec
}

// New creates and registers the condition metrics.
func New() *Metrics {
	return &Metrics{
		Compares: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_condition_compares_total",
			Help: "Condition compare calls by outcome",
		}, []string{"outcome"}),

		InsurerStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_condition_insurer_results_total",
			Help: "Per-insurer condition results by status and reason",
		}, []string{"status", "reason"}),
	}
}

// IncrementCompare records one condition compare call outcome.
func (m *Metrics) IncrementCompare(outcome string) {
	if m != nil {
		m.Compares.WithLabelValues(outcome).Inc()
	}
}

// IncrementInsurerStatus records one per-insurer result.
func (m *Metrics) IncrementInsurerStatus(status, reason string) {
	if m != nil {
		m.InsurerStatus.WithLabelValues(status, reason).Inc()
	}
}
