// Package metrics provides observability for the compare module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the aggregator's Prometheus instruments.
type Metrics struct {
	Compares       *prometheus.CounterVec
	InsurerStatus  *prometheus.CounterVec
	CompareLatency prometheus.Histogram
}

// New creates and registers the compare metrics.
func New() *Metrics {
	return &Metrics{
		Compares: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_compares_total",
			Help: "Compare calls by outcome",
		}, []string{"outcome"}), // outcome: "completed", "canonical_not_found"

		InsurerStatus: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_compare_insurer_results_total",
			Help: "Per-insurer comparison results by status and reason",
		}, []string{"status", "reason"}),

		CompareLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverscope_compare_duration_seconds",
			Help:    "Duration of one full compare call including fan-out",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementCompare records one compare call outcome.
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

// ObserveCompareLatency records one compare duration.
func (m *Metrics) ObserveCompareLatency(d time.Duration) {
	if m != nil {
		m.CompareLatency.Observe(d.Seconds())
	}
}
