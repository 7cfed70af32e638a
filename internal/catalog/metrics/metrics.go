// Package metrics provides observability for the catalog module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the resolver's Prometheus instruments.
type Metrics struct {
	ResolveOutcome *prometheus.CounterVec
	CacheLookup    *prometheus.CounterVec
	ResolveLatency prometheus.Histogram
}

// New creates and registers the catalog metrics.
func New() *Metrics {
	return &Metrics{
		ResolveOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_resolve_outcomes_total",
			Help: "Canonical resolution outcomes by scope or failure",
		}, []string{"outcome"}), // outcome: "global", "insurer", "not_found"

		CacheLookup: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_resolve_cache_lookups_total",
			Help: "Resolve cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss"

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverscope_resolve_duration_seconds",
			Help:    "Duration of canonical resolution including snapshot load",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}

// IncrementResolve records a resolution outcome.
func (m *Metrics) IncrementResolve(outcome string) {
	if m != nil {
		m.ResolveOutcome.WithLabelValues(outcome).Inc()
	}
}

// IncrementCache records a cache lookup result.
func (m *Metrics) IncrementCache(result string) {
	if m != nil {
		m.CacheLookup.WithLabelValues(result).Inc()
	}
}

// ObserveResolveLatency records one resolution duration.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}
