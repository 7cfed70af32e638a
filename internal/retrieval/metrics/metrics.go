// Package metrics provides observability for the retrieval module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"coverscope/pkg/domain"
)

// Metrics holds the retriever's Prometheus instruments.
type Metrics struct {
	Candidates      *prometheus.CounterVec
	RetrieveLatency prometheus.Histogram
}

// New creates and registers the retrieval metrics.
func New() *Metrics {
	return &Metrics{
		Candidates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_retrieval_candidates_total",
			Help: "Evaluated evidence candidates by purpose and outcome reason",
		}, []string{"purpose", "reason"}),

		RetrieveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coverscope_retrieval_duration_seconds",
			Help:    "Duration of one two-pass retrieval call",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCandidate records one evaluated candidate outcome.
func (m *Metrics) IncrementCandidate(purpose domain.Purpose, reason string) {
	if m != nil {
		m.Candidates.WithLabelValues(purpose.String(), reason).Inc()
	}
}

// ObserveRetrieveLatency records one retrieval duration.
func (m *Metrics) ObserveRetrieveLatency(d time.Duration) {
	if m != nil {
		m.RetrieveLatency.Observe(d.Seconds())
	}
}
