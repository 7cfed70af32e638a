package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the audit pipeline's Prometheus instruments.
type Metrics struct {
	Emitted         *prometheus.CounterVec
	Dropped         *prometheus.CounterVec
	PersistFailures prometheus.Counter
	PublishFailures prometheus.Counter
}

// New creates and registers the audit metrics.
func New() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_audit_events_emitted_total",
			Help: "Audit events queued for persistence, by action",
		}, []string{"action"}),

		Dropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coverscope_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full, by action",
		}, []string{"action"}),

		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coverscope_audit_persist_failures_total",
			Help: "Audit store append failures",
		}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coverscope_audit_publish_failures_total",
			Help: "Audit Kafka publish failures",
		}),
	}
}

func (m *Metrics) IncrementEmitted(action string) {
	if m != nil {
		m.Emitted.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncrementDropped(action string) {
	if m != nil {
		m.Dropped.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncrementPersistFailure() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
