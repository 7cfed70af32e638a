package audit

import (
	"context"
	"log/slog"
	"time"
)

// Trail is the emission side of the audit pipeline: a buffered channel
// drained by a Worker. Emit never blocks the compare path; when the
// buffer is full the event is dropped and counted, because a slow audit
// store must not stall comparisons.
type Trail struct {
	inbox   chan Event
	logger  *slog.Logger
	metrics *Metrics
}

func NewTrail(buffer int, logger *slog.Logger, m *Metrics) *Trail {
	if buffer <= 0 {
		buffer = 256
	}
	return &Trail{
		inbox:   make(chan Event, buffer),
		logger:  logger,
		metrics: m,
	}
}

// Emit queues an event for persistence. Timestamp and category are
// filled in when absent.
func (t *Trail) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = CategoryFor(event.Action)
	}

	select {
	case t.inbox <- event:
		t.metrics.IncrementEmitted(event.Action)
	default:
		t.metrics.IncrementDropped(event.Action)
		t.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"coverage_code", event.CoverageCode,
			"insurer", event.Insurer,
		)
	}
}

// Inbox exposes the receive side for the Worker.
func (t *Trail) Inbox() <-chan Event { return t.inbox }
