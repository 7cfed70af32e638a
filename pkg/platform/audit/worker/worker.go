// Package worker drains the audit trail into durable storage and the
// compliance stream.
package worker

import (
	"context"
	"log/slog"

	audit "coverscope/pkg/platform/audit"
)

// Publisher forwards events to an external stream. Optional; a nil
// publisher means store-only persistence.
type Publisher interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Worker consumes audit events from the trail and persists them. Store
// failures are counted and logged, never propagated back to the
// comparison path.
type Worker struct {
	store     audit.Store
	publisher Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
	metrics   *audit.Metrics
}

func NewWorker(store audit.Store, publisher Publisher, inbox <-chan audit.Event, logger *slog.Logger, m *audit.Metrics) *Worker {
	return &Worker{
		store:     store,
		publisher: publisher,
		inbox:     inbox,
		logger:    logger,
		metrics:   m,
	}
}

// Run drains the inbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.metrics.IncrementPersistFailure()
		w.logger.ErrorContext(ctx, "audit event persistence failed",
			"action", event.Action,
			"coverage_code", event.CoverageCode,
			"error", err,
		)
	}
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.metrics.IncrementPublishFailure()
		w.logger.ErrorContext(ctx, "audit event publish failed",
			"action", event.Action,
			"coverage_code", event.CoverageCode,
			"error", err,
		)
	}
}
