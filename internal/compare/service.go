package compare

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"coverscope/internal/binding"
	"coverscope/internal/compare/metrics"
	"coverscope/internal/retrieval"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
	audit "coverscope/pkg/platform/audit"
	"coverscope/pkg/requestcontext"
)

var tracer = otel.Tracer("coverscope/internal/compare")

// Verifier re-validates a pre-resolved canonical code against the
// canonical table and returns its official name.
type Verifier interface {
	Verify(ctx context.Context, code domain.CoverageCode) (string, error)
}

// Retriever locates and ranks candidate evidence for one
// (coverage, insurer) pair.
type Retriever interface {
	Retrieve(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) (*retrieval.Result, error)
}

// AuditTrail receives one event per insurer decision.
type AuditTrail interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the comparison aggregator.
type Service struct {
	verifier  Verifier
	retriever Retriever
	trail     AuditTrail
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// retrievalTimeout bounds each insurer's evidence fetch. Exceeding
	// it resolves that insurer to unknown without touching siblings.
	retrievalTimeout time.Duration
}

func NewService(verifier Verifier, retriever Retriever, trail AuditTrail, logger *slog.Logger, m *metrics.Metrics, retrievalTimeout time.Duration) *Service {
	if retrievalTimeout <= 0 {
		retrievalTimeout = 5 * time.Second
	}
	return &Service{
		verifier:         verifier,
		retriever:        retriever,
		trail:            trail,
		logger:           logger,
		metrics:          m,
		retrievalTimeout: retrievalTimeout,
	}
}

// Compare verifies the canonical code, fans out one isolated binder run
// per insurer, and merges the outcomes. The results key set equals the
// requested insurer set exactly.
func (s *Service) Compare(ctx context.Context, code domain.CoverageCode, insurers []domain.Insurer) (*Comparison, error) {
	ctx, span := tracer.Start(ctx, "compare.Compare")
	defer span.End()
	span.SetAttributes(
		attribute.String("coverage_code", code.String()),
		attribute.Int("insurer_count", len(insurers)),
	)
	start := time.Now()

	if err := validateInsurers(insurers); err != nil {
		return nil, err
	}

	// Hard gate: verification failure aborts before any per-insurer
	// work, so an unresolved code never leaks partial results.
	name, err := s.verifier.Verify(ctx, code)
	if err != nil {
		s.metrics.IncrementCompare("canonical_not_found")
		return nil, err
	}

	outcomes := make([]InsurerResult, len(insurers))
	bindings := make([]*binding.BindingResult, len(insurers))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, insurer := range insurers {
		g.Go(func() error {
			outcomes[i], bindings[i] = s.compareOne(groupCtx, code, insurer)
			// Per-insurer failures are absorbed into statuses; a
			// returned error would cancel the siblings.
			return nil
		})
	}
	// Only ever returns nil, but the errgroup still provides the wait.
	_ = g.Wait()

	comparison := &Comparison{
		CoverageCode: code,
		CoverageName: name,
		Insurers:     append([]domain.Insurer{}, insurers...),
		Results:      make(map[domain.Insurer]InsurerResult, len(insurers)),
		Bindings:     make(map[domain.Insurer]*binding.BindingResult, len(insurers)),
	}
	for i, insurer := range insurers {
		comparison.Results[insurer] = outcomes[i]
		if bindings[i] != nil {
			comparison.Bindings[insurer] = bindings[i]
		}
	}
	comparison.Summary = summarize(comparison.Results)

	s.audit(ctx, comparison)
	s.metrics.IncrementCompare("completed")
	s.metrics.ObserveCompareLatency(time.Since(start))
	s.logger.InfoContext(ctx, "comparison complete",
		"coverage_code", code,
		"insurers", len(insurers),
		"success", comparison.Summary.SuccessCount,
		"not_covered", comparison.Summary.NotCoveredCount,
		"unknown", comparison.Summary.UnknownCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return comparison, nil
}

func validateInsurers(insurers []domain.Insurer) error {
	if len(insurers) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "insurer set is required")
	}
	seen := make(map[domain.Insurer]bool, len(insurers))
	for _, ins := range insurers {
		if _, err := domain.ParseInsurer(ins.String()); err != nil {
			return err
		}
		if seen[ins] {
			return dErrors.New(dErrors.CodeInvalidInput, "duplicate insurer: "+ins.String())
		}
		seen[ins] = true
	}
	return nil
}

// compareOne is one fully isolated per-insurer run: its own timeout,
// its own retrieval, its own binder. It never returns an error; every
// failure becomes a status.
func (s *Service) compareOne(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) (InsurerResult, *binding.BindingResult) {
	ctx, cancel := context.WithTimeout(ctx, s.retrievalTimeout)
	defer cancel()

	evidence, err := s.retriever.Retrieve(ctx, code, insurer)
	if err != nil {
		reason := ReasonRetrievalFailed
		if dErrors.HasCode(err, dErrors.CodeTimeout) || ctx.Err() != nil {
			reason = ReasonRetrievalTimeout
		}
		s.metrics.IncrementInsurerStatus(string(StatusUnknown), string(reason))
		s.logger.WarnContext(ctx, "per-insurer retrieval failed",
			"coverage_code", code,
			"insurer", insurer,
			"reason", reason,
			"error", err,
		)
		return Unknown{Reason: reason}, nil
	}

	bound := binding.Bind(code, insurer, evidence)
	result := resultFromBinding(bound)

	reason := ""
	switch r := result.(type) {
	case NotCovered:
		reason = string(r.Reason)
	case Unknown:
		reason = string(r.Reason)
	}
	s.metrics.IncrementInsurerStatus(string(result.Status()), reason)
	return result, bound
}

// audit emits one compliance event per insurer decision.
func (s *Service) audit(ctx context.Context, c *Comparison) {
	if s.trail == nil {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	clientIP := requestcontext.ClientIP(ctx)
	userAgent := requestcontext.UserAgent(ctx)
	clientName := requestcontext.ClientName(ctx)

	for _, insurer := range c.Insurers {
		result := c.Results[insurer]
		event := audit.Event{
			Action:       audit.ActionCompareDecision,
			CoverageCode: c.CoverageCode,
			Insurer:      insurer,
			Status:       string(result.Status()),
			RequestID:    requestID,
			ClientIP:     clientIP,
			UserAgent:    userAgent,
			ClientName:   clientName,
		}
		if b, ok := c.Bindings[insurer]; ok {
			event.Decision = string(b.Decision)
			for _, rule := range b.RuleTrace {
				event.RuleTrace = append(event.RuleTrace, string(rule))
			}
			for _, id := range b.BoundEvidence {
				event.BoundEvidence = append(event.BoundEvidence, id.String())
			}
		}
		switch r := result.(type) {
		case NotCovered:
			event.Reason = string(r.Reason)
		case Unknown:
			event.Reason = string(r.Reason)
		case Success:
		}
		s.trail.Emit(ctx, event)
	}
}
