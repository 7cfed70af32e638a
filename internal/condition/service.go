package condition

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"coverscope/internal/condition/metrics"
	"coverscope/internal/retrieval"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
	audit "coverscope/pkg/platform/audit"
	"coverscope/pkg/requestcontext"
)

var tracer = otel.Tracer("coverscope/internal/condition")

// Verifier re-validates a pre-resolved canonical code and returns its
// official name.
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

// grant/deny markers detect a fragment asserting coverage and exclusion
// at once. Such a fragment is withheld, not interpreted.
var grantMarkers = []string{"지급합니다", "보장합니다", "지급사유"}

var denyMarkers = []string{"보장하지 않", "지급하지 않", "면책"}

// Service is the condition comparison engine.
type Service struct {
	verifier  Verifier
	retriever Retriever
	trail     AuditTrail
	logger    *slog.Logger
	metrics   *metrics.Metrics

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

// Compare verifies the canonical code, fans out one isolated run per
// insurer, and merges the outcomes. An empty aspect list means all
// aspects.
func (s *Service) Compare(ctx context.Context, code domain.CoverageCode, insurers []domain.Insurer, aspects []Aspect) (*ConditionComparison, error) {
	ctx, span := tracer.Start(ctx, "condition.Compare")
	defer span.End()
	span.SetAttributes(
		attribute.String("coverage_code", code.String()),
		attribute.Int("insurer_count", len(insurers)),
	)
	start := time.Now()

	if err := validateInsurers(insurers); err != nil {
		return nil, err
	}
	if len(aspects) == 0 {
		aspects = Aspects
	}

	// Same hard gate as the amount comparison: verification failure
	// aborts before any per-insurer work.
	name, err := s.verifier.Verify(ctx, code)
	if err != nil {
		s.metrics.IncrementCompare("canonical_not_found")
		return nil, err
	}

	outcomes := make([]InsurerConditions, len(insurers))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, insurer := range insurers {
		g.Go(func() error {
			outcomes[i] = s.compareOne(groupCtx, code, insurer, aspects)
			return nil
		})
	}
	_ = g.Wait()

	comparison := &ConditionComparison{
		CoverageCode: code,
		CoverageName: name,
		Aspects:      append([]Aspect{}, aspects...),
		Insurers:     append([]domain.Insurer{}, insurers...),
		Results:      make(map[domain.Insurer]InsurerConditions, len(insurers)),
	}
	for i, insurer := range insurers {
		comparison.Results[insurer] = outcomes[i]
	}

	s.audit(ctx, comparison)
	s.metrics.IncrementCompare("completed")
	s.logger.InfoContext(ctx, "condition comparison complete",
		"coverage_code", code,
		"insurers", len(insurers),
		"aspects", len(aspects),
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

// compareOne is one fully isolated per-insurer run. It never returns an
// error; every failure becomes a status.
func (s *Service) compareOne(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer, aspects []Aspect) InsurerConditions {
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
		return Unknown{Reason: reason}
	}

	result := s.bindAspects(evidence, aspects)
	reason := ""
	switch r := result.(type) {
	case NotCovered:
		reason = string(r.Reason)
	case Unknown:
		reason = string(r.Reason)
	}
	s.metrics.IncrementInsurerStatus(string(result.Status()), reason)
	return result
}

// bindAspects selects, per requested aspect, the strongest-ranked
// authoritative fragment carrying that aspect's markers. Fragments from
// non-authoritative documents never produce findings.
func (s *Service) bindAspects(evidence *retrieval.Result, aspects []Aspect) InsurerConditions {
	candidates := make([]retrieval.Evidence, 0, len(evidence.Conditions)+len(evidence.Definitions))
	candidates = append(candidates, evidence.Definitions...)
	candidates = append(candidates, evidence.Conditions...)

	var findings []Finding
	ambiguous := false
	for _, aspect := range aspects {
		for _, c := range candidates {
			if !c.DocType.Authoritative() {
				continue
			}
			if !containsAny(c.Excerpt, aspectMarkers[aspect]) {
				continue
			}
			if containsAny(c.Excerpt, grantMarkers) && containsAny(c.Excerpt, denyMarkers) {
				ambiguous = true
				continue
			}
			findings = append(findings, Finding{
				Aspect: aspect,
				Text:   strings.TrimSpace(c.Excerpt),
				Evidence: EvidenceRef{
					EvidenceID: c.ID,
					DocType:    c.DocType,
					SourceDoc:  c.SourceDoc,
					Page:       c.Page,
				},
			})
			break
		}
	}

	if len(findings) > 0 {
		return Covered{Findings: findings}
	}
	if evidence.ExclusionStated {
		return NotCovered{Reason: ReasonCoverageNotFound}
	}
	if ambiguous {
		return Unknown{Reason: ReasonAmbiguousDefinition}
	}
	return Unknown{Reason: ReasonNoAuthoritativeDefinition}
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// audit emits one compliance event per insurer decision.
func (s *Service) audit(ctx context.Context, c *ConditionComparison) {
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
			Action:       audit.ActionConditionDecision,
			CoverageCode: c.CoverageCode,
			Insurer:      insurer,
			Status:       string(result.Status()),
			RequestID:    requestID,
			ClientIP:     clientIP,
			UserAgent:    userAgent,
			ClientName:   clientName,
		}
		switch r := result.(type) {
		case Covered:
			for _, f := range r.Findings {
				event.BoundEvidence = append(event.BoundEvidence, f.Evidence.EvidenceID.String())
			}
		case NotCovered:
			event.Reason = string(r.Reason)
		case Unknown:
			event.Reason = string(r.Reason)
		}
		s.trail.Emit(ctx, event)
	}
}
