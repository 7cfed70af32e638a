// Package retrieval locates candidate evidence fragments for one
// (coverage, insurer) pair and ranks them. It is pass-structured: pass 1
// finds amount-bearing fragments in authoritative documents, pass 2
// completes context with condition and definition fragments. Every
// evaluated candidate appears in the trace with the reason it was
// accepted or rejected; the trace is audit input, not optional logging.
package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	evmodels "coverscope/internal/evidence/models"
	"coverscope/internal/retrieval/metrics"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

var tracer = otel.Tracer("coverscope/internal/retrieval")

// Evidence is one ranked candidate fragment. Amount candidates carry
// the extracted literal and its parsed value; other purposes leave them
// zero.
type Evidence struct {
	ID           domain.EvidenceID
	CoverageCode domain.CoverageCode
	Insurer      domain.Insurer
	DocType      domain.DocType
	SourceDoc    string
	Page         int
	Excerpt      string
	Purpose      domain.Purpose
	Pass         int
	RankScore    int

	AmountRaw   string
	AmountValue int64
}

// Candidate trace reasons. Stable identifiers, never prose.
const (
	ReasonSelected   = "selected"
	ReasonRanked     = "ranked"
	DropNoContent    = "no_content"
	DropReference    = "reference_only"
	DropNoAmount     = "no_amount"
	DropSuperseded   = "superseded"
	DropNoCondition  = "no_condition_marker"
	DropNoDefinition = "no_definition_marker"
)

// CandidateOutcome records one evaluated candidate and its fate.
type CandidateOutcome struct {
	EvidenceID domain.EvidenceID `json:"evidence_id"`
	SourceDoc  string            `json:"source_doc"`
	Page       int               `json:"page"`
	Purpose    domain.Purpose    `json:"purpose"`
	Accepted   bool              `json:"accepted"`
	Reason     string            `json:"reason"`
}

// Trace lists every evaluated candidate across both passes.
type Trace struct {
	Candidates []CandidateOutcome `json:"candidates"`
}

func (t *Trace) record(doc evmodels.Document, purpose domain.Purpose, accepted bool, reason string) {
	t.Candidates = append(t.Candidates, CandidateOutcome{
		EvidenceID: doc.ID,
		SourceDoc:  doc.SourceDoc,
		Page:       doc.Page,
		Purpose:    purpose,
		Accepted:   accepted,
		Reason:     reason,
	})
}

// Result is the retriever's output for one (coverage, insurer) pair.
// Candidate lists are ranked strongest-first; the binder consumes the
// order as-is and never re-ranks.
type Result struct {
	Amounts     []Evidence
	Conditions  []Evidence
	Definitions []Evidence

	// ExclusionStated is true when an authoritative document carries an
	// affirmative exclusion statement for this coverage.
	ExclusionStated bool

	Trace Trace
}

// DocumentSource is the read-only corpus the retriever scans.
type DocumentSource interface {
	ListByCoverage(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) ([]evmodels.Document, error)
}

// Retriever runs the two-pass scan. It holds no per-call state.
type Retriever struct {
	source  DocumentSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRetriever(source DocumentSource, logger *slog.Logger, m *metrics.Metrics) *Retriever {
	return &Retriever{source: source, logger: logger, metrics: m}
}

// Retrieve scans the corpus for one (coverage, insurer) pair.
func (r *Retriever) Retrieve(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) (*Result, error) {
	ctx, span := tracer.Start(ctx, "retrieval.Retrieve")
	defer span.End()
	span.SetAttributes(
		attribute.String("coverage_code", code.String()),
		attribute.String("insurer", insurer.String()),
	)
	start := time.Now()

	docs, err := r.source.ListByCoverage(ctx, code, insurer)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(dErrors.CodeTimeout, "evidence retrieval timed out", err)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "evidence retrieval failed", err)
	}

	result := &Result{}
	r.passOne(docs, code, insurer, result)
	r.passTwo(docs, code, insurer, result)

	for _, d := range docs {
		if d.DocType.Authoritative() && d.ExclusionStatement {
			result.ExclusionStated = true
			break
		}
	}

	r.metrics.ObserveRetrieveLatency(time.Since(start))
	r.logger.DebugContext(ctx, "retrieval complete",
		"coverage_code", code,
		"insurer", insurer,
		"candidates", len(result.Trace.Candidates),
		"amount_candidates", len(result.Amounts),
		"exclusion_stated", result.ExclusionStated,
	)
	return result, nil
}

// passOne finds amount-bearing fragments in authoritative documents.
// The strongest candidate is marked selected; every other accepted
// candidate stays in the ranked list as superseded so the binder can
// detect ties.
func (r *Retriever) passOne(docs []evmodels.Document, code domain.CoverageCode, insurer domain.Insurer, result *Result) {
	var candidates []Evidence
	var accepted []evmodels.Document

	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			result.Trace.record(doc, domain.PurposeAmount, false, DropNoContent)
			r.metrics.IncrementCandidate(domain.PurposeAmount, DropNoContent)
			continue
		}
		if !doc.DocType.Authoritative() {
			result.Trace.record(doc, domain.PurposeAmount, false, DropReference)
			r.metrics.IncrementCandidate(domain.PurposeAmount, DropReference)
			continue
		}
		raw, value, ok := ExtractAmount(doc.Text)
		if !ok {
			result.Trace.record(doc, domain.PurposeAmount, false, DropNoAmount)
			r.metrics.IncrementCandidate(domain.PurposeAmount, DropNoAmount)
			continue
		}
		candidates = append(candidates, Evidence{
			ID:           doc.ID,
			CoverageCode: code,
			Insurer:      insurer,
			DocType:      doc.DocType,
			SourceDoc:    doc.SourceDoc,
			Page:         doc.Page,
			Excerpt:      doc.Text,
			Purpose:      domain.PurposeAmount,
			Pass:         1,
			RankScore:    rankScore(doc),
			AmountRaw:    raw,
			AmountValue:  value,
		})
		accepted = append(accepted, doc)
	}

	rank(candidates)
	result.Amounts = candidates

	// Trace entries follow rank order for accepted candidates.
	for i, c := range candidates {
		reason := DropSuperseded
		acceptedFlag := false
		if i == 0 {
			reason = ReasonSelected
			acceptedFlag = true
		}
		doc := findDoc(accepted, c.ID)
		result.Trace.record(doc, domain.PurposeAmount, acceptedFlag, reason)
		r.metrics.IncrementCandidate(domain.PurposeAmount, reason)
	}
}

func findDoc(docs []evmodels.Document, id domain.EvidenceID) evmodels.Document {
	for _, d := range docs {
		if d.ID == id {
			return d
		}
	}
	return evmodels.Document{ID: id}
}

// conditionMarkers and definitionMarkers gate pass-2 eligibility. A
// fragment without a marker is not condition or definition text.
var conditionMarkers = []string{"단,", "경우에", "지급사유", "보장하지 않", "면책", "제외", "조건"}

var definitionMarkers = []string{"라 함은", "란 함은", "이란", "말합니다", "정의"}

// passTwo completes context: condition and definition fragments,
// scanned independently. Pass-2 evidence never promotes a decision on
// its own; it only attaches to an amount-bound result downstream.
func (r *Retriever) passTwo(docs []evmodels.Document, code domain.CoverageCode, insurer domain.Insurer, result *Result) {
	result.Conditions = r.scanMarked(docs, code, insurer, domain.PurposeCondition, conditionMarkers, DropNoCondition, result)
	result.Definitions = r.scanMarked(docs, code, insurer, domain.PurposeDefinition, definitionMarkers, DropNoDefinition, result)
}

func (r *Retriever) scanMarked(docs []evmodels.Document, code domain.CoverageCode, insurer domain.Insurer, purpose domain.Purpose, markers []string, dropReason string, result *Result) []Evidence {
	var candidates []Evidence
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			result.Trace.record(doc, purpose, false, DropNoContent)
			r.metrics.IncrementCandidate(purpose, DropNoContent)
			continue
		}
		if !doc.DocType.Authoritative() {
			result.Trace.record(doc, purpose, false, DropReference)
			r.metrics.IncrementCandidate(purpose, DropReference)
			continue
		}
		if !containsAny(doc.Text, markers) {
			result.Trace.record(doc, purpose, false, dropReason)
			r.metrics.IncrementCandidate(purpose, dropReason)
			continue
		}
		candidates = append(candidates, Evidence{
			ID:           doc.ID,
			CoverageCode: code,
			Insurer:      insurer,
			DocType:      doc.DocType,
			SourceDoc:    doc.SourceDoc,
			Page:         doc.Page,
			Excerpt:      doc.Text,
			Purpose:      purpose,
			Pass:         2,
			RankScore:    rankScore(doc),
		})
		result.Trace.record(doc, purpose, true, ReasonRanked)
		r.metrics.IncrementCandidate(purpose, ReasonRanked)
	}
	rank(candidates)
	return candidates
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// rank orders candidates by (doc-type priority, ascending page) with
// the stable sort preserving discovery order for remaining ties.
func rank(candidates []Evidence) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DocType.Priority() != candidates[j].DocType.Priority() {
			return candidates[i].DocType.Priority() < candidates[j].DocType.Priority()
		}
		return candidates[i].Page < candidates[j].Page
	})
}

func rankScore(doc evmodels.Document) int {
	return doc.DocType.Priority()*100000 + doc.Page
}
