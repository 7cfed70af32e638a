// Package compare runs the binder once per requested insurer in
// isolation and merges the outcomes. One insurer's failure, timeout, or
// ambiguity is never visible to another's run and never aborts the
// call; only a failed canonical verification does that, before any
// per-insurer work begins.
package compare

import (
	"coverscope/internal/binding"
	"coverscope/pkg/domain"
)

// Status is the externally visible per-insurer outcome.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusNotCovered Status = "not_covered"
	StatusUnknown    Status = "unknown"
)

// Reason is a machine-readable explanation for a non-success outcome.
// The vocabulary is closed.
type Reason string

const (
	ReasonNoAuthoritativeEvidence Reason = "canonical_resolved_but_no_authoritative_evidence"
	ReasonAmbiguousAmount         Reason = "ambiguous_amount"
	ReasonCoverageNotFound        Reason = "coverage_not_found"
	ReasonNoAmountEvidence        Reason = "no_amount_evidence"
	ReasonRetrievalTimeout        Reason = "retrieval_timeout"
	ReasonRetrievalFailed         Reason = "retrieval_failed"
)

// InsurerResult is a sealed union: Success, NotCovered, or Unknown.
// Consumers switch over the concrete types exhaustively; there is no
// catch-all variant.
type InsurerResult interface {
	Status() Status
	insurerResult()
}

// EvidenceRef locates one bound evidence fragment. Excerpt is the
// literal text.
type EvidenceRef struct {
	EvidenceID domain.EvidenceID `json:"evidence_id"`
	DocType    domain.DocType    `json:"doc_type"`
	SourceDoc  string            `json:"source_doc"`
	Page       int               `json:"page"`
	Excerpt    string            `json:"excerpt"`
}

// Success carries a determined amount with its authoritative evidence.
type Success struct {
	AmountRaw   string      `json:"amount_raw"`
	AmountValue int64       `json:"amount_value"`
	Evidence    EvidenceRef `json:"evidence"`

	// ConditionAmbiguous flags a CONDITION_MISMATCH outcome: the amount
	// stands, the condition text is withheld.
	ConditionAmbiguous bool         `json:"condition_ambiguous,omitempty"`
	Condition          *EvidenceRef `json:"condition,omitempty"`
	Definition         *EvidenceRef `json:"definition,omitempty"`

	RuleTrace []binding.Rule `json:"rule_trace"`
}

func (Success) Status() Status { return StatusSuccess }
func (Success) insurerResult() {}

// NotCovered carries an affirmatively stated exclusion.
type NotCovered struct {
	Reason    Reason         `json:"reason"`
	RuleTrace []binding.Rule `json:"rule_trace"`
}

func (NotCovered) Status() Status { return StatusNotCovered }
func (NotCovered) insurerResult() {}

// Unknown carries an absence: evidence missing, ambiguous, or
// unreachable. Absence is always rendered, never hidden.
type Unknown struct {
	Reason    Reason         `json:"reason"`
	RuleTrace []binding.Rule `json:"rule_trace,omitempty"`
}

func (Unknown) Status() Status { return StatusUnknown }
func (Unknown) insurerResult() {}

// Summary counts outcomes across the requested insurer set.
type Summary struct {
	TotalInsurers   int `json:"total_insurers"`
	SuccessCount    int `json:"success_count"`
	NotCoveredCount int `json:"not_covered_count"`
	UnknownCount    int `json:"unknown_count"`
}

// Comparison is the full outcome of one compare call. Results' key set
// equals the requested insurer set exactly. Bindings carries the raw
// binder output per insurer for projection and audit; insurers that
// never reached binding (retrieval failure or timeout) have no entry.
type Comparison struct {
	CoverageCode domain.CoverageCode
	CoverageName string
	Insurers     []domain.Insurer
	Results      map[domain.Insurer]InsurerResult
	Summary      Summary
	Bindings     map[domain.Insurer]*binding.BindingResult
}
