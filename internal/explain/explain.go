// Package explain projects binding results into presentation-ready
// structures. Projection is pure: no I/O, no mutation of inputs, no
// computation beyond lookup and regrouping. Excerpts pass through
// literally; this package never rewrites, summarizes, or paraphrases
// evidence text.
package explain

import (
	"coverscope/internal/binding"
	"coverscope/internal/compare"
	"coverscope/pkg/domain"
)

// Severity classifies the presentation card for a decision.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// severityByDecision is the static lookup; every decision tag has an
// entry.
var severityByDecision = map[binding.Decision]Severity{
	binding.DecisionDetermined:           SeverityInfo,
	binding.DecisionNoAmount:             SeverityError,
	binding.DecisionConditionMismatch:    SeverityWarning,
	binding.DecisionDefinitionOnly:       SeverityInfo,
	binding.DecisionInsufficientEvidence: SeverityError,
}

// SeverityFor returns the card severity for a decision.
func SeverityFor(d binding.Decision) Severity {
	return severityByDecision[d]
}

// Entry is one literal evidence excerpt with its locator.
type Entry struct {
	EvidenceID domain.EvidenceID `json:"evidence_id"`
	DocType    domain.DocType    `json:"doc_type"`
	SourceDoc  string            `json:"source_doc"`
	Page       int               `json:"page"`
	Excerpt    string            `json:"excerpt"`
}

// EvidenceGroup holds the entries for one purpose. Purposes with no
// bound evidence produce no group at all: "no evidence" is never
// rendered as an empty placeholder.
type EvidenceGroup struct {
	Purpose domain.Purpose `json:"purpose"`
	Entries []Entry        `json:"entries"`
}

// ExplainView is one insurer's presentation card.
type ExplainView struct {
	CoverageCode domain.CoverageCode `json:"coverage_code"`
	Insurer      domain.Insurer      `json:"insurer"`
	Decision     binding.Decision    `json:"decision"`
	Severity     Severity            `json:"severity"`

	AmountRaw   string `json:"amount_raw,omitempty"`
	AmountValue int64  `json:"amount_value,omitempty"`

	Groups    []EvidenceGroup `json:"evidence_groups,omitempty"`
	RuleTrace []binding.Rule  `json:"rule_trace"`
}

// Project maps one binding result to its view.
func Project(b *binding.BindingResult) ExplainView {
	view := ExplainView{
		CoverageCode: b.CoverageCode,
		Insurer:      b.Insurer,
		Decision:     b.Decision,
		Severity:     SeverityFor(b.Decision),
		AmountRaw:    b.AmountRaw,
		AmountValue:  b.AmountValue,
		RuleTrace:    b.RuleTrace,
	}

	for _, slot := range []struct {
		purpose domain.Purpose
		slot    binding.Slot
	}{
		{domain.PurposeAmount, b.Amount},
		{domain.PurposeCondition, b.Condition},
		{domain.PurposeDefinition, b.Definition},
	} {
		if slot.slot.State != binding.SlotBound {
			continue
		}
		ev := slot.slot.Evidence
		view.Groups = append(view.Groups, EvidenceGroup{
			Purpose: slot.purpose,
			Entries: []Entry{{
				EvidenceID: ev.ID,
				DocType:    ev.DocType,
				SourceDoc:  ev.SourceDoc,
				Page:       ev.Page,
				Excerpt:    ev.Excerpt,
			}},
		})
	}

	return view
}

// ProjectAll maps a whole comparison into per-insurer views, request
// order preserved. Insurers whose run never reached binding (retrieval
// failure or timeout) have no view; their absence is already explained
// by the comparison result itself.
func ProjectAll(c *compare.Comparison) []ExplainView {
	views := make([]ExplainView, 0, len(c.Bindings))
	for _, insurer := range c.Insurers {
		if b, ok := c.Bindings[insurer]; ok {
			views = append(views, Project(b))
		}
	}
	return views
}
