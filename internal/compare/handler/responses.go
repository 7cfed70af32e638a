package handler

import (
	"coverscope/internal/compare"
	"coverscope/internal/explain"
)

// CompareResponse is the HTTP response for POST /compare.
type CompareResponse struct {
	CanonicalCoverageCode string                    `json:"canonical_coverage_code"`
	CanonicalCoverageName string                    `json:"canonical_coverage_name"`
	Results               map[string]InsurerOutcome `json:"results"`
	Summary               compare.Summary           `json:"summary"`
}

// ExplainResponse is the HTTP response for POST /compare/explain: the
// comparison plus one presentation view per insurer that reached
// binding, request order preserved.
type ExplainResponse struct {
	*CompareResponse
	Views []explain.ExplainView `json:"views"`
}

// InsurerOutcome is one insurer's entry. Status is always present;
// value/evidence appear on success, reason on the other statuses.
type InsurerOutcome struct {
	Status string `json:"status"`

	Value    *AmountValue         `json:"value,omitempty"`
	Evidence *compare.EvidenceRef `json:"evidence,omitempty"`
	Extras   *SuccessExtras       `json:"extras,omitempty"`
	Reason   string               `json:"reason,omitempty"`

	RuleTrace []string `json:"rule_trace,omitempty"`
}

// AmountValue carries the literal amount expression and its parsed
// numeric value.
type AmountValue struct {
	Raw    string `json:"raw"`
	Amount int64  `json:"amount"`
}

// SuccessExtras carries optional condition/definition attachments.
type SuccessExtras struct {
	ConditionAmbiguous bool                 `json:"condition_ambiguous,omitempty"`
	Condition          *compare.EvidenceRef `json:"condition,omitempty"`
	Definition         *compare.EvidenceRef `json:"definition,omitempty"`
}

// FromComparison converts a domain Comparison to an HTTP response. The
// conversion switches over the sealed result union exhaustively.
func FromComparison(c *compare.Comparison) *CompareResponse {
	resp := &CompareResponse{
		CanonicalCoverageCode: c.CoverageCode.String(),
		CanonicalCoverageName: c.CoverageName,
		Results:               make(map[string]InsurerOutcome, len(c.Results)),
		Summary:               c.Summary,
	}
	for insurer, result := range c.Results {
		resp.Results[insurer.String()] = outcomeFrom(result)
	}
	return resp
}

func outcomeFrom(result compare.InsurerResult) InsurerOutcome {
	switch r := result.(type) {
	case compare.Success:
		out := InsurerOutcome{
			Status:   string(compare.StatusSuccess),
			Value:    &AmountValue{Raw: r.AmountRaw, Amount: r.AmountValue},
			Evidence: &r.Evidence,
		}
		if r.ConditionAmbiguous || r.Condition != nil || r.Definition != nil {
			out.Extras = &SuccessExtras{
				ConditionAmbiguous: r.ConditionAmbiguous,
				Condition:          r.Condition,
				Definition:         r.Definition,
			}
		}
		for _, rule := range r.RuleTrace {
			out.RuleTrace = append(out.RuleTrace, string(rule))
		}
		return out

	case compare.NotCovered:
		out := InsurerOutcome{
			Status: string(compare.StatusNotCovered),
			Reason: string(r.Reason),
		}
		for _, rule := range r.RuleTrace {
			out.RuleTrace = append(out.RuleTrace, string(rule))
		}
		return out

	case compare.Unknown:
		out := InsurerOutcome{
			Status: string(compare.StatusUnknown),
			Reason: string(r.Reason),
		}
		for _, rule := range r.RuleTrace {
			out.RuleTrace = append(out.RuleTrace, string(rule))
		}
		return out
	}
	// Unreachable: the union is sealed.
	panic("handler: unmapped insurer result")
}
