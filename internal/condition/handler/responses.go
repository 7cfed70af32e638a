package handler

import (
	"coverscope/internal/condition"
)

// ConditionsResponse is the HTTP response for POST /compare/conditions.
type ConditionsResponse struct {
	CanonicalCoverageCode string                    `json:"canonical_coverage_code"`
	CanonicalCoverageName string                    `json:"canonical_coverage_name"`
	Aspects               []string                  `json:"aspects"`
	Results               map[string]InsurerOutcome `json:"results"`
}

// InsurerOutcome is one insurer's entry. Status is always present;
// findings appear on success, reason on the other statuses.
type InsurerOutcome struct {
	Status   string              `json:"status"`
	Findings []condition.Finding `json:"findings,omitempty"`
	Reason   string              `json:"reason,omitempty"`
}

// FromComparison converts a domain ConditionComparison to an HTTP
// response. The conversion switches over the sealed result union
// exhaustively.
func FromComparison(c *condition.ConditionComparison) *ConditionsResponse {
	resp := &ConditionsResponse{
		CanonicalCoverageCode: c.CoverageCode.String(),
		CanonicalCoverageName: c.CoverageName,
		Aspects:               make([]string, 0, len(c.Aspects)),
		Results:               make(map[string]InsurerOutcome, len(c.Results)),
	}
	for _, aspect := range c.Aspects {
		resp.Aspects = append(resp.Aspects, aspect.String())
	}
	for insurer, result := range c.Results {
		resp.Results[insurer.String()] = outcomeFrom(result)
	}
	return resp
}

func outcomeFrom(result condition.InsurerConditions) InsurerOutcome {
	switch r := result.(type) {
	case condition.Covered:
		return InsurerOutcome{
			Status:   string(condition.StatusSuccess),
			Findings: r.Findings,
		}
	case condition.NotCovered:
		return InsurerOutcome{
			Status: string(condition.StatusNotCovered),
			Reason: string(r.Reason),
		}
	case condition.Unknown:
		return InsurerOutcome{
			Status: string(condition.StatusUnknown),
			Reason: string(r.Reason),
		}
	}
	// Unreachable: the union is sealed.
	panic("handler: unmapped insurer conditions")
}
