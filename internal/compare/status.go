package compare

import (
	"coverscope/internal/binding"
	"coverscope/internal/retrieval"
	"coverscope/pkg/domain"
)

// resultFromBinding maps a terminal decision onto the externally
// visible status. The mapping is fixed and total over the closed
// decision set; there is no default branch by design, so a new decision
// tag fails compilation here instead of silently mapping.
func resultFromBinding(b *binding.BindingResult) InsurerResult {
	switch b.Decision {
	case binding.DecisionDetermined:
		return successFrom(b, false)

	case binding.DecisionConditionMismatch:
		// The amount stands; the ambiguous condition is withheld.
		return successFrom(b, true)

	case binding.DecisionInsufficientEvidence:
		reason := ReasonNoAuthoritativeEvidence
		if ruleFired(b, binding.RuleAmbiguousAmount) {
			reason = ReasonAmbiguousAmount
		}
		return Unknown{Reason: reason, RuleTrace: b.RuleTrace}

	case binding.DecisionNoAmount:
		if b.ExclusionStated {
			return NotCovered{Reason: ReasonCoverageNotFound, RuleTrace: b.RuleTrace}
		}
		// Silence is not exclusion.
		return Unknown{Reason: ReasonNoAmountEvidence, RuleTrace: b.RuleTrace}

	case binding.DecisionDefinitionOnly:
		return Unknown{Reason: ReasonNoAmountEvidence, RuleTrace: b.RuleTrace}
	}
	// Unreachable over the closed decision set.
	panic("compare: unmapped decision " + string(b.Decision))
}

func successFrom(b *binding.BindingResult, conditionAmbiguous bool) Success {
	s := Success{
		AmountRaw:          b.AmountRaw,
		AmountValue:        b.AmountValue,
		Evidence:           refFrom(b.Amount.Evidence),
		ConditionAmbiguous: conditionAmbiguous,
		RuleTrace:          b.RuleTrace,
	}
	if b.Condition.State == binding.SlotBound {
		ref := refFrom(b.Condition.Evidence)
		s.Condition = &ref
	}
	if b.Definition.State == binding.SlotBound {
		ref := refFrom(b.Definition.Evidence)
		s.Definition = &ref
	}
	return s
}

func refFrom(ev *retrieval.Evidence) EvidenceRef {
	return EvidenceRef{
		EvidenceID: ev.ID,
		DocType:    ev.DocType,
		SourceDoc:  ev.SourceDoc,
		Page:       ev.Page,
		Excerpt:    ev.Excerpt,
	}
}

func ruleFired(b *binding.BindingResult, rule binding.Rule) bool {
	for _, r := range b.RuleTrace {
		if r == rule {
			return true
		}
	}
	return false
}

// summarize tallies the merged result map.
func summarize(results map[domain.Insurer]InsurerResult) Summary {
	s := Summary{TotalInsurers: len(results)}
	for _, r := range results {
		switch r.(type) {
		case Success:
			s.SuccessCount++
		case NotCovered:
			s.NotCoveredCount++
		case Unknown:
			s.UnknownCount++
		}
	}
	return s
}
