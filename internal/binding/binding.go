// Package binding turns ranked evidence into a terminal decision. The
// binder is a pure function: identical evidence in, identical
// BindingResult out, on every call. It selects at most one evidence
// item per purpose, never averages, never picks arbitrarily, and
// records every rule that fired in order.
package binding

import (
	"strings"

	"coverscope/internal/retrieval"
	"coverscope/pkg/domain"
)

// Decision is the terminal state of one binder run. The set is closed.
type Decision string

const (
	DecisionDetermined           Decision = "DETERMINED"
	DecisionNoAmount             Decision = "NO_AMOUNT"
	DecisionConditionMismatch    Decision = "CONDITION_MISMATCH"
	DecisionDefinitionOnly       Decision = "DEFINITION_ONLY"
	DecisionInsufficientEvidence Decision = "INSUFFICIENT_EVIDENCE"
)

// SlotState describes one purpose slot: empty, holding exactly one
// evidence item, or ambiguous. Slots are never merged or averaged.
type SlotState string

const (
	SlotAbsent    SlotState = "absent"
	SlotBound     SlotState = "bound"
	SlotAmbiguous SlotState = "ambiguous"
)

// Slot is the at-most-one evidence bound to a purpose. Evidence is nil
// unless State is SlotBound.
type Slot struct {
	State    SlotState
	Evidence *retrieval.Evidence
}

func absentSlot() Slot    { return Slot{State: SlotAbsent} }
func ambiguousSlot() Slot { return Slot{State: SlotAmbiguous} }
func boundSlot(ev retrieval.Evidence) Slot {
	return Slot{State: SlotBound, Evidence: &ev}
}

// BindingResult is the immutable outcome of one binder run for one
// (coverage, insurer) pair. A new comparison call produces a new
// result; nothing mutates one after creation.
type BindingResult struct {
	CoverageCode domain.CoverageCode
	Insurer      domain.Insurer
	Decision     Decision

	Amount     Slot
	Condition  Slot
	Definition Slot

	// AmountRaw and AmountValue duplicate the bound amount evidence's
	// extraction so consumers never re-parse excerpts.
	AmountRaw   string
	AmountValue int64

	// ExclusionStated carries the retriever's affirmative exclusion
	// signal through to status mapping.
	ExclusionStated bool

	// RuleTrace lists the rules that fired, in order. Audit record, not
	// explanation material.
	RuleTrace []Rule

	BoundEvidence   []domain.EvidenceID
	DroppedEvidence []domain.EvidenceID
}

// Bind runs the fixed rule chain over one retrieval result. Rules are
// evaluated top to bottom; the first decisive rule wins.
func Bind(code domain.CoverageCode, insurer domain.Insurer, evidence *retrieval.Result) *BindingResult {
	r := &BindingResult{
		CoverageCode:    code,
		Insurer:         insurer,
		Amount:          absentSlot(),
		Condition:       absentSlot(),
		Definition:      absentSlot(),
		ExclusionStated: evidence.ExclusionStated,
	}

	bindAmount(r, evidence.Amounts)
	bindCondition(r, evidence.Conditions)
	bindDefinition(r, evidence.Definitions)
	decide(r, evidence)
	collectEvidenceIDs(r, evidence)
	return r
}

// bindAmount applies tie-break rules 1–4 over the ranked candidates.
// The retriever already filtered to authoritative doc types and ranked
// by (priority, page, discovery); the binder re-checks the separating
// rule between the top two so the trace records which rule decided.
func bindAmount(r *BindingResult, candidates []retrieval.Evidence) {
	if len(candidates) == 0 {
		r.RuleTrace = append(r.RuleTrace, RulePassOneEmpty)
		return
	}
	r.RuleTrace = append(r.RuleTrace, RuleAuthoritativeOnly)

	if len(candidates) == 1 {
		r.Amount = boundSlot(candidates[0])
		r.AmountRaw = candidates[0].AmountRaw
		r.AmountValue = candidates[0].AmountValue
		r.RuleTrace = append(r.RuleTrace, RuleAmountPrimary)
		return
	}

	top, next := candidates[0], candidates[1]
	switch {
	case top.DocType.Priority() != next.DocType.Priority():
		r.RuleTrace = append(r.RuleTrace, RuleDocPriority)
	case top.Page != next.Page:
		r.RuleTrace = append(r.RuleTrace, RulePageAsc)
	default:
		// Two authoritative candidates tie on every rule. The engine
		// never picks arbitrarily.
		r.RuleTrace = append(r.RuleTrace, RuleAmbiguousAmount)
		r.Amount = ambiguousSlot()
		return
	}

	r.Amount = boundSlot(top)
	r.AmountRaw = top.AmountRaw
	r.AmountValue = top.AmountValue
	r.RuleTrace = append(r.RuleTrace, RuleAmountPrimary)
}

// conditionGrantMarkers and conditionDenyMarkers detect a
// self-contradictory fragment: one asserting payment and refusal at
// once is withheld, not interpreted.
var conditionGrantMarkers = []string{"지급합니다", "보장합니다", "지급사유"}

var conditionDenyMarkers = []string{"보장하지 않", "지급하지 않", "면책"}

func selfContradictory(text string) bool {
	return containsAny(text, conditionGrantMarkers) && containsAny(text, conditionDenyMarkers)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// bindCondition executes only after the amount decision is final. It
// prefers a fragment from the same source document as the bound amount
// to preserve contextual consistency.
func bindCondition(r *BindingResult, candidates []retrieval.Evidence) {
	if r.Amount.State != SlotBound || len(candidates) == 0 {
		return
	}

	chosen := candidates[0]
	sameDoc := false
	for _, c := range candidates {
		if c.SourceDoc == r.Amount.Evidence.SourceDoc {
			chosen = c
			sameDoc = true
			break
		}
	}

	if selfContradictory(chosen.Excerpt) {
		r.Condition = ambiguousSlot()
		r.RuleTrace = append(r.RuleTrace, RuleConditionConflict)
		return
	}

	r.Condition = boundSlot(chosen)
	if sameDoc {
		r.RuleTrace = append(r.RuleTrace, RuleConditionSameDoc)
	}
}

// bindDefinition attaches a definition without ever altering the
// amount.
func bindDefinition(r *BindingResult, candidates []retrieval.Evidence) {
	if len(candidates) == 0 {
		return
	}
	// A definition attaches to a bound amount, or stands alone when no
	// amount exists. It never attaches to an ambiguous amount.
	if r.Amount.State == SlotAmbiguous {
		return
	}
	r.Definition = boundSlot(candidates[0])
	if r.Amount.State == SlotBound {
		r.RuleTrace = append(r.RuleTrace, RuleDefinitionNoOverride)
	}
}

// decide derives the terminal decision from the three slot states. The
// mapping is total over the closed state space.
func decide(r *BindingResult, evidence *retrieval.Result) {
	switch r.Amount.State {
	case SlotAmbiguous:
		r.Decision = DecisionInsufficientEvidence
	case SlotBound:
		if r.Condition.State == SlotAmbiguous {
			r.Decision = DecisionConditionMismatch
		} else {
			r.Decision = DecisionDetermined
		}
	case SlotAbsent:
		switch {
		case len(evidence.Conditions) > 0:
			// Condition text without an amount collapses to NO_AMOUNT;
			// CONDITION_MISMATCH only applies when an amount is bound.
			r.Decision = DecisionNoAmount
		case r.Definition.State == SlotBound:
			r.Decision = DecisionDefinitionOnly
			r.RuleTrace = append(r.RuleTrace, RuleDefinitionOnly)
		default:
			r.Decision = DecisionInsufficientEvidence
			r.RuleTrace = append(r.RuleTrace, RuleNoEvidence)
		}
	}
}

// collectEvidenceIDs partitions every candidate into bound or dropped.
func collectEvidenceIDs(r *BindingResult, evidence *retrieval.Result) {
	bound := make(map[domain.EvidenceID]bool, 3)
	for _, slot := range []Slot{r.Amount, r.Condition, r.Definition} {
		if slot.State == SlotBound {
			bound[slot.Evidence.ID] = true
			r.BoundEvidence = append(r.BoundEvidence, slot.Evidence.ID)
		}
	}

	seen := make(map[domain.EvidenceID]bool)
	for _, list := range [][]retrieval.Evidence{evidence.Amounts, evidence.Conditions, evidence.Definitions} {
		for _, ev := range list {
			if bound[ev.ID] || seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			r.DroppedEvidence = append(r.DroppedEvidence, ev.ID)
		}
	}
}
