package binding

// Rule identifies one binding rule. The identifiers are stable audit
// vocabulary: they appear in rule traces, audit events, and compliance
// exports, and must never be renamed.
type Rule string

const (
	// RuleAuthoritativeOnly: only authoritative doc types were eligible.
	RuleAuthoritativeOnly Rule = "authoritative_only"
	// RuleDocPriority: primary authoritative source outranked secondary.
	RuleDocPriority Rule = "doc_priority"
	// RulePageAsc: ascending page number broke a same-priority tie.
	RulePageAsc Rule = "page_asc"
	// RuleAmbiguousAmount: two authoritative candidates tied after every
	// tie-break; the amount was marked ambiguous, never picked.
	RuleAmbiguousAmount Rule = "ambiguous_amount"
	// RuleAmountPrimary: the amount slot was bound.
	RuleAmountPrimary Rule = "amount_primary"
	// RuleConditionSameDoc: the condition fragment was taken from the
	// same source document as the bound amount.
	RuleConditionSameDoc Rule = "condition_same_doc"
	// RuleConditionConflict: the condition fragment was self-contradictory
	// and the slot was marked ambiguous.
	RuleConditionConflict Rule = "condition_conflict"
	// RuleDefinitionNoOverride: a definition was attached without
	// altering the bound amount.
	RuleDefinitionNoOverride Rule = "definition_no_override"
	// RuleDefinitionOnly: only definition evidence existed.
	RuleDefinitionOnly Rule = "definition_only"
	// RuleNoEvidence: no evidence of any purpose existed.
	RuleNoEvidence Rule = "no_evidence"
	// RulePassOneEmpty: pass 1 produced no amount candidate.
	RulePassOneEmpty Rule = "pass_1_empty"
)
