// Package audit captures the comparison pipeline's decision trail. Rule
// traces are audit records, not log lines: every compare call emits one
// event per insurer, and the events outlive the request.
package audit

import (
	"context"
	"time"

	"coverscope/pkg/domain"
)

// EventCategory classifies audit events for retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers decision events. Rule traces have
	// regulatory significance and require long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging;
	// can be sampled, shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Action names for audit events. Stable identifiers.
const (
	ActionCompareDecision   = "compare_decision"
	ActionConditionDecision = "condition_decision"
	ActionAliasResolved     = "alias_resolved"
)

// actionCategories maps each action to its category. Decision events
// are compliance; everything else is operations.
var actionCategories = map[string]EventCategory{
	ActionCompareDecision:   CategoryCompliance,
	ActionConditionDecision: CategoryCompliance,
	ActionAliasResolved:     CategoryOperations,
}

// CategoryFor returns the category for an action. Unknown actions
// default to operations.
func CategoryFor(action string) EventCategory {
	if cat, ok := actionCategories[action]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is one audit record. Transport-agnostic so stores and the
// Kafka publisher can fan out from the same value.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`

	CoverageCode domain.CoverageCode `json:"coverage_code"`
	Insurer      domain.Insurer      `json:"insurer,omitempty"`
	Decision     string              `json:"decision,omitempty"`
	Status       string              `json:"status,omitempty"`
	Reason       string              `json:"reason,omitempty"`

	// RuleTrace is the ordered list of rule identifiers that fired
	// during binding. Never prose.
	RuleTrace []string `json:"rule_trace,omitempty"`
	// BoundEvidence lists the evidence IDs bound into the decision.
	BoundEvidence []string `json:"bound_evidence,omitempty"`

	RequestID  string `json:"request_id,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	ClientName string `json:"client_name,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
