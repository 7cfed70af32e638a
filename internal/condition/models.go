// Package condition compares how insurers define and condition a
// coverage rather than how much they pay. It reuses the evidence
// retrieval pipeline but selects fragments per comparison aspect, and
// renders every definition verbatim: the engine never judges which
// insurer's definition is better, broader, or more favorable.
package condition

import (
	"strings"

	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// Aspect names one dimension of definition comparison.
type Aspect string

const (
	AspectSubtypeCoverage   Aspect = "subtype_coverage"
	AspectMethodCondition   Aspect = "method_condition"
	AspectBoundaryCondition Aspect = "boundary_condition"
	AspectDefinitionScope   Aspect = "definition_scope"
)

// Aspects lists every comparison aspect in stable order.
var Aspects = []Aspect{
	AspectSubtypeCoverage,
	AspectMethodCondition,
	AspectBoundaryCondition,
	AspectDefinitionScope,
}

var validAspects = map[Aspect]bool{
	AspectSubtypeCoverage:   true,
	AspectMethodCondition:   true,
	AspectBoundaryCondition: true,
	AspectDefinitionScope:   true,
}

// ParseAspect constructs an Aspect from external input.
func ParseAspect(s string) (Aspect, error) {
	a := Aspect(strings.TrimSpace(s))
	if !validAspects[a] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown comparison aspect: "+s)
	}
	return a, nil
}

func (a Aspect) String() string { return string(a) }

// aspectMarkers gate which fragments can serve an aspect. A fragment
// with no marker for the aspect is simply not about that aspect.
var aspectMarkers = map[Aspect][]string{
	AspectSubtypeCoverage:   {"유사암", "소액암", "제자리암", "경계성", "갑상선암", "기타피부암"},
	AspectMethodCondition:   {"진단확정", "병리", "조직검사", "진단서", "검사"},
	AspectBoundaryCondition: {"90일", "1년", "경과한 후", "면책기간", "감액", "계약일로부터"},
	AspectDefinitionScope:   {"라 함은", "란 함은", "이란", "말합니다", "정의"},
}

// Status is the externally visible per-insurer outcome.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusNotCovered Status = "not_covered"
	StatusUnknown    Status = "unknown"
)

// Reason is a machine-readable explanation for a non-success outcome.
type Reason string

const (
	ReasonNoAuthoritativeDefinition Reason = "no_authoritative_definition"
	ReasonAmbiguousDefinition       Reason = "ambiguous_definition"
	ReasonCoverageNotFound          Reason = "coverage_not_found"
	ReasonRetrievalTimeout          Reason = "retrieval_timeout"
	ReasonRetrievalFailed           Reason = "retrieval_failed"
)

// EvidenceRef locates one fragment backing a finding.
type EvidenceRef struct {
	EvidenceID domain.EvidenceID `json:"evidence_id"`
	DocType    domain.DocType    `json:"doc_type"`
	SourceDoc  string            `json:"source_doc"`
	Page       int               `json:"page"`
}

// Finding is one aspect's verbatim definition text for one insurer.
// Text is trimmed, never normalized or paraphrased.
type Finding struct {
	Aspect   Aspect      `json:"aspect"`
	Text     string      `json:"text"`
	Evidence EvidenceRef `json:"evidence"`
}

// InsurerConditions is a sealed union: Covered, NotCovered, or Unknown.
type InsurerConditions interface {
	Status() Status
	insurerConditions()
}

// Covered carries at least one aspect finding. Requested aspects with
// no matching authoritative fragment are absent from Findings, not
// rendered empty.
type Covered struct {
	Findings []Finding `json:"findings"`
}

func (Covered) Status() Status { return StatusSuccess }
func (Covered) insurerConditions() {}

// NotCovered carries an affirmatively stated exclusion.
type NotCovered struct {
	Reason Reason `json:"reason"`
}

func (NotCovered) Status() Status { return StatusNotCovered }
func (NotCovered) insurerConditions() {}

// Unknown carries an absence or an ambiguity.
type Unknown struct {
	Reason Reason `json:"reason"`
}

func (Unknown) Status() Status { return StatusUnknown }
func (Unknown) insurerConditions() {}

// ConditionComparison is the full outcome of one condition compare
// call. Results' key set equals the requested insurer set exactly.
type ConditionComparison struct {
	CoverageCode domain.CoverageCode
	CoverageName string
	Aspects      []Aspect
	Insurers     []domain.Insurer
	Results      map[domain.Insurer]InsurerConditions
}
