// Package domain defines the shared identifier vocabulary for the
// comparison pipeline: canonical coverage codes, insurer codes, document
// types, and evidence purposes. Every module speaks these types; raw
// strings stop at the parse functions in this package.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "coverscope/pkg/domain-errors"
)

// CoverageCode is the single authoritative identifier for a coverage
// concept. All comparison operates on this identifier exclusively;
// free-text coverage names never travel past the resolver.
type CoverageCode string

// ParseCoverageCode validates the syntactic shape of a canonical code.
// Existence in the canonical table is checked separately by the catalog.
func ParseCoverageCode(raw string) (CoverageCode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "canonical_coverage_code is required")
	}
	if len(raw) > 64 {
		return "", dErrors.New(dErrors.CodeValidation, "canonical_coverage_code must be at most 64 characters")
	}
	for _, r := range raw {
		if !isCodeRune(r) {
			return "", dErrors.New(dErrors.CodeValidation, "canonical_coverage_code contains invalid characters")
		}
	}
	return CoverageCode(raw), nil
}

func isCodeRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

func (c CoverageCode) String() string { return string(c) }

// Insurer identifies one insurance carrier. The set is closed; unknown
// codes are rejected at the boundary.
type Insurer string

const (
	InsurerSamsung  Insurer = "SAMSUNG"
	InsurerMeritz   Insurer = "MERITZ"
	InsurerLotte    Insurer = "LOTTE"
	InsurerKB       Insurer = "KB"
	InsurerDB       Insurer = "DB"
	InsurerHanwha   Insurer = "HANWHA"
	InsurerHeungkuk Insurer = "HEUNGKUK"
	InsurerHyundai  Insurer = "HYUNDAI"
)

// Insurers lists every known insurer in stable order.
var Insurers = []Insurer{
	InsurerSamsung,
	InsurerMeritz,
	InsurerLotte,
	InsurerKB,
	InsurerDB,
	InsurerHanwha,
	InsurerHeungkuk,
	InsurerHyundai,
}

// ParseInsurer validates an insurer code against the closed set.
func ParseInsurer(raw string) (Insurer, error) {
	candidate := Insurer(strings.ToUpper(strings.TrimSpace(raw)))
	for _, ins := range Insurers {
		if ins == candidate {
			return ins, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown insurer code: "+raw)
}

func (i Insurer) String() string { return string(i) }

// DocType classifies source documents. Only the two authoritative types
// may determine values; everything else is reference-only and
// non-binding.
type DocType string

const (
	// DocTypePolicyWording is the governing contract text
	// (authoritative-primary).
	DocTypePolicyWording DocType = "policy_wording"
	// DocTypeBusinessMethod is the business method filing
	// (authoritative-secondary).
	DocTypeBusinessMethod DocType = "business_method"
	// DocTypeProductSummary is marketing/summary material
	// (reference-only, never eligible for binding).
	DocTypeProductSummary DocType = "product_summary"
)

// ParseDocType validates a document type code.
func ParseDocType(raw string) (DocType, error) {
	switch DocType(strings.TrimSpace(raw)) {
	case DocTypePolicyWording:
		return DocTypePolicyWording, nil
	case DocTypeBusinessMethod:
		return DocTypeBusinessMethod, nil
	case DocTypeProductSummary:
		return DocTypeProductSummary, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown doc_type: "+raw)
}

// Authoritative reports whether the document type may determine values.
func (d DocType) Authoritative() bool {
	return d == DocTypePolicyWording || d == DocTypeBusinessMethod
}

// Priority orders authoritative documents: primary outranks secondary.
// Lower is stronger. Reference-only types sort last and are filtered
// before ranking ever matters.
func (d DocType) Priority() int {
	switch d {
	case DocTypePolicyWording:
		return 0
	case DocTypeBusinessMethod:
		return 1
	default:
		return 99
	}
}

// EvidenceID identifies one evidence fragment. IDs come from the
// ingestion pipeline; stores generate one when a seeded document lacks
// it.
type EvidenceID string

// NewEvidenceID mints a fresh evidence identifier.
func NewEvidenceID() EvidenceID {
	return EvidenceID("EVID-" + uuid.NewString())
}

func (e EvidenceID) String() string { return string(e) }

// Purpose labels what an evidence fragment is for. Evidence without a
// purpose is unusable in comparison results.
type Purpose string

const (
	PurposeAmount     Purpose = "amount"
	PurposeCondition  Purpose = "condition"
	PurposeDefinition Purpose = "definition"
)

func (p Purpose) String() string { return string(p) }
