package handler

import (
	"coverscope/internal/condition"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// ConditionsRequest is the HTTP request body for POST
// /compare/conditions. An omitted aspect list means all aspects.
type ConditionsRequest struct {
	CanonicalCoverageCode string   `json:"canonical_coverage_code"`
	Insurers              []string `json:"insurers"`
	ComparisonAspects     []string `json:"comparison_aspects"`

	// Parsed values (populated by Validate)
	parsedCode     domain.CoverageCode
	parsedInsurers []domain.Insurer
	parsedAspects  []condition.Aspect
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ConditionsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	code, err := domain.ParseCoverageCode(r.CanonicalCoverageCode)
	if err != nil {
		return err
	}
	r.parsedCode = code

	if len(r.Insurers) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "insurers is required")
	}
	seen := make(map[domain.Insurer]bool, len(r.Insurers))
	r.parsedInsurers = make([]domain.Insurer, 0, len(r.Insurers))
	for _, raw := range r.Insurers {
		insurer, err := domain.ParseInsurer(raw)
		if err != nil {
			return err
		}
		if seen[insurer] {
			return dErrors.New(dErrors.CodeInvalidInput, "duplicate insurer: "+raw)
		}
		seen[insurer] = true
		r.parsedInsurers = append(r.parsedInsurers, insurer)
	}

	seenAspects := make(map[condition.Aspect]bool, len(r.ComparisonAspects))
	r.parsedAspects = make([]condition.Aspect, 0, len(r.ComparisonAspects))
	for _, raw := range r.ComparisonAspects {
		aspect, err := condition.ParseAspect(raw)
		if err != nil {
			return err
		}
		if seenAspects[aspect] {
			return dErrors.New(dErrors.CodeInvalidInput, "duplicate aspect: "+raw)
		}
		seenAspects[aspect] = true
		r.parsedAspects = append(r.parsedAspects, aspect)
	}

	return nil
}

// ParsedCode returns the validated canonical code.
func (r *ConditionsRequest) ParsedCode() domain.CoverageCode {
	return r.parsedCode
}

// ParsedInsurers returns the validated insurer set, request order
// preserved.
func (r *ConditionsRequest) ParsedInsurers() []domain.Insurer {
	return r.parsedInsurers
}

// ParsedAspects returns the validated aspect set; empty means all.
func (r *ConditionsRequest) ParsedAspects() []condition.Aspect {
	return r.parsedAspects
}
