package handler

import (
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// CompareRequest is the HTTP request body for POST /compare and
// POST /compare/explain. Only canonical codes are accepted; free-text
// coverage names belong to POST /resolve.
type CompareRequest struct {
	CanonicalCoverageCode string   `json:"canonical_coverage_code"`
	Insurers              []string `json:"insurers"`

	// Parsed values (populated by Validate)
	parsedCode     domain.CoverageCode
	parsedInsurers []domain.Insurer
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CompareRequest) Validate() error {
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
	if len(r.Insurers) > len(domain.Insurers) {
		return dErrors.New(dErrors.CodeInvalidInput, "too many insurers requested")
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

	return nil
}

// ParsedCode returns the validated canonical code.
func (r *CompareRequest) ParsedCode() domain.CoverageCode {
	return r.parsedCode
}

// ParsedInsurers returns the validated insurer set, request order
// preserved.
func (r *CompareRequest) ParsedInsurers() []domain.Insurer {
	return r.parsedInsurers
}
