package handler

import (
	"strings"

	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// ResolveRequest is the HTTP request body for POST /resolve.
type ResolveRequest struct {
	Expression string `json:"expression"`
	Insurer    string `json:"insurer,omitempty"`

	// Parsed values (populated by Validate)
	parsedInsurer domain.Insurer
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Expression = strings.TrimSpace(r.Expression)
	if r.Expression == "" {
		return dErrors.New(dErrors.CodeValidation, "expression is required")
	}
	if len(r.Expression) > 256 {
		return dErrors.New(dErrors.CodeValidation, "expression must be at most 256 characters")
	}

	r.Insurer = strings.TrimSpace(r.Insurer)
	if r.Insurer != "" {
		insurer, err := domain.ParseInsurer(r.Insurer)
		if err != nil {
			return err
		}
		r.parsedInsurer = insurer
	}

	return nil
}

// ParsedInsurer returns the validated insurer, or empty when the
// request was insurer-agnostic.
func (r *ResolveRequest) ParsedInsurer() domain.Insurer {
	return r.parsedInsurer
}
