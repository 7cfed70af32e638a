package handler

import (
	"coverscope/internal/catalog/models"
)

// ResolveResponse is the HTTP response for POST /resolve.
type ResolveResponse struct {
	CanonicalCode string  `json:"canonical_code"`
	CanonicalName string  `json:"canonical_name"`
	MatchedAlias  string  `json:"matched_alias"`
	Scope         string  `json:"scope"`
	Confidence    float64 `json:"confidence"`
}

// FromResult converts a domain ResolveResult to an HTTP response.
func FromResult(result *models.ResolveResult) *ResolveResponse {
	return &ResolveResponse{
		CanonicalCode: result.CanonicalCode.String(),
		CanonicalName: result.CanonicalName,
		MatchedAlias:  result.MatchedAlias,
		Scope:         string(result.Scope),
		Confidence:    result.Confidence,
	}
}
