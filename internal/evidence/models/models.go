// Package models defines the authoritative document corpus the
// retriever scans. Documents are ingested by an external pipeline; this
// core only reads them.
package models

import (
	"strings"

	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// Document is one evidence fragment from an insurer's filed documents,
// keyed by coverage and insurer. Text is the literal excerpt; it is
// never rewritten downstream.
type Document struct {
	ID           domain.EvidenceID
	CoverageCode domain.CoverageCode
	Insurer      domain.Insurer
	DocType      domain.DocType
	SourceDoc    string
	Page         int
	Text         string

	// ExclusionStatement marks a fragment that affirmatively states the
	// coverage is excluded. Set only by the ingestion pipeline from an
	// explicit exclusion clause, never inferred here.
	ExclusionStatement bool
}

// Validate checks the fields an ingested document must carry before it
// can enter a store.
func (d *Document) Validate() error {
	if d.CoverageCode == "" {
		return dErrors.New(dErrors.CodeValidation, "document coverage code is required")
	}
	if _, err := domain.ParseInsurer(d.Insurer.String()); err != nil {
		return err
	}
	if _, err := domain.ParseDocType(string(d.DocType)); err != nil {
		return err
	}
	if strings.TrimSpace(d.SourceDoc) == "" {
		return dErrors.New(dErrors.CodeValidation, "document source is required")
	}
	if d.Page < 1 {
		return dErrors.New(dErrors.CodeValidation, "document page must be positive")
	}
	return nil
}
