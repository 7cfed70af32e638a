// Package seed loads a YAML fixture of canonical coverages, aliases,
// and corpus documents into the in-memory stores. Used in dev mode and
// tests when no Postgres DSN is configured.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	catmodels "coverscope/internal/catalog/models"
	catstore "coverscope/internal/catalog/store"
	evmodels "coverscope/internal/evidence/models"
	evstore "coverscope/internal/evidence/store"
	"coverscope/pkg/domain"
)

// File is the root of the seed document.
type File struct {
	Catalog   Catalog    `yaml:"catalog"`
	Documents []Document `yaml:"documents"`
}

// Catalog seeds the canonical table and alias mappings.
type Catalog struct {
	Revision  string     `yaml:"revision"`
	Coverages []Coverage `yaml:"coverages"`
	Aliases   []Alias    `yaml:"aliases"`
}

type Coverage struct {
	Code         string `yaml:"code"`
	OfficialName string `yaml:"official_name"`
}

type Alias struct {
	Alias         string  `yaml:"alias"`
	CanonicalCode string  `yaml:"canonical_code"`
	Insurer       string  `yaml:"insurer"`
	Approved      bool    `yaml:"approved"`
	Confidence    float64 `yaml:"confidence"`
}

// Document seeds one corpus fragment.
type Document struct {
	CoverageCode       string `yaml:"coverage_code"`
	Insurer            string `yaml:"insurer"`
	DocType            string `yaml:"doc_type"`
	SourceDoc          string `yaml:"source_doc"`
	Page               int    `yaml:"page"`
	Text               string `yaml:"text"`
	ExclusionStatement bool   `yaml:"exclusion_statement"`
}

// Load parses a seed file from disk.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if f.Catalog.Revision == "" {
		f.Catalog.Revision = "seed"
	}
	return &f, nil
}

// CatalogStore builds an in-memory catalog store from the seed. Alias
// expressions are normalized here so the YAML can carry them verbatim.
func (f *File) CatalogStore() *catstore.MemoryStore {
	coverages := make([]catmodels.CanonicalCoverage, 0, len(f.Catalog.Coverages))
	for _, c := range f.Catalog.Coverages {
		coverages = append(coverages, catmodels.CanonicalCoverage{
			Code:         domain.CoverageCode(c.Code),
			OfficialName: c.OfficialName,
		})
	}

	aliases := make([]catmodels.CoverageAlias, 0, len(f.Catalog.Aliases))
	for _, a := range f.Catalog.Aliases {
		aliases = append(aliases, catmodels.CoverageAlias{
			AliasNormalized: catmodels.Normalize(a.Alias),
			CanonicalCode:   domain.CoverageCode(a.CanonicalCode),
			Insurer:         domain.Insurer(a.Insurer),
			Approved:        a.Approved,
			Confidence:      a.Confidence,
		})
	}

	return catstore.NewMemoryStore(f.Catalog.Revision, coverages, aliases)
}

// EvidenceStore builds an in-memory corpus from the seed, preserving
// file order as ingestion order.
func (f *File) EvidenceStore(ctx context.Context) (*evstore.MemoryStore, error) {
	store := evstore.NewMemoryStore()
	for i, d := range f.Documents {
		doc := evmodels.Document{
			CoverageCode:       domain.CoverageCode(d.CoverageCode),
			Insurer:            domain.Insurer(d.Insurer),
			DocType:            domain.DocType(d.DocType),
			SourceDoc:          d.SourceDoc,
			Page:               d.Page,
			Text:               d.Text,
			ExclusionStatement: d.ExclusionStatement,
		}
		if err := store.Add(ctx, doc); err != nil {
			return nil, fmt.Errorf("seed document %d: %w", i, err)
		}
	}
	return store, nil
}
