package store

import (
	"context"
	"sync"

	"coverscope/internal/evidence/models"
	"coverscope/pkg/domain"
)

type corpusKey struct {
	code    domain.CoverageCode
	insurer domain.Insurer
}

// MemoryStore holds the document corpus in memory. Used in dev mode and
// tests; list order is ingestion order, which fixes the retriever's
// discovery-order tie-break.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[corpusKey][]models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[corpusKey][]models.Document)}
}

// Add ingests one document. An empty ID gets a generated one.
func (s *MemoryStore) Add(_ context.Context, doc models.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = domain.NewEvidenceID()
	}
	key := corpusKey{code: doc.CoverageCode, insurer: doc.Insurer}
	s.mu.Lock()
	s.docs[key] = append(s.docs[key], doc)
	s.mu.Unlock()
	return nil
}

// ListByCoverage returns every document for one (coverage, insurer)
// pair in ingestion order. An unknown pair returns an empty slice, not
// an error: absence of evidence is a domain outcome.
func (s *MemoryStore) ListByCoverage(_ context.Context, code domain.CoverageCode, insurer domain.Insurer) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.docs[corpusKey{code: code, insurer: insurer}]
	out := make([]models.Document, len(docs))
	copy(out, docs)
	return out, nil
}
