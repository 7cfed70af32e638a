package store

import (
	"context"
	"sync"

	"coverscope/internal/catalog/models"
)

// MemoryStore serves snapshots built from seeded data. Used in dev mode
// and unit tests.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *models.AliasSnapshot
}

// NewMemoryStore builds an immutable snapshot from the seed data.
func NewMemoryStore(version string, coverages []models.CanonicalCoverage, aliases []models.CoverageAlias) *MemoryStore {
	return &MemoryStore{
		snapshot: models.NewSnapshot(version, coverages, aliases),
	}
}

// Snapshot returns the current snapshot.
func (s *MemoryStore) Snapshot(_ context.Context) (*models.AliasSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, nil
}

// Replace swaps in a new revision. Mirrors what the administrative
// approval flow does against Postgres.
func (s *MemoryStore) Replace(version string, coverages []models.CanonicalCoverage, aliases []models.CoverageAlias) {
	snap := models.NewSnapshot(version, coverages, aliases)
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}
