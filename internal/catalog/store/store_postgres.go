package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"coverscope/internal/catalog/models"
	"coverscope/pkg/domain"
)

// Schema holds the DDL for the catalog tables. Applied by migrations in
// deployment and by integration tests directly.
const Schema = `
CREATE TABLE IF NOT EXISTS canonical_coverages (
    code          TEXT PRIMARY KEY,
    official_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS coverage_aliases (
    alias_normalized TEXT NOT NULL,
    canonical_code   TEXT NOT NULL REFERENCES canonical_coverages(code),
    insurer          TEXT NOT NULL DEFAULT '',
    approved         BOOLEAN NOT NULL DEFAULT FALSE,
    confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (alias_normalized, canonical_code, insurer)
);

CREATE TABLE IF NOT EXISTS catalog_revisions (
    id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    version    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore loads alias snapshots from Postgres. Snapshots are
// cached in-process and rebuilt only when the administrative revision
// changes; the revision check itself is rate-limited.
type PostgresStore struct {
	db            *sql.DB
	checkInterval time.Duration

	mu        sync.Mutex
	cached    *models.AliasSnapshot
	lastCheck time.Time
}

func NewPostgresStore(db *sql.DB, checkInterval time.Duration) *PostgresStore {
	return &PostgresStore{db: db, checkInterval: checkInterval}
}

// Snapshot returns the snapshot for the current administrative revision.
func (s *PostgresStore) Snapshot(ctx context.Context) (*models.AliasSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.lastCheck) < s.checkInterval {
		return s.cached, nil
	}

	version, err := s.currentVersion(ctx)
	if err != nil {
		return nil, err
	}
	s.lastCheck = time.Now()

	if s.cached != nil && s.cached.Version() == version {
		return s.cached, nil
	}

	snap, err := s.load(ctx, version)
	if err != nil {
		return nil, err
	}
	s.cached = snap
	return snap, nil
}

func (s *PostgresStore) currentVersion(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT version FROM catalog_revisions WHERE id = 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("catalog_revisions is empty: no published revision")
	}
	if err != nil {
		return "", fmt.Errorf("read catalog revision: %w", err)
	}
	return version, nil
}

func (s *PostgresStore) load(ctx context.Context, version string) (*models.AliasSnapshot, error) {
	coverages, err := s.loadCoverages(ctx)
	if err != nil {
		return nil, err
	}
	aliases, err := s.loadAliases(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewSnapshot(version, coverages, aliases), nil
}

func (s *PostgresStore) loadCoverages(ctx context.Context) ([]models.CanonicalCoverage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, official_name FROM canonical_coverages`)
	if err != nil {
		return nil, fmt.Errorf("load canonical coverages: %w", err)
	}
	defer rows.Close()

	var out []models.CanonicalCoverage
	for rows.Next() {
		var c models.CanonicalCoverage
		var code string
		if err := rows.Scan(&code, &c.OfficialName); err != nil {
			return nil, fmt.Errorf("scan canonical coverage: %w", err)
		}
		c.Code = domain.CoverageCode(code)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) loadAliases(ctx context.Context) ([]models.CoverageAlias, error) {
	// Approved filtering happens again in NewSnapshot; filtering here
	// keeps unapproved rows from ever leaving the database.
	rows, err := s.db.QueryContext(ctx, `
		SELECT alias_normalized, canonical_code, insurer, approved, confidence
		FROM coverage_aliases
		WHERE approved = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("load coverage aliases: %w", err)
	}
	defer rows.Close()

	var out []models.CoverageAlias
	for rows.Next() {
		var a models.CoverageAlias
		var code, insurer string
		if err := rows.Scan(&a.AliasNormalized, &code, &insurer, &a.Approved, &a.Confidence); err != nil {
			return nil, fmt.Errorf("scan coverage alias: %w", err)
		}
		a.CanonicalCode = domain.CoverageCode(code)
		a.Insurer = domain.Insurer(insurer)
		out = append(out, a)
	}
	return out, rows.Err()
}
