package store

import (
	"context"
	"database/sql"
	"fmt"

	"coverscope/internal/evidence/models"
	"coverscope/pkg/domain"
)

// Schema holds the DDL for the document corpus. The ingestion pipeline
// owns writes in deployment; Add exists for seeding and tests.
const Schema = `
CREATE TABLE IF NOT EXISTS evidence_documents (
    id                  TEXT PRIMARY KEY,
    coverage_code       TEXT NOT NULL,
    insurer             TEXT NOT NULL,
    doc_type            TEXT NOT NULL,
    source_doc          TEXT NOT NULL,
    page                INTEGER NOT NULL,
    excerpt             TEXT NOT NULL,
    exclusion_statement BOOLEAN NOT NULL DEFAULT FALSE,
    ingested_seq        BIGSERIAL
);

CREATE INDEX IF NOT EXISTS evidence_documents_coverage_insurer_idx
    ON evidence_documents (coverage_code, insurer);
`

// PostgresStore reads the document corpus from Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add ingests one document. An empty ID gets a generated one.
func (s *PostgresStore) Add(ctx context.Context, doc models.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.ID == "" {
		doc.ID = domain.NewEvidenceID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_documents
			(id, coverage_code, insurer, doc_type, source_doc, page, excerpt, exclusion_statement)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID.String(), doc.CoverageCode.String(), doc.Insurer.String(),
		string(doc.DocType), doc.SourceDoc, doc.Page, doc.Text, doc.ExclusionStatement,
	)
	if err != nil {
		return fmt.Errorf("insert evidence document: %w", err)
	}
	return nil
}

// ListByCoverage returns every document for one (coverage, insurer)
// pair in ingestion order. Ingestion order fixes the retriever's
// discovery-order tie-break, so the ORDER BY is load-bearing.
func (s *PostgresStore) ListByCoverage(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coverage_code, insurer, doc_type, source_doc, page, excerpt, exclusion_statement
		FROM evidence_documents
		WHERE coverage_code = $1 AND insurer = $2
		ORDER BY ingested_seq ASC`,
		code.String(), insurer.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list evidence documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		var id, cc, ins, dt string
		if err := rows.Scan(&id, &cc, &ins, &dt, &d.SourceDoc, &d.Page, &d.Text, &d.ExclusionStatement); err != nil {
			return nil, fmt.Errorf("scan evidence document: %w", err)
		}
		d.ID = domain.EvidenceID(id)
		d.CoverageCode = domain.CoverageCode(cc)
		d.Insurer = domain.Insurer(ins)
		d.DocType = domain.DocType(dt)
		out = append(out, d)
	}
	return out, rows.Err()
}
