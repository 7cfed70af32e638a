// Package postgres provides the durable audit store. Rule traces and
// evidence ID lists are stored as text arrays so they stay queryable
// without JSON unpacking.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"coverscope/pkg/domain"
	audit "coverscope/pkg/platform/audit"
)

// Schema holds the DDL for the audit trail table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id             UUID PRIMARY KEY,
    category       TEXT NOT NULL,
    occurred_at    TIMESTAMPTZ NOT NULL,
    action         TEXT NOT NULL,
    coverage_code  TEXT NOT NULL,
    insurer        TEXT NOT NULL DEFAULT '',
    decision       TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT '',
    reason         TEXT NOT NULL DEFAULT '',
    rule_trace     TEXT[] NOT NULL DEFAULT '{}',
    bound_evidence TEXT[] NOT NULL DEFAULT '{}',
    request_id     TEXT NOT NULL DEFAULT '',
    client_ip      TEXT NOT NULL DEFAULT '',
    user_agent     TEXT NOT NULL DEFAULT '',
    client_name    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS audit_events_coverage_idx
    ON audit_events (coverage_code, occurred_at DESC);
`

// Store implements audit.Store on Postgres.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes one audit event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, category, occurred_at, action, coverage_code, insurer, decision,
			 status, reason, rule_trace, bound_evidence, request_id, client_ip,
			 user_agent, client_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		uuid.NewString(),
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.CoverageCode.String(),
		event.Insurer.String(),
		event.Decision,
		event.Status,
		event.Reason,
		pq.Array(event.RuleTrace),
		pq.Array(event.BoundEvidence),
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
		event.ClientName,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCoverage returns events for one coverage code, newest first.
func (s *Store) ListByCoverage(ctx context.Context, code domain.CoverageCode) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, occurred_at, action, coverage_code, insurer, decision,
		       status, reason, rule_trace, bound_evidence, request_id, client_ip,
		       user_agent, client_name
		FROM audit_events
		WHERE coverage_code = $1
		ORDER BY occurred_at DESC`,
		code.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the most recent N events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, occurred_at, action, coverage_code, insurer, decision,
		       status, reason, rule_trace, bound_evidence, request_id, client_ip,
		       user_agent, client_name
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var category, code, insurer string
		var ruleTrace, boundEvidence pq.StringArray
		if err := rows.Scan(
			&category, &e.Timestamp, &e.Action, &code, &insurer, &e.Decision,
			&e.Status, &e.Reason, &ruleTrace, &boundEvidence, &e.RequestID,
			&e.ClientIP, &e.UserAgent, &e.ClientName,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.CoverageCode = domain.CoverageCode(code)
		e.Insurer = domain.Insurer(insurer)
		e.RuleTrace = []string(ruleTrace)
		e.BoundEvidence = []string(boundEvidence)
		out = append(out, e)
	}
	return out, rows.Err()
}
