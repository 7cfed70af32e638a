// Package catalog resolves coverage expressions to canonical codes and
// verifies canonical codes against the canonical table. Resolution is
// exact-match only over an approved alias snapshot; there is no fuzzy
// matching and no best guess.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"coverscope/internal/catalog/metrics"
	"coverscope/internal/catalog/models"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

// SnapshotSource provides the current alias snapshot. Implementations
// are read-only; snapshot writes belong to the offline approval flow.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*models.AliasSnapshot, error)
}

// ResolveCache caches resolve results keyed by snapshot version,
// normalized expression, and insurer. A nil cache disables caching.
type ResolveCache interface {
	Get(ctx context.Context, version, normalized string, insurer domain.Insurer) (*models.ResolveResult, bool)
	Set(ctx context.Context, version, normalized string, insurer domain.Insurer, result *models.ResolveResult)
}

// Resolver maps coverage expressions to canonical codes, or fails
// explicitly. It owns no mutable state.
type Resolver struct {
	source  SnapshotSource
	cache   ResolveCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewResolver(source SnapshotSource, cache ResolveCache, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{source: source, cache: cache, logger: logger, metrics: m}
}

// Resolve maps an expression to exactly one canonical code.
//
// The algorithm order is fixed and never reordered:
//  1. normalize (case-fold, collapse whitespace);
//  2. exact match against approved aliases, insurer-agnostic, first
//     hit by confidence wins;
//  3. if no hit and an insurer was supplied, retry scoped to it;
//  4. otherwise fail CanonicalNotFound. No fallback, no partial code
//     synthesis.
func (r *Resolver) Resolve(ctx context.Context, expression string, insurer domain.Insurer) (*models.ResolveResult, error) {
	start := time.Now()
	normalized := models.Normalize(expression)
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "expression is required")
	}

	snap, err := r.source.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load alias snapshot", err)
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, snap.Version(), normalized, insurer); ok {
			r.metrics.IncrementCache("hit")
			return cached, nil
		}
		r.metrics.IncrementCache("miss")
	}

	result, err := resolveIn(snap, normalized, insurer)
	if err != nil {
		r.metrics.IncrementResolve("not_found")
		r.logger.InfoContext(ctx, "canonical resolution failed",
			"expression_normalized", normalized,
			"insurer", insurer.String(),
			"snapshot_version", snap.Version(),
		)
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, snap.Version(), normalized, insurer, result)
	}
	r.metrics.IncrementResolve(string(result.Scope))
	r.metrics.ObserveResolveLatency(time.Since(start))
	return result, nil
}

// resolveIn is the pure resolution core over one immutable snapshot.
func resolveIn(snap *models.AliasSnapshot, normalized string, insurer domain.Insurer) (*models.ResolveResult, error) {
	if hits := snap.LookupGlobal(normalized); len(hits) > 0 {
		return resultFrom(snap, hits[0], models.ScopeGlobal), nil
	}
	if insurer != "" {
		if hits := snap.LookupInsurer(normalized, insurer); len(hits) > 0 {
			return resultFrom(snap, hits[0], models.ScopeInsurer), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "no approved alias matches expression")
}

func resultFrom(snap *models.AliasSnapshot, alias models.CoverageAlias, scope models.ResolveScope) *models.ResolveResult {
	name, _ := snap.CanonicalName(alias.CanonicalCode)
	return &models.ResolveResult{
		CanonicalCode: alias.CanonicalCode,
		CanonicalName: name,
		MatchedAlias:  alias.AliasNormalized,
		Scope:         scope,
		Confidence:    alias.Confidence,
	}
}

// Verify re-validates a pre-resolved canonical code and returns its
// official name. The aggregator calls this before any per-insurer
// fan-out; failure here aborts the whole comparison.
func (r *Resolver) Verify(ctx context.Context, code domain.CoverageCode) (string, error) {
	snap, err := r.source.Snapshot(ctx)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "load alias snapshot", err)
	}
	name, ok := snap.CanonicalName(code)
	if !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "canonical_code_not_exists")
	}
	return name, nil
}
