package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"coverscope/internal/catalog/models"
	"coverscope/internal/catalog/store"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
)

type ResolverSuite struct {
	suite.Suite
	store    *store.MemoryStore
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewMemoryStore("rev-1",
		[]models.CanonicalCoverage{
			{Code: "CANCER_DX", OfficialName: "Cancer Diagnosis Benefit"},
			{Code: "STROKE_DX", OfficialName: "Stroke Diagnosis Benefit"},
		},
		[]models.CoverageAlias{
			{AliasNormalized: "cancer diagnosis", CanonicalCode: "CANCER_DX", Approved: true, Confidence: 0.9},
			{AliasNormalized: "cancer diagnosis", CanonicalCode: "STROKE_DX", Approved: true, Confidence: 0.4},
			{AliasNormalized: "stroke benefit", CanonicalCode: "STROKE_DX", Insurer: domain.InsurerSamsung, Approved: true, Confidence: 0.8},
			{AliasNormalized: "pending alias", CanonicalCode: "CANCER_DX", Approved: false, Confidence: 1.0},
			{AliasNormalized: "dangling alias", CanonicalCode: "UNKNOWN_CODE", Approved: true, Confidence: 1.0},
		},
	)
	s.resolver = NewResolver(s.store, nil, slog.Default(), nil)
}

// TestResolveGlobal verifies insurer-agnostic resolution and ordering.
func (s *ResolverSuite) TestResolveGlobal() {
	s.Run("resolves exact alias to canonical code", func() {
		result, err := s.resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("CANCER_DX"), result.CanonicalCode)
		s.Equal("Cancer Diagnosis Benefit", result.CanonicalName)
		s.Equal(models.ScopeGlobal, result.Scope)
	})

	s.Run("highest confidence wins when one alias maps to two codes", func() {
		result, err := s.resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("CANCER_DX"), result.CanonicalCode)
		s.InDelta(0.9, result.Confidence, 1e-9)
	})

	s.Run("normalizes case and whitespace before matching", func() {
		result, err := s.resolver.Resolve(s.ctx, "  Cancer   DIAGNOSIS ", "")
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("CANCER_DX"), result.CanonicalCode)
		s.Equal("cancer diagnosis", result.MatchedAlias)
	})

	s.Run("global match ignores the supplied insurer", func() {
		result, err := s.resolver.Resolve(s.ctx, "cancer diagnosis", domain.InsurerMeritz)
		s.Require().NoError(err)
		s.Equal(models.ScopeGlobal, result.Scope)
	})
}

// TestResolveInsurerScoped verifies the scoped fallback stage.
func (s *ResolverSuite) TestResolveInsurerScoped() {
	s.Run("falls back to insurer scope after global miss", func() {
		result, err := s.resolver.Resolve(s.ctx, "stroke benefit", domain.InsurerSamsung)
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("STROKE_DX"), result.CanonicalCode)
		s.Equal(models.ScopeInsurer, result.Scope)
	})

	s.Run("scoped alias is invisible to other insurers", func() {
		_, err := s.resolver.Resolve(s.ctx, "stroke benefit", domain.InsurerMeritz)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("scoped alias is invisible without an insurer", func() {
		_, err := s.resolver.Resolve(s.ctx, "stroke benefit", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestResolveFailures verifies explicit failure over best guess.
func (s *ResolverSuite) TestResolveFailures() {
	s.Run("unknown expression fails with not found", func() {
		_, err := s.resolver.Resolve(s.ctx, "no such coverage", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unapproved alias never resolves", func() {
		_, err := s.resolver.Resolve(s.ctx, "pending alias", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("alias pointing outside the canonical table never resolves", func() {
		_, err := s.resolver.Resolve(s.ctx, "dangling alias", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("blank expression is a validation error", func() {
		_, err := s.resolver.Resolve(s.ctx, "   ", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestVerify verifies canonical code re-validation.
func (s *ResolverSuite) TestVerify() {
	s.Run("returns the official name for a known code", func() {
		name, err := s.resolver.Verify(s.ctx, "CANCER_DX")
		s.Require().NoError(err)
		s.Equal("Cancer Diagnosis Benefit", name)
	})

	s.Run("fails for a code outside the canonical table", func() {
		_, err := s.resolver.Verify(s.ctx, "NOT_A_CODE")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestRevisionReplace verifies a snapshot swap changes resolution.
func (s *ResolverSuite) TestRevisionReplace() {
	s.Run("new revision replaces the alias set", func() {
		s.store.Replace("rev-2",
			[]models.CanonicalCoverage{{Code: "CANCER_DX", OfficialName: "Cancer Diagnosis Benefit"}},
			[]models.CoverageAlias{
				{AliasNormalized: "renamed alias", CanonicalCode: "CANCER_DX", Approved: true, Confidence: 1.0},
			},
		)

		_, err := s.resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		result, err := s.resolver.Resolve(s.ctx, "renamed alias", "")
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("CANCER_DX"), result.CanonicalCode)
	})
}

// fakeCache records interactions so cache behavior is observable without
// a Redis instance.
type fakeCache struct {
	entries map[string]*models.ResolveResult
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*models.ResolveResult)}
}

func (c *fakeCache) key(version, normalized string, insurer domain.Insurer) string {
	return version + "|" + string(insurer) + "|" + normalized
}

func (c *fakeCache) Get(_ context.Context, version, normalized string, insurer domain.Insurer) (*models.ResolveResult, bool) {
	c.gets++
	r, ok := c.entries[c.key(version, normalized, insurer)]
	return r, ok
}

func (c *fakeCache) Set(_ context.Context, version, normalized string, insurer domain.Insurer, result *models.ResolveResult) {
	c.sets++
	c.entries[c.key(version, normalized, insurer)] = result
}

// TestCaching verifies cache interaction and version scoping.
func (s *ResolverSuite) TestCaching() {
	cache := newFakeCache()
	resolver := NewResolver(s.store, cache, slog.Default(), nil)

	s.Run("successful resolution populates the cache", func() {
		_, err := resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.Require().NoError(err)
		s.Equal(1, cache.sets)
	})

	s.Run("second call is served from the cache", func() {
		result, err := resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.Require().NoError(err)
		s.Equal(domain.CoverageCode("CANCER_DX"), result.CanonicalCode)
		s.Equal(1, cache.sets, "no second write expected")
	})

	s.Run("failed resolution is never cached", func() {
		before := cache.sets
		_, err := resolver.Resolve(s.ctx, "no such coverage", "")
		s.Require().Error(err)
		s.Equal(before, cache.sets)
	})

	s.Run("revision change makes prior entries unreachable", func() {
		s.store.Replace("rev-3",
			[]models.CanonicalCoverage{{Code: "CANCER_DX", OfficialName: "Cancer Diagnosis Benefit"}},
			[]models.CoverageAlias{
				{AliasNormalized: "cancer diagnosis", CanonicalCode: "CANCER_DX", Approved: true, Confidence: 0.5},
			},
		)

		result, err := resolver.Resolve(s.ctx, "cancer diagnosis", "")
		s.Require().NoError(err)
		s.InDelta(0.5, result.Confidence, 1e-9, "result must come from the new revision, not the cache")
	})
}
