package compare

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"coverscope/internal/binding"
	"coverscope/internal/catalog"
	catmodels "coverscope/internal/catalog/models"
	catstore "coverscope/internal/catalog/store"
	evmodels "coverscope/internal/evidence/models"
	evstore "coverscope/internal/evidence/store"
	"coverscope/internal/retrieval"
	"coverscope/pkg/domain"
	dErrors "coverscope/pkg/domain-errors"
	audit "coverscope/pkg/platform/audit"
)

type recordingTrail struct {
	mu     sync.Mutex
	events []audit.Event
}

func (t *recordingTrail) Emit(_ context.Context, event audit.Event) {
	t.mu.Lock()
	t.events = append(t.events, event)
	t.mu.Unlock()
}

func (t *recordingTrail) all() []audit.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]audit.Event{}, t.events...)
}

type ServiceSuite struct {
	suite.Suite
	evidence *evstore.MemoryStore
	trail    *recordingTrail
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.evidence = evstore.NewMemoryStore()
	s.trail = &recordingTrail{}

	catalogStore := catstore.NewMemoryStore("rev-1",
		[]catmodels.CanonicalCoverage{
			{Code: "A4200_1", OfficialName: "암진단비(유사암제외)"},
		},
		nil,
	)
	resolver := catalog.NewResolver(catalogStore, nil, slog.Default(), nil)
	retriever := retrieval.NewRetriever(s.evidence, slog.Default(), nil)
	s.service = NewService(resolver, retriever, s.trail, slog.Default(), nil, time.Second)
}

func (s *ServiceSuite) addDoc(insurer domain.Insurer, docType domain.DocType, page int, text string, exclusion bool) {
	s.Require().NoError(s.evidence.Add(s.ctx, evmodels.Document{
		CoverageCode: "A4200_1",
		Insurer:      insurer,
		DocType:      docType,
		SourceDoc:    insurer.String() + "_" + string(docType) + ".pdf",
		Page:         page,
		Text:         text,
		ExclusionStatement: exclusion,
	}))
}

// TestDeterminedAmount: one primary authoritative amount yields
// success with the extracted value.
func (s *ServiceSuite) TestDeterminedAmount() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 45, "암진단비 5,000만원을 지급합니다", false)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(Success)
	s.Require().True(ok, "expected Success, got %T", c.Results[domain.InsurerSamsung])
	s.Equal(int64(50_000_000), result.AmountValue)
	s.Equal("5,000만원", result.AmountRaw)
	s.Equal(domain.DocTypePolicyWording, result.Evidence.DocType)
	s.Equal(45, result.Evidence.Page)
	s.Equal("암진단비(유사암제외)", c.CoverageName)
	s.Equal(Summary{TotalInsurers: 1, SuccessCount: 1}, c.Summary)
}

// TestNoAuthoritativeEvidence: an insurer with zero evidence resolves
// to unknown with the canonical-resolved reason.
func (s *ServiceSuite) TestNoAuthoritativeEvidence() {
	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerMeritz})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerMeritz].(Unknown)
	s.Require().True(ok)
	s.Equal(ReasonNoAuthoritativeEvidence, result.Reason)
}

// TestUnknownCanonicalCode: verification failure aborts before any
// per-insurer work; no partial results leak.
func (s *ServiceSuite) TestUnknownCanonicalCode() {
	c, err := s.service.Compare(s.ctx, "ZZZZ_X", []domain.Insurer{domain.InsurerSamsung})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Nil(c)
	s.Empty(s.trail.all(), "no audit events for an aborted call")
}

// TestPrimaryOutranksSecondary: primary wins regardless of page order.
func (s *ServiceSuite) TestPrimaryOutranksSecondary() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypeBusinessMethod, 2, "암진단비 3,000만원 지급", false)
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 88, "암진단비 5,000만원 지급", false)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result := c.Results[domain.InsurerSamsung].(Success)
	s.Equal(int64(50_000_000), result.AmountValue)
	s.Equal(domain.DocTypePolicyWording, result.Evidence.DocType)
	s.Contains(result.RuleTrace, binding.RuleDocPriority)
}

// TestAmbiguousAmount: a full tie yields unknown with reason
// ambiguous_amount, never an arbitrary pick.
func (s *ServiceSuite) TestAmbiguousAmount() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 10, "암진단비 5,000만원 지급", false)
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 10, "암진단비 3,000만원 지급", false)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(Unknown)
	s.Require().True(ok)
	s.Equal(ReasonAmbiguousAmount, result.Reason)
}

// TestAffirmativeExclusion: NO_AMOUNT plus a stated exclusion maps to
// not_covered; mere silence stays unknown.
func (s *ServiceSuite) TestAffirmativeExclusion() {
	// Condition text but no amount, with an explicit exclusion clause.
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 5,
		"단, 이 특약에서 제자리암은 보장하지 않습니다", true)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(NotCovered)
	s.Require().True(ok, "expected NotCovered, got %T", c.Results[domain.InsurerSamsung])
	s.Equal(ReasonCoverageNotFound, result.Reason)
}

func (s *ServiceSuite) TestSilentNoAmountStaysUnknown() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 5,
		"단, 계약일로부터 90일 이내 진단은 제외합니다", false)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(Unknown)
	s.Require().True(ok)
	s.Equal(ReasonNoAmountEvidence, result.Reason)
}

// TestKeySetEquality: the results key set equals the requested set
// exactly, whatever the outcomes.
func (s *ServiceSuite) TestKeySetEquality() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 45, "암진단비 5,000만원", false)

	requested := []domain.Insurer{
		domain.InsurerSamsung, domain.InsurerMeritz, domain.InsurerLotte,
		domain.InsurerKB, domain.InsurerDB,
	}
	c, err := s.service.Compare(s.ctx, "A4200_1", requested)
	s.Require().NoError(err)

	s.Len(c.Results, len(requested))
	for _, ins := range requested {
		s.Contains(c.Results, ins)
		s.NotNil(c.Results[ins])
	}
	s.Equal(len(requested), c.Summary.TotalInsurers)
	s.Equal(1, c.Summary.SuccessCount)
	s.Equal(4, c.Summary.UnknownCount)
}

// selectiveFailRetriever fails retrieval for one insurer only.
type selectiveFailRetriever struct {
	inner   Retriever
	failFor domain.Insurer
	err     error
}

func (r selectiveFailRetriever) Retrieve(ctx context.Context, code domain.CoverageCode, insurer domain.Insurer) (*retrieval.Result, error) {
	if insurer == r.failFor {
		return nil, r.err
	}
	return r.inner.Retrieve(ctx, code, insurer)
}

// TestIsolation: one insurer's retrieval failure never alters another
// insurer's result.
func (s *ServiceSuite) TestIsolation() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 45, "암진단비 5,000만원", false)

	catalogStore := catstore.NewMemoryStore("rev-1",
		[]catmodels.CanonicalCoverage{{Code: "A4200_1", OfficialName: "암진단비(유사암제외)"}}, nil)
	resolver := catalog.NewResolver(catalogStore, nil, slog.Default(), nil)
	failing := selectiveFailRetriever{
		inner:   retrieval.NewRetriever(s.evidence, slog.Default(), nil),
		failFor: domain.InsurerMeritz,
		err:     dErrors.New(dErrors.CodeInternal, "store unavailable"),
	}
	service := NewService(resolver, failing, s.trail, slog.Default(), nil, time.Second)

	c, err := service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung, domain.InsurerMeritz})
	s.Require().NoError(err, "per-insurer failure never aborts the call")

	samsung, ok := c.Results[domain.InsurerSamsung].(Success)
	s.Require().True(ok)
	s.Equal(int64(50_000_000), samsung.AmountValue)

	meritz, ok := c.Results[domain.InsurerMeritz].(Unknown)
	s.Require().True(ok)
	s.Equal(ReasonRetrievalFailed, meritz.Reason)
}

// TestRetrievalTimeout: a timeout-coded failure maps to
// retrieval_timeout.
func (s *ServiceSuite) TestRetrievalTimeout() {
	catalogStore := catstore.NewMemoryStore("rev-1",
		[]catmodels.CanonicalCoverage{{Code: "A4200_1", OfficialName: "암진단비(유사암제외)"}}, nil)
	resolver := catalog.NewResolver(catalogStore, nil, slog.Default(), nil)
	failing := selectiveFailRetriever{
		inner:   retrieval.NewRetriever(s.evidence, slog.Default(), nil),
		failFor: domain.InsurerSamsung,
		err:     dErrors.New(dErrors.CodeTimeout, "evidence retrieval timed out"),
	}
	service := NewService(resolver, failing, s.trail, slog.Default(), nil, time.Second)

	c, err := service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(Unknown)
	s.Require().True(ok)
	s.Equal(ReasonRetrievalTimeout, result.Reason)
}

// TestInputValidation rejects malformed requests before resolution.
func (s *ServiceSuite) TestInputValidation() {
	s.Run("empty insurer set", func() {
		_, err := s.service.Compare(s.ctx, "A4200_1", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("duplicate insurer", func() {
		_, err := s.service.Compare(s.ctx, "A4200_1",
			[]domain.Insurer{domain.InsurerSamsung, domain.InsurerSamsung})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown insurer code", func() {
		_, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{"ACME"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestAuditEmission: one event per insurer with the rule trace.
func (s *ServiceSuite) TestAuditEmission() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 45, "암진단비 5,000만원", false)

	_, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung, domain.InsurerMeritz})
	s.Require().NoError(err)

	events := s.trail.all()
	s.Require().Len(events, 2)

	byInsurer := map[domain.Insurer]audit.Event{}
	for _, e := range events {
		byInsurer[e.Insurer] = e
		s.Equal(audit.ActionCompareDecision, e.Action)
		s.Equal(domain.CoverageCode("A4200_1"), e.CoverageCode)
	}
	s.Equal("success", byInsurer[domain.InsurerSamsung].Status)
	s.NotEmpty(byInsurer[domain.InsurerSamsung].RuleTrace)
	s.Equal("unknown", byInsurer[domain.InsurerMeritz].Status)
	s.Equal(string(ReasonNoAuthoritativeEvidence), byInsurer[domain.InsurerMeritz].Reason)
}

// TestConditionMismatchCaveat: a self-contradictory condition keeps the
// amount but flags the caveat.
func (s *ServiceSuite) TestConditionMismatchCaveat() {
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 45, "암진단비 5,000만원을 지급합니다", false)
	s.addDoc(domain.InsurerSamsung, domain.DocTypePolicyWording, 46,
		"진단 확정 시 지급합니다. 단, 동일한 사유는 보장하지 않습니다.", false)

	c, err := s.service.Compare(s.ctx, "A4200_1", []domain.Insurer{domain.InsurerSamsung})
	s.Require().NoError(err)

	result, ok := c.Results[domain.InsurerSamsung].(Success)
	s.Require().True(ok)
	s.True(result.ConditionAmbiguous)
	s.Nil(result.Condition, "ambiguous condition text is withheld")
	s.Equal(int64(50_000_000), result.AmountValue, "amount stands")
}
