//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"coverscope/internal/evidence/models"
	"coverscope/internal/evidence/store"
	"coverscope/pkg/domain"
	"coverscope/pkg/testutil/containers"
)

type PostgresEvidenceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresEvidenceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEvidenceSuite))
}

func (s *PostgresEvidenceSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.Require().NoError(s.postgres.ApplySchema(context.Background(), store.Schema))
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresEvidenceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "evidence_documents"))
}

func (s *PostgresEvidenceSuite) newDoc(page int, docType domain.DocType) models.Document {
	return models.Document{
		CoverageCode: "CANCER_DX",
		Insurer:      domain.InsurerSamsung,
		DocType:      docType,
		SourceDoc:    "samsung_policy_2024.pdf",
		Page:         page,
		Text:         "암진단비 5,000만원을 지급합니다.",
	}
}

// TestIngestionOrder verifies listing returns documents in the order
// they were ingested, independent of page or doc type.
func (s *PostgresEvidenceSuite) TestIngestionOrder() {
	ctx := context.Background()
	s.Require().NoError(s.store.Add(ctx, s.newDoc(45, domain.DocTypeBusinessMethod)))
	s.Require().NoError(s.store.Add(ctx, s.newDoc(12, domain.DocTypePolicyWording)))

	docs, err := s.store.ListByCoverage(ctx, "CANCER_DX", domain.InsurerSamsung)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(45, docs[0].Page)
	s.Equal(12, docs[1].Page)
}

// TestRoundTrip verifies every field survives storage.
func (s *PostgresEvidenceSuite) TestRoundTrip() {
	ctx := context.Background()
	doc := s.newDoc(7, domain.DocTypePolicyWording)
	doc.ID = "EVID-fixed"
	doc.ExclusionStatement = true
	s.Require().NoError(s.store.Add(ctx, doc))

	docs, err := s.store.ListByCoverage(ctx, "CANCER_DX", domain.InsurerSamsung)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(doc, docs[0])
}

// TestCorpusKeyIsolation verifies coverage and insurer scoping.
func (s *PostgresEvidenceSuite) TestCorpusKeyIsolation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Add(ctx, s.newDoc(1, domain.DocTypePolicyWording)))

	other := s.newDoc(2, domain.DocTypePolicyWording)
	other.Insurer = domain.InsurerMeritz
	s.Require().NoError(s.store.Add(ctx, other))

	docs, err := s.store.ListByCoverage(ctx, "CANCER_DX", domain.InsurerSamsung)
	s.Require().NoError(err)
	s.Len(docs, 1)

	docs, err = s.store.ListByCoverage(ctx, "CANCER_DX", domain.InsurerHanwha)
	s.Require().NoError(err)
	s.Empty(docs)
}
