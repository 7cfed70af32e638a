package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"coverscope/pkg/domain"
)

type SeedSuite struct {
	suite.Suite
	file *File
}

func TestSeedSuite(t *testing.T) {
	suite.Run(t, new(SeedSuite))
}

func (s *SeedSuite) SetupTest() {
	f, err := Load("testdata/seed.yaml")
	s.Require().NoError(err)
	s.file = f
}

func (s *SeedSuite) TestLoadMissingFile() {
	_, err := Load("testdata/does_not_exist.yaml")
	s.Error(err)
}

func (s *SeedSuite) TestCatalogStore() {
	store := s.file.CatalogStore()
	snap, err := store.Snapshot(context.Background())
	s.Require().NoError(err)

	s.Equal("rev-test-1", snap.Version())

	name, ok := snap.CanonicalName("A4200_1")
	s.Require().True(ok)
	s.Equal("암진단비(유사암제외)", name)

	// Alias text is normalized on load.
	aliases := snap.LookupGlobal("암 진단비")
	s.Require().Len(aliases, 1)
	s.Equal(domain.CoverageCode("A4200_1"), aliases[0].CanonicalCode)

	// Unapproved aliases never reach the snapshot.
	s.Empty(snap.LookupGlobal("미승인 별칭"))
}

func (s *SeedSuite) TestEvidenceStore() {
	store, err := s.file.EvidenceStore(context.Background())
	s.Require().NoError(err)

	docs, err := store.ListByCoverage(context.Background(), "A4200_1", domain.InsurerSamsung)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("samsung_terms.pdf", docs[0].SourceDoc)
	s.NotEmpty(docs[0].ID, "seeded documents get generated IDs")

	hanwha, err := store.ListByCoverage(context.Background(), "A4200_1", domain.InsurerHanwha)
	s.Require().NoError(err)
	s.Require().Len(hanwha, 1)
	s.True(hanwha[0].ExclusionStatement)
}

func (s *SeedSuite) TestInvalidDocumentRejected() {
	f := &File{Documents: []Document{{CoverageCode: "A4200_1"}}}
	_, err := f.EvidenceStore(context.Background())
	s.Error(err)
}
