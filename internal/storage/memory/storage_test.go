package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/partygame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Snapshot tests

func (s *StorageSuite) TestSaveAndGetSnapshot() {
	err := s.storage.SaveSnapshot(s.ctx, "sess-1", []byte(`{"id":"sess-1"}`))
	s.Require().NoError(err)

	data, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(`{"id":"sess-1"}`, string(data))
}

func (s *StorageSuite) TestSnapshotIsCopied() {
	data := []byte(`{"id":"sess-1"}`)
	_ = s.storage.SaveSnapshot(s.ctx, "sess-1", data)
	data[0] = 'X'

	stored, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(byte('{'), stored[0])
}

func (s *StorageSuite) TestSaveSnapshotOverwrites() {
	_ = s.storage.SaveSnapshot(s.ctx, "sess-1", []byte("first"))
	_ = s.storage.SaveSnapshot(s.ctx, "sess-1", []byte("second"))

	data, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal("second", string(data))
}

func (s *StorageSuite) TestGetSnapshotNotFound() {
	_, err := s.storage.GetSnapshot(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSnapshot() {
	_ = s.storage.SaveSnapshot(s.ctx, "sess-1", []byte("data"))

	err := s.storage.DeleteSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSnapshot(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListSnapshots() {
	_ = s.storage.SaveSnapshot(s.ctx, "sess-b", []byte("b"))
	_ = s.storage.SaveSnapshot(s.ctx, "sess-a", []byte("a"))

	ids, err := s.storage.ListSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.SessionID{"sess-a", "sess-b"}, ids)
}

// Catalog tests

func (s *StorageSuite) TestCatalog() {
	err := s.storage.SaveCatalogChallenges(s.ctx, []model.Challenge{
		{ID: "c2", Title: "Mime", Topology: model.TopologySolo, PointValue: 2},
		{ID: "c1", Title: "Trivia", Topology: model.TopologyAllVsAll, Quiz: true,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"trivia"}`))},
	})
	s.Require().NoError(err)

	catalog, err := s.storage.GetCatalog(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 2)
	s.Equal(model.ChallengeID("c1"), catalog[0].ID)
	s.Equal("trivia", catalog[0].Settings.Variant)
	s.Equal(model.ChallengeID("c2"), catalog[1].ID)
}

func (s *StorageSuite) TestCatalogUpsertAndDelete() {
	_ = s.storage.SaveCatalogChallenges(s.ctx, []model.Challenge{{ID: "c1", Title: "Old"}})
	_ = s.storage.SaveCatalogChallenges(s.ctx, []model.Challenge{{ID: "c1", Title: "New"}})

	catalog, err := s.storage.GetCatalog(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 1)
	s.Equal("New", catalog[0].Title)

	s.Require().NoError(s.storage.DeleteCatalogChallenge(s.ctx, "c1"))
	catalog, err = s.storage.GetCatalog(s.ctx)
	s.Require().NoError(err)
	s.Empty(catalog)
}
