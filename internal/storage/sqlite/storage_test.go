package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/partygame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "partygame.db")
	store, err := Open(s.path)
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestOpenRequiresPath() {
	_, err := Open("  ")
	s.Error(err)
}

func (s *StorageSuite) TestMigrationsRecorded() {
	var count int
	err := s.storage.db.QueryRowContext(s.ctx, `SELECT COUNT(1) FROM schema_migrations WHERE name = '001_init.sql'`).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *StorageSuite) TestReopenKeepsData() {
	s.Require().NoError(s.storage.SaveSnapshot(s.ctx, "sess-1", []byte("data")))
	s.Require().NoError(s.storage.Close())

	reopened, err := Open(s.path)
	s.Require().NoError(err)
	s.storage = reopened

	data, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal("data", string(data))
}

// Snapshot tests

func (s *StorageSuite) TestSaveAndGetSnapshot() {
	err := s.storage.SaveSnapshot(s.ctx, "sess-1", []byte(`{"id":"sess-1"}`))
	s.Require().NoError(err)

	data, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(`{"id":"sess-1"}`, string(data))
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
	s.NotErrorIs(err, sql.ErrNoRows)
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
	s.Equal(2, catalog[1].PointValue)
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
