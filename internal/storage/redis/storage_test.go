package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/partygame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SnapshotTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Snapshot tests

func (s *StorageSuite) TestSaveAndGetSnapshot() {
	err := s.storage.SaveSnapshot(s.ctx, "sess-1", []byte(`{"id":"sess-1"}`))
	s.Require().NoError(err)

	data, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(`{"id":"sess-1"}`, string(data))
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
	s.False(s.mini.Exists(s.storage.keys.snapshot("sess-1")))

	ids, err := s.storage.ListSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestSnapshotTTL() {
	_ = s.storage.SaveSnapshot(s.ctx, "sess-1", []byte("data"))

	s.Equal(time.Hour, s.mini.TTL(s.storage.keys.snapshot("sess-1")))
}

func (s *StorageSuite) TestListSnapshotsDropsExpired() {
	_ = s.storage.SaveSnapshot(s.ctx, "sess-b", []byte("b"))
	_ = s.storage.SaveSnapshot(s.ctx, "sess-a", []byte("a"))

	ids, err := s.storage.ListSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.SessionID{"sess-a", "sess-b"}, ids)

	s.mini.Del(s.storage.keys.snapshot("sess-a"))

	ids, err = s.storage.ListSnapshots(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.SessionID{"sess-b"}, ids)

	members, err := s.mini.SMembers(s.storage.keys.snapshotIndex())
	s.Require().NoError(err)
	s.Equal([]string{"sess-b"}, members)
}

// Catalog tests

func (s *StorageSuite) TestCatalog() {
	err := s.storage.SaveCatalogChallenges(s.ctx, []model.Challenge{
		{ID: "c2", Title: "Mime", Topology: model.TopologySolo, PointValue: 2},
		{ID: "c1", Title: "Trivia", Topology: model.TopologyAllVsAll, Quiz: true,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"trivia","rounds":3}`))},
	})
	s.Require().NoError(err)

	catalog, err := s.storage.GetCatalog(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 2)
	s.Equal(model.ChallengeID("c1"), catalog[0].ID)
	s.True(catalog[0].Quiz)
	s.JSONEq(`{"type":"trivia","rounds":3}`, string(catalog[0].Settings.Raw))
	s.Equal(model.ChallengeID("c2"), catalog[1].ID)

	s.True(s.mini.Exists(s.storage.keys.catalog()))
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

func (s *StorageSuite) TestEmptyCatalog() {
	catalog, err := s.storage.GetCatalog(s.ctx)
	s.Require().NoError(err)
	s.Empty(catalog)
}

func (s *StorageSuite) TestKeyPrefixIsolatesDeployments() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	cfg := DefaultConfig()
	cfg.KeyPrefix = "staging"
	other := NewWithClient(client, cfg)
	defer func() { _ = other.Close() }()

	s.Require().NoError(other.SaveSnapshot(s.ctx, "sess-1", []byte(`{}`)))

	s.True(s.mini.Exists("staging:snapshot:sess-1"))
	_, err := s.storage.GetSnapshot(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
