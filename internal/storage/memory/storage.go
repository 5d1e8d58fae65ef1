package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	snapshots map[model.SessionID][]byte
	catalog   map[model.ChallengeID]model.Challenge
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		snapshots: make(map[model.SessionID][]byte),
		catalog:   make(map[model.ChallengeID]model.Challenge),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, id model.SessionID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[id] = slices.Clone(data)
	return nil
}

func (s *Storage) GetSnapshot(ctx context.Context, id model.SessionID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.snapshots[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return slices.Clone(data), nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.snapshots)), nil
}

// Catalog operations

func (s *Storage) SaveCatalogChallenges(ctx context.Context, challenges []model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range challenges {
		s.catalog[c.ID] = c.Clone()
	}
	return nil
}

func (s *Storage) GetCatalog(ctx context.Context) ([]model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenges := make([]model.Challenge, 0, len(s.catalog))
	for _, c := range s.catalog {
		challenges = append(challenges, c.Clone())
	}
	slices.SortFunc(challenges, func(a, b model.Challenge) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return challenges, nil
}

func (s *Storage) DeleteCatalogChallenge(ctx context.Context, id model.ChallengeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.catalog, id)
	return nil
}
