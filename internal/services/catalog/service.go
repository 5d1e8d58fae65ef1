package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/storage"
)

// Service manages the shared challenge library
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new catalog Service
func New(storage storage.Storage, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  rnd,
		logger:  logger.With(slog.String("component", "catalog")),
	}
}

// Add validates and upserts challenges. Challenges without an ID get one.
func (s *Service) Add(ctx context.Context, challenges []model.Challenge) ([]model.Challenge, error) {
	saved := make([]model.Challenge, 0, len(challenges))
	for _, c := range challenges {
		c = c.Clone()
		c.Title = strings.TrimSpace(c.Title)
		if c.ID == "" {
			c.ID = model.ChallengeID(s.random.NewID())
		}
		if !c.Topology.IsValid() {
			return nil, fmt.Errorf("%w: %q on challenge %s", model.ErrInvalidTopology, c.Topology, c.ID)
		}
		saved = append(saved, c)
	}

	if err := s.storage.SaveCatalogChallenges(ctx, saved); err != nil {
		s.logger.Error("failed to save catalog",
			slog.Int("count", len(saved)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("catalog updated", slog.Int("count", len(saved)))
	return saved, nil
}

// List returns the whole catalog ordered by ID
func (s *Service) List(ctx context.Context) ([]model.Challenge, error) {
	return s.storage.GetCatalog(ctx)
}

// Get returns the requested challenges in the order asked for.
// No IDs returns the whole catalog.
func (s *Service) Get(ctx context.Context, ids []model.ChallengeID) ([]model.Challenge, error) {
	all, err := s.storage.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[model.ChallengeID]model.Challenge, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	found := make([]model.Challenge, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrChallengeNotFound, id)
		}
		found = append(found, c)
	}
	return found, nil
}

// Remove deletes a challenge from the catalog. Session pools keep their copies.
func (s *Service) Remove(ctx context.Context, id model.ChallengeID) error {
	return s.storage.DeleteCatalogChallenge(ctx, id)
}

// Interface for dependency injection
type ServiceInterface interface {
	Add(ctx context.Context, challenges []model.Challenge) ([]model.Challenge, error)
	List(ctx context.Context) ([]model.Challenge, error)
	Get(ctx context.Context, ids []model.ChallengeID) ([]model.Challenge, error)
	Remove(ctx context.Context, id model.ChallengeID) error
}

var _ ServiceInterface = (*Service)(nil)
