package storage

import (
	"context"

	"github.com/mcoot/partygame/internal/model"
)

// Storage defines the interface for data persistence.
// Snapshots are opaque encoded records; the snapshot package owns their layout.
type Storage interface {
	// Snapshot operations
	SaveSnapshot(ctx context.Context, id model.SessionID, data []byte) error
	GetSnapshot(ctx context.Context, id model.SessionID) ([]byte, error)
	DeleteSnapshot(ctx context.Context, id model.SessionID) error
	ListSnapshots(ctx context.Context) ([]model.SessionID, error)

	// Catalog operations. The catalog is the shared challenge library that
	// sessions copy challenges from.
	SaveCatalogChallenges(ctx context.Context, challenges []model.Challenge) error
	GetCatalog(ctx context.Context) ([]model.Challenge, error)
	DeleteCatalogChallenge(ctx context.Context, id model.ChallengeID) error
}
