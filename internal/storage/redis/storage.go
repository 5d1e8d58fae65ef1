package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keyspace
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   newKeyspace(cfg.KeyPrefix),
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, id model.SessionID, data []byte) error {
	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.snapshot(id), data, s.cfg.SnapshotTTL)
	pipe.SAdd(ctx, s.keys.snapshotIndex(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSnapshot(ctx context.Context, id model.SessionID) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keys.snapshot(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, id model.SessionID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keys.snapshot(id))
	pipe.SRem(ctx, s.keys.snapshotIndex(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]model.SessionID, error) {
	members, err := s.client.SMembers(ctx, s.keys.snapshotIndex()).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []model.SessionID{}, nil
	}

	// Snapshots expire on their own; check which index entries are still live
	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(members))
	for i, m := range members {
		checks[i] = pipe.Exists(ctx, s.keys.snapshot(model.SessionID(m)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	ids := make([]model.SessionID, 0, len(members))
	var stale []interface{}
	for i, m := range members {
		if checks[i].Val() > 0 {
			ids = append(ids, model.SessionID(m))
		} else {
			stale = append(stale, m)
		}
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.keys.snapshotIndex(), stale...).Err(); err != nil {
			return nil, err
		}
	}

	slices.Sort(ids)
	return ids, nil
}

// Catalog operations

func (s *Storage) SaveCatalogChallenges(ctx context.Context, challenges []model.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}

	fields := make([]interface{}, 0, len(challenges)*2)
	for _, c := range challenges {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		fields = append(fields, string(c.ID), data)
	}
	return s.client.HSet(ctx, s.keys.catalog(), fields...).Err()
}

func (s *Storage) GetCatalog(ctx context.Context) ([]model.Challenge, error) {
	entries, err := s.client.HGetAll(ctx, s.keys.catalog()).Result()
	if err != nil {
		return nil, err
	}

	challenges := make([]model.Challenge, 0, len(entries))
	for _, val := range entries {
		var c model.Challenge
		if err := json.Unmarshal([]byte(val), &c); err != nil {
			continue // Skip invalid data
		}
		challenges = append(challenges, c)
	}
	slices.SortFunc(challenges, func(a, b model.Challenge) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return challenges, nil
}

func (s *Storage) DeleteCatalogChallenge(ctx context.Context, id model.ChallengeID) error {
	return s.client.HDel(ctx, s.keys.catalog(), string(id)).Err()
}
