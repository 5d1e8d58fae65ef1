package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Open opens and migrates a SQLite database at path
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close releases the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Snapshot operations

func (s *Storage) SaveSnapshot(ctx context.Context, id model.SessionID, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (session_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(id), data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Storage) GetSnapshot(ctx context.Context, id model.SessionID) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE session_id = ?`, string(id)).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return data, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, id model.SessionID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE session_id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *Storage) ListSnapshots(ctx context.Context) ([]model.SessionID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM snapshots ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	ids := []model.SessionID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, model.SessionID(id))
	}
	return ids, rows.Err()
}

// Catalog operations

func (s *Storage) SaveCatalogChallenges(ctx context.Context, challenges []model.Challenge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().UnixMilli()
	for _, c := range challenges {
		payload, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO catalog_challenges (challenge_id, payload_json, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(challenge_id) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at`,
			string(c.ID), string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("save catalog challenge %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) GetCatalog(ctx context.Context) ([]model.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload_json FROM catalog_challenges ORDER BY challenge_id`)
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan catalog challenge: %w", err)
		}
		var c model.Challenge
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			continue // Skip invalid data
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

func (s *Storage) DeleteCatalogChallenge(ctx context.Context, id model.ChallengeID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalog_challenges WHERE challenge_id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete catalog challenge: %w", err)
	}
	return nil
}
