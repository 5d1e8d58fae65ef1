package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mcoot/partygame/internal/metrics"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/catalog"
	"github.com/mcoot/partygame/internal/services/rotation"
	"github.com/mcoot/partygame/internal/services/scoring"
	"github.com/mcoot/partygame/internal/snapshot"
	"github.com/mcoot/partygame/internal/storage"
)

// finishedCacheSize bounds how many finished games stay queryable after
// their snapshots are deleted
const finishedCacheSize = 256

// Controller runs engine operations against persisted sessions.
// Each mutation loads the snapshot, applies the operation, then saves the
// new state, or deletes the snapshot once the game has finished. Operations
// on the same session are serialized.
type Controller struct {
	storage  storage.Storage
	engine   *Engine
	codec    *snapshot.Codec
	catalog  *catalog.Service
	scoring  *scoring.Service
	rotation *rotation.Service
	metrics  *metrics.Metrics
	logger   *slog.Logger

	locksMu  sync.Mutex
	locks    map[model.SessionID]*sessionLock
	finished *lru.Cache[model.SessionID, *model.SessionState]
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	engine *Engine,
	codec *snapshot.Codec,
	catalogService *catalog.Service,
	scoringService *scoring.Service,
	rotationService *rotation.Service,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	finished, _ := lru.New[model.SessionID, *model.SessionState](finishedCacheSize)
	return &Controller{
		storage:  storage,
		engine:   engine,
		codec:    codec,
		catalog:  catalogService,
		scoring:  scoringService,
		rotation: rotationService,
		metrics:  m,
		logger:   logger.With(slog.String("component", "session-controller")),
		locks:    make(map[model.SessionID]*sessionLock),
		finished: finished,
	}
}

// Session lifecycle

// CreateSession creates and persists a new session in the setup phase
func (c *Controller) CreateSession(ctx context.Context) (*model.SessionState, error) {
	state := c.engine.NewSession("")
	err := c.persist(ctx, state)
	c.metrics.ObserveOperation("create_session", err)
	if err != nil {
		return nil, err
	}

	c.logger.Info("session created", slog.String("session_id", string(state.ID)))
	return state, nil
}

// GetSession returns the current state of a session
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	unlock := c.lock(id)
	defer unlock()
	return c.load(ctx, id)
}

// ListSessions returns the IDs of every persisted session
func (c *Controller) ListSessions(ctx context.Context) ([]model.SessionID, error) {
	return c.storage.ListSnapshots(ctx)
}

// DeleteSession discards a session
func (c *Controller) DeleteSession(ctx context.Context, id model.SessionID) error {
	unlock := c.lock(id)
	defer unlock()

	if _, err := c.load(ctx, id); err != nil {
		return err
	}
	c.finished.Remove(id)
	err := c.storage.DeleteSnapshot(ctx, id)
	c.metrics.ObserveOperation("delete_session", err)
	return err
}

// Configure sets the game mode and duration
func (c *Controller) Configure(ctx context.Context, id model.SessionID, mode model.GameMode, durationMode model.DurationMode, durationValue int) (*model.SessionState, error) {
	return c.update(ctx, id, "configure", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.Configure(state, mode, durationMode, durationValue)
	})
}

// Roster operations

// AddPlayer registers a new player
func (c *Controller) AddPlayer(ctx context.Context, id model.SessionID, name string) (*model.SessionState, *model.Player, error) {
	var player *model.Player
	state, err := c.update(ctx, id, "add_player", func(state *model.SessionState) (*model.SessionState, error) {
		next, p, err := c.engine.AddPlayer(state, name)
		player = p
		return next, err
	})
	if err != nil {
		return nil, nil, err
	}
	return state, state.GetPlayer(player.ID), nil
}

// RemovePlayer deletes a player
func (c *Controller) RemovePlayer(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.SessionState, error) {
	return c.update(ctx, id, "remove_player", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.RemovePlayer(state, playerID)
	})
}

// CreateTeam adds an empty team
func (c *Controller) CreateTeam(ctx context.Context, id model.SessionID, name, colorTag string) (*model.SessionState, *model.Team, error) {
	var team *model.Team
	state, err := c.update(ctx, id, "create_team", func(state *model.SessionState) (*model.SessionState, error) {
		next, t, err := c.engine.CreateTeam(state, name, colorTag)
		team = t
		return next, err
	})
	if err != nil {
		return nil, nil, err
	}
	return state, state.GetTeam(team.ID), nil
}

// AddPlayerToTeam moves a player onto a team
func (c *Controller) AddPlayerToTeam(ctx context.Context, id model.SessionID, playerID model.PlayerID, teamID model.TeamID) (*model.SessionState, error) {
	return c.update(ctx, id, "add_player_to_team", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.AddPlayerToTeam(state, playerID, teamID)
	})
}

// RemovePlayerFromTeam takes a player off their team
func (c *Controller) RemovePlayerFromTeam(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.SessionState, error) {
	return c.update(ctx, id, "remove_player_from_team", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.RemovePlayerFromTeam(state, playerID)
	})
}

// AssignTeamsEvenly splits the players into count new teams
func (c *Controller) AssignTeamsEvenly(ctx context.Context, id model.SessionID, count int) (*model.SessionState, error) {
	return c.update(ctx, id, "assign_teams", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.AssignTeamsEvenly(state, count)
	})
}

// Challenge pool

// AddChallenges merges challenges into the session's pool
func (c *Controller) AddChallenges(ctx context.Context, id model.SessionID, challenges []model.Challenge) (*model.SessionState, error) {
	return c.update(ctx, id, "add_challenges", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.AddChallenges(state, challenges)
	})
}

// ImportChallenges copies catalog challenges into the session's pool.
// No IDs imports the whole catalog.
func (c *Controller) ImportChallenges(ctx context.Context, id model.SessionID, challengeIDs []model.ChallengeID) (*model.SessionState, error) {
	challenges, err := c.catalog.Get(ctx, challengeIDs)
	if err != nil {
		return nil, err
	}
	return c.update(ctx, id, "import_challenges", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.AddChallenges(state, challenges)
	})
}

// Game flow

// StartGame begins the game
func (c *Controller) StartGame(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	return c.update(ctx, id, "start_game", c.engine.StartGame)
}

// SelectChallenge makes the given pool challenge current
func (c *Controller) SelectChallenge(ctx context.Context, id model.SessionID, challengeID model.ChallengeID) (*model.SessionState, error) {
	return c.update(ctx, id, "select_challenge", func(state *model.SessionState) (*model.SessionState, error) {
		challenge := state.GetChallenge(challengeID)
		if challenge == nil {
			return nil, model.ErrChallengeNotFound
		}
		return c.engine.SelectChallenge(state, *challenge)
	})
}

// SelectNextChallenge draws the next challenge from the pool
func (c *Controller) SelectNextChallenge(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	return c.update(ctx, id, "select_next_challenge", c.engine.SelectNextChallenge)
}

// RecordResult applies the outcome of the current challenge
func (c *Controller) RecordResult(ctx context.Context, id model.SessionID, result model.ChallengeResult) (*model.SessionState, error) {
	state, err := c.update(ctx, id, "record_result", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.RecordResult(state, result)
	})
	if err != nil {
		return nil, err
	}

	recorded := state.Results[len(state.Results)-1]
	awarded := 0
	for _, v := range recorded.Awards {
		awarded += v
	}
	c.metrics.ObserveResult(string(recorded.Topology), awarded)
	return state, nil
}

// EndGame finishes the game. The snapshot is deleted; the final state
// remains readable until evicted.
func (c *Controller) EndGame(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	return c.update(ctx, id, "end_game", c.engine.EndGame)
}

// ResetGame returns the session to setup, keeping only its challenge pool
func (c *Controller) ResetGame(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	return c.update(ctx, id, "reset_game", func(state *model.SessionState) (*model.SessionState, error) {
		return c.engine.ResetGame(state), nil
	})
}

// Queries

// CurrentParticipants returns who is playing the current challenge. Between
// challenges it returns the participant whose turn it is.
func (c *Controller) CurrentParticipants(ctx context.Context, id model.SessionID) ([]model.ParticipantRef, error) {
	state, err := c.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(state.CurrentParticipants) > 0 {
		return state.CurrentParticipants, nil
	}
	if !state.Phase.IsActive() || state.RosterSize() == 0 {
		return []model.ParticipantRef{}, nil
	}

	idx := state.CurrentTurnIndex
	if idx < 0 || idx >= state.RosterSize() {
		idx = 0
	}
	if state.IsTeamMode() {
		return []model.ParticipantRef{model.TeamRef(state.Teams[idx].ID)}, nil
	}
	return []model.ParticipantRef{model.PlayerRef(state.Players[idx].ID)}, nil
}

// Standings returns the leaderboard
func (c *Controller) Standings(ctx context.Context, id model.SessionID) ([]scoring.Standing, error) {
	state, err := c.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.scoring.Standings(state), nil
}

// Winners returns everyone sharing the top score
func (c *Controller) Winners(ctx context.Context, id model.SessionID) ([]model.ParticipantRef, error) {
	state, err := c.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.scoring.Winners(c.scoring.Standings(state)), nil
}

// IsFinished reports whether the game is over
func (c *Controller) IsFinished(ctx context.Context, id model.SessionID) (bool, error) {
	state, err := c.GetSession(ctx, id)
	if err != nil {
		return false, err
	}
	return state.Phase == model.PhaseFinished, nil
}

// TimeRemaining returns the time left in a timed game. ok is false for
// games that do not end on time or have not started.
func (c *Controller) TimeRemaining(ctx context.Context, id model.SessionID) (remaining time.Duration, ok bool, err error) {
	state, err := c.GetSession(ctx, id)
	if err != nil {
		return 0, false, err
	}
	if !state.Phase.IsActive() {
		return 0, false, nil
	}
	remaining, ok = c.rotation.TimeRemaining(state)
	return remaining, ok, nil
}

// update runs op against the stored session under its lock and persists the result
func (c *Controller) update(ctx context.Context, id model.SessionID, op string, fn func(*model.SessionState) (*model.SessionState, error)) (*model.SessionState, error) {
	unlock := c.lock(id)
	defer unlock()

	state, err := c.load(ctx, id)
	if err != nil {
		c.metrics.ObserveOperation(op, err)
		return nil, err
	}

	next, err := fn(state)
	if err == nil {
		err = c.persist(ctx, next)
	}
	c.metrics.ObserveOperation(op, err)
	if err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// load restores a session from storage, falling back to recently finished games
func (c *Controller) load(ctx context.Context, id model.SessionID) (*model.SessionState, error) {
	data, err := c.storage.GetSnapshot(ctx, id)
	if errors.Is(err, model.ErrSessionNotFound) {
		if state, ok := c.finished.Get(id); ok {
			return state.Clone(), nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	state, warnings, err := c.codec.Unmarshal(data)
	if err != nil {
		c.logger.Error("failed to restore session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	c.metrics.ObserveMigrationWarnings(len(warnings))
	if len(warnings) == 0 {
		return state, nil
	}

	// Write the repairs back so generated IDs stay stable across reads
	if err := c.persist(ctx, state); err != nil {
		c.logger.Warn("failed to save repaired session",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	return state, nil
}

// persist overwrites the snapshot, or deletes it once the game is finished
func (c *Controller) persist(ctx context.Context, state *model.SessionState) error {
	if state.Phase == model.PhaseFinished {
		if err := c.storage.DeleteSnapshot(ctx, state.ID); err != nil {
			return err
		}
		c.finished.Add(state.ID, state.Clone())
		return nil
	}

	data, err := c.codec.Marshal(state)
	if err != nil {
		return err
	}
	if err := c.storage.SaveSnapshot(ctx, state.ID, data); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(state.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.finished.Remove(state.ID)
	return nil
}

// sessionLock serializes operations on one session. refs counts the
// holder and waiters; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the per-session mutex and returns its release func
func (c *Controller) lock(id model.SessionID) func() {
	c.locksMu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sessionLock{}
		c.locks[id] = l
	}
	l.refs++
	c.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		c.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.locksMu.Unlock()
	}
}
