package rotation

import (
	"time"

	"github.com/mcoot/partygame/internal/dependencies/clock"
	"github.com/mcoot/partygame/internal/model"
)

// Advance is the outcome of advancing the turn after a result
type Advance struct {
	NextTurnIndex  int
	NextRound      int
	GameShouldEnd  bool
	RoundCompleted bool
}

// Service advances turns and evaluates end conditions
type Service struct {
	clock clock.Clock
}

// New creates a new rotation Service
func New(clk clock.Clock) *Service {
	return &Service{clock: clk}
}

// AdvanceTurn computes the next turn after a challenge of the given topology.
// Only solo challenges pass the turn on; after any other topology the same
// party keeps it. The round counter increments when the index wraps.
// The state must already include the result just recorded.
func (s *Service) AdvanceTurn(state *model.SessionState, played model.Topology) Advance {
	next := Advance{
		NextTurnIndex: state.CurrentTurnIndex,
		NextRound:     state.CurrentRound,
	}

	size := state.RosterSize()
	if size == 0 {
		next.NextTurnIndex = 0
	} else if played == model.TopologySolo {
		next.NextTurnIndex++
		if next.NextTurnIndex >= size {
			next.NextTurnIndex = 0
			next.NextRound++
			next.RoundCompleted = true
		}
	} else if next.NextTurnIndex >= size {
		// Roster shrank since the turn was assigned
		next.NextTurnIndex = 0
	}

	next.GameShouldEnd = s.ReachedChallengeLimit(state)
	return next
}

// ReachedChallengeLimit returns true once a challenge-count game has recorded
// enough results. A non-positive limit never ends the game.
func (s *Service) ReachedChallengeLimit(state *model.SessionState) bool {
	if state.DurationMode != model.DurationByChallengeCount || state.DurationValue <= 0 {
		return false
	}
	return len(state.Results) >= state.DurationValue
}

// TimeLimit returns the game length for timed games. The timer itself is
// owned by the caller; false means the game is not timed.
func (s *Service) TimeLimit(state *model.SessionState) (time.Duration, bool) {
	if state.DurationMode != model.DurationByTime || state.DurationValue <= 0 {
		return 0, false
	}
	return time.Duration(state.DurationValue) * time.Minute, true
}

// TimeRemaining returns how much of a timed game is left, never negative.
// False means the game is not timed or has not started.
func (s *Service) TimeRemaining(state *model.SessionState) (time.Duration, bool) {
	limit, ok := s.TimeLimit(state)
	if !ok || state.StartedAt.IsZero() {
		return 0, false
	}
	return max(0, limit-clock.Elapsed(s.clock, state.StartedAt)), true
}

// Interface for dependency injection
type ServiceInterface interface {
	AdvanceTurn(state *model.SessionState, played model.Topology) Advance
	ReachedChallengeLimit(state *model.SessionState) bool
	TimeLimit(state *model.SessionState) (time.Duration, bool)
	TimeRemaining(state *model.SessionState) (time.Duration, bool)
}

var _ ServiceInterface = (*Service)(nil)
