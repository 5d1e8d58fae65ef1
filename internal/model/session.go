package model

import (
	"maps"
	"slices"
	"time"
)

// SessionID identifies a persisted session
type SessionID string

// Phase represents the current state of a session
type Phase string

const (
	PhaseSetup          Phase = "setup"           // Building rosters, no game running
	PhaseSelecting      Phase = "selecting"       // Active, waiting for the next challenge
	PhaseAwaitingResult Phase = "awaiting_result" // Active, a challenge is being played
	PhaseFinished       Phase = "finished"        // Game over
)

// IsActive returns true while a game is running
func (p Phase) IsActive() bool {
	return p == PhaseSelecting || p == PhaseAwaitingResult
}

// GameMode selects whether teams or individual players take turns
type GameMode string

const (
	GameModeFreeForAll GameMode = "free_for_all"
	GameModeTeams      GameMode = "teams"
)

// DurationMode selects how the end of the game is decided
type DurationMode string

const (
	DurationByChallengeCount DurationMode = "by_challenge_count" // DurationValue is a result count
	DurationByTime           DurationMode = "by_time"            // DurationValue is minutes
)

// SessionState is the aggregate root for one played-through game
type SessionState struct {
	ID    SessionID `json:"id"`
	Phase Phase     `json:"phase"`

	// Configuration
	GameMode      GameMode     `json:"game_mode"`
	DurationMode  DurationMode `json:"duration_mode"`
	DurationValue int          `json:"duration_value"`

	// Turn management
	CurrentRound     int `json:"current_round"`
	CurrentTurnIndex int `json:"current_turn_index"` // Index into Teams or Players depending on GameMode

	Players []Player `json:"players"`
	Teams   []Team   `json:"teams"`

	ChallengePool    []Challenge       `json:"challenge_pool"`
	UsedChallengeIDs []ChallengeID     `json:"used_challenge_ids"` // Ordered set, most recently used last
	Results          []ChallengeResult `json:"results"`

	CurrentChallenge       *Challenge       `json:"current_challenge,omitempty"`
	CurrentParticipants    []ParticipantRef `json:"current_participants"`
	CurrentRepresentatives []PlayerID       `json:"current_representatives,omitempty"`

	// QuizTallies holds the reconciled totals for the current play of each quiz
	// challenge. Selecting a challenge clears its entry.
	QuizTallies map[ChallengeID]map[string]int `json:"quiz_tallies,omitempty"`

	// Timing
	StartedAt time.Time `json:"started_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionState creates an empty session in the setup phase
func NewSessionState(id SessionID, now time.Time) *SessionState {
	return &SessionState{
		ID:                  id,
		Phase:               PhaseSetup,
		GameMode:            GameModeFreeForAll,
		DurationMode:        DurationByChallengeCount,
		Players:             []Player{},
		Teams:               []Team{},
		ChallengePool:       []Challenge{},
		UsedChallengeIDs:    []ChallengeID{},
		Results:             []ChallengeResult{},
		CurrentParticipants: []ParticipantRef{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// IsTeamMode returns true if teams take turns
func (s *SessionState) IsTeamMode() bool {
	return s.GameMode == GameModeTeams
}

// RosterSize returns the size of the collection CurrentTurnIndex points into
func (s *SessionState) RosterSize() int {
	if s.IsTeamMode() {
		return len(s.Teams)
	}
	return len(s.Players)
}

// PlayerIndex returns the index of the player, or -1 if not found
func (s *SessionState) PlayerIndex(id PlayerID) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == id })
}

// TeamIndex returns the index of the team, or -1 if not found
func (s *SessionState) TeamIndex(id TeamID) int {
	return slices.IndexFunc(s.Teams, func(t Team) bool { return t.ID == id })
}

// GetPlayer returns the player with the given ID, or nil if not found
func (s *SessionState) GetPlayer(id PlayerID) *Player {
	if i := s.PlayerIndex(id); i >= 0 {
		return &s.Players[i]
	}
	return nil
}

// GetTeam returns the team with the given ID, or nil if not found
func (s *SessionState) GetTeam(id TeamID) *Team {
	if i := s.TeamIndex(id); i >= 0 {
		return &s.Teams[i]
	}
	return nil
}

// GetChallenge returns the pool challenge with the given ID, or nil if not found
func (s *SessionState) GetChallenge(id ChallengeID) *Challenge {
	for i := range s.ChallengePool {
		if s.ChallengePool[i].ID == id {
			return &s.ChallengePool[i]
		}
	}
	return nil
}

// ResolveParticipant looks up an ID among live players and teams
func (s *SessionState) ResolveParticipant(id string) (ParticipantRef, bool) {
	if s.GetTeam(TeamID(id)) != nil {
		return TeamRef(TeamID(id)), true
	}
	if s.GetPlayer(PlayerID(id)) != nil {
		return PlayerRef(PlayerID(id)), true
	}
	return ParticipantRef{}, false
}

// IsCurrentParticipant reports whether ref plays the current challenge, either
// listed directly or as a member of a listed team
func (s *SessionState) IsCurrentParticipant(ref ParticipantRef) bool {
	if slices.Contains(s.CurrentParticipants, ref) {
		return true
	}
	if ref.IsTeam() {
		return false
	}
	p := s.GetPlayer(PlayerID(ref.ID))
	return p != nil && p.TeamID != nil && slices.Contains(s.CurrentParticipants, TeamRef(*p.TeamID))
}

// IsUsed returns true if the challenge has been selected this session
func (s *SessionState) IsUsed(id ChallengeID) bool {
	return slices.Contains(s.UsedChallengeIDs, id)
}

// MarkUsed moves the challenge to the most-recently-used end of UsedChallengeIDs
func (s *SessionState) MarkUsed(id ChallengeID) {
	s.UsedChallengeIDs = slices.DeleteFunc(s.UsedChallengeIDs, func(u ChallengeID) bool { return u == id })
	s.UsedChallengeIDs = append(s.UsedChallengeIDs, id)
}

// LastUsed returns the most recently selected challenge ID, or "" if none
func (s *SessionState) LastUsed() ChallengeID {
	if len(s.UsedChallengeIDs) == 0 {
		return ""
	}
	return s.UsedChallengeIDs[len(s.UsedChallengeIDs)-1]
}

// Clone returns a deep copy of the session state
func (s *SessionState) Clone() *SessionState {
	c := *s

	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		if p.TeamID != nil {
			teamID := *p.TeamID
			p.TeamID = &teamID
		}
		c.Players[i] = p
	}

	c.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		t.Members = slices.Clone(t.Members)
		if t.Members == nil {
			t.Members = []PlayerID{}
		}
		c.Teams[i] = t
	}

	c.ChallengePool = make([]Challenge, len(s.ChallengePool))
	for i, ch := range s.ChallengePool {
		c.ChallengePool[i] = ch.Clone()
	}

	c.UsedChallengeIDs = append([]ChallengeID{}, s.UsedChallengeIDs...)

	c.Results = make([]ChallengeResult, len(s.Results))
	for i, r := range s.Results {
		c.Results[i] = r.clone()
	}

	if s.CurrentChallenge != nil {
		ch := s.CurrentChallenge.Clone()
		c.CurrentChallenge = &ch
	}
	c.CurrentParticipants = append([]ParticipantRef{}, s.CurrentParticipants...)
	c.CurrentRepresentatives = slices.Clone(s.CurrentRepresentatives)

	if s.QuizTallies != nil {
		c.QuizTallies = make(map[ChallengeID]map[string]int, len(s.QuizTallies))
		for id, tally := range s.QuizTallies {
			c.QuizTallies[id] = maps.Clone(tally)
		}
	}

	return &c
}

func (r ChallengeResult) clone() ChallengeResult {
	if r.WinnerID != nil {
		w := *r.WinnerID
		r.WinnerID = &w
	}
	r.Participants = slices.Clone(r.Participants)
	r.Scores = maps.Clone(r.Scores)
	r.Representatives = slices.Clone(r.Representatives)
	r.Awards = maps.Clone(r.Awards)
	return r
}
