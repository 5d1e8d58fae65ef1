package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/scoring"
)

// Player represents a player in API responses
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	TeamID *string `json:"team_id"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	var teamID *string
	if p.TeamID != nil {
		t := string(*p.TeamID)
		teamID = &t
	}
	return Player{
		ID:     string(p.ID),
		Name:   p.Name,
		Score:  p.Score,
		TeamID: teamID,
	}
}

// Team represents a team in API responses
type Team struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ColorTag string   `json:"color_tag"`
	Members  []string `json:"members"`
	Score    int      `json:"score"`
}

// TeamFromModel converts model.Team
func TeamFromModel(t model.Team) Team {
	members := make([]string, len(t.Members))
	for i, m := range t.Members {
		members[i] = string(m)
	}
	return Team{
		ID:       string(t.ID),
		Name:     t.Name,
		ColorTag: t.ColorTag,
		Members:  members,
		Score:    t.Score,
	}
}

// Challenge represents a challenge in API responses. Settings are passed through untouched.
type Challenge struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Topology   string          `json:"topology"`
	PointValue int             `json:"point_value"`
	Reusable   bool            `json:"reusable"`
	Quiz       bool            `json:"quiz"`
	Variant    string          `json:"variant,omitempty"`
	Settings   json.RawMessage `json:"settings,omitempty"`
}

// ChallengeFromModel converts model.Challenge
func ChallengeFromModel(c model.Challenge) Challenge {
	return Challenge{
		ID:         string(c.ID),
		Title:      c.Title,
		Topology:   string(c.Topology),
		PointValue: c.PointValue,
		Reusable:   c.Reusable,
		Quiz:       c.Quiz,
		Variant:    c.Settings.Variant,
		Settings:   c.Settings.Raw,
	}
}

// ChallengesFromModel converts a slice of challenges
func ChallengesFromModel(cs []model.Challenge) []Challenge {
	out := make([]Challenge, len(cs))
	for i, c := range cs {
		out[i] = ChallengeFromModel(c)
	}
	return out
}

// Participant identifies a player or team
type Participant struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// ParticipantFromModel converts model.ParticipantRef
func ParticipantFromModel(p model.ParticipantRef) Participant {
	return Participant{ID: p.ID, Kind: string(p.Kind)}
}

// ParticipantsFromModel converts a slice of participant refs
func ParticipantsFromModel(ps []model.ParticipantRef) []Participant {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = ParticipantFromModel(p)
	}
	return out
}

// Result represents a recorded challenge result
type Result struct {
	ChallengeID     string         `json:"challenge_id"`
	Topology        string         `json:"topology"`
	Completed       bool           `json:"completed"`
	Winner          *Participant   `json:"winner"`
	Participants    []Participant  `json:"participants"`
	Representatives []string       `json:"representatives,omitempty"`
	Scores          map[string]int `json:"scores,omitempty"`
	Awards          map[string]int `json:"awards,omitempty"`
	Timestamp       int64          `json:"timestamp"`
}

// ResultFromModel converts model.ChallengeResult
func ResultFromModel(r model.ChallengeResult) Result {
	var winner *Participant
	if r.WinnerID != nil {
		w := ParticipantFromModel(*r.WinnerID)
		winner = &w
	}
	return Result{
		ChallengeID:     string(r.ChallengeID),
		Topology:        string(r.Topology),
		Completed:       r.Completed,
		Winner:          winner,
		Participants:    ParticipantsFromModel(r.Participants),
		Representatives: playerIDs(r.Representatives),
		Scores:          r.Scores,
		Awards:          r.Awards,
		Timestamp:       r.TimestampMillis,
	}
}

// Session represents the full session state
type Session struct {
	ID                     string        `json:"id"`
	Phase                  string        `json:"phase"`
	GameMode               string        `json:"game_mode"`
	DurationMode           string        `json:"duration_mode"`
	DurationValue          int           `json:"duration_value"`
	CurrentRound           int           `json:"current_round"`
	CurrentTurnIndex       int           `json:"current_turn_index"`
	Players                []Player      `json:"players"`
	Teams                  []Team        `json:"teams"`
	ChallengePool          []Challenge   `json:"challenge_pool"`
	UsedChallengeIDs       []string      `json:"used_challenge_ids"`
	Results                []Result      `json:"results"`
	CurrentChallenge       *Challenge    `json:"current_challenge"`
	CurrentParticipants    []Participant `json:"current_participants"`
	CurrentRepresentatives []string      `json:"current_representatives,omitempty"`
	StartedAt              *time.Time    `json:"started_at"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// SessionFromModel converts model.SessionState
func SessionFromModel(s *model.SessionState) Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}

	teams := make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		teams[i] = TeamFromModel(t)
	}

	used := make([]string, len(s.UsedChallengeIDs))
	for i, id := range s.UsedChallengeIDs {
		used[i] = string(id)
	}

	results := make([]Result, len(s.Results))
	for i, r := range s.Results {
		results[i] = ResultFromModel(r)
	}

	var current *Challenge
	if s.CurrentChallenge != nil {
		c := ChallengeFromModel(*s.CurrentChallenge)
		current = &c
	}

	var startedAt *time.Time
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		startedAt = &t
	}

	return Session{
		ID:                     string(s.ID),
		Phase:                  string(s.Phase),
		GameMode:               string(s.GameMode),
		DurationMode:           string(s.DurationMode),
		DurationValue:          s.DurationValue,
		CurrentRound:           s.CurrentRound,
		CurrentTurnIndex:       s.CurrentTurnIndex,
		Players:                players,
		Teams:                  teams,
		ChallengePool:          ChallengesFromModel(s.ChallengePool),
		UsedChallengeIDs:       used,
		Results:                results,
		CurrentChallenge:       current,
		CurrentParticipants:    ParticipantsFromModel(s.CurrentParticipants),
		CurrentRepresentatives: playerIDs(s.CurrentRepresentatives),
		StartedAt:              startedAt,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// SessionListFromModel converts session IDs
func SessionListFromModel(ids []model.SessionID) SessionList {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return SessionList{Sessions: out}
}

// PlayerCreated is the response for adding a player
type PlayerCreated struct {
	Player  Player  `json:"player"`
	Session Session `json:"session"`
}

// TeamCreated is the response for creating a team
type TeamCreated struct {
	Team    Team    `json:"team"`
	Session Session `json:"session"`
}

// Standing is one leaderboard row
type Standing struct {
	Participant Participant `json:"participant"`
	Name        string      `json:"name"`
	Score       int         `json:"score"`
	Rank        int         `json:"rank"`
}

// Standings is the response for the leaderboard query
type Standings struct {
	Standings            []Standing    `json:"standings"`
	Winners              []Participant `json:"winners"`
	Finished             bool          `json:"finished"`
	TimeRemainingSeconds *int64        `json:"time_remaining_seconds,omitempty"`
}

// StandingsFromModel converts scoring standings and the game status
func StandingsFromModel(rows []scoring.Standing, winners []model.ParticipantRef, finished bool, remaining time.Duration, timed bool) Standings {
	out := make([]Standing, len(rows))
	for i, row := range rows {
		out[i] = Standing{
			Participant: ParticipantFromModel(row.Participant),
			Name:        row.Name,
			Score:       row.Score,
			Rank:        row.Rank,
		}
	}

	var secs *int64
	if timed {
		s := int64(remaining / time.Second)
		secs = &s
	}

	return Standings{
		Standings:            out,
		Winners:              ParticipantsFromModel(winners),
		Finished:             finished,
		TimeRemainingSeconds: secs,
	}
}

// Participants is the response for the current participants query
type Participants struct {
	Participants []Participant `json:"participants"`
}

// Catalog is the response for the challenge catalog
type Catalog struct {
	Challenges []Challenge `json:"challenges"`
}

func playerIDs(ids []model.PlayerID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
