package snapshot

import (
	"time"

	"github.com/mcoot/partygame/internal/model"
)

// CurrentVersion is the record layout written by Encode
const CurrentVersion = 2

// Record is the persisted form of a session. Version 1 records predate the
// explicit quiz flag and the split between the two challenge pools.
type Record struct {
	Version int `json:"version"`

	ID            model.SessionID    `json:"id"`
	Phase         model.Phase        `json:"phase"`
	GameMode      model.GameMode     `json:"game_mode"`
	DurationMode  model.DurationMode `json:"duration_mode"`
	DurationValue int                `json:"duration_value"`

	CurrentRound     int `json:"current_round"`
	CurrentTurnIndex int `json:"current_turn_index"`

	Players []model.Player `json:"players"`
	Teams   []model.Team   `json:"teams"`

	Challenges     []ChallengeRecord `json:"challenges"`
	QuizChallenges []ChallengeRecord `json:"quiz_challenges"`

	UsedChallengeIDs []model.ChallengeID     `json:"used_challenge_ids"`
	Results          []model.ChallengeResult `json:"results"`

	CurrentChallenge       *ChallengeRecord       `json:"current_challenge,omitempty"`
	CurrentParticipants    []model.ParticipantRef `json:"current_participants"`
	CurrentRepresentatives []model.PlayerID       `json:"current_representatives,omitempty"`

	QuizTallies map[model.ChallengeID]map[string]int `json:"quiz_tallies,omitempty"`

	StartedAt time.Time `json:"started_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChallengeRecord is a persisted challenge. Quiz is nil in version 1 records.
// Position is the challenge's index in the session pool; records without one
// keep the regular pool ahead of the quiz pool.
type ChallengeRecord struct {
	ID         model.ChallengeID       `json:"id"`
	Position   *int                    `json:"position,omitempty"`
	Title      string                  `json:"title"`
	Topology   model.Topology          `json:"topology"`
	PointValue int                     `json:"point_value"`
	Reusable   bool                    `json:"reusable"`
	Quiz       *bool                   `json:"quiz,omitempty"`
	Settings   model.ChallengeSettings `json:"settings"`
}

func challengeRecord(c model.Challenge) ChallengeRecord {
	c = c.Clone()
	quiz := c.Quiz
	return ChallengeRecord{
		ID:         c.ID,
		Title:      c.Title,
		Topology:   c.Topology,
		PointValue: c.PointValue,
		Reusable:   c.Reusable,
		Quiz:       &quiz,
		Settings:   c.Settings,
	}
}

func (r ChallengeRecord) challenge() model.Challenge {
	c := model.Challenge{
		ID:         r.ID,
		Title:      r.Title,
		Topology:   r.Topology,
		PointValue: r.PointValue,
		Reusable:   r.Reusable,
		Settings:   r.Settings,
	}
	if r.Quiz != nil {
		c.Quiz = *r.Quiz
	}
	return c.Clone()
}
