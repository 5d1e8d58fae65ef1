package request

import (
	"encoding/json"

	"github.com/mcoot/partygame/internal/model"
)

// ConfigureRequest is the request body for configuring a session
type ConfigureRequest struct {
	GameMode      string `json:"game_mode"`
	DurationMode  string `json:"duration_mode"`
	DurationValue int    `json:"duration_value"`
}

// AddPlayerRequest is the request body for adding a player
type AddPlayerRequest struct {
	Name string `json:"name"`
}

// CreateTeamRequest is the request body for creating a team
type CreateTeamRequest struct {
	Name     string `json:"name"`
	ColorTag string `json:"color_tag,omitempty"`
}

// SetTeamRequest is the request body for moving a player onto a team
type SetTeamRequest struct {
	TeamID string `json:"team_id"`
}

// AssignTeamsRequest is the request body for splitting players into teams
type AssignTeamsRequest struct {
	Count int `json:"count"`
}

// Challenge is a challenge definition in request bodies
type Challenge struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	Topology   string          `json:"topology"`
	PointValue int             `json:"point_value"`
	Reusable   bool            `json:"reusable"`
	Quiz       bool            `json:"quiz"`
	Settings   json.RawMessage `json:"settings,omitempty"`
}

// ToModel converts the request challenge to a model.Challenge
func (c Challenge) ToModel() model.Challenge {
	return model.Challenge{
		ID:         model.ChallengeID(c.ID),
		Title:      c.Title,
		Topology:   model.Topology(c.Topology),
		PointValue: c.PointValue,
		Reusable:   c.Reusable,
		Quiz:       c.Quiz,
		Settings:   model.NewChallengeSettings(c.Settings),
	}
}

// ChallengesRequest is the request body for adding challenges to a session or the catalog
type ChallengesRequest struct {
	Challenges []Challenge `json:"challenges"`
}

// ToModel converts every challenge in the request
func (r ChallengesRequest) ToModel() []model.Challenge {
	challenges := make([]model.Challenge, len(r.Challenges))
	for i, c := range r.Challenges {
		challenges[i] = c.ToModel()
	}
	return challenges
}

// ImportChallengesRequest is the request body for copying catalog challenges into a session.
// No IDs imports the whole catalog.
type ImportChallengesRequest struct {
	ChallengeIDs []string `json:"challenge_ids,omitempty"`
}

// SelectChallengeRequest is the request body for selecting a challenge.
// An empty ID draws the next challenge from the pool.
type SelectChallengeRequest struct {
	ChallengeID string `json:"challenge_id,omitempty"`
}

// RecordResultRequest is the request body for recording a challenge result
type RecordResultRequest struct {
	ChallengeID string         `json:"challenge_id,omitempty"`
	Completed   bool           `json:"completed"`
	WinnerID    string         `json:"winner_id,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`
}

// ToModel converts the request to a model.ChallengeResult. The winner's
// kind is resolved by the engine.
func (r RecordResultRequest) ToModel() model.ChallengeResult {
	result := model.ChallengeResult{
		ChallengeID: model.ChallengeID(r.ChallengeID),
		Completed:   r.Completed,
		Scores:      r.Scores,
	}
	if r.WinnerID != "" {
		result.WinnerID = &model.ParticipantRef{ID: r.WinnerID}
	}
	return result
}
