package model

// PlayerID uniquely identifies a player within a session
type PlayerID string

// Player represents a registered participant
type Player struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	Score  int      `json:"score"`
	TeamID *TeamID  `json:"team_id,omitempty"` // nil when not on a team
}

// NewPlayer creates a player with a zeroed score
func NewPlayer(id PlayerID, name string) Player {
	return Player{
		ID:   id,
		Name: name,
	}
}

// OnTeam returns true if the player belongs to the given team
func (p *Player) OnTeam(teamID TeamID) bool {
	return p.TeamID != nil && *p.TeamID == teamID
}
