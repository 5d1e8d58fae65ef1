package model

import "slices"

// TeamID uniquely identifies a team within a session
type TeamID string

// Team groups players in team mode
type Team struct {
	ID       TeamID     `json:"id"`
	Name     string     `json:"name"`
	ColorTag string     `json:"color_tag"`
	Members  []PlayerID `json:"members"` // Ordered, no duplicates
	Score    int        `json:"score"`
}

// NewTeam creates an empty team with a zeroed score
func NewTeam(id TeamID, name, colorTag string) Team {
	return Team{
		ID:       id,
		Name:     name,
		ColorTag: colorTag,
		Members:  []PlayerID{},
	}
}

// HasMember returns true if the player is on this team
func (t *Team) HasMember(playerID PlayerID) bool {
	return slices.Contains(t.Members, playerID)
}

// AddMember appends the player if not already present
func (t *Team) AddMember(playerID PlayerID) {
	if !t.HasMember(playerID) {
		t.Members = append(t.Members, playerID)
	}
}

// RemoveMember removes the player, preserving member order
func (t *Team) RemoveMember(playerID PlayerID) {
	t.Members = slices.DeleteFunc(t.Members, func(id PlayerID) bool {
		return id == playerID
	})
}
