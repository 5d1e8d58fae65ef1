package model

// ParticipantKind distinguishes player and team participants
type ParticipantKind string

const (
	ParticipantPlayer ParticipantKind = "player"
	ParticipantTeam   ParticipantKind = "team"
)

// ParticipantRef identifies a player or a team taking part in a challenge
type ParticipantRef struct {
	ID   string          `json:"id"`
	Kind ParticipantKind `json:"kind"`
}

// PlayerRef builds a ParticipantRef for a player
func PlayerRef(id PlayerID) ParticipantRef {
	return ParticipantRef{ID: string(id), Kind: ParticipantPlayer}
}

// TeamRef builds a ParticipantRef for a team
func TeamRef(id TeamID) ParticipantRef {
	return ParticipantRef{ID: string(id), Kind: ParticipantTeam}
}

// IsTeam returns true if the participant is a team
func (r ParticipantRef) IsTeam() bool {
	return r.Kind == ParticipantTeam
}
