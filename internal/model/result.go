package model

// ChallengeResult records the outcome of one completed or skipped challenge.
// Results are append-only and never modified once recorded.
type ChallengeResult struct {
	ChallengeID  ChallengeID      `json:"challenge_id"`
	Topology     Topology         `json:"topology"`
	Completed    bool             `json:"completed"`
	WinnerID     *ParticipantRef  `json:"winner_id,omitempty"`
	Participants []ParticipantRef `json:"participants"`

	// Scores holds per-participant point totals reported by quiz challenges
	Scores map[string]int `json:"scores,omitempty"`

	// Representatives are the players who actually played a team pairwise
	// challenge, one per team
	Representatives []PlayerID `json:"representatives,omitempty"`

	// Awards are the score deltas the ledger applied for this result, keyed by
	// participant ID (players and teams share the key space)
	Awards map[string]int `json:"awards,omitempty"`

	TimestampMillis int64 `json:"timestamp_millis"`
}

// HasParticipant returns true if the given ID took part in the challenge
func (r *ChallengeResult) HasParticipant(id string) bool {
	for _, p := range r.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// TotalAwarded returns the sum of all applied deltas
func (r *ChallengeResult) TotalAwarded() int {
	total := 0
	for _, v := range r.Awards {
		total += v
	}
	return total
}
