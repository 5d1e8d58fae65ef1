package scoring

import (
	"maps"
	"slices"
	"sort"

	"github.com/mcoot/partygame/internal/model"
)

// Ledger is the outcome of applying one result. Players and Teams are fresh
// copies; the session state passed in is never modified.
type Ledger struct {
	Players []model.Player
	Teams   []model.Team

	// Awards maps participant ID to the delta actually applied after clamping
	Awards map[string]int

	// QuizTally is the new reconciled tally for a quiz challenge, nil otherwise
	QuizTally map[string]int
}

// Total returns the sum of all applied deltas
func (l *Ledger) Total() int {
	total := 0
	for _, v := range l.Awards {
		total += v
	}
	return total
}

// Standing is one row of a leaderboard
type Standing struct {
	Participant model.ParticipantRef
	Name        string
	Score       int
	Rank        int // 1-based, tied scores share a rank
}

// Service applies results to scores and computes standings
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// ApplyResult computes updated player and team scores for a result of the given challenge.
//
// A completed result with a winner awards the challenge's point value to the winner.
// When the winner is a team, the team and every member player receive the points.
// A quiz challenge that reports Scores is reconciled instead (see Reconcile).
func (s *Service) ApplyResult(state *model.SessionState, result model.ChallengeResult, challenge model.Challenge) (*Ledger, error) {
	if challenge.Quiz && result.Scores != nil {
		return s.Reconcile(state, challenge.ID, result.Scores)
	}

	ledger := newLedger(state)
	if !result.Completed || result.WinnerID == nil {
		return ledger, nil
	}

	winner, ok := state.ResolveParticipant(result.WinnerID.ID)
	if !ok {
		return nil, model.ErrUnknownParticipant
	}
	ledger.apply(winner, challenge.PointValue)
	return ledger, nil
}

// Reconcile applies quiz totals. Each entry in scores is the participant's
// total for the challenge, not a delta: only the difference from the last
// reconciled total for the same challenge is applied, so reconciling the
// same map twice changes nothing the second time. The session clears the
// tally whenever the challenge is selected, so each play starts from zero.
func (s *Service) Reconcile(state *model.SessionState, challengeID model.ChallengeID, scores map[string]int) (*Ledger, error) {
	ledger := newLedger(state)
	previous := state.QuizTallies[challengeID]

	// Validate everything before applying anything
	refs := make(map[string]model.ParticipantRef, len(scores))
	for id := range scores {
		ref, ok := state.ResolveParticipant(id)
		if !ok {
			return nil, model.ErrUnknownParticipant
		}
		refs[id] = ref
	}

	ids := slices.Sorted(maps.Keys(scores))
	for _, id := range ids {
		delta := scores[id] - previous[id]
		if delta != 0 {
			ledger.apply(refs[id], delta)
		}
	}

	ledger.QuizTally = maps.Clone(scores)
	return ledger, nil
}

func newLedger(state *model.SessionState) *Ledger {
	clone := state.Clone()
	return &Ledger{
		Players: clone.Players,
		Teams:   clone.Teams,
		Awards:  map[string]int{},
	}
}

// apply adds delta to the participant, duplicating team deltas onto members
func (l *Ledger) apply(ref model.ParticipantRef, delta int) {
	if ref.IsTeam() {
		for i := range l.Teams {
			if string(l.Teams[i].ID) != ref.ID {
				continue
			}
			l.Awards[ref.ID] += clampAdd(&l.Teams[i].Score, delta)
			for _, member := range l.Teams[i].Members {
				l.applyPlayer(member, delta)
			}
		}
		return
	}
	l.applyPlayer(model.PlayerID(ref.ID), delta)
}

func (l *Ledger) applyPlayer(id model.PlayerID, delta int) {
	for i := range l.Players {
		if l.Players[i].ID == id {
			l.Awards[string(id)] += clampAdd(&l.Players[i].Score, delta)
		}
	}
}

// clampAdd adds delta to score without going below zero and returns the
// change that was actually applied
func clampAdd(score *int, delta int) int {
	old := *score
	*score = max(0, old+delta)
	return *score - old
}

// Standings returns the leaderboard for the active roster: teams in team mode,
// players otherwise
func (s *Service) Standings(state *model.SessionState) []Standing {
	if state.IsTeamMode() {
		return s.TeamStandings(state)
	}
	return s.PlayerStandings(state)
}

// PlayerStandings returns all players sorted by score descending
func (s *Service) PlayerStandings(state *model.SessionState) []Standing {
	rows := make([]Standing, 0, len(state.Players))
	for _, p := range state.Players {
		rows = append(rows, Standing{Participant: model.PlayerRef(p.ID), Name: p.Name, Score: p.Score})
	}
	return rank(rows)
}

// TeamStandings returns all teams sorted by score descending
func (s *Service) TeamStandings(state *model.SessionState) []Standing {
	rows := make([]Standing, 0, len(state.Teams))
	for _, t := range state.Teams {
		rows = append(rows, Standing{Participant: model.TeamRef(t.ID), Name: t.Name, Score: t.Score})
	}
	return rank(rows)
}

// rank sorts by score descending, keeping roster order for ties
func rank(rows []Standing) []Standing {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		if i > 0 && rows[i].Score == rows[i-1].Score {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}
	return rows
}

// Winners returns every participant sharing the top score. Nobody wins
// while the top score is zero.
func (s *Service) Winners(standings []Standing) []model.ParticipantRef {
	var winners []model.ParticipantRef
	for _, row := range standings {
		if row.Rank != 1 || row.Score <= 0 {
			break
		}
		winners = append(winners, row.Participant)
	}
	return winners
}

// DetermineWinner returns the sole winner, or false if there is a tie or no participants
func (s *Service) DetermineWinner(standings []Standing) (model.ParticipantRef, bool) {
	winners := s.Winners(standings)
	if len(winners) != 1 {
		return model.ParticipantRef{}, false
	}
	return winners[0], true
}

// Interface for dependency injection
type ServiceInterface interface {
	ApplyResult(state *model.SessionState, result model.ChallengeResult, challenge model.Challenge) (*Ledger, error)
	Reconcile(state *model.SessionState, challengeID model.ChallengeID, scores map[string]int) (*Ledger, error)
	Standings(state *model.SessionState) []Standing
	PlayerStandings(state *model.SessionState) []Standing
	TeamStandings(state *model.SessionState) []Standing
	Winners(standings []Standing) []model.ParticipantRef
	DetermineWinner(standings []Standing) (model.ParticipantRef, bool)
}

var _ ServiceInterface = (*Service)(nil)
