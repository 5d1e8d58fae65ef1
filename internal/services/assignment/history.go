package assignment

import "github.com/mcoot/partygame/internal/model"

// pairKey is an unordered pair of players
type pairKey struct {
	a, b model.PlayerID
}

func newPairKey(x, y model.PlayerID) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// history summarises past pairwise selections from the result log
type history struct {
	total        int                    // Number of results so far
	appearances  int                    // Number of pairwise results seen
	counts       map[model.PlayerID]int // Times selected into any pairwise challenge
	lastIndex    map[model.PlayerID]int // Result index of the most recent pairwise appearance
	perChallenge map[model.PlayerID]int // Times selected for the challenge being assigned
	pairs        map[pairKey]int        // Times two players faced each other
}

// buildHistory scans results for pairwise appearances. Per-challenge counts are
// only tracked for reusable challenges, since a non-reusable one is never repeated.
func buildHistory(results []model.ChallengeResult, challenge model.Challenge) *history {
	h := &history{
		total:        len(results),
		counts:       map[model.PlayerID]int{},
		lastIndex:    map[model.PlayerID]int{},
		perChallenge: map[model.PlayerID]int{},
		pairs:        map[pairKey]int{},
	}

	for i := range results {
		r := &results[i]
		if r.Topology != model.TopologyPairwise {
			continue
		}
		players := pairwisePlayers(r)
		if len(players) == 0 {
			continue
		}
		h.appearances++

		sameChallenge := challenge.Reusable && r.ChallengeID == challenge.ID
		for j, p := range players {
			h.counts[p]++
			h.lastIndex[p] = i
			if sameChallenge {
				h.perChallenge[p]++
			}
			for _, q := range players[j+1:] {
				h.pairs[newPairKey(p, q)]++
			}
		}
	}

	return h
}

// pairwisePlayers returns the players who actually played a pairwise result:
// the team representatives when recorded, otherwise the player participants
func pairwisePlayers(r *model.ChallengeResult) []model.PlayerID {
	if len(r.Representatives) > 0 {
		return r.Representatives
	}
	var players []model.PlayerID
	for _, p := range r.Participants {
		if p.Kind == model.ParticipantPlayer {
			players = append(players, model.PlayerID(p.ID))
		}
	}
	return players
}

// recency is the number of results since the player's last pairwise
// appearance. Players never selected get total+1, above any real value.
func (h *history) recency(p model.PlayerID) int {
	last, ok := h.lastIndex[p]
	if !ok {
		return h.total + 1
	}
	return h.total - last
}

// pairFrequency is how often p has faced any of the given players
func (h *history) pairFrequency(p model.PlayerID, against []model.PlayerID) int {
	total := 0
	for _, q := range against {
		total += h.pairs[newPairKey(p, q)]
	}
	return total
}
