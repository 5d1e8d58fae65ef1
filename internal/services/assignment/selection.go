package assignment

import (
	"math"
	"sort"

	"github.com/mcoot/partygame/internal/model"
)

// decayRate controls how quickly selection weight falls off with rank
const decayRate = 0.5

// scoredCandidate is a candidate with its anti-repeat score
type scoredCandidate struct {
	id    model.PlayerID
	score float64
}

// candidateScore favours players who were picked rarely, long ago, and
// seldom for this particular challenge. Recency counts double.
func candidateScore(h *history, p model.PlayerID, maxRecency int) float64 {
	count := float64(h.counts[p])
	perChallenge := float64(h.perChallenge[p])
	recency := float64(h.recency(p)) / float64(maxRecency)
	return 1/(count+1) + 2*recency + 1/(perChallenge+1)
}

// weightedPick draws one candidate. Candidates are ranked by score and the
// candidate at rank i gets weight exp(-0.5*i), so every candidate keeps a
// non-zero chance. With a single candidate, or no pairwise history for any
// candidate, the first candidate is returned without drawing.
func (s *Service) weightedPick(candidates []model.PlayerID, h *history) model.PlayerID {
	if len(candidates) == 1 || !h.involvesAny(candidates) {
		return candidates[0]
	}

	maxRecency := 1
	for _, c := range candidates {
		maxRecency = max(maxRecency, h.recency(c))
	}

	scored := make([]scoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = scoredCandidate{id: c, score: candidateScore(h, c, maxRecency)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	weights := make([]float64, len(scored))
	total := 0.0
	for i := range scored {
		weights[i] = math.Exp(-decayRate * float64(i))
		total += weights[i]
	}

	target := s.random.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return scored[i].id
		}
	}
	// Float rounding can leave target at the very top of the range
	return scored[len(scored)-1].id
}

// leastPaired keeps the candidates that have faced the already-selected
// players least often
func leastPaired(candidates, selected []model.PlayerID, h *history) []model.PlayerID {
	if len(selected) == 0 {
		return candidates
	}

	best := math.MaxInt
	var result []model.PlayerID
	for _, c := range candidates {
		freq := h.pairFrequency(c, selected)
		switch {
		case freq < best:
			best = freq
			result = []model.PlayerID{c}
		case freq == best:
			result = append(result, c)
		}
	}
	return result
}

// involvesAny returns true if any candidate has a pairwise appearance
func (h *history) involvesAny(candidates []model.PlayerID) bool {
	for _, c := range candidates {
		if h.counts[c] > 0 {
			return true
		}
	}
	return false
}
