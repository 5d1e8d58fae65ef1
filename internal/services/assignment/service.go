package assignment

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/model"
)

// Assignment is the outcome of assigning a challenge
type Assignment struct {
	// Participants is the authoritative participant list
	Participants []model.ParticipantRef

	// Representatives holds one player per team for team-mode pairwise
	// challenges, nil otherwise
	Representatives []model.PlayerID
}

// Service decides who takes part in a challenge
type Service struct {
	random random.Random
	logger *slog.Logger
}

// New creates a new assignment Service
func New(rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: rnd,
		logger: logger.With(slog.String("component", "assignment-service")),
	}
}

// Assign selects the participants for a challenge and, for team-mode pairwise
// challenges, the representative player of each team. The state is not modified.
func (s *Service) Assign(state *model.SessionState, challenge model.Challenge) (*Assignment, error) {
	participants, err := s.SelectParticipants(state, challenge)
	if err != nil {
		return nil, err
	}

	result := &Assignment{Participants: participants}
	if state.IsTeamMode() && challenge.Topology == model.TopologyPairwise {
		reps, err := s.SelectRepresentatives(state, challenge)
		if err != nil {
			return nil, err
		}
		result.Representatives = reps
	}
	return result, nil
}

// SelectParticipants returns the participants required by the challenge topology
func (s *Service) SelectParticipants(state *model.SessionState, challenge model.Challenge) ([]model.ParticipantRef, error) {
	switch challenge.Topology {
	case model.TopologySolo:
		current, err := s.CurrentParticipant(state)
		if err != nil {
			return nil, err
		}
		return []model.ParticipantRef{current}, nil

	case model.TopologyPairwise:
		if state.IsTeamMode() {
			if len(state.Teams) < 2 {
				return nil, insufficient(challenge.Topology, 2, len(state.Teams), "teams")
			}
			return allTeams(state), nil
		}
		return s.selectOpponents(state, challenge)

	case model.TopologyTeam:
		if state.IsTeamMode() {
			if len(state.Teams) < 2 {
				return nil, insufficient(challenge.Topology, 2, len(state.Teams), "teams")
			}
			return allTeams(state), nil
		}
		// A lone player stands in as a team of one
		current, err := s.CurrentParticipant(state)
		if err != nil {
			return nil, err
		}
		return []model.ParticipantRef{current}, nil

	case model.TopologyAllVsAll:
		if len(state.Players) == 0 {
			return nil, insufficient(challenge.Topology, 1, 0, "players")
		}
		var refs []model.ParticipantRef
		if state.IsTeamMode() {
			refs = allTeams(state)
		}
		for _, p := range state.Players {
			refs = append(refs, model.PlayerRef(p.ID))
		}
		return refs, nil

	default:
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidTopology, challenge.Topology)
	}
}

// CurrentParticipant returns the team (team mode) or player whose turn it is
func (s *Service) CurrentParticipant(state *model.SessionState) (model.ParticipantRef, error) {
	size := state.RosterSize()
	if size == 0 {
		return model.ParticipantRef{}, fmt.Errorf("%w: roster is empty", model.ErrNoCurrentParticipant)
	}
	idx := state.CurrentTurnIndex
	if idx < 0 || idx >= size {
		return model.ParticipantRef{}, fmt.Errorf("%w: turn index %d out of range [0, %d)", model.ErrNoCurrentParticipant, idx, size)
	}
	if state.IsTeamMode() {
		return model.TeamRef(state.Teams[idx].ID), nil
	}
	return model.PlayerRef(state.Players[idx].ID), nil
}

// selectOpponents returns the current player and one weighted-random opponent
func (s *Service) selectOpponents(state *model.SessionState, challenge model.Challenge) ([]model.ParticipantRef, error) {
	if len(state.Players) < 2 {
		return nil, insufficient(challenge.Topology, 2, len(state.Players), "players")
	}
	current, err := s.CurrentParticipant(state)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.PlayerID, 0, len(state.Players)-1)
	for _, p := range state.Players {
		if string(p.ID) != current.ID {
			candidates = append(candidates, p.ID)
		}
	}

	h := buildHistory(state.Results, challenge)
	opponent := s.weightedPick(candidates, h)

	s.logger.Debug("opponent selected",
		slog.String("player_id", current.ID),
		slog.String("opponent_id", string(opponent)),
		slog.Int("candidates", len(candidates)),
	)

	return []model.ParticipantRef{current, model.PlayerRef(opponent)}, nil
}

// SelectRepresentatives picks the player who plays for each team in a
// team-mode pairwise challenge. Single-member teams always send that member.
// Larger teams draw with the anti-repeat weighting, restricted to the members
// who have faced the already-chosen representatives least often.
func (s *Service) SelectRepresentatives(state *model.SessionState, challenge model.Challenge) ([]model.PlayerID, error) {
	h := buildHistory(state.Results, challenge)

	var selected []model.PlayerID
	for _, team := range state.Teams {
		members := liveMembers(state, team)
		switch len(members) {
		case 0:
			continue
		case 1:
			selected = append(selected, members[0])
		default:
			candidates := leastPaired(members, selected, h)
			selected = append(selected, s.weightedPick(candidates, h))
		}
	}

	if len(selected) < 2 {
		return nil, insufficient(challenge.Topology, 2, len(selected), "teams with players")
	}
	return selected, nil
}

func liveMembers(state *model.SessionState, team model.Team) []model.PlayerID {
	members := make([]model.PlayerID, 0, len(team.Members))
	for _, id := range team.Members {
		if state.GetPlayer(id) != nil {
			members = append(members, id)
		}
	}
	return members
}

func allTeams(state *model.SessionState) []model.ParticipantRef {
	refs := make([]model.ParticipantRef, 0, len(state.Teams))
	for _, t := range state.Teams {
		refs = append(refs, model.TeamRef(t.ID))
	}
	return refs
}

func insufficient(topology model.Topology, required, available int, what string) error {
	return fmt.Errorf("%w: %s challenge needs %d %s, have %d",
		model.ErrInsufficientParticipants, topology, required, what, available)
}

// Interface for dependency injection
type ServiceInterface interface {
	Assign(state *model.SessionState, challenge model.Challenge) (*Assignment, error)
	SelectParticipants(state *model.SessionState, challenge model.Challenge) ([]model.ParticipantRef, error)
	SelectRepresentatives(state *model.SessionState, challenge model.Challenge) ([]model.PlayerID, error)
	CurrentParticipant(state *model.SessionState) (model.ParticipantRef, error)
}

var _ ServiceInterface = (*Service)(nil)
