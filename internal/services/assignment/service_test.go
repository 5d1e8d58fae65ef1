package assignment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/partygame/internal/dependencies/mocks"
	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random, testutil.NopLogger())
}

func newState(players ...model.PlayerID) *model.SessionState {
	state := model.NewSessionState("session-1", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	for _, id := range players {
		state.Players = append(state.Players, model.NewPlayer(id, string(id)))
	}
	return state
}

func withTeams(state *model.SessionState, teams map[model.TeamID][]model.PlayerID, order ...model.TeamID) *model.SessionState {
	state.GameMode = model.GameModeTeams
	for _, id := range order {
		team := model.NewTeam(id, string(id), "")
		for _, p := range teams[id] {
			team.AddMember(p)
			teamID := id
			state.GetPlayer(p).TeamID = &teamID
		}
		state.Teams = append(state.Teams, team)
	}
	return state
}

func pairwiseResult(players ...model.PlayerID) model.ChallengeResult {
	refs := make([]model.ParticipantRef, 0, len(players))
	for _, p := range players {
		refs = append(refs, model.PlayerRef(p))
	}
	return model.ChallengeResult{ChallengeID: "c", Topology: model.TopologyPairwise, Completed: true, Participants: refs}
}

var (
	solo     = model.Challenge{ID: "solo", Topology: model.TopologySolo, PointValue: 1}
	pairwise = model.Challenge{ID: "duel", Topology: model.TopologyPairwise, PointValue: 1}
	teamwork = model.Challenge{ID: "team", Topology: model.TopologyTeam, PointValue: 1}
	everyone = model.Challenge{ID: "all", Topology: model.TopologyAllVsAll, PointValue: 1}
)

// Solo tests

func (s *ServiceSuite) TestSoloReturnsCurrentPlayer() {
	state := newState("p1", "p2", "p3")
	state.CurrentTurnIndex = 1

	refs, err := s.service.SelectParticipants(state, solo)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.PlayerRef("p2")}, refs)
}

func (s *ServiceSuite) TestSoloReturnsCurrentTeamInTeamMode() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}}, "red", "blue")
	state.CurrentTurnIndex = 1

	refs, err := s.service.SelectParticipants(state, solo)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.TeamRef("blue")}, refs)
}

func (s *ServiceSuite) TestSoloFailsWithEmptyRoster() {
	_, err := s.service.SelectParticipants(newState(), solo)
	s.ErrorIs(err, model.ErrNoCurrentParticipant)
}

func (s *ServiceSuite) TestSoloFailsWithTurnIndexOutOfRange() {
	state := newState("p1", "p2")
	state.CurrentTurnIndex = 5

	_, err := s.service.SelectParticipants(state, solo)
	s.ErrorIs(err, model.ErrNoCurrentParticipant)
}

// Pairwise tests

func (s *ServiceSuite) TestPairwiseTeamModeReturnsAllTeams() {
	state := withTeams(newState("p1", "p2", "p3"),
		map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}, "green": {"p3"}}, "red", "blue", "green")

	refs, err := s.service.SelectParticipants(state, pairwise)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.TeamRef("red"), model.TeamRef("blue"), model.TeamRef("green")}, refs)
}

func (s *ServiceSuite) TestPairwiseTeamModeNeedsTwoTeams() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1", "p2"}}, "red")

	_, err := s.service.SelectParticipants(state, pairwise)
	s.ErrorIs(err, model.ErrInsufficientParticipants)
}

func (s *ServiceSuite) TestPairwiseFreeForAllNeedsTwoPlayers() {
	_, err := s.service.SelectParticipants(newState("p1"), pairwise)
	s.ErrorIs(err, model.ErrInsufficientParticipants)
}

func (s *ServiceSuite) TestPairwiseWithoutHistoryIsDeterministic() {
	state := newState("p1", "p2", "p3")
	state.CurrentTurnIndex = 1
	s.random.QueueFloat(0.99)

	refs, err := s.service.SelectParticipants(state, pairwise)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.PlayerRef("p2"), model.PlayerRef("p1")}, refs)
	s.Equal(0.99, s.random.Float64(), "no random value should have been consumed")
}

func (s *ServiceSuite) TestPairwiseWithTwoPlayersIsDeterministic() {
	state := newState("p1", "p2")
	state.Results = []model.ChallengeResult{pairwiseResult("p1", "p2")}

	refs, err := s.service.SelectParticipants(state, pairwise)
	s.Require().NoError(err)
	s.Equal(model.PlayerRef("p2"), refs[1])
}

// With p1 current and history [p1-p2, p1-p3] the ranking is p4 (never played),
// p2 (less recent), p3, with weights 1, e^-0.5, e^-1.
func (s *ServiceSuite) TestPairwiseRanksLeastRecentFirst() {
	cases := []struct {
		draw     float64
		expected model.PlayerID
	}{
		{0.0, "p4"},
		{0.6, "p2"},
		{0.99, "p3"},
	}

	for _, tc := range cases {
		s.Run(fmt.Sprintf("draw %.2f", tc.draw), func() {
			s.random.Reset()
			s.random.QueueFloat(tc.draw)
			state := newState("p1", "p2", "p3", "p4")
			state.Results = []model.ChallengeResult{pairwiseResult("p1", "p2"), pairwiseResult("p1", "p3")}

			refs, err := s.service.SelectParticipants(state, pairwise)
			s.Require().NoError(err)
			s.Equal(model.PlayerRef(tc.expected), refs[1])
		})
	}
}

// A player who has already faced the current player several times is
// ranked last but stays drawable.
func (s *ServiceSuite) TestPairwiseKeepsRepeatOpponentsEligible() {
	s.random.QueueFloat(0.99)
	state := newState("p1", "p2", "p3")
	state.Results = []model.ChallengeResult{
		pairwiseResult("p1", "p2"),
		pairwiseResult("p1", "p2"),
		pairwiseResult("p1", "p2"),
	}

	refs, err := s.service.SelectParticipants(state, pairwise)
	s.Require().NoError(err)
	s.Equal(model.PlayerRef("p2"), refs[1])
}

func (s *ServiceSuite) TestPairwiseIgnoresNonPairwiseHistory() {
	state := newState("p1", "p2", "p3")
	state.Results = []model.ChallengeResult{{ChallengeID: "solo", Topology: model.TopologySolo, Participants: []model.ParticipantRef{model.PlayerRef("p3")}}}
	s.random.QueueFloat(0.99)

	refs, err := s.service.SelectParticipants(state, pairwise)
	s.Require().NoError(err)
	s.Equal(model.PlayerRef("p2"), refs[1])
}

func (s *ServiceSuite) TestAntiRepeatBias() {
	service := New(random.NewSeeded(20240101), testutil.NopLogger())
	state := newState("p1", "p2", "p3", "p4")

	const selections = 1000
	pairs := map[pairKey]int{}
	for i := 0; i < selections; i++ {
		// A solo challenge between duels moves the turn on
		state.CurrentTurnIndex = i % len(state.Players)

		refs, err := service.SelectParticipants(state, pairwise)
		s.Require().NoError(err)
		s.Require().Len(refs, 2)
		s.NotEqual(refs[0], refs[1])

		pairs[newPairKey(model.PlayerID(refs[0].ID), model.PlayerID(refs[1].ID))]++
		state.Results = append(state.Results, pairwiseResult(model.PlayerID(refs[0].ID), model.PlayerID(refs[1].ID)))
	}

	uniquePairs := 6
	s.Len(pairs, uniquePairs, "every pair should have played")
	for pair, count := range pairs {
		s.Positive(count, "pair %v", pair)
		s.LessOrEqual(count, selections/uniquePairs*3, "pair %v dominates", pair)
	}
}

func (s *ServiceSuite) TestSeededSelectionIsReproducible() {
	run := func() []string {
		service := New(random.NewSeeded(99), testutil.NopLogger())
		state := newState("p1", "p2", "p3", "p4", "p5")
		var picks []string
		for i := 0; i < 50; i++ {
			state.CurrentTurnIndex = i % len(state.Players)
			refs, err := service.SelectParticipants(state, pairwise)
			s.Require().NoError(err)
			picks = append(picks, refs[1].ID)
			state.Results = append(state.Results, pairwiseResult(model.PlayerID(refs[0].ID), model.PlayerID(refs[1].ID)))
		}
		return picks
	}

	s.Equal(run(), run())
}

// Representative tests

func (s *ServiceSuite) TestRepresentativesSingleMemberTeams() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}}, "red", "blue")

	reps, err := s.service.SelectRepresentatives(state, pairwise)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p1", "p2"}, reps)
}

func (s *ServiceSuite) TestRepresentativesAvoidRepeatHeadToHead() {
	state := withTeams(newState("a1", "a2", "b1", "b2"),
		map[model.TeamID][]model.PlayerID{"red": {"a1", "a2"}, "blue": {"b1", "b2"}}, "red", "blue")
	state.Results = []model.ChallengeResult{
		{ChallengeID: "c", Topology: model.TopologyPairwise, Representatives: []model.PlayerID{"a1", "b1"}},
		{ChallengeID: "c", Topology: model.TopologyPairwise, Representatives: []model.PlayerID{"a1", "b1"}},
		{ChallengeID: "c", Topology: model.TopologyPairwise, Representatives: []model.PlayerID{"a2", "b2"}},
	}
	s.random.QueueFloat(0)

	reps, err := s.service.SelectRepresentatives(state, pairwise)
	s.Require().NoError(err)
	// a1 ranks first for red; b2 has never faced a1 so is the only blue candidate
	s.Equal([]model.PlayerID{"a1", "b2"}, reps)
}

func (s *ServiceSuite) TestRepresentativesSkipEmptyTeams() {
	state := withTeams(newState("p1"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {}}, "red", "blue")

	_, err := s.service.SelectRepresentatives(state, pairwise)
	s.ErrorIs(err, model.ErrInsufficientParticipants)
}

func (s *ServiceSuite) TestAssignIncludesRepresentativesInTeamMode() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}}, "red", "blue")

	a, err := s.service.Assign(state, pairwise)
	s.Require().NoError(err)
	s.Len(a.Participants, 2)
	s.Equal([]model.PlayerID{"p1", "p2"}, a.Representatives)
}

func (s *ServiceSuite) TestAssignHasNoRepresentativesInFreeForAll() {
	a, err := s.service.Assign(newState("p1", "p2"), pairwise)
	s.Require().NoError(err)
	s.Nil(a.Representatives)
}

// Team and all-vs-all tests

func (s *ServiceSuite) TestTeamTopologyReturnsAllTeams() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}}, "red", "blue")

	refs, err := s.service.SelectParticipants(state, teamwork)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.TeamRef("red"), model.TeamRef("blue")}, refs)
}

func (s *ServiceSuite) TestTeamTopologyInFreeForAllIsTeamOfOne() {
	state := newState("p1", "p2")
	state.CurrentTurnIndex = 1

	refs, err := s.service.SelectParticipants(state, teamwork)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{model.PlayerRef("p2")}, refs)
}

func (s *ServiceSuite) TestAllVsAllFreeForAll() {
	refs, err := s.service.SelectParticipants(newState("p1", "p2", "p3"), everyone)
	s.Require().NoError(err)
	s.Len(refs, 3)
}

func (s *ServiceSuite) TestAllVsAllTeamModeIncludesTeamsAndPlayers() {
	state := withTeams(newState("p1", "p2"), map[model.TeamID][]model.PlayerID{"red": {"p1"}, "blue": {"p2"}}, "red", "blue")

	refs, err := s.service.SelectParticipants(state, everyone)
	s.Require().NoError(err)
	s.Equal([]model.ParticipantRef{
		model.TeamRef("red"), model.TeamRef("blue"),
		model.PlayerRef("p1"), model.PlayerRef("p2"),
	}, refs)
}

func (s *ServiceSuite) TestAllVsAllNeedsPlayers() {
	_, err := s.service.SelectParticipants(newState(), everyone)
	s.ErrorIs(err, model.ErrInsufficientParticipants)
}

func (s *ServiceSuite) TestInvalidTopology() {
	_, err := s.service.SelectParticipants(newState("p1"), model.Challenge{ID: "x", Topology: "relay"})
	s.ErrorIs(err, model.ErrInvalidTopology)
}
