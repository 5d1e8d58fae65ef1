package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/partygame/internal/dependencies/mocks"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/testutil"
)

type CodecTestSuite struct {
	suite.Suite
	codec  *Codec
	random *mocks.MockRandom
	clock  *mocks.MockClock
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecTestSuite))
}

func (s *CodecTestSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.codec = NewCodec(s.random, s.clock, testutil.NopLogger())
}

func (s *CodecTestSuite) activeState() *model.SessionState {
	state := model.NewSessionState("sess-1", s.clock.Now())
	state.Phase = model.PhaseAwaitingResult
	state.GameMode = model.GameModeTeams
	state.DurationValue = 5
	state.StartedAt = s.clock.Now()

	red := model.TeamID("red")
	state.Players = []model.Player{
		{ID: "p1", Name: "Ada", Score: 3, TeamID: &red},
		{ID: "p2", Name: "Bo"},
	}
	state.Teams = []model.Team{
		{ID: red, Name: "Red", ColorTag: "red", Members: []model.PlayerID{"p1"}, Score: 3},
	}
	state.ChallengePool = []model.Challenge{
		{ID: "c1", Title: "Charades", Topology: model.TopologySolo, PointValue: 3,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"charades","seconds":60}`))},
		{ID: "q1", Title: "Trivia", Topology: model.TopologyAllVsAll, Quiz: true,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"trivia","quizType":"multiple"}`))},
	}
	state.UsedChallengeIDs = []model.ChallengeID{"c1", "q1"}
	winner := model.TeamRef(red)
	state.Results = []model.ChallengeResult{{
		ChallengeID:     "c1",
		Topology:        model.TopologySolo,
		Completed:       true,
		WinnerID:        &winner,
		Participants:    []model.ParticipantRef{winner},
		Awards:          map[string]int{"red": 3, "p1": 3},
		TimestampMillis: 1000,
	}}
	current := state.ChallengePool[1].Clone()
	state.CurrentChallenge = &current
	state.CurrentParticipants = []model.ParticipantRef{model.TeamRef(red), model.PlayerRef("p2")}
	state.QuizTallies = map[model.ChallengeID]map[string]int{"q1": {"p2": 1}}
	return state
}

func (s *CodecTestSuite) TestRoundTrip() {
	state := s.activeState()

	data, err := s.codec.Marshal(state)
	s.Require().NoError(err)

	restored, warnings, err := s.codec.Unmarshal(data)
	s.Require().NoError(err)
	s.Empty(warnings)
	s.Equal(state, restored)
}

func (s *CodecTestSuite) TestRoundTripKeepsInterleavedPool() {
	state := s.activeState()
	state.ChallengePool = []model.Challenge{
		state.ChallengePool[1],
		state.ChallengePool[0],
		{ID: "q2", Title: "Lyrics", Topology: model.TopologyAllVsAll, Quiz: true,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"lyrics","quizType":"open"}`))},
		{ID: "c2", Title: "Tug", Topology: model.TopologyPairwise, PointValue: 1,
			Settings: model.NewChallengeSettings(json.RawMessage(`{"type":"tug"}`))},
	}

	data, err := s.codec.Marshal(state)
	s.Require().NoError(err)

	restored, warnings, err := s.codec.Unmarshal(data)
	s.Require().NoError(err)
	s.Empty(warnings)
	s.Equal(state, restored)

	ids := make([]model.ChallengeID, 0, len(restored.ChallengePool))
	for _, ch := range restored.ChallengePool {
		ids = append(ids, ch.ID)
	}
	s.Equal([]model.ChallengeID{"q1", "c1", "q2", "c2"}, ids)
}

func (s *CodecTestSuite) TestSerializeSplitsPools() {
	rec := s.codec.Serialize(s.activeState())

	s.Equal(CurrentVersion, rec.Version)
	s.Require().Len(rec.Challenges, 1)
	s.Require().Len(rec.QuizChallenges, 1)
	s.Equal(model.ChallengeID("c1"), rec.Challenges[0].ID)
	s.Equal(model.ChallengeID("q1"), rec.QuizChallenges[0].ID)
	s.Require().NotNil(rec.QuizChallenges[0].Quiz)
	s.True(*rec.QuizChallenges[0].Quiz)
}

func (s *CodecTestSuite) TestSettingsPreservedVerbatim() {
	data, err := s.codec.Marshal(s.activeState())
	s.Require().NoError(err)

	restored, _, err := s.codec.Unmarshal(data)
	s.Require().NoError(err)
	s.JSONEq(`{"type":"charades","seconds":60}`, string(restored.ChallengePool[0].Settings.Raw))
	s.Equal("charades", restored.ChallengePool[0].Settings.Variant)
}

const legacyRecord = `{
	"id": "old-1",
	"phase": "selecting",
	"game_mode": "free_for_all",
	"duration_mode": "by_challenge_count",
	"duration_value": 10,
	"players": [{"id": "p1", "name": "Ada", "score": 2}],
	"teams": [],
	"challenges": [
		{"id": "c1", "title": "Mime", "topology": "solo", "point_value": 2, "settings": {"type":"mime"}},
		{"title": "Quiz night", "topology": "all_vs_all", "settings": {"type":"trivia","quizType":"buzzer"}},
		{"id": "c1", "title": "Mime again", "topology": "solo"}
	],
	"quiz_challenges": [],
	"used_challenge_ids": ["c1"],
	"results": []
}`

func (s *CodecTestSuite) TestLegacyMigration() {
	s.random.QueueID("backfilled")

	state, warnings, err := s.codec.Unmarshal([]byte(legacyRecord))
	s.Require().NoError(err)

	s.Require().Len(state.ChallengePool, 2)
	s.Equal(model.ChallengeID("c1"), state.ChallengePool[0].ID)
	s.Equal("Mime", state.ChallengePool[0].Title)
	s.False(state.ChallengePool[0].Quiz)

	s.Equal(model.ChallengeID("backfilled"), state.ChallengePool[1].ID)
	s.True(state.ChallengePool[1].Quiz)

	fields := make([]string, 0, len(warnings))
	for _, w := range warnings {
		fields = append(fields, w.Field)
	}
	s.Len(warnings, 3) // backfilled id, relocated quiz, duplicate
	s.Subset(fields, []string{"challenges"})
}

func (s *CodecTestSuite) TestRestoreIsIdempotent() {
	s.random.QueueID("backfilled")

	first, _, err := s.codec.Unmarshal([]byte(legacyRecord))
	s.Require().NoError(err)

	data, err := s.codec.Marshal(first)
	s.Require().NoError(err)

	second, warnings, err := s.codec.Unmarshal(data)
	s.Require().NoError(err)
	s.Empty(warnings)
	s.Equal(first, second)
}

func (s *CodecTestSuite) TestFinishedRestoresFreshSession() {
	state := s.activeState()
	state.Phase = model.PhaseFinished
	state.CurrentChallenge = nil

	data, err := s.codec.Marshal(state)
	s.Require().NoError(err)

	restored, warnings, err := s.codec.Unmarshal(data)
	s.Require().NoError(err)
	s.Len(warnings, 1)
	s.Equal(model.PhaseSetup, restored.Phase)
	s.Equal(state.ID, restored.ID)
	s.Empty(restored.Players)
	s.Empty(restored.Results)
	s.Equal(state.ChallengePool, restored.ChallengePool)
}

func (s *CodecTestSuite) TestRepairsTeamLinks() {
	state := s.activeState()
	blue := model.TeamID("blue")
	state.Players[0].TeamID = nil   // on red's roster but unlinked
	state.Players[1].TeamID = &blue // linked to a team that does not exist
	state.Teams[0].Members = append(state.Teams[0].Members, "ghost")

	restored, warnings, err := s.codec.Deserialize(s.codec.Serialize(state))
	s.Require().NoError(err)
	s.Len(warnings, 3)
	s.Require().NotNil(restored.Players[0].TeamID)
	s.Equal(model.TeamID("red"), *restored.Players[0].TeamID)
	s.Nil(restored.Players[1].TeamID)
	s.Equal([]model.PlayerID{"p1"}, restored.Teams[0].Members)
}

func (s *CodecTestSuite) TestAwaitingWithoutChallengeFallsBackToSelecting() {
	state := s.activeState()
	state.CurrentChallenge = nil

	restored, warnings, err := s.codec.Deserialize(s.codec.Serialize(state))
	s.Require().NoError(err)
	s.Len(warnings, 1)
	s.Equal(model.PhaseSelecting, restored.Phase)
}

func (s *CodecTestSuite) TestTurnIndexOutOfRange() {
	state := s.activeState()
	state.CurrentTurnIndex = 4

	restored, warnings, err := s.codec.Deserialize(s.codec.Serialize(state))
	s.Require().NoError(err)
	s.Len(warnings, 1)
	s.Equal(0, restored.CurrentTurnIndex)
}

func (s *CodecTestSuite) TestDecodeErrors() {
	_, err := Decode([]byte("not json"))
	s.ErrorIs(err, model.ErrInvalidSnapshot)

	_, err = Decode([]byte(`[1, 2]`))
	s.ErrorIs(err, model.ErrInvalidSnapshot)

	_, err = Decode([]byte(`{"version": 99, "id": "x"}`))
	s.ErrorIs(err, model.ErrUnsupportedSnapshotVersion)
}

func (s *CodecTestSuite) TestMissingIDRejected() {
	_, _, err := s.codec.Unmarshal([]byte(`{"version": 2, "phase": "setup"}`))
	s.ErrorIs(err, model.ErrInvalidSnapshot)
}
