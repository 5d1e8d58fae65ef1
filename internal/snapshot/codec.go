package snapshot

import (
	"cmp"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/mcoot/partygame/internal/dependencies/clock"
	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/model"
)

// legacyQuizKey marks a quiz challenge in version 1 settings payloads
const legacyQuizKey = "quizType"

// Codec converts sessions to and from persisted records
type Codec struct {
	random random.Random
	clock  clock.Clock
	logger *slog.Logger
}

// NewCodec creates a new Codec
func NewCodec(rnd random.Random, clk clock.Clock, logger *slog.Logger) *Codec {
	return &Codec{
		random: rnd,
		clock:  clk,
		logger: logger.With(slog.String("component", "snapshot-codec")),
	}
}

// Serialize converts a session into a current-version record
func (c *Codec) Serialize(state *model.SessionState) *Record {
	s := state.Clone()
	rec := &Record{
		Version:                CurrentVersion,
		ID:                     s.ID,
		Phase:                  s.Phase,
		GameMode:               s.GameMode,
		DurationMode:           s.DurationMode,
		DurationValue:          s.DurationValue,
		CurrentRound:           s.CurrentRound,
		CurrentTurnIndex:       s.CurrentTurnIndex,
		Players:                s.Players,
		Teams:                  s.Teams,
		Challenges:             []ChallengeRecord{},
		QuizChallenges:         []ChallengeRecord{},
		UsedChallengeIDs:       s.UsedChallengeIDs,
		Results:                s.Results,
		CurrentParticipants:    s.CurrentParticipants,
		CurrentRepresentatives: s.CurrentRepresentatives,
		QuizTallies:            s.QuizTallies,
		StartedAt:              s.StartedAt,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	for i, ch := range s.ChallengePool {
		r := challengeRecord(ch)
		r.Position = &i
		if ch.Quiz {
			rec.QuizChallenges = append(rec.QuizChallenges, r)
		} else {
			rec.Challenges = append(rec.Challenges, r)
		}
	}
	if s.CurrentChallenge != nil {
		cur := challengeRecord(*s.CurrentChallenge)
		rec.CurrentChallenge = &cur
	}
	return rec
}

// Encode writes a record as JSON
func Encode(rec *Record) ([]byte, error) {
	return json.Marshal(rec)
}

// Decode parses a JSON record. A missing version is read as version 1.
func Decode(data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: not a JSON object", model.ErrInvalidSnapshot)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidSnapshot, err)
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	if rec.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", model.ErrUnsupportedSnapshotVersion, rec.Version)
	}
	return &rec, nil
}

// Marshal serializes and encodes a session
func (c *Codec) Marshal(state *model.SessionState) ([]byte, error) {
	return Encode(c.Serialize(state))
}

// Unmarshal decodes and restores a session
func (c *Codec) Unmarshal(data []byte) (*model.SessionState, []model.MigrationWarning, error) {
	rec, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	return c.Deserialize(rec)
}

// Deserialize restores a session from a record, migrating older layouts and
// repairing inconsistencies. Every repair is reported as a warning. A
// finished game restores as a fresh setup session that keeps its challenge pool.
func (c *Codec) Deserialize(rec *Record) (*model.SessionState, []model.MigrationWarning, error) {
	if rec.Version > CurrentVersion {
		return nil, nil, fmt.Errorf("%w: %d", model.ErrUnsupportedSnapshotVersion, rec.Version)
	}
	if rec.ID == "" {
		return nil, nil, fmt.Errorf("%w: missing session id", model.ErrInvalidSnapshot)
	}

	m := &migration{codec: c, legacy: rec.Version < CurrentVersion}
	pool := m.pool(rec.Challenges, rec.QuizChallenges)

	if rec.Phase == model.PhaseFinished {
		fresh := model.NewSessionState(rec.ID, c.clock.Now())
		fresh.ChallengePool = pool
		m.warn("phase", "finished game restored as a new session")
		return fresh, m.finish(rec.ID), nil
	}

	state := &model.SessionState{
		ID:                     rec.ID,
		Phase:                  rec.Phase,
		GameMode:               rec.GameMode,
		DurationMode:           rec.DurationMode,
		DurationValue:          rec.DurationValue,
		CurrentRound:           rec.CurrentRound,
		CurrentTurnIndex:       rec.CurrentTurnIndex,
		Players:                rec.Players,
		Teams:                  rec.Teams,
		ChallengePool:          pool,
		UsedChallengeIDs:       rec.UsedChallengeIDs,
		Results:                rec.Results,
		CurrentParticipants:    rec.CurrentParticipants,
		CurrentRepresentatives: rec.CurrentRepresentatives,
		QuizTallies:            rec.QuizTallies,
		StartedAt:              rec.StartedAt,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}
	if rec.CurrentChallenge != nil {
		cur := m.challenge(*rec.CurrentChallenge, "current_challenge")
		state.CurrentChallenge = &cur
	}

	m.config(state)
	m.roster(state)
	m.turn(state)

	return state.Clone(), m.finish(rec.ID), nil
}

// migration collects warnings while a record is repaired
type migration struct {
	codec    *Codec
	legacy   bool
	warnings []model.MigrationWarning
}

func (m *migration) warn(field, format string, args ...any) {
	m.warnings = append(m.warnings, model.MigrationWarning{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (m *migration) finish(id model.SessionID) []model.MigrationWarning {
	for _, w := range m.warnings {
		m.codec.logger.Warn("snapshot repaired",
			slog.String("session_id", string(id)),
			slog.String("field", w.Field),
			slog.String("message", w.Message),
		)
	}
	return m.warnings
}

// challenge backfills the ID, infers a missing quiz flag and checks the topology
func (m *migration) challenge(r ChallengeRecord, field string) model.Challenge {
	if r.ID == "" {
		r.ID = model.ChallengeID(m.codec.random.NewID())
		m.warn(field, "challenge %q had no id, assigned %s", r.Title, r.ID)
	}
	if r.Quiz == nil {
		quiz := gjson.GetBytes(r.Settings.Raw, legacyQuizKey).Exists()
		r.Quiz = &quiz
		if !m.legacy {
			m.warn(field, "challenge %s had no quiz flag, inferred %t", r.ID, quiz)
		}
	}
	if !r.Topology.IsValid() {
		m.warn(field, "challenge %s had unknown topology %q, using %s", r.ID, r.Topology, model.TopologySolo)
		r.Topology = model.TopologySolo
	}
	return r.challenge()
}

// pool merges both persisted pools into one, moving challenges filed under
// the wrong pool and dropping repeated IDs. The first occurrence wins.
// Recorded positions restore the original interleaving of the two pools.
func (m *migration) pool(challenges, quizChallenges []ChallengeRecord) []model.Challenge {
	type placed struct {
		challenge model.Challenge
		position  *int
	}
	merged := make([]placed, 0, len(challenges)+len(quizChallenges))
	seen := make(map[model.ChallengeID]bool)

	add := func(records []ChallengeRecord, field string, wantQuiz bool) {
		for _, r := range records {
			ch := m.challenge(r, field)
			if ch.Quiz != wantQuiz {
				m.warn(field, "challenge %s relocated to the %s pool", ch.ID, poolName(ch.Quiz))
			}
			if seen[ch.ID] {
				m.warn(field, "duplicate challenge %s dropped", ch.ID)
				continue
			}
			seen[ch.ID] = true
			merged = append(merged, placed{challenge: ch, position: r.Position})
		}
	}
	add(challenges, "challenges", false)
	add(quizChallenges, "quiz_challenges", true)

	positioned := !slices.ContainsFunc(merged, func(p placed) bool { return p.position == nil })
	if positioned {
		slices.SortStableFunc(merged, func(a, b placed) int {
			return cmp.Compare(*a.position, *b.position)
		})
	} else {
		// Legacy layout: regular pool first, quiz pool second
		slices.SortStableFunc(merged, func(a, b placed) int {
			switch {
			case a.challenge.Quiz == b.challenge.Quiz:
				return 0
			case !a.challenge.Quiz:
				return -1
			default:
				return 1
			}
		})
	}

	pool := make([]model.Challenge, len(merged))
	for i, p := range merged {
		pool[i] = p.challenge
	}
	return pool
}

func poolName(quiz bool) string {
	if quiz {
		return "quiz"
	}
	return "regular"
}

func (m *migration) config(state *model.SessionState) {
	switch state.Phase {
	case model.PhaseSetup, model.PhaseSelecting, model.PhaseAwaitingResult:
	default:
		m.warn("phase", "unknown phase %q, using %s", state.Phase, model.PhaseSetup)
		state.Phase = model.PhaseSetup
	}
	if state.GameMode != model.GameModeFreeForAll && state.GameMode != model.GameModeTeams {
		m.warn("game_mode", "unknown game mode %q, using %s", state.GameMode, model.GameModeFreeForAll)
		state.GameMode = model.GameModeFreeForAll
	}
	if state.DurationMode != model.DurationByChallengeCount && state.DurationMode != model.DurationByTime {
		m.warn("duration_mode", "unknown duration mode %q, using %s", state.DurationMode, model.DurationByChallengeCount)
		state.DurationMode = model.DurationByChallengeCount
	}
	if state.DurationValue < 0 {
		m.warn("duration_value", "negative duration %d, using 0", state.DurationValue)
		state.DurationValue = 0
	}

	if state.Players == nil {
		state.Players = []model.Player{}
	}
	if state.Teams == nil {
		state.Teams = []model.Team{}
	}
	if state.UsedChallengeIDs == nil {
		state.UsedChallengeIDs = []model.ChallengeID{}
	}
	if state.Results == nil {
		state.Results = []model.ChallengeResult{}
	}
	if state.CurrentParticipants == nil {
		state.CurrentParticipants = []model.ParticipantRef{}
	}

	if state.Phase == model.PhaseAwaitingResult && state.CurrentChallenge == nil {
		m.warn("current_challenge", "awaiting a result with no current challenge, returning to %s", model.PhaseSelecting)
		state.Phase = model.PhaseSelecting
	}
	if state.Phase != model.PhaseAwaitingResult && state.CurrentChallenge != nil {
		m.warn("current_challenge", "current challenge set outside %s, cleared", model.PhaseAwaitingResult)
		state.CurrentChallenge = nil
		state.CurrentParticipants = []model.ParticipantRef{}
		state.CurrentRepresentatives = nil
	}
}

// roster makes team rosters the source of truth for player team links
func (m *migration) roster(state *model.SessionState) {
	for i := range state.Players {
		if state.Players[i].ID == "" {
			state.Players[i].ID = model.PlayerID(m.codec.random.NewID())
			m.warn("players", "player %q had no id, assigned %s", state.Players[i].Name, state.Players[i].ID)
		}
	}

	owner := make(map[model.PlayerID]model.TeamID)
	for i := range state.Teams {
		team := &state.Teams[i]
		if team.ID == "" {
			team.ID = model.TeamID(m.codec.random.NewID())
			m.warn("teams", "team %q had no id, assigned %s", team.Name, team.ID)
		}
		members := make([]model.PlayerID, 0, len(team.Members))
		for _, pid := range team.Members {
			if state.GetPlayer(pid) == nil {
				m.warn("teams", "team %s listed unknown player %s", team.ID, pid)
				continue
			}
			if prev, ok := owner[pid]; ok {
				m.warn("teams", "player %s listed on teams %s and %s, kept %s", pid, prev, team.ID, prev)
				continue
			}
			owner[pid] = team.ID
			members = append(members, pid)
		}
		team.Members = members
	}

	for i := range state.Players {
		p := &state.Players[i]
		teamID, onTeam := owner[p.ID]
		switch {
		case onTeam && (p.TeamID == nil || *p.TeamID != teamID):
			m.warn("players", "player %s team link set to %s", p.ID, teamID)
			p.TeamID = &teamID
		case !onTeam && p.TeamID != nil:
			m.warn("players", "player %s linked to %s without membership, cleared", p.ID, *p.TeamID)
			p.TeamID = nil
		}
	}
}

func (m *migration) turn(state *model.SessionState) {
	size := state.RosterSize()
	if state.CurrentTurnIndex < 0 || (size > 0 && state.CurrentTurnIndex >= size) {
		m.warn("current_turn_index", "index %d outside roster of %d, using 0", state.CurrentTurnIndex, size)
		state.CurrentTurnIndex = 0
	}
	if state.CurrentRound < 0 {
		m.warn("current_round", "negative round %d, using 0", state.CurrentRound)
		state.CurrentRound = 0
	}
}
