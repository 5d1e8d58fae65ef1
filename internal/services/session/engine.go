package session

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/mcoot/partygame/internal/dependencies/clock"
	"github.com/mcoot/partygame/internal/dependencies/random"
	"github.com/mcoot/partygame/internal/model"
	"github.com/mcoot/partygame/internal/services/assignment"
	"github.com/mcoot/partygame/internal/services/rotation"
	"github.com/mcoot/partygame/internal/services/scoring"
)

// teamColors is the palette handed out to generated teams
var teamColors = []string{"red", "blue", "green", "yellow", "purple", "orange", "pink", "teal"}

// Engine implements the session state machine. Every operation takes the
// current state and returns a new one; the input is never modified, so a
// failed operation leaves the caller's state exactly as it was.
type Engine struct {
	assignment *assignment.Service
	scoring    *scoring.Service
	rotation   *rotation.Service
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(
	assignmentService *assignment.Service,
	scoringService *scoring.Service,
	rotationService *rotation.Service,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		assignment: assignmentService,
		scoring:    scoringService,
		rotation:   rotationService,
		clock:      clk,
		random:     rnd,
		logger:     logger.With(slog.String("component", "session-engine")),
	}
}

// NewSession creates an empty session in the setup phase.
// An empty id gets a generated one.
func (e *Engine) NewSession(id model.SessionID) *model.SessionState {
	if id == "" {
		id = model.SessionID(e.random.NewID())
	}
	return model.NewSessionState(id, e.clock.Now())
}

// Configure sets the game mode and duration
func (e *Engine) Configure(state *model.SessionState, mode model.GameMode, durationMode model.DurationMode, durationValue int) (*model.SessionState, error) {
	if err := requirePhase(state, "configure", model.PhaseSetup); err != nil {
		return nil, err
	}
	if mode != model.GameModeFreeForAll && mode != model.GameModeTeams {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidGameMode, mode)
	}
	if durationMode != model.DurationByChallengeCount && durationMode != model.DurationByTime {
		return nil, fmt.Errorf("%w: unknown mode %q", model.ErrInvalidDuration, durationMode)
	}
	if durationValue < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", model.ErrInvalidDuration)
	}

	next := e.mutate(state)
	next.GameMode = mode
	next.DurationMode = durationMode
	next.DurationValue = durationValue
	return next, nil
}

// Roster operations

// AddPlayer registers a new player
func (e *Engine) AddPlayer(state *model.SessionState, name string) (*model.SessionState, *model.Player, error) {
	if err := requirePhase(state, "add_player", model.PhaseSetup, model.PhaseSelecting); err != nil {
		return nil, nil, err
	}

	next := e.mutate(state)
	player := model.NewPlayer(model.PlayerID(e.random.NewID()), strings.TrimSpace(name))
	next.Players = append(next.Players, player)
	return next, &next.Players[len(next.Players)-1], nil
}

// RemovePlayer deletes a player and removes them from any team roster
func (e *Engine) RemovePlayer(state *model.SessionState, playerID model.PlayerID) (*model.SessionState, error) {
	if err := requirePhase(state, "remove_player", model.PhaseSetup, model.PhaseSelecting); err != nil {
		return nil, err
	}
	idx := state.PlayerIndex(playerID)
	if idx < 0 {
		return nil, model.ErrPlayerNotFound
	}

	next := e.mutate(state)
	next.Players = slices.Delete(next.Players, idx, idx+1)
	for i := range next.Teams {
		next.Teams[i].RemoveMember(playerID)
	}

	if !next.IsTeamMode() {
		next.CurrentTurnIndex = shiftTurnIndex(next.CurrentTurnIndex, idx, len(next.Players))
	}
	return next, nil
}

// CreateTeam adds an empty team
func (e *Engine) CreateTeam(state *model.SessionState, name, colorTag string) (*model.SessionState, *model.Team, error) {
	if err := requirePhase(state, "create_team", model.PhaseSetup, model.PhaseSelecting); err != nil {
		return nil, nil, err
	}

	next := e.mutate(state)
	if colorTag == "" {
		colorTag = teamColors[len(next.Teams)%len(teamColors)]
	}
	team := model.NewTeam(model.TeamID(e.random.NewID()), strings.TrimSpace(name), colorTag)
	next.Teams = append(next.Teams, team)
	return next, &next.Teams[len(next.Teams)-1], nil
}

// AddPlayerToTeam moves a player onto a team, leaving any previous team
func (e *Engine) AddPlayerToTeam(state *model.SessionState, playerID model.PlayerID, teamID model.TeamID) (*model.SessionState, error) {
	if err := requirePhase(state, "add_player_to_team", model.PhaseSetup, model.PhaseSelecting); err != nil {
		return nil, err
	}
	if state.GetPlayer(playerID) == nil {
		return nil, model.ErrPlayerNotFound
	}
	if state.GetTeam(teamID) == nil {
		return nil, model.ErrTeamNotFound
	}

	next := e.mutate(state)
	for i := range next.Teams {
		next.Teams[i].RemoveMember(playerID)
	}
	next.GetTeam(teamID).AddMember(playerID)
	next.GetPlayer(playerID).TeamID = &teamID
	return next, nil
}

// RemovePlayerFromTeam takes a player off whatever team they are on
func (e *Engine) RemovePlayerFromTeam(state *model.SessionState, playerID model.PlayerID) (*model.SessionState, error) {
	if err := requirePhase(state, "remove_player_from_team", model.PhaseSetup, model.PhaseSelecting); err != nil {
		return nil, err
	}
	if state.GetPlayer(playerID) == nil {
		return nil, model.ErrPlayerNotFound
	}

	next := e.mutate(state)
	for i := range next.Teams {
		next.Teams[i].RemoveMember(playerID)
	}
	next.GetPlayer(playerID).TeamID = nil
	return next, nil
}

// AssignTeamsEvenly replaces all teams with count new teams and deals the
// shuffled players onto them in turn
func (e *Engine) AssignTeamsEvenly(state *model.SessionState, count int) (*model.SessionState, error) {
	if err := requirePhase(state, "assign_teams", model.PhaseSetup); err != nil {
		return nil, err
	}
	if count < 1 || count > len(state.Players) {
		return nil, fmt.Errorf("%w: cannot split %d players into %d teams",
			model.ErrInsufficientParticipants, len(state.Players), count)
	}

	next := e.mutate(state)
	next.Teams = make([]model.Team, 0, count)
	for i := 0; i < count; i++ {
		team := model.NewTeam(
			model.TeamID(e.random.NewID()),
			fmt.Sprintf("Team %d", i+1),
			teamColors[i%len(teamColors)],
		)
		next.Teams = append(next.Teams, team)
	}

	order := make([]int, len(next.Players))
	for i := range order {
		order[i] = i
	}
	for i := len(order) - 1; i > 0; i-- {
		j := e.random.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	for n, idx := range order {
		team := &next.Teams[n%count]
		player := &next.Players[idx]
		team.AddMember(player.ID)
		teamID := team.ID
		player.TeamID = &teamID
	}
	next.CurrentTurnIndex = 0
	return next, nil
}

// AddChallenges merges challenges pushed from a catalog into the pool.
// An entry with an existing ID replaces it; settings are kept verbatim.
func (e *Engine) AddChallenges(state *model.SessionState, challenges []model.Challenge) (*model.SessionState, error) {
	for _, c := range challenges {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: challenge without id", model.ErrChallengeNotFound)
		}
		if !c.Topology.IsValid() {
			return nil, fmt.Errorf("%w: %q on challenge %s", model.ErrInvalidTopology, c.Topology, c.ID)
		}
	}

	next := e.mutate(state)
	for _, c := range challenges {
		if existing := next.GetChallenge(c.ID); existing != nil {
			*existing = c.Clone()
			continue
		}
		next.ChallengePool = append(next.ChallengePool, c.Clone())
	}
	return next, nil
}

// Game flow

// StartGame begins a game with the current rosters. Counters, history and
// scores are reset; rosters and the challenge pool are kept.
func (e *Engine) StartGame(state *model.SessionState) (*model.SessionState, error) {
	if err := requirePhase(state, "start_game", model.PhaseSetup); err != nil {
		return nil, err
	}
	if len(state.Players) == 0 {
		return nil, fmt.Errorf("%w: at least one player is required", model.ErrInsufficientParticipants)
	}
	if state.IsTeamMode() && len(state.Teams) == 0 {
		return nil, fmt.Errorf("%w: team mode requires at least one team", model.ErrInsufficientParticipants)
	}

	next := e.mutate(state)
	next.Phase = model.PhaseSelecting
	next.CurrentRound = 0
	next.CurrentTurnIndex = 0
	next.Results = []model.ChallengeResult{}
	next.UsedChallengeIDs = []model.ChallengeID{}
	next.QuizTallies = nil
	next.CurrentChallenge = nil
	next.CurrentParticipants = []model.ParticipantRef{}
	next.CurrentRepresentatives = nil
	for i := range next.Players {
		next.Players[i].Score = 0
	}
	for i := range next.Teams {
		next.Teams[i].Score = 0
	}
	next.StartedAt = next.UpdatedAt

	e.logger.Info("game started",
		slog.String("session_id", string(next.ID)),
		slog.String("game_mode", string(next.GameMode)),
		slog.Int("player_count", len(next.Players)),
		slog.Int("team_count", len(next.Teams)),
	)
	return next, nil
}

// SelectChallenge makes the challenge current and assigns its participants.
// If assignment fails nothing changes.
func (e *Engine) SelectChallenge(state *model.SessionState, challenge model.Challenge) (*model.SessionState, error) {
	if err := requirePhase(state, "select_challenge", model.PhaseSelecting); err != nil {
		return nil, err
	}
	if !challenge.Reusable && state.IsUsed(challenge.ID) {
		return nil, fmt.Errorf("%w: %s", model.ErrChallengeAlreadyUsed, challenge.ID)
	}

	next := e.mutate(state)
	assigned, err := e.assignment.Assign(next, challenge)
	if errors.Is(err, model.ErrNoCurrentParticipant) && next.RosterSize() > 0 {
		e.logger.Warn("turn index out of range, falling back to first participant",
			slog.String("session_id", string(next.ID)),
			slog.Int("turn_index", next.CurrentTurnIndex),
			slog.Int("roster_size", next.RosterSize()),
		)
		next.CurrentTurnIndex = 0
		assigned, err = e.assignment.Assign(next, challenge)
	}
	if err != nil {
		return nil, err
	}

	current := challenge.Clone()
	next.CurrentChallenge = &current
	next.CurrentParticipants = assigned.Participants
	next.CurrentRepresentatives = assigned.Representatives
	next.MarkUsed(challenge.ID)
	delete(next.QuizTallies, challenge.ID)
	next.Phase = model.PhaseAwaitingResult

	e.logger.Info("challenge selected",
		slog.String("session_id", string(next.ID)),
		slog.String("challenge_id", string(challenge.ID)),
		slog.String("topology", string(challenge.Topology)),
		slog.Int("participant_count", len(assigned.Participants)),
	)
	return next, nil
}

// SelectNextChallenge draws a challenge from the pool and selects it.
// Used non-reusable challenges are skipped, and the most recently used
// reusable challenge is avoided while anything else is eligible.
func (e *Engine) SelectNextChallenge(state *model.SessionState) (*model.SessionState, error) {
	if err := requirePhase(state, "select_challenge", model.PhaseSelecting); err != nil {
		return nil, err
	}

	var eligible []model.Challenge
	for _, c := range state.ChallengePool {
		if c.Reusable || !state.IsUsed(c.ID) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) > 1 {
		last := state.LastUsed()
		fresh := slices.DeleteFunc(slices.Clone(eligible), func(c model.Challenge) bool { return c.ID == last })
		if len(fresh) > 0 {
			eligible = fresh
		}
	}
	if len(eligible) == 0 {
		return nil, model.ErrChallengePoolExhausted
	}

	return e.SelectChallenge(state, eligible[e.random.Intn(len(eligible))])
}

// RecordResult applies a result for the current challenge, appends it to the
// history and advances the turn. The game finishes when the challenge limit is reached.
func (e *Engine) RecordResult(state *model.SessionState, result model.ChallengeResult) (*model.SessionState, error) {
	if err := requirePhase(state, "record_result", model.PhaseAwaitingResult); err != nil {
		return nil, err
	}
	if state.CurrentChallenge == nil {
		return nil, model.NewInvalidTransition("record_result", state.Phase)
	}
	current := *state.CurrentChallenge
	if result.ChallengeID == "" {
		result.ChallengeID = current.ID
	}
	if result.ChallengeID != current.ID {
		return nil, fmt.Errorf("%w: got %s, current is %s", model.ErrResultMismatch, result.ChallengeID, current.ID)
	}

	result = e.normalizeResult(state, result, current)
	if result.WinnerID != nil {
		ref, err := resolvePlaying(state, result.WinnerID.ID, "winner")
		if err != nil {
			return nil, err
		}
		result.WinnerID = &ref
	}
	if current.Quiz {
		for _, id := range slices.Sorted(maps.Keys(result.Scores)) {
			if _, err := resolvePlaying(state, id, "score for"); err != nil {
				return nil, err
			}
		}
	}

	ledger, err := e.scoring.ApplyResult(state, result, current)
	if err != nil {
		return nil, err
	}

	next := e.mutate(state)
	next.Players = ledger.Players
	next.Teams = ledger.Teams
	if len(ledger.Awards) > 0 {
		result.Awards = ledger.Awards
	}
	if ledger.QuizTally != nil {
		if next.QuizTallies == nil {
			next.QuizTallies = map[model.ChallengeID]map[string]int{}
		}
		next.QuizTallies[current.ID] = ledger.QuizTally
	}
	next.Results = append(next.Results, result)
	next.CurrentChallenge = nil
	next.CurrentParticipants = []model.ParticipantRef{}
	next.CurrentRepresentatives = nil

	advance := e.rotation.AdvanceTurn(next, current.Topology)
	next.CurrentTurnIndex = advance.NextTurnIndex
	next.CurrentRound = advance.NextRound
	next.Phase = model.PhaseSelecting

	e.logger.Info("result recorded",
		slog.String("session_id", string(next.ID)),
		slog.String("challenge_id", string(current.ID)),
		slog.Bool("completed", result.Completed),
		slog.Int("awarded", ledger.Total()),
		slog.Int("round", next.CurrentRound),
	)

	if advance.GameShouldEnd {
		next.Phase = model.PhaseFinished
		e.logger.Info("game finished",
			slog.String("session_id", string(next.ID)),
			slog.Int("results", len(next.Results)),
		)
	}
	return next, nil
}

// resolvePlaying looks up a participant named in a result and checks that it
// plays the current challenge
func resolvePlaying(state *model.SessionState, id, role string) (model.ParticipantRef, error) {
	ref, ok := state.ResolveParticipant(id)
	if !ok {
		return model.ParticipantRef{}, fmt.Errorf("%w: %s %s", model.ErrUnknownParticipant, role, id)
	}
	if !state.IsCurrentParticipant(ref) {
		return model.ParticipantRef{}, fmt.Errorf("%w: %s %s", model.ErrNotParticipating, role, id)
	}
	return ref, nil
}

// normalizeResult copies caller-owned data and fills fields the caller may omit
func (e *Engine) normalizeResult(state *model.SessionState, result model.ChallengeResult, current model.Challenge) model.ChallengeResult {
	result.Topology = current.Topology
	result.Participants = slices.Clone(result.Participants)
	if len(result.Participants) == 0 {
		result.Participants = slices.Clone(state.CurrentParticipants)
	}
	result.Representatives = slices.Clone(result.Representatives)
	if len(result.Representatives) == 0 {
		result.Representatives = slices.Clone(state.CurrentRepresentatives)
	}
	result.Scores = maps.Clone(result.Scores)
	result.Awards = nil
	if result.WinnerID != nil {
		winner := *result.WinnerID
		result.WinnerID = &winner
	}
	if result.TimestampMillis == 0 {
		result.TimestampMillis = e.clock.Now().UnixMilli()
	}
	return result
}

// EndGame finishes an active game
func (e *Engine) EndGame(state *model.SessionState) (*model.SessionState, error) {
	if err := requirePhase(state, "end_game", model.PhaseSelecting, model.PhaseAwaitingResult); err != nil {
		return nil, err
	}

	next := e.mutate(state)
	next.Phase = model.PhaseFinished
	next.CurrentChallenge = nil
	next.CurrentParticipants = []model.ParticipantRef{}
	next.CurrentRepresentatives = nil

	e.logger.Info("game finished",
		slog.String("session_id", string(next.ID)),
		slog.Int("results", len(next.Results)),
	)
	return next, nil
}

// ResetGame returns to setup with a fresh state, keeping only the challenge pool
func (e *Engine) ResetGame(state *model.SessionState) *model.SessionState {
	next := model.NewSessionState(state.ID, e.clock.Now())
	for _, c := range state.ChallengePool {
		next.ChallengePool = append(next.ChallengePool, c.Clone())
	}
	return next
}

// mutate returns a working copy stamped with the current time
func (e *Engine) mutate(state *model.SessionState) *model.SessionState {
	next := state.Clone()
	next.UpdatedAt = e.clock.Now()
	return next
}

func requirePhase(state *model.SessionState, op string, allowed ...model.Phase) error {
	if !slices.Contains(allowed, state.Phase) {
		return model.NewInvalidTransition(op, state.Phase)
	}
	return nil
}

// shiftTurnIndex keeps the turn on the same party after the entry at
// removed is deleted from a roster that now has size entries
func shiftTurnIndex(current, removed, size int) int {
	if removed < current {
		current--
	}
	if current >= size || current < 0 {
		return 0
	}
	return current
}
