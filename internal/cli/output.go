package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to the command's streams
func NewOutput(cmd *cobra.Command, format string) *Output {
	return &Output{format: format, w: cmd.OutOrStdout(), errW: cmd.ErrOrStderr()}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		o.printSession(v)
	case response.SessionList:
		o.printSessionList(v)
	case response.PlayerCreated:
		o.printf("Player: %s (%s)\n", v.Player.Name, v.Player.ID)
	case response.TeamCreated:
		o.printf("Team: %s (%s) [%s]\n", v.Team.Name, v.Team.ID, v.Team.ColorTag)
	case response.Participants:
		o.printParticipants("Participants", v.Participants)
	case response.Standings:
		o.printStandings(v)
	case response.Catalog:
		o.printChallenges(v.Challenges)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printSession(s response.Session) {
	o.printf("Session: %s\n", s.ID)
	o.printf("Phase: %s\n", s.Phase)
	o.printf("Mode: %s, %s %d\n", s.GameMode, s.DurationMode, s.DurationValue)
	if s.Phase == "selecting" || s.Phase == "awaiting_result" {
		o.printf("Round: %d, Turn: %d\n", s.CurrentRound, s.CurrentTurnIndex)
	}

	names := make(map[string]string, len(s.Players))
	o.printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		names[p.ID] = p.Name
		team := ""
		if p.TeamID != nil {
			team = " [" + *p.TeamID + "]"
		}
		o.printf("  - %s (%s) %d pts%s\n", p.Name, p.ID, p.Score, team)
	}

	if len(s.Teams) > 0 {
		o.printf("Teams (%d):\n", len(s.Teams))
		for _, t := range s.Teams {
			names[t.ID] = t.Name
			members := make([]string, len(t.Members))
			for i, m := range t.Members {
				members[i] = names[m]
			}
			o.printf("  - %s (%s) %d pts: %s\n", t.Name, t.ID, t.Score, strings.Join(members, ", "))
		}
	}

	o.printf("Challenge pool: %d, used: %d, results: %d\n", len(s.ChallengePool), len(s.UsedChallengeIDs), len(s.Results))

	if s.CurrentChallenge != nil {
		o.printf("Current challenge: %s (%s, %s, %d pts)\n",
			s.CurrentChallenge.Title, s.CurrentChallenge.ID, s.CurrentChallenge.Topology, s.CurrentChallenge.PointValue)
		o.printParticipants("Playing", s.CurrentParticipants)
		if len(s.CurrentRepresentatives) > 0 {
			reps := make([]string, len(s.CurrentRepresentatives))
			for i, id := range s.CurrentRepresentatives {
				reps[i] = names[id]
			}
			o.printf("Representatives: %s\n", strings.Join(reps, ", "))
		}
	}
}

func (o *Output) printSessionList(l response.SessionList) {
	if len(l.Sessions) == 0 {
		o.printf("No sessions\n")
		return
	}
	for _, id := range l.Sessions {
		o.printf("%s\n", id)
	}
}

func (o *Output) printParticipants(label string, ps []response.Participant) {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = fmt.Sprintf("%s (%s)", p.ID, p.Kind)
	}
	o.printf("%s: %s\n", label, strings.Join(ids, ", "))
}

func (o *Output) printStandings(s response.Standings) {
	for _, row := range s.Standings {
		o.printf("%2d. %-20s %d\n", row.Rank, row.Name, row.Score)
	}
	if s.TimeRemainingSeconds != nil {
		o.printf("Time remaining: %dm%02ds\n", *s.TimeRemainingSeconds/60, *s.TimeRemainingSeconds%60)
	}
	if s.Finished {
		winners := make([]string, len(s.Winners))
		for i, w := range s.Winners {
			winners[i] = w.ID
		}
		if len(winners) == 0 {
			o.printf("Game over: no winner\n")
		} else {
			o.printf("Game over! Winner: %s\n", strings.Join(winners, ", "))
		}
	}
}

func (o *Output) printChallenges(cs []response.Challenge) {
	if len(cs) == 0 {
		o.printf("No challenges\n")
		return
	}
	sorted := append([]response.Challenge(nil), cs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, c := range sorted {
		flags := []string{c.Topology}
		if c.Reusable {
			flags = append(flags, "reusable")
		}
		if c.Quiz {
			flags = append(flags, "quiz")
		}
		o.printf("  - %s: %s (%d pts, %s)\n", c.ID, c.Title, c.PointValue, strings.Join(flags, ", "))
	}
}
