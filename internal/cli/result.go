package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/request"
	"github.com/mcoot/partygame/internal/api/response"
)

func newResultCmd() *cobra.Command {
	var winner, challengeID string
	var skip bool
	var scores []string

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Record the result of the current challenge",
		Example: `  partyctl result --winner <player-or-team-id>
  partyctl result --skip
  partyctl result --score <id>=7 --score <id>=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			if skip && (winner != "" || len(scores) > 0) {
				return errors.New("--skip cannot be combined with --winner or --score")
			}

			req := request.RecordResultRequest{
				ChallengeID: challengeID,
				Completed:   !skip,
				WinnerID:    winner,
			}
			if len(scores) > 0 {
				req.Scores, err = parseScores(scores)
				if err != nil {
					return err
				}
			}

			var result response.Session
			if err := client.Post(sessionPath(id, "/results"), req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Winning player or team ID")
	cmd.Flags().StringVar(&challengeID, "challenge", "", "Expected current challenge ID")
	cmd.Flags().BoolVar(&skip, "skip", false, "Record the challenge as not completed")
	cmd.Flags().StringArrayVar(&scores, "score", nil, "Quiz total as id=points (repeatable)")

	return cmd
}

func parseScores(pairs []string) (map[string]int, error) {
	scores := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		id, value, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid score %q: want id=points", pair)
		}
		points, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q: %w", pair, err)
		}
		scores[id] = points
	}
	return scores, nil
}

func newStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.Standings
			if err := client.Get(sessionPath(id, "/standings"), &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}
