package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game flow commands",
	}

	cmd.AddCommand(newGameActionCmd("start", "Start the game", "/start"))
	cmd.AddCommand(newGameSelectCmd())
	cmd.AddCommand(newGameParticipantsCmd())
	cmd.AddCommand(newGameActionCmd("end", "End the game now", "/end"))
	cmd.AddCommand(newGameActionCmd("reset", "Return to setup, keeping the challenge pool", "/reset"))

	return cmd
}

// newGameActionCmd builds a command that POSTs to a session action with no body
func newGameActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.Session
			if err := client.Post(sessionPath(id, action), nil, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [challenge-id]",
		Short: "Select a challenge, or draw the next one from the pool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			req := map[string]string{}
			if len(args) == 1 {
				req["challenge_id"] = args[0]
			}
			var result response.Session

			if err := client.Post(sessionPath(id, "/select"), req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameParticipantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "Show who is playing now",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.Participants
			if err := client.Get(sessionPath(id, "/participants"), &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}
