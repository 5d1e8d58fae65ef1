package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionUseCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionConfigCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a session and make it current",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post("/api/v1/sessions", nil, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(result.ID); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result response.Session
			if err := client.Get(sessionPath(id), &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SessionList

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <session-id>",
		Short: "Make an existing session current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get(sessionPath(args[0]), &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(result.ID); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).PrintMessage("Using session " + result.ID)
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			if err := client.Delete(sessionPath(id), nil); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).PrintMessage("Session deleted")
			return nil
		},
	}
}

func newSessionConfigCmd() *cobra.Command {
	var mode, durationMode string
	var duration int

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure game mode and duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			req := map[string]any{
				"game_mode":      mode,
				"duration_mode":  durationMode,
				"duration_value": duration,
			}
			var result response.Session

			if err := client.Put(sessionPath(id, "/config"), req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "free_for_all", "Game mode: free_for_all, teams")
	cmd.Flags().StringVar(&durationMode, "duration-mode", "by_challenge_count", "Duration mode: by_challenge_count, by_time")
	cmd.Flags().IntVar(&duration, "duration", 10, "Challenge count or minutes; 0 plays until ended")

	return cmd
}
