package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the party game server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var health response.Health
			if err := client.Get("/api/v1/health", &health); err != nil {
				return err
			}
			if health.Status != "ok" {
				return fmt.Errorf("server at %s reported status %q", cfg.ServerURL, health.Status)
			}

			NewOutput(cmd, cfg.Output).Print(health)
			return nil
		},
	}
}
