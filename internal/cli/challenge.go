package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/partygame/internal/api/request"
	"github.com/mcoot/partygame/internal/api/response"
)

func newChallengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Challenge pool and catalog commands",
	}

	cmd.AddCommand(newChallengeAddCmd())
	cmd.AddCommand(newChallengeImportCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

// challengeFlags reads challenges either from a JSON file or from flags
type challengeFlags struct {
	file     string
	id       string
	title    string
	topology string
	points   int
	reusable bool
	quiz     bool
	settings string
}

func (f *challengeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `JSON file with {"challenges": [...]}`)
	cmd.Flags().StringVar(&f.id, "id", "", "Challenge ID")
	cmd.Flags().StringVar(&f.title, "title", "", "Challenge title")
	cmd.Flags().StringVar(&f.topology, "topology", "solo", "Topology: solo, pairwise, team, all_vs_all")
	cmd.Flags().IntVar(&f.points, "points", 1, "Point value")
	cmd.Flags().BoolVar(&f.reusable, "reusable", false, "Challenge can be played more than once")
	cmd.Flags().BoolVar(&f.quiz, "quiz", false, "Challenge reports per-participant totals")
	cmd.Flags().StringVar(&f.settings, "settings", "", "Raw JSON settings payload")
}

func (f *challengeFlags) request() (request.ChallengesRequest, error) {
	var req request.ChallengesRequest

	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return req, err
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("invalid challenge file: %w", err)
		}
		return req, nil
	}

	if f.title == "" {
		return req, errors.New("--title or --file is required")
	}

	c := request.Challenge{
		ID:         f.id,
		Title:      f.title,
		Topology:   f.topology,
		PointValue: f.points,
		Reusable:   f.reusable,
		Quiz:       f.quiz,
	}
	if f.settings != "" {
		if !json.Valid([]byte(f.settings)) {
			return req, errors.New("--settings must be valid JSON")
		}
		c.Settings = json.RawMessage(f.settings)
	}
	req.Challenges = []request.Challenge{c}
	return req, nil
}

func newChallengeAddCmd() *cobra.Command {
	var flags challengeFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add challenges to the session pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			req, err := flags.request()
			if err != nil {
				return err
			}

			var result response.Session
			if err := client.Post(sessionPath(id, "/challenges"), req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(response.Catalog{Challenges: result.ChallengePool})
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newChallengeImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [challenge-id...]",
		Short: "Copy catalog challenges into the session pool (all if none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			req := map[string][]string{"challenge_ids": args}
			var result response.Session

			if err := client.Post(sessionPath(id, "/challenges/import"), req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(response.Catalog{Challenges: result.ChallengePool})
			return nil
		},
	}
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Shared challenge catalog commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Catalog

			if err := client.Get("/api/v1/catalog", &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	})

	var flags challengeFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add challenges to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}

			var result response.Catalog
			if err := client.Post("/api/v1/catalog", req, &result); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).Print(result)
			return nil
		},
	}
	flags.register(add)
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <challenge-id>",
		Short: "Remove a challenge from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/catalog/"+args[0], nil); err != nil {
				return err
			}

			NewOutput(cmd, cfg.Output).PrintMessage("Challenge removed")
			return nil
		},
	})

	return cmd
}
