package cli

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session lifecycle commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionCompleteCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionStandingsCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var game string
	var players []string
	var settings string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"game":      game,
				"playerIds": players,
			}
			if settings != "" {
				var blob json.RawMessage
				if err := json.Unmarshal([]byte(settings), &blob); err != nil {
					return fmt.Errorf("--settings must be valid JSON: %w", err)
				}
				req["settings"] = blob
			}

			var result Session
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game variant: yahtzee, scrabble, threetothirteen, trepenta (required)")
	cmd.Flags().StringSliceVar(&players, "player", nil, "Player ID (repeatable, at least two required)")
	cmd.Flags().StringVar(&settings, "settings", "", "Variant settings as a JSON object")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	var game, status, player string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if game != "" {
				query.Set("game", game)
			}
			if status != "" {
				query.Set("status", status)
			}
			if player != "" {
				query.Set("player", player)
			}

			path := "/api/v1/sessions"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var result []Session
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Filter by game variant")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: active, completed")
	cmd.Flags().StringVar(&player, "player", "", "Filter by participating player ID")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Complete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/complete", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/sessions/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Session %s deleted", args[0]))
			return nil
		},
	}
}

func newSessionStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings <session-id>",
		Short: "Show session standings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Standings
			if err := client.Get("/api/v1/sessions/"+args[0]+"/standings", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
