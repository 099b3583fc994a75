package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Per-game score commands",
	}

	cmd.AddCommand(newScoreYahtzeeCmd())
	cmd.AddCommand(newScoreRollCmd())
	cmd.AddCommand(newScoreActiveCmd())
	cmd.AddCommand(newScoreAdvanceCmd())
	cmd.AddCommand(newScoreCorrectCmd())
	cmd.AddCommand(newScoreRoundCmd())
	cmd.AddCommand(newScoreWinnerCmd())

	return cmd
}

func newScoreYahtzeeCmd() *cobra.Command {
	var player, category string
	var value int
	var clear bool

	cmd := &cobra.Command{
		Use:   "yahtzee <session-id>",
		Short: "Write a Yahtzee scorecard box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"playerId": player,
				"category": category,
			}
			if !clear {
				req["value"] = value
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/yahtzee/score", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().StringVar(&category, "category", "", "Scorecard category (required)")
	cmd.Flags().IntVar(&value, "value", 0, "Box value")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the box instead of writing a value")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newScoreRollCmd() *cobra.Command {
	var player, target string
	var face int
	var scratch bool

	cmd := &cobra.Command{
		Use:   "roll <session-id>",
		Short: "Apply a rolled Yahtzee with Joker-rule resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"playerId":  player,
				"faceValue": face,
			}
			if target != "" {
				req["targetCategory"] = target
			}
			if scratch {
				req["scratch"] = true
			}

			var result map[string]any
			if err := client.Post("/api/v1/sessions/"+args[0]+"/yahtzee/roll", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().IntVar(&face, "face", 0, "Rolled face value 1-6 (required)")
	cmd.Flags().StringVar(&target, "target", "", "Chosen category when the roll allows a choice")
	cmd.Flags().BoolVar(&scratch, "scratch", false, "Scratch the chosen category instead of scoring it")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("face")

	return cmd
}

func newScoreActiveCmd() *cobra.Command {
	var player string
	var value int
	var clear bool

	cmd := &cobra.Command{
		Use:   "active <session-id>",
		Short: "Set a Scrabble active-round score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"playerId": player}
			if !clear {
				req["value"] = value
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/scrabble/active-score", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().IntVar(&value, "value", 0, "Round score")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the active score")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newScoreAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <session-id>",
		Short: "Commit the Scrabble active round and start the next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/scrabble/advance", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newScoreCorrectCmd() *cobra.Command {
	var player string
	var round, value int

	cmd := &cobra.Command{
		Use:   "correct <session-id>",
		Short: "Correct a committed Scrabble round score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"roundIndex": round,
				"playerId":   player,
				"value":      value,
			}

			var result Session
			if err := client.Patch("/api/v1/sessions/"+args[0]+"/scrabble/rounds", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().IntVar(&round, "round", 0, "Committed round index (required)")
	cmd.Flags().IntVar(&value, "value", 0, "Corrected score (required)")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newScoreRoundCmd() *cobra.Command {
	var player string
	var round, value int
	var clear bool

	cmd := &cobra.Command{
		Use:   "round <session-id>",
		Short: "Set a round score (Three Thirteen / Trepenta)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"roundIndex": round,
				"playerId":   player,
			}
			if !clear {
				req["value"] = value
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/rounds/score", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().IntVar(&round, "round", 0, "Round index (required)")
	cmd.Flags().IntVar(&value, "value", 0, "Round score")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the round score")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("round")

	return cmd
}

func newScoreWinnerCmd() *cobra.Command {
	var player string
	var round int
	var clear bool

	cmd := &cobra.Command{
		Use:   "winner <session-id>",
		Short: "Mark a round winner (Three Thirteen / Trepenta)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"roundIndex": round}
			if !clear {
				if player == "" {
					return fmt.Errorf("--player is required unless --clear is set")
				}
				req["playerId"] = player
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0]+"/rounds/winner", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Winning player ID")
	cmd.Flags().IntVar(&round, "round", 0, "Round index (required)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the round winner")
	_ = cmd.MarkFlagRequired("round")

	return cmd
}
