// Package scrabble implements round-based Scrabble score keeping: an ordered
// log of committed rounds plus one in-progress round still accepting entries.
package scrabble

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/model"
)

// Errors
var (
	ErrRoundIncomplete = errors.New("enter valid scores for all players before starting the next round")
	ErrScoreRequired   = errors.New("score is required")
)

// Round is one committed round's scores
type Round struct {
	ScoresByPlayer map[model.PlayerID]int `json:"scoresByPlayer"`
}

// State is the serialized engine state. Field names preserve the historical
// stored shape. TotalsByPlayer only appears in legacy blobs and is folded
// into a single committed round on load.
type State struct {
	Rounds                   []Round                 `json:"rounds"`
	ActiveRoundScoresByPlayer map[model.PlayerID]*int `json:"activeRoundScoresByPlayer"`
	TotalsByPlayer           map[model.PlayerID]int  `json:"totalsByPlayer,omitempty"`
	IsFinal                  bool                    `json:"isFinal"`
	RulesVersion             string                  `json:"rulesVersion"`
	UpdatedAt                time.Time               `json:"updatedAt"`
}

// ActiveScoreUpdate writes one player's in-progress round value;
// nil clears it
type ActiveScoreUpdate struct {
	PlayerID model.PlayerID
	Value    *int
}

// CompletedScoreUpdate corrects a value in an already-committed round
type CompletedScoreUpdate struct {
	RoundIndex int
	PlayerID   model.PlayerID
	Value      int
}

// Game is the Scrabble rule engine
type Game struct {
	state State
}

var _ games.Engine = (*Game)(nil)

// New constructs an engine from a serialized state blob.
// An empty blob produces a fresh game.
func New(raw json.RawMessage) (*Game, error) {
	if len(raw) == 0 {
		return &Game{state: newState()}, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode scrabble state: %w", err)
	}
	return &Game{state: migrate(state)}, nil
}

// NewEngine adapts New to the registry constructor signature
func NewEngine(raw json.RawMessage) (games.Engine, error) {
	return New(raw)
}

func newState() State {
	return State{
		Rounds:                    []Round{},
		ActiveRoundScoresByPlayer: map[model.PlayerID]*int{},
		RulesVersion:              "1",
		UpdatedAt:                 time.Now().UTC(),
	}
}

// migrate upgrades older stored state. Early versions kept a single flat
// totals map instead of rounds; a non-trivial one becomes the first
// committed round.
func migrate(state State) State {
	hasLegacyTotals := false
	for _, value := range state.TotalsByPlayer {
		if value != 0 {
			hasLegacyTotals = true
			break
		}
	}

	if state.Rounds == nil {
		state.Rounds = []Round{}
	}
	for i := range state.Rounds {
		if state.Rounds[i].ScoresByPlayer == nil {
			state.Rounds[i].ScoresByPlayer = map[model.PlayerID]int{}
		}
	}

	if len(state.Rounds) == 0 && hasLegacyTotals {
		scores := make(map[model.PlayerID]int, len(state.TotalsByPlayer))
		for playerID, value := range state.TotalsByPlayer {
			scores[playerID] = value
		}
		state.Rounds = []Round{{ScoresByPlayer: scores}}
	}
	state.TotalsByPlayer = nil

	if state.ActiveRoundScoresByPlayer == nil {
		state.ActiveRoundScoresByPlayer = map[model.PlayerID]*int{}
	}
	if state.RulesVersion == "" {
		state.RulesVersion = "1"
	}
	return state
}

// Variant returns the game key
func (g *Game) Variant() model.GameVariant {
	return model.GameScrabble
}

// EnsurePlayers backfills zero scores for new players in committed rounds
// and null entries in the active round
func (g *Game) EnsurePlayers(players []model.PlayerID) {
	for _, playerID := range players {
		for i := range g.state.Rounds {
			if _, ok := g.state.Rounds[i].ScoresByPlayer[playerID]; !ok {
				g.state.Rounds[i].ScoresByPlayer[playerID] = 0
			}
		}
		if _, ok := g.state.ActiveRoundScoresByPlayer[playerID]; !ok {
			g.state.ActiveRoundScoresByPlayer[playerID] = nil
		}
	}
	g.touch()
}

// ApplyActiveScoreUpdate writes into the in-progress round only;
// it never advances the round
func (g *Game) ApplyActiveScoreUpdate(update ActiveScoreUpdate) error {
	if update.PlayerID == "" {
		return games.ErrPlayerRequired
	}
	if update.Value == nil {
		g.state.ActiveRoundScoresByPlayer[update.PlayerID] = nil
	} else {
		value := *update.Value
		g.state.ActiveRoundScoresByPlayer[update.PlayerID] = &value
	}
	g.touch()
	return nil
}

// UpdateCompletedRoundScore corrects history: it mutates an
// already-committed round in place
func (g *Game) UpdateCompletedRoundScore(update CompletedScoreUpdate) error {
	if update.PlayerID == "" {
		return games.ErrPlayerRequired
	}
	if update.RoundIndex < 0 || update.RoundIndex >= len(g.state.Rounds) {
		return games.ErrRoundNotFound
	}
	g.state.Rounds[update.RoundIndex].ScoresByPlayer[update.PlayerID] = update.Value
	g.touch()
	return nil
}

// ActiveScore returns the player's in-progress round value, nil if unset
func (g *Game) ActiveScore(playerID model.PlayerID) *int {
	value := g.state.ActiveRoundScoresByPlayer[playerID]
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

// CanAdvanceRound reports whether every given player has a committed-ready
// value in the active round
func (g *Game) CanAdvanceRound(players []model.PlayerID) bool {
	for _, playerID := range players {
		if g.state.ActiveRoundScoresByPlayer[playerID] == nil {
			return false
		}
	}
	return true
}

// AdvanceRound commits the active round and resets it to all-null.
// Fails unless every player has a value.
func (g *Game) AdvanceRound(players []model.PlayerID) error {
	if !g.CanAdvanceRound(players) {
		return ErrRoundIncomplete
	}

	committed := make(map[model.PlayerID]int, len(players))
	for _, playerID := range players {
		committed[playerID] = *g.state.ActiveRoundScoresByPlayer[playerID]
		g.state.ActiveRoundScoresByPlayer[playerID] = nil
	}

	g.state.Rounds = append(g.state.Rounds, Round{ScoresByPlayer: committed})
	g.touch()
	return nil
}

// Rounds returns a copy of the committed rounds
func (g *Game) Rounds() []Round {
	rounds := make([]Round, len(g.state.Rounds))
	for i, round := range g.state.Rounds {
		scores := make(map[model.PlayerID]int, len(round.ScoresByPlayer))
		for playerID, value := range round.ScoresByPlayer {
			scores[playerID] = value
		}
		rounds[i] = Round{ScoresByPlayer: scores}
	}
	return rounds
}

// PlayerTotal sums the player's committed rounds, optionally plus the
// active round's current value if set
func (g *Game) PlayerTotal(playerID model.PlayerID, includeActiveRound bool) int {
	total := 0
	for _, round := range g.state.Rounds {
		total += round.ScoresByPlayer[playerID]
	}
	if includeActiveRound {
		if active := g.state.ActiveRoundScoresByPlayer[playerID]; active != nil {
			total += *active
		}
	}
	return total
}

// TotalsByPlayer computes totals for the given players
func (g *Game) TotalsByPlayer(players []model.PlayerID, includeActiveRound bool) map[model.PlayerID]int {
	totals := make(map[model.PlayerID]int, len(players))
	for _, playerID := range players {
		totals[playerID] = g.PlayerTotal(playerID, includeActiveRound)
	}
	return totals
}

// Totals returns totals including the active round
func (g *Game) Totals(players []model.PlayerID) map[model.PlayerID]int {
	return g.TotalsByPlayer(players, true)
}

// Finalize marks the state terminal
func (g *Game) Finalize() {
	g.state.IsFinal = true
	g.touch()
}

// Snapshot serializes the current state as a detached copy
func (g *Game) Snapshot() (json.RawMessage, error) {
	return json.Marshal(g.state)
}

func (g *Game) touch() {
	g.state.UpdatedAt = time.Now().UTC()
}
