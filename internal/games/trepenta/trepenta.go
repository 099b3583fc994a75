// Package trepenta implements Trepenta score keeping: five fixed rounds with
// a rotating dealer and penalty scoring (lowest cumulative total wins), plus
// a one-time deck and house-rule configuration fixed at session creation.
package trepenta

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/model"
)

// RoundCount is fixed for Trepenta
const RoundCount = 5

// DeckType selects which physical deck the table plays with
type DeckType string

const (
	DeckStandard DeckType = "standard"
	DeckTrepenta DeckType = "trepenta"
)

// Deck count bounds per deck type
const (
	standardMinDecks = 1
	standardMaxDecks = 3
	trepentaMinDecks = 4
	trepentaMaxDecks = 8
)

// DeckConfig describes the decks in play
type DeckConfig struct {
	Type  DeckType `json:"type"`
	Count int      `json:"count"`
}

// HouseRule is one selected optional rule with its display text
type HouseRule struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Settings is the session's fixed configuration. It has no update operation
// once the session has started.
type Settings struct {
	DeckConfig       DeckConfig  `json:"deckConfig"`
	SelectedRuleKeys []string    `json:"selectedRuleKeys"`
	SelectedRules    []HouseRule `json:"selectedRules"`
}

// DefaultSettings is a single standard deck with no house rules
func DefaultSettings() Settings {
	return Settings{
		DeckConfig:       DeckConfig{Type: DeckStandard, Count: standardMinDecks},
		SelectedRuleKeys: []string{},
		SelectedRules:    []HouseRule{},
	}
}

// Round is one dealt round
type Round struct {
	RoundIndex     int                     `json:"roundIndex"`
	DealerPlayerID model.PlayerID          `json:"dealerPlayerId"`
	WinnerPlayerID *model.PlayerID         `json:"winnerPlayerId"`
	ScoresByPlayer map[model.PlayerID]*int `json:"scoresByPlayer"`
}

// State is the serialized engine state
type State struct {
	Rounds              []Round   `json:"rounds"`
	StartingDealerIndex int       `json:"startingDealerIndex"`
	Settings            Settings  `json:"settings"`
	IsFinal             bool      `json:"isFinal"`
	RulesVersion        string    `json:"rulesVersion"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ScoreUpdate writes one player's score for a round; nil clears it
type ScoreUpdate struct {
	RoundIndex int
	PlayerID   model.PlayerID
	Value      *int
}

// Game is the Trepenta rule engine
type Game struct {
	state State
}

var _ games.Engine = (*Game)(nil)

// New constructs an engine from a serialized state blob.
// An empty blob produces a fresh game with default settings.
func New(raw json.RawMessage) (*Game, error) {
	if len(raw) == 0 {
		return &Game{state: newState()}, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode trepenta state: %w", err)
	}
	return &Game{state: migrate(state)}, nil
}

// NewEngine adapts New to the registry constructor signature
func NewEngine(raw json.RawMessage) (games.Engine, error) {
	return New(raw)
}

func newState() State {
	return State{
		Rounds:       []Round{},
		Settings:     DefaultSettings(),
		RulesVersion: "1",
		UpdatedAt:    time.Now().UTC(),
	}
}

func migrate(state State) State {
	if state.Rounds == nil {
		state.Rounds = []Round{}
	}
	if state.StartingDealerIndex < 0 {
		state.StartingDealerIndex = 0
	}
	if state.Settings.DeckConfig.Type == "" {
		state.Settings.DeckConfig = DeckConfig{Type: DeckStandard, Count: standardMinDecks}
	}
	if state.Settings.SelectedRuleKeys == nil {
		state.Settings.SelectedRuleKeys = []string{}
	}
	if state.Settings.SelectedRules == nil {
		state.Settings.SelectedRules = []HouseRule{}
	}
	if state.RulesVersion == "" {
		state.RulesVersion = "1"
	}
	return state
}

func newRound(players []model.PlayerID, roundIndex, startingDealerIndex int) Round {
	scores := make(map[model.PlayerID]*int, len(players))
	for _, playerID := range players {
		scores[playerID] = nil
	}
	return Round{
		RoundIndex:     roundIndex,
		DealerPlayerID: players[(startingDealerIndex+roundIndex)%len(players)],
		ScoresByPlayer: scores,
	}
}

// Variant returns the game key
func (g *Game) Variant() model.GameVariant {
	return model.GameTrepenta
}

// ConfigureSettings fixes the session's deck and house-rule selection.
// Deck counts are clamped to the applicable range, defaulting to the range
// minimum on junk input; rule keys are trimmed and deduplicated. Called once
// at session creation; there is no post-start update path.
func (g *Game) ConfigureSettings(input Settings) {
	deckType := DeckStandard
	minDecks, maxDecks := standardMinDecks, standardMaxDecks
	if input.DeckConfig.Type == DeckTrepenta {
		deckType = DeckTrepenta
		minDecks, maxDecks = trepentaMinDecks, trepentaMaxDecks
	}

	count := input.DeckConfig.Count
	if count < minDecks || count > maxDecks {
		if count > maxDecks {
			count = maxDecks
		} else {
			count = minDecks
		}
	}

	seen := map[string]bool{}
	keys := []string{}
	for _, key := range input.SelectedRuleKeys {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}

	rules := []HouseRule{}
	for _, rule := range input.SelectedRules {
		key := strings.TrimSpace(rule.Key)
		if key == "" {
			continue
		}
		rules = append(rules, HouseRule{
			Key:     key,
			Name:    strings.TrimSpace(rule.Name),
			Summary: strings.TrimSpace(rule.Summary),
		})
	}

	g.state.Settings = Settings{
		DeckConfig:       DeckConfig{Type: deckType, Count: count},
		SelectedRuleKeys: keys,
		SelectedRules:    rules,
	}
	g.touch()
}

// Settings returns a copy of the fixed session settings
func (g *Game) Settings() Settings {
	settings := g.state.Settings
	settings.SelectedRuleKeys = append([]string{}, g.state.Settings.SelectedRuleKeys...)
	settings.SelectedRules = append([]HouseRule{}, g.state.Settings.SelectedRules...)
	return settings
}

// EnsurePlayers creates all five rounds up front, recomputes the dealer
// rotation for the current roster, backfills missing score slots, and clears
// winner markers that no longer reference a participant.
func (g *Game) EnsurePlayers(players []model.PlayerID) {
	if len(players) == 0 {
		g.state.Rounds = []Round{}
		g.touch()
		return
	}

	g.state.StartingDealerIndex = g.state.StartingDealerIndex % len(players)

	for roundIndex := 0; roundIndex < RoundCount; roundIndex++ {
		if roundIndex >= len(g.state.Rounds) {
			g.state.Rounds = append(g.state.Rounds, newRound(players, roundIndex, g.state.StartingDealerIndex))
		}

		round := &g.state.Rounds[roundIndex]
		round.RoundIndex = roundIndex
		round.DealerPlayerID = players[(g.state.StartingDealerIndex+roundIndex)%len(players)]

		if round.ScoresByPlayer == nil {
			round.ScoresByPlayer = map[model.PlayerID]*int{}
		}
		for _, playerID := range players {
			if _, ok := round.ScoresByPlayer[playerID]; !ok {
				round.ScoresByPlayer[playerID] = nil
			}
		}

		if round.WinnerPlayerID != nil {
			known := false
			for _, playerID := range players {
				if playerID == *round.WinnerPlayerID {
					known = true
					break
				}
			}
			if !known {
				round.WinnerPlayerID = nil
			}
		}
	}

	g.state.Rounds = g.state.Rounds[:RoundCount]
	g.touch()
}

// ApplyScoreUpdate writes one player's score for a round
func (g *Game) ApplyScoreUpdate(update ScoreUpdate) error {
	if update.PlayerID == "" {
		return games.ErrPlayerRequired
	}
	if update.RoundIndex < 0 || update.RoundIndex >= len(g.state.Rounds) {
		return games.ErrRoundNotFound
	}

	round := &g.state.Rounds[update.RoundIndex]
	if update.Value == nil {
		round.ScoresByPlayer[update.PlayerID] = nil
	} else {
		value := *update.Value
		round.ScoresByPlayer[update.PlayerID] = &value
	}
	g.touch()
	return nil
}

// SetRoundWinner marks the round's winner; nil clears the marker
func (g *Game) SetRoundWinner(roundIndex int, playerID *model.PlayerID) error {
	if roundIndex < 0 || roundIndex >= len(g.state.Rounds) {
		return games.ErrRoundNotFound
	}
	round := &g.state.Rounds[roundIndex]
	if playerID != nil {
		if _, ok := round.ScoresByPlayer[*playerID]; !ok {
			return games.ErrPlayerRequired
		}
		winner := *playerID
		round.WinnerPlayerID = &winner
	} else {
		round.WinnerPlayerID = nil
	}
	g.touch()
	return nil
}

// Rounds returns a copy of all rounds
func (g *Game) Rounds() []Round {
	rounds := make([]Round, len(g.state.Rounds))
	for i, round := range g.state.Rounds {
		scores := make(map[model.PlayerID]*int, len(round.ScoresByPlayer))
		for playerID, value := range round.ScoresByPlayer {
			if value != nil {
				v := *value
				scores[playerID] = &v
			} else {
				scores[playerID] = nil
			}
		}
		out := round
		out.ScoresByPlayer = scores
		if round.WinnerPlayerID != nil {
			winner := *round.WinnerPlayerID
			out.WinnerPlayerID = &winner
		}
		rounds[i] = out
	}
	return rounds
}

// Totals sums all rounds per player, unset scores counting as 0.
// Lower totals win this game.
func (g *Game) Totals(players []model.PlayerID) map[model.PlayerID]int {
	totals := make(map[model.PlayerID]int, len(players))
	for _, playerID := range players {
		totals[playerID] = 0
	}
	for _, round := range g.state.Rounds {
		for _, playerID := range players {
			if value := round.ScoresByPlayer[playerID]; value != nil {
				totals[playerID] += *value
			}
		}
	}
	return totals
}

// HasIncompleteRounds reports whether any round is missing a winner or a
// score for any given player
func (g *Game) HasIncompleteRounds(players []model.PlayerID) bool {
	for _, round := range g.state.Rounds {
		if round.WinnerPlayerID == nil {
			return true
		}
		for _, playerID := range players {
			if round.ScoresByPlayer[playerID] == nil {
				return true
			}
		}
	}
	return false
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
