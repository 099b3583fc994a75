// Package threethirteen implements Three Thirteen score keeping: eleven
// fixed rounds with wild-card values 3 through 13, a rotating dealer, and
// penalty scoring where the lowest cumulative total wins.
package threethirteen

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/model"
)

const (
	// RoundCount is fixed: one round per wild-card value 3..13
	RoundCount = 11

	firstCardValue = 3
)

// Round is one dealt round. Scores are nullable until entered; the winner
// marker is informational and has no effect on totals.
type Round struct {
	RoundIndex     int                     `json:"roundIndex"`
	CardValue      int                     `json:"cardValue"`
	DealerPlayerID model.PlayerID          `json:"dealerPlayerId"`
	WinnerPlayerID *model.PlayerID         `json:"winnerPlayerId"`
	ScoresByPlayer map[model.PlayerID]*int `json:"scoresByPlayer"`
}

// State is the serialized engine state
type State struct {
	Rounds              []Round   `json:"rounds"`
	StartingDealerIndex int       `json:"startingDealerIndex"`
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

// Game is the Three Thirteen rule engine
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
		return nil, fmt.Errorf("decode three thirteen state: %w", err)
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
	if state.RulesVersion == "" {
		state.RulesVersion = "1"
	}
	return state
}

// CardValue returns the wild-card rank for a round index
func CardValue(roundIndex int) int {
	return firstCardValue + roundIndex
}

func newRound(players []model.PlayerID, roundIndex, startingDealerIndex int) Round {
	scores := make(map[model.PlayerID]*int, len(players))
	for _, playerID := range players {
		scores[playerID] = nil
	}
	return Round{
		RoundIndex:     roundIndex,
		CardValue:      CardValue(roundIndex),
		DealerPlayerID: players[(startingDealerIndex+roundIndex)%len(players)],
		ScoresByPlayer: scores,
	}
}

// Variant returns the game key
func (g *Game) Variant() model.GameVariant {
	return model.GameThreeThirteen
}

// EnsurePlayers creates all eleven rounds up front, recomputes the dealer
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
		round.CardValue = CardValue(roundIndex)
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

// SetRoundWinner marks the round's winner; nil clears the marker.
// At most one winner per round: setting replaces.
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
		rounds[i] = copyRound(round)
	}
	return rounds
}

func copyRound(round Round) Round {
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
	return out
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
// score for any given player; used to warn before ending the session
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
