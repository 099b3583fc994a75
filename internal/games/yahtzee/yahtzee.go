// Package yahtzee implements the Yahtzee scoring rules, including the
// upper-section bonus, the Yahtzee bonus accumulator, and the Joker rule
// for second-and-later Yahtzees.
package yahtzee

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/model"
)

// Category identifies one box on the scorecard
type Category string

const (
	Aces          Category = "aces"
	Twos          Category = "twos"
	Threes        Category = "threes"
	Fours         Category = "fours"
	Fives         Category = "fives"
	Sixes         Category = "sixes"
	ThreeOfAKind  Category = "threeOfAKind"
	FourOfAKind   Category = "fourOfAKind"
	FullHouse     Category = "fullHouse"
	SmallStraight Category = "smallStraight"
	LargeStraight Category = "largeStraight"
	Yahtzee       Category = "yahtzee"
	Chance        Category = "chance"
)

// UpperCategories are the six number-matching boxes
var UpperCategories = []Category{Aces, Twos, Threes, Fours, Fives, Sixes}

// LowerCategories are the seven combination boxes
var LowerCategories = []Category{ThreeOfAKind, FourOfAKind, FullHouse, SmallStraight, LargeStraight, Yahtzee, Chance}

// Categories is every box in scoresheet order
var Categories = append(append([]Category{}, UpperCategories...), LowerCategories...)

const (
	upperBonusThreshold = 63
	upperBonusScore     = 35

	// BonusScore is awarded per repeat Yahtzee when the Yahtzee box reads 50
	BonusScore = 100

	// YahtzeeScore is the fixed value of the Yahtzee box
	YahtzeeScore = 50
)

var faceToUpperCategory = map[int]Category{
	1: Aces, 2: Twos, 3: Threes, 4: Fours, 5: Fives, 6: Sixes,
}

// jokerFixedValues are the lower boxes that score a constant under the Joker rule
var jokerFixedValues = map[Category]int{
	FullHouse:     25,
	SmallStraight: 30,
	LargeStraight: 40,
}

// fixedCategoryValues are boxes that only accept null, 0, or their constant
var fixedCategoryValues = map[Category]int{
	Yahtzee:       YahtzeeScore,
	FullHouse:     25,
	SmallStraight: 30,
	LargeStraight: 40,
}

// Validation errors
var (
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidFixedValue  = errors.New("invalid value for fixed-score category")
	ErrYahtzeeBoxLocked   = errors.New("yahtzee box cannot be changed after bonus points are awarded")
	ErrInvalidFaceValue   = errors.New("face value must be from 1 to 6")
	ErrCorruptYahtzeeBox  = errors.New("yahtzee box must be 50 or 0 before applying joker rules")
	ErrInvalidJokerTarget = errors.New("choose a valid category for joker scoring")
)

// Card holds one player's box values; nil means the box is unset
type Card map[Category]*int

// LeaderboardRow is one entry in the precomputed ranking
type LeaderboardRow struct {
	Rank     int            `json:"rank"`
	PlayerID model.PlayerID `json:"playerId"`
	Total    int            `json:"total"`
}

// State is the serialized engine state. Field names preserve the historical
// stored shape so previously exported data round-trips.
type State struct {
	TotalsByPlayer        map[model.PlayerID]int  `json:"totalsByPlayer"`
	Leaderboard           []LeaderboardRow        `json:"leaderboard"`
	CurrentValuesByPlayer map[model.PlayerID]Card `json:"currentValuesByPlayer"`
	YahtzeeBonusByPlayer  map[model.PlayerID]int  `json:"yahtzeeBonusByPlayer"`
	YahtzeeCountByPlayer  map[model.PlayerID]int  `json:"yahtzeeCountByPlayer"`
	IsFinal               bool                    `json:"isFinal"`
	RulesVersion          string                  `json:"rulesVersion"`
	UpdatedAt             time.Time               `json:"updatedAt"`
}

// ScoreUpdate writes one box value; a nil Value clears the box
type ScoreUpdate struct {
	PlayerID model.PlayerID
	Category Category
	Value    *int
}

// RollResolution describes what a rolled Yahtzee may do, per the Joker rule
// decision procedure. ForcedCategory is set when the player has no choice.
type RollResolution struct {
	FaceValue             int        `json:"faceValue"`
	IsFirstYahtzee        bool       `json:"isFirstYahtzee"`
	GrantsBonus           bool       `json:"grantsBonus"`
	BonusPoints           int        `json:"bonusPoints"`
	MatchingUpperCategory Category   `json:"matchingUpperCategory"`
	ForcedCategory        *Category  `json:"forcedCategory"`
	CandidateCategories   []Category `json:"candidateCategories"`
	Reason                string     `json:"reason"`
}

// Roll is a request to apply a rolled Yahtzee for a player
type Roll struct {
	PlayerID       model.PlayerID
	FaceValue      int
	TargetCategory Category
	Scratch        bool
}

// RollResult reports what applying a roll changed
type RollResult struct {
	YahtzeeScore   *int      `json:"yahtzeeScore"`
	BonusPoints    int       `json:"bonusPoints"`
	TargetCategory *Category `json:"targetCategory"`
	TargetValue    *int      `json:"targetValue"`
}

// Game is the Yahtzee rule engine
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
		return nil, fmt.Errorf("decode yahtzee state: %w", err)
	}
	return &Game{state: migrate(state)}, nil
}

// NewEngine adapts New to the registry constructor signature
func NewEngine(raw json.RawMessage) (games.Engine, error) {
	return New(raw)
}

func newState() State {
	return State{
		TotalsByPlayer:        map[model.PlayerID]int{},
		Leaderboard:           []LeaderboardRow{},
		CurrentValuesByPlayer: map[model.PlayerID]Card{},
		YahtzeeBonusByPlayer:  map[model.PlayerID]int{},
		YahtzeeCountByPlayer:  map[model.PlayerID]int{},
		RulesVersion:          "1",
		UpdatedAt:             time.Now().UTC(),
	}
}

// migrate upgrades older stored state: missing maps become empty ones.
// The occurrence-counter backfill itself happens per player in
// EnsurePlayers, because absence is a per-key condition.
func migrate(state State) State {
	if state.TotalsByPlayer == nil {
		state.TotalsByPlayer = map[model.PlayerID]int{}
	}
	if state.CurrentValuesByPlayer == nil {
		state.CurrentValuesByPlayer = map[model.PlayerID]Card{}
	}
	if state.YahtzeeBonusByPlayer == nil {
		state.YahtzeeBonusByPlayer = map[model.PlayerID]int{}
	}
	if state.YahtzeeCountByPlayer == nil {
		state.YahtzeeCountByPlayer = map[model.PlayerID]int{}
	}
	if state.Leaderboard == nil {
		state.Leaderboard = []LeaderboardRow{}
	}
	if state.RulesVersion == "" {
		state.RulesVersion = "1"
	}
	return state
}

func blankCard() Card {
	card := make(Card, len(Categories))
	for _, category := range Categories {
		card[category] = nil
	}
	return card
}

// Variant returns the game key
func (g *Game) Variant() model.GameVariant {
	return model.GameYahtzee
}

// EnsurePlayers initializes per-player cards and accumulators, backfills the
// occurrence counter from legacy data when absent, and refreshes totals and
// the leaderboard.
func (g *Game) EnsurePlayers(players []model.PlayerID) {
	for _, playerID := range players {
		if g.state.CurrentValuesByPlayer[playerID] == nil {
			g.state.CurrentValuesByPlayer[playerID] = blankCard()
		}
		if _, ok := g.state.YahtzeeBonusByPlayer[playerID]; !ok {
			g.state.YahtzeeBonusByPlayer[playerID] = 0
		}

		if _, ok := g.state.YahtzeeCountByPlayer[playerID]; !ok {
			// Legacy state predates the counter: one Yahtzee if the box
			// reads 50, plus one per awarded bonus.
			baseCount := 0
			if value := g.state.CurrentValuesByPlayer[playerID][Yahtzee]; value != nil && *value == YahtzeeScore {
				baseCount = 1
			}
			g.state.YahtzeeCountByPlayer[playerID] = baseCount + g.state.YahtzeeBonusByPlayer[playerID]/BonusScore
		}

		g.state.TotalsByPlayer[playerID] = g.GrandTotal(playerID)
	}
	g.computeLeaderboard()
}

func (g *Game) validateScoreUpdate(update ScoreUpdate) error {
	if update.PlayerID == "" {
		return games.ErrPlayerRequired
	}
	valid := false
	for _, category := range Categories {
		if category == update.Category {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidCategory
	}

	if fixed, ok := fixedCategoryValues[update.Category]; ok && update.Value != nil && *update.Value != 0 && *update.Value != fixed {
		return ErrInvalidFixedValue
	}

	if update.Category == Yahtzee && g.BonusPoints(update.PlayerID) > 0 && (update.Value == nil || *update.Value != YahtzeeScore) {
		return ErrYahtzeeBoxLocked
	}
	return nil
}

// ApplyScoreUpdate validates and writes one box value, then refreshes the
// player's total and the leaderboard. State is unchanged on error.
func (g *Game) ApplyScoreUpdate(update ScoreUpdate) error {
	if err := g.validateScoreUpdate(update); err != nil {
		return err
	}
	if g.state.CurrentValuesByPlayer[update.PlayerID] == nil {
		g.state.CurrentValuesByPlayer[update.PlayerID] = blankCard()
	}

	g.state.CurrentValuesByPlayer[update.PlayerID][update.Category] = update.Value
	g.state.TotalsByPlayer[update.PlayerID] = g.GrandTotal(update.PlayerID)
	g.computeLeaderboard()
	g.touch()
	return nil
}

func (g *Game) sumCategories(playerID model.PlayerID, categories []Category) int {
	values := g.state.CurrentValuesByPlayer[playerID]
	sum := 0
	for _, category := range categories {
		if value := values[category]; value != nil {
			sum += *value
		}
	}
	return sum
}

// UpperSubtotal sums the six upper boxes, unset boxes counting as 0
func (g *Game) UpperSubtotal(playerID model.PlayerID) int {
	return g.sumCategories(playerID, UpperCategories)
}

// UpperBonus is 35 once the upper subtotal reaches 63
func (g *Game) UpperBonus(playerID model.PlayerID) int {
	if g.UpperSubtotal(playerID) >= upperBonusThreshold {
		return upperBonusScore
	}
	return 0
}

// UpperTotal is the upper subtotal plus the bonus
func (g *Game) UpperTotal(playerID model.PlayerID) int {
	return g.UpperSubtotal(playerID) + g.UpperBonus(playerID)
}

// LowerTotal sums the seven lower boxes
func (g *Game) LowerTotal(playerID model.PlayerID) int {
	return g.sumCategories(playerID, LowerCategories)
}

// BonusPoints returns the accumulated Yahtzee bonus points
func (g *Game) BonusPoints(playerID model.PlayerID) int {
	return g.state.YahtzeeBonusByPlayer[playerID]
}

// YahtzeeCount returns how many Yahtzees the player has rolled
func (g *Game) YahtzeeCount(playerID model.PlayerID) int {
	return g.state.YahtzeeCountByPlayer[playerID]
}

// GrandTotal is upper total + lower total + accumulated bonus points
func (g *Game) GrandTotal(playerID model.PlayerID) int {
	return g.UpperTotal(playerID) + g.LowerTotal(playerID) + g.BonusPoints(playerID)
}

// Breakdown is the per-player derived summary used by scoresheet rendering
type Breakdown struct {
	UpperSubtotal       int `json:"upperSubtotal"`
	UpperBonus          int `json:"upperBonus"`
	UpperTotal          int `json:"upperTotal"`
	LowerTotal          int `json:"lowerTotal"`
	YahtzeeBonus        int `json:"yahtzeeBonus"`
	YahtzeeCount        int `json:"yahtzeeCount"`
	YahtzeeDisplayValue int `json:"yahtzeeDisplayValue"`
	GrandTotal          int `json:"grandTotal"`
}

// PlayerBreakdown computes the full derived summary for one player
func (g *Game) PlayerBreakdown(playerID model.PlayerID) Breakdown {
	upperSubtotal := g.UpperSubtotal(playerID)
	upperBonus := g.UpperBonus(playerID)
	lowerTotal := g.LowerTotal(playerID)
	bonus := g.BonusPoints(playerID)
	count := g.YahtzeeCount(playerID)
	return Breakdown{
		UpperSubtotal:       upperSubtotal,
		UpperBonus:          upperBonus,
		UpperTotal:          upperSubtotal + upperBonus,
		LowerTotal:          lowerTotal,
		YahtzeeBonus:        bonus,
		YahtzeeCount:        count,
		YahtzeeDisplayValue: count * YahtzeeScore,
		GrandTotal:          upperSubtotal + upperBonus + lowerTotal + bonus,
	}
}

// Card returns a copy of the player's current box values
func (g *Game) Card(playerID model.PlayerID) Card {
	values := g.state.CurrentValuesByPlayer[playerID]
	card := blankCard()
	for category, value := range values {
		if value != nil {
			v := *value
			card[category] = &v
		}
	}
	return card
}

// RollResolution runs the Joker decision procedure for a rolled Yahtzee:
//  1. Yahtzee box unset: forced first Yahtzee, no bonus, no choice.
//  2. Box must read exactly 50 or 0; anything else is corrupt state.
//  3. Matching upper box open: forced there; bonus iff box is 50.
//  4. Any non-Yahtzee lower box open: free choice among them.
//  5. Otherwise free choice among open upper boxes (possibly none).
func (g *Game) RollResolution(playerID model.PlayerID, faceValue int) (*RollResolution, error) {
	if playerID == "" {
		return nil, games.ErrPlayerRequired
	}
	if faceValue < 1 || faceValue > 6 {
		return nil, ErrInvalidFaceValue
	}

	values := g.state.CurrentValuesByPlayer[playerID]
	if values == nil {
		values = blankCard()
	}
	yahtzeeBox := values[Yahtzee]
	matching := faceToUpperCategory[faceValue]

	if yahtzeeBox == nil {
		return &RollResolution{
			FaceValue:             faceValue,
			IsFirstYahtzee:        true,
			MatchingUpperCategory: matching,
			CandidateCategories:   []Category{},
			Reason:                "First Yahtzee scores 50 in Yahtzee box.",
		}, nil
	}

	if *yahtzeeBox != YahtzeeScore && *yahtzeeBox != 0 {
		return nil, ErrCorruptYahtzeeBox
	}

	grantsBonus := *yahtzeeBox == YahtzeeScore
	bonusPoints := 0
	if grantsBonus {
		bonusPoints = BonusScore
	}

	if values[matching] == nil {
		forced := matching
		return &RollResolution{
			FaceValue:             faceValue,
			GrantsBonus:           grantsBonus,
			BonusPoints:           bonusPoints,
			MatchingUpperCategory: matching,
			ForcedCategory:        &forced,
			CandidateCategories:   []Category{matching},
			Reason:                "Matching upper box is empty and must be used.",
		}, nil
	}

	var openLower []Category
	for _, category := range LowerCategories {
		if category != Yahtzee && values[category] == nil {
			openLower = append(openLower, category)
		}
	}
	if len(openLower) > 0 {
		return &RollResolution{
			FaceValue:             faceValue,
			GrantsBonus:           grantsBonus,
			BonusPoints:           bonusPoints,
			MatchingUpperCategory: matching,
			CandidateCategories:   openLower,
			Reason:                "Matching upper box is filled; choose any open lower box.",
		}, nil
	}

	openUpper := []Category{}
	for _, category := range UpperCategories {
		if values[category] == nil {
			openUpper = append(openUpper, category)
		}
	}
	reason := "Lower section is full; choose any open upper box."
	if len(openUpper) == 0 {
		reason = "No open categories remain."
	}
	return &RollResolution{
		FaceValue:             faceValue,
		GrantsBonus:           grantsBonus,
		BonusPoints:           bonusPoints,
		MatchingUpperCategory: matching,
		CandidateCategories:   openUpper,
		Reason:                reason,
	}, nil
}

// JokerScoreValue computes the score a Joker placement writes into a target
// category: scratched placements score 0, upper and count-everything boxes
// score face×5, the three fixed lower boxes score their constants.
func JokerScoreValue(faceValue int, category Category, scratch bool) (int, error) {
	if scratch {
		return 0, nil
	}
	for _, upper := range UpperCategories {
		if category == upper {
			return faceValue * 5, nil
		}
	}
	if category == ThreeOfAKind || category == FourOfAKind || category == Chance {
		return faceValue * 5, nil
	}
	if fixed, ok := jokerFixedValues[category]; ok {
		return fixed, nil
	}
	return 0, ErrInvalidJokerTarget
}

// ApplyRoll resolves and applies a rolled Yahtzee. The first Yahtzee sets the
// Yahtzee box to 50; repeats accumulate bonus when granted and score the
// target category under the Joker rule. When no categories remain open only
// the bonus applies.
func (g *Game) ApplyRoll(roll Roll) (*RollResult, error) {
	resolution, err := g.RollResolution(roll.PlayerID, roll.FaceValue)
	if err != nil {
		return nil, err
	}

	if resolution.IsFirstYahtzee {
		g.state.YahtzeeCountByPlayer[roll.PlayerID]++
		score := YahtzeeScore
		if err := g.ApplyScoreUpdate(ScoreUpdate{PlayerID: roll.PlayerID, Category: Yahtzee, Value: &score}); err != nil {
			return nil, err
		}
		return &RollResult{YahtzeeScore: &score}, nil
	}

	g.state.YahtzeeCountByPlayer[roll.PlayerID]++

	if resolution.GrantsBonus {
		g.state.YahtzeeBonusByPlayer[roll.PlayerID] += BonusScore
	}

	if len(resolution.CandidateCategories) == 0 {
		// Card is full: only the bonus, if any, applies
		g.state.TotalsByPlayer[roll.PlayerID] = g.GrandTotal(roll.PlayerID)
		g.computeLeaderboard()
		g.touch()
		return &RollResult{
			YahtzeeScore: g.state.CurrentValuesByPlayer[roll.PlayerID][Yahtzee],
			BonusPoints:  resolution.BonusPoints,
		}, nil
	}

	validTarget := false
	for _, candidate := range resolution.CandidateCategories {
		if candidate == roll.TargetCategory {
			validTarget = true
			break
		}
	}
	if !validTarget {
		return nil, ErrInvalidJokerTarget
	}

	targetValue, err := JokerScoreValue(roll.FaceValue, roll.TargetCategory, roll.Scratch)
	if err != nil {
		return nil, err
	}
	if err := g.ApplyScoreUpdate(ScoreUpdate{PlayerID: roll.PlayerID, Category: roll.TargetCategory, Value: &targetValue}); err != nil {
		return nil, err
	}

	target := roll.TargetCategory
	return &RollResult{
		YahtzeeScore:   g.state.CurrentValuesByPlayer[roll.PlayerID][Yahtzee],
		BonusPoints:    resolution.BonusPoints,
		TargetCategory: &target,
		TargetValue:    &targetValue,
	}, nil
}

// computeLeaderboard ranks all known players by descending grand total,
// dense rank starting at 1
func (g *Game) computeLeaderboard() {
	rows := make([]LeaderboardRow, 0, len(g.state.TotalsByPlayer))
	for playerID, total := range g.state.TotalsByPlayer {
		rows = append(rows, LeaderboardRow{PlayerID: playerID, Total: total})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].Total != rows[i-1].Total {
			rank++
		}
		rows[i].Rank = rank
	}
	g.state.Leaderboard = rows
}

// Leaderboard returns a copy of the current ranking
func (g *Game) Leaderboard() []LeaderboardRow {
	rows := make([]LeaderboardRow, len(g.state.Leaderboard))
	copy(rows, g.state.Leaderboard)
	return rows
}

// Totals returns the grand total for each of the given players
func (g *Game) Totals(players []model.PlayerID) map[model.PlayerID]int {
	totals := make(map[model.PlayerID]int, len(players))
	for _, playerID := range players {
		totals[playerID] = g.GrandTotal(playerID)
	}
	return totals
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
