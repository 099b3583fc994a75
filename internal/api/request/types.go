package request

import "encoding/json"

// CreatePlayerRequest is the request body for registering a player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// RenamePlayerRequest is the request body for renaming a player
type RenamePlayerRequest struct {
	Name string `json:"name"`
}

// CreateSessionRequest is the request body for starting a session.
// Settings is an optional variant-specific configuration blob.
type CreateSessionRequest struct {
	Game      string          `json:"game"`
	PlayerIDs []string        `json:"playerIds"`
	Settings  json.RawMessage `json:"settings,omitempty"`
}

// YahtzeeScoreRequest writes one scorecard box; a null value clears it
type YahtzeeScoreRequest struct {
	PlayerID string `json:"playerId"`
	Category string `json:"category"`
	Value    *int   `json:"value"`
}

// YahtzeeRollRequest applies a rolled Yahtzee for a player
type YahtzeeRollRequest struct {
	PlayerID       string `json:"playerId"`
	FaceValue      int    `json:"faceValue"`
	TargetCategory string `json:"targetCategory,omitempty"`
	Scratch        bool   `json:"scratch,omitempty"`
}

// ScrabbleActiveScoreRequest writes a player's in-progress round value
type ScrabbleActiveScoreRequest struct {
	PlayerID string `json:"playerId"`
	Value    *int   `json:"value"`
}

// ScrabbleRoundCorrectionRequest corrects a committed round's value
type ScrabbleRoundCorrectionRequest struct {
	RoundIndex int    `json:"roundIndex"`
	PlayerID   string `json:"playerId"`
	Value      int    `json:"value"`
}

// RoundScoreRequest writes a player's score for a dealt round
// (Three Thirteen and Trepenta)
type RoundScoreRequest struct {
	RoundIndex int    `json:"roundIndex"`
	PlayerID   string `json:"playerId"`
	Value      *int   `json:"value"`
}

// RoundWinnerRequest marks a round's winner; a null playerId clears it
type RoundWinnerRequest struct {
	RoundIndex int     `json:"roundIndex"`
	PlayerID   *string `json:"playerId"`
}
