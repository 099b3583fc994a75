package model

import (
	"encoding/json"
	"time"
)

// SessionID uniquely identifies a game session
type SessionID string

// GameVariant selects which rule engine a session uses
type GameVariant string

const (
	GameYahtzee       GameVariant = "yahtzee"
	GameScrabble      GameVariant = "scrabble"
	GameThreeThirteen GameVariant = "threetothirteen"
	GameTrepenta      GameVariant = "trepenta"
)

// SessionStatus represents the lifecycle phase of a session
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// ScoreEntry is one record in a session's append-only mutation log
type ScoreEntry struct {
	PlayerID   PlayerID  `json:"playerId,omitempty"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Session wraps one game's serialized rule-engine state together with the
// player roster and lifecycle timestamps. PlayerIDs order is significant:
// it is the seat/turn order used for dealer rotation.
type Session struct {
	ID           SessionID       `json:"id"`
	Game         GameVariant     `json:"game"`
	PlayerIDs    []PlayerID      `json:"playerIds"`
	Status       SessionStatus   `json:"status"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
	GameState    json.RawMessage `json:"gameState"`
	ScoreEntries []ScoreEntry    `json:"scoreEntries"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsActive reports whether the session still accepts score updates
func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}

// HasPlayer reports whether the given player is part of the roster
func (s *Session) HasPlayer(id PlayerID) bool {
	for _, pid := range s.PlayerIDs {
		if pid == id {
			return true
		}
	}
	return false
}
