package response

import (
	"encoding/json"
	"time"

	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/services/standings"
)

// Player represents a player in API responses
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed time.Time  `json:"lastAccessed"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:           string(p.ID),
		Name:         p.Name,
		CreatedAt:    p.CreatedAt,
		LastAccessed: p.LastAccessed,
		DeletedAt:    p.DeletedAt,
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerFromModel(p))
	}
	return out
}

// ScoreEntry is one record in a session's mutation log
type ScoreEntry struct {
	PlayerID   string    `json:"playerId,omitempty"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Session represents a session in API responses. GameState is the raw
// serialized engine state; clients interpret it per game.
type Session struct {
	ID           string          `json:"id"`
	Game         string          `json:"game"`
	PlayerIDs    []string        `json:"playerIds"`
	Status       string          `json:"status"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
	GameState    json.RawMessage `json:"gameState"`
	ScoreEntries []ScoreEntry    `json:"scoreEntries"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	playerIDs := make([]string, 0, len(s.PlayerIDs))
	for _, id := range s.PlayerIDs {
		playerIDs = append(playerIDs, string(id))
	}
	entries := make([]ScoreEntry, 0, len(s.ScoreEntries))
	for _, entry := range s.ScoreEntries {
		entries = append(entries, ScoreEntry{
			PlayerID:   string(entry.PlayerID),
			Action:     entry.Action,
			Detail:     entry.Detail,
			RecordedAt: entry.RecordedAt,
		})
	}
	return Session{
		ID:           string(s.ID),
		Game:         string(s.Game),
		PlayerIDs:    playerIDs,
		Status:       string(s.Status),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		GameState:    s.GameState,
		ScoreEntries: entries,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SessionsFromModel converts a slice of sessions
func SessionsFromModel(sessions []*model.Session) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionFromModel(s))
	}
	return out
}

// StandingsRow is one ranked line in a session's standings
type StandingsRow struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Total    int    `json:"total"`
}

// Standings is the ranked outcome for a session
type Standings struct {
	SessionID string         `json:"sessionId"`
	Game      string         `json:"game"`
	Rows      []StandingsRow `json:"standings"`
	Winners   []string       `json:"winners"`
}

// StandingsFromRows builds a Standings response
func StandingsFromRows(s *model.Session, rows []standings.Row) Standings {
	out := Standings{
		SessionID: string(s.ID),
		Game:      string(s.Game),
		Rows:      make([]StandingsRow, 0, len(rows)),
		Winners:   []string{},
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, StandingsRow{
			Rank:     row.Rank,
			PlayerID: string(row.PlayerID),
			Total:    row.Total,
		})
	}
	for _, winner := range standings.Winners(rows) {
		out.Winners = append(out.Winners, string(winner))
	}
	return out
}
