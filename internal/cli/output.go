package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayers(v)
	case Session:
		o.printSession(v)
	case []Session:
		o.printSessions(v)
	case Standings:
		o.printStandings(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed time.Time  `json:"lastAccessed"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// ScoreEntry response type
type ScoreEntry struct {
	PlayerID   string    `json:"playerId,omitempty"`
	Action     string    `json:"action"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Session response type
type Session struct {
	ID           string          `json:"id"`
	Game         string          `json:"game"`
	PlayerIDs    []string        `json:"playerIds"`
	Status       string          `json:"status"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime"`
	GameState    json.RawMessage `json:"gameState"`
	ScoreEntries []ScoreEntry    `json:"scoreEntries"`
}

// StandingsRow response type
type StandingsRow struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Total    int    `json:"total"`
}

// Standings response type
type Standings struct {
	SessionID string         `json:"sessionId"`
	Game      string         `json:"game"`
	Rows      []StandingsRow `json:"standings"`
	Winners   []string       `json:"winners"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.ID)
	fmt.Printf("Created: %s\n", p.CreatedAt.Local().Format(time.RFC822))
	if p.DeletedAt != nil {
		fmt.Printf("Deleted: %s\n", p.DeletedAt.Local().Format(time.RFC822))
	}
}

func (o *Output) printPlayers(players []Player) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		deletedStr := ""
		if p.DeletedAt != nil {
			deletedStr = " [deleted]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.ID, deletedStr)
	}
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Game: %s\n", s.Game)
	fmt.Printf("Status: %s\n", s.Status)
	fmt.Printf("Players: %s\n", strings.Join(s.PlayerIDs, ", "))
	fmt.Printf("Started: %s\n", s.StartTime.Local().Format(time.RFC822))
	if s.EndTime != nil {
		fmt.Printf("Ended: %s\n", s.EndTime.Local().Format(time.RFC822))
	}
	if len(s.ScoreEntries) > 0 {
		fmt.Printf("Score entries (%d):\n", len(s.ScoreEntries))
		for _, e := range s.ScoreEntries {
			detail := e.Action
			if e.Detail != "" {
				detail += " " + e.Detail
			}
			who := ""
			if e.PlayerID != "" {
				who = " by " + e.PlayerID
			}
			fmt.Printf("  - %s%s at %s\n", detail, who, e.RecordedAt.Local().Format(time.Kitchen))
		}
	}
}

func (o *Output) printSessions(sessions []Session) {
	fmt.Printf("Sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("  - %s: %s (%s), %d players, started %s\n",
			s.ID, s.Game, s.Status, len(s.PlayerIDs), s.StartTime.Local().Format(time.RFC822))
	}
}

func (o *Output) printStandings(s Standings) {
	fmt.Printf("Standings for %s (%s):\n", s.SessionID, s.Game)
	for _, row := range s.Rows {
		fmt.Printf("  %d. %s - %d\n", row.Rank, row.PlayerID, row.Total)
	}
	if len(s.Winners) > 0 {
		fmt.Printf("Winner: %s\n", strings.Join(s.Winners, ", "))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
