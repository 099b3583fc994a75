// Package standings derives rankings and outcomes from session state.
// It never mutates sessions; every ranking is computed from the stored
// engine snapshot on demand.
package standings

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/yahtzee"
	"github.com/ignyos/scorekeeper/internal/model"
)

// Row is one ranked line in a session's standings. Rank is dense,
// starting at 1: players with equal totals share a rank.
type Row struct {
	Rank     int            `json:"rank"`
	PlayerID model.PlayerID `json:"playerId"`
	Total    int            `json:"total"`
}

// Service derives standings from serialized session state
type Service struct {
	registry games.Registry
}

// NewService creates a new standings Service
func NewService(registry games.Registry) *Service {
	return &Service{registry: registry}
}

// ForSession computes the ranked standings for a session. Yahtzee carries
// a precomputed leaderboard inside its state blob and that ordering is
// authoritative; the other variants rank derived totals, ascending for
// the lowest-wins rummy games and descending otherwise.
func (s *Service) ForSession(session *model.Session) ([]Row, error) {
	if session.Game == model.GameYahtzee {
		return s.yahtzeeStandings(session)
	}

	engine, err := s.registry.New(session.Game, session.GameState)
	if err != nil {
		if errors.Is(err, model.ErrUnknownGameVariant) {
			return fallbackStandings(session)
		}
		return nil, err
	}
	engine.EnsurePlayers(session.PlayerIDs)

	totals := engine.Totals(session.PlayerIDs)
	return rank(session.PlayerIDs, totals, lowerWins(session.Game)), nil
}

// yahtzeeStandings reads the leaderboard the engine maintains inside its
// own state rather than re-deriving one
func (s *Service) yahtzeeStandings(session *model.Session) ([]Row, error) {
	game, err := yahtzee.New(session.GameState)
	if err != nil {
		return nil, err
	}
	game.EnsurePlayers(session.PlayerIDs)

	board := game.Leaderboard()
	rows := make([]Row, 0, len(board))
	for _, entry := range board {
		rows = append(rows, Row{
			Rank:     entry.Rank,
			PlayerID: entry.PlayerID,
			Total:    entry.Total,
		})
	}
	return rows, nil
}

// fallbackStandings handles sessions stored under a variant this build no
// longer knows: a flat totalsByPlayer map ranked descending
func fallbackStandings(session *model.Session) ([]Row, error) {
	var state struct {
		TotalsByPlayer map[model.PlayerID]int `json:"totalsByPlayer"`
	}
	if len(session.GameState) > 0 {
		if err := json.Unmarshal(session.GameState, &state); err != nil {
			return nil, err
		}
	}

	totals := make(map[model.PlayerID]int, len(session.PlayerIDs))
	for _, id := range session.PlayerIDs {
		totals[id] = state.TotalsByPlayer[id]
	}
	return rank(session.PlayerIDs, totals, false), nil
}

// lowerWins reports whether smaller totals rank higher for the variant
func lowerWins(variant model.GameVariant) bool {
	return variant == model.GameThreeThirteen || variant == model.GameTrepenta
}

// rank orders players by total and assigns dense ranks from 1.
// Ties share a rank; player ID breaks ordering ties so output is stable.
func rank(players []model.PlayerID, totals map[model.PlayerID]int, ascending bool) []Row {
	rows := make([]Row, 0, len(players))
	for _, id := range players {
		rows = append(rows, Row{PlayerID: id, Total: totals[id]})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			if ascending {
				return rows[i].Total < rows[j].Total
			}
			return rows[i].Total > rows[j].Total
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	currentRank := 0
	for i := range rows {
		if i == 0 || rows[i].Total != rows[i-1].Total {
			currentRank++
		}
		rows[i].Rank = currentRank
	}
	return rows
}

// Winners returns the players holding rank 1
func Winners(rows []Row) []model.PlayerID {
	winners := []model.PlayerID{}
	for _, row := range rows {
		if row.Rank == 1 {
			winners = append(winners, row.PlayerID)
		}
	}
	return winners
}
