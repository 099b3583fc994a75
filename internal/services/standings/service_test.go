package standings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/scrabble"
	"github.com/ignyos/scorekeeper/internal/games/threethirteen"
	"github.com/ignyos/scorekeeper/internal/games/trepenta"
	"github.com/ignyos/scorekeeper/internal/games/yahtzee"
	"github.com/ignyos/scorekeeper/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = NewService(games.Registry{
		model.GameYahtzee:       yahtzee.NewEngine,
		model.GameScrabble:      scrabble.NewEngine,
		model.GameThreeThirteen: threethirteen.NewEngine,
		model.GameTrepenta:      trepenta.NewEngine,
	})
}

func (s *ServiceSuite) snapshot(engine games.Engine) json.RawMessage {
	state, err := engine.Snapshot()
	s.Require().NoError(err)
	return state
}

func (s *ServiceSuite) TestScrabbleRanksDescending() {
	game, err := scrabble.New(nil)
	s.Require().NoError(err)
	players := []model.PlayerID{"P1", "P2", "P3"}
	game.EnsurePlayers(players)

	for id, score := range map[model.PlayerID]int{"P1": 30, "P2": 55, "P3": 30} {
		err := game.ApplyActiveScoreUpdate(scrabble.ActiveScoreUpdate{PlayerID: id, Value: games.IntPtr(score)})
		s.Require().NoError(err)
	}

	rows, err := s.service.ForSession(&model.Session{
		Game:      model.GameScrabble,
		PlayerIDs: players,
		GameState: s.snapshot(game),
	})
	s.Require().NoError(err)

	s.Require().Len(rows, 3)
	s.Equal(model.PlayerID("P2"), rows[0].PlayerID)
	s.Equal(1, rows[0].Rank)
	s.Equal(55, rows[0].Total)
	// Dense ranks: tied players share rank 2, nobody gets rank 3
	s.Equal(2, rows[1].Rank)
	s.Equal(2, rows[2].Rank)
}

func (s *ServiceSuite) TestThreeThirteenRanksAscending() {
	game, err := threethirteen.New(nil)
	s.Require().NoError(err)
	players := []model.PlayerID{"P1", "P2"}
	game.EnsurePlayers(players)

	s.Require().NoError(game.ApplyScoreUpdate(threethirteen.ScoreUpdate{
		RoundIndex: 0, PlayerID: "P1", Value: games.IntPtr(40),
	}))
	s.Require().NoError(game.ApplyScoreUpdate(threethirteen.ScoreUpdate{
		RoundIndex: 0, PlayerID: "P2", Value: games.IntPtr(5),
	}))

	rows, err := s.service.ForSession(&model.Session{
		Game:      model.GameThreeThirteen,
		PlayerIDs: players,
		GameState: s.snapshot(game),
	})
	s.Require().NoError(err)

	// Lower total wins
	s.Equal(model.PlayerID("P2"), rows[0].PlayerID)
	s.Equal(1, rows[0].Rank)
	s.Equal(5, rows[0].Total)
	s.Equal(model.PlayerID("P1"), rows[1].PlayerID)
	s.Equal(2, rows[1].Rank)
}

func (s *ServiceSuite) TestTrepentaRanksAscending() {
	game, err := trepenta.New(nil)
	s.Require().NoError(err)
	players := []model.PlayerID{"P1", "P2"}
	game.EnsurePlayers(players)

	s.Require().NoError(game.ApplyScoreUpdate(trepenta.ScoreUpdate{
		RoundIndex: 0, PlayerID: "P1", Value: games.IntPtr(12),
	}))

	rows, err := s.service.ForSession(&model.Session{
		Game:      model.GameTrepenta,
		PlayerIDs: players,
		GameState: s.snapshot(game),
	})
	s.Require().NoError(err)

	// P2's untouched rounds count as zero, which wins
	s.Equal(model.PlayerID("P2"), rows[0].PlayerID)
	s.Equal(1, rows[0].Rank)
}

func (s *ServiceSuite) TestYahtzeeUsesStoredLeaderboard() {
	game, err := yahtzee.New(nil)
	s.Require().NoError(err)
	players := []model.PlayerID{"P1", "P2"}
	game.EnsurePlayers(players)

	s.Require().NoError(game.ApplyScoreUpdate(yahtzee.ScoreUpdate{
		PlayerID: "P1", Category: yahtzee.Sixes, Value: games.IntPtr(24),
	}))
	s.Require().NoError(game.ApplyScoreUpdate(yahtzee.ScoreUpdate{
		PlayerID: "P2", Category: yahtzee.Chance, Value: games.IntPtr(19),
	}))

	rows, err := s.service.ForSession(&model.Session{
		Game:      model.GameYahtzee,
		PlayerIDs: players,
		GameState: s.snapshot(game),
	})
	s.Require().NoError(err)

	s.Require().Len(rows, 2)
	s.Equal(model.PlayerID("P1"), rows[0].PlayerID)
	s.Equal(1, rows[0].Rank)
	s.Equal(24, rows[0].Total)
	s.Equal(model.PlayerID("P2"), rows[1].PlayerID)
	s.Equal(19, rows[1].Total)
}

func (s *ServiceSuite) TestUnknownVariantFallsBackToFlatTotals() {
	rows, err := s.service.ForSession(&model.Session{
		Game:      "canasta",
		PlayerIDs: []model.PlayerID{"P1", "P2"},
		GameState: json.RawMessage(`{"totalsByPlayer":{"P1":120,"P2":340}}`),
	})
	s.Require().NoError(err)

	s.Equal(model.PlayerID("P2"), rows[0].PlayerID)
	s.Equal(340, rows[0].Total)
	s.Equal(1, rows[0].Rank)
}

func (s *ServiceSuite) TestWinners() {
	rows := []Row{
		{Rank: 1, PlayerID: "P1", Total: 10},
		{Rank: 1, PlayerID: "P2", Total: 10},
		{Rank: 2, PlayerID: "P3", Total: 8},
	}
	s.Equal([]model.PlayerID{"P1", "P2"}, Winners(rows))
}
