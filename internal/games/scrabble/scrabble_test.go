package scrabble

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/model"
)

type ScrabbleSuite struct {
	suite.Suite
	game    *Game
	players []model.PlayerID
}

func TestScrabbleSuite(t *testing.T) {
	suite.Run(t, new(ScrabbleSuite))
}

func (s *ScrabbleSuite) SetupTest() {
	game, err := New(nil)
	s.Require().NoError(err)
	s.game = game
	s.players = []model.PlayerID{"P1", "P2"}
	s.game.EnsurePlayers(s.players)
}

func (s *ScrabbleSuite) setActive(playerID model.PlayerID, value int) {
	err := s.game.ApplyActiveScoreUpdate(ActiveScoreUpdate{PlayerID: playerID, Value: games.IntPtr(value)})
	s.Require().NoError(err)
}

func (s *ScrabbleSuite) TestFreshGame() {
	s.Empty(s.game.Rounds())
	s.Nil(s.game.ActiveScore("P1"))
	s.Equal(0, s.game.PlayerTotal("P1", true))
}

func (s *ScrabbleSuite) TestActiveScoreUpdate() {
	s.setActive("P1", 24)

	active := s.game.ActiveScore("P1")
	s.Require().NotNil(active)
	s.Equal(24, *active)
	// Active round still uncommitted
	s.Empty(s.game.Rounds())
}

func (s *ScrabbleSuite) TestActiveScoreClear() {
	s.setActive("P1", 24)
	err := s.game.ApplyActiveScoreUpdate(ActiveScoreUpdate{PlayerID: "P1", Value: nil})
	s.Require().NoError(err)
	s.Nil(s.game.ActiveScore("P1"))
}

func (s *ScrabbleSuite) TestActiveScorePlayerRequired() {
	err := s.game.ApplyActiveScoreUpdate(ActiveScoreUpdate{Value: games.IntPtr(10)})
	s.ErrorIs(err, games.ErrPlayerRequired)
}

func (s *ScrabbleSuite) TestCannotAdvanceIncompleteRound() {
	s.setActive("P1", 24)
	// P2 has no value yet

	s.False(s.game.CanAdvanceRound(s.players))
	err := s.game.AdvanceRound(s.players)
	s.ErrorIs(err, ErrRoundIncomplete)
	s.Empty(s.game.Rounds())
}

func (s *ScrabbleSuite) TestAdvanceRound() {
	s.setActive("P1", 24)
	s.setActive("P2", 0) // zero is a valid committed value

	s.True(s.game.CanAdvanceRound(s.players))
	err := s.game.AdvanceRound(s.players)
	s.Require().NoError(err)

	rounds := s.game.Rounds()
	s.Require().Len(rounds, 1)
	s.Equal(24, rounds[0].ScoresByPlayer["P1"])
	s.Equal(0, rounds[0].ScoresByPlayer["P2"])

	// Active round resets to null for everyone
	s.Nil(s.game.ActiveScore("P1"))
	s.Nil(s.game.ActiveScore("P2"))
}

func (s *ScrabbleSuite) TestTotalsIncludeActiveRound() {
	s.setActive("P1", 24)
	s.setActive("P2", 18)
	s.Require().NoError(s.game.AdvanceRound(s.players))
	s.setActive("P1", 7)

	s.Equal(31, s.game.PlayerTotal("P1", true))
	s.Equal(24, s.game.PlayerTotal("P1", false))
	s.Equal(18, s.game.PlayerTotal("P2", true))

	totals := s.game.Totals(s.players)
	s.Equal(31, totals["P1"])
	s.Equal(18, totals["P2"])
}

func (s *ScrabbleSuite) TestUpdateCompletedRoundScore() {
	s.setActive("P1", 24)
	s.setActive("P2", 18)
	s.Require().NoError(s.game.AdvanceRound(s.players))

	err := s.game.UpdateCompletedRoundScore(CompletedScoreUpdate{RoundIndex: 0, PlayerID: "P1", Value: 30})
	s.Require().NoError(err)
	s.Equal(30, s.game.Rounds()[0].ScoresByPlayer["P1"])
	s.Equal(30, s.game.PlayerTotal("P1", false))
}

func (s *ScrabbleSuite) TestUpdateCompletedRoundOutOfRange() {
	err := s.game.UpdateCompletedRoundScore(CompletedScoreUpdate{RoundIndex: 0, PlayerID: "P1", Value: 30})
	s.ErrorIs(err, games.ErrRoundNotFound)

	err = s.game.UpdateCompletedRoundScore(CompletedScoreUpdate{RoundIndex: -1, PlayerID: "P1", Value: 30})
	s.ErrorIs(err, games.ErrRoundNotFound)
}

func (s *ScrabbleSuite) TestEnsurePlayersBackfillsJoiner() {
	s.setActive("P1", 24)
	s.setActive("P2", 18)
	s.Require().NoError(s.game.AdvanceRound(s.players))

	joined := append(s.players, "P3")
	s.game.EnsurePlayers(joined)

	// Committed rounds gain a zero, the active round a null
	s.Equal(0, s.game.Rounds()[0].ScoresByPlayer["P3"])
	s.Nil(s.game.ActiveScore("P3"))
	s.Equal(0, s.game.PlayerTotal("P3", true))
}

func (s *ScrabbleSuite) TestEnsurePlayersPreservesExisting() {
	s.setActive("P1", 24)
	s.game.EnsurePlayers(s.players)

	active := s.game.ActiveScore("P1")
	s.Require().NotNil(active)
	s.Equal(24, *active)
}

func (s *ScrabbleSuite) TestLegacyFlatTotalsMigration() {
	raw := []byte(`{"totalsByPlayer":{"P1":120,"P2":95}}`)

	game, err := New(raw)
	s.Require().NoError(err)
	game.EnsurePlayers(s.players)

	rounds := game.Rounds()
	s.Require().Len(rounds, 1)
	s.Equal(120, rounds[0].ScoresByPlayer["P1"])
	s.Equal(95, rounds[0].ScoresByPlayer["P2"])
	s.Equal(120, game.PlayerTotal("P1", true))

	// The legacy map does not survive the next snapshot
	state, err := game.Snapshot()
	s.Require().NoError(err)
	s.NotContains(string(state), "totalsByPlayer")
}

func (s *ScrabbleSuite) TestLegacyAllZeroTotalsIgnored() {
	raw := []byte(`{"totalsByPlayer":{"P1":0,"P2":0}}`)

	game, err := New(raw)
	s.Require().NoError(err)
	s.Empty(game.Rounds())
}

func (s *ScrabbleSuite) TestSnapshotRoundTrip() {
	s.setActive("P1", 24)
	s.setActive("P2", 18)
	s.Require().NoError(s.game.AdvanceRound(s.players))
	s.setActive("P1", 7)

	state, err := s.game.Snapshot()
	s.Require().NoError(err)

	restored, err := New(state)
	s.Require().NoError(err)
	restored.EnsurePlayers(s.players)

	s.Equal(s.game.Totals(s.players), restored.Totals(s.players))
	s.Equal(s.game.Rounds(), restored.Rounds())
	active := restored.ActiveScore("P1")
	s.Require().NotNil(active)
	s.Equal(7, *active)
}
