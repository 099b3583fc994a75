package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ignyos/scorekeeper/internal/dependencies/mocks"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/storage/memory"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random)
	s.ctx = context.Background()
}

func (s *ControllerSuite) TestCreatePlayer() {
	s.random.QueueString("ABC123")

	player, err := s.controller.CreatePlayer(s.ctx, "  Alice  ")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("ABC123"), player.ID)
	s.Equal("Alice", player.Name)
	s.Equal(s.clock.CurrentTime, player.CreatedAt)
	s.Equal(s.clock.CurrentTime, player.LastAccessed)
	s.Nil(player.DeletedAt)
}

func (s *ControllerSuite) TestCreatePlayerEmptyName() {
	_, err := s.controller.CreatePlayer(s.ctx, "   ")
	s.ErrorIs(err, model.ErrPlayerNameRequired)
}

func (s *ControllerSuite) TestCreatePlayerDuplicateNameCaseInsensitive() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	_, err = s.controller.CreatePlayer(s.ctx, "aLiCe")
	s.ErrorIs(err, model.ErrPlayerNameExists)
}

func (s *ControllerSuite) TestCreatePlayerReusesDeletedName() {
	s.random.QueueString("ABC123", "DEF456")
	first, err := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.DeletePlayer(s.ctx, first.ID))

	_, err = s.controller.CreatePlayer(s.ctx, "Alice")
	s.NoError(err)
}

func (s *ControllerSuite) TestGeneratedIDAvoidsCollision() {
	s.random.QueueString("SAME00")
	_, err := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.random.QueueString("SAME00", "FRESH1")
	player, err := s.controller.CreatePlayer(s.ctx, "Bob")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("FRESH1"), player.ID)
}

func (s *ControllerSuite) TestRenamePlayer() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	s.clock.Advance(time.Hour)
	renamed, err := s.controller.RenamePlayer(s.ctx, player.ID, " Alicia ")
	s.Require().NoError(err)
	s.Equal("Alicia", renamed.Name)
	s.Equal(s.clock.CurrentTime, renamed.LastAccessed)
}

func (s *ControllerSuite) TestRenamePlayerKeepOwnName() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	// Changing only the casing of your own name is not a collision
	_, err := s.controller.RenamePlayer(s.ctx, player.ID, "ALICE")
	s.NoError(err)
}

func (s *ControllerSuite) TestRenamePlayerCollision() {
	s.random.QueueString("ABC123", "DEF456")
	_, _ = s.controller.CreatePlayer(s.ctx, "Alice")
	bob, _ := s.controller.CreatePlayer(s.ctx, "Bob")

	_, err := s.controller.RenamePlayer(s.ctx, bob.ID, "alice")
	s.ErrorIs(err, model.ErrPlayerNameExists)
}

func (s *ControllerSuite) TestRenameDeletedPlayer() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(s.controller.DeletePlayer(s.ctx, player.ID))

	_, err := s.controller.RenamePlayer(s.ctx, player.ID, "Alicia")
	s.ErrorIs(err, model.ErrPlayerDeleted)
}

func (s *ControllerSuite) TestDeletePlayerIsSoft() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	err := s.controller.DeletePlayer(s.ctx, player.ID)
	s.Require().NoError(err)

	retrieved, err := s.controller.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(retrieved.IsDeleted())
	s.Equal("Alice", retrieved.Name)
}

func (s *ControllerSuite) TestDeletePlayerTwiceIsNoop() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	s.Require().NoError(s.controller.DeletePlayer(s.ctx, player.ID))
	s.NoError(s.controller.DeletePlayer(s.ctx, player.ID))
}

func (s *ControllerSuite) TestDeletePlayerInActiveSession() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	session := &model.Session{
		ID:        "session-1",
		Game:      model.GameScrabble,
		PlayerIDs: []model.PlayerID{player.ID, "OTHER1"},
		Status:    model.SessionActive,
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	err := s.controller.DeletePlayer(s.ctx, player.ID)
	s.ErrorIs(err, model.ErrPlayerInActiveSession)
}

func (s *ControllerSuite) TestDeletePlayerInCompletedSession() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	session := &model.Session{
		ID:        "session-1",
		PlayerIDs: []model.PlayerID{player.ID},
		Status:    model.SessionCompleted,
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	s.NoError(s.controller.DeletePlayer(s.ctx, player.ID))
}

func (s *ControllerSuite) TestRestorePlayer() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(s.controller.DeletePlayer(s.ctx, player.ID))

	restored, err := s.controller.RestorePlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.False(restored.IsDeleted())
}

func (s *ControllerSuite) TestRestorePlayerNameTaken() {
	s.random.QueueString("ABC123", "DEF456")
	first, _ := s.controller.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(s.controller.DeletePlayer(s.ctx, first.ID))
	_, err := s.controller.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.controller.RestorePlayer(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrPlayerNameExists)
}

func (s *ControllerSuite) TestRestoreActivePlayerIsNoop() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	restored, err := s.controller.RestorePlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(player.ID, restored.ID)
}

func (s *ControllerSuite) TestListPlayersExcludesDeleted() {
	s.random.QueueString("ABC123", "DEF456")
	alice, _ := s.controller.CreatePlayer(s.ctx, "Alice")
	_, _ = s.controller.CreatePlayer(s.ctx, "Bob")
	s.Require().NoError(s.controller.DeletePlayer(s.ctx, alice.ID))

	active, err := s.controller.ListPlayers(s.ctx, false)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Bob", active[0].Name)

	all, err := s.controller.ListPlayers(s.ctx, true)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ControllerSuite) TestTouchLastAccessed() {
	s.random.QueueString("ABC123")
	player, _ := s.controller.CreatePlayer(s.ctx, "Alice")

	s.clock.Advance(time.Hour)
	err := s.controller.TouchLastAccessed(s.ctx, player.ID, "MISSIN")
	s.Require().NoError(err)

	retrieved, _ := s.controller.GetPlayer(s.ctx, player.ID)
	s.Equal(s.clock.CurrentTime, retrieved.LastAccessed)
}
