package storage

import (
	"context"

	"github.com/ignyos/scorekeeper/internal/model"
)

// Storage defines the interface for data persistence.
// Implementations are plain record stores: uniqueness, referential integrity
// and lifecycle rules live in the services.
type Storage interface {
	// Player operations. ListPlayers returns every player, soft-deleted
	// included, sorted by name; callers filter.
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Session operations. ListSessions returns sessions ordered
	// newest-start-first. DeleteSession is a hard delete.
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
}
