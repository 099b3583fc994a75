// Package session manages the lifecycle of game sessions: creation,
// score mutation, completion, and deletion. Rule semantics live in the
// engines; this controller owns the hydrate-mutate-snapshot-persist cycle
// around them.
package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ignyos/scorekeeper/internal/dependencies/clock"
	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/trepenta"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/services/player"
	"github.com/ignyos/scorekeeper/internal/storage"
)

// MinPlayers is the smallest roster a session may be created with
const MinPlayers = 2

// Controller manages session lifecycle operations
type Controller struct {
	storage  storage.Storage
	registry games.Registry
	players  *player.Controller
	clock    clock.Clock
	logger   *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	registry games.Registry,
	players *player.Controller,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		registry: registry,
		players:  players,
		clock:    clock,
		logger:   logger,
	}
}

// CreateRequest describes a new session. Settings is an optional
// variant-specific configuration blob applied before the first snapshot;
// only Trepenta currently accepts one.
type CreateRequest struct {
	Game      model.GameVariant
	PlayerIDs []model.PlayerID
	Settings  json.RawMessage
}

// CreateSession validates the roster, initializes engine state, and
// persists a new active session. Roster order is preserved as seat order.
func (c *Controller) CreateSession(ctx context.Context, req CreateRequest) (*model.Session, error) {
	if !c.registry.Knows(req.Game) {
		return nil, model.ErrUnknownGameVariant
	}
	if len(req.PlayerIDs) < MinPlayers {
		return nil, model.ErrInsufficientPlayers
	}

	seen := make(map[model.PlayerID]bool, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		if seen[id] {
			return nil, model.ErrDuplicatePlayer
		}
		seen[id] = true

		p, err := c.players.GetPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		if p.IsDeleted() {
			return nil, model.ErrPlayerDeleted
		}
	}

	engine, err := c.registry.New(req.Game, nil)
	if err != nil {
		return nil, err
	}
	if len(req.Settings) > 0 {
		if err := applySettings(engine, req.Settings); err != nil {
			return nil, err
		}
	}
	engine.EnsurePlayers(req.PlayerIDs)

	state, err := engine.Snapshot()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:           model.SessionID(uuid.New().String()),
		Game:         req.Game,
		PlayerIDs:    append([]model.PlayerID{}, req.PlayerIDs...),
		Status:       model.SessionActive,
		StartTime:    now,
		GameState:    state,
		ScoreEntries: []model.ScoreEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if err := c.players.TouchLastAccessed(ctx, req.PlayerIDs...); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("game", string(session.Game)),
		slog.Int("player_count", len(session.PlayerIDs)),
	)
	return session, nil
}

// applySettings decodes and applies a variant-specific settings blob
func applySettings(engine games.Engine, raw json.RawMessage) error {
	switch e := engine.(type) {
	case *trepenta.Game:
		var settings trepenta.Settings
		if err := json.Unmarshal(raw, &settings); err != nil {
			return err
		}
		e.ConfigureSettings(settings)
	}
	return nil
}

// GetSession retrieves a session by ID
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// ListFilter narrows a session listing. Zero values match everything.
type ListFilter struct {
	Game     model.GameVariant
	Status   model.SessionStatus
	PlayerID model.PlayerID
}

// ListSessions returns sessions newest-first, optionally filtered
func (c *Controller) ListSessions(ctx context.Context, filter ListFilter) ([]*model.Session, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Session, 0, len(sessions))
	for _, session := range sessions {
		if filter.Game != "" && session.Game != filter.Game {
			continue
		}
		if filter.Status != "" && session.Status != filter.Status {
			continue
		}
		if filter.PlayerID != "" && !session.HasPlayer(filter.PlayerID) {
			continue
		}
		matched = append(matched, session)
	}
	return matched, nil
}

// Engine hydrates the session's rule engine from its stored state.
// The roster is re-applied so state stored before a schema change is
// upgraded on every load.
func (c *Controller) Engine(session *model.Session) (games.Engine, error) {
	engine, err := c.registry.New(session.Game, session.GameState)
	if err != nil {
		return nil, err
	}
	engine.EnsurePlayers(session.PlayerIDs)
	return engine, nil
}

// ApplyUpdate runs one score mutation against an active session: the
// engine is hydrated, mutate is applied, and the new snapshot is persisted
// together with an entry in the session's mutation log.
func (c *Controller) ApplyUpdate(
	ctx context.Context,
	id model.SessionID,
	entry model.ScoreEntry,
	mutate func(engine games.Engine) error,
) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, model.ErrSessionCompleted
	}

	engine, err := c.Engine(session)
	if err != nil {
		return nil, err
	}

	if err := mutate(engine); err != nil {
		return nil, err
	}

	state, err := engine.Snapshot()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	entry.RecordedAt = now
	session.GameState = state
	session.ScoreEntries = append(session.ScoreEntries, entry)
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteSession finalizes an active session. Completion is terminal:
// the engine state is frozen and further updates are rejected.
func (c *Controller) CompleteSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, model.ErrSessionCompleted
	}

	engine, err := c.Engine(session)
	if err != nil {
		return nil, err
	}
	engine.Finalize()

	state, err := engine.Snapshot()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session.GameState = state
	session.Status = model.SessionCompleted
	session.EndTime = &now
	session.UpdatedAt = now

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session completed",
		slog.String("session_id", string(session.ID)),
		slog.String("game", string(session.Game)),
	)
	return session, nil
}

// DeleteSession permanently removes a session and its score history
func (c *Controller) DeleteSession(ctx context.Context, id model.SessionID) error {
	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	c.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}
