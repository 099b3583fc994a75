// Package player manages the shared player registry. Players are global
// records referenced by sessions across every game, so deletion is always
// soft: the record is tombstoned and history keeps resolving.
package player

import (
	"context"
	"errors"
	"strings"

	"github.com/ignyos/scorekeeper/internal/dependencies/clock"
	"github.com/ignyos/scorekeeper/internal/dependencies/random"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/storage"
)

const (
	// PlayerIDLength is the length of generated player identifiers
	PlayerIDLength = 6
	// PlayerIDAlphabet is the characters used in player identifiers
	PlayerIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Controller manages player registry operations
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
}

// NewController creates a new player Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
	}
}

// CreatePlayer registers a new player with the given display name.
// Names are trimmed and must be unique (case-insensitively) among
// non-deleted players.
func (c *Controller) CreatePlayer(ctx context.Context, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrPlayerNameRequired
	}

	if err := c.checkNameAvailable(ctx, name, ""); err != nil {
		return nil, err
	}

	id, err := c.generateID(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	player := &model.Player{
		ID:           id,
		Name:         name,
		CreatedAt:    now,
		LastAccessed: now,
	}

	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// GetPlayer retrieves a player by ID, including deleted players
func (c *Controller) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return c.storage.GetPlayer(ctx, id)
}

// ListPlayers returns players sorted by name. Deleted players are
// excluded unless includeDeleted is set.
func (c *Controller) ListPlayers(ctx context.Context, includeDeleted bool) ([]*model.Player, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if includeDeleted {
		return players, nil
	}

	active := make([]*model.Player, 0, len(players))
	for _, player := range players {
		if !player.IsDeleted() {
			active = append(active, player)
		}
	}
	return active, nil
}

// RenamePlayer changes a player's display name, subject to the same
// validation as creation
func (c *Controller) RenamePlayer(ctx context.Context, id model.PlayerID, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrPlayerNameRequired
	}

	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if player.IsDeleted() {
		return nil, model.ErrPlayerDeleted
	}

	if err := c.checkNameAvailable(ctx, name, id); err != nil {
		return nil, err
	}

	player.Name = name
	player.LastAccessed = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer soft-deletes a player. The record stays resolvable so
// completed sessions keep their names. Players referenced by an active
// session cannot be deleted. Deleting an already-deleted player is a no-op.
func (c *Controller) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if player.IsDeleted() {
		return nil
	}

	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if session.IsActive() && session.HasPlayer(id) {
			return model.ErrPlayerInActiveSession
		}
	}

	now := c.clock.Now()
	player.DeletedAt = &now
	return c.storage.SavePlayer(ctx, player)
}

// RestorePlayer clears a player's deletion tombstone. Restoring a
// non-deleted player is a no-op. Restoration fails if another active
// player has since claimed the name.
func (c *Controller) RestorePlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !player.IsDeleted() {
		return player, nil
	}

	if err := c.checkNameAvailable(ctx, player.Name, id); err != nil {
		return nil, err
	}

	player.DeletedAt = nil
	player.LastAccessed = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// TouchLastAccessed bumps LastAccessed for the given players. Missing
// players are skipped rather than failing the batch.
func (c *Controller) TouchLastAccessed(ctx context.Context, ids ...model.PlayerID) error {
	now := c.clock.Now()
	for _, id := range ids {
		player, err := c.storage.GetPlayer(ctx, id)
		if err != nil {
			continue
		}
		player.LastAccessed = now
		if err := c.storage.SavePlayer(ctx, player); err != nil {
			return err
		}
	}
	return nil
}

// checkNameAvailable verifies no other non-deleted player holds the name,
// comparing case-insensitively. exclude skips the player being updated.
func (c *Controller) checkNameAvailable(ctx context.Context, name string, exclude model.PlayerID) error {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return err
	}
	for _, player := range players {
		if player.ID == exclude || player.IsDeleted() {
			continue
		}
		if strings.EqualFold(player.Name, name) {
			return model.ErrPlayerNameExists
		}
	}
	return nil
}

// generateID produces a player ID that does not collide with any
// existing record
func (c *Controller) generateID(ctx context.Context) (model.PlayerID, error) {
	for {
		id := model.PlayerID(c.random.String(PlayerIDLength, PlayerIDAlphabet))
		_, err := c.storage.GetPlayer(ctx, id)
		if err == nil {
			continue
		}
		if errors.Is(err, model.ErrPlayerNotFound) {
			return id, nil
		}
		return "", err
	}
}
