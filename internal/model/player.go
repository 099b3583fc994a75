package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a person tracked by the score keeper.
// Players are never hard-deleted; DeletedAt marks a soft delete so that
// completed session history keeps resolving names.
type Player struct {
	ID           PlayerID   `json:"id"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed time.Time  `json:"lastAccessed"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

// IsDeleted reports whether the player has been soft-deleted
func (p *Player) IsDeleted() bool {
	return p.DeletedAt != nil
}
