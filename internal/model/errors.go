package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerNameRequired    = errors.New("player name is required")
	ErrPlayerNameExists      = errors.New("active player name already exists")
	ErrPlayerInActiveSession = errors.New("player is referenced by an active session")
	ErrPlayerDeleted         = errors.New("player has been deleted")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrInsufficientPlayers = errors.New("at least two players are required")
	ErrDuplicatePlayer     = errors.New("duplicate player in roster")
	ErrUnknownGameVariant  = errors.New("unknown game variant")
)
