package games

import (
	"encoding/json"
	"errors"

	"github.com/ignyos/scorekeeper/internal/model"
)

// Errors shared by all rule engines
var (
	ErrPlayerRequired = errors.New("player is required")
	ErrRoundNotFound  = errors.New("round not found")
)

// Engine is the capability surface every game variant implements.
// An engine owns an exclusive mutable state value; Snapshot produces a
// detached serialized copy, which is the sole state-transfer contract
// between the rules and everything else (persistence, rendering, history).
type Engine interface {
	// Variant returns the game key this engine implements
	Variant() model.GameVariant

	// EnsurePlayers idempotently initializes per-player structures for the
	// given roster, backfilling anything missing from older stored state
	EnsurePlayers(players []model.PlayerID)

	// Totals returns the derived total for each of the given players
	Totals(players []model.PlayerID) map[model.PlayerID]int

	// Snapshot serializes the current state as a detached copy
	Snapshot() (json.RawMessage, error)

	// Finalize marks the state terminal; called once on session completion
	Finalize()
}

// Constructor builds an engine from a serialized state blob.
// A nil or empty blob produces a freshly initialized state; otherwise the
// blob is decoded and upgraded from any legacy shape before use.
type Constructor func(raw json.RawMessage) (Engine, error)

// Registry maps variant keys to engine constructors. It is passed explicitly
// to session creation and rendering call sites rather than discovered via
// ambient state.
type Registry map[model.GameVariant]Constructor

// New constructs an engine for the given variant from the given state blob
func (r Registry) New(variant model.GameVariant, raw json.RawMessage) (Engine, error) {
	ctor, ok := r[variant]
	if !ok {
		return nil, model.ErrUnknownGameVariant
	}
	return ctor(raw)
}

// Knows reports whether the registry has a constructor for the variant
func (r Registry) Knows(variant model.GameVariant) bool {
	_, ok := r[variant]
	return ok
}

// Variants returns the registered variant keys
func (r Registry) Variants() []model.GameVariant {
	keys := make([]model.GameVariant, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	return keys
}

// IntPtr is a convenience for building nullable score values
func IntPtr(v int) *int {
	return &v
}
