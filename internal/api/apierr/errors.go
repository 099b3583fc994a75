// Package apierr maps service and engine errors onto the JSON error
// envelope and HTTP status codes the API returns.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/scrabble"
	"github.com/ignyos/scorekeeper/internal/games/yahtzee"
	"github.com/ignyos/scorekeeper/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodePlayerNameRequired    = "PLAYER_NAME_REQUIRED"
	CodePlayerNameExists      = "PLAYER_NAME_EXISTS"
	CodePlayerInActiveSession = "PLAYER_IN_ACTIVE_SESSION"
	CodePlayerDeleted         = "PLAYER_DELETED"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeSessionCompleted      = "SESSION_COMPLETED"
	CodeInsufficientPlayers   = "INSUFFICIENT_PLAYERS"
	CodeDuplicatePlayer       = "DUPLICATE_PLAYER"
	CodeUnknownGame           = "UNKNOWN_GAME"
	CodeRoundNotFound         = "ROUND_NOT_FOUND"
	CodeRoundIncomplete       = "ROUND_INCOMPLETE"
	CodeInvalidScore          = "INVALID_SCORE"
	CodeYahtzeeBoxLocked      = "YAHTZEE_BOX_LOCKED"
	CodeCorruptState          = "CORRUPT_STATE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Registry and session errors
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrPlayerNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodePlayerNameRequired, "Player name is required"}}
	case errors.Is(err, model.ErrPlayerNameExists):
		return &httpError{http.StatusConflict, APIError{CodePlayerNameExists, "A player with this name already exists"}}
	case errors.Is(err, model.ErrPlayerInActiveSession):
		return &httpError{http.StatusConflict, APIError{CodePlayerInActiveSession, "Player is part of an active session"}}
	case errors.Is(err, model.ErrPlayerDeleted):
		return &httpError{http.StatusConflict, APIError{CodePlayerDeleted, "Player has been deleted"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrSessionCompleted):
		return &httpError{http.StatusConflict, APIError{CodeSessionCompleted, "Session is already completed"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusBadRequest, APIError{CodeInsufficientPlayers, "At least two players are required"}}
	case errors.Is(err, model.ErrDuplicatePlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicatePlayer, "Each player may appear only once"}}
	case errors.Is(err, model.ErrUnknownGameVariant):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownGame, "Unknown game"}}

	// Shared engine errors
	case errors.Is(err, games.ErrPlayerRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player is required"}}
	case errors.Is(err, games.ErrRoundNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoundNotFound, "Round not found"}}

	// Scrabble
	case errors.Is(err, scrabble.ErrRoundIncomplete):
		return &httpError{http.StatusConflict, APIError{CodeRoundIncomplete, "Enter valid scores for all players before starting the next round"}}

	// Yahtzee
	case errors.Is(err, yahtzee.ErrInvalidCategory):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Invalid category"}}
	case errors.Is(err, yahtzee.ErrInvalidFixedValue):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Invalid value for fixed-score category"}}
	case errors.Is(err, yahtzee.ErrInvalidFaceValue):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Face value must be from 1 to 6"}}
	case errors.Is(err, yahtzee.ErrInvalidJokerTarget):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Choose a valid category for joker scoring"}}
	case errors.Is(err, yahtzee.ErrYahtzeeBoxLocked):
		return &httpError{http.StatusConflict, APIError{CodeYahtzeeBoxLocked, "Yahtzee box cannot be changed after bonus points are awarded"}}
	case errors.Is(err, yahtzee.ErrCorruptYahtzeeBox):
		return &httpError{http.StatusConflict, APIError{CodeCorruptState, "Yahtzee box must be 50 or 0 before applying joker rules"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
