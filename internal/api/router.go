package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ignyos/scorekeeper/internal/api/handler"
	"github.com/ignyos/scorekeeper/internal/api/middleware"
	"github.com/ignyos/scorekeeper/internal/services/player"
	"github.com/ignyos/scorekeeper/internal/services/session"
	"github.com/ignyos/scorekeeper/internal/services/standings"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Players   *player.Controller
	Sessions  *session.Controller
	Standings *standings.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Players)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Standings)
	scoreHandler := handler.NewScoreHandler(cfg.Sessions)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Player registry routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{player_id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{player_id}", playerHandler.Rename).Methods(http.MethodPatch)
	api.HandleFunc("/players/{player_id}", playerHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/players/{player_id}/restore", playerHandler.Restore).Methods(http.MethodPost)

	// Session lifecycle routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{session_id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{session_id}", sessionHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{session_id}/complete", sessionHandler.Complete).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{session_id}/standings", sessionHandler.Standings).Methods(http.MethodGet)

	// Per-game score routes
	scores := api.PathPrefix("/sessions/{session_id}").Subrouter()
	scores.HandleFunc("/yahtzee/score", scoreHandler.YahtzeeScore).Methods(http.MethodPost)
	scores.HandleFunc("/yahtzee/roll-resolution", scoreHandler.YahtzeeRollResolution).Methods(http.MethodGet)
	scores.HandleFunc("/yahtzee/roll", scoreHandler.YahtzeeRoll).Methods(http.MethodPost)
	scores.HandleFunc("/scrabble/active-score", scoreHandler.ScrabbleActiveScore).Methods(http.MethodPost)
	scores.HandleFunc("/scrabble/advance", scoreHandler.ScrabbleAdvanceRound).Methods(http.MethodPost)
	scores.HandleFunc("/scrabble/rounds", scoreHandler.ScrabbleRoundCorrection).Methods(http.MethodPatch)
	scores.HandleFunc("/rounds/score", scoreHandler.RoundScore).Methods(http.MethodPost)
	scores.HandleFunc("/rounds/winner", scoreHandler.RoundWinner).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
