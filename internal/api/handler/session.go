package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ignyos/scorekeeper/internal/api/request"
	"github.com/ignyos/scorekeeper/internal/api/response"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/services/session"
	"github.com/ignyos/scorekeeper/internal/services/standings"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions  *session.Controller
	standings *standings.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller, standings *standings.Service) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		standings: standings,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	playerIDs := make([]model.PlayerID, 0, len(req.PlayerIDs))
	for _, id := range req.PlayerIDs {
		playerIDs = append(playerIDs, model.PlayerID(id))
	}

	created, err := h.sessions.CreateSession(r.Context(), session.CreateRequest{
		Game:      model.GameVariant(req.Game),
		PlayerIDs: playerIDs,
		Settings:  req.Settings,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(created))
}

// List handles GET /api/v1/sessions?game=&status=&player=
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := session.ListFilter{
		Game:     model.GameVariant(query.Get("game")),
		Status:   model.SessionStatus(query.Get("status")),
		PlayerID: model.PlayerID(query.Get("player")),
	}

	sessions, err := h.sessions.ListSessions(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionsFromModel(sessions))
}

// Get handles GET /api/v1/sessions/{session_id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["session_id"])

	found, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(found))
}

// Complete handles POST /api/v1/sessions/{session_id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["session_id"])

	completed, err := h.sessions.CompleteSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(completed))
}

// Delete handles DELETE /api/v1/sessions/{session_id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["session_id"])

	if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Standings handles GET /api/v1/sessions/{session_id}/standings
func (h *SessionHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["session_id"])

	found, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	rows, err := h.standings.ForSession(found)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StandingsFromRows(found, rows))
}
