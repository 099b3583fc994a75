package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ignyos/scorekeeper/internal/api/request"
	"github.com/ignyos/scorekeeper/internal/api/response"
	"github.com/ignyos/scorekeeper/internal/games"
	"github.com/ignyos/scorekeeper/internal/games/scrabble"
	"github.com/ignyos/scorekeeper/internal/games/threethirteen"
	"github.com/ignyos/scorekeeper/internal/games/trepenta"
	"github.com/ignyos/scorekeeper/internal/games/yahtzee"
	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/services/session"
)

// ScoreHandler handles the per-game score mutation endpoints. Each
// endpoint requires the session to be playing the matching game.
type ScoreHandler struct {
	sessions *session.Controller
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(sessions *session.Controller) *ScoreHandler {
	return &ScoreHandler{sessions: sessions}
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["session_id"])
}

func wrongGameError(expected model.GameVariant) error {
	return NewInvalidRequestError(fmt.Sprintf("session is not a %s game", expected))
}

// YahtzeeScore handles POST /api/v1/sessions/{session_id}/yahtzee/score
func (h *ScoreHandler) YahtzeeScore(w http.ResponseWriter, r *http.Request) {
	var req request.YahtzeeScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{
			PlayerID: model.PlayerID(req.PlayerID),
			Action:   "yahtzeeScore",
			Detail:   req.Category,
		},
		func(engine games.Engine) error {
			game, ok := engine.(*yahtzee.Game)
			if !ok {
				return wrongGameError(model.GameYahtzee)
			}
			return game.ApplyScoreUpdate(yahtzee.ScoreUpdate{
				PlayerID: model.PlayerID(req.PlayerID),
				Category: yahtzee.Category(req.Category),
				Value:    req.Value,
			})
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// YahtzeeRollResolution handles
// GET /api/v1/sessions/{session_id}/yahtzee/roll-resolution?player=&face=
// It is read-only: it previews what a rolled Yahtzee may do.
func (h *ScoreHandler) YahtzeeRollResolution(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	playerID := model.PlayerID(query.Get("player"))
	faceValue, err := strconv.Atoi(query.Get("face"))
	if err != nil {
		WriteError(w, NewInvalidRequestError("face must be an integer"))
		return
	}

	found, err := h.sessions.GetSession(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	engine, err := h.sessions.Engine(found)
	if err != nil {
		WriteError(w, err)
		return
	}
	game, ok := engine.(*yahtzee.Game)
	if !ok {
		WriteError(w, wrongGameError(model.GameYahtzee))
		return
	}

	resolution, err := game.RollResolution(playerID, faceValue)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resolution)
}

// YahtzeeRoll handles POST /api/v1/sessions/{session_id}/yahtzee/roll
func (h *ScoreHandler) YahtzeeRoll(w http.ResponseWriter, r *http.Request) {
	var req request.YahtzeeRollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var result *yahtzee.RollResult
	_, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{
			PlayerID: model.PlayerID(req.PlayerID),
			Action:   "yahtzeeRoll",
			Detail:   fmt.Sprintf("face %d", req.FaceValue),
		},
		func(engine games.Engine) error {
			game, ok := engine.(*yahtzee.Game)
			if !ok {
				return wrongGameError(model.GameYahtzee)
			}
			applied, err := game.ApplyRoll(yahtzee.Roll{
				PlayerID:       model.PlayerID(req.PlayerID),
				FaceValue:      req.FaceValue,
				TargetCategory: yahtzee.Category(req.TargetCategory),
				Scratch:        req.Scratch,
			})
			if err != nil {
				return err
			}
			result = applied
			return nil
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// ScrabbleActiveScore handles
// POST /api/v1/sessions/{session_id}/scrabble/active-score
func (h *ScoreHandler) ScrabbleActiveScore(w http.ResponseWriter, r *http.Request) {
	var req request.ScrabbleActiveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{
			PlayerID: model.PlayerID(req.PlayerID),
			Action:   "scrabbleActiveScore",
		},
		func(engine games.Engine) error {
			game, ok := engine.(*scrabble.Game)
			if !ok {
				return wrongGameError(model.GameScrabble)
			}
			return game.ApplyActiveScoreUpdate(scrabble.ActiveScoreUpdate{
				PlayerID: model.PlayerID(req.PlayerID),
				Value:    req.Value,
			})
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// ScrabbleAdvanceRound handles
// POST /api/v1/sessions/{session_id}/scrabble/advance
func (h *ScoreHandler) ScrabbleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	found, err := h.sessions.GetSession(r.Context(), sessionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	roster := found.PlayerIDs

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{Action: "scrabbleAdvanceRound"},
		func(engine games.Engine) error {
			game, ok := engine.(*scrabble.Game)
			if !ok {
				return wrongGameError(model.GameScrabble)
			}
			return game.AdvanceRound(roster)
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// ScrabbleRoundCorrection handles
// PATCH /api/v1/sessions/{session_id}/scrabble/rounds
func (h *ScoreHandler) ScrabbleRoundCorrection(w http.ResponseWriter, r *http.Request) {
	var req request.ScrabbleRoundCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{
			PlayerID: model.PlayerID(req.PlayerID),
			Action:   "scrabbleRoundCorrection",
			Detail:   fmt.Sprintf("round %d", req.RoundIndex),
		},
		func(engine games.Engine) error {
			game, ok := engine.(*scrabble.Game)
			if !ok {
				return wrongGameError(model.GameScrabble)
			}
			return game.UpdateCompletedRoundScore(scrabble.CompletedScoreUpdate{
				RoundIndex: req.RoundIndex,
				PlayerID:   model.PlayerID(req.PlayerID),
				Value:      req.Value,
			})
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// RoundScore handles POST /api/v1/sessions/{session_id}/rounds/score
// for the dealt-round games (Three Thirteen and Trepenta)
func (h *ScoreHandler) RoundScore(w http.ResponseWriter, r *http.Request) {
	var req request.RoundScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r),
		model.ScoreEntry{
			PlayerID: model.PlayerID(req.PlayerID),
			Action:   "roundScore",
			Detail:   fmt.Sprintf("round %d", req.RoundIndex),
		},
		func(engine games.Engine) error {
			switch game := engine.(type) {
			case *threethirteen.Game:
				return game.ApplyScoreUpdate(threethirteen.ScoreUpdate{
					RoundIndex: req.RoundIndex,
					PlayerID:   model.PlayerID(req.PlayerID),
					Value:      req.Value,
				})
			case *trepenta.Game:
				return game.ApplyScoreUpdate(trepenta.ScoreUpdate{
					RoundIndex: req.RoundIndex,
					PlayerID:   model.PlayerID(req.PlayerID),
					Value:      req.Value,
				})
			default:
				return NewInvalidRequestError("session does not play dealt rounds")
			}
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// RoundWinner handles POST /api/v1/sessions/{session_id}/rounds/winner
func (h *ScoreHandler) RoundWinner(w http.ResponseWriter, r *http.Request) {
	var req request.RoundWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var winner *model.PlayerID
	if req.PlayerID != nil {
		id := model.PlayerID(*req.PlayerID)
		winner = &id
	}

	entry := model.ScoreEntry{
		Action: "roundWinner",
		Detail: fmt.Sprintf("round %d", req.RoundIndex),
	}
	if winner != nil {
		entry.PlayerID = *winner
	}

	updated, err := h.sessions.ApplyUpdate(r.Context(), sessionID(r), entry,
		func(engine games.Engine) error {
			switch game := engine.(type) {
			case *threethirteen.Game:
				return game.SetRoundWinner(req.RoundIndex, winner)
			case *trepenta.Game:
				return game.SetRoundWinner(req.RoundIndex, winner)
			default:
				return NewInvalidRequestError("session does not play dealt rounds")
			}
		})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}
