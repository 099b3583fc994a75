package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignyos/scorekeeper/internal/api"
	"github.com/ignyos/scorekeeper/internal/api/response"
	"github.com/ignyos/scorekeeper/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Players:   app.Players,
		Sessions:  app.Sessions,
		Standings: app.Standings,
	})

	return &testServer{handler: router}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Player
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Alice", resp.Name)
	assert.Len(t, resp.ID, 6)
	assert.Nil(t, resp.DeletedAt)
}

func TestCreatePlayerDuplicateName(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "alice"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NAME_EXISTS")
}

func TestPlayerLifecycle(t *testing.T) {
	ts := newTestServer(t)

	id := createPlayer(t, ts, "Bob")

	// Rename
	rr := ts.request(http.MethodPatch, "/api/v1/players/"+id, map[string]string{"name": "Robert"})
	assert.Equal(t, http.StatusOK, rr.Code)

	var renamed response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &renamed))
	assert.Equal(t, "Robert", renamed.Name)

	// Delete (soft)
	rr = ts.request(http.MethodDelete, "/api/v1/players/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Hidden from default listing
	rr = ts.request(http.MethodGet, "/api/v1/players", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var players []response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	assert.Empty(t, players)

	// Visible with includeDeleted
	rr = ts.request(http.MethodGet, "/api/v1/players?includeDeleted=true", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.NotNil(t, players[0].DeletedAt)

	// Restore
	rr = ts.request(http.MethodPost, "/api/v1/players/"+id+"/restore", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var restored response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &restored))
	assert.Nil(t, restored.DeletedAt)
}

func TestGetMissingPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/NOPE99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_NOT_FOUND")
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")

	body := map[string]any{
		"game":      "scrabble",
		"playerIds": []string{p1, p2},
	}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "scrabble", resp.Game)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, []string{p1, p2}, resp.PlayerIDs)
	assert.NotEmpty(t, resp.GameState)
	assert.Nil(t, resp.EndTime)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")

	// Unknown game
	rr := ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{
		"game":      "canasta",
		"playerIds": []string{p1, p1},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNKNOWN_GAME")

	// Too few players
	rr = ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{
		"game":      "yahtzee",
		"playerIds": []string{p1},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INSUFFICIENT_PLAYERS")

	// Duplicate player
	rr = ts.request(http.MethodPost, "/api/v1/sessions", map[string]any{
		"game":      "yahtzee",
		"playerIds": []string{p1, p1},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "DUPLICATE_PLAYER")
}

func TestDeletePlayerInActiveSession(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "yahtzee", p1, p2)

	rr := ts.request(http.MethodDelete, "/api/v1/players/"+p1, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "PLAYER_IN_ACTIVE_SESSION")

	// Completing the session unblocks the delete
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/players/"+p1, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestYahtzeeScoreFlow(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "yahtzee", p1, p2)

	// Score a valid upper-section value
	body := map[string]any{"playerId": p1, "category": "threes", "value": 9}
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/yahtzee/score", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.ScoreEntries, 1)
	assert.Equal(t, "yahtzeeScore", resp.ScoreEntries[0].Action)

	// Invalid fixed-category value is rejected and not recorded
	body = map[string]any{"playerId": p1, "category": "fullHouse", "value": 24}
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/yahtzee/score", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.ScoreEntries, 1)
}

func TestYahtzeeRollResolution(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "yahtzee", p1, p2)

	rr := ts.request(http.MethodGet,
		"/api/v1/sessions/"+sessionID+"/yahtzee/roll-resolution?player="+p1+"&face=4", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resolution map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resolution))
	// First Yahtzee scores 50 in the box; no forced choice yet
	assert.Equal(t, true, resolution["isFirstYahtzee"])
	assert.Nil(t, resolution["forcedCategory"])
}

func TestScrabbleRoundFlow(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "scrabble", p1, p2)

	// Both players set active scores
	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/active-score",
		map[string]any{"playerId": p1, "value": 24})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/active-score",
		map[string]any{"playerId": p2, "value": 18})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Advance commits the round
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/advance", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Correct the committed round
	rr = ts.request(http.MethodPatch, "/api/v1/sessions/"+sessionID+"/scrabble/rounds",
		map[string]any{"roundIndex": 0, "playerId": p2, "value": 22})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Standings reflect committed totals, descending
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sessionID+"/standings", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var standingsResp response.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standingsResp))
	require.Len(t, standingsResp.Rows, 2)
	assert.Equal(t, p1, standingsResp.Rows[0].PlayerID)
	assert.Equal(t, 24, standingsResp.Rows[0].Total)
	assert.Equal(t, 22, standingsResp.Rows[1].Total)
	assert.Equal(t, []string{p1}, standingsResp.Winners)
}

func TestAdvanceIncompleteRound(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "scrabble", p1, p2)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/active-score",
		map[string]any{"playerId": p1, "value": 12})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/advance", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROUND_INCOMPLETE")
}

func TestRoundScoreAndWinner(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "threetothirteen", p1, p2)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/rounds/score",
		map[string]any{"roundIndex": 0, "playerId": p1, "value": 15})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/rounds/score",
		map[string]any{"roundIndex": 0, "playerId": p2, "value": 0})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/rounds/winner",
		map[string]any{"roundIndex": 0, "playerId": p2})
	assert.Equal(t, http.StatusOK, rr.Code)

	// Lower total ranks first
	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sessionID+"/standings", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var standingsResp response.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standingsResp))
	require.Len(t, standingsResp.Rows, 2)
	assert.Equal(t, p2, standingsResp.Rows[0].PlayerID)
	assert.Equal(t, 0, standingsResp.Rows[0].Total)
}

func TestWrongGameEndpoint(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "yahtzee", p1, p2)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/scrabble/active-score",
		map[string]any{"playerId": p1, "value": 10})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompleteSession(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "trepenta", p1, p2)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.EndTime)

	// Completed sessions reject score updates
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/rounds/score",
		map[string]any{"roundIndex": 0, "playerId": p1, "value": 5})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_COMPLETED")

	// Completing twice is rejected
	rr = ts.request(http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestListSessionsFiltered(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	createSession(t, ts, "yahtzee", p1, p2)
	completedID := createSession(t, ts, "scrabble", p1, p2)

	rr := ts.request(http.MethodPost, "/api/v1/sessions/"+completedID+"/complete", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions?status=active", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var sessions []response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "yahtzee", sessions[0].Game)

	rr = ts.request(http.MethodGet, "/api/v1/sessions?game=scrabble", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, completedID, sessions[0].ID)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")
	sessionID := createSession(t, ts, "yahtzee", p1, p2)

	rr := ts.request(http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "SESSION_NOT_FOUND")
}

func TestTrepentaSettings(t *testing.T) {
	ts := newTestServer(t)

	p1 := createPlayer(t, ts, "Alice")
	p2 := createPlayer(t, ts, "Bob")

	body := map[string]any{
		"game":      "trepenta",
		"playerIds": []string{p1, p2},
		"settings": map[string]any{
			"deckConfig": map[string]any{"type": "trepenta", "count": 6},
		},
	}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, string(resp.GameState), `"count":6`)
}

// Helper functions

func createPlayer(t *testing.T, ts *testServer, name string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp.ID
}

func createSession(t *testing.T, ts *testServer, game string, playerIDs ...string) string {
	t.Helper()

	body := map[string]any{
		"game":      game,
		"playerIds": playerIDs,
	}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	return resp.ID
}
