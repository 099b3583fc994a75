// Package sqlite provides a SQLite-backed storage implementation, the
// natural backend for a local offline score keeper.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ignyos/scorekeeper/internal/model"
	"github.com/ignyos/scorekeeper/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	last_accessed INTEGER NOT NULL,
	deleted_at    INTEGER
);
CREATE INDEX IF NOT EXISTS idx_players_name ON players (name);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	game          TEXT NOT NULL,
	player_ids    TEXT NOT NULL,
	status        TEXT NOT NULL,
	start_time    INTEGER NOT NULL,
	end_time      INTEGER,
	game_state    TEXT NOT NULL,
	score_entries TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions (start_time);
`

// Storage persists players and sessions in a single SQLite file
type Storage struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite store at the given path
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	var deletedAt sql.NullInt64
	if player.DeletedAt != nil {
		deletedAt = sql.NullInt64{Int64: toMillis(*player.DeletedAt), Valid: true}
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO players (id, name, created_at, last_accessed, deleted_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   last_accessed = excluded.last_accessed,
		   deleted_at = excluded.deleted_at`,
		string(player.ID),
		player.Name,
		toMillis(player.CreatedAt),
		toMillis(player.LastAccessed),
		deletedAt,
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, created_at, last_accessed, deleted_at FROM players WHERE id = ?`,
		string(id),
	)
	player, err := scanPlayer(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, created_at, last_accessed, deleted_at
		   FROM players
		  ORDER BY name COLLATE NOCASE ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func scanPlayer(scan func(dest ...any) error) (*model.Player, error) {
	var player model.Player
	var id string
	var createdAt, lastAccessed int64
	var deletedAt sql.NullInt64
	if err := scan(&id, &player.Name, &createdAt, &lastAccessed, &deletedAt); err != nil {
		return nil, err
	}
	player.ID = model.PlayerID(id)
	player.CreatedAt = fromMillis(createdAt)
	player.LastAccessed = fromMillis(lastAccessed)
	if deletedAt.Valid {
		t := fromMillis(deletedAt.Int64)
		player.DeletedAt = &t
	}
	return &player, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	playerIDs, err := json.Marshal(session.PlayerIDs)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	scoreEntries, err := json.Marshal(session.ScoreEntries)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	gameState := session.GameState
	if len(gameState) == 0 {
		gameState = json.RawMessage("null")
	}
	var endTime sql.NullInt64
	if session.EndTime != nil {
		endTime = sql.NullInt64{Int64: toMillis(*session.EndTime), Valid: true}
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, game, player_ids, status, start_time, end_time,
		                       game_state, score_entries, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   end_time = excluded.end_time,
		   game_state = excluded.game_state,
		   score_entries = excluded.score_entries,
		   updated_at = excluded.updated_at`,
		string(session.ID),
		string(session.Game),
		string(playerIDs),
		string(session.Status),
		toMillis(session.StartTime),
		endTime,
		string(gameState),
		string(scoreEntries),
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, game, player_ids, status, start_time, end_time,
		        game_state, score_entries, created_at, updated_at
		   FROM sessions WHERE id = ?`,
		string(id),
	)
	session, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, game, player_ids, status, start_time, end_time,
		        game_state, score_entries, created_at, updated_at
		   FROM sessions
		  ORDER BY start_time DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(scan func(dest ...any) error) (*model.Session, error) {
	var session model.Session
	var id, game, playerIDs, status, gameState, scoreEntries string
	var startTime, createdAt, updatedAt int64
	var endTime sql.NullInt64
	if err := scan(&id, &game, &playerIDs, &status, &startTime, &endTime,
		&gameState, &scoreEntries, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	session.ID = model.SessionID(id)
	session.Game = model.GameVariant(game)
	session.Status = model.SessionStatus(status)
	session.StartTime = fromMillis(startTime)
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updatedAt)
	if endTime.Valid {
		t := fromMillis(endTime.Int64)
		session.EndTime = &t
	}
	if err := json.Unmarshal([]byte(playerIDs), &session.PlayerIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scoreEntries), &session.ScoreEntries); err != nil {
		return nil, err
	}
	session.GameState = json.RawMessage(gameState)
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}
