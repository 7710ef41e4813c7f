package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	preset TEXT NOT NULL DEFAULT '',
	board_json TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL
)`

// SQLitePersistence implements SessionPersistence with one row per session
type SQLitePersistence struct {
	sqlDB *sql.DB
}

// NewSQLitePersistence opens (and creates if needed) a session database
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLitePersistence{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection
func (p *SQLitePersistence) Close() error {
	if p == nil || p.sqlDB == nil {
		return nil
	}
	return p.sqlDB.Close()
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := newPersistedSessionData(session)
	boardJSON, err := json.Marshal(data.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	_, err = p.sqlDB.Exec(
		`INSERT INTO sessions (id, preset, board_json, created_at, last_accessed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    preset = excluded.preset,
		    board_json = excluded.board_json,
		    last_accessed_at = excluded.last_accessed_at`,
		data.ID,
		data.Preset,
		string(boardJSON),
		data.CreatedAt.UnixMilli(),
		data.LastAccessedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Load reads a session row and restores its board
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	row := p.sqlDB.QueryRow(
		`SELECT id, preset, board_json, created_at, last_accessed_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	)

	var data PersistedSessionData
	var boardJSON string
	var createdAt int64
	var lastAccessedAt int64
	if err := row.Scan(&data.ID, &data.Preset, &boardJSON, &createdAt, &lastAccessedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var board engine.BoardState
	if err := json.Unmarshal([]byte(boardJSON), &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	data.Board = &board
	data.CreatedAt = time.UnixMilli(createdAt)
	data.LastAccessedAt = time.UnixMilli(lastAccessedAt)

	return data.toSession()
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	res, err := p.sqlDB.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.sqlDB.Query(`SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	var one int
	err := p.sqlDB.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}
