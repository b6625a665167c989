// Package storage persists scores, saved games and versus history in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-tetris/internal/multiplayer"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// ErrNoSave is returned by LoadGame when the slot is empty.
var ErrNoSave = errors.New("storage: no saved game in slot")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is one finished game.
type ScoreEntry struct {
	ID        int64
	Name      string
	Mode      string
	Points    int
	Lines     int
	Level     int
	CreatedAt time.Time
}

// SaveInfo describes a stored save slot.
type SaveInfo struct {
	Slot      string
	Rows      int
	Cols      int
	Points    int
	UpdatedAt time.Time
}

// VersusMatch is a stored versus session summary.
type VersusMatch struct {
	ID            int64
	Code          string
	HostSession   string
	JoinerSession string
	Frames        int
	Handoffs      int
	EndReason     string
	Duration      int // Duration in seconds
	CreatedAt     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			points INTEGER NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(mode, points DESC);

		CREATE TABLE IF NOT EXISTS saves (
			slot TEXT PRIMARY KEY,
			board_rows INTEGER NOT NULL,
			board_cols INTEGER NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS versus_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			host_session TEXT NOT NULL,
			joiner_session TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			handoffs INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_versus_host ON versus_matches(host_session);
		CREATE INDEX IF NOT EXISTS idx_versus_joiner ON versus_matches(joiner_session);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both time.Time and the driver's text form.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScore records a finished game. Returns the ID of the inserted record.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (name, mode, points, lines, level) VALUES (?, ?, ?, ?, ?)",
		e.Name, e.Mode, e.Points, e.Lines, e.Level,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// SaveEngineScore records the engine's current counters.
func (s *Store) SaveEngineScore(name string, e *tetris.Engine) (int64, error) {
	return s.SaveScore(ScoreEntry{
		Name:   name,
		Mode:   e.Mode().String(),
		Points: e.Points(),
		Lines:  e.Lines(),
		Level:  e.Level(),
	})
}

// TopScores retrieves the top N scores for a mode, best first.
func (s *Store) TopScores(mode string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, name, mode, points, lines, level, created_at
		 FROM scores
		 WHERE mode = ?
		 ORDER BY points DESC, id ASC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Name, &e.Mode, &e.Points, &e.Lines, &e.Level, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the best score for a mode, or 0 if none exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(points) FROM scores WHERE mode = ?", mode).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all scores for a mode.
func (s *Store) ClearScores(mode string) error {
	if _, err := s.db.Exec("DELETE FROM scores WHERE mode = ?", mode); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// Stats contains aggregated statistics for a mode.
type Stats struct {
	Mode       string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalLines int64
	LastPlayed time.Time
}

// ModeStats retrieves aggregated statistics for a mode.
func (s *Store) ModeStats(mode string) (*Stats, error) {
	stats := &Stats{Mode: mode}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(points), 0), COALESCE(AVG(points), 0),
		        COALESCE(SUM(lines), 0), MAX(created_at)
		 FROM scores WHERE mode = ?`,
		mode,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalLines, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// SaveGame stores the engine's save record in a slot, replacing any
// previous save there.
func (s *Store) SaveGame(slot string, e *tetris.Engine) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return fmt.Errorf("storage: cannot encode game: %w", err)
	}
	rows, cols := e.Dims()
	_, err = s.db.Exec(
		`INSERT INTO saves (slot, board_rows, board_cols, points, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET
		   board_rows = excluded.board_rows, board_cols = excluded.board_cols, points = excluded.points,
		   data = excluded.data, updated_at = excluded.updated_at`,
		slot, rows, cols, e.Points(), data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}
	return nil
}

// LoadGame restores a slot into e. The engine must have the geometry the
// game was saved with; on any error e is left untouched.
func (s *Store) LoadGame(slot string, e *tetris.Engine) error {
	var rows, cols int
	var data []byte
	err := s.db.QueryRow("SELECT board_rows, board_cols, data FROM saves WHERE slot = ?", slot).Scan(&rows, &cols, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w %q", ErrNoSave, slot)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot query save: %w", err)
	}

	if r, c := e.Dims(); r != rows || c != cols {
		return fmt.Errorf("storage: slot %q holds a %dx%d board, engine is %dx%d: %w",
			slot, rows, cols, r, c, tetris.ErrBoardSize)
	}
	if err := e.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("storage: cannot load slot %q: %w", slot, err)
	}
	return nil
}

// SaveDims returns the board geometry stored in a slot.
func (s *Store) SaveDims(slot string) (rows, cols int, err error) {
	err = s.db.QueryRow("SELECT board_rows, board_cols FROM saves WHERE slot = ?", slot).Scan(&rows, &cols)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w %q", ErrNoSave, slot)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("storage: cannot query save: %w", err)
	}
	return rows, cols, nil
}

// DeleteSave empties a slot. Deleting an empty slot is not an error.
func (s *Store) DeleteSave(slot string) error {
	if _, err := s.db.Exec("DELETE FROM saves WHERE slot = ?", slot); err != nil {
		return fmt.Errorf("storage: cannot delete save: %w", err)
	}
	return nil
}

// Saves lists the occupied slots, most recent first.
func (s *Store) Saves() ([]SaveInfo, error) {
	rows, err := s.db.Query(
		`SELECT slot, board_rows, board_cols, points, updated_at FROM saves ORDER BY updated_at DESC, slot ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	defer rows.Close()

	var saves []SaveInfo
	for rows.Next() {
		var info SaveInfo
		var updatedAt any
		if err := rows.Scan(&info.Slot, &info.Rows, &info.Cols, &info.Points, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.UpdatedAt = parseTime(updatedAt)
		saves = append(saves, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return saves, nil
}

// SaveVersusResult implements multiplayer.ResultSaver.
func (s *Store) SaveVersusResult(r multiplayer.VersusResult) error {
	_, err := s.db.Exec(
		`INSERT INTO versus_matches
		 (code, host_session, joiner_session, frames, handoffs, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Code, r.HostSession, r.JoinerSession, r.Frames, r.Handoffs, r.EndReason, r.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save versus match: %w", err)
	}
	return nil
}

var _ multiplayer.ResultSaver = (*Store)(nil)

// RecentVersusMatches retrieves the most recent versus sessions.
func (s *Store) RecentVersusMatches(limit int) ([]VersusMatch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, code, host_session, joiner_session, frames, handoffs,
		        end_reason, duration_secs, created_at
		 FROM versus_matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query versus matches: %w", err)
	}
	defer rows.Close()

	var results []VersusMatch
	for rows.Next() {
		var m VersusMatch
		var createdAt any
		if err := rows.Scan(
			&m.ID,
			&m.Code,
			&m.HostSession,
			&m.JoinerSession,
			&m.Frames,
			&m.Handoffs,
			&m.EndReason,
			&m.Duration,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}
