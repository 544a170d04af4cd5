// Package storage provides SQLite-based persistence for match results.
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

	"github.com/vovakirdan/tetra-arena/internal/config"
	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for match persistence.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID        int64
	MatchID   string
	Room      string
	Mode      string
	Loser     string // Empty if the match was stopped
	EndReason string // "topped_out", "forced", "replaced", "shutdown"
	Duration  int    // Duration in seconds
	Players   []PlayerScore
	CreatedAt time.Time
}

// PlayerScore is one player's final score in a match.
type PlayerScore struct {
	Name  string
	Score int
	Lines int
}

// ScoreEntry is one row of the leaderboard.
type ScoreEntry struct {
	Name      string
	Mode      string
	Score     int
	Lines     int
	MatchID   string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// SQLite allows a single writer; result saves arrive from several goroutines.
	db.SetMaxOpenConns(1)

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
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			room TEXT NOT NULL,
			mode TEXT NOT NULL,
			loser TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_room ON matches(room);

		CREATE TABLE IF NOT EXISTS match_players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL REFERENCES matches(match_id),
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
		CREATE INDEX IF NOT EXISTS idx_match_players_score ON match_players(score DESC);
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

// parseTime handles both time.Time and string values returned by the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTimeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveMatch records a finished match and its players in one transaction.
// Returns the ID of the inserted match row.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var loser sql.NullString
	if m.Loser != "" {
		loser = sql.NullString{String: m.Loser, Valid: true}
	}

	res, err := tx.Exec(
		`INSERT INTO matches (match_id, room, mode, loser, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.Room, m.Mode, loser, m.EndReason, m.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	for _, p := range m.Players {
		if _, err := tx.Exec(
			"INSERT INTO match_players (match_id, name, score, lines) VALUES (?, ?, ?, ?)",
			m.MatchID, p.Name, p.Score, p.Lines,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save player %q: %w", p.Name, err)
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

func (s *Store) matchPlayers(matchID string) ([]PlayerScore, error) {
	rows, err := s.db.Query(
		"SELECT name, score, lines FROM match_players WHERE match_id = ? ORDER BY id",
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match players: %w", err)
	}
	defer rows.Close()

	var players []PlayerScore
	for rows.Next() {
		var p PlayerScore
		if err := rows.Scan(&p.Name, &p.Score, &p.Lines); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return players, nil
}

// MatchByID retrieves a match by its match ID. Returns nil if not found.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	var m MatchRecord
	var loser sql.NullString
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, match_id, room, mode, loser, end_reason, duration_secs, created_at
		 FROM matches
		 WHERE match_id = ?`,
		matchID,
	).Scan(&m.ID, &m.MatchID, &m.Room, &m.Mode, &loser, &m.EndReason, &m.Duration, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}

	m.Loser = loser.String
	m.CreatedAt = parseTime(createdAt)
	m.Players, err = s.matchPlayers(m.MatchID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, match_id, room, mode, loser, end_reason, duration_secs, created_at
		 FROM matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		var loser sql.NullString
		var createdAt any
		if err := rows.Scan(&m.ID, &m.MatchID, &m.Room, &m.Mode, &loser, &m.EndReason, &m.Duration, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.Loser = loser.String
		m.CreatedAt = parseTime(createdAt)
		matches = append(matches, m)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for i := range matches {
		if matches[i].Players, err = s.matchPlayers(matches[i].MatchID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *Store) queryScores(query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.Name, &e.Mode, &e.Score, &e.Lines, &e.MatchID, &createdAt); err != nil {
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

// TopScores retrieves the top N player scores. An empty mode means every mode.
// Results are ordered by score descending.
func (s *Store) TopScores(mode string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT p.name, m.mode, p.score, p.lines, m.match_id, m.created_at
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 WHERE ? = '' OR m.mode = ?
		 ORDER BY p.score DESC, p.lines DESC, p.id ASC
		 LIMIT ?`,
		mode, mode, limit,
	)
}

// PlayerHistory retrieves a player's most recent scores.
func (s *Store) PlayerHistory(name string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryScores(
		`SELECT p.name, m.mode, p.score, p.lines, m.match_id, m.created_at
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 WHERE p.name = ?
		 ORDER BY m.created_at DESC, p.id DESC
		 LIMIT ?`,
		name, limit,
	)
}

// HighScore returns the highest score for the given mode, or every mode
// when mode is empty. Returns 0 if no scores exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(p.score)
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 WHERE ? = '' OR m.mode = ?`,
		mode, mode,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	record := MatchRecord{
		MatchID:   data.MatchID,
		Room:      data.Room,
		Mode:      data.Mode,
		Loser:     data.Loser,
		EndReason: data.EndReason,
		Duration:  data.DurationSecs,
		Players:   make([]PlayerScore, 0, len(data.Players)),
	}
	for _, p := range data.Players {
		record.Players = append(record.Players, PlayerScore{Name: p.Name, Score: p.Score, Lines: p.Lines})
	}
	_, err := s.SaveMatch(record)
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// PlayerStats contains aggregated statistics for one player.
type PlayerStats struct {
	Name       string
	Matches    int
	Losses     int
	HighScore  int
	AvgScore   float64
	TotalLines int64
	LastPlayed time.Time
}

// GetPlayerStats retrieves aggregated statistics for a player.
func (s *Store) GetPlayerStats(name string) (*PlayerStats, error) {
	stats := &PlayerStats{Name: name}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(p.score), 0), COALESCE(AVG(p.score), 0),
		        COALESCE(SUM(p.lines), 0), COALESCE(SUM(m.loser = p.name), 0), MAX(m.created_at)
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 WHERE p.name = ?`,
		name,
	).Scan(&stats.Matches, &stats.HighScore, &stats.AvgScore, &stats.TotalLines, &stats.Losses, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllPlayerStats retrieves statistics for every player, best first.
func (s *Store) GetAllPlayerStats() ([]PlayerStats, error) {
	rows, err := s.db.Query(
		`SELECT p.name, COUNT(*), MAX(p.score), AVG(p.score), SUM(p.lines),
		        COALESCE(SUM(m.loser = p.name), 0), MAX(m.created_at)
		 FROM match_players p
		 JOIN matches m ON m.match_id = p.match_id
		 GROUP BY p.name
		 ORDER BY MAX(p.score) DESC, p.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all player stats: %w", err)
	}
	defer rows.Close()

	var stats []PlayerStats
	for rows.Next() {
		var ps PlayerStats
		var lastPlayed any
		if err := rows.Scan(&ps.Name, &ps.Matches, &ps.HighScore, &ps.AvgScore, &ps.TotalLines, &ps.Losses, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ps.LastPlayed = parseTime(lastPlayed)
		stats = append(stats, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}
