// Package state provides the SQLite audit store for lexscout. Every
// research run is recorded with its final notes and raw worker notes so
// past runs can be inspected after the fact. It is an audit log, not a
// resume mechanism.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jpark-labs/lexscout/pkg/models"
)

// Store wraps an SQLite database with run-audit operations.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns the path to the audit database under the project's
// .lexscout directory.
func DefaultPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".lexscout", "runs.db")
}

// Open opens the audit store at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{conn: conn, path: path}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Runs},
		{2, migrationV2Notes},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Runs = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	brief TEXT NOT NULL,
	iterations INTEGER NOT NULL DEFAULT 0,
	workers_run INTEGER NOT NULL DEFAULT 0,
	truncated INTEGER NOT NULL DEFAULT 0,
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

const migrationV2Notes = `
CREATE TABLE IF NOT EXISTS run_notes (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	kind TEXT NOT NULL CHECK (kind IN ('note', 'raw')),
	position INTEGER NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (run_id, kind, position)
);
`

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID         string
	Brief      string
	Iterations int
	WorkersRun int
	Truncated  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// SaveRun persists a finished run with its notes and raw notes.
func (s *Store) SaveRun(results *models.ResearchResults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	truncated := 0
	if results.Truncated {
		truncated = 1
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO runs
			(id, brief, iterations, workers_run, truncated, input_tokens, output_tokens, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, results.RunID, results.Brief, results.Iterations, results.WorkersRun, truncated,
		results.InputTokens, results.OutputTokens,
		formatTime(results.StartedAt), formatTime(results.FinishedAt))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM run_notes WHERE run_id = ?", results.RunID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear run notes: %w", err)
	}

	for i, note := range results.Notes {
		if _, err := tx.Exec(
			"INSERT INTO run_notes (run_id, kind, position, content) VALUES (?, 'note', ?, ?)",
			results.RunID, i, note); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert note %d: %w", i, err)
		}
	}
	for i, raw := range results.RawNotes {
		if _, err := tx.Exec(
			"INSERT INTO run_notes (run_id, kind, position, content) VALUES (?, 'raw', ?, ?)",
			results.RunID, i, raw); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert raw note %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(`
		SELECT id, brief, iterations, workers_run, truncated, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var truncated int
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Brief, &r.Iterations, &r.WorkersRun, &truncated, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Truncated = truncated != 0
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run with its notes and raw notes.
func (s *Store) GetRun(runID string) (*models.ResearchResults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := &models.ResearchResults{RunID: runID}
	var truncated int
	var started, finished string

	row := s.conn.QueryRow(`
		SELECT brief, iterations, workers_run, truncated, input_tokens, output_tokens, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID)
	err := row.Scan(&results.Brief, &results.Iterations, &results.WorkersRun, &truncated,
		&results.InputTokens, &results.OutputTokens, &started, &finished)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	results.Truncated = truncated != 0
	if results.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if results.FinishedAt, err = parseTime(finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}

	rows, err := s.conn.Query(`
		SELECT kind, content FROM run_notes WHERE run_id = ? ORDER BY kind, position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("load run notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, content string
		if err := rows.Scan(&kind, &content); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if kind == "raw" {
			results.RawNotes = append(results.RawNotes, content)
		} else {
			results.Notes = append(results.Notes, content)
		}
	}
	return results, rows.Err()
}

// ExportRun renders one run as JSON for external tooling.
func (s *Store) ExportRun(runID string) ([]byte, error) {
	results, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(results, "", "  ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
