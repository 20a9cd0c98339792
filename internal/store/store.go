// Package store persists session definitions and run history in a local
// SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

// Session is a named, versioned script with its declared inputs.
type Session struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Version     int        `json:"version"`
	Steps       []Step     `json:"steps,omitempty"`
	Variables   []Variable `json:"variables,omitempty"`
}

// Step is one ordered action of a session, kept as raw JSON so the stored
// form survives script format additions.
type Step struct {
	Number int             `json:"number"`
	Action json.RawMessage `json:"action"`
}

// Variable declares an input a session expects at run time.
type Variable struct {
	Name             string `json:"name"`
	Label            string `json:"label"`
	Required         bool   `json:"required"`
	RequiresApproval bool   `json:"requires_approval"`
}

// Run is one execution record of a session.
type Run struct {
	ID             string    `json:"id"`
	SessionName    string    `json:"session_name"`
	SessionVersion int       `json:"session_version"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	Status         string    `json:"status"`
	LogPath        string    `json:"log_path,omitempty"`
}

// Store wraps the session database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions(
	  name        TEXT    NOT NULL,
	  description TEXT    NOT NULL DEFAULT '',
	  version     INTEGER NOT NULL,
	  PRIMARY KEY(name, version)
	);
	CREATE TABLE IF NOT EXISTS session_steps(
	  session_name    TEXT    NOT NULL,
	  session_version INTEGER NOT NULL,
	  step_number     INTEGER NOT NULL,
	  action          TEXT    NOT NULL CHECK (json_valid(action)),
	  PRIMARY KEY(session_name, session_version, step_number)
	);
	CREATE TABLE IF NOT EXISTS session_variables(
	  session_name      TEXT    NOT NULL,
	  session_version   INTEGER NOT NULL,
	  variable_name     TEXT    NOT NULL,
	  label             TEXT    NOT NULL DEFAULT '',
	  required          INTEGER NOT NULL DEFAULT 0,
	  requires_approval INTEGER NOT NULL DEFAULT 0,
	  PRIMARY KEY(session_name, session_version, variable_name)
	);
	CREATE TABLE IF NOT EXISTS session_runs(
	  id              TEXT    PRIMARY KEY,
	  session_name    TEXT    NOT NULL,
	  session_version INTEGER NOT NULL,
	  started_at      INTEGER NOT NULL,
	  ended_at        INTEGER,
	  status          TEXT    NOT NULL,
	  log_path        TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON session_runs(session_name, session_version);
	`)
	if err != nil {
		return fmt.Errorf("create session tables: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts the session with its steps and variables in one
// transaction.
func (s *Store) CreateSession(sess Session) error {
	if sess.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions(name, description, version) VALUES(?,?,?)`,
		sess.Name, sess.Description, sess.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}

	stepStmt, err := tx.Prepare(
		`INSERT INTO session_steps(session_name, session_version, step_number, action) VALUES(?,?,?,json(?))`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare step insert: %w", err)
	}
	defer stepStmt.Close()
	for _, step := range sess.Steps {
		if _, err := stepStmt.Exec(sess.Name, sess.Version, step.Number, string(step.Action)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert step %d: %w", step.Number, err)
		}
	}

	varStmt, err := tx.Prepare(
		`INSERT INTO session_variables(session_name, session_version, variable_name, label, required, requires_approval) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare variable insert: %w", err)
	}
	defer varStmt.Close()
	for _, v := range sess.Variables {
		if _, err := varStmt.Exec(sess.Name, sess.Version, v.Name, v.Label, v.Required, v.RequiresApproval); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert variable %q: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// ListSessions returns all session headers, newest version first per name.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT name, description, version FROM sessions ORDER BY name, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Name, &sess.Description, &sess.Version); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// GetSession loads a session with its steps and variables.
func (s *Store) GetSession(name string, version int) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(
		`SELECT name, description, version FROM sessions WHERE name = ? AND version = ?`,
		name, version).Scan(&sess.Name, &sess.Description, &sess.Version)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s v%d not found", name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT step_number, action FROM session_steps WHERE session_name = ? AND session_version = ? ORDER BY step_number`,
		name, version)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var step Step
		var action string
		if err := rows.Scan(&step.Number, &action); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Action = json.RawMessage(action)
		sess.Steps = append(sess.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vrows, err := s.db.Query(
		`SELECT variable_name, label, required, requires_approval FROM session_variables WHERE session_name = ? AND session_version = ? ORDER BY variable_name`,
		name, version)
	if err != nil {
		return nil, fmt.Errorf("get variables: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var v Variable
		if err := vrows.Scan(&v.Name, &v.Label, &v.Required, &v.RequiresApproval); err != nil {
			return nil, fmt.Errorf("scan variable: %w", err)
		}
		sess.Variables = append(sess.Variables, v)
	}
	return &sess, vrows.Err()
}

// DeleteSession removes the session and everything recorded under it.
// Runs go first so a partial failure never orphans history rows.
func (s *Store) DeleteSession(name string, version int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmts := []string{
		`DELETE FROM session_runs WHERE session_name = ? AND session_version = ?`,
		`DELETE FROM session_variables WHERE session_name = ? AND session_version = ?`,
		`DELETE FROM session_steps WHERE session_name = ? AND session_version = ?`,
		`DELETE FROM sessions WHERE name = ? AND version = ?`,
	}
	for _, q := range stmts {
		if _, err := tx.Exec(q, name, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete session: %w", err)
		}
	}
	return tx.Commit()
}

// StartRun records the beginning of an execution and returns its ID.
func (s *Store) StartRun(name string, version int, logPath string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO session_runs(id, session_name, session_version, started_at, status, log_path) VALUES(?,?,?,?,?,?)`,
		id, name, version, time.Now().Unix(), "running", logPath)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run record with its final status.
func (s *Store) FinishRun(id, status string) error {
	res, err := s.db.Exec(
		`UPDATE session_runs SET ended_at = ?, status = ? WHERE id = ?`,
		time.Now().Unix(), status, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return err
}

// ListRuns returns a session's run history, most recent first.
func (s *Store) ListRuns(name string, version int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, session_name, session_version, started_at, COALESCE(ended_at, 0), status, COALESCE(log_path, '')
		 FROM session_runs WHERE session_name = ? AND session_version = ? ORDER BY started_at DESC`,
		name, version)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, ended int64
		if err := rows.Scan(&r.ID, &r.SessionName, &r.SessionVersion, &started, &ended, &r.Status, &r.LogPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if ended > 0 {
			r.EndedAt = time.Unix(ended, 0)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
