package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one recorded cursor control run.
type Session struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Stats      Stats      `json:"stats"`
	StopReason string     `json:"stop_reason,omitempty"`
}

// Stats counts what happened during a session.
type Stats struct {
	Frames   int64 `json:"frames"`
	Detected int64 `json:"detected"`
	Presses  int64 `json:"presses"`
	Releases int64 `json:"releases"`
	Errors   int64 `json:"errors"`
}

// SessionRepository records runs.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start records a new running session for mode ("gaze" or "hand").
func (r *SessionRepository) Start(mode string) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, mode, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Mode, sess.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Finish stores the final statistics and stop reason of a session.
func (r *SessionRepository) Finish(id string, stats Stats, reason string) error {
	result, err := r.db.Exec(
		`UPDATE sessions
		 SET ended_at = ?, frames = ?, detected = ?, presses = ?, releases = ?, errors = ?, stop_reason = ?
		 WHERE id = ?`,
		time.Now().UTC(), stats.Frames, stats.Detected, stats.Presses, stats.Releases, stats.Errors, reason, id,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = `id, mode, started_at, ended_at, frames, detected, presses, releases, errors, stop_reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime
	err := row.Scan(&s.ID, &s.Mode, &s.StartedAt, &ended,
		&s.Stats.Frames, &s.Stats.Detected, &s.Stats.Presses, &s.Stats.Releases, &s.Stats.Errors,
		&s.StopReason)
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
