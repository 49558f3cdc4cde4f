// Package store keeps the attempt journal of the running process in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/verte-zerg/compquiz/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// InMemory is the DSN of a private in-memory database. Its contents are lost
// when the store is closed.
const InMemory = ":memory:"

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn and applies migrations.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			timed INTEGER NOT NULL,
			level INTEGER NOT NULL,
			question_id TEXT NOT NULL,
			correct INTEGER NOT NULL,
			errored INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			answered_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores an evaluated submission.
func (s *Store) InsertAttempt(ctx context.Context, a model.Attempt) (int64, error) {
	if a.RunID == "" {
		return 0, fmt.Errorf("attempt without run id")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, timed, level, question_id, correct, errored, elapsed_ms, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID,
		boolInt(a.Timed),
		a.Level,
		a.QuestionID,
		boolInt(a.Correct),
		boolInt(a.Errored),
		a.Elapsed.Milliseconds(),
		a.AnsweredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns the attempts of a run in insertion order.
func (s *Store) ListAttempts(ctx context.Context, runID string) ([]model.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, timed, level, question_id, correct, errored, elapsed_ms, answered_at
		 FROM attempts
		 WHERE run_id = ?
		 ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var timed, correct, errored int
		var elapsedMs int64
		var answeredAt string
		if err := rows.Scan(&a.RunID, &timed, &a.Level, &a.QuestionID, &correct, &errored, &elapsedMs, &answeredAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, answeredAt)
		if err != nil {
			return nil, err
		}
		a.Timed = timed != 0
		a.Correct = correct != 0
		a.Errored = errored != 0
		a.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		a.AnsweredAt = parsed
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// LevelSummaries aggregates a run's attempts per level, ordered by level.
func (s *Store) LevelSummaries(ctx context.Context, runID string) ([]model.LevelSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, SUM(correct) AS correct, COUNT(*) AS total
		 FROM attempts
		 WHERE run_id = ?
		 GROUP BY level
		 ORDER BY level ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LevelSummary
	for rows.Next() {
		var ls model.LevelSummary
		if err := rows.Scan(&ls.Level, &ls.Correct, &ls.Total); err != nil {
			return nil, err
		}
		result = append(result, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
