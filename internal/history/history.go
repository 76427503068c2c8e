// Package history persists executed transition outcomes to SQLite and
// aggregates per-edge success counters across runs.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transition_outcomes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  TEXT NOT NULL,
    from_state  INTEGER NOT NULL,
    to_state    INTEGER NOT NULL,
    success     INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_edge ON transition_outcomes(from_state, to_state);

CREATE TABLE IF NOT EXISTS edge_counters (
    from_state  INTEGER NOT NULL,
    to_state    INTEGER NOT NULL,
    successes   INTEGER NOT NULL DEFAULT 0,
    failures    INTEGER NOT NULL DEFAULT 0,
    updated_at  TEXT NOT NULL,
    PRIMARY KEY (from_state, to_state)
);`

// EdgeStats aggregates the recorded outcomes of one from->to edge.
type EdgeStats struct {
	From      schemas.StateID
	To        schemas.StateID
	Successes int
	Failures  int
}

// Store is the SQLite-backed transition history. It implements the
// navigation Recorder contract; write failures are logged and swallowed
// because recording must never abort a traversal.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the history database at path and ensures the
// schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history schema: %w", err)
	}
	return &Store{db: db, log: logger.Named("history")}, nil
}

// Record persists one transition outcome and bumps the edge counter.
func (s *Store) Record(rec schemas.TransitionRecord) {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	now := recordedAt.Format(time.RFC3339)

	if _, err := s.db.Exec(
		`INSERT INTO transition_outcomes (session_id, from_state, to_state, success, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID, int64(rec.FromState), int64(rec.ToState),
		boolToInt(rec.Success), rec.Duration.Milliseconds(), now,
	); err != nil {
		s.log.Error("Failed to record transition outcome", zap.Error(err))
		return
	}

	successDelta, failureDelta := 0, 1
	if rec.Success {
		successDelta, failureDelta = 1, 0
	}
	if _, err := s.db.Exec(
		`INSERT INTO edge_counters (from_state, to_state, successes, failures, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(from_state, to_state) DO UPDATE SET
		   successes = successes + ?,
		   failures = failures + ?,
		   updated_at = ?`,
		int64(rec.FromState), int64(rec.ToState), successDelta, failureDelta, now,
		successDelta, failureDelta, now,
	); err != nil {
		s.log.Error("Failed to update edge counter", zap.Error(err))
	}
}

// Stats returns the counters for one edge. Unknown edges return zero
// counts, not an error.
func (s *Store) Stats(from, to schemas.StateID) (EdgeStats, error) {
	stats := EdgeStats{From: from, To: to}
	err := s.db.QueryRow(
		`SELECT successes, failures FROM edge_counters WHERE from_state = ? AND to_state = ?`,
		int64(from), int64(to),
	).Scan(&stats.Successes, &stats.Failures)
	if err == sql.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("edge stats query: %w", err)
	}
	return stats, nil
}

// AllStats returns every recorded edge, most successful first.
func (s *Store) AllStats() ([]EdgeStats, error) {
	rows, err := s.db.Query(
		`SELECT from_state, to_state, successes, failures
		 FROM edge_counters ORDER BY successes DESC, from_state, to_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []EdgeStats
	for rows.Next() {
		var st EdgeStats
		var from, to int64
		if err := rows.Scan(&from, &to, &st.Successes, &st.Failures); err != nil {
			return nil, err
		}
		st.From, st.To = schemas.StateID(from), schemas.StateID(to)
		all = append(all, st)
	}
	return all, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
