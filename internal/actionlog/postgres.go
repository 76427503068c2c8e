package actionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DBPool abstracts the pgxpool.Pool so tests can substitute pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlCreateTables = `
		CREATE TABLE IF NOT EXISTS observations (
			id          BIGSERIAL PRIMARY KEY,
			session_id  TEXT NOT NULL,
			category    TEXT NOT NULL,
			message     TEXT NOT NULL,
			level       TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS state_transitions (
			id           BIGSERIAL PRIMARY KEY,
			session_id   TEXT NOT NULL,
			from_states  TEXT[] NOT NULL,
			to_states    TEXT[] NOT NULL,
			active_after TEXT[] NOT NULL,
			success      BOOLEAN NOT NULL,
			duration_ms  BIGINT NOT NULL,
			recorded_at  TIMESTAMPTZ NOT NULL
		);`

	sqlInsertObservation = `
		INSERT INTO observations (session_id, category, message, level, recorded_at)
		VALUES ($1, $2, $3, $4, $5);`

	sqlInsertTransition = `
		INSERT INTO state_transitions (session_id, from_states, to_states, active_after, success, duration_ms, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`
)

// writeTimeout bounds each insert so a stalled database cannot block
// navigation, whose logging calls are fire-and-forget by contract.
const writeTimeout = 10 * time.Second

// maxConcurrentWrites bounds the in-flight insert goroutines.
const maxConcurrentWrites = 4

// PostgresLogger persists navigation events to Postgres. Writes happen
// asynchronously so a slow database never stalls a traversal; insert
// failures are logged and swallowed because the ActionLogger contract has
// no error path. Call Close to drain pending writes before exiting.
type PostgresLogger struct {
	pool   DBPool
	writes errgroup.Group
	log    *zap.Logger
}

var _ schemas.ActionLogger = (*PostgresLogger)(nil)

// NewPostgresLogger verifies the connection and ensures the log tables
// exist.
func NewPostgresLogger(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresLogger, error) {
	if pool == nil {
		return nil, fmt.Errorf("cannot initialize postgres action logger with a nil pool")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlCreateTables); err != nil {
		return nil, fmt.Errorf("failed to create action log tables: %w", err)
	}
	p := &PostgresLogger{
		pool: pool,
		log:  logger.Named("actionlog_pg"),
	}
	p.writes.SetLimit(maxConcurrentWrites)
	return p, nil
}

// LogObservation inserts an observation row.
func (p *PostgresLogger) LogObservation(sessionID, category, message, level string) {
	recordedAt := time.Now().UTC()
	p.writes.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if _, err := p.pool.Exec(ctx, sqlInsertObservation,
			sessionID, category, message, level, recordedAt); err != nil {
			p.log.Error("Failed to persist observation", zap.Error(err))
		}
		return nil
	})
}

// LogStateTransition inserts a transition outcome row.
func (p *PostgresLogger) LogStateTransition(sessionID string, fromStates, toStates, activeAfter []string, success bool, duration time.Duration) {
	recordedAt := time.Now().UTC()
	p.writes.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if _, err := p.pool.Exec(ctx, sqlInsertTransition,
			sessionID, fromStates, toStates, activeAfter, success,
			duration.Milliseconds(), recordedAt); err != nil {
			p.log.Error("Failed to persist state transition", zap.Error(err))
		}
		return nil
	})
}

// Close waits for all pending writes to finish.
func (p *PostgresLogger) Close() {
	if err := p.writes.Wait(); err != nil {
		p.log.Error("Pending writes failed", zap.Error(err))
	}
}
