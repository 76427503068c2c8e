package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jspinak/brobot-sub003/api/schemas"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(from, to schemas.StateID, success bool) schemas.TransitionRecord {
	return schemas.TransitionRecord{
		SessionID:  "sess-1",
		FromState:  from,
		ToState:    to,
		Success:    success,
		Duration:   120 * time.Millisecond,
		RecordedAt: time.Now().UTC(),
	}
}

func TestStore_RecordAndStats(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	s.Record(record(1, 2, true))
	s.Record(record(1, 2, true))
	s.Record(record(1, 2, false))

	stats, err := s.Stats(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Successes)
	assert.Equal(t, 1, stats.Failures)
}

func TestStore_Stats_UnknownEdgeIsZero(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	stats, err := s.Stats(7, 8)
	require.NoError(t, err)
	assert.Equal(t, schemas.StateID(7), stats.From)
	assert.Equal(t, schemas.StateID(8), stats.To)
	assert.Zero(t, stats.Successes)
	assert.Zero(t, stats.Failures)
}

func TestStore_AllStats_OrderedBySuccesses(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	s.Record(record(1, 2, true))
	s.Record(record(3, 4, true))
	s.Record(record(3, 4, true))
	s.Record(record(5, 6, false))

	all, err := s.AllStats()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, schemas.StateID(3), all[0].From)
	assert.Equal(t, 2, all[0].Successes)
	assert.Equal(t, schemas.StateID(1), all[1].From)
	assert.Equal(t, schemas.StateID(5), all[2].From)
}

func TestStore_RecordWithoutTimestamp(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	rec := record(1, 2, true)
	rec.RecordedAt = time.Time{}
	s.Record(rec)

	stats, err := s.Stats(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Successes)
}

func TestStore_ReopenKeepsCounters(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	s.Record(record(1, 2, true))
	require.NoError(t, s.Close())

	reopened, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Stats(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Successes)
}
