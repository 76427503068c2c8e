package actionlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestZapLogger_LogObservation(t *testing.T) {
	t.Parallel()
	logger, logs := observedLogger()
	z := NewZapLogger(logger)

	z.LogObservation("sess-1", "transition", "Transition start: Home", "warn")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "Transition start: Home", entries[0].Message)
	assert.Equal(t, "sess-1", entries[0].ContextMap()["session_id"])
	assert.Equal(t, "transition", entries[0].ContextMap()["category"])
}

func TestZapLogger_LogObservation_BadLevelDefaultsToInfo(t *testing.T) {
	t.Parallel()
	logger, logs := observedLogger()
	z := NewZapLogger(logger)

	z.LogObservation("sess-1", "transition", "hello", "shouting")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestZapLogger_LogStateTransition(t *testing.T) {
	t.Parallel()
	logger, logs := observedLogger()
	z := NewZapLogger(logger)

	z.LogStateTransition("sess-1",
		[]string{"Home"}, []string{"Settings"}, []string{"Settings"},
		true, 250*time.Millisecond)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, []interface{}{"Home"}, fields["from"])
	assert.Equal(t, []interface{}{"Settings"}, fields["to"])
	assert.Equal(t, true, fields["success"])
}

func TestMulti_FansOut(t *testing.T) {
	t.Parallel()
	loggerA, logsA := observedLogger()
	loggerB, logsB := observedLogger()
	m := NewMulti(NewZapLogger(loggerA), nil, NewZapLogger(loggerB))

	m.LogObservation("sess-1", "transition", "hello", "info")
	m.LogStateTransition("sess-1", nil, []string{"Home"}, nil, false, time.Second)

	assert.Equal(t, 2, logsA.Len())
	assert.Equal(t, 2, logsB.Len())
}
