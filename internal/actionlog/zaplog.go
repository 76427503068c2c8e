// Package actionlog provides ActionLogger implementations: a zap-backed
// logger for the console/file stream and a Postgres logger for durable,
// queryable transition records.
package actionlog

import (
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger emits navigation events as structured zap entries.
type ZapLogger struct {
	log *zap.Logger
}

var _ schemas.ActionLogger = (*ZapLogger)(nil)

// NewZapLogger creates an action logger over the given zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{log: logger.Named("actionlog")}
}

// LogObservation records a free-form observation at the requested level.
func (z *ZapLogger) LogObservation(sessionID, category, message, level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	if ce := z.log.Check(lvl, message); ce != nil {
		ce.Write(
			zap.String("session_id", sessionID),
			zap.String("category", category),
		)
	}
}

// LogStateTransition records a terminal navigation outcome.
func (z *ZapLogger) LogStateTransition(sessionID string, fromStates, toStates, activeAfter []string, success bool, duration time.Duration) {
	z.log.Info("State transition",
		zap.String("session_id", sessionID),
		zap.Strings("from", fromStates),
		zap.Strings("to", toStates),
		zap.Strings("active_after", activeAfter),
		zap.Bool("success", success),
		zap.Duration("duration", duration),
	)
}
