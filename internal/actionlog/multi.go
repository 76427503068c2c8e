package actionlog

import (
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
)

// Multi fans every event out to a set of action loggers, so a run can log
// to the console and to Postgres at the same time.
type Multi struct {
	loggers []schemas.ActionLogger
}

var _ schemas.ActionLogger = (*Multi)(nil)

// NewMulti combines the given loggers. Nil entries are skipped.
func NewMulti(loggers ...schemas.ActionLogger) *Multi {
	m := &Multi{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *Multi) LogObservation(sessionID, category, message, level string) {
	for _, l := range m.loggers {
		l.LogObservation(sessionID, category, message, level)
	}
}

func (m *Multi) LogStateTransition(sessionID string, fromStates, toStates, activeAfter []string, success bool, duration time.Duration) {
	for _, l := range m.loggers {
		l.LogStateTransition(sessionID, fromStates, toStates, activeAfter, success, duration)
	}
}
