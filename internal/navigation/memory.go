// Package navigation implements the state-graph navigation core: the
// active-state memory, the joint transition table, path finding and
// recovery, path traversal, and the openState orchestration loop.
package navigation

import (
	"sort"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// StateMemory tracks the set of currently-active state IDs. It is the
// single source of truth for where the automation currently is; more than
// one state may be active at once (overlapping or partially hidden UIs).
//
// StateMemory is not safe for concurrent use. The owning navigator holds
// it for the duration of an Open call.
type StateMemory struct {
	active map[schemas.StateID]struct{}
	log    *zap.Logger
}

// NewStateMemory creates an empty active-state set.
func NewStateMemory(logger *zap.Logger) *StateMemory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateMemory{
		active: make(map[schemas.StateID]struct{}),
		log:    logger.Named("memory"),
	}
}

// ActiveStates returns the active IDs in ascending order.
func (m *StateMemory) ActiveStates() []schemas.StateID {
	ids := make([]schemas.StateID, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Contains reports whether id is currently active.
func (m *StateMemory) Contains(id schemas.StateID) bool {
	_, ok := m.active[id]
	return ok
}

// AddActiveState marks id as active. Sentinel IDs are ignored.
func (m *StateMemory) AddActiveState(id schemas.StateID) {
	if id <= 0 {
		return
	}
	if _, ok := m.active[id]; ok {
		return
	}
	m.active[id] = struct{}{}
	m.log.Debug("State activated", zap.Int64("id", int64(id)))
}

// RemoveInactiveState removes id from the active set.
func (m *StateMemory) RemoveInactiveState(id schemas.StateID) {
	if _, ok := m.active[id]; !ok {
		return
	}
	delete(m.active, id)
	m.log.Debug("State deactivated", zap.Int64("id", int64(id)))
}

// RemoveAll clears the active set.
func (m *StateMemory) RemoveAll() {
	m.active = make(map[schemas.StateID]struct{})
}
