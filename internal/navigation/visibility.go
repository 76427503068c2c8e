package navigation

import (
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// VisibilityManager maintains the hidden-state relationships that arise
// when one state activates over another, such as a modal opening above its
// parent screen. Occluded states are moved out of the active set into the
// activating state's hidden set, from which the PREVIOUS sentinel can
// recover them later.
type VisibilityManager struct {
	states schemas.StateService
	memory *StateMemory
	log    *zap.Logger
}

// NewVisibilityManager creates a visibility manager over the shared state
// memory.
func NewVisibilityManager(states schemas.StateService, memory *StateMemory, logger *zap.Logger) *VisibilityManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisibilityManager{
		states: states,
		memory: memory,
		log:    logger.Named("visibility"),
	}
}

// Set records the occlusions caused by the state that just activated: any
// currently-active state listed in its CanHide set becomes hidden and
// leaves the active set. Returns false when the activating state is
// unknown.
func (v *VisibilityManager) Set(activatedID schemas.StateID) bool {
	activated, ok := v.states.State(activatedID)
	if !ok {
		return false
	}
	for _, activeID := range v.memory.ActiveStates() {
		if activeID == activatedID {
			continue
		}
		if _, canHide := activated.CanHide[activeID]; !canHide {
			continue
		}
		activated.AddHiddenState(activeID)
		v.memory.RemoveInactiveState(activeID)
		v.log.Debug("State hidden",
			zap.String("hidden", v.states.StateName(activeID)),
			zap.String("by", activated.Name))
	}
	return true
}
