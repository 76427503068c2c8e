package navigation

import (
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// PathManager computes recovery paths after a partial traversal failure.
// A failed transition may itself have activated or deactivated states, so
// the surviving candidates are re-evaluated against the current active set
// rather than the one the paths were originally found from.
type PathManager struct {
	log *zap.Logger
}

// NewPathManager creates a path manager.
func NewPathManager(logger *zap.Logger) *PathManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathManager{log: logger.Named("pathmanager")}
}

// CleanPaths filters the previously-found paths after a failure at
// failedState: paths passing through the failed state are dropped, the
// rest are trimmed to begin at a currently-active state, deduplicated and
// re-sorted. The result may be empty, which ends the retry loop.
func (pm *PathManager) CleanPaths(activeStates []schemas.StateID, previous *schemas.Paths, failedState schemas.StateID) *schemas.Paths {
	activeSet := make(map[schemas.StateID]struct{}, len(activeStates))
	for _, id := range activeStates {
		activeSet[id] = struct{}{}
	}

	clean := schemas.NewPaths()
	for _, p := range previous.Paths {
		trimmed, ok := pm.cleanPath(p, activeSet, failedState)
		if !ok {
			continue
		}
		if containsPath(clean, trimmed) {
			continue
		}
		clean.Paths = append(clean.Paths, trimmed)
	}
	clean.Sort()

	pm.log.Debug("Clean paths computed",
		zap.Int64("failed_state", int64(failedState)),
		zap.Int("before", len(previous.Paths)),
		zap.Int("after", len(clean.Paths)))
	return clean
}

// cleanPath returns the usable remainder of one candidate path, or false
// when the path is contaminated by the failed state or no longer starts
// anywhere active.
func (pm *PathManager) cleanPath(p *schemas.Path, activeSet map[schemas.StateID]struct{}, failedState schemas.StateID) (*schemas.Path, bool) {
	if p.Contains(failedState) {
		return nil, false
	}
	start := -1
	for i, id := range p.StateIDs {
		if _, active := activeSet[id]; active {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	trimmed := p.Copy()
	trimmed.StateIDs = trimmed.StateIDs[start:]
	if len(trimmed.StateIDs) < 2 {
		// Nothing left to traverse.
		return nil, false
	}
	return trimmed, true
}

func containsPath(ps *schemas.Paths, p *schemas.Path) bool {
	for _, existing := range ps.Paths {
		if existing.Equals(p) {
			return true
		}
	}
	return false
}
