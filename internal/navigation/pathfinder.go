package navigation

import (
	"sort"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// PathFinder computes every viable path from the active-state set to a
// target state by searching the joint table backwards from the target.
// Only simple paths (no repeated state) up to maxPathLength states are
// produced, which bounds the search on dense graphs.
type PathFinder struct {
	joint       *JointTable
	states      schemas.StateService
	transitions schemas.TransitionService

	maxPathLength int
	log           *zap.Logger
}

// NewPathFinder creates a path finder. maxPathLength caps the number of
// states in a candidate path; callers normally pass the number of
// registered states.
func NewPathFinder(joint *JointTable, states schemas.StateService, transitions schemas.TransitionService, maxPathLength int, logger *zap.Logger) *PathFinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPathLength <= 0 {
		maxPathLength = 10
	}
	return &PathFinder{
		joint:         joint,
		states:        states,
		transitions:   transitions,
		maxPathLength: maxPathLength,
		log:           logger.Named("pathfinder"),
	}
}

// PathsToState returns all simple paths from any active state to the
// target, scored by summing transition scores and sorted cheapest first.
// An empty result means no route exists; that is a legitimate terminal
// condition, not an error.
func (pf *PathFinder) PathsToState(activeStates []schemas.StateID, target schemas.StateID) *schemas.Paths {
	paths := schemas.NewPaths()
	if len(activeStates) == 0 {
		return paths
	}
	activeSet := make(map[schemas.StateID]struct{}, len(activeStates))
	for _, id := range activeStates {
		activeSet[id] = struct{}{}
	}

	chain := []schemas.StateID{target}
	pf.search(activeSet, chain, paths)

	for _, p := range paths.Paths {
		p.Score = pf.scorePath(p)
	}
	paths.Sort()

	pf.log.Debug("Path search finished",
		zap.String("target", pf.states.StateName(target)),
		zap.Int("candidates", len(paths.Paths)))
	return paths
}

// search extends the chain backwards from its head. The chain always ends
// at the target; a chain whose head is an active state is a complete path.
func (pf *PathFinder) search(activeSet map[schemas.StateID]struct{}, chain []schemas.StateID, paths *schemas.Paths) {
	head := chain[0]
	if _, active := activeSet[head]; active && len(chain) > 1 {
		ids := make([]schemas.StateID, len(chain))
		copy(ids, chain)
		paths.Paths = append(paths.Paths, &schemas.Path{StateIDs: ids})
		// Extending past an active state only yields paths the manager would
		// trim back to this one.
		return
	}
	if len(chain) >= pf.maxPathLength {
		return
	}

	parents := pf.joint.StatesWithTransitionsTo(head)
	for _, parent := range sortedIDs(parents) {
		if containsID(chain, parent) {
			continue
		}
		next := make([]schemas.StateID, 0, len(chain)+1)
		next = append(next, parent)
		next = append(next, chain...)
		pf.search(activeSet, next, paths)
	}
}

// scorePath sums the scores of the transitions along the path.
func (pf *PathFinder) scorePath(p *schemas.Path) int {
	score := 0
	for i := 0; i+1 < len(p.StateIDs); i++ {
		score += pf.transitionScore(p.StateIDs[i], p.StateIDs[i+1])
	}
	return score
}

// transitionScore resolves the cost of the from->to edge, falling back to
// the source's PREVIOUS transition when `to` is reachable only as a hidden
// state.
func (pf *PathFinder) transitionScore(from, to schemas.StateID) int {
	st, ok := pf.transitions.Transitions(from)
	if !ok {
		return 0
	}
	if t, ok := st.TransitionTo(to); ok {
		return t.Score
	}
	if t, ok := st.TransitionToPrevious(); ok {
		if _, hiding := pf.joint.HidingStates(to)[from]; hiding {
			return t.Score
		}
	}
	return 0
}

func containsID(ids []schemas.StateID, id schemas.StateID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sortedIDs(set map[schemas.StateID]struct{}) []schemas.StateID {
	ids := make([]schemas.StateID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
