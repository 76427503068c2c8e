package navigation

import (
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// JointTable maintains bidirectional adjacency over the transition graph
// so reachability queries never have to walk individual StateTransitions.
//
// Three maps are kept: incoming (target -> sources), outgoing (source ->
// targets), and incomingToPrevious (hidden state -> states currently hiding
// it). Incoming and outgoing mirror each other except for transitions that
// target the PREVIOUS sentinel, which populate only outgoing plus the
// dynamic PREVIOUS map.
type JointTable struct {
	incoming           map[schemas.StateID]map[schemas.StateID]struct{}
	outgoing           map[schemas.StateID]map[schemas.StateID]struct{}
	incomingToPrevious map[schemas.StateID]map[schemas.StateID]struct{}

	states schemas.StateService
	log    *zap.Logger
}

// NewJointTable creates an empty joint table. The state service is used
// only to resolve names in debug logs.
func NewJointTable(states schemas.StateService, logger *zap.Logger) *JointTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	jt := &JointTable{
		states: states,
		log:    logger.Named("jointtable"),
	}
	jt.EmptyRepos()
	return jt
}

// EmptyRepos clears all three maps, used on full reset or rebuild.
func (jt *JointTable) EmptyRepos() {
	jt.incoming = make(map[schemas.StateID]map[schemas.StateID]struct{})
	jt.outgoing = make(map[schemas.StateID]map[schemas.StateID]struct{})
	jt.incomingToPrevious = make(map[schemas.StateID]map[schemas.StateID]struct{})
}

// AddTransitions records every source->target pair declared by a
// StateTransitions object.
func (jt *JointTable) AddTransitions(st *schemas.StateTransitions) {
	for _, t := range st.Transitions {
		for _, target := range t.Activate {
			jt.Add(target, st.StateID)
		}
	}
}

// Add records a single source->target relationship. Duplicate calls are
// idempotent and self-transitions are recorded like any other edge. A
// PREVIOUS source gets an outgoing entry only, never an incoming one.
func (jt *JointTable) Add(to, from schemas.StateID) {
	if from != schemas.PreviousStateID {
		addToSet(jt.incoming, to, from)
	}
	addToSet(jt.outgoing, from, to)
}

// AddTransitionsToHiddenStates records activeState as a discoverer of each
// state it currently hides. Multiple active states may hide the same
// target, so the PREVIOUS map is many-to-one.
func (jt *JointTable) AddTransitionsToHiddenStates(activeState *schemas.State) {
	for _, hidden := range activeState.HiddenStateIDs() {
		addToSet(jt.incomingToPrevious, hidden, activeState.ID)
	}
}

// RemoveTransitionsToHiddenStates is the inverse, called when exitedState
// stops being active.
func (jt *JointTable) RemoveTransitionsToHiddenStates(exitedState *schemas.State) {
	for _, hidden := range exitedState.HiddenStateIDs() {
		if sources, ok := jt.incomingToPrevious[hidden]; ok {
			delete(sources, exitedState.ID)
		}
	}
}

// StatesWithTransitionsTo returns the union, over each target, of its
// static incoming sources and the states currently hiding it. Unknown IDs
// contribute nothing.
func (jt *JointTable) StatesWithTransitionsTo(targets ...schemas.StateID) map[schemas.StateID]struct{} {
	parents := make(map[schemas.StateID]struct{})
	for _, target := range targets {
		for src := range jt.incoming[target] {
			parents[src] = struct{}{}
		}
		for src := range jt.incomingToPrevious[target] {
			parents[src] = struct{}{}
		}
		jt.log.Debug("Queried incoming transitions",
			zap.String("target", jt.stateName(target)),
			zap.Int("static", len(jt.incoming[target])),
			zap.Int("via_previous", len(jt.incomingToPrevious[target])))
	}
	return parents
}

// StatesWithTransitionsFrom returns the union of targets directly reachable
// from the given sources.
func (jt *JointTable) StatesWithTransitionsFrom(sources ...schemas.StateID) map[schemas.StateID]struct{} {
	children := make(map[schemas.StateID]struct{})
	for _, src := range sources {
		for target := range jt.outgoing[src] {
			children[target] = struct{}{}
		}
	}
	return children
}

// HidingStates returns the states currently hiding the given target.
func (jt *JointTable) HidingStates(target schemas.StateID) map[schemas.StateID]struct{} {
	out := make(map[schemas.StateID]struct{}, len(jt.incomingToPrevious[target]))
	for src := range jt.incomingToPrevious[target] {
		out[src] = struct{}{}
	}
	return out
}

func (jt *JointTable) stateName(id schemas.StateID) string {
	if jt.states == nil {
		return ""
	}
	return jt.states.StateName(id)
}

func addToSet(m map[schemas.StateID]map[schemas.StateID]struct{}, key, value schemas.StateID) {
	set, ok := m[key]
	if !ok {
		set = make(map[schemas.StateID]struct{})
		m[key] = set
	}
	set[value] = struct{}{}
}
