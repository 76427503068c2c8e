package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// Recorder receives every executed transition outcome, successful or not.
// The history store implements it; a nil recorder disables recording.
type Recorder interface {
	Record(rec schemas.TransitionRecord)
}

// PathTraverser executes one path's transitions in sequence, applying the
// activation and exit cascades each successful transition implies. When a
// step fails it remembers the state the failing transition started from so
// the path manager can route around it.
//
// A panic raised by a transition guard is not recovered; the caller of
// Open decides what to do with genuinely unexpected faults.
type PathTraverser struct {
	states      schemas.StateService
	transitions schemas.TransitionService
	joint       *JointTable
	memory      *StateMemory
	visibility  *VisibilityManager
	matcher     schemas.Matcher
	log         *zap.Logger

	recorder Recorder
	session  schemas.ExecutionSession

	failedStart schemas.StateID
}

// NewPathTraverser creates a traverser over the shared navigation state.
func NewPathTraverser(
	states schemas.StateService,
	transitions schemas.TransitionService,
	joint *JointTable,
	memory *StateMemory,
	visibility *VisibilityManager,
	matcher schemas.Matcher,
	logger *zap.Logger,
) (*PathTraverser, error) {
	if states == nil || transitions == nil || joint == nil || memory == nil || visibility == nil || matcher == nil {
		return nil, fmt.Errorf("cannot initialize path traverser with nil dependencies")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathTraverser{
		states:      states,
		transitions: transitions,
		joint:       joint,
		memory:      memory,
		visibility:  visibility,
		matcher:     matcher,
		log:         logger.Named("traverser"),
		failedStart: schemas.NullStateID,
	}, nil
}

// SetRecorder attaches a transition outcome recorder.
func (t *PathTraverser) SetRecorder(r Recorder) { t.recorder = r }

// SetSession attaches the session used to tag recorded outcomes.
func (t *PathTraverser) SetSession(s schemas.ExecutionSession) { t.session = s }

// Traverse executes the path's transitions in order. It stops at the first
// failing step, remembers its start state, and returns false; subsequent
// steps are not attempted. A nil path is a programmer error.
func (t *PathTraverser) Traverse(ctx context.Context, path *schemas.Path) bool {
	if path == nil {
		panic("navigation: Traverse called with nil path")
	}
	t.failedStart = schemas.NullStateID
	for i := 0; i+1 < len(path.StateIDs); i++ {
		if !t.Go(ctx, path.StateIDs[i], path.StateIDs[i+1]) {
			t.failedStart = path.StateIDs[i]
			return false
		}
	}
	return true
}

// FailedTransitionStartState returns the state the last failing transition
// started from, or NullStateID when the last traversal succeeded.
func (t *PathTraverser) FailedTransitionStartState() schemas.StateID {
	return t.failedStart
}

// Go executes the complete from->to transition: the source's outgoing
// transition, the activation cascade, the exits, and the hidden-state
// bookkeeping. The source state must be active.
func (t *PathTraverser) Go(ctx context.Context, from, to schemas.StateID) bool {
	start := time.Now()
	success := t.doTransitions(ctx, from, to)
	if t.recorder != nil {
		t.recorder.Record(schemas.TransitionRecord{
			SessionID:  t.sessionID(),
			FromState:  from,
			ToState:    to,
			Success:    success,
			Duration:   time.Since(start),
			RecordedAt: time.Now().UTC(),
		})
	}
	if success {
		t.log.Info("Transition successful",
			zap.String("from", t.states.StateName(from)),
			zap.String("to", t.states.StateName(to)))
		return true
	}
	t.log.Info("Transition failed",
		zap.String("from", t.states.StateName(from)),
		zap.String("to", t.states.StateName(to)))
	return false
}

func (t *PathTraverser) doTransitions(ctx context.Context, from, to schemas.StateID) bool {
	if !t.memory.Contains(from) {
		t.log.Debug("Source state is not active",
			zap.Int64("from", int64(from)),
			zap.Int64s("active", toInt64s(t.memory.ActiveStates())))
		return false
	}
	fromState, ok := t.states.State(from)
	if !ok {
		return false
	}
	st, ok := t.transitions.Transitions(from)
	if !ok {
		return false
	}
	tr, ok := t.fetchTransition(st, fromState, to)
	if !ok {
		t.log.Debug("No transition found",
			zap.Int64("from", int64(from)), zap.Int64("to", int64(to)))
		return false
	}

	if !t.runTransition(ctx, tr) {
		return false
	}

	staysVisible := resolveStaysVisible(st, tr)
	toActivate := t.statesToActivate(tr, fromState, to, staysVisible)
	for _, s := range t.states.FindSetByID(toActivate...) {
		s.SetProbabilityToBase()
	}
	t.activateAll(ctx, toActivate)
	for _, exit := range tr.Exit {
		t.exitState(exit)
	}
	if !t.memory.Contains(to) {
		return false
	}
	if !staysVisible {
		t.exitState(from)
	}
	tr.TimesSuccessful++
	return true
}

// fetchTransition finds the source's transition leading to the target,
// resolving the PREVIOUS sentinel against the source's hidden set.
func (t *PathTraverser) fetchTransition(st *schemas.StateTransitions, fromState *schemas.State, to schemas.StateID) (*schemas.StateTransition, bool) {
	if tr, ok := st.TransitionTo(to); ok {
		return tr, true
	}
	if fromState.IsHiding(to) {
		if tr, ok := st.TransitionToPrevious(); ok {
			return tr, true
		}
	}
	return nil, false
}

// statesToActivate collects the transition's activate set, the target
// itself, and, when the source exits, the states the source was hiding.
// The PREVIOUS sentinel can never itself be activated.
func (t *PathTraverser) statesToActivate(tr *schemas.StateTransition, fromState *schemas.State, to schemas.StateID, staysVisible bool) []schemas.StateID {
	set := make(map[schemas.StateID]struct{}, len(tr.Activate)+2)
	for _, id := range tr.Activate {
		set[id] = struct{}{}
	}
	set[to] = struct{}{}
	if !staysVisible {
		for _, hidden := range fromState.HiddenStateIDs() {
			set[hidden] = struct{}{}
		}
	}
	delete(set, schemas.PreviousStateID)
	return sortedIDs(set)
}

// activateAll drains an explicit worklist of states to activate, following
// each successful finish transition's own activate set to a fixed point.
// Exits declared by finish transitions are applied only after the worklist
// drains, so a state listed in both sets ends up inactive.
func (t *PathTraverser) activateAll(ctx context.Context, initial []schemas.StateID) {
	queue := make([]schemas.StateID, 0, len(initial))
	queued := make(map[schemas.StateID]struct{}, len(initial))
	for _, id := range initial {
		queue = append(queue, id)
		queued[id] = struct{}{}
	}
	var exits []schemas.StateID

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if t.memory.Contains(id) {
			continue
		}
		finish, ok := t.confirmState(ctx, id)
		if !ok {
			continue
		}
		for _, next := range finish.Activate {
			if next == schemas.PreviousStateID {
				continue
			}
			if _, seen := queued[next]; seen {
				continue
			}
			queued[next] = struct{}{}
			queue = append(queue, next)
		}
		exits = append(exits, finish.Exit...)
	}

	for _, id := range exits {
		t.exitState(id)
	}
}

// confirmState runs a state's finish transition and applies the activation
// bookkeeping: memory, visibility, joint table, probability.
func (t *PathTraverser) confirmState(ctx context.Context, id schemas.StateID) (*schemas.StateTransition, bool) {
	state, ok := t.states.State(id)
	if !ok {
		return nil, false
	}
	st, ok := t.transitions.Transitions(id)
	if !ok || st.Finish == nil {
		return nil, false
	}
	state.SetProbabilityToBase()
	if !t.runTransition(ctx, st.Finish) {
		state.ProbabilityExists = 0
		return nil, false
	}
	state.ProbabilityExists = 100
	t.memory.AddActiveState(id)
	t.visibility.Set(id)
	t.joint.AddTransitionsToHiddenStates(state)
	st.Finish.TimesSuccessful++
	return st.Finish, true
}

// FinishTransition confirms an already-active target by running only its
// finish transition, without a path walk. On failure the state is removed
// from the active set.
func (t *PathTraverser) FinishTransition(ctx context.Context, id schemas.StateID) bool {
	state, ok := t.states.State(id)
	if !ok {
		return false
	}
	st, ok := t.transitions.Transitions(id)
	if !ok || st.Finish == nil {
		return false
	}
	if !t.runTransition(ctx, st.Finish) {
		state.ProbabilityExists = 0
		t.memory.RemoveInactiveState(id)
		return false
	}
	state.ProbabilityExists = 100
	t.memory.AddActiveState(id)
	st.Finish.TimesSuccessful++
	return true
}

// exitState deactivates a state and cleans up its hidden-state links.
func (t *PathTraverser) exitState(id schemas.StateID) bool {
	state, ok := t.states.State(id)
	if !ok {
		return false
	}
	t.joint.RemoveTransitionsToHiddenStates(state)
	t.memory.RemoveInactiveState(id)
	state.ResetHidden()
	return true
}

// runTransition dispatches on the transition variant. Guard panics
// propagate to the caller of Open.
func (t *PathTraverser) runTransition(ctx context.Context, tr *schemas.StateTransition) bool {
	switch tr.Kind {
	case schemas.KindTaskSequence:
		for _, step := range tr.Steps {
			if !t.matcher.Attempt(ctx, step.Element) {
				return false
			}
		}
		return true
	default:
		return tr.Guard(ctx)
	}
}

func resolveStaysVisible(st *schemas.StateTransitions, tr *schemas.StateTransition) bool {
	switch tr.StaysVisible {
	case schemas.StaysVisibleTrue:
		return true
	case schemas.StaysVisibleFalse:
		return false
	default:
		return st.StaysVisibleDefault
	}
}

func (t *PathTraverser) sessionID() string {
	if t.session == nil {
		return ""
	}
	return t.session.CurrentSessionID()
}

func toInt64s(ids []schemas.StateID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
