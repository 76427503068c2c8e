package navigation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"github.com/jspinak/brobot-sub003/internal/registry"
)

// fixture wires a registry and the full navigation stack for tests. States
// and transitions are added first, then build() constructs the components
// that depend on the finished graph.
type fixture struct {
	t *testing.T

	reg        *registry.Registry
	joint      *JointTable
	memory     *StateMemory
	visibility *VisibilityManager
	manager    *PathManager
	finder     *PathFinder
	traverser  *PathTraverser
	navigator  *Navigator

	// calls records every guard invocation, in order, as "from->to".
	calls []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	f := &fixture{t: t}
	f.reg = registry.New(logger)
	f.joint = NewJointTable(f.reg, logger)
	f.memory = NewStateMemory(logger)
	f.visibility = NewVisibilityManager(f.reg, f.memory, logger)
	f.manager = NewPathManager(logger)
	return f
}

// addState registers a state named "S<id>" that may hide the given states.
func (f *fixture) addState(id schemas.StateID, canHide ...schemas.StateID) *schemas.State {
	f.t.Helper()
	state := schemas.NewState(id, fmt.Sprintf("S%d", id))
	for _, h := range canHide {
		state.AddCanHide(h)
	}
	require.NoError(f.t, f.reg.AddState(state))
	return state
}

// edge describes one guard-based transition for the fixture graph.
type edge struct {
	to           schemas.StateID
	score        int
	fails        bool
	activate     []schemas.StateID
	exit         []schemas.StateID
	staysVisible schemas.StaysVisible
}

// addTransitions registers the outgoing edges of one state together with an
// always-succeeding finish transition, and mirrors them into the joint table.
func (f *fixture) addTransitions(from schemas.StateID, edges ...edge) *schemas.StateTransitions {
	f.t.Helper()
	st := &schemas.StateTransitions{
		StateID:   from,
		StateName: fmt.Sprintf("S%d", from),
		Finish:    f.finishTransition(from),
	}
	for _, e := range edges {
		activate := e.activate
		if activate == nil {
			activate = []schemas.StateID{e.to}
		}
		st.Transitions = append(st.Transitions, &schemas.StateTransition{
			Kind:         schemas.KindFunction,
			Guard:        f.guard(fmt.Sprintf("S%d->S%d", from, e.to), !e.fails),
			Activate:     activate,
			Exit:         e.exit,
			Score:        e.score,
			StaysVisible: e.staysVisible,
		})
	}
	require.NoError(f.t, f.reg.AddTransitions(st))
	f.joint.AddTransitions(st)
	return st
}

func (f *fixture) finishTransition(id schemas.StateID) *schemas.StateTransition {
	return &schemas.StateTransition{
		Kind:  schemas.KindFunction,
		Guard: f.guard(fmt.Sprintf("finish S%d", id), true),
	}
}

// guard returns a GuardFunc with the given outcome that records its call.
func (f *fixture) guard(name string, result bool) schemas.GuardFunc {
	return func(ctx context.Context) bool {
		f.calls = append(f.calls, name)
		return result
	}
}

// build constructs the finder, traverser and navigator over the registered
// graph and marks the given states active.
func (f *fixture) build(active ...schemas.StateID) {
	f.t.Helper()
	logger := zaptest.NewLogger(f.t)

	f.finder = NewPathFinder(f.joint, f.reg, f.reg, f.reg.StateCount(), logger)

	var err error
	f.traverser, err = NewPathTraverser(f.reg, f.reg, f.joint, f.memory, f.visibility, passMatcher{}, logger)
	require.NoError(f.t, err)

	f.navigator, err = NewNavigator(f.reg, f.finder, f.manager, f.traverser, f.memory, nil, nil, logger)
	require.NoError(f.t, err)

	for _, id := range active {
		f.memory.AddActiveState(id)
	}
}

// passMatcher satisfies the Matcher contract for graphs that only use guard
// transitions.
type passMatcher struct{}

func (passMatcher) Attempt(ctx context.Context, element schemas.Element) bool { return true }

// failMatcher reports the named elements as absent.
type failMatcher struct {
	failNames map[string]struct{}
}

func (m failMatcher) Attempt(ctx context.Context, element schemas.Element) bool {
	_, fails := m.failNames[element.Name]
	return !fails
}
