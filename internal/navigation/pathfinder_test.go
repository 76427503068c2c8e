package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jspinak/brobot-sub003/api/schemas"
)

func TestPathFinder_RanksCheaperDetourFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addState(3)
	f.addTransitions(1, edge{to: 2, score: 5}, edge{to: 3, score: 3})
	f.addTransitions(2)
	f.addTransitions(3, edge{to: 2, score: 1})
	f.build(1)

	paths := f.finder.PathsToState(f.memory.ActiveStates(), 2)

	require.Len(t, paths.Paths, 2)
	// The detour totals 4, beating the direct edge's 5.
	assert.Equal(t, []schemas.StateID{1, 3, 2}, paths.Paths[0].StateIDs)
	assert.Equal(t, 4, paths.Paths[0].Score)
	assert.Equal(t, []schemas.StateID{1, 2}, paths.Paths[1].StateIDs)
	assert.Equal(t, 5, paths.Paths[1].Score)
}

func TestPathFinder_NoRoute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addTransitions(1)
	f.addTransitions(2)
	f.build(1)

	paths := f.finder.PathsToState(f.memory.ActiveStates(), 2)

	assert.True(t, paths.IsEmpty())
}

func TestPathFinder_NoActiveStates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addTransitions(1, edge{to: 2})
	f.addTransitions(2)
	f.build()

	paths := f.finder.PathsToState(nil, 2)

	assert.True(t, paths.IsEmpty())
}

func TestPathFinder_CyclesProduceSimplePathsOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addState(3)
	f.addTransitions(1, edge{to: 2})
	f.addTransitions(2, edge{to: 1}, edge{to: 3})
	f.addTransitions(3)
	f.build(1)

	paths := f.finder.PathsToState(f.memory.ActiveStates(), 3)

	require.Len(t, paths.Paths, 1)
	assert.Equal(t, []schemas.StateID{1, 2, 3}, paths.Paths[0].StateIDs)
}

func TestPathFinder_MaxPathLengthBoundsSearch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addState(3)
	f.addTransitions(1, edge{to: 2})
	f.addTransitions(2, edge{to: 3})
	f.addTransitions(3)
	f.build(1)

	short := NewPathFinder(f.joint, f.reg, f.reg, 2, zaptest.NewLogger(t))

	// The only route needs three states; a two-state cap cannot find it.
	assert.True(t, short.PathsToState([]schemas.StateID{1}, 3).IsEmpty())
	// A direct hop still fits.
	require.Len(t, short.PathsToState([]schemas.StateID{2}, 3).Paths, 1)
}

func TestPathFinder_ScoresHiddenStateRoute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	parent := f.addState(1)
	modal := f.addState(2, parent.ID)
	f.addTransitions(1, edge{to: 2})
	f.addTransitions(2, edge{to: schemas.PreviousStateID, score: 7, activate: []schemas.StateID{schemas.PreviousStateID}})
	f.build(2)

	// The modal is hiding the parent; only the dynamic PREVIOUS edge leads back.
	modal.AddHiddenState(parent.ID)
	f.joint.AddTransitionsToHiddenStates(modal)

	paths := f.finder.PathsToState(f.memory.ActiveStates(), 1)

	require.Len(t, paths.Paths, 1)
	assert.Equal(t, []schemas.StateID{2, 1}, paths.Paths[0].StateIDs)
	assert.Equal(t, 7, paths.Paths[0].Score)
}

func TestPathFinder_StopsExtendingPastActiveState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addState(1)
	f.addState(2)
	f.addState(3)
	f.addTransitions(1, edge{to: 2})
	f.addTransitions(2, edge{to: 3})
	f.addTransitions(3)
	f.build(1, 2)

	paths := f.finder.PathsToState(f.memory.ActiveStates(), 3)

	// [1 2 3] would only be trimmed back to [2 3]; the search prunes it.
	require.Len(t, paths.Paths, 1)
	assert.Equal(t, []schemas.StateID{2, 3}, paths.Paths[0].StateIDs)
}
