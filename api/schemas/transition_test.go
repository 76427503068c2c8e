package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transitionsFixture() *StateTransitions {
	return &StateTransitions{
		StateID:   1,
		StateName: "Home",
		Transitions: []*StateTransition{
			{Activate: []StateID{2}, Score: 5, StaysVisible: StaysVisibleTrue},
			{Activate: []StateID{3, 4}},
			{Activate: []StateID{PreviousStateID}, StaysVisible: StaysVisibleFalse},
		},
		StaysVisibleDefault: false,
	}
}

func TestStateTransitions_TransitionTo(t *testing.T) {
	t.Parallel()
	st := transitionsFixture()

	tr, ok := st.TransitionTo(4)
	require.True(t, ok)
	assert.True(t, tr.Activates(3))

	_, ok = st.TransitionTo(99)
	assert.False(t, ok)
}

func TestStateTransitions_TransitionToPrevious(t *testing.T) {
	t.Parallel()
	st := transitionsFixture()

	tr, ok := st.TransitionToPrevious()
	require.True(t, ok)
	assert.Equal(t, StaysVisibleFalse, tr.StaysVisible)

	bare := &StateTransitions{StateID: 2}
	_, ok = bare.TransitionToPrevious()
	assert.False(t, ok)
}

func TestStateTransitions_StaysVisibleAfter(t *testing.T) {
	t.Parallel()
	st := transitionsFixture()

	// Explicit tri-state wins over the default.
	assert.True(t, st.StaysVisibleAfter(2))
	// Unset tri-state falls back to the default.
	assert.False(t, st.StaysVisibleAfter(3))
	// Unknown target also reports the default.
	assert.False(t, st.StaysVisibleAfter(99))

	st.StaysVisibleDefault = true
	assert.True(t, st.StaysVisibleAfter(3))
}
