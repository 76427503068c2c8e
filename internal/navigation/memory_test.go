package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/jspinak/brobot-sub003/api/schemas"
)

func TestStateMemory_AddAndRemove(t *testing.T) {
	t.Parallel()
	m := NewStateMemory(zaptest.NewLogger(t))

	m.AddActiveState(2)
	m.AddActiveState(1)
	m.AddActiveState(2) // idempotent

	assert.True(t, m.Contains(1))
	assert.True(t, m.Contains(2))
	assert.Equal(t, []schemas.StateID{1, 2}, m.ActiveStates())

	m.RemoveInactiveState(1)
	m.RemoveInactiveState(99) // unknown is a no-op

	assert.False(t, m.Contains(1))
	assert.Equal(t, []schemas.StateID{2}, m.ActiveStates())
}

func TestStateMemory_IgnoresSentinels(t *testing.T) {
	t.Parallel()
	m := NewStateMemory(zaptest.NewLogger(t))

	m.AddActiveState(schemas.NullStateID)
	m.AddActiveState(schemas.PreviousStateID)
	m.AddActiveState(0)

	assert.Empty(t, m.ActiveStates())
}

func TestStateMemory_RemoveAll(t *testing.T) {
	t.Parallel()
	m := NewStateMemory(zaptest.NewLogger(t))
	m.AddActiveState(1)
	m.AddActiveState(2)

	m.RemoveAll()

	assert.Empty(t, m.ActiveStates())
	assert.False(t, m.Contains(1))
}
