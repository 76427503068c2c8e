package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()
	m := NewManager(zaptest.NewLogger(t))

	assert.Empty(t, m.CurrentSessionID())

	id := m.Start()
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, m.CurrentSessionID())

	m.End()
	assert.Empty(t, m.CurrentSessionID())
}

func TestManager_NewSessionGetsNewID(t *testing.T) {
	t.Parallel()
	m := NewManager(zaptest.NewLogger(t))

	first := m.Start()
	m.End()
	second := m.Start()

	assert.NotEqual(t, first, second)
}
