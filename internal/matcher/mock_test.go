package matcher

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/jspinak/brobot-sub003/api/schemas"
)

type stubResolver struct {
	states map[string]*schemas.State
}

func (r stubResolver) StateByElement(name string) (*schemas.State, bool) {
	s, ok := r.states[name]
	return s, ok
}

func TestMock_Attempt(t *testing.T) {
	t.Parallel()
	m := NewMock([]string{"ghost"}, 100, nil, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	assert.True(t, m.Attempt(ctx, schemas.Element{Name: "button"}))
	assert.False(t, m.Attempt(ctx, schemas.Element{Name: "ghost"}))
}

func TestMock_Attempt_CancelledContext(t *testing.T) {
	t.Parallel()
	m := NewMock(nil, 100, nil, nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, m.Attempt(ctx, schemas.Element{Name: "button"}))
}

func TestMock_Attempt_UsesStateProbability(t *testing.T) {
	t.Parallel()
	present := schemas.NewState(1, "Present")
	absent := schemas.NewState(2, "Absent")
	absent.ProbabilityExists = 0
	resolver := stubResolver{states: map[string]*schemas.State{
		"logo":   present,
		"dialog": absent,
	}}
	m := NewMock(nil, 100, resolver, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	// The owning state's live probability decides the outcome.
	assert.True(t, m.Attempt(ctx, schemas.Element{Name: "logo"}))
	assert.False(t, m.Attempt(ctx, schemas.Element{Name: "dialog"}))

	// Recognition recovers when the state becomes expected again.
	absent.SetProbabilityToBase()
	assert.True(t, m.Attempt(ctx, schemas.Element{Name: "dialog"}))
}

func TestMock_Attempt_FailListBeatsStateProbability(t *testing.T) {
	t.Parallel()
	state := schemas.NewState(1, "Present")
	resolver := stubResolver{states: map[string]*schemas.State{"logo": state}}
	m := NewMock([]string{"logo"}, 100, resolver, nil, zaptest.NewLogger(t))

	assert.False(t, m.Attempt(context.Background(), schemas.Element{Name: "logo"}))
}

func TestMock_Attempt_UnresolvedElementFallsBack(t *testing.T) {
	t.Parallel()
	resolver := stubResolver{states: map[string]*schemas.State{}}
	m := NewMock(nil, 100, resolver, nil, zaptest.NewLogger(t))

	assert.True(t, m.Attempt(context.Background(), schemas.Element{Name: "stray"}))
}

func TestMock_ProbabilityRoll(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	m := NewMock(nil, 50, nil, rng, zaptest.NewLogger(t))
	ctx := context.Background()

	var hits, misses int
	for i := 0; i < 200; i++ {
		if m.Attempt(ctx, schemas.Element{Name: "button"}) {
			hits++
		} else {
			misses++
		}
	}
	// A 50% matcher must produce both outcomes over 200 rolls.
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestMock_ProbabilityClamped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Out-of-range fallback probabilities become deterministic success.
	for _, p := range []int{-5, 0, 101} {
		m := NewMock(nil, p, nil, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
		for i := 0; i < 20; i++ {
			assert.True(t, m.Attempt(ctx, schemas.Element{Name: "button"}))
		}
	}
}
