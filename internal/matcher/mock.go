// Package matcher provides Matcher implementations: a deterministic mock
// for offline runs and tests, and a chromedp-backed browser matcher.
package matcher

import (
	"context"
	"math/rand"
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// StateResolver maps an element name back to the state it identifies. The
// registry implements it.
type StateResolver interface {
	StateByElement(name string) (*schemas.State, bool)
}

// Mock is a screen-free Matcher for dry runs and tests. An attempt on an
// element is judged by the live probability of the state it identifies:
// a state that is expected on screen (probability 100) is always found, a
// state whose recognition just failed (probability 0) never is, and
// anything in between is a weighted roll. Elements that resolve to no
// state fall back to the matcher's flat probability, and elements on the
// fail list are always absent.
type Mock struct {
	failNames   map[string]struct{}
	probability int
	resolver    StateResolver
	rng         *rand.Rand
	log         *zap.Logger
}

var _ schemas.Matcher = (*Mock)(nil)

// NewMock creates a mock matcher. probability is the percent chance
// (0-100) that an attempt succeeds when the element resolves to no state;
// 100 makes such attempts fully deterministic. The resolver may be nil,
// which disables per-state probabilities. A nil rng gets a time-seeded one.
func NewMock(failNames []string, probability int, resolver StateResolver, rng *rand.Rand, logger *zap.Logger) *Mock {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if probability <= 0 || probability > 100 {
		probability = 100
	}
	fails := make(map[string]struct{}, len(failNames))
	for _, name := range failNames {
		fails[name] = struct{}{}
	}
	return &Mock{
		failNames:   fails,
		probability: probability,
		resolver:    resolver,
		rng:         rng,
		log:         logger.Named("mock_matcher"),
	}
}

// Attempt reports whether the element would have been found.
func (m *Mock) Attempt(ctx context.Context, element schemas.Element) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, fails := m.failNames[element.Name]; fails {
		m.log.Debug("Mock attempt failed (fail list)", zap.String("element", element.Name))
		return false
	}
	if m.resolver != nil {
		if state, ok := m.resolver.StateByElement(element.Name); ok {
			return m.roll(state.ProbabilityExists, element)
		}
	}
	return m.roll(m.probability, element)
}

// roll decides one attempt at the given percent probability.
func (m *Mock) roll(probability int, element schemas.Element) bool {
	found := probability >= 100 || (probability > 0 && m.rng.Intn(100) < probability)
	if found {
		m.log.Debug("Mock attempt succeeded",
			zap.String("element", element.Name),
			zap.Int("probability", probability))
		return true
	}
	m.log.Debug("Mock attempt failed (probability)",
		zap.String("element", element.Name),
		zap.Int("probability", probability))
	return false
}
