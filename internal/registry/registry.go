// Package registry holds the loaded state model: every State and its
// StateTransitions, indexed by ID and by name.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// Registry is the in-memory store of the state model. It implements
// schemas.StateService and schemas.TransitionService.
type Registry struct {
	mu          sync.RWMutex
	states      map[schemas.StateID]*schemas.State
	byName      map[string]schemas.StateID
	byElement   map[string]schemas.StateID
	transitions map[schemas.StateID]*schemas.StateTransitions
	log         *zap.Logger
}

var (
	_ schemas.StateService      = (*Registry)(nil)
	_ schemas.TransitionService = (*Registry)(nil)
)

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		states:      make(map[schemas.StateID]*schemas.State),
		byName:      make(map[string]schemas.StateID),
		byElement:   make(map[string]schemas.StateID),
		transitions: make(map[schemas.StateID]*schemas.StateTransitions),
		log:         logger.Named("registry"),
	}
}

// AddState registers a state. IDs, names and identifying element names
// must be unique; real states must have positive IDs so they never collide
// with the sentinels.
func (r *Registry) AddState(state *schemas.State) error {
	if state == nil {
		return fmt.Errorf("cannot register a nil state")
	}
	if state.ID <= 0 {
		return fmt.Errorf("state %q has non-positive id %d", state.Name, state.ID)
	}
	if state.Name == "" {
		return fmt.Errorf("state %d has an empty name", state.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[state.ID]; exists {
		return fmt.Errorf("duplicate state id %d", state.ID)
	}
	if _, exists := r.byName[state.Name]; exists {
		return fmt.Errorf("duplicate state name %q", state.Name)
	}
	for _, el := range state.Elements {
		if el.Name == "" {
			continue
		}
		if owner, exists := r.byElement[el.Name]; exists {
			return fmt.Errorf("element %q of state %q already belongs to state %d", el.Name, state.Name, owner)
		}
	}
	r.states[state.ID] = state
	r.byName[state.Name] = state.ID
	for _, el := range state.Elements {
		if el.Name != "" {
			r.byElement[el.Name] = state.ID
		}
	}
	r.log.Debug("State registered", zap.Int64("id", int64(state.ID)), zap.String("name", state.Name))
	return nil
}

// AddTransitions registers the StateTransitions owned by a state. Exactly
// one StateTransitions may exist per state ID, and the owner must already
// be registered.
func (r *Registry) AddTransitions(st *schemas.StateTransitions) error {
	if st == nil {
		return fmt.Errorf("cannot register nil transitions")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[st.StateID]; !exists {
		return fmt.Errorf("transitions reference unknown state %d", st.StateID)
	}
	if _, exists := r.transitions[st.StateID]; exists {
		return fmt.Errorf("state %d already has transitions registered", st.StateID)
	}
	r.transitions[st.StateID] = st
	return nil
}

// StateID resolves a state name to its ID.
func (r *Registry) StateID(name string) (schemas.StateID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// State returns the state with the given ID.
func (r *Registry) State(id schemas.StateID) (*schemas.State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[id]
	return s, ok
}

// StateName returns the state's name, or the numeric ID when unknown.
func (r *Registry) StateName(id schemas.StateID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.states[id]; ok {
		return s.Name
	}
	if id == schemas.PreviousStateID {
		return "PREVIOUS"
	}
	return strconv.FormatInt(int64(id), 10)
}

// FindSetByID returns the states for the given IDs, skipping unknowns.
func (r *Registry) FindSetByID(ids ...schemas.StateID) []*schemas.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make([]*schemas.State, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.states[id]; ok {
			states = append(states, s)
		}
	}
	return states
}

// StateByElement resolves an identifying element name to its owning state.
// The mock matcher uses it to judge attempts by the owner's live
// probability.
func (r *Registry) StateByElement(name string) (*schemas.State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byElement[name]
	if !ok {
		return nil, false
	}
	s, ok := r.states[id]
	return s, ok
}

// Transitions returns the StateTransitions owned by the given state.
func (r *Registry) Transitions(id schemas.StateID) (*schemas.StateTransitions, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transitions[id]
	return t, ok
}

// AllTransitions returns every registered StateTransitions in ascending
// owner-ID order, for joint table construction.
func (r *Registry) AllTransitions() []*schemas.StateTransitions {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*schemas.StateTransitions, 0, len(r.transitions))
	for _, t := range r.transitions {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StateID < all[j].StateID })
	return all
}

// StateCount returns the number of registered states. PathFinder uses it
// as the default simple-path length bound.
func (r *Registry) StateCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
