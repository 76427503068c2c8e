package schemas

import "sort"

// StateID uniquely identifies a State within a loaded model.
type StateID int64

// Special state IDs. Real states always have positive IDs; the loader
// enforces this.
const (
	// NullStateID marks an unresolved or unknown state reference.
	NullStateID StateID = -1
	// PreviousStateID is the reserved sentinel meaning "return to whichever
	// state the source state is currently hiding". Transitions that activate
	// it are resolved against the source state's hidden set at runtime.
	PreviousStateID StateID = -2
)

// Element is an identifying visual element of a State. The navigation core
// treats it opaquely; a Matcher implementation decides what Query means
// (CSS selector, image reference, text anchor, ...).
type Element struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// State is a distinct recognizable screen or mode of the automated target.
// Structure is immutable after loading; only the runtime probability and
// the hidden-state set change during a run. Access is single-writer: the
// navigator owns the model for the duration of an Open call.
type State struct {
	ID   StateID
	Name string

	// Elements identify the state on screen. The finish transition attempts
	// them to confirm arrival.
	Elements []Element

	// CanHide lists states this one occludes when it activates over them
	// (e.g. a modal over its parent). Configured at load time.
	CanHide map[StateID]struct{}

	// hidden tracks the states this one is currently occluding.
	hidden map[StateID]struct{}

	// BaseProbability is the configured likelihood (0-100) that the state is
	// present when expected. ProbabilityExists is the live value, adjusted as
	// recognition succeeds or fails.
	BaseProbability   int
	ProbabilityExists int
}

// NewState returns a State with initialized sets and the live probability
// at its base value.
func NewState(id StateID, name string) *State {
	return &State{
		ID:                id,
		Name:              name,
		CanHide:           make(map[StateID]struct{}),
		hidden:            make(map[StateID]struct{}),
		BaseProbability:   100,
		ProbabilityExists: 100,
	}
}

// SetProbabilityToBase resets the live probability to the configured base.
func (s *State) SetProbabilityToBase() { s.ProbabilityExists = s.BaseProbability }

// AddCanHide registers a state this one may occlude.
func (s *State) AddCanHide(id StateID) { s.CanHide[id] = struct{}{} }

// AddHiddenState records that this state is now occluding id.
func (s *State) AddHiddenState(id StateID) { s.hidden[id] = struct{}{} }

// ResetHidden clears the runtime hidden set, typically when the state exits.
func (s *State) ResetHidden() { s.hidden = make(map[StateID]struct{}) }

// IsHiding reports whether this state currently occludes id.
func (s *State) IsHiding(id StateID) bool {
	_, ok := s.hidden[id]
	return ok
}

// HiddenStateIDs returns the states currently occluded by this one, in
// ascending ID order for deterministic iteration.
func (s *State) HiddenStateIDs() []StateID {
	ids := make([]StateID, 0, len(s.hidden))
	for id := range s.hidden {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
