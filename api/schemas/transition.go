package schemas

import "context"

// StaysVisible controls whether the source state remains active after a
// transition. None defers to the StateTransitions-level default.
type StaysVisible int

const (
	StaysVisibleNone StaysVisible = iota
	StaysVisibleTrue
	StaysVisibleFalse
)

// TransitionKind discriminates the two transition variants. Execution
// dispatches on it with a switch; there is no virtual hierarchy.
type TransitionKind int

const (
	// KindFunction transitions run an arbitrary guard function.
	KindFunction TransitionKind = iota
	// KindTaskSequence transitions attempt an ordered list of steps through
	// a Matcher; every step must succeed.
	KindTaskSequence
)

// GuardFunc performs the actions of a function transition and reports
// whether they succeeded. A panic inside a guard is not recovered by the
// navigation core.
type GuardFunc func(ctx context.Context) bool

// TaskStep is one step of a task-sequence transition.
type TaskStep struct {
	Element Element `json:"element"`
}

// StateTransition is a directed edge from its owning state to the states in
// Activate. Activate and Exit are expected to be disjoint; if they overlap,
// exit wins.
type StateTransition struct {
	Kind  TransitionKind
	Guard GuardFunc
	Steps []TaskStep

	// Activate lists state IDs switched on when the transition succeeds.
	// May contain PreviousStateID.
	Activate []StateID
	// Exit lists state IDs switched off when the transition succeeds.
	Exit []StateID

	StaysVisible StaysVisible

	// Score is the path cost of taking this transition; cheaper paths are
	// preferred.
	Score int

	// TimesSuccessful counts successful executions during this run.
	TimesSuccessful int
}

// Activates reports whether the transition's activate set contains id.
func (t *StateTransition) Activates(id StateID) bool {
	for _, a := range t.Activate {
		if a == id {
			return true
		}
	}
	return false
}

// StateTransitions holds every outgoing transition of one state plus the
// distinguished finish transition, a self-transition that confirms arrival.
// Exactly one StateTransitions exists per state ID.
type StateTransitions struct {
	StateID   StateID
	StateName string

	Transitions []*StateTransition

	// Finish confirms the state is on screen once a transition has targeted
	// it, without driving further navigation.
	Finish *StateTransition

	// StaysVisibleDefault applies when a transition's StaysVisible is None.
	StaysVisibleDefault bool
}

// TransitionTo returns the first transition whose activate set contains the
// target. It does not resolve the PREVIOUS sentinel; callers that need
// hidden-state resolution check for a PreviousStateID transition themselves.
func (s *StateTransitions) TransitionTo(target StateID) (*StateTransition, bool) {
	for _, t := range s.Transitions {
		if t.Activates(target) {
			return t, true
		}
	}
	return nil, false
}

// TransitionToPrevious returns the transition targeting the PREVIOUS
// sentinel, if the state has one.
func (s *StateTransitions) TransitionToPrevious() (*StateTransition, bool) {
	return s.TransitionTo(PreviousStateID)
}

// StaysVisibleAfter reports whether the source state remains active after
// transitioning to target, resolving the tri-state against the default.
func (s *StateTransitions) StaysVisibleAfter(target StateID) bool {
	t, ok := s.TransitionTo(target)
	if !ok {
		return s.StaysVisibleDefault
	}
	switch t.StaysVisible {
	case StaysVisibleTrue:
		return true
	case StaysVisibleFalse:
		return false
	default:
		return s.StaysVisibleDefault
	}
}
