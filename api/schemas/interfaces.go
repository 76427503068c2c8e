package schemas

import (
	"context"
	"time"
)

// -- Matching --

// Matcher is the boundary to the screen-recognition engine. Attempt blocks
// until the element is found or the matcher gives up, and reports the
// outcome. How an Element is located (selector, image, OCR) is entirely the
// implementation's business.
type Matcher interface {
	Attempt(ctx context.Context, element Element) bool
}

// -- Logging collaborators --

// ActionLogger receives structured navigation events. Implementations must
// tolerate an empty session ID.
type ActionLogger interface {
	// LogObservation records a free-form observation such as a transition
	// start notice. Level is a zap-style level string ("info", "warn", ...).
	LogObservation(sessionID, category, message, level string)
	// LogStateTransition records a terminal navigation outcome: the active
	// set before the attempt, the requested targets, the active set after,
	// whether the attempt succeeded, and how long it took.
	LogStateTransition(sessionID string, fromStates, toStates, activeAfter []string, success bool, duration time.Duration)
}

// ExecutionSession correlates log records belonging to one automation run.
type ExecutionSession interface {
	// CurrentSessionID returns the active session ID, or "" when no session
	// is open.
	CurrentSessionID() string
}

// -- Model services --

// StateService resolves states by ID and name.
type StateService interface {
	// StateID resolves a state name to its ID.
	StateID(name string) (StateID, bool)
	// State returns the state with the given ID.
	State(id StateID) (*State, bool)
	// StateName returns the state's name, or a numeric placeholder for
	// unknown IDs.
	StateName(id StateID) string
	// FindSetByID returns the states for the given IDs, skipping unknowns.
	FindSetByID(ids ...StateID) []*State
}

// TransitionService resolves the StateTransitions owned by a state.
type TransitionService interface {
	Transitions(id StateID) (*StateTransitions, bool)
}

// -- History --

// TransitionRecord is one executed transition outcome, persisted by the
// history store.
type TransitionRecord struct {
	SessionID  string
	FromState  StateID
	ToState    StateID
	Success    bool
	Duration   time.Duration
	RecordedAt time.Time
}
