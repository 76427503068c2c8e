package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// Navigator is the public entry point for navigation. OpenState resolves
// the target, asks the path finder for candidate routes, hands the best
// one to the traverser, and on failure narrows the candidate set through
// the path manager until one route succeeds or none remain.
type Navigator struct {
	states    schemas.StateService
	finder    *PathFinder
	manager   *PathManager
	traverser *PathTraverser
	memory    *StateMemory
	actionLog schemas.ActionLogger
	session   schemas.ExecutionSession
	log       *zap.Logger
}

// NewNavigator creates a navigator. The action logger and session are
// optional; everything else is required.
func NewNavigator(
	states schemas.StateService,
	finder *PathFinder,
	manager *PathManager,
	traverser *PathTraverser,
	memory *StateMemory,
	actionLog schemas.ActionLogger,
	session schemas.ExecutionSession,
	logger *zap.Logger,
) (*Navigator, error) {
	if states == nil || finder == nil || manager == nil || traverser == nil || memory == nil {
		return nil, fmt.Errorf("cannot initialize navigator with nil dependencies")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		states:    states,
		finder:    finder,
		manager:   manager,
		traverser: traverser,
		memory:    memory,
		actionLog: actionLog,
		session:   session,
		log:       logger.Named("navigator"),
	}, nil
}

// OpenStateByName resolves a state name and opens it. An unknown name
// returns false immediately, with no path search.
func (n *Navigator) OpenStateByName(ctx context.Context, name string) bool {
	id, ok := n.states.StateID(name)
	if !ok {
		n.log.Warn("Target state name not found", zap.String("name", name))
		return false
	}
	return n.OpenState(ctx, id)
}

// OpenState navigates to the target state. Expected failures (unknown
// target, no route, exhausted alternatives) return false without error;
// only guard panics escape.
func (n *Navigator) OpenState(ctx context.Context, target schemas.StateID) bool {
	if _, ok := n.states.State(target); !ok {
		n.log.Warn("Target state id not found", zap.Int64("id", int64(target)))
		return false
	}

	targetName := n.states.StateName(target)
	before := n.memory.ActiveStates()
	start := time.Now()

	n.observe("transition", fmt.Sprintf("Transition start: %s", targetName), "info")
	n.log.Info("Opening state",
		zap.String("target", targetName),
		zap.Int64s("active", toInt64s(before)))

	success := n.open(ctx, target)

	n.logOutcome(before, target, success, time.Since(start))
	return success
}

func (n *Navigator) open(ctx context.Context, target schemas.StateID) bool {
	// An already-active target only needs its finish transition confirmed.
	if n.memory.Contains(target) {
		return n.traverser.FinishTransition(ctx, target)
	}

	paths := n.finder.PathsToState(n.memory.ActiveStates(), target)
	for attempt := 1; ; attempt++ {
		if paths.IsEmpty() {
			n.log.Info("No paths remain to target",
				zap.String("target", n.states.StateName(target)),
				zap.Int("attempts", attempt-1))
			return false
		}
		best := paths.Best()
		n.log.Debug("Traversing path",
			zap.Int("attempt", attempt),
			zap.Int("score", best.Score),
			zap.Int64s("path", toInt64s(best.StateIDs)))
		if n.traverser.Traverse(ctx, best) {
			return true
		}
		// The failed transition may have shifted the active set; clean
		// against the current one.
		failed := n.traverser.FailedTransitionStartState()
		paths = n.manager.CleanPaths(n.memory.ActiveStates(), paths, failed)
	}
}

func (n *Navigator) logOutcome(before []schemas.StateID, target schemas.StateID, success bool, elapsed time.Duration) {
	after := n.memory.ActiveStates()
	n.log.Info("Navigation finished",
		zap.String("target", n.states.StateName(target)),
		zap.Bool("success", success),
		zap.Duration("duration", elapsed),
		zap.Int64s("active", toInt64s(after)))
	if n.actionLog == nil {
		return
	}
	n.actionLog.LogStateTransition(
		n.sessionID(),
		n.stateNames(before),
		[]string{n.states.StateName(target)},
		n.stateNames(after),
		success,
		elapsed,
	)
}

func (n *Navigator) observe(category, message, level string) {
	if n.actionLog == nil {
		return
	}
	n.actionLog.LogObservation(n.sessionID(), category, message, level)
}

func (n *Navigator) sessionID() string {
	if n.session == nil {
		return ""
	}
	return n.session.CurrentSessionID()
}

func (n *Navigator) stateNames(ids []schemas.StateID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = n.states.StateName(id)
	}
	return names
}
