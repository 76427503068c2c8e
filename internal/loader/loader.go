// Package loader reads a JSON state-model file and builds the registry
// the navigation core runs against.
package loader

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/jspinak/brobot-sub003/api/schemas"
	"github.com/jspinak/brobot-sub003/internal/registry"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Model is the raw JSON shape of a state-model file.
type Model struct {
	StaysVisibleDefault bool              `json:"stays_visible_default"`
	States              []StateModel      `json:"states"`
	Transitions         []TransitionModel `json:"transitions"`
}

// StateModel describes one state.
type StateModel struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Elements        []schemas.Element `json:"elements"`
	CanHide         []int64           `json:"can_hide"`
	BaseProbability int               `json:"base_probability"`
}

// TransitionModel describes one outgoing transition. Activate entries may
// use -2 for the PREVIOUS sentinel.
type TransitionModel struct {
	From         int64              `json:"from"`
	Activate     []int64            `json:"activate"`
	Exit         []int64            `json:"exit"`
	Score        int                `json:"score"`
	StaysVisible string             `json:"stays_visible"`
	Steps        []schemas.TaskStep `json:"steps"`
}

// Parse decodes a model from JSON.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse state model: %w", err)
	}
	return &m, nil
}

// LoadFile reads and decodes a model file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state model %s: %w", path, err)
	}
	return Parse(data)
}

// Build validates the model and constructs a populated registry. Every
// state receives a StateTransitions whose finish transition attempts the
// state's identifying elements; declared transitions become task-sequence
// transitions over their steps.
func Build(m *Model, logger *zap.Logger) (*registry.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("loader")

	if len(m.States) == 0 {
		return nil, fmt.Errorf("state model declares no states")
	}

	reg := registry.New(logger)
	known := make(map[schemas.StateID]struct{}, len(m.States))

	for _, sm := range m.States {
		state := schemas.NewState(schemas.StateID(sm.ID), sm.Name)
		state.Elements = sm.Elements
		if sm.BaseProbability > 0 {
			state.BaseProbability = sm.BaseProbability
			state.SetProbabilityToBase()
		}
		for _, h := range sm.CanHide {
			state.AddCanHide(schemas.StateID(h))
		}
		if err := reg.AddState(state); err != nil {
			return nil, err
		}
		known[state.ID] = struct{}{}
	}

	// Verify can_hide references now that all states are registered.
	for _, sm := range m.States {
		for _, h := range sm.CanHide {
			if _, ok := known[schemas.StateID(h)]; !ok {
				return nil, fmt.Errorf("state %q can_hide references unknown state %d", sm.Name, h)
			}
		}
	}

	grouped := make(map[schemas.StateID][]*schemas.StateTransition)
	for i, tm := range m.Transitions {
		from := schemas.StateID(tm.From)
		if _, ok := known[from]; !ok {
			return nil, fmt.Errorf("transition %d references unknown source state %d", i, tm.From)
		}
		tr, err := buildTransition(tm, known, log)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		grouped[from] = append(grouped[from], tr)
	}

	for _, sm := range m.States {
		id := schemas.StateID(sm.ID)
		st := &schemas.StateTransitions{
			StateID:             id,
			StateName:           sm.Name,
			Transitions:         grouped[id],
			Finish:              finishTransition(sm.Elements),
			StaysVisibleDefault: m.StaysVisibleDefault,
		}
		if err := reg.AddTransitions(st); err != nil {
			return nil, err
		}
	}

	log.Info("State model built",
		zap.Int("states", len(m.States)),
		zap.Int("transitions", len(m.Transitions)))
	return reg, nil
}

func buildTransition(tm TransitionModel, known map[schemas.StateID]struct{}, log *zap.Logger) (*schemas.StateTransition, error) {
	tr := &schemas.StateTransition{
		Kind:  schemas.KindTaskSequence,
		Steps: tm.Steps,
		Score: tm.Score,
	}

	switch tm.StaysVisible {
	case "", "none":
		tr.StaysVisible = schemas.StaysVisibleNone
	case "true":
		tr.StaysVisible = schemas.StaysVisibleTrue
	case "false":
		tr.StaysVisible = schemas.StaysVisibleFalse
	default:
		return nil, fmt.Errorf("invalid stays_visible value %q", tm.StaysVisible)
	}

	if len(tm.Activate) == 0 {
		return nil, fmt.Errorf("transition activates nothing")
	}
	exits := make(map[schemas.StateID]struct{}, len(tm.Exit))
	for _, raw := range tm.Exit {
		id := schemas.StateID(raw)
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("exit references unknown state %d", raw)
		}
		exits[id] = struct{}{}
		tr.Exit = append(tr.Exit, id)
	}
	for _, raw := range tm.Activate {
		id := schemas.StateID(raw)
		if id != schemas.PreviousStateID {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("activate references unknown state %d", raw)
			}
		}
		if _, overlap := exits[id]; overlap {
			// Exit wins at execution time; flag the model anyway.
			log.Warn("Transition activates and exits the same state",
				zap.Int64("from", tm.From), zap.Int64("state", raw))
		}
		tr.Activate = append(tr.Activate, id)
	}
	return tr, nil
}

// finishTransition builds the self-transition that confirms arrival by
// attempting the state's identifying elements.
func finishTransition(elements []schemas.Element) *schemas.StateTransition {
	steps := make([]schemas.TaskStep, len(elements))
	for i, el := range elements {
		steps[i] = schemas.TaskStep{Element: el}
	}
	return &schemas.StateTransition{
		Kind:  schemas.KindTaskSequence,
		Steps: steps,
	}
}
