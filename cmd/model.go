package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jspinak/brobot-sub003/internal/loader"
	"github.com/jspinak/brobot-sub003/internal/navigation"
	"github.com/jspinak/brobot-sub003/internal/registry"
)

// buildGraph loads a state-model file and constructs the registry and the
// joint table every navigation component runs against.
func buildGraph(modelPath string, logger *zap.Logger) (*registry.Registry, *navigation.JointTable, error) {
	model, err := loader.LoadFile(modelPath)
	if err != nil {
		return nil, nil, err
	}
	reg, err := loader.Build(model, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid state model %s: %w", modelPath, err)
	}
	joint := navigation.NewJointTable(reg, logger)
	for _, st := range reg.AllTransitions() {
		joint.AddTransitions(st)
	}
	return reg, joint, nil
}

// maxPathLength resolves the configured path length cap, defaulting to the
// number of registered states.
func maxPathLength(configured int, reg *registry.Registry) int {
	if configured > 0 {
		return configured
	}
	return reg.StateCount()
}
