package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"github.com/jspinak/brobot-sub003/internal/navigation"
	"github.com/jspinak/brobot-sub003/internal/observability"
)

// newPathsCmd creates and configures the `paths` command, which prints the
// ranked candidate routes without executing anything.
func newPathsCmd() *cobra.Command {
	var (
		modelPath  string
		fromStates []string
	)

	pathsCmd := &cobra.Command{
		Use:   "paths <state-name>",
		Short: "Lists the candidate paths to the named state, cheapest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			target := args[0]

			reg, joint, err := buildGraph(modelPath, logger)
			if err != nil {
				return err
			}

			targetID, ok := reg.StateID(target)
			if !ok {
				return fmt.Errorf("unknown target state %q", target)
			}
			active := make([]schemas.StateID, 0, len(fromStates))
			for _, name := range fromStates {
				id, ok := reg.StateID(name)
				if !ok {
					return fmt.Errorf("unknown source state %q", name)
				}
				active = append(active, id)
			}

			finder := navigation.NewPathFinder(joint, reg, reg,
				maxPathLength(cfg.Navigation.MaxPathLength, reg), logger)
			paths := finder.PathsToState(active, targetID)

			out := cmd.OutOrStdout()
			if paths.IsEmpty() {
				fmt.Fprintf(out, "No paths to %q from %v\n", target, fromStates)
				return nil
			}
			for i, p := range paths.Paths {
				names := make([]string, len(p.StateIDs))
				for j, id := range p.StateIDs {
					names[j] = reg.StateName(id)
				}
				fmt.Fprintf(out, "%d. [score %d] %s\n", i+1, p.Score, strings.Join(names, " -> "))
			}
			return nil
		},
	}

	pathsCmd.Flags().StringVarP(&modelPath, "model", "m", "", "path to the state-model JSON file")
	pathsCmd.Flags().StringSliceVar(&fromStates, "from", nil, "names of the states to start from")
	_ = pathsCmd.MarkFlagRequired("model")
	_ = pathsCmd.MarkFlagRequired("from")
	return pathsCmd
}
