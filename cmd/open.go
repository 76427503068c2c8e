package cmd

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jspinak/brobot-sub003/api/schemas"
	"github.com/jspinak/brobot-sub003/internal/actionlog"
	"github.com/jspinak/brobot-sub003/internal/history"
	"github.com/jspinak/brobot-sub003/internal/matcher"
	"github.com/jspinak/brobot-sub003/internal/navigation"
	"github.com/jspinak/brobot-sub003/internal/observability"
	"github.com/jspinak/brobot-sub003/internal/registry"
	"github.com/jspinak/brobot-sub003/internal/session"
)

// newOpenCmd creates and configures the `open` command.
func newOpenCmd() *cobra.Command {
	var (
		modelPath    string
		activeStates []string
		backend      string
	)

	openCmd := &cobra.Command{
		Use:   "open <state-name>",
		Short: "Navigates the model to the named state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			target := args[0]

			if cmd.Flags().Changed("backend") {
				cfg.Matcher.Backend = backend
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			reg, joint, err := buildGraph(modelPath, logger)
			if err != nil {
				return err
			}

			memory := navigation.NewStateMemory(logger)
			visibility := navigation.NewVisibilityManager(reg, memory, logger)
			finder := navigation.NewPathFinder(joint, reg, reg,
				maxPathLength(cfg.Navigation.MaxPathLength, reg), logger)
			manager := navigation.NewPathManager(logger)

			match, closeMatcher, err := newMatcher(ctx, reg, logger)
			if err != nil {
				return err
			}
			defer closeMatcher()

			traverser, err := navigation.NewPathTraverser(reg, reg, joint, memory, visibility, match, logger)
			if err != nil {
				return err
			}

			if cfg.History.Enabled {
				store, err := history.Open(cfg.History.Path, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				traverser.SetRecorder(store)
			}

			sessions := session.NewManager(logger)
			sessions.Start()
			defer sessions.End()
			traverser.SetSession(sessions)

			actionLog, closeActionLog, err := newActionLogger(ctx, logger)
			if err != nil {
				return err
			}
			defer closeActionLog()

			navigator, err := navigation.NewNavigator(reg, finder, manager, traverser, memory, actionLog, sessions, logger)
			if err != nil {
				return err
			}

			if err := markActive(reg, memory, activeStates); err != nil {
				return err
			}

			if !navigator.OpenStateByName(ctx, target) {
				return fmt.Errorf("failed to reach state %q", target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reached state %q; active states: %v\n",
				target, stateNames(reg, memory.ActiveStates()))
			return nil
		},
	}

	openCmd.Flags().StringVarP(&modelPath, "model", "m", "", "path to the state-model JSON file")
	openCmd.Flags().StringSliceVar(&activeStates, "active", nil, "names of the states active before navigation starts")
	openCmd.Flags().StringVar(&backend, "backend", "", "matcher backend override (mock or browser)")
	_ = openCmd.MarkFlagRequired("model")
	_ = openCmd.MarkFlagRequired("active")
	return openCmd
}

// newMatcher builds the configured matcher backend and its cleanup func.
// The mock backend judges attempts by the owning state's live probability,
// resolved through the registry.
func newMatcher(ctx context.Context, reg *registry.Registry, logger *zap.Logger) (schemas.Matcher, func(), error) {
	switch cfg.Matcher.Backend {
	case "browser":
		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
		browser, err := matcher.NewBrowser(allocCtx, cfg.Matcher.FindTimeout, cfg.Matcher.AttemptsPerSecond, logger)
		if err != nil {
			allocCancel()
			return nil, nil, err
		}
		return browser, func() {
			browser.Close()
			allocCancel()
		}, nil
	default:
		return matcher.NewMock(cfg.Matcher.MockFailNames, cfg.Matcher.MockProbability, reg, nil, logger), func() {}, nil
	}
}

// newActionLogger builds the console action logger, fanned out to Postgres
// when a database is configured.
func newActionLogger(ctx context.Context, logger *zap.Logger) (schemas.ActionLogger, func(), error) {
	console := actionlog.NewZapLogger(logger)
	if !cfg.Database.Enabled {
		return console, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pg, err := actionlog.NewPostgresLogger(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return actionlog.NewMulti(console, pg), func() {
		pg.Close()
		pool.Close()
	}, nil
}

// markActive seeds the active-state set from the --active names.
func markActive(reg *registry.Registry, memory *navigation.StateMemory, names []string) error {
	for _, name := range names {
		id, ok := reg.StateID(name)
		if !ok {
			return fmt.Errorf("unknown active state %q", name)
		}
		if state, ok := reg.State(id); ok {
			state.SetProbabilityToBase()
		}
		memory.AddActiveState(id)
	}
	return nil
}

func stateNames(reg *registry.Registry, ids []schemas.StateID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = reg.StateName(id)
	}
	return names
}
