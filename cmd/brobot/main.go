package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jspinak/brobot-sub003/cmd"
	"github.com/jspinak/brobot-sub003/internal/observability"
)

func main() {
	// Shut down cleanly on SIGINT/SIGTERM; traversals observe the context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
	observability.Sync()
}
