// Package shutdown turns OS termination signals into context
// cancellation so an in-flight unmixing run can drain its worker pool
// and release buffers before the process exits.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spectral-unmixer/internal/logger"
)

// Context derives a context from parent that is cancelled on SIGINT or
// SIGTERM. The first signal is logged and cancels the context; a second
// signal falls through to the default handler and kills the process.
// The returned stop function releases the signal registration.
func Context(parent context.Context, log logger.Logger) (context.Context, context.CancelFunc) {
	if log == nil {
		log = logger.Nop{}
	}

	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Warning("Shutdown", "termination signal received, cancelling run", map[string]interface{}{
				"signal": sig.String(),
			})
			signal.Stop(sigChan)
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}
