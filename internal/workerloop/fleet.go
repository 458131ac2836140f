package workerloop

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fraktile/internal/logging"
)

// RunFleet spawns count independent worker loops, each named
// "<baseName>-<index>" for index > 0 and baseName for index 0, and blocks
// until ctx is cancelled and every loop has returned.
func RunFleet(ctx context.Context, baseName, address string, port int, maximalWorkLoad uint32, count int, log logging.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < count; i++ {
		name := baseName
		if i > 0 {
			name = fmt.Sprintf("%s-%d", baseName, i)
		}
		loop := &Loop{
			Name:            name,
			Address:         address,
			Port:            port,
			MaximalWorkLoad: maximalWorkLoad,
			Log:             log.WithField("worker", name),
		}
		g.Go(func() error {
			loop.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}
