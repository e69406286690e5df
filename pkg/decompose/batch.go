package decompose

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kittclouds/shotkit/pkg/moment"
)

// Scene is one independent decomposition in a batch
type Scene struct {
	Narration string         `json:"narration"`
	Target    int            `json:"target"`
	Context   moment.Context `json:"context"`
}

// DecomposeScenes decomposes scenes concurrently, at most parallelism at a
// time (unbounded when parallelism < 1). Results keep scene order. The first
// error cancels the remaining scenes.
func (e *Engine) DecomposeScenes(ctx context.Context, scenes []Scene, parallelism int) ([][]moment.Moment, error) {
	out := make([][]moment.Moment, len(scenes))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, s := range scenes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			moments, err := e.Decompose(ctx, s.Narration, s.Target, s.Context)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			out[i] = moments
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
