package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/layout"
	"github.com/matzehuels/dotdraw/pkg/observability"
)

// GenerateLayout runs the layout stage. Failures are wrapped in a
// StageError.
func GenerateLayout(ctx context.Context, g *graph.Graph, opts Options) (*layout.Layout, time.Duration, error) {
	hooks := observability.Pipeline()
	if g != nil {
		hooks.OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())
	}

	start := time.Now()
	l, err := layout.Compute(g, opts.Layout)
	elapsed := time.Since(start)

	crossings := 0
	if l != nil {
		crossings = l.Crossings
	}
	hooks.OnLayoutComplete(ctx, crossings, elapsed, err)
	if err != nil {
		return nil, elapsed, errors.AtStage(errors.StageLayout, err)
	}
	return l, elapsed, nil
}
