package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/dotdraw/pkg/dot"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/observability"
)

// Parse runs the parse stage. Failures are wrapped in a StageError.
func Parse(ctx context.Context, name, text string, opts Options) (*graph.Graph, time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name, len(text))

	start := time.Now()
	g, err := dot.Parse(text, opts.ParseOptions()...)
	elapsed := time.Since(start)

	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	hooks.OnParseComplete(ctx, name, nodes, elapsed, err)
	if err != nil {
		return nil, elapsed, errors.AtStage(errors.StageParse, err)
	}
	return g, elapsed, nil
}
