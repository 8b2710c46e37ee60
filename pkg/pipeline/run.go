package pipeline

import (
	"context"

	"github.com/matzehuels/dotdraw/pkg/drawio"
)

// Run converts DOT text into a draw.io document: parse, then layout, then
// serialize. The first failing stage ends the run and its error is returned
// wrapped in an *errors.StageError; no partial document is produced.
//
// Run is deterministic: equal text and options give equal documents.
func Run(text string, opts Options) (*drawio.Document, error) {
	res, err := Convert(context.Background(), "", text, opts)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Convert runs the three stages and keeps every intermediate product. The
// output is not rendered; pass the result to [Render] for that.
func Convert(ctx context.Context, name, text string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	res := &Result{Name: name, Format: opts.Format, Detailed: opts.Detailed}

	g, elapsed, err := Parse(ctx, name, text, opts)
	res.Stats.ParseTime = elapsed
	if err != nil {
		return nil, err
	}
	res.Graph = g
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()
	logger.Debug("parsed graph", "name", name, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "duration", elapsed)

	l, elapsed, err := GenerateLayout(ctx, g, opts)
	res.Stats.LayoutTime = elapsed
	if err != nil {
		return nil, err
	}
	res.Layout = l
	res.Stats.Crossings = l.Crossings
	logger.Debug("computed layout", "layers", len(l.Layers), "crossings", l.Crossings,
		"width", l.Width, "height", l.Height, "duration", elapsed)

	doc, elapsed, err := Serialize(ctx, l, opts)
	res.Stats.SerializeTime = elapsed
	if err != nil {
		return nil, err
	}
	res.Document = doc
	logger.Debug("serialized document", "shapes", len(doc.Shapes), "connectors", len(doc.Connectors), "duration", elapsed)

	return res, nil
}
