package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/dotdraw/pkg/dot"
	"github.com/matzehuels/dotdraw/pkg/drawio"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/layout"
	"github.com/matzehuels/dotdraw/pkg/observability"
	"github.com/matzehuels/dotdraw/pkg/render/nodelink"
)

// Serialize runs the serialize stage. Failures are wrapped in a StageError.
func Serialize(ctx context.Context, l *layout.Layout, opts Options) (*drawio.Document, time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnSerializeStart(ctx, "document")

	start := time.Now()
	doc, err := drawio.Serialize(l, opts.SerializeOptions())
	elapsed := time.Since(start)

	cells := 0
	if doc != nil {
		cells = len(doc.Shapes) + len(doc.Connectors)
	}
	hooks.OnSerializeComplete(ctx, "document", cells, elapsed, err)
	if err != nil {
		return nil, elapsed, errors.AtStage(errors.StageSerialize, err)
	}
	return doc, elapsed, nil
}

// Render encodes a conversion result in the given format:
//   - drawio: the mxfile XML document
//   - json: the laid-out graph (boxes, routes, effective options)
//   - graph: the parsed graph as JSON, readable with [graph.ReadGraph]
//   - dot: the parsed graph written back as DOT
//   - svg: a Graphviz preview of the parsed graph
//
// Failures are wrapped in a StageError for the render stage.
func Render(res *Result, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if res == nil || res.Graph == nil {
		return nil, errors.AtStage(errors.StageRender, &errors.InternalError{Detail: "nothing to render"})
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatDrawio:
		if res.Document == nil {
			return nil, errors.AtStage(errors.StageRender, &errors.InternalError{Detail: "result has no document"})
		}
		err = res.Document.Encode(&buf)
	case FormatJSON:
		if res.Layout == nil {
			return nil, errors.AtStage(errors.StageRender, &errors.InternalError{Detail: "result has no layout"})
		}
		err = layout.WriteJSON(&buf, res.Layout)
	case FormatGraph:
		var data []byte
		data, err = graph.MarshalGraph(res.Graph)
		buf.Write(data)
	case FormatDOT:
		err = dot.Write(&buf, res.Graph)
	case FormatSVG:
		var svg []byte
		svg, err = nodelink.RenderSVG(nodelink.ToDOT(res.Graph, nodelink.Options{Detailed: res.Detailed}))
		buf.Write(svg)
	}
	if err != nil {
		return nil, errors.AtStage(errors.StageRender, fmt.Errorf("render %s: %w", format, err))
	}
	return buf.Bytes(), nil
}

// renderStage renders res.Format into res.Output, recording timing and hooks.
func renderStage(ctx context.Context, res *Result) error {
	hooks := observability.Pipeline()
	hooks.OnSerializeStart(ctx, res.Format)

	start := time.Now()
	out, err := Render(res, res.Format)
	res.Stats.RenderTime = time.Since(start)

	hooks.OnSerializeComplete(ctx, res.Format, len(out), res.Stats.RenderTime, err)
	if err != nil {
		return err
	}
	res.Output = out
	res.Stats.OutputBytes = len(out)
	return nil
}
