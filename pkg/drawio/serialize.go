package drawio

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dotdraw/pkg/buildinfo"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/layout"
)

// Options configures Serialize.
type Options struct {
	// Modified is written as the document's modification time. Leave it
	// zero for reproducible output.
	Modified time.Time
	// Agent overrides the mxfile agent attribute (default "dotdraw/<version>").
	Agent string
}

// ShapeID returns the cell id of the node at index i.
func ShapeID(i int) string { return fmt.Sprintf("node-%d", i) }

// ConnectorID returns the cell id of the edge at index i.
func ConnectorID(i int) string { return fmt.Sprintf("edge-%d", i) }

// DiagramID returns the stable diagram id for a graph name.
func DiagramID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("dotdraw:"+name)).String()
}

// Serialize converts a layout into a draw.io document with one shape per
// node and one connector per edge, in graph order.
//
// A layout that breaks its own invariants (a node without a box, an edge
// with fewer than two points, an index out of range, a NaN or negative
// size) yields a *errors.InternalError; it never comes from user input.
func Serialize(l *layout.Layout, opts Options) (*Document, error) {
	if err := check(l); err != nil {
		return nil, err
	}
	g := l.Graph
	name := g.Name
	if name == "" {
		name = "Page-1"
	}
	agent := opts.Agent
	if agent == "" {
		agent = buildinfo.Agent()
	}

	doc := &Document{
		ID:         DiagramID(g.Name),
		Name:       name,
		Agent:      agent,
		Modified:   opts.Modified,
		PageWidth:  int(math.Ceil(l.Width)),
		PageHeight: int(math.Ceil(l.Height)),
		Shapes:     make([]Shape, g.NodeCount()),
		Connectors: make([]Connector, g.EdgeCount()),
	}

	for i, n := range g.Nodes() {
		doc.Shapes[i] = Shape{
			ID:       ShapeID(i),
			Label:    n.DisplayLabel(),
			Style:    shapeStyle(n),
			Geometry: l.Nodes[i].Rect,
		}
	}
	for i, e := range g.Edges() {
		r := l.Edges[i]
		doc.Connectors[i] = Connector{
			ID:          ConnectorID(i),
			Source:      ShapeID(e.From),
			Target:      ShapeID(e.To),
			Label:       e.Label,
			Style:       connectorStyle(e),
			SourcePoint: r.Source(),
			TargetPoint: r.Target(),
			Waypoints:   r.Waypoints(),
		}
	}
	return doc, nil
}

func check(l *layout.Layout) error {
	if l == nil || l.Graph == nil {
		return &errors.InternalError{Detail: "layout has no graph"}
	}
	g := l.Graph
	if len(l.Nodes) != g.NodeCount() {
		return &errors.InternalError{Detail: fmt.Sprintf("layout has %d boxes for %d nodes", len(l.Nodes), g.NodeCount())}
	}
	if len(l.Edges) != g.EdgeCount() {
		return &errors.InternalError{Detail: fmt.Sprintf("layout has %d routes for %d edges", len(l.Edges), g.EdgeCount())}
	}
	for i, b := range l.Nodes {
		if !b.Finite() {
			return &errors.InternalError{Detail: fmt.Sprintf("node %d has invalid geometry %+v", i, b.Rect)}
		}
	}
	for i, e := range g.Edges() {
		if e.From < 0 || e.From >= g.NodeCount() || e.To < 0 || e.To >= g.NodeCount() {
			return &errors.InternalError{Detail: fmt.Sprintf("edge %d has a dangling endpoint", i)}
		}
		r := l.Edges[i]
		if len(r.Points) < 2 {
			return &errors.InternalError{Detail: fmt.Sprintf("edge %d has %d route points", i, len(r.Points))}
		}
		for _, p := range r.Points {
			if !finite(p.X) || !finite(p.Y) {
				return &errors.InternalError{Detail: fmt.Sprintf("edge %d has a non-finite point", i)}
			}
		}
	}
	if !finite(l.Width) || !finite(l.Height) || l.Width < 0 || l.Height < 0 {
		return &errors.InternalError{Detail: fmt.Sprintf("invalid page size %vx%v", l.Width, l.Height)}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
