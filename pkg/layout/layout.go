package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
)

// RouteKind classifies how an edge was routed.
type RouteKind string

const (
	// RouteStraight joins nodes on adjacent layers with one segment.
	RouteStraight RouteKind = "straight"
	// RouteLong passes through one virtual position per intermediate layer.
	RouteLong RouteKind = "long"
	// RouteSelfLoop leaves and re-enters the same node.
	RouteSelfLoop RouteKind = "self-loop"
)

// NodeBox is the placement of one node.
type NodeBox struct {
	graph.Rect
	Layer int `json:"layer"`
	Order int `json:"order"` // Position among the real nodes of the layer
}

// Route is the polyline of one edge. Points always run from the source
// node's border to the target node's border, even for edges the layering
// reversed.
type Route struct {
	Points   []graph.Point `json:"points"`
	Kind     RouteKind     `json:"kind"`
	Reversed bool          `json:"reversed,omitempty"` // Edge was reversed to break a cycle
}

// Source returns the first point (the source port).
func (r Route) Source() graph.Point { return r.Points[0] }

// Target returns the last point (the target port).
func (r Route) Target() graph.Point { return r.Points[len(r.Points)-1] }

// Waypoints returns the interior points between the two ports.
func (r Route) Waypoints() []graph.Point {
	if len(r.Points) <= 2 {
		return nil
	}
	return r.Points[1 : len(r.Points)-1]
}

// Layout is a graph with a position for every node and a route for every
// edge. Nodes and Edges are indexed like the graph's nodes and edges.
//
// A Layout is either complete or not produced at all.
type Layout struct {
	Graph     *graph.Graph
	Options   Options // Effective options after Resolve
	Nodes     []NodeBox
	Edges     []Route
	Layers    [][]int // Node indices per layer, in final order
	Width     float64
	Height    float64
	Crossings int // Segment crossings of the chosen ordering
}

// Compute lays out g in layers.
//
// The phases run in sequence, each over plain index slices:
//  1. Cycle breaking reverses back edges for layering ([BreakCycles])
//  2. Layering places each node by longest path from a source
//  3. Long arcs are split by virtual items and layers are ordered with
//     barycenter sweeps, keeping the ordering with the fewest crossings
//  4. Coordinates are assigned in an (order, rank) frame
//  5. Every edge is routed between its nodes' facing sides
//
// The result depends only on g and opts: equal inputs give equal layouts.
// Compute fails with a *errors.LayoutError for a nil or inconsistent graph
// and for options that cannot produce a layout.
func Compute(g *graph.Graph, opts Options) (*Layout, error) {
	if g == nil {
		return nil, &errors.LayoutError{Reason: "nil graph"}
	}
	if err := g.Validate(); err != nil {
		return nil, &errors.LayoutError{Reason: err.Error()}
	}
	resolved, err := Resolve(g, opts)
	if err != nil {
		return nil, err
	}

	n, edges := g.NodeCount(), g.Edges()
	reversed := BreakCycles(n, edges)
	arcs := orient(edges, reversed)
	layers := assignLayers(n, arcs)
	p := buildProper(n, len(edges), arcs, layers)
	order, crossings := orderLayers(p, resolved.Iterations)

	f := newFrame(resolved)
	pl := place(p, order, resolved, f)

	l := &Layout{
		Graph:     g,
		Options:   resolved,
		Nodes:     make([]NodeBox, n),
		Layers:    make([][]int, len(order)),
		Crossings: crossings,
	}
	for k, layer := range order {
		for _, item := range layer {
			if p.isVirtual(item) {
				continue
			}
			l.Nodes[item] = NodeBox{
				Rect:  f.box(pl.order[item], pl.rank[k]),
				Layer: k,
				Order: len(l.Layers[k]),
			}
			l.Layers[k] = append(l.Layers[k], item)
		}
	}
	l.Edges = routeEdges(g, p, pl, reversed, resolved, f)
	l.Width, l.Height = extent(l, resolved.NodeSpacing)
	if err := checkFinite(l); err != nil {
		return nil, err
	}
	return l, nil
}

// checkFinite rejects a layout whose geometry overflowed the float range.
func checkFinite(l *Layout) error {
	bad := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
		return false
	}
	if bad(l.Width, l.Height) {
		return &errors.LayoutError{Reason: fmt.Sprintf("page size %gx%g is not finite", l.Width, l.Height)}
	}
	for i, b := range l.Nodes {
		if bad(b.X, b.Y, b.Width, b.Height) {
			return &errors.LayoutError{Reason: fmt.Sprintf("node %d has no finite position", i)}
		}
	}
	for i, r := range l.Edges {
		for _, pt := range r.Points {
			if bad(pt.X, pt.Y) {
				return &errors.LayoutError{Reason: fmt.Sprintf("edge %d has no finite route", i)}
			}
		}
	}
	return nil
}

// extent returns the page size: the bounding box of all boxes and routes
// plus the margin. An empty graph has size zero.
func extent(l *Layout, margin float64) (w, h float64) {
	if len(l.Nodes) == 0 {
		return 0, 0
	}
	for _, b := range l.Nodes {
		w = max(w, b.Right())
		h = max(h, b.Bottom())
	}
	for _, r := range l.Edges {
		for _, pt := range r.Points {
			w = max(w, pt.X)
			h = max(h, pt.Y)
		}
	}
	return w + margin, h + margin
}
