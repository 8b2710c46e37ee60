package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From index
	// is out of range.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To index
	// is out of range.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Shape is the rendering hint for a node's outline.
type Shape string

// Supported shapes. Unknown DOT shapes map to [ShapeBox].
const (
	ShapeBox     Shape = "box"
	ShapeEllipse Shape = "ellipse"
	ShapeDiamond Shape = "diamond"
	ShapePlain   Shape = "plain"
)

// Direction is the orientation of the layer axis.
type Direction string

const (
	// DirectionUnset leaves the choice to the layout defaults.
	DirectionUnset Direction = ""
	// DirectionTopDown stacks layers from top to bottom.
	DirectionTopDown Direction = "TB"
	// DirectionLeftRight stacks layers from left to right.
	DirectionLeftRight Direction = "LR"
)

// Attrs holds pass-through style attributes such as fillcolor or fontcolor.
type Attrs map[string]string

// Node is a vertex of the graph.
type Node struct {
	ID    string // Unique, non-empty identifier
	Label string // Display text; empty means "use ID"
	Shape Shape  // Outline hint; empty means ShapeBox
	HTML  bool   // Label is HTML markup
	Attrs Attrs
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// EffectiveShape returns the shape hint, defaulting to ShapeBox.
func (n Node) EffectiveShape() Shape {
	if n.Shape == "" {
		return ShapeBox
	}
	return n.Shape
}

// Edge connects two nodes by index. Multiple edges between the same pair
// and self-loops are allowed.
type Edge struct {
	From      int
	To        int
	Label     string
	LabelHTML bool
	Directed  bool // Draw an arrowhead at To
	Attrs     Attrs
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.From == e.To }

// Hints are layout preferences carried by the description itself.
// Zero values mean "not specified".
type Hints struct {
	Direction    Direction
	LayerSpacing float64
	NodeSpacing  float64
}

// Graph is an insertion-ordered arena of nodes and edges.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent mutation; concurrent reads are fine.
type Graph struct {
	Name     string
	Label    string // Graph-level caption, if any
	Directed bool
	Strict   bool
	Hints    Hints

	nodes []Node
	edges []Edge
	index map[string]int
}

// New creates an empty graph.
func New(name string, directed bool) *Graph {
	return &Graph{
		Name:     name,
		Directed: directed,
		index:    make(map[string]int),
	}
}

// AddNode appends a node and returns its index.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a
// node with the same ID already exists.
func (g *Graph) AddNode(n Node) (int, error) {
	if n.ID == "" {
		return -1, ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
	}
	g.nodes = append(g.nodes, n)
	i := len(g.nodes) - 1
	g.index[n.ID] = i
	return i, nil
}

// EnsureNode returns the index of the node with the given ID, creating a
// bare node when it does not exist yet. created reports whether it did.
func (g *Graph) EnsureNode(id string) (i int, created bool, err error) {
	if i, ok := g.index[id]; ok {
		return i, false, nil
	}
	i, err = g.AddNode(Node{ID: id})
	return i, err == nil, err
}

// AddEdge appends an edge between two existing nodes and returns its index.
func (g *Graph) AddEdge(e Edge) (int, error) {
	if e.From < 0 || e.From >= len(g.nodes) {
		return -1, ErrUnknownSourceNode
	}
	if e.To < 0 || e.To >= len(g.nodes) {
		return -1, ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	return len(g.edges) - 1, nil
}

// FindEdge returns the index of the first edge joining from and to, or -1.
// For undirected graphs either orientation matches.
func (g *Graph) FindEdge(from, to int) int {
	for i, e := range g.edges {
		if e.From == from && e.To == to {
			return i
		}
		if !g.Directed && e.From == to && e.To == from {
			return i
		}
	}
	return -1
}

// Lookup returns the index of the node with the given ID.
func (g *Graph) Lookup(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node returns a pointer to the node at index i for in-place updates.
// It panics if i is out of range.
func (g *Graph) Node(i int) *Node { return &g.nodes[i] }

// Edge returns a pointer to the edge at index i for in-place updates.
// It panics if i is out of range.
func (g *Graph) Edge(i int) *Edge { return &g.edges[i] }

// Nodes returns all nodes in insertion order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns all edges in insertion order.
// The returned slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Validate checks the structural invariants: unique non-empty IDs, an
// index consistent with the node slice, and edge endpoints in range.
func (g *Graph) Validate() error {
	if len(g.index) != len(g.nodes) {
		return fmt.Errorf("%w: index has %d entries for %d nodes", ErrDuplicateNodeID, len(g.index), len(g.nodes))
	}
	for i, n := range g.nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrInvalidNodeID)
		}
		if j, ok := g.index[n.ID]; !ok || j != i {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
	}
	for i, e := range g.edges {
		if e.From < 0 || e.From >= len(g.nodes) || e.To < 0 || e.To >= len(g.nodes) {
			return fmt.Errorf("edge %d (%d->%d): %w", i, e.From, e.To, ErrInvalidEdgeEndpoint)
		}
	}
	return nil
}
