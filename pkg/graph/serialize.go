package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

type wireGraph struct {
	Name     string     `json:"name,omitempty"`
	Label    string     `json:"label,omitempty"`
	Directed bool       `json:"directed"`
	Strict   bool       `json:"strict,omitempty"`
	Hints    *wireHints `json:"hints,omitempty"`
	Nodes    []wireNode `json:"nodes"`
	Edges    []wireEdge `json:"edges"`
}

type wireHints struct {
	Direction    Direction `json:"direction,omitempty"`
	LayerSpacing float64   `json:"layer_spacing,omitempty"`
	NodeSpacing  float64   `json:"node_spacing,omitempty"`
}

type wireNode struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Shape Shape  `json:"shape,omitempty"`
	HTML  bool   `json:"html,omitempty"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

type wireEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Label      string `json:"label,omitempty"`
	LabelHTML  bool   `json:"label_html,omitempty"`
	Undirected bool   `json:"undirected,omitempty"`
	Attrs      Attrs  `json:"attrs,omitempty"`
}

// MarshalGraph converts a graph to JSON bytes.
// Nodes and edges keep their insertion order.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toWire(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r.
// Returns validation errors for duplicate IDs or dangling edges.
func ReadGraph(r io.Reader) (*Graph, error) {
	var data wireGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromWire(data)
}

// ReadGraphFile reads a JSON graph from a file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func toWire(g *Graph) wireGraph {
	out := wireGraph{
		Name:     g.Name,
		Label:    g.Label,
		Directed: g.Directed,
		Strict:   g.Strict,
		Nodes:    make([]wireNode, len(g.nodes)),
		Edges:    make([]wireEdge, len(g.edges)),
	}
	if g.Hints != (Hints{}) {
		out.Hints = &wireHints{
			Direction:    g.Hints.Direction,
			LayerSpacing: g.Hints.LayerSpacing,
			NodeSpacing:  g.Hints.NodeSpacing,
		}
	}
	for i, n := range g.nodes {
		out.Nodes[i] = wireNode{ID: n.ID, Label: n.Label, Shape: n.Shape, HTML: n.HTML, Attrs: n.Attrs}
	}
	for i, e := range g.edges {
		out.Edges[i] = wireEdge{
			From:       g.nodes[e.From].ID,
			To:         g.nodes[e.To].ID,
			Label:      e.Label,
			LabelHTML:  e.LabelHTML,
			Undirected: !e.Directed,
			Attrs:      e.Attrs,
		}
	}
	return out
}

func fromWire(data wireGraph) (*Graph, error) {
	g := New(data.Name, data.Directed)
	g.Label = data.Label
	g.Strict = data.Strict
	if data.Hints != nil {
		g.Hints = Hints{
			Direction:    data.Hints.Direction,
			LayerSpacing: data.Hints.LayerSpacing,
			NodeSpacing:  data.Hints.NodeSpacing,
		}
	}
	for _, n := range data.Nodes {
		if _, err := g.AddNode(Node{ID: n.ID, Label: n.Label, Shape: n.Shape, HTML: n.HTML, Attrs: n.Attrs}); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		from, ok := g.Lookup(e.From)
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownSourceNode)
		}
		to, ok := g.Lookup(e.To)
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, ErrUnknownTargetNode)
		}
		g.AddEdge(Edge{From: from, To: to, Label: e.Label, LabelHTML: e.LabelHTML, Directed: !e.Undirected, Attrs: e.Attrs})
	}
	return g, nil
}
