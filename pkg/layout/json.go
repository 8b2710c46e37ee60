package layout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

type wireLayout struct {
	Name      string     `json:"name,omitempty"`
	Directed  bool       `json:"directed"`
	Options   Options    `json:"options"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Crossings int        `json:"crossings"`
	Nodes     []wireNode `json:"nodes"`
	Edges     []wireEdge `json:"edges"`
}

type wireNode struct {
	ID    string      `json:"id"`
	Label string      `json:"label,omitempty"`
	Shape graph.Shape `json:"shape"`
	NodeBox
}

type wireEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
	Route
}

// WriteJSON writes the laid-out graph as indented JSON: the effective
// options, the page size, one positioned box per node and one route per
// edge, all in graph order.
func WriteJSON(w io.Writer, l *Layout) error {
	g := l.Graph
	out := wireLayout{
		Name:      g.Name,
		Directed:  g.Directed,
		Options:   l.Options,
		Width:     l.Width,
		Height:    l.Height,
		Crossings: l.Crossings,
		Nodes:     make([]wireNode, len(l.Nodes)),
		Edges:     make([]wireEdge, len(l.Edges)),
	}
	nodes := g.Nodes()
	for i, n := range nodes {
		out.Nodes[i] = wireNode{ID: n.ID, Label: n.Label, Shape: n.EffectiveShape(), NodeBox: l.Nodes[i]}
	}
	for i, e := range g.Edges() {
		out.Edges[i] = wireEdge{From: nodes[e.From].ID, To: nodes[e.To].ID, Label: e.Label, Route: l.Edges[i]}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
