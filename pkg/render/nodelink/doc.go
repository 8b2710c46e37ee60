// Package nodelink renders a parsed graph as a Graphviz node-link diagram.
//
// # Usage
//
// Convert a graph to preview DOT, then render to SVG:
//
//	src := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(src)
//
// The generated DOT keeps the graph's direction, labels and shapes, and adds
// a uniform rounded-box style so previews look alike regardless of how the
// input was written. With [Options].Detailed, node labels also list the
// node's remaining attributes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
