// Package render holds the optional preview renderers.
//
// The draw.io document produced by [github.com/matzehuels/dotdraw/pkg/drawio]
// is the primary output and carries its own layout. The renderers here exist
// for quick inspection only: [nodelink] hands a parsed graph to Graphviz and
// returns an SVG, which is useful for comparing dotdraw's layered layout with
// Graphviz's own.
//
// [nodelink]: github.com/matzehuels/dotdraw/pkg/render/nodelink
package render
