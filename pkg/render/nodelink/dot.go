package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends each node's attributes to its label.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT for previewing.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(g *graph.Graph, opts Options) string {
	op := "--"
	kind := "graph"
	if g.Directed {
		op, kind = "->", "digraph"
	}
	rankdir := "TB"
	if g.Hints.Direction == graph.DirectionLeftRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, "label="+fmtLabel(e.Label, e.LabelHTML))
		}
		switch {
		case e.Directed && !g.Directed:
			attrs = append(attrs, "dir=forward")
		case !e.Directed && g.Directed:
			attrs = append(attrs, "dir=none")
		case e.Attrs["dir"] != "":
			attrs = append(attrs, "dir="+e.Attrs["dir"])
		}
		if c := e.Attrs["color"]; c != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", c))
		}
		fmt.Fprintf(&buf, "  n%d %s n%d", e.From, op, e.To)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graph.Node, detailed bool) []string {
	label := n.DisplayLabel()
	if detailed && len(n.Attrs) > 0 && !n.HTML {
		parts := []string{label}
		for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
			parts = append(parts, fmt.Sprintf("%s: %s", k, n.Attrs[k]))
		}
		label = strings.Join(parts, "\n")
	}

	attrs := []string{"label=" + fmtLabel(label, n.HTML)}
	switch n.EffectiveShape() {
	case graph.ShapeEllipse:
		attrs = append(attrs, "shape=ellipse")
	case graph.ShapeDiamond:
		attrs = append(attrs, "shape=diamond", "style=filled")
	case graph.ShapePlain:
		attrs = append(attrs, "shape=plaintext", "style=\"\"")
	}
	if c := n.Attrs["fillcolor"]; c != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if c := n.Attrs["color"]; c != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", c))
	}
	return attrs
}

func fmtLabel(s string, html bool) string {
	if html {
		return "<" + s + ">"
	}
	return strconv.Quote(s)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> tag with one whose viewBox
// starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
