package dot

import (
	"bufio"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

var plainID = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*|-?(\.[0-9]+|[0-9]+(\.[0-9]*)?))$`)

// Write renders g as DOT text. Parsing the output yields an equivalent
// graph: same nodes, edges, labels, shapes, attributes and hints.
func Write(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)

	if g.Strict {
		bw.WriteString("strict ")
	}
	if g.Directed {
		bw.WriteString("digraph")
	} else {
		bw.WriteString("graph")
	}
	if g.Name != "" {
		bw.WriteString(" " + quoteID(g.Name))
	}
	bw.WriteString(" {\n")

	switch g.Hints.Direction {
	case graph.DirectionLeftRight:
		bw.WriteString("\trankdir=LR;\n")
	case graph.DirectionTopDown:
		bw.WriteString("\trankdir=TB;\n")
	}
	if g.Hints.LayerSpacing > 0 {
		bw.WriteString("\transep=" + formatInches(g.Hints.LayerSpacing) + ";\n")
	}
	if g.Hints.NodeSpacing > 0 {
		bw.WriteString("\tnodesep=" + formatInches(g.Hints.NodeSpacing) + ";\n")
	}
	if g.Label != "" {
		bw.WriteString("\tlabel=" + quoteLabel(g.Label, false) + ";\n")
	}

	for _, n := range g.Nodes() {
		bw.WriteString("\t" + quoteID(n.ID))
		var attrs []string
		if n.Label != "" {
			attrs = append(attrs, "label="+quoteLabel(n.Label, n.HTML))
		}
		if n.Shape != "" {
			attrs = append(attrs, "shape="+string(n.Shape))
		}
		attrs = append(attrs, sortedAttrs(n.Attrs)...)
		writeAttrs(bw, attrs)
		bw.WriteString(";\n")
	}

	op := " -- "
	if g.Directed {
		op = " -> "
	}
	nodes := g.Nodes()
	for _, e := range g.Edges() {
		bw.WriteString("\t" + quoteID(nodes[e.From].ID) + op + quoteID(nodes[e.To].ID))
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, "label="+quoteLabel(e.Label, e.LabelHTML))
		}
		if _, ok := e.Attrs["dir"]; !ok && e.Directed != g.Directed {
			if e.Directed {
				attrs = append(attrs, "dir=forward")
			} else {
				attrs = append(attrs, "dir=none")
			}
		}
		attrs = append(attrs, sortedAttrs(e.Attrs)...)
		writeAttrs(bw, attrs)
		bw.WriteString(";\n")
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

// String renders g as DOT text.
func String(g *graph.Graph) string {
	var sb strings.Builder
	_ = Write(&sb, g)
	return sb.String()
}

func writeAttrs(bw *bufio.Writer, attrs []string) {
	if len(attrs) == 0 {
		return
	}
	bw.WriteString(" [" + strings.Join(attrs, ", ") + "]")
}

func sortedAttrs(a graph.Attrs) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = quoteID(k) + "=" + quoteID(a[k])
	}
	return out
}

func quoteID(s string) string {
	if plainID.MatchString(s) && !isKeyword(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// quoteLabel quotes a label so that escape expansion on re-parse yields
// the same text.
func quoteLabel(s string, html bool) string {
	if html {
		return "<" + s + ">"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func isKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "strict", "graph", "digraph", "node", "edge", "subgraph":
		return true
	}
	return false
}

func formatInches(units float64) string {
	return strconv.FormatFloat(units/PointsPerInch, 'g', -1, 64)
}
