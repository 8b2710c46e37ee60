package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/dotdraw/pkg/dot"
)

func TestToDOT(t *testing.T) {
	g, err := dot.Parse(`digraph { rankdir=LR; a [shape=diamond, fillcolor=pink]; a -> b [label="yes"]; b -> c [dir=none] }`)
	if err != nil {
		t.Fatal(err)
	}
	out := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`n0 [label="a", shape=diamond, style=filled, fillcolor="pink"];`,
		`n1 [label="b"];`,
		`n0 -> n1 [label="yes"];`,
		`n1 -> n2 [dir=none];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, out)
		}
	}

	// The preview must stay readable by our own parser.
	back, err := dot.Parse(out)
	if err != nil {
		t.Fatalf("Parse(ToDOT()) error = %v", err)
	}
	if back.NodeCount() != 3 || back.EdgeCount() != 2 {
		t.Errorf("round trip: %d nodes / %d edges", back.NodeCount(), back.EdgeCount())
	}
}

func TestToDOTDetailed(t *testing.T) {
	g, _ := dot.Parse(`graph { x [color=red] }`)
	out := ToDOT(g, Options{Detailed: true})
	if !strings.HasPrefix(out, "graph G {") {
		t.Errorf("undirected preview should start with graph:\n%s", out)
	}
	if !strings.Contains(out, `label="x\ncolor: red"`) {
		t.Errorf("detailed label missing attributes:\n%s", out)
	}
}

func TestRenderSVG(t *testing.T) {
	g, _ := dot.Parse(`digraph { a -> b }`)
	svg, err := RenderSVG(ToDOT(g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("RenderSVG() did not produce a normalized svg:\n%s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg>")); string(out) != "<svg>" {
		t.Errorf("svg without viewBox should be unchanged, got %s", out)
	}
}
