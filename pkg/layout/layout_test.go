package layout

import (
	stderrors "errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
)

// build creates a directed graph from "from>to" pairs, adding nodes in
// order of first appearance.
func build(t *testing.T, nodes []string, edges ...[2]string) *graph.Graph {
	t.Helper()
	g := graph.New("test", true)
	for _, id := range nodes {
		if _, err := g.AddNode(graph.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		from, _, _ := g.EnsureNode(e[0])
		to, _, _ := g.EnsureNode(e[1])
		g.AddEdge(graph.Edge{From: from, To: to, Directed: true})
	}
	return g
}

func mustCompute(t *testing.T, g *graph.Graph, opts Options) *Layout {
	t.Helper()
	l, err := Compute(g, opts)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return l
}

func layerOf(l *Layout, id string) int {
	i, _ := l.Graph.Lookup(id)
	return l.Nodes[i].Layer
}

func TestComputeDiamond(t *testing.T) {
	g := build(t, nil, [2]string{"A", "B"}, [2]string{"A", "C"}, [2]string{"B", "D"}, [2]string{"C", "D"})
	l := mustCompute(t, g, Options{})

	wantLayers := [][]int{{0}, {1, 2}, {3}}
	if !reflect.DeepEqual(l.Layers, wantLayers) {
		t.Errorf("Layers = %v, want %v", l.Layers, wantLayers)
	}

	want := []graph.Rect{
		{X: 90, Y: 20, Width: 120, Height: 60},
		{X: 20, Y: 160, Width: 120, Height: 60},
		{X: 160, Y: 160, Width: 120, Height: 60},
		{X: 90, Y: 300, Width: 120, Height: 60},
	}
	for i, r := range want {
		if l.Nodes[i].Rect != r {
			t.Errorf("node %d = %+v, want %+v", i, l.Nodes[i].Rect, r)
		}
	}

	d := l.Nodes[3].Center().X
	if !(d > l.Nodes[1].Center().X && d < l.Nodes[2].Center().X) {
		t.Errorf("D at x=%v is not strictly between B and C", d)
	}
	if l.Width != 300 || l.Height != 380 {
		t.Errorf("size = %vx%v, want 300x380", l.Width, l.Height)
	}
	if l.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", l.Crossings)
	}

	ab := l.Edges[0]
	if ab.Kind != RouteStraight || len(ab.Points) != 2 {
		t.Fatalf("A->B route = %+v", ab)
	}
	if ab.Source() != (graph.Point{X: 150, Y: 80}) || ab.Target() != (graph.Point{X: 80, Y: 160}) {
		t.Errorf("A->B points = %v", ab.Points)
	}
}

func TestComputeCycle(t *testing.T) {
	g := build(t, nil, [2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})
	l := mustCompute(t, g, Options{})

	for id, want := range map[string]int{"A": 0, "B": 1, "C": 2} {
		if got := layerOf(l, id); got != want {
			t.Errorf("layer(%s) = %d, want %d", id, got, want)
		}
	}

	ca := l.Edges[2]
	if !ca.Reversed {
		t.Fatal("C->A should be reversed")
	}
	if ca.Kind != RouteLong {
		t.Errorf("C->A kind = %s, want %s", ca.Kind, RouteLong)
	}
	// Points still run from C to A.
	c, a := l.Nodes[2].Rect, l.Nodes[0].Rect
	if ca.Source().Y != c.Y || ca.Target().Y != a.Bottom() {
		t.Errorf("C->A runs %v -> %v, want from top of C (%v) to bottom of A (%v)",
			ca.Source(), ca.Target(), c.Y, a.Bottom())
	}
	for i, e := range l.Edges[:2] {
		if e.Reversed {
			t.Errorf("edge %d reversed, want forward", i)
		}
	}
}

func TestComputeSelfLoop(t *testing.T) {
	g := build(t, nil, [2]string{"a", "a"})
	l := mustCompute(t, g, Options{})

	r := l.Edges[0]
	if r.Kind != RouteSelfLoop {
		t.Fatalf("Kind = %s, want %s", r.Kind, RouteSelfLoop)
	}
	want := []graph.Point{{X: 140, Y: 35}, {X: 150, Y: 35}, {X: 150, Y: 65}, {X: 140, Y: 65}}
	if !reflect.DeepEqual(r.Points, want) {
		t.Errorf("Points = %v, want %v", r.Points, want)
	}
	wp := r.Waypoints()
	if len(wp) != 2 || wp[0] == wp[1] {
		t.Errorf("Waypoints = %v, want two distinct points", wp)
	}
	box := l.Nodes[0].Rect
	if !box.Contains(r.Source()) || !box.Contains(r.Target()) {
		t.Errorf("loop ports %v %v not on node %+v", r.Source(), r.Target(), box)
	}
	if l.Width != 170 {
		t.Errorf("Width = %v, want 170 (loop inside the page)", l.Width)
	}
}

func TestComputeNestedSelfLoops(t *testing.T) {
	g := build(t, nil, [2]string{"a", "a"}, [2]string{"a", "a"})
	l := mustCompute(t, g, Options{})
	inner, outer := l.Edges[0].Waypoints(), l.Edges[1].Waypoints()
	if inner[0].X >= outer[0].X {
		t.Errorf("second loop should reach further: %v vs %v", inner, outer)
	}
}

func TestComputeLongEdge(t *testing.T) {
	g := build(t, nil, [2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"A", "C"})
	l := mustCompute(t, g, Options{})

	ac := l.Edges[2]
	if ac.Kind != RouteLong {
		t.Fatalf("A->C kind = %s, want %s", ac.Kind, RouteLong)
	}
	if len(ac.Points) != 4 {
		t.Fatalf("A->C has %d points, want 4: %v", len(ac.Points), ac.Points)
	}
	// The detour crosses layer 1 vertically, beside B.
	wp := ac.Waypoints()
	b := l.Nodes[1].Rect
	if wp[0].X != wp[1].X || wp[0].Y != b.Y || wp[1].Y != b.Bottom() {
		t.Errorf("waypoints = %v, want a vertical segment across layer 1 (%v..%v)", wp, b.Y, b.Bottom())
	}
	if b.Contains(wp[0]) && wp[0].X > b.X && wp[0].X < b.Right() {
		t.Errorf("long edge passes through B: %v", wp)
	}
}

func TestComputeParallelEdges(t *testing.T) {
	g := build(t, nil, [2]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"})
	l := mustCompute(t, g, Options{})

	seen := map[graph.Point]bool{}
	for i, r := range l.Edges {
		if seen[r.Points[0]] || seen[r.Points[len(r.Points)-1]] {
			t.Errorf("edge %d shares a port with another parallel edge: %v", i, r.Points)
		}
		seen[r.Points[0]] = true
		seen[r.Points[len(r.Points)-1]] = true
	}
	if !l.Edges[2].Reversed {
		t.Error("b->a should be reversed")
	}
	a := l.Nodes[0].Rect
	if got := l.Edges[2].Target(); got.Y != a.Bottom() {
		t.Errorf("b->a should end on a's lower side, got %v", got)
	}
}

func TestComputeLeftRight(t *testing.T) {
	g := build(t, nil, [2]string{"A", "B"}, [2]string{"A", "C"}, [2]string{"B", "D"}, [2]string{"C", "D"})
	g.Hints.Direction = graph.DirectionLeftRight
	l := mustCompute(t, g, Options{})

	a, b, c, d := l.Nodes[0].Rect, l.Nodes[1].Rect, l.Nodes[2].Rect, l.Nodes[3].Rect
	if !(a.Right() < b.X && b.Right() < d.X) {
		t.Errorf("layers should advance along x: A=%+v B=%+v D=%+v", a, b, d)
	}
	if b.X != c.X {
		t.Errorf("B and C share a layer, x = %v and %v", b.X, c.X)
	}
	if b.Width != 120 || b.Height != 60 {
		t.Errorf("box size = %vx%v, want 120x60", b.Width, b.Height)
	}
	// LayerSpacing is the gap between bands.
	if gap := b.X - a.Right(); gap != 80 {
		t.Errorf("gap between layers = %v, want 80", gap)
	}
	if src := l.Edges[0].Source(); src.X != a.Right() {
		t.Errorf("A->B should leave A's right side, got %v", src)
	}
}

func TestComputeNoOverlap(t *testing.T) {
	g := build(t, nil,
		[2]string{"r", "a"}, [2]string{"r", "b"}, [2]string{"r", "c"}, [2]string{"r", "d"},
		[2]string{"a", "x"}, [2]string{"d", "x"}, [2]string{"r", "x"}, [2]string{"b", "b"},
	)
	for _, opts := range []Options{{}, {Direction: graph.DirectionLeftRight}, {NodeSpacing: 1, LayerSpacing: 1}} {
		l := mustCompute(t, g, opts)
		for _, layer := range l.Layers {
			for i := range layer {
				for j := i + 1; j < len(layer); j++ {
					if l.Nodes[layer[i]].Overlaps(l.Nodes[layer[j]].Rect) {
						t.Errorf("opts %+v: nodes %d and %d overlap", opts, layer[i], layer[j])
					}
				}
			}
		}
	}
}

func TestComputeReducesCrossings(t *testing.T) {
	// Insertion order puts c before d, which crosses a->d and b->c.
	g := build(t, []string{"a", "b", "c", "d"}, [2]string{"a", "d"}, [2]string{"b", "c"})
	l := mustCompute(t, g, Options{})
	if l.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", l.Crossings)
	}
	if want := [][]int{{0, 1}, {3, 2}}; !reflect.DeepEqual(l.Layers, want) {
		t.Errorf("Layers = %v, want %v", l.Layers, want)
	}
}

func TestComputeDeterministic(t *testing.T) {
	g := func() *graph.Graph {
		return build(t, nil,
			[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}, [2]string{"a", "d"},
			[2]string{"d", "e"}, [2]string{"b", "e"}, [2]string{"e", "e"}, [2]string{"a", "e"},
		)
	}
	first := mustCompute(t, g(), Options{})
	for range 5 {
		if again := mustCompute(t, g(), Options{}); !reflect.DeepEqual(first.Nodes, again.Nodes) || !reflect.DeepEqual(first.Edges, again.Edges) {
			t.Fatal("Compute() is not deterministic")
		}
	}
}

func TestComputeEmptyAndIsolated(t *testing.T) {
	l := mustCompute(t, graph.New("empty", true), Options{})
	if len(l.Nodes) != 0 || l.Width != 0 || l.Height != 0 {
		t.Errorf("empty layout = %+v", l)
	}

	l = mustCompute(t, build(t, []string{"x", "y", "z"}), Options{})
	if len(l.Layers) != 1 || len(l.Layers[0]) != 3 {
		t.Errorf("Layers = %v, want one layer of three", l.Layers)
	}
}

func TestComputeErrors(t *testing.T) {
	valid := build(t, []string{"a"})
	corrupt := build(t, nil, [2]string{"a", "b"})
	corrupt.Edge(0).To = 9
	hugeHint := build(t, nil, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	hugeHint.Hints.LayerSpacing = 1e306

	tests := []struct {
		name string
		g    *graph.Graph
		opts Options
	}{
		{"nil graph", nil, Options{}},
		{"dangling edge", corrupt, Options{}},
		{"negative layer spacing", valid, Options{LayerSpacing: -1}},
		{"negative node spacing", valid, Options{NodeSpacing: -5}},
		{"negative width", valid, Options{NodeWidth: -120}},
		{"unknown direction", valid, Options{Direction: "diagonal"}},
		{"negative iterations", valid, Options{Iterations: -1}},
		{"too many iterations", valid, Options{Iterations: MaxIterations + 1}},
		{"huge node width", valid, Options{NodeWidth: 1e308}},
		{"huge layer spacing", valid, Options{LayerSpacing: MaxDimension * 2}},
		{"infinite node height", valid, Options{NodeHeight: math.Inf(1)}},
		{"huge spacing hint", hugeHint, Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.g, tt.opts)
			var le *errors.LayoutError
			if !stderrors.As(err, &le) {
				t.Errorf("Compute() error = %v, want *LayoutError", err)
			}
		})
	}
}

func TestComputeErrorMessages(t *testing.T) {
	g := build(t, []string{"a"})
	tests := []struct {
		opts Options
		want string
	}{
		{Options{NodeWidth: -1}, "node size must not be negative"},
		{Options{Iterations: 1000000}, "iterations must be between 0 and 100"},
		{Options{NodeHeight: 1e308}, "node height 1e+308 exceeds 100000"},
	}
	for _, tt := range tests {
		_, err := Compute(g, tt.opts)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Compute(%+v) error = %v, want it to contain %q", tt.opts, err, tt.want)
		}
	}
}

func TestCheckFinite(t *testing.T) {
	l := mustCompute(t, build(t, nil, [2]string{"a", "b"}), Options{})
	if err := checkFinite(l); err != nil {
		t.Fatalf("checkFinite(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"page size", func(l *Layout) { l.Height = math.Inf(1) }},
		{"node box", func(l *Layout) { l.Nodes[1].Y = math.NaN() }},
		{"route point", func(l *Layout) { l.Edges[0].Points[0].X = math.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustCompute(t, build(t, nil, [2]string{"a", "b"}), Options{})
			tt.mutate(l)
			var le *errors.LayoutError
			if err := checkFinite(l); !stderrors.As(err, &le) {
				t.Errorf("checkFinite() = %v, want *LayoutError", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	hinted := graph.New("h", true)
	hinted.Hints = graph.Hints{Direction: graph.DirectionLeftRight, LayerSpacing: 36, NodeSpacing: 9}

	tests := []struct {
		name string
		g    *graph.Graph
		opts Options
		want Options
	}{
		{
			name: "defaults",
			g:    graph.New("g", true),
			want: Options{Direction: graph.DirectionTopDown, LayerSpacing: 80, NodeSpacing: 20, NodeWidth: 120, NodeHeight: 60, Iterations: 4},
		},
		{
			name: "hints over defaults",
			g:    hinted,
			want: Options{Direction: graph.DirectionLeftRight, LayerSpacing: 36, NodeSpacing: 9, NodeWidth: 120, NodeHeight: 60, Iterations: 4},
		},
		{
			name: "options over hints",
			g:    hinted,
			opts: Options{Direction: graph.DirectionTopDown, LayerSpacing: 50, NodeWidth: 80, Iterations: 1},
			want: Options{Direction: graph.DirectionTopDown, LayerSpacing: 50, NodeSpacing: 9, NodeWidth: 80, NodeHeight: 60, Iterations: 1},
		},
		{
			name: "nil graph uses defaults",
			g:    nil,
			opts: Options{NodeHeight: 40},
			want: Options{Direction: graph.DirectionTopDown, LayerSpacing: 80, NodeSpacing: 20, NodeWidth: 120, NodeHeight: 40, Iterations: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.g, tt.opts)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
