package layout

import "github.com/matzehuels/dotdraw/pkg/graph"

// BreakCycles finds a set of edges whose reversal makes the graph acyclic.
// It returns one flag per edge; a true flag marks a back edge that the
// layering treats as pointing the other way. Self-loops are never flagged
// since they take no part in layering.
//
// The search is a depth-first traversal with white/gray/black colouring.
// Sources (nodes with no incoming non-loop edges) are visited first, in
// insertion order, followed by any node still unvisited, which covers
// components that are entirely cyclic. Children are followed in edge
// insertion order, so the result depends only on the input order.
func BreakCycles(nodeCount int, edges []graph.Edge) []bool {
	const (
		white = iota
		gray
		black
	)

	type out struct{ to, edge int }
	children := make([][]out, nodeCount)
	inDegree := make([]int, nodeCount)
	for i, e := range edges {
		if e.IsSelfLoop() {
			continue
		}
		children[e.From] = append(children[e.From], out{e.To, i})
		inDegree[e.To]++
	}

	reversed := make([]bool, len(edges))
	color := make([]int, nodeCount)

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, c := range children[node] {
			switch color[c.to] {
			case white:
				dfs(c.to)
			case gray:
				reversed[c.edge] = true
			}
		}
		color[node] = black
	}

	for n := range nodeCount {
		if inDegree[n] == 0 && color[n] == white {
			dfs(n)
		}
	}
	for n := range nodeCount {
		if color[n] == white {
			dfs(n)
		}
	}
	return reversed
}

// arc is an edge oriented for layering: from is always placed above to.
type arc struct {
	from, to int
	edge     int
}

// orient returns the layering arcs for all non-loop edges, in edge order.
func orient(edges []graph.Edge, reversed []bool) []arc {
	arcs := make([]arc, 0, len(edges))
	for i, e := range edges {
		if e.IsSelfLoop() {
			continue
		}
		if reversed[i] {
			arcs = append(arcs, arc{from: e.To, to: e.From, edge: i})
		} else {
			arcs = append(arcs, arc{from: e.From, to: e.To, edge: i})
		}
	}
	return arcs
}
