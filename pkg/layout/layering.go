package layout

import "github.com/matzehuels/dotdraw/pkg/graph"

// AssignLayers returns the layer of every node of g, after reversing the
// back edges found by [BreakCycles]. It is the first two phases of
// [Compute], exposed for callers that only need ranks.
func AssignLayers(g *graph.Graph) []int {
	edges := g.Edges()
	return assignLayers(g.NodeCount(), orient(edges, BreakCycles(g.NodeCount(), edges)))
}

// assignLayers places every node on a layer using the longest path from a
// source. The arcs must be acyclic.
//
// The traversal is Kahn's algorithm with the queue seeded by in-degree zero
// nodes in insertion order. Each node ends up one layer below its deepest
// parent:
//   - Source nodes are on layer 0
//   - Every arc points strictly downward
//   - Isolated nodes stay on layer 0
//
// Time complexity is O(V + E).
func assignLayers(nodeCount int, arcs []arc) []int {
	children := make([][]int, nodeCount)
	inDegree := make([]int, nodeCount)
	for _, a := range arcs {
		children[a.from] = append(children[a.from], a.to)
		inDegree[a.to]++
	}

	layers := make([]int, nodeCount)
	queue := make([]int, 0, nodeCount)
	for n := range nodeCount {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range children[curr] {
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}
