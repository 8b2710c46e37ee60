package layout

import (
	"slices"

	"github.com/matzehuels/dotdraw/pkg/graph"
)

// minLoopReach is how far a self-loop leaves its node when there is no
// node spacing to use.
const minLoopReach = 10.0

// routeEdges computes the polyline of every edge from its source port to
// its target port.
func routeEdges(g *graph.Graph, p *proper, pl placement, reversed []bool, o Options, f frame) []Route {
	edges := g.Edges()
	routes := make([]Route, len(edges))

	// Edges sharing both layered endpoints, including a reversed edge and
	// its forward twin, get their ports spread along the facing sides.
	type pair struct{ upper, lower int }
	groups := make(map[pair][]int)
	loops := make(map[int][]int)
	for i, e := range edges {
		if e.IsSelfLoop() {
			loops[e.From] = append(loops[e.From], i)
			continue
		}
		chain := p.chains[i]
		key := pair{chain[0], chain[len(chain)-1]}
		groups[key] = append(groups[key], i)
	}
	offset := make([]float64, len(edges))
	for _, members := range groups {
		for k, i := range members {
			offset[i] = f.orderExtent * (float64(k+1)/float64(len(members)+1) - 0.5)
		}
	}

	for i, e := range edges {
		if e.IsSelfLoop() {
			members := loops[e.From]
			routes[i] = selfLoop(p, pl, e.From, slices.Index(members, i), len(members), o, f)
			continue
		}

		chain := p.chains[i]
		upper, lower := chain[0], chain[len(chain)-1]
		half := f.rankExtent / 2

		points := make([]graph.Point, 0, 2*len(chain))
		points = append(points, f.point(pl.order[upper]+offset[i], pl.rank[p.layerOf[upper]]+half))
		for _, v := range chain[1 : len(chain)-1] {
			r := pl.rank[p.layerOf[v]]
			points = append(points, f.point(pl.order[v], r-half), f.point(pl.order[v], r+half))
		}
		points = append(points, f.point(pl.order[lower]+offset[i], pl.rank[p.layerOf[lower]]-half))

		kind := RouteStraight
		if len(chain) > 2 {
			kind = RouteLong
		}
		if reversed[i] {
			slices.Reverse(points)
		}
		routes[i] = Route{Points: points, Kind: kind, Reversed: reversed[i]}
	}
	return routes
}

// selfLoop routes the k-th of n loops on a node as a rectangular detour out
// of the node's far side along the order axis, into the gap before its
// right-hand neighbour. Nested loops reach progressively further.
func selfLoop(p *proper, pl placement, node, k, n int, o Options, f frame) Route {
	reach := o.NodeSpacing / 2
	if reach <= 0 {
		reach = minLoopReach
	}
	frac := float64(k+1) / float64(n)
	side := pl.order[node] + f.orderExtent/2
	out := side + reach*frac
	r := pl.rank[p.layerOf[node]]
	spread := f.rankExtent / 4 * frac

	return Route{
		Kind: RouteSelfLoop,
		Points: []graph.Point{
			f.point(side, r-spread),
			f.point(out, r-spread),
			f.point(out, r+spread),
			f.point(side, r+spread),
		},
	}
}
