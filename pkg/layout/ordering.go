package layout

import (
	"cmp"
	"slices"
)

// proper is the layered graph in which every arc joins adjacent layers.
// Items [0, real) are the graph's nodes; the rest are virtual items that
// stand in for a long arc on each layer it passes through.
type proper struct {
	real    int
	layerOf []int
	up      [][]int // upper neighbours, one entry per segment
	down    [][]int // lower neighbours, one entry per segment
	chains  [][]int // per edge: items from upper to lower end; nil for self-loops
	order   [][]int // per layer: items left to right
}

func buildProper(nodeCount, edgeCount int, arcs []arc, layers []int) *proper {
	p := &proper{
		real:    nodeCount,
		layerOf: slices.Clone(layers),
		up:      make([][]int, nodeCount),
		down:    make([][]int, nodeCount),
		chains:  make([][]int, edgeCount),
	}

	for _, a := range arcs {
		chain := []int{a.from}
		for l := layers[a.from] + 1; l < layers[a.to]; l++ {
			v := len(p.layerOf)
			p.layerOf = append(p.layerOf, l)
			p.up = append(p.up, nil)
			p.down = append(p.down, nil)
			chain = append(chain, v)
		}
		chain = append(chain, a.to)
		for i := 0; i+1 < len(chain); i++ {
			p.down[chain[i]] = append(p.down[chain[i]], chain[i+1])
			p.up[chain[i+1]] = append(p.up[chain[i+1]], chain[i])
		}
		p.chains[a.edge] = chain
	}

	depth := 0
	for _, l := range p.layerOf {
		depth = max(depth, l+1)
	}
	p.order = make([][]int, depth)
	// Item index order puts real nodes first, by insertion, then virtual
	// items by the edge that created them.
	for item, l := range p.layerOf {
		p.order[l] = append(p.order[l], item)
	}
	return p
}

func (p *proper) isVirtual(item int) bool { return item >= p.real }

// orderLayers reduces crossings with alternating barycenter sweeps and
// returns the best ordering seen together with its crossing count.
//
// Each iteration is a down sweep, where every layer is sorted by the mean
// position of its upper neighbours, followed by an up sweep using lower
// neighbours. Items without neighbours on the reference side use their
// current position. Ties break by item index. The initial ordering counts
// as a candidate, and a later one replaces the best only when strictly
// better, so the result is a pure function of the input order.
func orderLayers(p *proper, iterations int) ([][]int, int) {
	order := make([][]int, len(p.order))
	for k, layer := range p.order {
		order[k] = slices.Clone(layer)
	}
	pos := make([]int, len(p.layerOf))
	for _, layer := range order {
		syncPositions(layer, pos)
	}

	best := cloneOrder(order)
	bestCrossings := countCrossings(order, p.down)

	for it := 0; it < iterations && bestCrossings > 0; it++ {
		for k := 1; k < len(order); k++ {
			sortByBarycenter(order[k], p.up, pos)
		}
		for k := len(order) - 2; k >= 0; k-- {
			sortByBarycenter(order[k], p.down, pos)
		}
		if c := countCrossings(order, p.down); c < bestCrossings {
			best = cloneOrder(order)
			bestCrossings = c
		}
	}
	return best, bestCrossings
}

func sortByBarycenter(layer []int, nbrs [][]int, pos []int) {
	type keyed struct {
		item int
		bary float64
	}
	keys := make([]keyed, len(layer))
	for i, item := range layer {
		keys[i] = keyed{item: item, bary: float64(pos[item])}
		if ns := nbrs[item]; len(ns) > 0 {
			sum := 0
			for _, n := range ns {
				sum += pos[n]
			}
			keys[i].bary = float64(sum) / float64(len(ns))
		}
	}
	slices.SortFunc(keys, func(a, b keyed) int {
		if c := cmp.Compare(a.bary, b.bary); c != 0 {
			return c
		}
		return a.item - b.item
	})
	for i, k := range keys {
		layer[i] = k.item
	}
	syncPositions(layer, pos)
}

func syncPositions(layer []int, pos []int) {
	for i, item := range layer {
		pos[item] = i
	}
}

func cloneOrder(order [][]int) [][]int {
	out := make([][]int, len(order))
	for k, layer := range order {
		out[k] = slices.Clone(layer)
	}
	return out
}
