package layout

import "slices"

// CountLayerCrossings counts segment crossings between two adjacent layers
// using a Fenwick tree (binary indexed tree), in O(E log V) where E is the
// number of segments between the layers and V the size of the lower layer.
//
// upper and lower hold item indices in left-to-right order; down[i] lists
// the lower neighbours of item i, one entry per segment, so parallel
// segments are counted separately. Two segments (u1,v1) and (u2,v2) cross
// if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which is the number of inversions in the sequence of lower positions when
// segments are sorted by upper position. Segments sharing an endpoint never
// cross.
func CountLayerCrossings(upper, lower []int, down [][]int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[int]int, len(lower))
	for i, item := range lower {
		lowerPos[item] = i
	}

	type segment struct{ upper, lower int }
	segs := make([]segment, 0, len(upper)*2)
	for i, item := range upper {
		for _, child := range down[item] {
			if pos, ok := lowerPos[child]; ok {
				segs = append(segs, segment{i, pos})
			}
		}
	}
	if len(segs) < 2 {
		return 0
	}

	// Sort segments by upper position, then by lower position
	slices.SortFunc(segs, func(a, b segment) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, s := range segs {
		// Query: segments seen so far with lower position <= s.lower
		lessOrEqual := 0
		for q := s.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Only those strictly to the right, from a strictly earlier upper
		// item, cross. Earlier segments from the same upper item all have a
		// lower position <= s.lower because of the sort.
		crossings += total - lessOrEqual

		total++
		for idx := s.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// countCrossings sums CountLayerCrossings over every pair of adjacent layers.
func countCrossings(order [][]int, down [][]int) int {
	crossings := 0
	for k := 0; k+1 < len(order); k++ {
		crossings += CountLayerCrossings(order[k], order[k+1], down)
	}
	return crossings
}
