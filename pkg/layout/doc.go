// Package layout computes layered ("Sugiyama style") layouts for graphs.
//
// [Compute] turns a [graph.Graph] into a [Layout]: a box for every node and
// a polyline for every edge. The phases are separate functions over index
// slices so each can be tested alone:
//
//   - [BreakCycles]: depth-first search that marks back edges; they are
//     reversed for layering only and routed in their original direction
//   - layering: Kahn longest path, sources on layer 0 ([AssignLayers])
//   - ordering: virtual items split long arcs; barycenter sweeps reorder
//     each layer and the ordering with the fewest crossings
//     ([CountLayerCrossings]) wins
//   - coordinates: layers are packed and centred on the widest one
//   - routing: straight segments, paths through virtual positions,
//     rectangular self-loops, spread ports for parallel edges
//
// # Options
//
// [Options] fields left at zero fall back to the graph's hints (rankdir,
// ranksep, nodesep) and then to the defaults: top-down, 80 between layers,
// 20 between nodes, 120x60 boxes, 4 sweep iterations.
//
//	l, err := layout.Compute(g, layout.Options{Direction: graph.DirectionLeftRight})
//
// # Determinism
//
// No map iteration order reaches the result. Ties in the ordering phase
// break by insertion index, so the same graph always produces the same
// layout, down to the last coordinate.
package layout
