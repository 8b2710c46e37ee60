// Package graph provides the in-memory graph model shared by every stage of
// dotdraw: the parser builds a [Graph], the layout engine reads it, and the
// diagram serializer reads it again through the laid-out result.
//
// # Arena and Indices
//
// Nodes and edges are stored in insertion order. An [Edge] refers to its
// endpoints by node index rather than by pointer or id, so the graph has no
// reference cycles and every stage can keep its own per-node data in plain
// slices indexed the same way:
//
//	g := graph.New("deps", true)
//	a, _ := g.AddNode(graph.Node{ID: "app"})
//	b, _ := g.AddNode(graph.Node{ID: "lib"})
//	g.AddEdge(graph.Edge{From: a, To: b, Directed: true})
//
// Insertion order is the only order the model exposes. Lookups by id go
// through an index map, but nothing iterates that map, which keeps every
// downstream stage deterministic.
//
// # Hints
//
// A description may carry layout preferences (direction, spacing). They are
// recorded in [Hints] and interpreted by the layout engine; explicit layout
// options always win over them.
//
// # Serialization
//
// [WriteGraph] and [ReadGraph] exchange graphs as JSON, with edges written
// as id pairs:
//
//	{
//	  "name": "deps",
//	  "directed": true,
//	  "nodes": [{"id": "app"}, {"id": "lib"}],
//	  "edges": [{"from": "app", "to": "lib"}]
//	}
//
// # Geometry
//
// [Point] and [Rect] use a top-left origin with y growing downward, the
// coordinate system of draw.io.
package graph
