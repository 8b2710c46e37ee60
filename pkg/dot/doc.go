// Package dot parses the subset of the Graphviz DOT language that dotdraw
// understands, and writes graphs back out as DOT.
//
// # Parsing
//
// [Parse] reads exactly one graph:
//
//	g, err := dot.Parse(`digraph deps { app -> {lib util}; lib [shape=ellipse] }`)
//
// Statements, attribute lists, subgraphs (as node groups and default
// scopes), edge chains, ports (accepted and ignored), comments and quoted
// string concatenation are supported. Attributes other than the few the
// layout and the diagram use are accepted and dropped:
//
//	node:  label, shape, fillcolor, color, fontcolor
//	edge:  label, dir, color, fontcolor
//	graph: rankdir, ranksep, nodesep, label
//
// Labels expand the usual escapes: \N (node id), \G (graph name), \T and
// \H (edge tail and head) and \n, \l, \r as line breaks.
//
// # Errors
//
// Malformed text produces a *errors.SyntaxError with the line and column of
// the first offending token. Well-formed text that breaks a rule, such as an
// undeclared node under [WithExplicitNodes], produces a *errors.SemanticError.
//
// # Writing
//
// [Write] and [String] produce DOT text that parses back into an equivalent
// graph. The flow chart builder uses them to hand its output to the regular
// conversion pipeline.
package dot
