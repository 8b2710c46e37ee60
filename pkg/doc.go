// Package pkg holds the dotdraw libraries.
//
// # Overview
//
// dotdraw turns graph descriptions written in the Graphviz DOT language into
// editable draw.io documents. The libraries are usable on their own:
//
//   - [graph]: the graph model shared by every stage
//   - [dot]: the DOT parser and writer
//   - [layout]: the layered layout engine
//   - [drawio]: the draw.io (mxfile) serializer
//   - [pipeline]: parse → layout → serialize, with caching and rendering
//   - [flow]: Go source → flow-chart graph
//   - [render/nodelink]: Graphviz SVG previews
//   - [cache], [config], [errors], [observability], [buildinfo]: support
//
// # Data Flow
//
//	DOT text
//	   ↓
//	[dot] package (parse)
//	   ↓
//	[graph] package (nodes, edges, hints)
//	   ↓
//	[layout] package (layers, order, boxes, routes)
//	   ↓
//	[drawio] package (mxfile document)
//
// # Quick Start
//
//	doc, err := pipeline.Run(`digraph { a -> b; a -> c }`, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc.Encode(os.Stdout)
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/graph
// [dot]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/dot
// [layout]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/layout
// [drawio]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/drawio
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/pipeline
// [flow]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/flow
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/dotdraw/pkg/buildinfo
package pkg
