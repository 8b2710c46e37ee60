// Package pipeline converts a DOT graph description into a draw.io diagram.
//
// The conversion has three stages, each a pure function of its input:
//
//  1. Parse: DOT text → [graph.Graph] ([dot.Parse])
//  2. Layout: graph → positioned boxes and routed edges ([layout.Compute])
//  3. Serialize: layout → draw.io document ([drawio.Serialize])
//
// [Run] is the bare contract: text in, document out, with any failure
// wrapped in an [errors.StageError] naming the stage. [Convert] runs the
// same stages but keeps every intermediate product so that [Render] can
// emit any output format (draw.io XML, layout JSON, graph JSON, DOT, SVG
// preview).
//
// # Runner
//
// [Runner] is what the CLI and the HTTP server use. It adds a document cache
// keyed by the source text and options, logging, timing statistics and
// observability hooks, and it can convert many inputs concurrently:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Request{
//	    Name:   "deps.dot",
//	    Source: text,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("deps.drawio", res.Output, 0644)
//
// Runs share nothing but the runner's cache, hooks and logger, all of which
// are safe for concurrent use.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotdraw/pkg/cache"
	"github.com/matzehuels/dotdraw/pkg/dot"
	"github.com/matzehuels/dotdraw/pkg/drawio"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/layout"
)

// Output formats.
const (
	FormatDrawio = "drawio"
	FormatJSON   = "json"
	FormatGraph  = "graph"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = FormatDrawio

// Formats lists the supported output formats.
var Formats = []string{FormatDrawio, FormatJSON, FormatGraph, FormatDOT, FormatSVG}

var extensions = map[string]string{
	FormatDrawio: ".drawio",
	FormatJSON:   ".json",
	FormatGraph:  ".graph.json",
	FormatDOT:    ".dot",
	FormatSVG:    ".svg",
}

// Extension returns the file extension for a format, including the dot.
func Extension(format string) string {
	if ext, ok := extensions[format]; ok {
		return ext
	}
	return "." + format
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one conversion.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	ExplicitNodes  bool `json:"explicit_nodes,omitempty"`  // Edges may only reference declared nodes
	NoRedefinition bool `json:"no_redefinition,omitempty"` // A node attribute may not change once set

	// Layout options; zero fields fall back to graph hints, then defaults.
	Layout layout.Options `json:"layout"`

	// Serialize options
	Timestamp time.Time `json:"timestamp,omitempty"` // Written as the document's modified time; zero omits it
	Agent     string    `json:"-"`

	// Output format for Render
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"` // SVG previews list each node's attributes

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	// Graph hints are not known yet; this only rejects values no graph
	// could make valid.
	if _, err := layout.Resolve(nil, o.Layout); err != nil {
		return errors.AtStage(errors.StageLayout, err)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ParseOptions returns the parser options.
func (o *Options) ParseOptions() []dot.Option {
	var opts []dot.Option
	if o.ExplicitNodes {
		opts = append(opts, dot.WithExplicitNodes())
	}
	if o.NoRedefinition {
		opts = append(opts, dot.WithNoRedefinition())
	}
	return opts
}

// SerializeOptions returns the serializer options.
func (o *Options) SerializeOptions() drawio.Options {
	return drawio.Options{Modified: o.Timestamp, Agent: o.Agent}
}

// DocumentKeyOpts returns cache key options for the conversion.
func (o *Options) DocumentKeyOpts() cache.DocumentKeyOpts {
	k := cache.DocumentKeyOpts{
		ExplicitNodes:  o.ExplicitNodes,
		NoRedefinition: o.NoRedefinition,
		Direction:      string(o.Layout.Direction),
		LayerSpacing:   o.Layout.LayerSpacing,
		NodeSpacing:    o.Layout.NodeSpacing,
		NodeWidth:      o.Layout.NodeWidth,
		NodeHeight:     o.Layout.NodeHeight,
		Iterations:     o.Layout.Iterations,
		Detailed:       o.Detailed,
	}
	if !o.Timestamp.IsZero() {
		k.Timestamp = o.Timestamp.Unix()
	}
	return k
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of one conversion.
type Result struct {
	// Name identifies the input (a file name, or empty).
	Name string

	// Graph, Layout and Document are the products of each stage. They are
	// nil when the output came from the cache.
	Graph    *graph.Graph
	Layout   *layout.Layout
	Document *drawio.Document

	// Format and Output hold the rendered bytes, when rendered. Detailed
	// is carried over from Options for SVG previews.
	Format   string
	Detailed bool
	Output   []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether Output came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	Crossings     int
	OutputBytes   int
	ParseTime     time.Duration
	LayoutTime    time.Duration
	SerializeTime time.Duration
	RenderTime    time.Duration
}

// Total returns the time spent in all stages.
func (s Stats) Total() time.Duration {
	return s.ParseTime + s.LayoutTime + s.SerializeTime + s.RenderTime
}
