package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
)

// Default values for layout options.
const (
	DefaultLayerSpacing = 80.0
	DefaultNodeSpacing  = 20.0
	DefaultNodeWidth    = 120.0
	DefaultNodeHeight   = 60.0
	DefaultIterations   = 4
)

// Upper bounds for layout options. Larger values are rejected rather than
// allowed to overflow coordinates or run unbounded sweeps.
const (
	MaxDimension  = 100000.0 // Spacings and node sizes, in diagram units
	MaxIterations = 100
)

// Options controls the layered layout. A zero field means "unset": the
// graph's own hint is used if it has one, otherwise the default.
type Options struct {
	Direction    graph.Direction `json:"direction,omitempty"`
	LayerSpacing float64         `json:"layer_spacing,omitempty"` // Gap between adjacent layer bands
	NodeSpacing  float64         `json:"node_spacing,omitempty"`  // Gap between neighbours in a layer; also the outer margin
	NodeWidth    float64         `json:"node_width,omitempty"`
	NodeHeight   float64         `json:"node_height,omitempty"`
	Iterations   int             `json:"iterations,omitempty"` // Down+up barycenter sweeps
}

// Resolve returns the effective options for laying out g: explicit values
// first, then the graph's hints, then the defaults. It fails with a
// *errors.LayoutError when a value can never produce a layout.
func Resolve(g *graph.Graph, opts Options) (Options, error) {
	if err := opts.validate(); err != nil {
		return Options{}, err
	}
	var hints graph.Hints
	if g != nil {
		hints = g.Hints
	}

	out := opts
	out.Direction = first(opts.Direction, hints.Direction, graph.DirectionTopDown)
	out.LayerSpacing = first(opts.LayerSpacing, hints.LayerSpacing, DefaultLayerSpacing)
	out.NodeSpacing = first(opts.NodeSpacing, hints.NodeSpacing, DefaultNodeSpacing)
	out.NodeWidth = first(opts.NodeWidth, 0, DefaultNodeWidth)
	out.NodeHeight = first(opts.NodeHeight, 0, DefaultNodeHeight)
	out.Iterations = first(opts.Iterations, 0, DefaultIterations)

	// Hints come from the text; they get the same checks as options.
	if err := out.validate(); err != nil {
		return Options{}, err
	}
	return out, nil
}

func first[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func (o Options) validate() error {
	switch o.Direction {
	case graph.DirectionUnset, graph.DirectionTopDown, graph.DirectionLeftRight:
	default:
		return &errors.LayoutError{Reason: fmt.Sprintf("unknown direction %q", o.Direction)}
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"layer spacing", o.LayerSpacing},
		{"node spacing", o.NodeSpacing},
		{"node width", o.NodeWidth},
		{"node height", o.NodeHeight},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return &errors.LayoutError{Reason: fmt.Sprintf("%s must be a finite number", f.name)}
		}
		if f.val > MaxDimension {
			return &errors.LayoutError{Reason: fmt.Sprintf("%s %g exceeds %g", f.name, f.val, MaxDimension)}
		}
	}
	if o.LayerSpacing < 0 || o.NodeSpacing < 0 {
		return &errors.LayoutError{Reason: fmt.Sprintf(
			"spacing must not be negative (layer %g, node %g)", o.LayerSpacing, o.NodeSpacing)}
	}
	if o.NodeWidth < 0 || o.NodeHeight < 0 {
		return &errors.LayoutError{Reason: fmt.Sprintf(
			"node size must not be negative (%gx%g)", o.NodeWidth, o.NodeHeight)}
	}
	if o.Iterations < 0 || o.Iterations > MaxIterations {
		return &errors.LayoutError{Reason: fmt.Sprintf("iterations must be between 0 and %d (got %d)", MaxIterations, o.Iterations)}
	}
	return nil
}
