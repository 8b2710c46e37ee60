package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotdraw/pkg/buildinfo"
	"github.com/matzehuels/dotdraw/pkg/config"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/layout"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

// optionFlags holds the conversion flags shared by convert, flow and watch.
// Zero values mean "not set": the config file, then graph hints, then the
// layout defaults decide.
type optionFlags struct {
	format        string
	direction     string
	layerSpacing  float64
	nodeSpacing   float64
	nodeWidth     float64
	nodeHeight    float64
	iterations    int
	explicitNodes bool
	noRedefine    bool
	timestamp     bool
	detailed      bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", "", "output format: drawio (default), json, graph, dot, svg")
	fl.StringVar(&f.direction, "direction", "", "layer direction: TB (default) or LR")
	fl.Float64Var(&f.layerSpacing, "layer-spacing", 0, "gap between layers (default 80)")
	fl.Float64Var(&f.nodeSpacing, "node-spacing", 0, "gap between nodes in a layer, also the page margin (default 20)")
	fl.Float64Var(&f.nodeWidth, "node-width", 0, "node width (default 120)")
	fl.Float64Var(&f.nodeHeight, "node-height", 0, "node height (default 60)")
	fl.IntVar(&f.iterations, "iterations", 0, "ordering sweeps (default 4)")
	fl.BoolVar(&f.explicitNodes, "explicit-nodes", false, "reject edges to undeclared nodes")
	fl.BoolVar(&f.noRedefine, "no-redefine", false, "reject node attributes that change once set")
	fl.BoolVar(&f.timestamp, "timestamp", false, "stamp documents with the conversion time")
	fl.BoolVar(&f.detailed, "detailed", false, "list node attributes in svg previews")

	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("direction", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"TB", "LR"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// options builds validated pipeline options: flags first, then cfg.
func (c *CLI) options(f *optionFlags, cfg *config.Config, now time.Time) (pipeline.Options, error) {
	opts := pipeline.Options{
		ExplicitNodes:  f.explicitNodes,
		NoRedefinition: f.noRedefine,
		Layout: layout.Options{
			Direction:    graph.Direction(strings.ToUpper(f.direction)),
			LayerSpacing: f.layerSpacing,
			NodeSpacing:  f.nodeSpacing,
			NodeWidth:    f.nodeWidth,
			NodeHeight:   f.nodeHeight,
			Iterations:   f.iterations,
		},
		Format:   strings.ToLower(f.format),
		Detailed: f.detailed,
		Agent:    buildinfo.Agent(),
		Logger:   c.Logger,
	}
	if f.timestamp {
		opts.Timestamp = now.UTC().Truncate(time.Millisecond)
	}
	cfg.Apply(&opts, now)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}
