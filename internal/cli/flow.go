package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotdraw/pkg/dot"
	"github.com/matzehuels/dotdraw/pkg/flow"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

type flowOpts struct {
	optionFlags
	output  string
	fn      string
	noCache bool
}

func (c *CLI) flowCommand() *cobra.Command {
	var opts flowOpts

	cmd := &cobra.Command{
		Use:   "flow <file.go>",
		Short: "Draw the control flow of Go functions",
		Long: `Flow parses a Go source file and charts its functions: each function is an
ellipse, statements are boxes and branches (if, for, range, switch, select)
are diamonds. The chart goes through the same layout and output formats as
convert; --format dot prints the generated DOT description itself.`,
		Example: `  dotdraw flow main.go
  dotdraw flow --func run -o run.drawio cmd/server/main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFlow(cmd.Context(), args[0], &opts)
		},
	}

	opts.optionFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().StringVar(&opts.fn, "func", "", "chart only this function")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")

	return cmd
}

func (c *CLI) runFlow(ctx context.Context, input string, opts *flowOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.options(&opts.optionFlags, cfg, time.Now())
	if err != nil {
		return err
	}

	g, err := flow.Build(input, nil, flow.Options{Func: opts.fn})
	if err != nil {
		return err
	}
	logger.Debug("built flow graph", "file", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	path, err := outputPath(input, opts.output, "", popts.Format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pipeline.Request{
		Name:    input,
		Source:  dot.String(g),
		Options: popts,
	})
	if err != nil {
		return err
	}
	if err := c.writeOutput(path, res.Output); err != nil {
		return err
	}
	if path != "-" {
		printSuccess("%s", input)
		printFile(path)
		printStats(res.Stats, res.CacheHit)
	}
	return nil
}
