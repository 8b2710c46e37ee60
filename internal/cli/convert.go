package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotdraw/pkg/dot"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

// stdinName names input read from "-".
const stdinName = "stdin"

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	optionFlags
	output  string // output file, "-" for stdout; single input only
	outDir  string // directory for outputs; default next to each input
	noCache bool
	refresh bool // ignore cached outputs but store fresh ones
	jobs    int
}

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert DOT files to draw.io diagrams",
		Long: `Convert parses each DOT file, lays the graph out in layers and writes a
draw.io document next to it (graph.dot -> graph.drawio). Use "-" to read
from stdin; its output goes to stdout unless -o or --out-dir is given.
Files ending in .json are read as graph JSON, as written by --format graph.

Several files are converted concurrently; the first failure stops the rest.`,
		Example: `  dotdraw convert deps.dot
  dotdraw convert --direction LR -o flow.drawio flow.dot
  cat g.dot | dotdraw convert - --format svg > g.svg
  dotdraw convert --out-dir diagrams --jobs 4 graphs/*.dot
  dotdraw convert --format graph deps.dot && dotdraw convert deps.graph.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args, &opts)
		},
	}

	opts.optionFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "directory for output files")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reconvert even when a cached output exists")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "concurrent conversions (default: one per input)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, inputs []string, opts *convertOpts) error {
	logger := loggerFromContext(ctx)
	if opts.output != "" && len(inputs) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "-o takes a single input; use --out-dir for %d inputs", len(inputs))
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.options(&opts.optionFlags, cfg, time.Now())
	if err != nil {
		return err
	}
	outDir := opts.outDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	paths := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	reqs := make([]pipeline.Request, len(inputs))
	stdinUsed := false
	for i, in := range inputs {
		if in == "-" {
			if stdinUsed {
				return errors.New(errors.ErrCodeInvalidInput, "stdin (-) can only be read once")
			}
			stdinUsed = true
		}
		path, err := outputPath(in, opts.output, outDir, popts.Format)
		if err != nil {
			return err
		}
		if prev, ok := seen[path]; ok && path != "-" {
			return errors.New(errors.ErrCodeInvalidInput, "%s and %s would both write %s", prev, in, path)
		}
		if path == in && in != "-" {
			return errors.New(errors.ErrCodeInvalidInput, "%s would overwrite its own input", in)
		}
		seen[path] = in
		paths[i] = path

		name, text, err := c.readInput(in)
		if err != nil {
			return err
		}
		reqs[i] = pipeline.Request{Name: name, Source: text, Options: popts, Refresh: opts.refresh}
	}

	runner, err := c.newRunner(cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %d graph(s)...", len(reqs)))
	spinner.Start()
	results, err := runner.ExecuteAll(ctx, reqs, opts.jobs)
	spinner.Stop()
	if err != nil {
		return err
	}

	for i, res := range results {
		if err := c.writeOutput(paths[i], res.Output); err != nil {
			return err
		}
		if paths[i] == "-" {
			continue
		}
		printSuccess("%s", res.Name)
		printFile(paths[i])
		printStats(res.Stats, res.CacheHit)
	}
	prog.done(fmt.Sprintf("Converted %d graph(s)", len(results)))
	return nil
}

// readInput returns the display name and DOT text of a path, or of stdin
// for "-". Graph JSON files are written back as DOT.
func (c *CLI) readInput(path string) (string, string, error) {
	if isGraphJSON(path) {
		g, err := graph.ReadGraphFile(path)
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
		}
		if err != nil {
			return "", "", errors.Wrap(errors.ErrCodeInvalidInput, err, "graph %s", path)
		}
		return path, dot.String(g), nil
	}
	if path == "-" {
		data, err := io.ReadAll(c.In)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return stdinName, string(data), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	return path, string(data), nil
}

// outputPath derives where a converted input is written:
//   - an explicit output wins ("-" is stdout)
//   - stdin without an output directory goes to stdout
//   - otherwise the input's base name with the format's extension, in
//     outDir or next to the input
func outputPath(input, output, outDir, format string) (string, error) {
	if output != "" {
		return output, nil
	}
	if input == "-" && outDir == "" {
		return "-", nil
	}

	base := stdinName
	dir := outDir
	if input != "-" {
		base = filepath.Base(input)
		if graphExt := pipeline.Extension(pipeline.FormatGraph); strings.HasSuffix(base, graphExt) {
			base = strings.TrimSuffix(base, graphExt)
		} else {
			base = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if dir == "" {
			dir = filepath.Dir(input)
		}
	}
	name := base + pipeline.Extension(format)
	if err := errors.ValidateOutputName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func isGraphJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// writeOutput writes data to path, creating its directory, or to Out for "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := c.Out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
