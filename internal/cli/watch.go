package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

// defaultDebounce collapses the burst of events an editor emits on save.
const defaultDebounce = 150 * time.Millisecond

type watchOpts struct {
	optionFlags
	output   string
	debounce time.Duration
}

func (c *CLI) watchCommand() *cobra.Command {
	opts := watchOpts{debounce: defaultDebounce}

	cmd := &cobra.Command{
		Use:   "watch <file.dot>",
		Short: "Reconvert a DOT file whenever it changes",
		Long: `Watch converts the file once, then again every time it is saved, until
interrupted. Conversion errors are reported and the previous output is
left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], &opts)
		},
	}

	opts.optionFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", opts.debounce, "quiet period before reconverting")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts *watchOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts, err := c.options(&opts.optionFlags, cfg, time.Now())
	if err != nil {
		return err
	}
	path, err := outputPath(input, opts.output, "", popts.Format)
	if err != nil {
		return err
	}
	if path == "-" {
		return errors.New(errors.ErrCodeInvalidInput, "watch needs an output file")
	}
	if _, err := os.Stat(input); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", input)
	}

	// Each save is new text, so there is nothing worth caching.
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	convert := func() {
		if err := c.convertOnce(ctx, runner, input, path, popts); err != nil {
			printError("%s", errors.UserMessage(err))
			return
		}
		printSuccess("%s %s %s", input, iconArrow, path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often save by writing a new file and
	// renaming it over the old one.
	if err := w.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	target := filepath.Clean(input)

	convert()
	printInfo("Watching %s (Ctrl-C to stop)", input)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(opts.debounce)
				timerC = timer.C
			} else {
				timer.Reset(opts.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			convert()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			printWarning("watcher: %v", err)
		}
	}
}

// convertOnce reads input, converts it and writes the output.
func (c *CLI) convertOnce(ctx context.Context, runner *pipeline.Runner, input, path string, opts pipeline.Options) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if err := errors.ValidateSource(string(data)); err != nil {
		return err
	}
	res, err := runner.Execute(ctx, pipeline.Request{Name: input, Source: string(data), Options: opts})
	if err != nil {
		return err
	}
	return c.writeOutput(path, res.Output)
}
