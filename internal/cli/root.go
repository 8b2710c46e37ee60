package cli

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/matzehuels/dotdraw/pkg/buildinfo"
	"github.com/matzehuels/dotdraw/pkg/errors"
)

// Exit codes returned by ExitCode.
const (
	ExitOK        = 0
	ExitFailure   = 1   // Program or environment failure
	ExitUserError = 2   // The input or the flags were at fault
	ExitCancelled = 130 // Interrupted (shell convention for SIGINT)
)

// SetVersion sets the version information displayed by --version and
// written into generated documents. main calls it with values injected via
// ldflags; empty values keep the defaults.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the dotdraw CLI with the given arguments. Failures are
// printed to stderr; the returned error decides the exit code (see ExitCode).
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    os.Exit(cli.ExitCode(cli.Execute(ctx, os.Args[1:])))
//	}
func Execute(ctx context.Context, args []string) error {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		printError("%s", errors.UserMessage(err))
	}
	return err
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.IsUserError(err), errors.Is(err, errors.ErrCodeLayout), errors.Is(err, errors.ErrCodeFileNotFound):
		return ExitUserError
	}
	return ExitFailure
}
