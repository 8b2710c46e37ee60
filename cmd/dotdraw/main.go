package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/matzehuels/dotdraw/internal/cli"
)

// Set via ldflags.
var (
	version string
	commit  string
	date    string
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file may carry DOTDRAW_REDIS_URL or DOTDRAW_CACHE_DIR; it is optional.
	_ = godotenv.Load()
	cli.SetVersion(version, commit, date)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return cli.ExitCode(cli.Execute(ctx, os.Args[1:]))
}
