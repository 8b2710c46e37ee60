package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotdraw/internal/metrics"
	"github.com/matzehuels/dotdraw/internal/server"
	"github.com/matzehuels/dotdraw/pkg/cache"
	"github.com/matzehuels/dotdraw/pkg/config"
	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

const (
	defaultAddr = ":8080"

	// redisKeyPrefix namespaces server entries on a shared redis.
	redisKeyPrefix = "dotdraw:api:"
)

type serveOpts struct {
	addr      string
	redisURL  string
	noCache   bool
	noMetrics bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Long: `Serve exposes the converter over HTTP:

  POST /v1/convert   DOT text in, diagram out (?format=drawio|json|dot|svg)
  GET  /v1/formats   supported formats
  GET  /healthz      liveness
  GET  /metrics      prometheus metrics

Converted documents are cached in redis when --redis-url (or
DOTDRAW_REDIS_URL, or [cache] redis_url) is set, else in the local cache
directory.`,
		Example: `  dotdraw serve --addr :9000
  curl --data-binary @deps.dot 'localhost:9000/v1/convert?format=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "redis URL for the shared document cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	addr := firstNonEmpty(opts.addr, cfg.Server.Addr, defaultAddr)
	runner, err := c.serverRunner(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	scfg := server.Config{
		Runner:       runner,
		Settings:     cfg,
		Logger:       c.Logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)
		m.Install()
		scfg.Metrics = m.Handler(reg)
	}

	printInfo("Serving on %s", addr)
	return server.New(scfg).ListenAndServe(ctx, addr)
}

// serverRunner picks the cache: redis when a URL is configured, else the
// same file cache the CLI uses.
func (c *CLI) serverRunner(ctx context.Context, cfg *config.Config, opts *serveOpts) (*pipeline.Runner, error) {
	url := firstNonEmpty(opts.redisURL, os.Getenv("DOTDRAW_REDIS_URL"), cfg.Cache.RedisURL)
	if opts.noCache || cfg.Cache.Disabled || url == "" {
		return c.newRunner(cfg, opts.noCache)
	}
	if err := errors.ValidateRedisURL(url); err != nil {
		return nil, err
	}
	rc, err := cache.NewRedisCache(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.Logger.Info("using redis cache")
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, redisKeyPrefix), c.Logger), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
