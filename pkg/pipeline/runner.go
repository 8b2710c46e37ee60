package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotdraw/pkg/cache"
	"github.com/matzehuels/dotdraw/pkg/observability"
)

// Request is one conversion for a Runner.
type Request struct {
	Name    string // Input name for logs and results, e.g. a file name
	Source  string // DOT text
	Options Options
	Refresh bool // Skip the cache lookup; the fresh output is still stored
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute converts one request and renders it in req.Options.Format.
//
// The rendered output is cached under a key derived from the source text
// and every option that affects it. On a cache hit only Name, Format,
// Output and the output size are set.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	opts := req.Options
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	docKey := r.Keyer.DocumentKey(cache.Hash([]byte(req.Source)), opts.DocumentKeyOpts())
	key := r.Keyer.ArtifactKey(docKey, opts.Format)
	hooks := observability.Cache()

	if !req.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache lookup failed", "name", req.Name, "err", err)
		} else if hit {
			hooks.OnCacheHit(ctx, opts.Format)
			r.Logger.Debug("cache hit", "name", req.Name, "format", opts.Format)
			return &Result{
				Name:     req.Name,
				Format:   opts.Format,
				Output:   data,
				Stats:    Stats{OutputBytes: len(data)},
				CacheHit: true,
			}, nil
		}
		hooks.OnCacheMiss(ctx, opts.Format)
	}

	res, err := Convert(ctx, req.Name, req.Source, opts)
	if err != nil {
		return nil, err
	}
	if err := renderStage(ctx, res); err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, res.Output, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache store failed", "name", req.Name, "err", err)
	} else {
		hooks.OnCacheSet(ctx, opts.Format, len(res.Output))
	}

	r.Logger.Info("converted graph",
		"name", req.Name,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"crossings", res.Stats.Crossings,
		"format", res.Format,
		"bytes", res.Stats.OutputBytes,
		"duration", res.Stats.Total().Round(time.Microsecond))

	return res, nil
}

// ExecuteAll converts independent requests concurrently, at most jobs at a
// time (jobs < 1 means one per request). Results are returned in request
// order. The first failure cancels the remaining requests and is returned
// prefixed with the request's name.
func (r *Runner) ExecuteAll(ctx context.Context, reqs []Request, jobs int) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, req)
			if err != nil {
				if req.Name != "" {
					return fmt.Errorf("%s: %w", req.Name, err)
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
