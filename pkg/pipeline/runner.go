package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gi-bielefeld/scj-carp/pkg/cache"
	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
	"github.com/gi-bielefeld/scj-carp/pkg/measure"
	"github.com/gi-bielefeld/scj-carp/pkg/observability"
	"github.com/gi-bielefeld/scj-carp/pkg/scan"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Load parses the input, completes telomeres and trims markers below the
// size threshold.
func (r *Runner) Load(ctx context.Context, opts Options) (*LoadResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Input)
	start := time.Now()

	res, err := r.load(ctx, opts)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.Input, 0, 0, time.Since(start), err)
		return nil, err
	}
	res.Stats.LoadTime = time.Since(start)
	hooks.OnLoadComplete(ctx, opts.Input, res.Stats.Markers, res.Stats.Adjacencies, res.Stats.LoadTime, nil)

	r.Logger.Info("loaded graph",
		"markers", res.Stats.Markers,
		"adjacencies", res.Stats.Adjacencies,
		"duration", res.Stats.LoadTime)
	return res, nil
}

func (r *Runner) load(ctx context.Context, opts Options) (*LoadResult, error) {
	raw, err := pkgio.Import(opts.Input, opts.format)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := graph.FromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	r.Logger.Debug("parsed input", "path", opts.Input, "format", opts.format, "markers", g.NumMarkers())

	res := &LoadResult{Graph: g}
	res.Stats.TelomeresAdded = g.FillTelomeres()
	if res.Stats.TelomeresAdded > 0 {
		r.Logger.Debug("added telomere adjacencies", "count", res.Stats.TelomeresAdded)
	}

	switch {
	case opts.SizeThreshold > 0 && opts.format == pkgio.FormatUniMoG:
		r.Logger.Warn("unimog input has no marker sizes, ignoring size threshold", "threshold", opts.SizeThreshold)
	case opts.SizeThreshold > 0:
		stats, err := g.Trim(opts.SizeThreshold, graph.TrimOptions{
			Threads:       opts.Threads,
			StrictOverlap: opts.StrictOverlap,
			Logger:        r.Logger,
		})
		if err != nil {
			return nil, err
		}
		res.Stats.Trim = stats
		res.Stats.TelomeresAdded += g.FillTelomeres()
		observability.Pipeline().OnTrimComplete(ctx, stats.Strategy, stats.Removed, stats.After, stats.Duration)
		r.Logger.Info("trimmed graph",
			"removed", stats.Removed,
			"remaining", stats.After,
			"strategy", stats.Strategy,
			"duration", stats.Duration)
	}

	res.Stats.Markers = g.NumMarkers()
	res.Stats.Adjacencies = len(g.Adjacencies())
	return res, ctx.Err()
}

// Measure loads the input and computes its CARP index. Results are cached
// by graph fingerprint.
func (r *Runner) Measure(ctx context.Context, opts Options) (*MeasureResult, error) {
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.MeasureGraph(ctx, loaded, opts)
}

// MeasureGraph computes the CARP index of an already loaded graph.
func (r *Runner) MeasureGraph(ctx context.Context, loaded *LoadResult, opts Options) (*MeasureResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	g := loaded.Graph
	res := &MeasureResult{Graph: g, Stats: loaded.Stats, Fingerprint: Fingerprint(g)}
	key := r.Keyer.MeasureKey(res.Fingerprint)

	start := time.Now()
	if !opts.Refresh {
		var cached measure.Result
		if hit, err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil && hit {
			res.Result, res.CacheHit = &cached, true
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
	}
	if res.Result == nil {
		res.Result = measure.Measure(g, opts.Threads)
		if err := cache.SetJSON(ctx, r.Cache, key, res.Result, opts.CacheTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	res.Stats.MeasureTime = time.Since(start)
	observability.Pipeline().OnMeasureComplete(ctx, res.Result.Index(), res.Stats.MeasureTime, nil)

	r.Logger.Info("measured graph",
		"index", res.Result.Index(),
		"uncontested", len(res.Result.Uncontested),
		"cached", res.CacheHit,
		"duration", res.Stats.MeasureTime)
	return res, nil
}

// Scan loads the input, computes every marker's complexity and selects the
// markers inside the requested percentile band. The complexity map is
// cached by graph fingerprint and context length.
func (r *Runner) Scan(ctx context.Context, opts Options) (*ScanResult, error) {
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.ScanGraph(ctx, loaded, opts)
}

// ScanGraph runs the scan stage on an already loaded graph.
func (r *Runner) ScanGraph(ctx context.Context, loaded *LoadResult, opts Options) (*ScanResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	g := loaded.Graph
	res := &ScanResult{Graph: g, Stats: loaded.Stats, Fingerprint: Fingerprint(g)}
	key := r.Keyer.ScanKey(res.Fingerprint, opts.Context())

	hooks := observability.Pipeline()
	hooks.OnScanStart(ctx, g.NumMarkers(), opts.Context())
	start := time.Now()

	if !opts.Refresh {
		var cached map[graph.Marker]int
		if hit, err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil && hit {
			res.Complexity, res.CacheHit = cached, true
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
	}
	if res.Complexity == nil {
		r.Logger.Info("scanning graph", "markers", g.NumMarkers(), "context_len", opts.Context(), "threads", opts.Threads)
		res.Complexity = scan.Parallel(g, opts.Context(), opts.Threads)
		if err := ctx.Err(); err != nil {
			hooks.OnScanComplete(ctx, 0, false, time.Since(start), err)
			return nil, err
		}
		if err := cache.SetJSON(ctx, r.Cache, key, res.Complexity, opts.CacheTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	res.Histogram = scan.Histogram(res.Complexity)
	res.Band, res.InBand = scan.PercentileBand(res.Complexity, opts.Lower, opts.UpperPercentile())
	res.Selected = scan.TopPercentile(res.Complexity, opts.Lower, opts.UpperPercentile())
	res.Stats.ScanTime = time.Since(start)
	hooks.OnScanComplete(ctx, len(res.Complexity), res.CacheHit, res.Stats.ScanTime, nil)

	r.Logger.Info("scanned graph",
		"markers", len(res.Complexity),
		"selected", len(res.Selected),
		"cached", res.CacheHit,
		"duration", res.Stats.ScanTime)
	return res, nil
}

// Extract loads the input and returns the neighborhood of opts.Marker.
func (r *Runner) Extract(ctx context.Context, opts Options) (*ExtractResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Marker == "" {
		return nil, errors.New(errors.ErrCodeInvalidOption, "marker is required")
	}
	loaded, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	g := loaded.Graph
	m, ok := g.NameToMarker(opts.Marker)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "marker %q not in graph", opts.Marker)
	}
	adjs := scan.Neighborhood(g, m, opts.Context())
	res := &ExtractResult{
		Graph:       g,
		Marker:      m,
		Adjacencies: adjs,
		Index:       measure.FromAdjacencies(adjs),
		Stats:       loaded.Stats,
	}
	r.Logger.Info("extracted neighborhood",
		"marker", opts.Marker,
		"adjacencies", len(adjs),
		"index", res.Index)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
