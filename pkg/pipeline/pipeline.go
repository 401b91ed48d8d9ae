// Package pipeline runs the scj-carp analysis stages end to end.
//
// This package implements the load → measure and load → scan pipelines used
// by every CLI command, so trimming policy, caching and logging behave the
// same regardless of entry point.
//
// # Architecture
//
//  1. Load: parse GFA or UniMoG input, build the graph, add telomere
//     adjacencies, trim small markers and fill telomeres again
//  2. Measure: classify every adjacency and count the contested ones
//  3. Scan: compute the local complexity of every marker (cached)
//  4. Extract: collect the neighborhood of one named marker
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Measure(ctx, pipeline.Options{
//	    Input:         "graph.gfa.gz",
//	    SizeThreshold: 50,
//	    Threads:       8,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Result.Index())
package pipeline

import (
	"time"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
	"github.com/gi-bielefeld/scj-carp/pkg/measure"
	"github.com/gi-bielefeld/scj-carp/pkg/scan"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI and config file
// =============================================================================

const (
	// DefaultThreads runs every stage on one goroutine.
	DefaultThreads = 1

	// DefaultContextLen is the scan radius in base pairs.
	DefaultContextLen = 500

	// DefaultUpper selects everything up to the most complex marker.
	DefaultUpper = 1.0

	// DefaultCacheTTL is how long scan and measure results stay cached.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Input         string `json:"input"`
	Format        string `json:"format,omitempty"` // gfa, unimog, or empty to detect
	SizeThreshold int    `json:"size_threshold,omitempty"`
	Threads       int    `json:"threads,omitempty"`
	StrictOverlap bool   `json:"strict_overlap,omitempty"`

	// Scan options
	ContextLen *int     `json:"context_len,omitempty"` // nil means DefaultContextLen
	Lower      float64  `json:"lower,omitempty"`
	Upper      *float64 `json:"upper,omitempty"` // nil means DefaultUpper

	// Extract options
	Marker string `json:"marker,omitempty"`

	// Cache options
	Refresh  bool          `json:"refresh,omitempty"` // recompute and overwrite cached results
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	format    pkgio.Format
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidOption, "input is required")
	}
	if err := errors.ValidatePath(o.Input); err != nil {
		return err
	}

	f, err := pkgio.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	if f == pkgio.FormatAuto {
		f = pkgio.DetectFormat(o.Input)
	}
	o.format = f

	if o.Threads == 0 {
		o.Threads = DefaultThreads
	}
	if o.ContextLen == nil {
		o.ContextLen = Int(DefaultContextLen)
	}
	if o.Upper == nil {
		o.Upper = Float(DefaultUpper)
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}

	switch {
	case o.Threads < 1:
		return errors.New(errors.ErrCodeInvalidOption, "threads must be at least 1, got %d", o.Threads)
	case o.SizeThreshold < 0:
		return errors.New(errors.ErrCodeInvalidOption, "size threshold must not be negative, got %d", o.SizeThreshold)
	case *o.ContextLen < 0:
		return errors.New(errors.ErrCodeInvalidOption, "context length must not be negative, got %d", *o.ContextLen)
	case o.Lower < 0 || o.Lower > 1 || *o.Upper < 0 || *o.Upper > 1:
		return errors.New(errors.ErrCodeInvalidOption, "percentiles must lie in [0, 1], got %v and %v", o.Lower, *o.Upper)
	case o.Lower > *o.Upper:
		return errors.New(errors.ErrCodeInvalidOption, "lower percentile %v exceeds upper percentile %v", o.Lower, *o.Upper)
	}

	o.validated = true
	return nil
}

// Context returns the scan radius, DefaultContextLen when unset.
func (o *Options) Context() int {
	if o.ContextLen == nil {
		return DefaultContextLen
	}
	return *o.ContextLen
}

// UpperPercentile returns the upper selection bound, DefaultUpper when unset.
func (o *Options) UpperPercentile() float64 {
	if o.Upper == nil {
		return DefaultUpper
	}
	return *o.Upper
}

// Int returns a pointer to v for the optional integer fields of Options.
func Int(v int) *int { return &v }

// Float returns a pointer to v for the optional float fields of Options.
func Float(v float64) *float64 { return &v }

// InputFormat returns the resolved input format. It is only meaningful
// after ValidateAndSetDefaults.
func (o *Options) InputFormat() pkgio.Format { return o.format }

// =============================================================================
// Results
// =============================================================================

// Stats contains pipeline execution statistics.
type Stats struct {
	Markers        int             `json:"markers"`
	Adjacencies    int             `json:"adjacencies"`
	TelomeresAdded int             `json:"telomeres_added"`
	Trim           graph.TrimStats `json:"trim"`
	LoadTime       time.Duration   `json:"load_time"`
	MeasureTime    time.Duration   `json:"measure_time,omitempty"`
	ScanTime       time.Duration   `json:"scan_time,omitempty"`
}

// LoadResult is a graph ready for analysis.
type LoadResult struct {
	Graph *graph.Graph
	Stats Stats
}

// MeasureResult holds the whole-graph adjacency classification.
type MeasureResult struct {
	Graph       *graph.Graph
	Result      *measure.Result
	Fingerprint string
	Stats       Stats
	CacheHit    bool
}

// ScanResult holds per-marker complexities and the percentile selection.
type ScanResult struct {
	Graph       *graph.Graph
	Complexity  map[graph.Marker]int
	Histogram   map[int]int
	Band        scan.Band
	InBand      bool
	Selected    []graph.Marker
	Fingerprint string
	Stats       Stats
	CacheHit    bool
}

// ExtractResult is the neighborhood of one marker.
type ExtractResult struct {
	Graph       *graph.Graph
	Marker      graph.Marker
	Adjacencies []graph.Adjacency
	Index       int
	Stats       Stats
}
