// Package cli implements the carp command-line interface.
//
// This package provides commands for measuring the CARP index of genome
// graphs, scanning per-marker complexity, extracting marker neighborhoods
// and managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - measure: Compute the CARP index of one or more graphs
//   - scan: Compute per-marker complexity and select a percentile band
//   - extract: Export the neighborhood of a single marker
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Pipeline and
// cache events are reported through observability hooks at debug level.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Measured 3 graphs (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports pipeline and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, input string) {
	h.logger.Debug("loading", "input", input)
}

func (h *logHooks) OnLoadComplete(_ context.Context, input string, markers, adjacencies int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "input", input, "error", err)
		return
	}
	h.logger.Debug("load complete", "input", input, "markers", markers, "adjacencies", adjacencies, "duration", d)
}

func (h *logHooks) OnTrimComplete(_ context.Context, strategy string, removed, remaining int, d time.Duration) {
	h.logger.Debug("trim complete", "strategy", strategy, "removed", removed, "remaining", remaining, "duration", d)
}

func (h *logHooks) OnMeasureComplete(_ context.Context, index int, d time.Duration, err error) {
	h.logger.Debug("measure complete", "index", index, "duration", d, "error", err)
}

func (h *logHooks) OnScanStart(_ context.Context, markers, contextLen int) {
	h.logger.Debug("scan start", "markers", markers, "context_len", contextLen)
}

func (h *logHooks) OnScanComplete(_ context.Context, markers int, cached bool, d time.Duration, err error) {
	h.logger.Debug("scan complete", "markers", markers, "cached", cached, "duration", d, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
