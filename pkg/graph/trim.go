package graph

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/parallel"
)

// Trim strategies reported in [TrimStats].
const (
	StrategySequential  = "sequential"
	StrategyPartitioned = "partitioned"
)

// sequentialShare is the fraction of markers at or above which a predicted
// removal count switches Trim to the sequential strategy.
const sequentialShare = 10

// TrimOptions configures [Graph.Trim].
type TrimOptions struct {
	// Threads is the number of workers for the partitioned strategy.
	// Values below 2 always trim sequentially.
	Threads int

	// StrictOverlap rejects trimming a graph with non-zero segment overlap.
	// When false, overlap is reported once and then treated as zero.
	StrictOverlap bool

	// Logger receives warnings and progress. Nil discards them.
	Logger *log.Logger
}

// TrimStats summarizes one call to [Graph.Trim].
type TrimStats struct {
	Before   int           `json:"markers_before"`
	After    int           `json:"markers_after"`
	Removed  int           `json:"removed"`
	Strategy string        `json:"strategy"`
	Duration time.Duration `json:"duration"`
}

// Trim removes every active marker smaller than minSize, splicing the
// neighbors of each removed marker together.
//
// With more than one thread, Trim first predicts how many markers will go.
// If that is at least a tenth of all markers it runs [Graph.TrimSequential],
// otherwise [Graph.TrimPartitioned]. Both produce the same graph.
//
// Trimming is only sound when linked segments do not overlap. A graph with
// non-zero overlap fails with an OVERLAP error in strict mode; otherwise a
// warning is logged once and the overlap is reset to zero.
func (g *Graph) Trim(minSize int, opts TrimOptions) (TrimStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	stats := TrimStats{Before: g.active, Strategy: StrategySequential}
	if g.overlap != 0 {
		if opts.StrictOverlap {
			return stats, errors.New(errors.ErrCodeOverlap,
				"cannot trim graph with overlap %d between segments", g.overlap)
		}
		logger.Warn("segments overlap, trimming treats overlap as zero", "overlap", g.overlap)
		g.overlap = 0
	}

	start := time.Now()
	if opts.Threads > 1 {
		predicted := g.countBelow(minSize)
		if predicted*sequentialShare < g.active {
			stats.Strategy = StrategyPartitioned
		}
		logger.Debug("predicted trim", "removals", predicted, "markers", g.active, "strategy", stats.Strategy)
	}
	if stats.Strategy == StrategyPartitioned {
		stats.Removed = g.TrimPartitioned(minSize, opts.Threads)
	} else {
		stats.Removed = g.TrimSequential(minSize)
	}
	stats.After = g.active
	stats.Duration = time.Since(start)

	if stats.Before > 0 && stats.After*10 < stats.Before {
		logger.Warn("fewer than 10% of markers remain after trimming, consider a lower size threshold",
			"before", stats.Before, "after", stats.After)
	}
	return stats, nil
}

func (g *Graph) countBelow(minSize int) int {
	n := 0
	for m := 1; m < len(g.masked); m++ {
		if !g.masked[m] && g.sizes[m] < minSize {
			n++
		}
	}
	return n
}

// TrimSequential removes markers smaller than minSize one at a time in id
// order, mutating the graph in place. It returns the number removed.
func (g *Graph) TrimSequential(minSize int) int {
	removed := 0
	for m := 1; m < len(g.masked); m++ {
		if g.masked[m] || g.sizes[m] >= minSize {
			continue
		}
		g.remove(Marker(m))
		removed++
	}
	return removed
}

// remove splices out a single marker.
func (g *Graph) remove(m Marker) {
	t, h := Tail(m), Head(m)
	isRemoved := func(k Marker) bool { return k == m }

	var affected []Extremity
	for _, end := range [2]Extremity{t, h} {
		for _, x := range g.adj[end] {
			if x == t || x == h || slices.Contains(affected, x) {
				continue
			}
			if !slices.Contains(g.adj[x], t) && !slices.Contains(g.adj[x], h) {
				panic(fmt.Sprintf("graph: %v lists %v but not the reverse", end, x))
			}
			affected = append(affected, x)
		}
	}

	lists := make([][]Extremity, len(affected))
	for i, x := range affected {
		lists[i] = g.solidNeighbors(x, isRemoved)
	}
	for i, x := range affected {
		g.adj[x] = lists[i]
	}
	g.mask(m)
}

func (g *Graph) mask(m Marker) {
	g.adj[Tail(m)] = nil
	g.adj[Head(m)] = nil
	g.masked[m] = true
	g.active--
}

// solidNeighbors computes the neighbor list x has once every marker for which
// isRemoved reports true is spliced out. It walks from x through removed
// markers, entering each at one end and leaving through the other, and
// collects every surviving extremity (or the telomere) it reaches.
//
// A self-adjacency in the result is listed twice. The telomere never becomes
// its own neighbor.
func (g *Graph) solidNeighbors(x Extremity, isRemoved func(Marker) bool) []Extremity {
	solid := make(map[Extremity]struct{})
	visited := make(map[Extremity]struct{})
	stack := []Extremity{x}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, y := range g.adj[cur] {
			if y == Telomere || !isRemoved(MarkerOf(y)) {
				solid[y] = struct{}{}
				continue
			}
			exit := Other(y)
			if _, seen := visited[exit]; !seen {
				visited[exit] = struct{}{}
				stack = append(stack, exit)
			}
		}
	}

	if x == Telomere {
		delete(solid, Telomere)
	}
	out := make([]Extremity, 0, len(solid)+1)
	for y := range solid {
		out = append(out, y)
	}
	slices.Sort(out)
	if i, found := slices.BinarySearch(out, x); found {
		out = slices.Insert(out, i, x)
	}
	return out
}

// TrimPartitioned removes markers smaller than minSize using threads workers
// over contiguous extremity ranges. Workers only read the graph: each
// proposes masks for removed markers and replacement neighbor lists for
// surviving extremities next to them. The proposals are applied after all
// workers have joined. It returns the number of markers removed.
func (g *Graph) TrimPartitioned(minSize, threads int) int {
	isRemoved := func(k Marker) bool {
		return k != 0 && !g.masked[k] && g.sizes[k] < minSize
	}

	type rewrite struct {
		x    Extremity
		list []Extremity
	}
	type proposal struct {
		masks    []Marker
		rewrites []rewrite
	}

	proposals := parallel.Map(len(g.adj), threads, func(r parallel.Range) proposal {
		var p proposal
		for i := r.Lo; i < r.Hi; i++ {
			x := Extremity(i)
			m := MarkerOf(x)
			if x != Telomere && g.masked[m] {
				continue
			}
			if x != Telomere && isRemoved(m) {
				if IsTail(x) {
					p.masks = append(p.masks, m)
				}
				continue
			}
			touches := slices.ContainsFunc(g.adj[x], func(y Extremity) bool {
				return y != Telomere && isRemoved(MarkerOf(y))
			})
			if touches {
				p.rewrites = append(p.rewrites, rewrite{x: x, list: g.solidNeighbors(x, isRemoved)})
			}
		}
		return p
	})

	removed := 0
	for _, p := range proposals {
		for _, m := range p.masks {
			g.mask(m)
			removed++
		}
	}
	for _, p := range proposals {
		for _, rw := range p.rewrites {
			g.adj[rw.x] = rw.list
		}
	}
	return removed
}
