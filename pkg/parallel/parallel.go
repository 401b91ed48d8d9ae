// Package parallel runs fork-join computations over statically partitioned
// id ranges.
//
// Work is split up front into contiguous slices of size total/n + 1, one per
// worker. Workers are spawned per call and joined before the call returns;
// nothing is pooled across calls. A worker that panics takes the process down
// with it, which is the intended failure mode for corrupted graph state.
package parallel

import (
	"golang.org/x/sync/errgroup"
)

// Range is the half-open id interval [Lo, Hi) assigned to one worker.
type Range struct {
	Lo, Hi int
}

// Len returns the number of ids in r.
func (r Range) Len() int { return r.Hi - r.Lo }

// Split partitions [0, total) into at most n contiguous, non-empty ranges
// of size total/n + 1 (the last one may be shorter). n < 1 is treated as 1.
func Split(total, n int) []Range {
	if n < 1 {
		n = 1
	}
	if total <= 0 {
		return nil
	}
	size := total/n + 1
	ranges := make([]Range, 0, n)
	for lo := 0; lo < total; lo += size {
		ranges = append(ranges, Range{Lo: lo, Hi: min(lo+size, total)})
	}
	return ranges
}

// Run splits [0, total) across n workers and calls fn once per range on its
// own goroutine. fn receives the index of its range so it can write its
// result into a pre-sized slice without locking. Run returns after every
// worker has finished, with the first non-nil error any worker returned.
func Run(total, n int, fn func(i int, r Range) error) error {
	ranges := Split(total, n)
	if len(ranges) == 1 {
		return fn(0, ranges[0])
	}

	var g errgroup.Group
	for i, r := range ranges {
		g.Go(func() error {
			return fn(i, r)
		})
	}
	return g.Wait()
}

// Map runs fn over every range of [0, total) split across n workers and
// returns the per-range results in range order.
func Map[T any](total, n int, fn func(r Range) T) []T {
	ranges := Split(total, n)
	out := make([]T, len(ranges))
	_ = Run(total, n, func(i int, r Range) error {
		out[i] = fn(r)
		return nil
	})
	return out
}
