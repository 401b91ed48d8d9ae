// Package scan computes local rearrangement complexity around every marker.
//
// The complexity of a marker at radius d is the CARP index of the adjacencies
// found by [Neighborhood] within a size-weighted distance d of it. [Parallel]
// and [ParallelEnum] split the markers into contiguous id ranges across
// workers and merge the per-worker maps after all of them have joined; both
// return the same map as [Sequential].
package scan

import (
	"maps"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	"github.com/gi-bielefeld/scj-carp/pkg/parallel"
)

// Sequential returns the complexity of every active marker.
func Sequential(g *graph.Graph, maxDepth int) map[graph.Marker]int {
	out := make(map[graph.Marker]int, g.NumMarkers())
	for _, m := range g.Markers() {
		out[m] = Complexity(g, m, maxDepth)
	}
	return out
}

// Parallel returns the complexity of every active marker, dividing the
// active marker list across threads workers.
func Parallel(g *graph.Graph, maxDepth, threads int) map[graph.Marker]int {
	if threads <= 1 {
		return Sequential(g, maxDepth)
	}
	markers := g.Markers()
	parts := parallel.Map(len(markers), threads, func(r parallel.Range) map[graph.Marker]int {
		local := make(map[graph.Marker]int, r.Len())
		for _, m := range markers[r.Lo:r.Hi] {
			local[m] = Complexity(g, m, maxDepth)
		}
		return local
	})
	return merge(parts, len(markers))
}

// ParallelEnum is like [Parallel] but divides the dense id range
// [0, MaxMarker] instead of the active marker list, skipping ids that are
// masked or absent.
func ParallelEnum(g *graph.Graph, maxDepth, threads int) map[graph.Marker]int {
	total := int(g.MaxMarker()) + 1
	parts := parallel.Map(total, threads, func(r parallel.Range) map[graph.Marker]int {
		local := make(map[graph.Marker]int)
		for id := r.Lo; id < r.Hi; id++ {
			m := graph.Marker(id)
			if m == 0 {
				continue
			}
			if _, ok := g.Neighbors(graph.Head(m)); !ok {
				continue
			}
			local[m] = Complexity(g, m, maxDepth)
		}
		return local
	})
	return merge(parts, g.NumMarkers())
}

func merge(parts []map[graph.Marker]int, size int) map[graph.Marker]int {
	out := make(map[graph.Marker]int, size)
	for _, p := range parts {
		maps.Copy(out, p)
	}
	return out
}
