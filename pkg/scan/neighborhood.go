package scan

import (
	"container/heap"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	"github.com/gi-bielefeld/scj-carp/pkg/measure"
)

// frontierEntry is a reachable extremity and the size-weighted distance at
// which it was reached.
type frontierEntry struct {
	cost int
	x    graph.Extremity
}

// frontier is a min-heap ordered by (cost, extremity).
type frontier []frontierEntry

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].x < f[j].x
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(v any)   { *f = append(*f, v.(frontierEntry)) }
func (f *frontier) Pop() any {
	old := *f
	e := old[len(old)-1]
	*f = old[:len(old)-1]
	return e
}

// Neighborhood returns every adjacency discovered by a size-weighted
// shortest-path search of radius maxDepth around marker m, sorted by (X, Y).
//
// Both ends of m start at half its size. Crossing into another marker adds
// that marker's full size. Every adjacency of an expanded extremity is
// recorded, including ones leading past the radius; the telomere is recorded
// but never expanded. An unknown or masked marker, or one whose half size
// already exceeds maxDepth, has an empty neighborhood.
func Neighborhood(g *graph.Graph, m graph.Marker, maxDepth int) []graph.Adjacency {
	size, ok := g.NodeSize(m)
	if !ok {
		return nil
	}
	start := size / 2
	if start > maxDepth {
		return nil
	}

	dist := map[graph.Extremity]int{
		graph.Tail(m): start,
		graph.Head(m): start,
	}
	pq := &frontier{{cost: start, x: graph.Tail(m)}, {cost: start, x: graph.Head(m)}}
	heap.Init(pq)

	found := make(map[graph.Adjacency]struct{})
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(frontierEntry)
		if cur.cost > dist[cur.x] {
			continue
		}
		nbrs, _ := g.Neighbors(cur.x)
		for _, y := range nbrs {
			found[graph.Canonicize(cur.x, y)] = struct{}{}
			if y == graph.Telomere {
				continue
			}
			step, ok := g.NodeSize(graph.MarkerOf(y))
			if !ok {
				step = 1
			}
			next := cur.cost + step
			exit := graph.Other(y)
			if best, seen := dist[exit]; next <= maxDepth && (!seen || next < best) {
				dist[exit] = next
				heap.Push(pq, frontierEntry{cost: next, x: exit})
			}
		}
	}

	out := make([]graph.Adjacency, 0, len(found))
	for a := range found {
		out = append(out, a)
	}
	graph.SortAdjacencies(out)
	return out
}

// Complexity returns the CARP index of the neighborhood of m at radius
// maxDepth.
func Complexity(g *graph.Graph, m graph.Marker, maxDepth int) int {
	return measure.FromAdjacencies(Neighborhood(g, m, maxDepth))
}
