// Package measure computes the SCJ-CARP index of a rearrangement graph.
//
// Every adjacency is classified as contested (an ambiguous junction, one of
// its endpoints has another partner) or uncontested (a one-to-one junction,
// a candidate ancestral adjacency). The CARP index is the number of contested
// adjacencies.
//
// Classification rules:
//   - an adjacency touching the telomere is uncontested
//   - a self-adjacency (x, x) is contested
//   - otherwise an adjacency is contested iff either endpoint has degree > 1
//
// [Sequential] and [Partitioned] produce the same partition for any number of
// workers.
package measure

import (
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	"github.com/gi-bielefeld/scj-carp/pkg/parallel"
)

// Result partitions the adjacencies of a graph. Both slices are sorted by
// (X, Y) and disjoint; together they hold every adjacency exactly once.
type Result struct {
	Contested   []graph.Adjacency `json:"contested"`
	Uncontested []graph.Adjacency `json:"uncontested"`
}

// Index returns the CARP index, the number of contested adjacencies.
func (r *Result) Index() int { return len(r.Contested) }

// Measure classifies the adjacencies of g using threads workers. One thread
// runs [Sequential].
func Measure(g *graph.Graph, threads int) *Result {
	if threads <= 1 {
		return Sequential(g)
	}
	return Partitioned(g, threads)
}

// Sequential classifies adjacencies in a single pass over the extremities in
// ascending order. An adjacency first recorded as uncontested from one end is
// promoted when its other end turns out to have degree > 1.
func Sequential(g *graph.Graph) *Result {
	contested := make(map[graph.Adjacency]struct{})
	uncontested := make(map[graph.Adjacency]struct{})

	for _, x := range g.Extremities() {
		nbrs, _ := g.Neighbors(x)
		for _, y := range nbrs {
			a := graph.Canonicize(x, y)
			switch {
			case x == graph.Telomere:
				uncontested[a] = struct{}{}
			case y == graph.Telomere:
				// recorded from the telomere side
			case x == y || len(nbrs) > 1:
				contested[a] = struct{}{}
				delete(uncontested, a)
			default:
				if _, ok := contested[a]; !ok {
					uncontested[a] = struct{}{}
				}
			}
		}
	}
	return &Result{
		Contested:   sortedKeys(contested),
		Uncontested: sortedKeys(uncontested),
	}
}

// Partitioned classifies adjacencies across threads workers, each owning a
// contiguous slice of the extremities. A worker only emits adjacencies it
// owns according to [Owns], so no adjacency is emitted twice regardless of
// how the extremities are sliced.
func Partitioned(g *graph.Graph, threads int) *Result {
	xs := g.Extremities()
	parts := parallel.Map(len(xs), threads, func(r parallel.Range) Result {
		var out Result
		selfSeen := make(map[graph.Extremity]struct{})
		for _, x := range xs[r.Lo:r.Hi] {
			nbrs, _ := g.Neighbors(x)
			for _, y := range nbrs {
				if !Owns(x, y) {
					continue
				}
				a := graph.Canonicize(x, y)
				switch {
				case x == y:
					if _, ok := selfSeen[x]; ok {
						continue
					}
					selfSeen[x] = struct{}{}
					out.Contested = append(out.Contested, a)
				case a.HasTelomere():
					out.Uncontested = append(out.Uncontested, a)
				case len(nbrs) > 1 || degree(g, y) > 1:
					out.Contested = append(out.Contested, a)
				default:
					out.Uncontested = append(out.Uncontested, a)
				}
			}
		}
		return out
	})

	res := &Result{
		Contested:   []graph.Adjacency{},
		Uncontested: []graph.Adjacency{},
	}
	for _, p := range parts {
		res.Contested = append(res.Contested, p.Contested...)
		res.Uncontested = append(res.Uncontested, p.Uncontested...)
	}
	graph.SortAdjacencies(res.Contested)
	graph.SortAdjacencies(res.Uncontested)
	return res
}

func degree(g *graph.Graph, x graph.Extremity) int {
	d, _ := g.Degree(x)
	return d
}

// ownerHash is a small affine hash modulo a prime.
func ownerHash(x graph.Extremity) int {
	return (7727*int(x) + 7001) % 7919
}

// Owns reports whether the adjacency (x, y) is emitted from x's side. For
// x != y exactly one of Owns(x, y) and Owns(y, x) is true.
func Owns(x, y graph.Extremity) bool {
	hx, hy := ownerHash(x), ownerHash(y)
	return hx < hy || (hx == hy && x <= y)
}

// FromAdjacencies counts the contested members of an already materialized,
// duplicate-free adjacency set. Degrees are taken within the set itself, a
// self-adjacency counting twice. Adjacencies touching the telomere are never
// counted.
func FromAdjacencies(adjs []graph.Adjacency) int {
	deg := make(map[graph.Extremity]int, 2*len(adjs))
	for _, a := range adjs {
		deg[a.X]++
		deg[a.Y]++
	}
	n := 0
	for _, a := range adjs {
		if a.HasTelomere() {
			continue
		}
		if deg[a.X] > 1 || deg[a.Y] > 1 {
			n++
		}
	}
	return n
}

func sortedKeys(set map[graph.Adjacency]struct{}) []graph.Adjacency {
	out := make([]graph.Adjacency, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	graph.SortAdjacencies(out)
	return out
}
