// Package graphtest provides a hash-map reference graph and random input
// generators for cross-checking [graph.Graph] in tests.
//
// The reference graph is deliberately naive: adjacency sets keyed by
// extremity and a marker-at-a-time cross-product splice for trimming. It
// shares no code with the production store.
package graphtest

import (
	"slices"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

// Reference is a hash-map keyed rearrangement graph.
type Reference struct {
	sizes map[graph.Marker]int
	adj   map[graph.Extremity]map[graph.Extremity]struct{}
}

// NewReference builds a reference graph from raw, registering telomere ends
// and dropping markers without a name.
func NewReference(raw *graph.Raw) *Reference {
	r := &Reference{
		sizes: make(map[graph.Marker]int),
		adj:   make(map[graph.Extremity]map[graph.Extremity]struct{}),
	}
	for _, m := range raw.Names {
		r.sizes[m] = raw.Sizes[m]
		r.adj[graph.Tail(m)] = make(map[graph.Extremity]struct{})
		r.adj[graph.Head(m)] = make(map[graph.Extremity]struct{})
	}
	r.adj[graph.Telomere] = make(map[graph.Extremity]struct{})
	for x, set := range raw.Adjacencies {
		for y := range set {
			r.link(x, y)
		}
	}
	for _, te := range raw.Telomeres {
		m := raw.Names[te.Name]
		x := graph.Head(m)
		if te.IsTail {
			x = graph.Tail(m)
		}
		r.link(graph.Telomere, x)
	}
	return r
}

func (r *Reference) link(x, y graph.Extremity) {
	if x == graph.Telomere && y == graph.Telomere {
		return
	}
	sx, okx := r.adj[x]
	sy, oky := r.adj[y]
	if !okx || !oky {
		return
	}
	sx[y] = struct{}{}
	sy[x] = struct{}{}
}

func (r *Reference) unlink(x, y graph.Extremity) {
	delete(r.adj[x], y)
	delete(r.adj[y], x)
}

// Degree returns the degree of x, counting a self-adjacency twice.
func (r *Reference) Degree(x graph.Extremity) (int, bool) {
	set, ok := r.adj[x]
	if !ok {
		return 0, false
	}
	d := len(set)
	if _, self := set[x]; self {
		d++
	}
	return d, true
}

// FillTelomeres links bare marker ends to the telomere.
func (r *Reference) FillTelomeres() {
	for m := range r.sizes {
		for _, x := range []graph.Extremity{graph.Tail(m), graph.Head(m)} {
			if len(r.adj[x]) == 0 {
				r.link(graph.Telomere, x)
			}
		}
	}
}

// Trim removes markers smaller than minSize in ascending id order. Each
// removal connects every tail neighbor with every head neighbor; a
// self-adjacency on the head also connects tail neighbors pairwise, and
// symmetrically for the tail.
func (r *Reference) Trim(minSize int) {
	ids := make([]graph.Marker, 0, len(r.sizes))
	for m := range r.sizes {
		ids = append(ids, m)
	}
	slices.Sort(ids)

	for _, m := range ids {
		if r.sizes[m] >= minSize {
			continue
		}
		t, h := graph.Tail(m), graph.Head(m)
		nt := r.outside(t, m)
		nh := r.outside(h, m)
		_, tailLoop := r.adj[t][t]
		_, headLoop := r.adj[h][h]

		for _, a := range nt {
			for _, b := range nh {
				r.link(a, b)
			}
		}
		if headLoop {
			r.cross(nt)
		}
		if tailLoop {
			r.cross(nh)
		}

		for y := range r.adj[t] {
			r.unlink(t, y)
		}
		for y := range r.adj[h] {
			r.unlink(h, y)
		}
		delete(r.adj, t)
		delete(r.adj, h)
		delete(r.sizes, m)
	}
}

func (r *Reference) cross(xs []graph.Extremity) {
	for _, a := range xs {
		for _, b := range xs {
			r.link(a, b)
		}
	}
}

// outside lists neighbors of x that do not belong to m.
func (r *Reference) outside(x graph.Extremity, m graph.Marker) []graph.Extremity {
	var out []graph.Extremity
	for y := range r.adj[x] {
		if y == graph.Telomere || graph.MarkerOf(y) != m {
			out = append(out, y)
		}
	}
	return out
}

// Adjacencies returns the canonical adjacency set sorted by (X, Y).
func (r *Reference) Adjacencies() []graph.Adjacency {
	var out []graph.Adjacency
	for x, set := range r.adj {
		for y := range set {
			if x <= y {
				out = append(out, graph.Adjacency{X: x, Y: y})
			}
		}
	}
	graph.SortAdjacencies(out)
	return out
}

// Sizes returns the surviving markers with their sizes.
func (r *Reference) Sizes() map[graph.Marker]int {
	out := make(map[graph.Marker]int, len(r.sizes))
	for m, s := range r.sizes {
		out[m] = s
	}
	return out
}

// NumMarkers returns the number of surviving markers.
func (r *Reference) NumMarkers() int { return len(r.sizes) }
