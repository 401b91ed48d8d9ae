package graph

import (
	"slices"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
)

// Graph is an extremity-indexed rearrangement graph with soft-delete masking.
//
// Storage is dense: sizes and masked are indexed by marker id, adj by
// extremity id. Masked markers keep their slots (tombstones) with empty
// neighbor lists. The zero value is an empty graph; use [FromRaw] to build one
// from parsed input.
type Graph struct {
	sizes  []int
	adj    [][]Extremity
	masked []bool
	names  map[string]Marker

	active  int
	overlap int
}

// FromRaw builds a Graph from a parsed triple.
//
// Dense arrays are sized to the largest id seen anywhere in raw. Ids that have
// no entry in the name table are masked, and adjacencies touching them are
// dropped so the surviving graph stays symmetric. Telomere ends in
// raw.Telomeres are registered as explicit adjacencies to the telomere.
//
// FromRaw fails with an INVALID_INPUT error when the triple is inconsistent:
// a non-positive or shared marker id, a negative size, a reserved extremity,
// or a telomere end naming an unknown marker.
func FromRaw(raw *Raw) (*Graph, error) {
	maxM := Marker(0)
	byID := make(map[Marker]string, len(raw.Names))
	for name, m := range raw.Names {
		if m < 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "marker %q has invalid id %d", name, m)
		}
		if prev, ok := byID[m]; ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "markers %q and %q share id %d", prev, name, m)
		}
		byID[m] = name
		maxM = max(maxM, m)
	}
	for m, size := range raw.Sizes {
		if size < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "marker %d has negative size %d", m, size)
		}
		maxM = max(maxM, m)
	}

	pairs := make([]Adjacency, 0, 2*len(raw.Adjacencies))
	for x, set := range raw.Adjacencies {
		if err := checkExtremity(x); err != nil {
			return nil, err
		}
		for y := range set {
			if err := checkExtremity(y); err != nil {
				return nil, err
			}
			if x == Telomere && y == Telomere {
				continue
			}
			maxM = max(maxM, MarkerOf(x), MarkerOf(y))
			pairs = append(pairs, Canonicize(x, y))
		}
	}
	for _, te := range raw.Telomeres {
		m, ok := raw.Names[te.Name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "telomere end references unknown segment %q", te.Name)
		}
		x := Head(m)
		if te.IsTail {
			x = Tail(m)
		}
		pairs = append(pairs, Adjacency{X: Telomere, Y: x})
	}

	g := &Graph{
		sizes:   make([]int, maxM+1),
		adj:     make([][]Extremity, 2*(maxM+1)),
		masked:  make([]bool, maxM+1),
		names:   make(map[string]Marker, len(raw.Names)),
		overlap: raw.Overlap,
	}
	for m, size := range raw.Sizes {
		g.sizes[m] = size
	}
	for m := Marker(0); m <= maxM; m++ {
		if _, ok := byID[m]; !ok {
			g.masked[m] = true
		}
	}
	for name, m := range raw.Names {
		g.names[name] = m
	}
	g.active = len(byID)

	// Sorted pairs fill every list in ascending order, with the two entries
	// of a self-adjacency next to each other.
	SortAdjacencies(pairs)
	pairs = slices.Compact(pairs)
	for _, a := range pairs {
		if !g.holds(a.X) || !g.holds(a.Y) {
			continue
		}
		if a.IsSelf() {
			g.adj[a.X] = append(g.adj[a.X], a.X, a.X)
			continue
		}
		g.adj[a.X] = append(g.adj[a.X], a.Y)
		g.adj[a.Y] = append(g.adj[a.Y], a.X)
	}
	return g, nil
}

func checkExtremity(x Extremity) error {
	if x < 0 || x == Head(0) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid extremity id %d", x)
	}
	return nil
}

// holds reports whether x may carry adjacencies: it is the telomere or an end
// of an unmasked marker.
func (g *Graph) holds(x Extremity) bool {
	if x == Telomere {
		return true
	}
	if x < 0 || int(x) >= len(g.adj) {
		return false
	}
	return !g.masked[MarkerOf(x)]
}

// IsActive reports whether m is a real, unmasked marker.
func (g *Graph) IsActive(m Marker) bool {
	return m > 0 && int(m) < len(g.masked) && !g.masked[m]
}

// MaxMarker returns the largest marker id the graph has storage for,
// masked or not.
func (g *Graph) MaxMarker() Marker {
	if len(g.sizes) == 0 {
		return 0
	}
	return Marker(len(g.sizes) - 1)
}

// Degree returns the number of neighbor-list entries of x. A self-adjacency
// counts twice. ok is false if x belongs to a masked or unknown marker; the
// telomere always has a degree.
func (g *Graph) Degree(x Extremity) (deg int, ok bool) {
	if !g.holds(x) {
		return 0, false
	}
	if int(x) >= len(g.adj) {
		return 0, true
	}
	return len(g.adj[x]), true
}

// Neighbors returns the neighbor list of x under the same masking rule as
// [Graph.Degree]. The returned slice is owned by the graph and must not be
// modified.
func (g *Graph) Neighbors(x Extremity) ([]Extremity, bool) {
	if !g.holds(x) {
		return nil, false
	}
	if int(x) >= len(g.adj) {
		return nil, true
	}
	return g.adj[x], true
}

// NodeSize returns the size of m. ok is false for the telomere marker and for
// masked or unknown markers.
func (g *Graph) NodeSize(m Marker) (size int, ok bool) {
	if !g.IsActive(m) {
		return 0, false
	}
	return g.sizes[m], true
}

// Markers returns the active markers in ascending id order.
func (g *Graph) Markers() []Marker {
	out := make([]Marker, 0, g.active)
	for m := 1; m < len(g.masked); m++ {
		if !g.masked[m] {
			out = append(out, Marker(m))
		}
	}
	return out
}

// Extremities returns the telomere followed by both ends of every active
// marker, in ascending id order.
func (g *Graph) Extremities() []Extremity {
	out := make([]Extremity, 0, 2*g.active+1)
	out = append(out, Telomere)
	for m := 1; m < len(g.masked); m++ {
		if !g.masked[m] {
			out = append(out, Tail(Marker(m)), Head(Marker(m)))
		}
	}
	return out
}

// Adjacencies returns every adjacency exactly once in canonical form, sorted
// by (X, Y).
func (g *Graph) Adjacencies() []Adjacency {
	var out []Adjacency
	for _, x := range g.Extremities() {
		var self bool
		nbrs, _ := g.Neighbors(x)
		for _, y := range nbrs {
			switch {
			case y < x:
			case y == x:
				if !self {
					self = true
					out = append(out, Adjacency{X: x, Y: x})
				}
			default:
				out = append(out, Adjacency{X: x, Y: y})
			}
		}
	}
	SortAdjacencies(out)
	return out
}

// NumMarkers returns the number of active markers.
func (g *Graph) NumMarkers() int { return g.active }

// NumExtremities returns twice the number of active markers, plus one if the
// telomere has any neighbor.
func (g *Graph) NumExtremities() int {
	n := 2 * g.active
	if len(g.adj) > 0 && len(g.adj[Telomere]) > 0 {
		n++
	}
	return n
}

// NameToMarker returns the active marker called name.
func (g *Graph) NameToMarker(name string) (Marker, bool) {
	m, ok := g.names[name]
	if !ok || !g.IsActive(m) {
		return 0, false
	}
	return m, true
}

// MarkerNames returns the reverse name table restricted to active markers.
func (g *Graph) MarkerNames() map[Marker]string {
	out := make(map[Marker]string, g.active)
	for name, m := range g.names {
		if g.IsActive(m) {
			out[m] = name
		}
	}
	return out
}

// Overlap returns the uniform overlap length recorded for linked segments.
func (g *Graph) Overlap() int { return g.overlap }

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		sizes:   slices.Clone(g.sizes),
		adj:     make([][]Extremity, len(g.adj)),
		masked:  slices.Clone(g.masked),
		names:   make(map[string]Marker, len(g.names)),
		active:  g.active,
		overlap: g.overlap,
	}
	for i, l := range g.adj {
		c.adj[i] = slices.Clone(l)
	}
	for k, v := range g.names {
		c.names[k] = v
	}
	return c
}
