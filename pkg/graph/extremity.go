package graph

import (
	"cmp"
	"fmt"
	"slices"
)

// Marker identifies a genomic marker. Real markers have ids >= 1; id 0 is
// reserved and never names a marker.
type Marker int

// Extremity identifies one end of a marker. The tail of marker m is 2m and
// the head is 2m+1, so extremity ids are derived arithmetically from marker
// ids and never need a lookup table.
type Extremity int

// Telomere is the sentinel extremity representing a chromosome end. It belongs
// to no marker and is exempt from the size and masking rules of real markers.
const Telomere Extremity = 0

// Adjacency is an unordered pair of extremities. Values produced by this
// package are always canonical (X <= Y), which makes them usable as map keys.
type Adjacency struct {
	X, Y Extremity
}

// Tail returns the tail extremity of m.
func Tail(m Marker) Extremity { return Extremity(2 * m) }

// Head returns the head extremity of m.
func Head(m Marker) Extremity { return Extremity(2*m + 1) }

// MarkerOf returns the marker that x belongs to. The telomere maps to 0.
func MarkerOf(x Extremity) Marker { return Marker(x / 2) }

// IsTail reports whether x is a tail extremity. The telomere counts as a tail.
func IsTail(x Extremity) bool { return x%2 == 0 }

// Other returns the opposite end of the marker x belongs to.
// Other(Telomere) is Telomere.
func Other(x Extremity) Extremity {
	if x == Telomere {
		return Telomere
	}
	return x ^ 1
}

// Canonicize returns the adjacency between x and y with its endpoints in
// numeric order.
func Canonicize(x, y Extremity) Adjacency {
	if y < x {
		return Adjacency{X: y, Y: x}
	}
	return Adjacency{X: x, Y: y}
}

// IsSelf reports whether a connects an extremity to itself.
func (a Adjacency) IsSelf() bool { return a.X == a.Y }

// HasTelomere reports whether either endpoint of a is the telomere.
func (a Adjacency) HasTelomere() bool { return a.X == Telomere || a.Y == Telomere }

// String formats an extremity as "<marker>t" or "<marker>h".
func (x Extremity) String() string {
	if x == Telomere {
		return "telomere"
	}
	if IsTail(x) {
		return fmt.Sprintf("%dt", MarkerOf(x))
	}
	return fmt.Sprintf("%dh", MarkerOf(x))
}

func (a Adjacency) String() string {
	return a.X.String() + "-" + a.Y.String()
}

// CompareAdjacency orders adjacencies by (X, Y).
func CompareAdjacency(a, b Adjacency) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// SortAdjacencies sorts adjs in place by (X, Y).
func SortAdjacencies(adjs []Adjacency) {
	slices.SortFunc(adjs, CompareAdjacency)
}
