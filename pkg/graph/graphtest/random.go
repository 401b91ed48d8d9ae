package graphtest

import (
	"fmt"
	"math/rand"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

// RandomRaw returns a raw triple with markers named "m1".."m<markers>",
// sizes in [0, maxSize) and edges random adjacencies. Roughly one edge in
// twenty touches the telomere and one in fifty is a self-adjacency.
func RandomRaw(rng *rand.Rand, markers, edges, maxSize int) *graph.Raw {
	raw := graph.NewRaw()
	for i := 1; i <= markers; i++ {
		raw.AddMarker(fmt.Sprintf("m%d", i), rng.Intn(maxSize))
	}
	if markers == 0 {
		return raw
	}
	ext := func() graph.Extremity {
		return graph.Extremity(2 + rng.Intn(2*markers))
	}
	for i := 0; i < edges; i++ {
		x := ext()
		switch r := rng.Intn(100); {
		case r < 5:
			raw.AddAdjacency(graph.Telomere, x)
		case r < 7:
			raw.AddAdjacency(x, x)
		default:
			raw.AddAdjacency(x, ext())
		}
	}
	return raw
}

// RandomGenomes returns the raw triple of genomes sampled as random
// arrangements of the same marker set. Each genome is cut into chromosomes
// that are linear or, with probability 1/4, circular. Marker orientations are
// random.
func RandomGenomes(rng *rand.Rand, markers, genomes, maxSize int) *graph.Raw {
	raw := graph.NewRaw()
	ids := make([]graph.Marker, markers)
	for i := range ids {
		ids[i] = raw.AddMarker(fmt.Sprintf("g%d", i+1), rng.Intn(maxSize))
	}
	for g := 0; g < genomes; g++ {
		perm := rng.Perm(markers)
		for lo := 0; lo < markers; {
			hi := min(markers, lo+1+rng.Intn(max(1, markers/3)))
			chrom := make([]graph.Extremity, 0, 2*(hi-lo))
			for _, p := range perm[lo:hi] {
				m := ids[p]
				if rng.Intn(2) == 0 {
					chrom = append(chrom, graph.Tail(m), graph.Head(m))
				} else {
					chrom = append(chrom, graph.Head(m), graph.Tail(m))
				}
			}
			for i := 1; i+1 < len(chrom); i += 2 {
				raw.AddAdjacency(chrom[i], chrom[i+1])
			}
			if rng.Intn(4) == 0 {
				raw.AddAdjacency(chrom[len(chrom)-1], chrom[0])
			} else {
				raw.AddAdjacency(graph.Telomere, chrom[0])
				raw.AddAdjacency(graph.Telomere, chrom[len(chrom)-1])
			}
			lo = hi
		}
	}
	return raw
}

// MustBuild builds a graph from raw and panics on error.
func MustBuild(raw *graph.Raw) *graph.Graph {
	g, err := graph.FromRaw(raw)
	if err != nil {
		panic(err)
	}
	return g
}
