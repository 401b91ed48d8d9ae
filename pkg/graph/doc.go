// Package graph provides the array-backed genome rearrangement graph used by
// every analysis in scj-carp.
//
// # Overview
//
// Nodes of a rearrangement graph are marker extremities: the head and tail of
// each genomic marker, plus one sentinel, the [Telomere], that stands for every
// chromosome end. Edges are adjacencies observed between extremities across a
// set of related genomes. The package stores this graph in dense slices
// indexed directly by extremity id, so degree and neighbor queries are O(1)
// slice accesses with no hashing.
//
// # Extremity Encoding
//
// The tail of marker m is 2m and its head is 2m+1. [MarkerOf], [IsTail],
// [Other] and [Canonicize] are pure arithmetic. Extremity 0 is the telomere and
// extremity 1 is never used, because marker 0 does not exist.
//
// # Building a Graph
//
// Parsers produce a [Raw] triple (sizes, symmetric adjacency sets, and a
// name table). [FromRaw] turns it into a [Graph]:
//
//	raw := graph.NewRaw()
//	a := raw.AddMarker("A", 10)
//	b := raw.AddMarker("B", 4)
//	raw.AddAdjacency(graph.Head(a), graph.Tail(b))
//	g, err := graph.FromRaw(raw)
//
// Marker ids without a name are masked at construction, so a sparse id space
// never exposes phantom markers.
//
// # Masking
//
// Markers removed by trimming are not deallocated. Their id stays reserved,
// their two neighbor lists are cleared and the marker is flagged as masked.
// Marker-facing queries ([Graph.Degree], [Graph.Neighbors], [Graph.NodeSize],
// [Graph.NameToMarker]) report masked markers as absent. Indices never shift,
// since extremity ids are derived from marker ids.
//
// # Self-Adjacencies
//
// An adjacency (x, x) is stored twice in the neighbor list of x, so it counts
// as degree 2. [Graph.Adjacencies] still reports it once.
//
// # Telomere Completion and Trimming
//
// [Graph.FillTelomeres] links every bare marker end to the telomere.
// [Graph.Trim] contracts markers smaller than a threshold, splicing their
// neighbors together so that chromosome paths stay connected. Trimming runs
// either sequentially or partitioned across workers; both strategies produce
// the same graph.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Once construction, completion
// and trimming are done it is read-only, and any number of goroutines may query
// it concurrently.
package graph
