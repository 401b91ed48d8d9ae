package graph_test

import (
	"fmt"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

func ExampleFromRaw() {
	// Two markers on one linear chromosome: telomere - A - B - telomere
	raw := graph.NewRaw()
	a := raw.AddMarker("A", 120)
	b := raw.AddMarker("B", 80)
	raw.AddAdjacency(graph.Head(a), graph.Tail(b))
	raw.AddTelomere("A", true)
	raw.AddTelomere("B", false)

	g, err := graph.FromRaw(raw)
	if err != nil {
		panic(err)
	}
	fmt.Println("Markers:", g.NumMarkers())
	fmt.Println("Extremities:", g.NumExtremities())
	fmt.Println("Adjacencies:", g.Adjacencies())
	// Output:
	// Markers: 2
	// Extremities: 5
	// Adjacencies: [telomere-1t telomere-2h 1h-2t]
}

func ExampleGraph_Trim() {
	// A three-marker cycle; the smallest marker is spliced out.
	raw := graph.NewRaw()
	m1 := raw.AddMarker("1", 3)
	m2 := raw.AddMarker("2", 2)
	m3 := raw.AddMarker("3", 1)
	raw.AddAdjacency(graph.Head(m1), graph.Tail(m2))
	raw.AddAdjacency(graph.Head(m2), graph.Tail(m3))
	raw.AddAdjacency(graph.Head(m3), graph.Tail(m1))

	g, _ := graph.FromRaw(raw)
	stats, _ := g.Trim(2, graph.TrimOptions{})
	fmt.Println("Removed:", stats.Removed)
	fmt.Println("Adjacencies:", g.Adjacencies())
	// Output:
	// Removed: 1
	// Adjacencies: [1t-2h 1h-2t]
}
