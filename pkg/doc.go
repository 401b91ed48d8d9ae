// Package pkg provides the core libraries for SCJ-CARP genome graph analysis.
//
// # Overview
//
// SCJ-CARP scores how rearranged a set of genomes is. Genomes are read as a
// genome graph whose vertices are marker extremities and whose edges are
// adjacencies. An adjacency is contested when either of its extremities has
// more than one neighbor; the number of contested adjacencies is the CARP
// index. The pkg directory is organized into three areas:
//
//  1. Engine - [graph], [measure], [scan], [parallel]
//  2. Input and output - [io]
//  3. Infrastructure - [pipeline], [cache], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow through carp:
//
//	GFA / UniMoG file (optionally gzip or zstd)
//	         ↓
//	    [io] package (parse into a graph.Raw)
//	         ↓
//	    [graph] package (dense graph, telomere completion, trimming)
//	         ↓
//	    [measure] / [scan] packages (CARP index, per-marker complexity)
//	         ↓
//	    measure, ancestral, histogram, report and GFA outputs
//
// # Quick Start
//
// Measure a GFA file:
//
//	import (
//	    "github.com/gi-bielefeld/scj-carp/pkg/graph"
//	    pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
//	    "github.com/gi-bielefeld/scj-carp/pkg/measure"
//	)
//
//	// 1. Parse
//	raw, _ := pkgio.ImportGFA("pangenome.gfa")
//
//	// 2. Build and close the graph
//	g, _ := graph.FromRaw(raw)
//	g.FillTelomeres()
//
//	// 3. Contract short markers
//	g.Trim(100, graph.TrimOptions{Threads: 4})
//	g.FillTelomeres()
//
//	// 4. Measure
//	res := measure.Measure(g, 4)
//	fmt.Println(res.Index())
//
// [pipeline.Runner] wraps these steps with caching and logging and is what
// the carp command uses.
//
// # Main Packages
//
// [graph] - Dense genome graph indexed by extremity id. Holds marker sizes
// and names, adds telomere adjacencies and removes markers below a size
// threshold, either sequentially or split across workers.
//
// [measure] - Classifies every adjacency as contested or uncontested.
//
// [scan] - Size-weighted neighborhood search around a marker, per-marker
// complexity over the whole graph, histograms and percentile selection.
//
// [parallel] - Fork-join helpers that split an id range across workers.
//
// [io] - GFA 1.0 and UniMoG readers, transparent decompression and the
// writers for every output file.
//
// [pipeline] - Load, measure, scan and extract stages shared by all entry
// points, with results cached by graph fingerprint.
//
// [cache] - Cache interface with file, Redis and null backends.
//
// [observability] - Hook interfaces for pipeline and cache events.
//
// [graph]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/graph
// [measure]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/measure
// [scan]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/scan
// [parallel]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/parallel
// [io]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/cache
// [observability]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/observability
// [errors]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/gi-bielefeld/scj-carp/pkg/buildinfo
package pkg
