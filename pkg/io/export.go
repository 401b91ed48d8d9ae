package io

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

// WriteMeasure writes the two-line measure summary.
func WriteMeasure(w io.Writer, markers, index int) error {
	_, err := fmt.Fprintf(w, "Number of markers: %d\nCarp index: %d\n", markers, index)
	return err
}

func endLetter(x graph.Extremity) string {
	if graph.IsTail(x) {
		return "t"
	}
	return "h"
}

// WriteAncestral writes one "name t|h<TAB>name t|h" line per adjacency,
// skipping telomere adjacencies and adjacencies of unnamed markers.
func WriteAncestral(w io.Writer, g *graph.Graph, adjs []graph.Adjacency) error {
	names := g.MarkerNames()
	sorted := slices.Clone(adjs)
	graph.SortAdjacencies(sorted)

	bw := bufio.NewWriter(w)
	for _, a := range sorted {
		if a.HasTelomere() {
			continue
		}
		nx, okx := names[graph.MarkerOf(a.X)]
		ny, oky := names[graph.MarkerOf(a.Y)]
		if !okx || !oky {
			continue
		}
		fmt.Fprintf(bw, "%s %s\t%s %s\n", nx, endLetter(a.X), ny, endLetter(a.Y))
	}
	return bw.Flush()
}

// WriteHistogram writes "complexity<TAB>count" lines in ascending order of
// complexity.
func WriteHistogram(w io.Writer, hist map[int]int) error {
	bw := bufio.NewWriter(w)
	for _, c := range slices.Sorted(maps.Keys(hist)) {
		fmt.Fprintf(bw, "%d\t%d\n", c, hist[c])
	}
	return bw.Flush()
}

// WritePercentileReport writes the header line followed by
// "name<TAB>complexity" for each selected marker, ordered by name.
func WritePercentileReport(w io.Writer, g *graph.Graph, selected []graph.Marker, complexity map[graph.Marker]int) error {
	names := g.MarkerNames()
	type row struct {
		name string
		c    int
	}
	rows := make([]row, 0, len(selected))
	for _, m := range selected {
		rows = append(rows, row{names[m], complexity[m]})
	}
	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(a.name, b.name) })

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "#Node\tSCJ-CARP-measure in env")
	for _, r := range rows {
		fmt.Fprintf(bw, "%s\t%d\n", r.name, r.c)
	}
	return bw.Flush()
}

// HeatColor maps c in [0, maxC] to an HTML color running from blue (low)
// to red (high).
func HeatColor(c, maxC int) string {
	red := 0
	if maxC > 0 {
		red = 255 * min(max(c, 0), maxC) / maxC
	}
	return fmt.Sprintf("#%02X00%02X", red, 255-red)
}

// linkOrientation returns the GFA orientations that read back as the
// adjacency (x, y).
func linkOrientation(x, y graph.Extremity) (string, string) {
	ox, oy := "+", "-"
	if graph.IsTail(x) {
		ox = "-"
	}
	if graph.IsTail(y) {
		oy = "+"
	}
	return ox, oy
}

func writeLinks(bw *bufio.Writer, names map[graph.Marker]string, adjs []graph.Adjacency) {
	for _, a := range adjs {
		if a.HasTelomere() {
			continue
		}
		nx, okx := names[graph.MarkerOf(a.X)]
		ny, oky := names[graph.MarkerOf(a.Y)]
		if !okx || !oky {
			continue
		}
		ox, oy := linkOrientation(a.X, a.Y)
		fmt.Fprintf(bw, "L\t%s\t%s\t%s\t%s\t0M\n", nx, ox, ny, oy)
	}
}

// WriteAnnotatedGFA writes every active marker as a segment tagged with its
// complexity (CM) and a heat color (CL), followed by every adjacency between
// markers as a link.
func WriteAnnotatedGFA(w io.Writer, g *graph.Graph, complexity map[graph.Marker]int) error {
	names := g.MarkerNames()
	maxC := 0
	for _, c := range complexity {
		maxC = max(maxC, c)
	}

	bw := bufio.NewWriter(w)
	for _, m := range g.Markers() {
		size, _ := g.NodeSize(m)
		c := complexity[m]
		fmt.Fprintf(bw, "S\t%s\t*\tLN:i:%d\tCL:z:%s\tCM:i:%d\n", names[m], size, HeatColor(c, maxC), c)
	}
	writeLinks(bw, names, g.Adjacencies())
	return bw.Flush()
}

// WritePartialGFA writes center and the markers touched by adjs as
// segments and adjs themselves as links, in id order.
func WritePartialGFA(w io.Writer, g *graph.Graph, center graph.Marker, adjs []graph.Adjacency) error {
	names := g.MarkerNames()
	sorted := slices.Clone(adjs)
	graph.SortAdjacencies(sorted)

	seen := map[graph.Marker]struct{}{center: {}}
	for _, a := range sorted {
		if a.HasTelomere() {
			continue
		}
		seen[graph.MarkerOf(a.X)] = struct{}{}
		seen[graph.MarkerOf(a.Y)] = struct{}{}
	}

	bw := bufio.NewWriter(w)
	for _, m := range slices.Sorted(maps.Keys(seen)) {
		name, ok := names[m]
		if !ok {
			continue
		}
		size, _ := g.NodeSize(m)
		fmt.Fprintf(bw, "S\t%s\t*\tLN:i:%d\n", name, size)
	}
	writeLinks(bw, names, sorted)
	return bw.Flush()
}

// Export creates path and fills it with write.
func Export(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
