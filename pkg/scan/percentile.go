package scan

import (
	"maps"
	"slices"

	"github.com/gi-bielefeld/scj-carp/pkg/graph"
)

// Histogram counts how many markers have each complexity value.
func Histogram(complexity map[graph.Marker]int) map[int]int {
	hist := make(map[int]int)
	for _, c := range complexity {
		hist[c]++
	}
	return hist
}

// Band is a half-open complexity interval [Low, High).
type Band struct {
	Low, High int
}

// Contains reports whether c lies in b.
func (b Band) Contains(c int) bool { return b.Low <= c && c < b.High }

// PercentileBand finds the complexity interval covering the markers between
// the lower and upper quantiles (fractions in [0, 1]).
//
// Complexity values are visited in ascending order with a running count of
// the markers seen before each value. A value is in the band iff that count
// is at least lower*N and below upper*N, where N is the number of markers.
// ok is false if no value qualifies.
func PercentileBand(complexity map[graph.Marker]int, lower, upper float64) (b Band, ok bool) {
	hist := Histogram(complexity)
	keys := slices.Sorted(maps.Keys(hist))
	n := float64(len(complexity))

	count := 0
	for _, c := range keys {
		highEnough := float64(count) >= lower*n
		notTooHigh := float64(count) < upper*n
		count += hist[c]
		if !notTooHigh {
			break
		}
		if highEnough {
			if !ok {
				b.Low = c
				ok = true
			}
			b.High = c + 1
		}
	}
	return b, ok
}

// TopPercentile returns, sorted by id, the markers whose complexity lies in
// the [PercentileBand] for lower and upper.
func TopPercentile(complexity map[graph.Marker]int, lower, upper float64) []graph.Marker {
	band, ok := PercentileBand(complexity, lower, upper)
	if !ok {
		return nil
	}
	var out []graph.Marker
	for m, c := range complexity {
		if band.Contains(c) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}
