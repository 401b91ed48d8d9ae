package pipeline

import (
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gi-bielefeld/scj-carp/pkg/cache"
	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/graph"
	"github.com/gi-bielefeld/scj-carp/pkg/observability"
)

// branchGFA is a chain a-b-c with a second branch a-d. Marker b is small.
const branchGFA = "S\ta\t*\tLN:i:100\n" +
	"S\tb\t*\tLN:i:5\n" +
	"S\tc\t*\tLN:i:100\n" +
	"S\td\t*\tLN:i:100\n" +
	"L\ta\t+\tb\t+\t0M\n" +
	"L\tb\t+\tc\t+\t0M\n" +
	"L\ta\t+\td\t+\t0M\n" +
	"P\tp\ta+,b+,c+\t*\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestLoad(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)

	tests := []struct {
		name      string
		threshold int
		threads   int
		want      []graph.Adjacency
		removed   int
	}{
		{"untrimmed", 0, 1, []graph.Adjacency{
			{X: 0, Y: 2}, {X: 0, Y: 7}, {X: 0, Y: 9}, {X: 3, Y: 4}, {X: 3, Y: 8}, {X: 5, Y: 6},
		}, 0},
		{"trimmed", 10, 1, []graph.Adjacency{
			{X: 0, Y: 2}, {X: 0, Y: 7}, {X: 0, Y: 9}, {X: 3, Y: 6}, {X: 3, Y: 8},
		}, 1},
		{"trimmed with threads", 10, 4, []graph.Adjacency{
			{X: 0, Y: 2}, {X: 0, Y: 7}, {X: 0, Y: 9}, {X: 3, Y: 6}, {X: 3, Y: 8},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testRunner(t, nil).Load(context.Background(), Options{
				Input: path, SizeThreshold: tt.threshold, Threads: tt.threads,
			})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := res.Graph.Adjacencies(); !slices.Equal(got, tt.want) {
				t.Errorf("Adjacencies() = %v, want %v", got, tt.want)
			}
			if res.Stats.Trim.Removed != tt.removed {
				t.Errorf("Removed = %d, want %d", res.Stats.Trim.Removed, tt.removed)
			}
			if res.Stats.Adjacencies != len(tt.want) {
				t.Errorf("Stats.Adjacencies = %d, want %d", res.Stats.Adjacencies, len(tt.want))
			}
			if res.Stats.TelomeresAdded != 1 {
				t.Errorf("TelomeresAdded = %d, want 1", res.Stats.TelomeresAdded)
			}
		})
	}
}

func TestLoadStrictOverlap(t *testing.T) {
	path := writeInput(t, "overlap.gfa", "S\ta\t*\tLN:i:100\nS\tb\t*\tLN:i:5\nL\ta\t+\tb\t+\t7M\n")
	r := testRunner(t, nil)

	_, err := r.Load(context.Background(), Options{Input: path, SizeThreshold: 10, StrictOverlap: true})
	if !errors.Is(err, errors.ErrCodeOverlap) {
		t.Errorf("strict Load() error = %v, want %s", err, errors.ErrCodeOverlap)
	}

	res, err := r.Load(context.Background(), Options{Input: path, SizeThreshold: 10})
	if err != nil {
		t.Fatalf("relaxed Load: %v", err)
	}
	if res.Graph.Overlap() != 0 {
		t.Errorf("Overlap() = %d, want 0 after relaxed trim", res.Graph.Overlap())
	}
}

func TestLoadUniMoGIgnoresThreshold(t *testing.T) {
	path := writeInput(t, "genomes.unimog", ">g\na b c |\n")
	res, err := testRunner(t, nil).Load(context.Background(), Options{Input: path, SizeThreshold: 50})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Stats.Markers != 3 {
		t.Errorf("Markers = %d, want 3", res.Stats.Markers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := testRunner(t, nil).Load(context.Background(), Options{Input: filepath.Join(t.TempDir(), "none.gfa")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestMeasure(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)
	for _, threads := range []int{1, 3} {
		res, err := testRunner(t, nil).Measure(context.Background(), Options{
			Input: path, SizeThreshold: 10, Threads: threads,
		})
		if err != nil {
			t.Fatalf("Measure: %v", err)
		}
		if got := res.Result.Index(); got != 2 {
			t.Errorf("threads=%d: Index() = %d, want 2", threads, got)
		}
		wantContested := []graph.Adjacency{{X: 3, Y: 6}, {X: 3, Y: 8}}
		if !slices.Equal(res.Result.Contested, wantContested) {
			t.Errorf("threads=%d: Contested = %v, want %v", threads, res.Result.Contested, wantContested)
		}
	}
}

func TestScanCachesComplexity(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	ctx := context.Background()
	opts := Options{Input: path, SizeThreshold: 10, ContextLen: Int(500), Threads: 2}

	first, err := r.Scan(ctx, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if first.CacheHit {
		t.Error("first Scan should miss the cache")
	}
	if len(first.Complexity) != 3 {
		t.Fatalf("Complexity covers %d markers, want 3", len(first.Complexity))
	}

	second, err := r.Scan(ctx, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !second.CacheHit {
		t.Error("second Scan should hit the cache")
	}
	if !maps.Equal(first.Complexity, second.Complexity) {
		t.Errorf("cached Complexity = %v, want %v", second.Complexity, first.Complexity)
	}

	opts.ContextLen = Int(60)
	third, err := r.Scan(ctx, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if third.CacheHit {
		t.Error("Scan with another context length should miss the cache")
	}

	opts.ContextLen = Int(500)
	opts.Refresh = true
	fourth, err := r.Scan(ctx, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if fourth.CacheHit {
		t.Error("Scan with Refresh should not read the cache")
	}
}

func TestScanSelection(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)

	tests := []struct {
		name     string
		lower    float64
		selected []graph.Marker
	}{
		{"everything", 0, []graph.Marker{1, 3, 4}},
		{"upper half", 0.5, []graph.Marker{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := testRunner(t, nil).Scan(context.Background(), Options{
				Input: path, SizeThreshold: 10, ContextLen: Int(500), Lower: tt.lower,
			})
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			// Only a sees both of its contested adjacencies; c and d reach
			// a through its tail and stop there.
			want := map[graph.Marker]int{1: 2, 3: 0, 4: 0}
			if !maps.Equal(res.Complexity, want) {
				t.Errorf("Complexity = %v, want %v", res.Complexity, want)
			}
			if !slices.Equal(res.Selected, tt.selected) {
				t.Errorf("Selected = %v, want %v", res.Selected, tt.selected)
			}
			if res.Histogram[0] != 2 || res.Histogram[2] != 1 {
				t.Errorf("Histogram = %v, want 0:2 2:1", res.Histogram)
			}
		})
	}
}

func TestScanZeroBounds(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)
	r := testRunner(t, nil)

	res, err := r.Scan(context.Background(), Options{Input: path, SizeThreshold: 10, ContextLen: Int(0)})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// Every marker is longer than twice the radius, so nothing is reached.
	want := map[graph.Marker]int{1: 0, 3: 0, 4: 0}
	if !maps.Equal(res.Complexity, want) {
		t.Errorf("Complexity = %v, want %v", res.Complexity, want)
	}

	res, err = r.Scan(context.Background(), Options{Input: path, SizeThreshold: 10, Upper: Float(0)})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.InBand || res.Selected != nil {
		t.Errorf("Scan(upper=0) = band %v, selected %v, want none", res.InBand, res.Selected)
	}
}

func TestExtractZeroContext(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)

	res, err := testRunner(t, nil).Extract(context.Background(), Options{
		Input: path, SizeThreshold: 10, Marker: "a", ContextLen: Int(0),
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Adjacencies) != 0 || res.Index != 0 {
		t.Errorf("Extract(context=0) = %v (index %d), want no adjacencies", res.Adjacencies, res.Index)
	}
}

func TestExtract(t *testing.T) {
	path := writeInput(t, "branch.gfa", branchGFA)
	r := testRunner(t, nil)
	ctx := context.Background()

	res, err := r.Extract(ctx, Options{Input: path, SizeThreshold: 10, Marker: "a"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []graph.Adjacency{{X: 0, Y: 2}, {X: 0, Y: 7}, {X: 0, Y: 9}, {X: 3, Y: 6}, {X: 3, Y: 8}}
	if !slices.Equal(res.Adjacencies, want) {
		t.Errorf("Adjacencies = %v, want %v", res.Adjacencies, want)
	}
	if res.Index != 2 {
		t.Errorf("Index = %d, want 2", res.Index)
	}

	for _, name := range []string{"zz", "b"} {
		_, err := r.Extract(ctx, Options{Input: path, SizeThreshold: 10, Marker: name})
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Extract(%q) error = %v, want %s", name, err, errors.ErrCodeNotFound)
		}
	}

	if _, err := r.Extract(ctx, Options{Input: path}); !errors.Is(err, errors.ErrCodeInvalidOption) {
		t.Errorf("Extract() without marker error = %v, want %s", err, errors.ErrCodeInvalidOption)
	}
}

func TestFingerprint(t *testing.T) {
	a := writeInput(t, "a.gfa", branchGFA)
	b := writeInput(t, "b.gfa", branchGFA+"L\tc\t+\td\t-\t0M\n")
	r := testRunner(t, nil)
	ctx := context.Background()

	la, err := r.Load(ctx, Options{Input: a})
	if err != nil {
		t.Fatal(err)
	}
	la2, err := r.Load(ctx, Options{Input: a})
	if err != nil {
		t.Fatal(err)
	}
	lb, err := r.Load(ctx, Options{Input: b})
	if err != nil {
		t.Fatal(err)
	}

	if Fingerprint(la.Graph) != Fingerprint(la2.Graph) {
		t.Error("Fingerprint should be deterministic")
	}
	if Fingerprint(la.Graph) == Fingerprint(lb.Graph) {
		t.Error("different graphs should have different fingerprints")
	}
	if len(Fingerprint(la.Graph)) != 64 {
		t.Errorf("len(Fingerprint()) = %d, want 64", len(Fingerprint(la.Graph)))
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.events = append(h.events, "load") }
func (h *recordingHooks) OnTrimComplete(context.Context, string, int, int, time.Duration) {
	h.events = append(h.events, "trim")
}
func (h *recordingHooks) OnScanComplete(context.Context, int, bool, time.Duration, error) {
	h.events = append(h.events, "scan")
}

func TestScanFiresHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	path := writeInput(t, "branch.gfa", branchGFA)
	if _, err := testRunner(t, nil).Scan(context.Background(), Options{Input: path, SizeThreshold: 10}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if want := []string{"load", "trim", "scan"}; !slices.Equal(h.events, want) {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}
