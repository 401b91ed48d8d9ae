package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
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

// isolate points the config and cache directories at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Cleanup(observability.Reset)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMeasureCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantMeasure  string
		wantAncestor string
	}{
		{"untrimmed", nil, "Number of markers: 4\nCarp index: 2\n", "b h\tc t\n"},
		{"trimmed", []string{"-s", "10"}, "Number of markers: 3\nCarp index: 2\n", ""},
		{"parallel", []string{"-t", "4"}, "Number of markers: 4\nCarp index: 2\n", "b h\tc t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			input := writeFile(t, dir, "branch.gfa", branchGFA)
			measure := filepath.Join(dir, "measure.txt")
			ancestor := filepath.Join(dir, "ancestral.txt")

			args := append([]string{"measure", "-m", measure, "-a", ancestor}, tt.args...)
			if _, err := execute(t, append(args, input)...); err != nil {
				t.Fatalf("measure error = %v", err)
			}
			if got := readFile(t, measure); got != tt.wantMeasure {
				t.Errorf("measure file = %q, want %q", got, tt.wantMeasure)
			}
			if got := readFile(t, ancestor); got != tt.wantAncestor {
				t.Errorf("ancestral file = %q, want %q", got, tt.wantAncestor)
			}
		})
	}
}

func TestMeasureCommandConfigOverride(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)
	config := writeFile(t, dir, "config.toml", "size_threshold = 10\n[cache]\nbackend = \"none\"\n")
	measure := filepath.Join(dir, "measure.txt")

	if _, err := execute(t, "measure", "--config", config, "-m", measure, input); err != nil {
		t.Fatalf("measure error = %v", err)
	}
	if got := readFile(t, measure); !strings.HasPrefix(got, "Number of markers: 3\n") {
		t.Errorf("config threshold: measure file = %q, want 3 markers", got)
	}

	if _, err := execute(t, "measure", "--config", config, "-s", "0", "-m", measure, input); err != nil {
		t.Fatalf("measure error = %v", err)
	}
	if got := readFile(t, measure); !strings.HasPrefix(got, "Number of markers: 4\n") {
		t.Errorf("flag override: measure file = %q, want 4 markers", got)
	}
}

func TestMeasureCommandErrors(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "one.gfa", branchGFA)
	writeFile(t, dir, "two.gfa", branchGFA)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"measure", filepath.Join(dir, "nope.gfa")}, errors.ErrCodeFileNotFound},
		{"empty glob", []string{"measure", filepath.Join(dir, "*.unimog")}, errors.ErrCodeFileNotFound},
		{"outputs with many inputs", []string{"measure", "-m", filepath.Join(dir, "m.txt"), filepath.Join(dir, "*.gfa")}, errors.ErrCodeInvalidOption},
		{"bad format", []string{"measure", "--format", "fasta", filepath.Join(dir, "one.gfa")}, errors.ErrCodeInvalidOption},
		{"bad threads", []string{"measure", "-t", "0", filepath.Join(dir, "one.gfa")}, errors.ErrCodeInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.gfa", "")
	writeFile(t, dir, "b.gfa", "")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested"), "c.gfa", "")
	writeFile(t, dir, "notes.txt", "")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"plain paths pass through", []string{"x.gfa", "-"}, []string{"x.gfa", "-"}},
		{"star", []string{filepath.Join(dir, "*.gfa")}, []string{
			filepath.Join(dir, "a.gfa"), filepath.Join(dir, "b.gfa"),
		}},
		{"doublestar", []string{filepath.Join(dir, "**", "*.gfa")}, []string{
			filepath.Join(dir, "a.gfa"), filepath.Join(dir, "b.gfa"), filepath.Join(dir, "nested", "c.gfa"),
		}},
		{"argument order kept", []string{"z.gfa", filepath.Join(dir, "*.gfa"), "-"}, []string{
			"z.gfa", filepath.Join(dir, "a.gfa"), filepath.Join(dir, "b.gfa"), "-",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandInputs(tt.args)
			if err != nil {
				t.Fatalf("expandInputs() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expandInputs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanCommandJSON(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)
	hist := filepath.Join(dir, "hist.tsv")

	run := func() scanSummary {
		t.Helper()
		out, err := execute(t, "scan", "-s", "10", "--json", "--histogram", hist, input)
		if err != nil {
			t.Fatalf("scan error = %v", err)
		}
		var s scanSummary
		if err := json.Unmarshal([]byte(out), &s); err != nil {
			t.Fatalf("decode summary %q: %v", out, err)
		}
		return s
	}

	first := run()
	if first.Markers != 3 {
		t.Errorf("Markers = %d, want 3", first.Markers)
	}
	if first.Cached {
		t.Error("first scan Cached = true, want false")
	}
	if _, err := uuid.Parse(first.RunID); err != nil {
		t.Errorf("RunID = %q, want a uuid", first.RunID)
	}
	if !slices.Equal(first.Selected, []string{"a", "c", "d"}) {
		t.Errorf("Selected = %v, want [a c d]", first.Selected)
	}
	if got := readFile(t, hist); got != "0\t2\n2\t1\n" {
		t.Errorf("histogram = %q, want %q", got, "0\t2\n2\t1\n")
	}

	second := run()
	if !second.Cached {
		t.Error("second scan Cached = false, want true")
	}
	if second.RunID == first.RunID {
		t.Error("RunID repeated across runs")
	}
	if second.Fingerprint != first.Fingerprint {
		t.Errorf("Fingerprint = %s, want %s", second.Fingerprint, first.Fingerprint)
	}
}

func TestScanCommandZeroFlags(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)

	tests := []struct {
		name     string
		args     []string
		context  int
		upper    float64
		selected []string
	}{
		{"zero context", []string{"-c", "0"}, 0, 1, []string{"a", "c", "d"}},
		{"zero upper", []string{"-u", "0"}, 500, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"scan", "-s", "10", "--no-cache", "--json"}, tt.args...)
			out, err := execute(t, append(args, input)...)
			if err != nil {
				t.Fatalf("scan error = %v", err)
			}
			var s scanSummary
			if err := json.Unmarshal([]byte(out), &s); err != nil {
				t.Fatalf("decode summary %q: %v", out, err)
			}
			if s.ContextLen != tt.context {
				t.Errorf("ContextLen = %v, want %v", s.ContextLen, tt.context)
			}
			if s.Upper != tt.upper {
				t.Errorf("Upper = %v, want %v", s.Upper, tt.upper)
			}
			if !slices.Equal(s.Selected, tt.selected) {
				t.Errorf("Selected = %v, want %v", s.Selected, tt.selected)
			}
		})
	}
}

func TestScanCommandOutputs(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)
	report := filepath.Join(dir, "report.tsv")
	annotated := filepath.Join(dir, "heat.gfa")

	if _, err := execute(t, "scan", "-s", "10", "--no-cache", "-l", "0.5", "--report", report, "--annotate", annotated, input); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if got, want := readFile(t, report), "#Node\tSCJ-CARP-measure in env\na\t2\n"; got != want {
		t.Errorf("report = %q, want %q", got, want)
	}
	if got := readFile(t, annotated); !strings.HasPrefix(got, "S\ta\t*\tLN:i:100\tCL:z:") {
		t.Errorf("annotated GFA = %q", got)
	}
}

func TestExtractCommand(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)
	out := filepath.Join(dir, "a.gfa")

	if _, err := execute(t, "extract", "-o", out, input, "a"); err != nil {
		t.Fatalf("extract error = %v", err)
	}
	got := readFile(t, out)
	for _, seg := range []string{"S\ta\t*\tLN:i:100\n", "S\tb\t*\tLN:i:5\n", "S\td\t*\tLN:i:100\n"} {
		if !strings.Contains(got, seg) {
			t.Errorf("partial GFA = %q, want segment %q", got, seg)
		}
	}

	if _, err := execute(t, "extract", input, "zz"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown marker error = %v, want NOT_FOUND", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "branch.gfa", branchGFA)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	cacheRoot := filepath.Join(dir, "cache", "carp")
	if strings.TrimSpace(out) != cacheRoot {
		t.Errorf("cache path = %q, want %q", out, cacheRoot)
	}

	if _, err := execute(t, "measure", input); err != nil {
		t.Fatalf("measure error = %v", err)
	}
	entries, _ := os.ReadDir(cacheRoot)
	if len(entries) == 0 {
		t.Fatal("measure left no cache entries")
	}

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	entries, _ = os.ReadDir(cacheRoot)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	want := filepath.Join(dir, "config", "carp", "config.toml")
	if strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", out, want)
	}

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("config init did not create %s: %v", want, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, "carp") {
		t.Error("bash completion does not mention carp")
	}
}
