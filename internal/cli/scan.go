package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
	"github.com/gi-bielefeld/scj-carp/pkg/pipeline"
)

// scanFlags holds flags for the scan command.
type scanFlags struct {
	opts      pipeline.Options
	histogram string
	annotate  string
	report    string
	noCache   bool
	json      bool
}

// scanSummary is the machine-readable output of a scan.
type scanSummary struct {
	RunID       string        `json:"run_id"`
	Input       string        `json:"input"`
	Fingerprint string        `json:"fingerprint"`
	Markers     int           `json:"markers"`
	ContextLen  int           `json:"context_len"`
	Lower       float64       `json:"lower"`
	Upper       float64       `json:"upper"`
	BandLow     *int          `json:"band_low,omitempty"`
	BandHigh    *int          `json:"band_high,omitempty"`
	Selected    []string      `json:"selected"`
	Histogram   map[int]int   `json:"histogram"`
	Cached      bool          `json:"cached"`
	Duration    time.Duration `json:"duration_ns"`
}

// scanCommand creates the scan command for per-marker complexity.
func (c *CLI) scanCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <input>",
		Short: "Compute the local complexity around every marker",
		Long: `Compute, for every marker, the CARP index of its neighborhood within the
context length, then select the markers whose complexity falls between the
lower and upper percentiles.

Complexities are cached per graph and context length; --no-cache forces a
fresh computation.`,
		Example: `  carp scan -c 1000 --histogram hist.tsv pangenome.gfa
  carp scan -l 0.9 --report top.tsv --annotate heat.gfa pangenome.gfa
  carp scan --json pangenome.gfa.zst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.opts.SizeThreshold, "size-thresh", "s", 0, "contract markers shorter than this")
	flags.opts.ContextLen = new(int)
	cmd.Flags().IntVarP(flags.opts.ContextLen, "context-len", "c", pipeline.DefaultContextLen, "neighborhood radius in base pairs")
	cmd.Flags().Float64VarP(&flags.opts.Lower, "lower", "l", 0, "lower percentile in [0, 1]")
	flags.opts.Upper = new(float64)
	cmd.Flags().Float64VarP(flags.opts.Upper, "upper", "u", pipeline.DefaultUpper, "upper percentile in [0, 1]")
	cmd.Flags().BoolVar(&flags.opts.StrictOverlap, "strict-overlap", false, "fail instead of warning when trimming a graph with overlaps")
	cmd.Flags().StringVar(&flags.opts.Format, "format", "", "input format: gfa or unimog (default: by extension)")
	cmd.Flags().StringVar(&flags.histogram, "histogram", "", "write the complexity histogram to file")
	cmd.Flags().StringVar(&flags.annotate, "annotate", "", "write a GFA with segments colored by complexity")
	cmd.Flags().StringVar(&flags.report, "report", "", "write the selected markers to file")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print a JSON summary instead of styled output")

	return cmd
}

func (c *CLI) runScan(cmd *cobra.Command, input string, flags scanFlags) error {
	ctx := cmd.Context()
	opts, err := c.options(cmd, input, flags.opts)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Scan(ctx, opts)
	if err != nil {
		return err
	}

	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{flags.histogram, func(w io.Writer) error { return pkgio.WriteHistogram(w, res.Histogram) }},
		{flags.annotate, func(w io.Writer) error { return pkgio.WriteAnnotatedGFA(w, res.Graph, res.Complexity) }},
		{flags.report, func(w io.Writer) error {
			return pkgio.WritePercentileReport(w, res.Graph, res.Selected, res.Complexity)
		}},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := pkgio.Export(out.path, out.write); err != nil {
			return err
		}
		if !flags.json {
			printFile(out.path)
		}
	}

	if flags.json {
		return writeScanSummary(cmd.OutOrStdout(), input, opts, res)
	}

	printSuccess("Scanned %s", StyleValue.Render(input))
	printKeyValue("markers", StyleNumber.Render(fmt.Sprint(len(res.Complexity))))
	if res.InBand {
		printKeyValue("band", StyleNumber.Render(fmt.Sprintf("[%d, %d)", res.Band.Low, res.Band.High)))
	} else {
		printWarning("No complexity values fall between percentiles %v and %v", opts.Lower, opts.UpperPercentile())
	}
	printKeyValue("selected", StyleHighlight.Render(fmt.Sprint(len(res.Selected))))
	printStats(res.Stats, res.CacheHit)
	if flags.report == "" && len(res.Selected) > 0 {
		printNextStep("Inspect a selected marker", fmt.Sprintf("carp extract %s <marker>", input))
	}
	return nil
}

func writeScanSummary(w io.Writer, input string, opts pipeline.Options, res *pipeline.ScanResult) error {
	names := res.Graph.MarkerNames()
	summary := scanSummary{
		RunID:       uuid.NewString(),
		Input:       input,
		Fingerprint: res.Fingerprint,
		Markers:     len(res.Complexity),
		ContextLen:  opts.Context(),
		Lower:       opts.Lower,
		Upper:       opts.UpperPercentile(),
		Selected:    make([]string, 0, len(res.Selected)),
		Histogram:   res.Histogram,
		Cached:      res.CacheHit,
		Duration:    res.Stats.ScanTime,
	}
	if res.InBand {
		summary.BandLow, summary.BandHigh = &res.Band.Low, &res.Band.High
	}
	for _, m := range res.Selected {
		summary.Selected = append(summary.Selected, names[m])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
