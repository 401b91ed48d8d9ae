package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
	"github.com/gi-bielefeld/scj-carp/pkg/pipeline"
)

// measureFlags holds flags for the measure command.
type measureFlags struct {
	opts          pipeline.Options
	writeMeasure  string
	writeAncestor string
	noCache       bool
}

// measureCommand creates the measure command for computing the CARP index.
func (c *CLI) measureCommand() *cobra.Command {
	var flags measureFlags

	cmd := &cobra.Command{
		Use:   "measure <input...>",
		Short: "Compute the CARP index of genome graphs",
		Long: `Compute the SCJ-CARP index of one or more genome graphs.

Inputs are GFA or UniMoG files, optionally gzip or zstd compressed, and may
be glob patterns such as "graphs/**/*.gfa". Markers shorter than the size
threshold are contracted before measuring.`,
		Example: `  carp measure pangenome.gfa
  carp measure -s 100 -m measure.txt -a ancestral.txt pangenome.gfa.gz
  carp measure 'runs/**/*.gfa'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMeasure(cmd, args, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.opts.SizeThreshold, "size-thresh", "s", 0, "contract markers shorter than this")
	cmd.Flags().StringVarP(&flags.writeMeasure, "write-measure", "m", "", "write marker count and CARP index to file")
	cmd.Flags().StringVarP(&flags.writeAncestor, "write-ancestor", "a", "", "write the uncontested adjacencies to file")
	cmd.Flags().BoolVar(&flags.opts.StrictOverlap, "strict-overlap", false, "fail instead of warning when trimming a graph with overlaps")
	cmd.Flags().StringVar(&flags.opts.Format, "format", "", "input format: gfa or unimog (default: by extension)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runMeasure(cmd *cobra.Command, args []string, flags measureFlags) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) > 1 && (flags.writeMeasure != "" || flags.writeAncestor != "") {
		return errors.New(errors.ErrCodeInvalidOption, "--write-measure and --write-ancestor need a single input, got %d", len(inputs))
	}

	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	for _, input := range inputs {
		opts, err := c.options(cmd, input, flags.opts)
		if err != nil {
			return err
		}
		res, err := runner.Measure(ctx, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}

		markers, index := res.Graph.NumMarkers(), res.Result.Index()
		printSuccess("%s", StyleValue.Render(input))
		printKeyValue("markers", StyleNumber.Render(fmt.Sprint(markers)))
		printKeyValue("carp index", StyleHighlight.Render(fmt.Sprint(index)))
		printStats(res.Stats, res.CacheHit)

		if flags.writeMeasure != "" {
			if err := pkgio.Export(flags.writeMeasure, func(w io.Writer) error {
				return pkgio.WriteMeasure(w, markers, index)
			}); err != nil {
				return err
			}
			printFile(flags.writeMeasure)
		}
		if flags.writeAncestor != "" {
			if err := pkgio.Export(flags.writeAncestor, func(w io.Writer) error {
				return pkgio.WriteAncestral(w, res.Graph, res.Result.Uncontested)
			}); err != nil {
				return err
			}
			printFile(flags.writeAncestor)
		}
	}
	if len(inputs) > 1 {
		prog.done(fmt.Sprintf("Measured %d graphs", len(inputs)))
	}
	return nil
}

// expandInputs resolves glob patterns to the files they match. Arguments
// without glob metacharacters are passed through unchanged so that a missing
// file is reported by the loader.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg == "-" || !strings.ContainsAny(arg, "*?[{") {
			out = append(out, arg)
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "bad pattern %q", arg)
		}
		if len(matches) == 0 {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no files match %q", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			out = append(out, filepath.Join(base, filepath.FromSlash(m)))
		}
	}
	return out, nil
}
