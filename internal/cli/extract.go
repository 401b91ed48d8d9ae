package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pkgio "github.com/gi-bielefeld/scj-carp/pkg/io"
	"github.com/gi-bielefeld/scj-carp/pkg/pipeline"
)

// extractFlags holds flags for the extract command.
type extractFlags struct {
	opts pipeline.Options
	out  string
}

// extractCommand creates the extract command for a single marker's neighborhood.
func (c *CLI) extractCommand() *cobra.Command {
	var flags extractFlags

	cmd := &cobra.Command{
		Use:   "extract <input> <marker>",
		Short: "Export the neighborhood of a single marker",
		Long: `Collect the adjacencies within the context length of a marker, print their
CARP index and optionally write them as a GFA subgraph.`,
		Example: `  carp extract pangenome.gfa s42
  carp extract -c 2000 -o s42.gfa pangenome.gfa s42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.opts.SizeThreshold, "size-thresh", "s", 0, "contract markers shorter than this")
	flags.opts.ContextLen = new(int)
	cmd.Flags().IntVarP(flags.opts.ContextLen, "context-len", "c", pipeline.DefaultContextLen, "neighborhood radius in base pairs")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write the neighborhood as GFA")
	cmd.Flags().StringVar(&flags.opts.Format, "format", "", "input format: gfa or unimog (default: by extension)")

	return cmd
}

func (c *CLI) runExtract(cmd *cobra.Command, input, marker string, flags extractFlags) error {
	ctx := cmd.Context()
	flags.opts.Marker = marker
	opts, err := c.options(cmd, input, flags.opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)

	res, err := runner.Extract(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("Neighborhood of %s", StyleValue.Render(marker))
	printKeyValue("adjacencies", StyleNumber.Render(fmt.Sprint(len(res.Adjacencies))))
	printKeyValue("carp index", StyleHighlight.Render(fmt.Sprint(res.Index)))

	if flags.out != "" {
		if err := pkgio.Export(flags.out, func(w io.Writer) error {
			return pkgio.WritePartialGFA(w, res.Graph, res.Marker, res.Adjacencies)
		}); err != nil {
			return err
		}
		printFile(flags.out)
	}
	return nil
}
