package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	Source string
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract <workbook>",
		Short: "Show the raw values a source reads from a workbook",
		Long: `Extract the header and detail values of a workbook as the source sees them,
after replacements but before user input and rendering are applied.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "source name (required)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runExtract(opts *ExtractOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	_, source, err := opts.loadSource(cmd, formatter, opts.Source)
	if err != nil {
		return err
	}
	data, err := readWorkbook(formatter, path)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(opts.Logger()))
	extracted, err := eng.Extract(data, *source)
	if err != nil {
		return outputFailure(formatter, ExitFailure, failure.Wrap(err, "Extraction failed"))
	}

	if formatter.Format == "json" {
		return formatter.Success(extracted)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "Header:")
	keys := make([]string, 0, len(extracted.Header))
	for k := range extracted.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %q\n", k, extracted.Header[k])
	}

	fmt.Fprintf(w, "Detail (%d rows):\n", len(extracted.Detail))
	for i, row := range extracted.Detail {
		fmt.Fprintf(w, "  [%d]", i+1)
		for _, p := range source.Detail.Properties {
			fmt.Fprintf(w, " %s=%q", p.Name, row[p.Name])
		}
		fmt.Fprintln(w)
	}
	return nil
}
