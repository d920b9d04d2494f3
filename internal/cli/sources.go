package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
)

// NewSourcesCommand creates the sources command.
func NewSourcesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources and the input each one needs",
		Long: `List the sources of the application configuration.

For every source, shows the header fields the user must supply because the
source neither extracts them from the workbook nor defaults them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(rootOpts, cmd)
		},
	}
}

func runSources(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadApp(cmd.Context())
	if err != nil {
		return outputFailure(formatter, ExitCommandError, failure.Wrap(err, "Failed to load configuration"))
	}

	sources := config.DeriveRuntimeSources(cfg)
	if formatter.Format == "json" {
		return formatter.Success(sources)
	}

	w := formatter.Writer
	for _, s := range sources {
		fmt.Fprintf(w, "%s: %s\n", s.Name, s.Description)
		if len(s.UserInputFields) == 0 {
			fmt.Fprintln(w, "  (no user input needed)")
		}
		for _, f := range s.UserInputFields {
			fmt.Fprintf(w, "  %s [%s] %s\n", f.Name, f.Type, f.Prompt)
			if f.FYI != "" {
				fmt.Fprintf(w, "      %s\n", f.FYI)
			}
		}
	}
	return nil
}
