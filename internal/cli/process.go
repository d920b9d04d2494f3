package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/archive"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/validate"
)

// ProcessOptions holds flags for the process command.
type ProcessOptions struct {
	*RootOptions
	Source string
	Set    []string
	Out    string
}

// ProcessResult describes a written archive.
type ProcessResult struct {
	RunID    string           `json:"run_id"`
	Archive  string           `json:"archive"`
	Files    []string         `json:"files"`
	Warnings []validate.Issue `json:"warnings,omitempty"`
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "process <workbook>",
		Short: "Turn a workbook into an ERP import archive",
		Long: `Process a workbook with a configured source and write the resulting zip
archive, holding the header and detail files, into the output directory.

Header fields the source cannot provide are supplied with --set. Use the
sources command to see which fields a source needs.

Examples:
  tikrana process --source coral --set dueDate=20240215 order.xlsx
  tikrana process -s coral --out ./exports order.xls`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "source name (required)")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "header field value as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", ".", "directory the archive is written to")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runProcess(opts *ProcessOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	input, err := parseAssignments(opts.Set)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --set value", err)
	}

	cfg, source, err := opts.loadSource(cmd, formatter, opts.Source)
	if err != nil {
		return err
	}
	data, err := readWorkbook(formatter, path)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(opts.Logger()))
	res := eng.Process(engine.Request{
		Data:      data,
		Filename:  filepath.Base(path),
		Source:    *source,
		Result:    cfg.Result,
		UserInput: input,
	})
	if !res.Success {
		return outputProcessFailure(formatter, res)
	}

	entries, err := archive.FromResult(res, cfg.Result)
	if err != nil {
		return outputFailure(formatter, ExitFailure, failure.Wrap(err, "Packaging failed"))
	}
	zipped, err := archive.Build(entries...)
	if err != nil {
		return outputFailure(formatter, ExitFailure, failure.Wrap(err, "Packaging failed"))
	}

	out := opts.stringSetting(cmd, "out")
	target := filepath.Join(out, filepath.Base(res.ArchiveName))
	if err := os.WriteFile(target, zipped, 0o644); err != nil {
		msg := fmt.Sprintf("cannot write %s: %v", target, err)
		_ = formatter.Error(ErrCodeWriteFailed, msg, nil)
		return WrapExitError(ExitFailure, msg, err)
	}
	formatter.VerboseLog("Wrote %d bytes to %s", len(zipped), target)

	result := ProcessResult{RunID: res.RunID, Archive: target, Warnings: res.Warnings}
	for _, e := range entries {
		result.Files = append(result.Files, e.Name)
	}

	if formatter.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result, RunID: res.RunID})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s (%s)\n", target, strings.Join(result.Files, ", "))
	formatter.Warnings(res.Warnings)
	fmt.Fprintf(formatter.Writer, "Run: %s\n", res.RunID)
	return nil
}

func outputProcessFailure(formatter *OutputFormatter, res *engine.Result) error {
	fe := res.Error
	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{Status: "error", Error: failureError(fe), RunID: res.RunID}); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, string(fe.Category), fe)
	}

	_ = formatter.Failure(fe)
	fmt.Fprintf(formatter.Writer, "Failed at %s (run %s)\n", res.Stage, res.RunID)
	return WrapExitError(ExitFailure, string(fe.Category), fe)
}

// parseAssignments turns name=value pairs into a map. Values may be empty
// and may contain '='.
func parseAssignments(pairs []string) (map[string]string, error) {
	input := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		input[name] = value
	}
	return input, nil
}
