package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Source string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <workbook>",
		Short: "Validate a workbook against a source without extracting it",
		Long: `Validate a workbook against a configured source.

Checks the file itself (size, extension, signature), that it parses, and that
the sheet, header cells and detail table the source points at are present.
Faster than process for checking what a supplier sent.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Source, "source", "s", "", "source name (required)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	_, source, err := opts.loadSource(cmd, formatter, opts.Source)
	if err != nil {
		return err
	}
	data, err := readWorkbook(formatter, path)
	if err != nil {
		return err
	}

	result := validate.Workbook(data, filepath.Base(path), *source)
	formatter.VerboseLog("Validated %s: %d error(s), %d warning(s)", path, len(result.Errors), len(result.Warnings))

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidateFailure(formatter, result)
}

func outputValidateSuccess(formatter *OutputFormatter, result validate.Result) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Workbook valid")
	formatter.Warnings(result.Warnings)
	return nil
}

func outputValidateFailure(formatter *OutputFormatter, result validate.Result) error {
	if formatter.Format == "json" {
		first := result.Errors[0]
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: string(result.Category), Message: first.Message},
		}); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, "workbook validation failed", result.Err())
	}

	fmt.Fprintf(formatter.Writer, "✗ Workbook invalid [%s]\n", result.Category)
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
	}
	formatter.Warnings(result.Warnings)

	// Invalid workbook = exit code 1 (validation failure)
	return WrapExitError(ExitFailure, "workbook validation failed", result.Err())
}
