package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/validate"
)

// CheckResult holds configuration check results.
type CheckResult struct {
	Valid    bool                 `json:"valid"`
	Schema   []config.SchemaIssue `json:"schema,omitempty"`
	Errors   []validate.Issue     `json:"errors,omitempty"`
	Warnings []validate.Issue     `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the application configuration",
		Long: `Check the application configuration without processing any workbook.

Lints the document against the configuration schema, then checks sources,
locators, replacement patterns and output files. All problems are reported,
not just the first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := config.Read(cmd.Context(), opts.httpClient(), opts.Config)
	if err != nil {
		return outputFailure(formatter, ExitCommandError, failure.Wrap(err, "Failed to load configuration"))
	}
	format := config.DetectFormat(opts.Config, data)
	formatter.VerboseLog("Checking %s (%s, %d bytes)", opts.Config, format, len(data))

	result := CheckResult{Schema: config.CheckSchema(data, format)}

	cfg, err := config.Parse(data, format)
	if err != nil {
		fe := failure.Wrap(err, "Failed to parse configuration")
		result.Errors = append(result.Errors, validate.Issue{
			Field:   "config",
			Message: fe.Message,
			Code:    validate.CodeMalformed,
		})
	} else {
		checked := validate.Config(cfg)
		result.Errors = append(result.Errors, checked.Errors...)
		result.Warnings = checked.Warnings
	}
	result.Valid = len(result.Schema) == 0 && len(result.Errors) == 0

	if result.Valid {
		return outputCheckSuccess(formatter, result)
	}
	return outputCheckFailure(formatter, result)
}

func outputCheckSuccess(formatter *OutputFormatter, result CheckResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Configuration valid")
	formatter.Warnings(result.Warnings)
	return nil
}

func outputCheckFailure(formatter *OutputFormatter, result CheckResult) error {
	count := len(result.Schema) + len(result.Errors)

	if formatter.Format == "json" {
		first := CLIError{Code: "SCHEMA"}
		if len(result.Errors) > 0 {
			first = CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		} else {
			first.Message = result.Schema[0].String()
		}

		if err := formatter.Respond(CLIResponse{Status: "error", Data: result, Error: &first}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("configuration check failed with %d error(s)", count))
	}

	fmt.Fprintln(formatter.Writer, "✗ Configuration invalid")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Schema {
		fmt.Fprintf(formatter.Writer, "  schema: %s\n", issue)
	}
	for _, issue := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
	}
	formatter.Warnings(result.Warnings)

	// Invalid configuration = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("configuration check failed with %d error(s)", count))
}
