package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/validate"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation or processing failure (invalid workbook, missing input, failed scenarios)
	ExitCommandError = 2 // Command error (invalid paths, unreadable configuration, unknown source)
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // one-line reason
	Err     error  // cause, often a *failure.Error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure for any
// other error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as JSON envelopes or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics; falls back to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"`           // "ok" or "error"
	Data   any       `json:"data,omitempty"`   // success payload
	Error  *CLIError `json:"error,omitempty"`  // error details
	RunID  string    `json:"run_id,omitempty"` // engine run correlation
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`              // "E006", "VALIDATION", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// FailureDetails is the JSON details payload of a categorized failure.
type FailureDetails struct {
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Fields      []string `json:"fields,omitempty"`
}

func failureError(err *failure.Error) *CLIError {
	return &CLIError{
		Code:    string(err.Category),
		Message: err.Message,
		Details: FailureDetails{
			Details:     err.Details,
			Suggestions: err.Suggestions,
			Fields:      err.Fields,
		},
	}
}

// Respond writes resp as indented JSON.
func (f *OutputFormatter) Respond(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure outputs a categorized failure with its remediation suggestions.
// The category is used as the error code.
func (f *OutputFormatter) Failure(err *failure.Error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: failureError(err)})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", err.Category, err.Message)
	if len(err.Suggestions) > 0 {
		fmt.Fprintln(f.Writer, "Suggestions:")
		for _, s := range err.Suggestions {
			fmt.Fprintf(f.Writer, "  • %s\n", s)
		}
	}
	if f.Verbose && err.Details != "" && err.Details != err.Message {
		fmt.Fprintf(f.Writer, "Details: %s\n", err.Details)
	}
	return nil
}

// Warnings lists validation warnings in text mode. JSON payloads carry them
// in their data instead.
func (f *OutputFormatter) Warnings(issues []validate.Issue) {
	if f.Format == "json" {
		return
	}
	for _, w := range issues {
		fmt.Fprintf(f.Writer, "  warning %s: %s\n", w.Code, w.Message)
	}
}

// VerboseLog writes a diagnostic line when verbose mode is on. It goes to
// the error writer so JSON on stdout stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// outputFailure reports err and returns the matching exit error.
func outputFailure(f *OutputFormatter, code int, err *failure.Error) error {
	_ = f.Failure(err)
	return WrapExitError(code, string(err.Category), err)
}
