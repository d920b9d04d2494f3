// Package failure defines the error taxonomy shared by every tikrana layer.
//
// Errors are tagged with a Category at the point of failure rather than
// classified afterwards by inspecting messages. Each error carries a short
// user-facing message plus an ordered list of remediation suggestions.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a failure for user-facing reporting.
type Category string

const (
	// FileFormat covers wrong extension, signature, corrupt or encrypted files.
	FileFormat Category = "FILE_FORMAT"

	// Config covers malformed configuration and invalid locator syntax.
	Config Category = "CONFIG"

	// Extraction covers sheet/table lookups that do not match the workbook.
	Extraction Category = "EXTRACTION"

	// Validation covers missing required output fields.
	Validation Category = "VALIDATION"

	// Network covers configuration fetch failures at the shell edge.
	Network Category = "NETWORK"

	// Unknown is anything not classified above.
	Unknown Category = "UNKNOWN"
)

// Error is a categorized failure with remediation hints.
type Error struct {
	// Category identifies the failure class.
	Category Category `json:"category"`

	// Message is the short user-facing description.
	Message string `json:"message"`

	// Details holds the technical description, when different from Message.
	Details string `json:"details,omitempty"`

	// Suggestions is the ordered list of remediation steps.
	Suggestions []string `json:"suggestions,omitempty"`

	// Fields names the offending fields (e.g. missing required outputs).
	Fields []string `json:"fields,omitempty"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Display formats the message followed by the suggestion list.
func (e *Error) Display() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n\nSuggestions:")
	for _, s := range e.Suggestions {
		b.WriteString("\n• ")
		b.WriteString(s)
	}
	return b.String()
}

// New creates an Error of the given category.
func New(category Category, message string, suggestions ...string) *Error {
	return &Error{Category: category, Message: message, Suggestions: suggestions}
}

// NewFileFormat reports an unusable input file.
func NewFileFormat(details string, suggestions ...string) *Error {
	if len(suggestions) == 0 {
		suggestions = []string{
			"Ensure the file is a valid Excel file (.xls or .xlsx)",
			"Try opening and re-saving the file in Excel",
			"Check if the file is corrupted or password-protected",
		}
	}
	return &Error{
		Category:    FileFormat,
		Message:     "Invalid file format: " + details,
		Details:     details,
		Suggestions: suggestions,
	}
}

// NewConfig reports a configuration problem.
func NewConfig(details string, suggestions ...string) *Error {
	if len(suggestions) == 0 {
		suggestions = []string{
			"Verify the configuration file is valid YAML/JSON",
			"Check that all required fields are present",
			"Reload the configuration and try again",
		}
	}
	return &Error{
		Category:    Config,
		Message:     "Configuration error: " + details,
		Details:     details,
		Suggestions: suggestions,
	}
}

// NewExtraction reports a workbook that does not match its source definition.
func NewExtraction(details string, suggestions ...string) *Error {
	if len(suggestions) == 0 {
		suggestions = []string{
			"Verify the Excel file matches the selected source type",
			"Check that the file contains the expected data structure",
			"Ensure the file has data in the expected sheet and cells",
		}
	}
	return &Error{
		Category:    Extraction,
		Message:     "Data extraction failed: " + details,
		Details:     details,
		Suggestions: suggestions,
	}
}

// NewValidation reports missing or invalid output data. The message is used
// verbatim.
func NewValidation(details string, suggestions ...string) *Error {
	return &Error{
		Category:    Validation,
		Message:     details,
		Details:     details,
		Suggestions: suggestions,
	}
}

// NewNetwork reports a failure fetching remote configuration.
func NewNetwork(details string, suggestions ...string) *Error {
	if len(suggestions) == 0 {
		suggestions = []string{
			"Check your internet connection",
			"Verify the configuration URL is correct",
			"Try again in a few moments",
		}
	}
	return &Error{
		Category:    Network,
		Message:     "Failed to load: " + details,
		Details:     details,
		Suggestions: suggestions,
	}
}

// Missing reports required fields without a value.
func Missing(fields []string) *Error {
	e := NewValidation(
		"Missing header properties: "+strings.Join(fields, ", "),
		"Provide a value for each missing field",
		"Check that the source extracts these cells or defines defaults for them",
	)
	e.Fields = append([]string(nil), fields...)
	return e
}

// tagged associates a sentinel with the category its wrapped errors belong to.
type tagged struct {
	sentinel    error
	build       func(string, ...string) *Error
	prefix      string
	suggestions []string
}

var registry []tagged

// Register declares that errors matching sentinel (via errors.Is) belong to
// the constructor's category. Packages register their sentinels from init.
func Register(sentinel error, build func(string, ...string) *Error, prefix string, suggestions ...string) {
	registry = append(registry, tagged{
		sentinel:    sentinel,
		build:       build,
		prefix:      prefix,
		suggestions: suggestions,
	})
}

// Wrap converts any error into an *Error. Existing *Error values pass through
// untouched; registered sentinels map to their category; anything else becomes
// Unknown with the operation context prepended.
func Wrap(err error, context string) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	for _, t := range registry {
		if errors.Is(err, t.sentinel) {
			details := err.Error()
			if t.prefix != "" {
				details = t.prefix + ": " + details
			}
			wrapped := t.build(details, t.suggestions...)
			wrapped.Err = err
			return wrapped
		}
	}
	return &Error{
		Category:    Unknown,
		Message:     fmt.Sprintf("%s: %v", context, err),
		Details:     err.Error(),
		Suggestions: []string{"If this error persists, please contact support"},
		Err:         err,
	}
}

// CategoryOf returns the category of err, or Unknown when err is not an *Error.
func CategoryOf(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return Unknown
}

// Is reports whether err is an *Error of the given category.
// Uses errors.As to handle wrapped errors.
func Is(err error, category Category) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category == category
	}
	return false
}
