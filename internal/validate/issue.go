// Package validate checks spreadsheet files, their structure against a
// source definition, and configuration documents before any extraction
// happens.
//
// Every pass collects all problems it finds instead of stopping at the first.
// Errors make a Result invalid; warnings are advisory and ride along with
// successful results.
package validate

import (
	"fmt"
	"strings"

	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/sheet"
)

// File and workbook validation codes (V100-V199).
const (
	CodeEmptyFile      = "V101" // zero bytes
	CodeFileTooSmall   = "V102" // below MinFileSize
	CodeBadExtension   = "V103" // extension not in Extensions
	CodeBadSignature   = "V104" // neither ZIP nor compound binary
	CodeLargeFile      = "V105" // above LargeFileSize (warning)
	CodeUnreadable     = "V106" // backend could not decode the file
	CodeSheetIndex     = "V110" // sheet index out of range
	CodeHeaderCell     = "V111" // header cell empty (warning)
	CodeTableAnchor    = "V112" // table header cell empty
	CodeMissingColumns = "V113" // expected table columns absent (warning)
	CodeNoDataRows     = "V114" // table without a first data row
	CodeLocator        = "V115" // locator is not A1 notation
)

// Configuration validation codes (V200-V299).
const (
	CodeMalformed         = "V200" // document does not decode
	CodeNoSources         = "V201" // no sources defined
	CodeSourceName        = "V202" // empty source name
	CodeDuplicateSource   = "V203" // source name used twice
	CodeNegativeSheet     = "V204" // sheetIndex below zero
	CodeConfigLocator     = "V205" // header or detail locator not A1 notation
	CodePattern           = "V206" // replacement pattern does not compile
	CodeSeparator         = "V207" // empty separator
	CodeFilename          = "V208" // empty output file name
	CodeDuplicateFilename = "V209" // header and detail share a file name
	CodeBaseName          = "V210" // empty archive base name
	CodeDuplicateProperty = "V211" // property listed twice in a file (warning)
	CodePropertyName      = "V212" // empty property name
	CodeNoDetailColumns   = "V213" // detail maps no columns (warning)
)

// Issue is one validation finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Field, i.Message)
}

// Result is the outcome of one or more validation passes.
type Result struct {
	Valid bool `json:"valid"`

	// Category classifies the failure of an invalid result.
	Category failure.Category `json:"category,omitempty"`

	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`

	// Workbook is the parsed file once parsing succeeded, for reuse by the
	// caller.
	Workbook *sheet.Workbook `json:"-"`
}

func newResult() Result {
	return Result{Valid: true, Errors: []Issue{}, Warnings: []Issue{}}
}

func (r *Result) fail(category failure.Category, issue Issue) {
	if r.Valid {
		r.Category = category
	}
	r.Valid = false
	r.Errors = append(r.Errors, issue)
}

func (r *Result) warn(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}

// merge folds other into r. The first failing category wins.
func (r *Result) merge(other Result) {
	if !other.Valid {
		if r.Valid {
			r.Category = other.Category
		}
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if other.Workbook != nil {
		r.Workbook = other.Workbook
	}
}

// Messages returns the error messages in order.
func (r Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

// Err converts an invalid result into a categorized error carrying every
// error message. It returns nil for valid results.
func (r Result) Err() *failure.Error {
	if r.Valid {
		return nil
	}
	details := strings.Join(r.Messages(), "; ")

	var err *failure.Error
	switch r.Category {
	case failure.FileFormat:
		err = failure.NewFileFormat(details)
	case failure.Config:
		err = failure.NewConfig(details)
	default:
		err = failure.NewExtraction(details)
	}
	for _, issue := range r.Errors {
		err.Fields = append(err.Fields, issue.Field)
	}
	return err
}
