package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/sheet"
)

const (
	// MinFileSize is the smallest byte count a real workbook can have.
	MinFileSize = 512

	// LargeFileSize is the size above which a warning is issued.
	LargeFileSize = 10 << 20
)

// Extensions lists the accepted workbook file extensions.
var Extensions = []string{".xls", ".xlsx", ".xlsm", ".xlsb"}

// File runs the byte-level checks in order: size, extension, signature. The
// first failing check ends the pass.
func File(data []byte, filename string) Result {
	r := newResult()

	switch {
	case len(data) == 0:
		r.fail(failure.FileFormat, Issue{
			Field:   "file",
			Message: "File is empty",
			Value:   filename,
			Code:    CodeEmptyFile,
		})
	case len(data) < MinFileSize:
		r.fail(failure.FileFormat, Issue{
			Field:   "file",
			Message: fmt.Sprintf("File is too small (%d bytes). This does not appear to be a valid Excel file.", len(data)),
			Value:   filename,
			Code:    CodeFileTooSmall,
		})
	}
	if len(data) > LargeFileSize {
		r.warn(Issue{
			Field:   "file",
			Message: fmt.Sprintf("Large file (%.1f MB). Processing may take longer.", float64(len(data))/(1<<20)),
			Value:   filename,
			Code:    CodeLargeFile,
		})
	}
	if !r.Valid {
		return r
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(Extensions, ext) {
		r.fail(failure.FileFormat, Issue{
			Field:   "file",
			Message: fmt.Sprintf("Invalid file extension %q. Expected: %s", ext, strings.Join(Extensions, ", ")),
			Value:   filename,
			Code:    CodeBadExtension,
		})
		return r
	}

	if _, ok := sheet.DetectContainer(data); !ok {
		r.fail(failure.FileFormat, Issue{
			Field:   "file",
			Message: "File does not appear to be a valid Excel file. The file format signature is not recognized.",
			Value:   filename,
			Code:    CodeBadSignature,
		})
	}
	return r
}

// Parse opens the workbook, translating reader failures into user-facing
// messages. On success the Result carries the workbook.
func Parse(data []byte) Result {
	r := newResult()

	wb, err := sheet.Open(data)
	if err != nil {
		r.fail(failure.FileFormat, Issue{
			Field:   "file",
			Message: parseMessage(data, err),
			Code:    CodeUnreadable,
		})
		return r
	}
	r.Workbook = wb
	return r
}

func parseMessage(data []byte, err error) string {
	switch {
	case errors.Is(err, sheet.ErrNoSheets):
		return "Excel file contains no sheets"
	case strings.Contains(strings.ToLower(err.Error()), "password"):
		return "Excel file is password-protected. Please remove the password and try again."
	}
	if c, _ := sheet.DetectContainer(data); c == sheet.ContainerCFB && errors.Is(err, sheet.ErrUnreadable) {
		return "File appears to be corrupted or in an unsupported format."
	}
	return fmt.Sprintf("Failed to read Excel file: %v", err)
}
