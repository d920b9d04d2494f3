package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/plenix/tikrana/internal/failure"
)

var (
	// ErrSheetOutOfRange is returned when a sheet index does not exist.
	ErrSheetOutOfRange = errors.New("sheet index out of range")

	// ErrUnknownSignature is returned for bytes that are neither ZIP nor
	// compound-binary containers.
	ErrUnknownSignature = errors.New("unrecognized file signature")

	// ErrUnreadable is returned when a backend fails to decode the container.
	ErrUnreadable = errors.New("unreadable workbook")

	// ErrNoSheets is returned for workbooks without any worksheet.
	ErrNoSheets = errors.New("workbook contains no sheets")
)

func init() {
	failure.Register(ErrInvalidAddress, failure.NewConfig, "Invalid cell locator in configuration",
		`Check that all cell locators (e.g., "B3", "A12") are valid`,
		"Cell locators must be in Excel A1 notation",
	)
	failure.Register(ErrSheetOutOfRange, failure.NewExtraction, "Sheet not found",
		"Verify the Excel file has the expected number of sheets",
		"Check the sheetIndex in the source configuration",
	)
	failure.Register(ErrUnknownSignature, failure.NewFileFormat, "")
	failure.Register(ErrUnreadable, failure.NewFileFormat, "")
	failure.Register(ErrNoSheets, failure.NewFileFormat, "")
}

// Signatures of the supported containers.
var (
	SignatureZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	SignatureCFB = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// Container identifies the file container of a workbook.
type Container string

const (
	ContainerZIP Container = "zip"
	ContainerCFB Container = "cfb"
)

// DetectContainer inspects the leading bytes of data.
func DetectContainer(data []byte) (Container, bool) {
	switch {
	case bytes.HasPrefix(data, SignatureZIP):
		return ContainerZIP, true
	case bytes.HasPrefix(data, SignatureCFB):
		return ContainerCFB, true
	default:
		return "", false
	}
}

// Backend decodes cells of one workbook container format.
type Backend interface {
	// SheetNames lists worksheets in workbook order.
	SheetNames() []string

	// Cell returns the decoded cell at 0-based coordinates of sheet index.
	// Absent cells are KindEmpty, never an error.
	Cell(sheet int, row, col int) (Cell, error)
}

// Workbook is a parsed spreadsheet file.
type Workbook struct {
	backend   Backend
	container Container
}

// Open parses raw file bytes, choosing the backend by signature.
func Open(data []byte) (*Workbook, error) {
	container, ok := DetectContainer(data)
	if !ok {
		return nil, ErrUnknownSignature
	}

	var (
		backend Backend
		err     error
	)
	switch container {
	case ContainerZIP:
		backend, err = openXLSX(data)
	case ContainerCFB:
		backend, err = openXLS(data)
	}
	if err != nil {
		return nil, err
	}

	if len(backend.SheetNames()) == 0 {
		return nil, ErrNoSheets
	}
	return &Workbook{backend: backend, container: container}, nil
}

// FromBackend wraps an already decoded backend.
func FromBackend(b Backend, container Container) *Workbook {
	return &Workbook{backend: b, container: container}
}

// Container returns the container format the workbook was read from.
func (w *Workbook) Container() Container {
	return w.container
}

// SheetNames lists worksheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.backend.SheetNames()
}

// SheetCount returns the number of worksheets.
func (w *Workbook) SheetCount() int {
	return len(w.backend.SheetNames())
}

// Sheet returns the worksheet at a 0-based index.
func (w *Workbook) Sheet(index int) (*Sheet, error) {
	names := w.backend.SheetNames()
	if index < 0 || index >= len(names) {
		return nil, fmt.Errorf("%w: index %d (0-%d): %s",
			ErrSheetOutOfRange, index, len(names)-1, strings.Join(names, ", "))
	}
	return &Sheet{backend: w.backend, index: index, name: names[index]}, nil
}
