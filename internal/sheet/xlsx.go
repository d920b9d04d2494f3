package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

// xlsxBackend reads ZIP-based Office workbooks with excelize.
type xlsxBackend struct {
	file     *excelize.File
	names    []string
	date1904 bool

	mu         sync.Mutex
	dateStyles map[int]bool
}

func openXLSX(data []byte) (*xlsxBackend, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	b := &xlsxBackend{
		file:       f,
		names:      f.GetSheetList(),
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		b.date1904 = *props.Date1904
	}
	return b, nil
}

func (b *xlsxBackend) SheetNames() []string {
	return b.names
}

func (b *xlsxBackend) Cell(sheet int, row, col int) (Cell, error) {
	if sheet < 0 || sheet >= len(b.names) {
		return Cell{}, fmt.Errorf("%w: index %d", ErrSheetOutOfRange, sheet)
	}
	name := b.names[sheet]
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}

	raw, err := b.file.GetCellValue(name, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, err
	}
	if raw == "" {
		return Cell{}, nil
	}

	typ, err := b.file.GetCellType(name, axis)
	if err != nil {
		return Cell{}, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return Cell{Kind: KindBool, Bool: raw == "1" || strings.EqualFold(raw, "true")}, nil
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return Cell{Kind: KindDate, Time: t}, nil
		}
		return Cell{Kind: KindString, Text: raw}, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return Cell{Kind: KindString, Text: raw}, nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Cell{Kind: KindString, Text: raw}, nil
	}

	if b.isDateStyled(name, axis) {
		t, err := excelize.ExcelDateToTime(num, b.date1904)
		if err == nil {
			return Cell{Kind: KindDate, Time: t}, nil
		}
	}
	return Cell{Kind: KindNumber, Number: num}, nil
}

// isDateStyled reports whether the cell's number format displays a date.
func (b *xlsxBackend) isDateStyled(sheetName, axis string) bool {
	styleID, err := b.file.GetCellStyle(sheetName, axis)
	if err != nil || styleID == 0 {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if isDate, ok := b.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := b.file.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = IsDateFormat(*style.CustomNumFmt)
		} else {
			isDate = IsBuiltinDateFormat(style.NumFmt)
		}
	}
	b.dateStyles[styleID] = isDate
	return isDate
}

var isoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
