package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type valueKind int

const (
	kindText valueKind = iota
	kindNumber
	kindBool
	kindDate
)

// Value is a typed fixture cell.
type Value struct {
	kind   valueKind
	text   string
	number float64
	flag   bool
	date   time.Time
	format string
}

// Text is a shared-string cell.
func Text(s string) Value { return Value{kind: kindText, text: s} }

// Number is a numeric cell with the General format.
func Number(f float64) Value { return Value{kind: kindNumber, number: f} }

// NumberFormat is a numeric cell styled with a custom number format.
func NumberFormat(f float64, format string) Value {
	return Value{kind: kindNumber, number: f, format: format}
}

// Bool is a boolean cell.
func Bool(b bool) Value { return Value{kind: kindBool, flag: b} }

// Date is a serial-date cell styled with the built-in short date format.
func Date(year int, month time.Month, day int) Value {
	return Value{kind: kindDate, date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFormat is a serial-date cell styled with a custom number format such
// as "dd/mm/yyyy".
func DateFormat(year int, month time.Month, day int, format string) Value {
	v := Date(year, month, day)
	v.format = format
	return v
}

// SheetSpec describes one worksheet of a fixture workbook. Cells are keyed by
// A1 address.
type SheetSpec struct {
	Name  string
	Cells map[string]Value
}

// BuildXLSX renders sheets into the bytes of an .xlsx workbook, failing the
// test on error. With no sheets the workbook keeps excelize's default
// "Sheet1".
func BuildXLSX(t testing.TB, sheets ...SheetSpec) []byte {
	t.Helper()

	data, err := WriteXLSX(sheets...)
	require.NoError(t, err)
	return data
}

// WriteXLSX renders sheets into the bytes of an .xlsx workbook.
func WriteXLSX(sheets ...SheetSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	shortDate, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, err
	}
	custom := map[string]int{}
	styleFor := func(format string) (int, error) {
		if id, ok := custom[format]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
		if err != nil {
			return 0, fmt.Errorf("style %q: %w", format, err)
		}
		custom[format] = id
		return id, nil
	}

	for i, spec := range sheets {
		if i == 0 {
			err = f.SetSheetName("Sheet1", spec.Name)
		} else {
			_, err = f.NewSheet(spec.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", spec.Name, err)
		}

		for addr, v := range spec.Cells {
			if err := writeCell(f, spec.Name, addr, v, shortDate, styleFor); err != nil {
				return nil, fmt.Errorf("%s!%s: %w", spec.Name, addr, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCell(f *excelize.File, sheet, addr string, v Value, shortDate int, styleFor func(string) (int, error)) error {
	switch v.kind {
	case kindText:
		return f.SetCellStr(sheet, addr, v.text)
	case kindBool:
		return f.SetCellBool(sheet, addr, v.flag)
	}

	number, style := v.number, 0
	if v.kind == kindDate {
		number, style = excelSerial(v.date), shortDate
	}
	if err := f.SetCellFloat(sheet, addr, number, -1, 64); err != nil {
		return err
	}
	if v.format != "" {
		id, err := styleFor(v.format)
		if err != nil {
			return err
		}
		style = id
	}
	if style == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, addr, addr, style)
}

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// excelSerial converts t to a 1900-system serial date. Valid from March 1900.
func excelSerial(t time.Time) float64 {
	return float64(t.Sub(excelEpoch)) / float64(24*time.Hour)
}
