package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/sheet"
)

// Structure checks that wb has the layout source expects: the sheet exists,
// header cells hold values, and the detail table has its header, expected
// columns and a first data row. Empty header cells and missing columns are
// warnings only.
func Structure(wb *sheet.Workbook, source config.SourceConfig) Result {
	r := newResult()
	r.Workbook = wb

	sh, err := wb.Sheet(source.SheetIndex)
	if err != nil {
		r.fail(failure.Extraction, Issue{
			Field: "sheetIndex",
			Message: fmt.Sprintf("Sheet index %d does not exist. File has %d sheet(s): %s",
				source.SheetIndex, wb.SheetCount(), strings.Join(wb.SheetNames(), ", ")),
			Value: "Source: " + source.Name,
			Code:  CodeSheetIndex,
		})
		r.warn(Issue{
			Field:   "sheetIndex",
			Message: "Verify the Excel file has the expected sheet structure",
			Code:    CodeSheetIndex,
		})
		return r
	}

	checkHeaderCells(&r, sh, source.Header)
	checkDetailTable(&r, sh, source.Detail)
	return r
}

func checkHeaderCells(r *Result, sh *sheet.Sheet, header []config.SourceProperty) {
	for _, prop := range header {
		addr, err := sheet.ParseAddress(prop.Locator)
		if err != nil {
			r.fail(failure.Config, locatorIssue(prop.Name, prop.Locator))
			continue
		}
		cell, err := sh.Cell(addr)
		if err != nil {
			r.fail(failure.FileFormat, readIssue(prop.Name, prop.Locator, err))
			continue
		}
		if cell.IsEmpty() {
			r.warn(Issue{
				Field:   prop.Name,
				Message: fmt.Sprintf("Cell %s is empty (expected: %s)", prop.Locator, prop.Name),
				Value:   prop.Locator,
				Code:    CodeHeaderCell,
			})
		}
	}
}

func checkDetailTable(r *Result, sh *sheet.Sheet, detail config.DetailSpec) {
	anchor, err := sheet.ParseAddress(detail.Locator)
	if err != nil {
		r.fail(failure.Config, locatorIssue("detail.locator", detail.Locator))
		return
	}

	start, err := sh.Cell(anchor)
	if err != nil {
		r.fail(failure.FileFormat, readIssue("detail.locator", detail.Locator, err))
		return
	}
	if start.IsEmpty() {
		r.fail(failure.Extraction, Issue{
			Field:   "detail.locator",
			Message: fmt.Sprintf("Table header cell %s is empty. Expected table to start here.", detail.Locator),
			Value:   detail.Locator,
			Code:    CodeTableAnchor,
		})
		return
	}

	found, err := sh.HeaderLabels(detail.Locator)
	if err != nil {
		r.fail(failure.FileFormat, readIssue("detail.locator", detail.Locator, err))
		return
	}
	var missing []string
	for _, p := range detail.Properties {
		if !slices.Contains(found, p.Locator) {
			missing = append(missing, p.Locator)
		}
	}
	if len(missing) > 0 {
		r.warn(Issue{
			Field: "columns",
			Message: fmt.Sprintf("Expected column(s) not found: %s. Found: %s",
				strings.Join(missing, ", "), strings.Join(found, ", ")),
			Value: strings.Join(missing, ", "),
			Code:  CodeMissingColumns,
		})
	}

	first := anchor.Down(1)
	cell, err := sh.Cell(first)
	if err != nil {
		r.fail(failure.FileFormat, readIssue("detail", first.String(), err))
		return
	}
	if cell.IsEmpty() {
		r.fail(failure.Extraction, Issue{
			Field:   "detail",
			Message: "Table appears to have no data rows",
			Value:   first.String(),
			Code:    CodeNoDataRows,
		})
	}
}

func locatorIssue(field, locator string) Issue {
	return Issue{
		Field:   field,
		Message: fmt.Sprintf("Invalid cell locator %q. Cell locators must be in Excel A1 notation (e.g., \"B3\")", locator),
		Value:   locator,
		Code:    CodeLocator,
	}
}

func readIssue(field, locator string, err error) Issue {
	return Issue{
		Field:   field,
		Message: fmt.Sprintf("Failed to read cell %s: %v", locator, err),
		Value:   locator,
		Code:    CodeUnreadable,
	}
}
