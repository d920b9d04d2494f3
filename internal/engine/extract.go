package engine

import (
	"maps"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/sheet"
)

// ExtractedData is the raw content pulled from one workbook.
type ExtractedData struct {
	Header map[string]string   `json:"header"`
	Detail []map[string]string `json:"detail"`
}

// ExtractHeader reads each header property's cell and applies its
// replacements. The record starts as a copy of defaults: extracted values
// overwrite seeds, while an empty cell leaves an existing seed intact.
func ExtractHeader(sh *sheet.Sheet, header []config.SourceProperty, defaults map[string]string) (map[string]string, error) {
	record := make(map[string]string, len(defaults)+len(header))
	maps.Copy(record, defaults)

	for _, prop := range header {
		rules, err := compileRules(prop.Name, prop.Replacements)
		if err != nil {
			return nil, err
		}
		addr, err := sheet.ParseAddress(prop.Locator)
		if err != nil {
			return nil, err
		}
		cell, err := sh.Cell(addr)
		if err != nil {
			return nil, err
		}

		if _, seeded := record[prop.Name]; seeded && cell.IsEmpty() {
			continue
		}
		record[prop.Name] = applyRules(cell.String(), rules)
	}
	return record, nil
}

// ExtractDetail reads the detail table and renames mapped columns to their
// property names, applying each property's replacements. Columns no
// property maps are dropped; mapped columns absent from the sheet simply do
// not appear in the records.
func ExtractDetail(sh *sheet.Sheet, detail config.DetailSpec) ([]map[string]string, error) {
	type column struct {
		name  string
		rules []rule
	}
	byLabel := make(map[string]column, len(detail.Properties))
	for _, prop := range detail.Properties {
		rules, err := compileRules(prop.Name, prop.Replacements)
		if err != nil {
			return nil, err
		}
		byLabel[prop.Locator] = column{name: prop.Name, rules: rules}
	}

	rows, err := sh.ReadTable(detail.Locator, detail.EndValue)
	if err != nil {
		return nil, err
	}

	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(byLabel))
		for label, value := range row {
			if col, ok := byLabel[label]; ok {
				record[col.name] = applyRules(value, col.rules)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// extract runs both extraction stages against the source's sheet.
func extract(wb *sheet.Workbook, source config.SourceConfig) (*ExtractedData, error) {
	sh, err := wb.Sheet(source.SheetIndex)
	if err != nil {
		return nil, stageError(StageExtractHeader, err)
	}

	header, err := ExtractHeader(sh, source.Header, source.DefaultValues)
	if err != nil {
		return nil, stageError(StageExtractHeader, err)
	}

	detail, err := ExtractDetail(sh, source.Detail)
	if err != nil {
		return nil, stageError(StageExtractDetail, err)
	}

	return &ExtractedData{Header: header, Detail: detail}, nil
}
