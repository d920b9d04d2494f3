package engine

import (
	"maps"
	"strconv"
	"strings"
	"unicode"

	"github.com/plenix/tikrana/internal/config"
)

// Render produces the text of one output file.
//
// The prolog and epilog, right-trimmed, become the first and last lines when
// present. Each record becomes one line of spec.Properties values joined by
// separator. A property whose record value is absent or empty takes its
// default. Values containing "${" are expanded against the record plus
// ${index}, the record's zero-based position. Lines are joined with "\n" and
// no trailing newline is added.
func Render(spec config.FileSpec, separator string, records []map[string]string) string {
	lines := make([]string, 0, len(records)+2)
	if spec.Prolog != "" {
		lines = append(lines, strings.TrimRightFunc(spec.Prolog, unicode.IsSpace))
	}

	values := make([]string, len(spec.Properties))
	for i, record := range records {
		for j, p := range spec.Properties {
			v := record[p.Name]
			if v == "" && p.DefaultValue != nil {
				v = *p.DefaultValue
			}
			if strings.Contains(v, "${") {
				v = Expand(v, withIndex(record, i))
			}
			values[j] = v
		}
		lines = append(lines, strings.Join(values, separator))
	}

	if spec.Epilog != "" {
		lines = append(lines, strings.TrimRightFunc(spec.Epilog, unicode.IsSpace))
	}
	return strings.Join(lines, "\n")
}

func withIndex(record map[string]string, index int) map[string]string {
	values := make(map[string]string, len(record)+1)
	maps.Copy(values, record)
	values["index"] = strconv.Itoa(index)
	return values
}

// detailRecords projects extracted rows onto the detail properties, filling
// absent values from property defaults.
func detailRecords(rows []map[string]string, props []config.ResultProperty) []map[string]string {
	records := make([]map[string]string, len(rows))
	for i, row := range rows {
		record := make(map[string]string, len(props))
		for _, p := range props {
			v, ok := row[p.Name]
			if !ok && p.DefaultValue != nil {
				v = *p.DefaultValue
			}
			record[p.Name] = v
		}
		records[i] = record
	}
	return records
}
