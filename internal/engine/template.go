package engine

import (
	"maps"
	"regexp"
	"strings"
	"unicode"

	"github.com/plenix/tikrana/internal/config"
)

var placeholder = regexp.MustCompile(`\$\{(\w+)\}`)

// Expand replaces each ${name} in template with values[name], or with the
// empty string when name is absent. Expansion is a single pass: substituted
// text is never scanned again.
func Expand(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return values[m[2:len(m)-1]]
	})
}

// NormalizeDate strips every non-digit, so "2024-01-15", "2024/01/15" and
// "20240115" all become "20240115".
func NormalizeDate(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// MergeUserInput overlays input on header. Input wins for every key it
// carries, including empty values. Neither argument is modified.
func MergeUserInput(header, input map[string]string) map[string]string {
	merged := make(map[string]string, len(header)+len(input))
	maps.Copy(merged, header)
	maps.Copy(merged, input)
	return merged
}

// normalizeDates rewrites date-typed fields of record in place.
func normalizeDates(record map[string]string, props []config.ResultProperty) {
	for _, p := range props {
		if v, ok := record[p.Name]; ok && p.IsDate() && v != "" {
			record[p.Name] = NormalizeDate(v)
		}
	}
}

// MissingFields lists, in property order, the properties without a default
// whose value in record is absent or blank.
func MissingFields(record map[string]string, props []config.ResultProperty) []string {
	var missing []string
	for _, p := range props {
		if p.DefaultValue != nil {
			continue
		}
		if strings.TrimFunc(record[p.Name], unicode.IsSpace) == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// ArchiveName expands baseName against header plus sourceName and appends
// the ".zip" extension.
func ArchiveName(baseName string, header map[string]string, sourceName string) string {
	values := make(map[string]string, len(header)+1)
	maps.Copy(values, header)
	values["sourceName"] = sourceName
	return Expand(baseName, values) + ".zip"
}
