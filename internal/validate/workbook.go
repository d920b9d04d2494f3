package validate

import "github.com/plenix/tikrana/internal/config"

// Workbook runs the file, parse and structure passes for source. A failing
// pass ends validation; warnings from every completed pass are kept. The
// parsed workbook is exposed on the result for reuse.
func Workbook(data []byte, filename string, source config.SourceConfig) Result {
	r := File(data, filename)
	if !r.Valid {
		return r
	}

	parsed := Parse(data)
	r.merge(parsed)
	if !r.Valid {
		return r
	}

	r.merge(Structure(parsed.Workbook, source))
	return r
}
