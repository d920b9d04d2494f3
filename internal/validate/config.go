package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/sheet"
)

// Config runs structural checks on a parsed configuration. Parsing accepts
// anything shaped like a configuration; this pass reports what would fail
// later at extraction or rendering time.
func Config(cfg *config.AppConfig) Result {
	r := newResult()

	if len(cfg.Sources) == 0 {
		r.fail(failure.Config, Issue{
			Field:   "sources",
			Message: "at least one source is required",
			Code:    CodeNoSources,
		})
	}

	seen := make(map[string]int)
	for i, src := range cfg.Sources {
		prefix := fmt.Sprintf("sources[%d]", i)

		if strings.TrimSpace(src.Name) == "" {
			r.fail(failure.Config, Issue{
				Field:   prefix + ".name",
				Message: "source name is required",
				Code:    CodeSourceName,
			})
		} else if first, dup := seen[src.Name]; dup {
			r.fail(failure.Config, Issue{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate source name %q (first defined at sources[%d])", src.Name, first),
				Value:   src.Name,
				Code:    CodeDuplicateSource,
			})
		} else {
			seen[src.Name] = i
		}

		if src.SheetIndex < 0 {
			r.fail(failure.Config, Issue{
				Field:   prefix + ".sheetIndex",
				Message: fmt.Sprintf("sheet index must not be negative, got %d", src.SheetIndex),
				Code:    CodeNegativeSheet,
			})
		}

		for j, p := range src.Header {
			field := fmt.Sprintf("%s.header[%d]", prefix, j)
			if _, err := sheet.ParseAddress(p.Locator); err != nil {
				r.fail(failure.Config, Issue{
					Field:   field + ".locator",
					Message: fmt.Sprintf("header %q: invalid cell locator %q", p.Name, p.Locator),
					Value:   p.Locator,
					Code:    CodeConfigLocator,
				})
			}
			checkProperty(&r, field, p)
		}

		if _, err := sheet.ParseAddress(src.Detail.Locator); err != nil {
			r.fail(failure.Config, Issue{
				Field:   prefix + ".detail.locator",
				Message: fmt.Sprintf("invalid table locator %q", src.Detail.Locator),
				Value:   src.Detail.Locator,
				Code:    CodeConfigLocator,
			})
		}
		if len(src.Detail.Properties) == 0 {
			r.warn(Issue{
				Field:   prefix + ".detail.properties",
				Message: "detail maps no columns; every detail line will use defaults only",
				Code:    CodeNoDetailColumns,
			})
		}
		for j, p := range src.Detail.Properties {
			checkProperty(&r, fmt.Sprintf("%s.detail.properties[%d]", prefix, j), p)
		}
	}

	checkResult(&r, cfg.Result)
	return r
}

func checkProperty(r *Result, field string, p config.SourceProperty) {
	if strings.TrimSpace(p.Name) == "" {
		r.fail(failure.Config, Issue{
			Field:   field + ".name",
			Message: "property name is required",
			Code:    CodePropertyName,
		})
	}
	for _, rep := range p.Replacements {
		if _, err := regexp.Compile(rep.Pattern); err != nil {
			r.fail(failure.Config, Issue{
				Field:   field + ".replacements",
				Message: fmt.Sprintf("replacement pattern %q does not compile: %v", rep.Pattern, err),
				Value:   rep.Pattern,
				Code:    CodePattern,
			})
		}
	}
}

func checkResult(r *Result, res config.ResultConfig) {
	if res.Separator == "" {
		r.fail(failure.Config, Issue{
			Field:   "result.separator",
			Message: "separator must not be empty",
			Code:    CodeSeparator,
		})
	}
	if strings.TrimSpace(res.BaseName) == "" {
		r.fail(failure.Config, Issue{
			Field:   "result.baseName",
			Message: "archive base name is required",
			Code:    CodeBaseName,
		})
	}

	for _, spec := range []struct {
		field string
		fs    config.FileSpec
	}{
		{"result.header", res.Header},
		{"result.detail", res.Detail},
	} {
		if strings.TrimSpace(spec.fs.Filename) == "" {
			r.fail(failure.Config, Issue{
				Field:   spec.field + ".filename",
				Message: "file name is required",
				Code:    CodeFilename,
			})
		}

		names := make(map[string]bool)
		for i, p := range spec.fs.Properties {
			field := fmt.Sprintf("%s.properties[%d]", spec.field, i)
			if strings.TrimSpace(p.Name) == "" {
				r.fail(failure.Config, Issue{
					Field:   field + ".name",
					Message: "property name is required",
					Code:    CodePropertyName,
				})
				continue
			}
			if names[p.Name] {
				r.warn(Issue{
					Field:   field + ".name",
					Message: fmt.Sprintf("property %q is listed more than once", p.Name),
					Value:   p.Name,
					Code:    CodeDuplicateProperty,
				})
			}
			names[p.Name] = true
		}
	}

	if res.Header.Filename != "" && res.Header.Filename == res.Detail.Filename {
		r.fail(failure.Config, Issue{
			Field:   "result.detail.filename",
			Message: fmt.Sprintf("header and detail must use different file names, both are %q", res.Detail.Filename),
			Value:   res.Detail.Filename,
			Code:    CodeDuplicateFilename,
		})
	}
}
