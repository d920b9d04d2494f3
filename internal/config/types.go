// Package config models the declarative application configuration: the
// spreadsheet sources a workbook can come from and the shape of the text
// files produced from it.
//
// An AppConfig is parsed once and treated as immutable afterwards. Parsing
// applies structural defaults only; cross-field checks live in the validate
// package and the CUE schema lint in CheckSchema.
package config

import "sort"

// SourceProperty maps one spreadsheet value to an output field.
//
// For header properties Locator is a cell address such as "B3". For detail
// properties it is the label of a table column such as "BARRA".
type SourceProperty struct {
	Name         string       `yaml:"name" json:"name"`
	Locator      string       `yaml:"locator" json:"locator"`
	Replacements Replacements `yaml:"replacements,omitempty" json:"replacements,omitempty"`
}

// DetailSpec locates the repeated-row table of a source.
type DetailSpec struct {
	// Locator is the top-left header cell of the table.
	Locator string `yaml:"locator" json:"locator"`

	// EndValue, when set, ends the table at the first row whose first cell
	// equals it. A blank first cell always ends the table.
	EndValue *string `yaml:"endValue,omitempty" json:"endValue,omitempty"`

	Properties []SourceProperty `yaml:"properties" json:"properties"`
}

// SourceConfig describes one spreadsheet layout.
type SourceConfig struct {
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description" json:"description"`
	Logo          string           `yaml:"logo,omitempty" json:"logo,omitempty"`
	SheetIndex    int              `yaml:"sheetIndex" json:"sheetIndex"`
	Header        []SourceProperty `yaml:"header" json:"header"`
	Detail        DetailSpec       `yaml:"detail" json:"detail"`
	DefaultValues Strings          `yaml:"defaultValues" json:"defaultValues"`
}

// ResultProperty is one output field. A non-nil DefaultValue means the field
// never needs extraction or user input.
type ResultProperty struct {
	Name         string  `yaml:"name" json:"name"`
	Type         string  `yaml:"type,omitempty" json:"type,omitempty"`
	Prompt       string  `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	FYI          string  `yaml:"fyi,omitempty" json:"fyi,omitempty"`
	DefaultValue *string `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
}

// IsDate reports whether the field holds a date.
func (p ResultProperty) IsDate() bool {
	return p.Type == "date"
}

// FileSpec describes one generated text file.
type FileSpec struct {
	Filename   string           `yaml:"filename" json:"filename"`
	Prolog     string           `yaml:"prolog,omitempty" json:"prolog,omitempty"`
	Epilog     string           `yaml:"epilog,omitempty" json:"epilog,omitempty"`
	Properties []ResultProperty `yaml:"properties" json:"properties"`
}

// ResultConfig describes the generated archive.
type ResultConfig struct {
	Separator string   `yaml:"separator" json:"separator"`
	BaseName  string   `yaml:"baseName" json:"baseName"`
	Header    FileSpec `yaml:"header" json:"header"`
	Detail    FileSpec `yaml:"detail" json:"detail"`
}

// AppConfig is the root configuration object.
type AppConfig struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Logo        string         `yaml:"logo,omitempty" json:"logo,omitempty"`
	Parameters  Strings        `yaml:"parameters" json:"parameters"`
	Sources     []SourceConfig `yaml:"sources" json:"sources"`
	Result      ResultConfig   `yaml:"result" json:"result"`
}

// Source looks up a source by name.
func (c *AppConfig) Source(name string) (*SourceConfig, bool) {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i], true
		}
	}
	return nil, false
}

// SourceNames lists source names in configuration order.
func (c *AppConfig) SourceNames() []string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name
	}
	return names
}

// applyDefaults fills the optional collections so callers never see nil.
func (c *AppConfig) applyDefaults() {
	if c.Parameters == nil {
		c.Parameters = Strings{}
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Header == nil {
			s.Header = []SourceProperty{}
		}
		if s.Detail.Properties == nil {
			s.Detail.Properties = []SourceProperty{}
		}
		if s.DefaultValues == nil {
			s.DefaultValues = Strings{}
		}
	}
	for _, spec := range []*FileSpec{&c.Result.Header, &c.Result.Detail} {
		if spec.Properties == nil {
			spec.Properties = []ResultProperty{}
		}
	}
}

// Strings is a string map whose values may be written as any scalar in the
// document; numbers and booleans are kept in their textual form.
type Strings map[string]string

// Keys returns the map keys in sorted order.
func (s Strings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
