package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/testutil"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the path of the application configuration.
	// Relative paths are resolved against the scenario file's directory.
	Config string `yaml:"config"`

	// Source names the configured source to process the workbook with.
	Source string `yaml:"source"`

	// RunID is an optional fixed run identifier.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Workbook is the spreadsheet under test.
	Workbook WorkbookFixture `yaml:"workbook"`

	// Input holds the user-supplied header values.
	Input map[string]string `yaml:"input,omitempty"`

	// Expect describes the required outcome.
	Expect Expect `yaml:"expect"`
}

// WorkbookFixture describes the uploaded file.
type WorkbookFixture struct {
	// Filename is the name the file is uploaded under; its extension is
	// validated like a real upload.
	Filename string `yaml:"filename"`

	// Raw, when set, is used verbatim as the file content instead of Sheets.
	Raw string `yaml:"raw,omitempty"`

	// File is a workbook on disk whose bytes are uploaded as they are.
	// Relative paths are resolved against the scenario file's directory.
	File string `yaml:"file,omitempty"`

	// Sheets are rendered into an .xlsx workbook, in order.
	Sheets []SheetFixture `yaml:"sheets,omitempty"`
}

// SheetFixture is one worksheet of a fixture workbook.
type SheetFixture struct {
	Name  string          `yaml:"name"`
	Cells map[string]Cell `yaml:"cells"`
}

// Cell is a typed fixture cell. The YAML type of a plain scalar selects the
// cell type: strings become text, ints and floats numbers, booleans
// booleans and timestamps short dates. The mapping forms {date: ...},
// {number: ...} and {text: ...} accept an optional number format.
type Cell struct {
	testutil.Value
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Cell) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return c.scalar(node)
	case yaml.MappingNode:
		return c.mapping(node)
	default:
		return fmt.Errorf("line %d: cell must be a scalar or a mapping", node.Line)
	}
}

func (c *Cell) scalar(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!str":
		c.Value = testutil.Text(node.Value)
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		c.Value = testutil.Number(f)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		c.Value = testutil.Bool(b)
	case "!!timestamp":
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return err
		}
		c.Value = testutil.Date(t.Year(), t.Month(), t.Day())
	default:
		return fmt.Errorf("line %d: unsupported cell value %q (%s)", node.Line, node.Value, node.ShortTag())
	}
	return nil
}

func (c *Cell) mapping(node *yaml.Node) error {
	var m struct {
		Text   *string    `yaml:"text"`
		Number *float64   `yaml:"number"`
		Date   *time.Time `yaml:"date"`
		Format string     `yaml:"format"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	switch {
	case m.Text != nil && m.Number == nil && m.Date == nil:
		c.Value = testutil.Text(*m.Text)
	case m.Number != nil && m.Text == nil && m.Date == nil:
		c.Value = testutil.NumberFormat(*m.Number, m.Format)
	case m.Date != nil && m.Text == nil && m.Number == nil:
		d := *m.Date
		if m.Format == "" {
			c.Value = testutil.Date(d.Year(), d.Month(), d.Day())
		} else {
			c.Value = testutil.DateFormat(d.Year(), d.Month(), d.Day(), m.Format)
		}
	default:
		return fmt.Errorf("line %d: cell mapping needs exactly one of text, number or date", node.Line)
	}
	return nil
}

// Bytes returns the file content the fixture describes.
func (w WorkbookFixture) Bytes() ([]byte, error) {
	if w.Raw != "" {
		return []byte(w.Raw), nil
	}
	if w.File != "" {
		return os.ReadFile(w.File)
	}

	specs := make([]testutil.SheetSpec, len(w.Sheets))
	for i, sh := range w.Sheets {
		cells := make(map[string]testutil.Value, len(sh.Cells))
		for addr, c := range sh.Cells {
			cells[addr] = c.Value
		}
		specs[i] = testutil.SheetSpec{Name: sh.Name, Cells: cells}
	}
	return testutil.WriteXLSX(specs...)
}

// Expect specifies the required outcome of a scenario.
// Unset fields are not checked.
type Expect struct {
	Success         *bool             `yaml:"success"`
	Category        failure.Category  `yaml:"category,omitempty"`
	MessageContains string            `yaml:"message_contains,omitempty"`
	Missing         []string          `yaml:"missing,omitempty"`
	ArchiveName     string            `yaml:"archive_name,omitempty"`
	HeaderContains  []string          `yaml:"header_contains,omitempty"`
	DetailContains  []string          `yaml:"detail_contains,omitempty"`
	DetailLines     *int              `yaml:"detail_lines,omitempty"`
	Warnings        *int              `yaml:"warnings,omitempty"`
	Extracted       map[string]string `yaml:"extracted,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving the config path against
// baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) && baseDir != "" {
		scenario.Config = filepath.Join(baseDir, scenario.Config)
	}
	if scenario.Workbook.File != "" && !filepath.IsAbs(scenario.Workbook.File) && baseDir != "" {
		scenario.Workbook.File = filepath.Join(baseDir, scenario.Workbook.File)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if _, err := os.Stat(s.Config); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", s.Config)
	}
	if s.Source == "" {
		return fmt.Errorf("source is required")
	}

	if s.Workbook.Filename == "" {
		return fmt.Errorf("workbook.filename is required")
	}
	contents := 0
	for _, set := range []bool{s.Workbook.Raw != "", len(s.Workbook.Sheets) > 0, s.Workbook.File != ""} {
		if set {
			contents++
		}
	}
	if contents > 1 {
		return fmt.Errorf("workbook: raw, sheets and file are mutually exclusive")
	}
	if contents == 0 {
		return fmt.Errorf("workbook: one of raw, sheets or file is required")
	}
	if s.Workbook.File != "" {
		if _, err := os.Stat(s.Workbook.File); err != nil {
			return fmt.Errorf("workbook file not found: %s", s.Workbook.File)
		}
	}
	for i, sh := range s.Workbook.Sheets {
		if sh.Name == "" {
			return fmt.Errorf("workbook.sheets[%d]: name is required", i)
		}
	}

	return validateExpect(&s.Expect)
}

func validateExpect(e *Expect) error {
	if e.Success == nil {
		return fmt.Errorf("expect.success is required")
	}

	if e.Category != "" {
		switch e.Category {
		case failure.FileFormat, failure.Config, failure.Extraction,
			failure.Validation, failure.Network, failure.Unknown:
		default:
			return fmt.Errorf("expect.category: unknown category %q", e.Category)
		}
	}

	if *e.Success {
		if e.Category != "" || e.MessageContains != "" || len(e.Missing) > 0 {
			return fmt.Errorf("expect: failure checks only apply to unsuccessful runs")
		}
		return nil
	}
	if e.ArchiveName != "" || len(e.HeaderContains) > 0 || len(e.DetailContains) > 0 ||
		e.DetailLines != nil || len(e.Extracted) > 0 {
		return fmt.Errorf("expect: output checks only apply to successful runs")
	}
	return nil
}
