package harness

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the observable output of a scenario run.
// Rendered files are split into lines so golden diffs stay readable.
type Snapshot struct {
	ScenarioName string   `json:"scenario_name"`
	RunID        string   `json:"run_id"`
	Success      bool     `json:"success"`
	Stage        string   `json:"stage,omitempty"`
	Category     string   `json:"category,omitempty"`
	Message      string   `json:"message,omitempty"`
	Fields       []string `json:"fields,omitempty"`
	ArchiveName  string   `json:"archive_name,omitempty"`
	Header       []string `json:"header,omitempty"`
	Detail       []string `json:"detail,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// NewSnapshot builds the snapshot of result under the given scenario name.
func NewSnapshot(name string, result *Result) Snapshot {
	out := result.Outcome
	s := Snapshot{
		ScenarioName: name,
		RunID:        out.RunID,
		Success:      out.Success,
		Stage:        string(out.Stage),
		ArchiveName:  out.ArchiveName,
		Header:       lines(out.HeaderText),
		Detail:       lines(out.DetailText),
	}
	if out.Error != nil {
		s.Category = string(out.Error.Category)
		s.Message = out.Error.Message
		s.Fields = out.Error.Fields
	}
	for _, w := range out.Warnings {
		s.Warnings = append(s.Warnings, w.Message)
	}
	return s
}

// Marshal returns the indented JSON form used in golden files, with a
// trailing newline.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
