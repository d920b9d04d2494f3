package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load the scenario's configuration and look up its source
//  2. Render the workbook fixture into file bytes
//  3. Process the file with a fixed run identifier and silenced logs
//  4. Evaluate the expectations against the engine's outcome
//
// An error is returned only when the scenario cannot be executed at all;
// failed expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := config.LoadFile(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	source, ok := cfg.Source(scenario.Source)
	if !ok {
		return nil, fmt.Errorf("source %q not found in %s (available: %v)",
			scenario.Source, scenario.Config, cfg.SourceNames())
	}

	data, err := scenario.Workbook.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	eng := engine.New(
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)),
	)
	outcome := eng.Process(engine.Request{
		Data:      data,
		Filename:  scenario.Workbook.Filename,
		Source:    *source,
		Result:    cfg.Result,
		UserInput: scenario.Input,
	})

	result := NewResult()
	result.Outcome = outcome
	for _, msg := range EvaluateExpect(outcome, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}
