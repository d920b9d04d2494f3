package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/validate"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func successOutcome() *engine.Result {
	return &engine.Result{
		Success:     true,
		HeaderText:  "H\n1\t2",
		DetailText:  "D\na\nb",
		ArchiveName: "out.zip",
		Extracted: &engine.ExtractedData{
			Header: map[string]string{"A": "1", "B": "2"},
		},
		Warnings: []validate.Issue{{Message: "careful"}},
	}
}

func TestEvaluateExpect_AllHold(t *testing.T) {
	errs := EvaluateExpect(successOutcome(), Expect{
		Success:        boolPtr(true),
		ArchiveName:    "out.zip",
		HeaderContains: []string{"1\t2"},
		DetailContains: []string{"a\nb"},
		DetailLines:    intPtr(3),
		Warnings:       intPtr(1),
		Extracted:      map[string]string{"B": "2"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateExpect_SuccessOnly(t *testing.T) {
	assert.Empty(t, EvaluateExpect(successOutcome(), Expect{Success: boolPtr(true)}))
}

func TestEvaluateExpect_Mismatches(t *testing.T) {
	errs := EvaluateExpect(successOutcome(), Expect{
		Success:     boolPtr(true),
		DetailLines: intPtr(2),
		Warnings:    intPtr(0),
		Extracted:   map[string]string{"A": "9", "Z": "1"},
	})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "detail_lines")
	assert.Contains(t, errs[0], "Actual: 3 lines")
	assert.Contains(t, errs[1], `A: "1" != "9"; Z: absent`)
	assert.Contains(t, errs[2], "warnings")
	assert.Contains(t, errs[2], "  | careful")
}

func TestEvaluateExpect_Failure(t *testing.T) {
	outcome := &engine.Result{
		Stage: engine.StageComplete,
		Error: failure.Missing([]string{"DocDueDate"}),
	}

	assert.Empty(t, EvaluateExpect(outcome, Expect{
		Success:         boolPtr(false),
		Category:        failure.Validation,
		MessageContains: "DocDueDate",
		Missing:         []string{"DocDueDate"},
	}))

	errs := EvaluateExpect(outcome, Expect{
		Success:         boolPtr(false),
		Category:        failure.Config,
		MessageContains: "nope",
		Missing:         []string{"Other"},
	})
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "Expected: CONFIG")
	assert.Contains(t, errs[1], `message containing "nope"`)
	assert.Contains(t, errs[2], "[DocDueDate]")
}

func TestEvaluateExpect_WrongDirection(t *testing.T) {
	errs := EvaluateExpect(successOutcome(), Expect{Success: boolPtr(false), Category: failure.Config})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Expected: failure")
	assert.Contains(t, errs[0], "Actual: success")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Check: "c", Expected: "e", Actual: "a", Context: "x\ny"}
	assert.Equal(t, "Expectation failed: c\n  Expected: e\n  Actual: a\n\nOutput:\n  | x\n  | y\n", err.Error())
}
