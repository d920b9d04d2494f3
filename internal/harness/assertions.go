package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/plenix/tikrana/internal/engine"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Check    string // Expectation key, e.g. "archive_name"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Context  string // Relevant output excerpt, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Context != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for _, line := range strings.Split(e.Context, "\n") {
			fmt.Fprintf(&buf, "  | %s\n", line)
		}
	}
	return buf.String()
}

// EvaluateExpect checks the outcome of a run against every set field of
// expect. Returns one error message per failed check, in a fixed order.
func EvaluateExpect(outcome *engine.Result, expect Expect) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.Success != nil && outcome.Success != *expect.Success {
		// Nothing else is meaningful when the run went the other way.
		return []string{checkSuccess(outcome, *expect.Success).Error()}
	}

	if !outcome.Success {
		add(checkCategory(outcome, expect))
		add(checkMessage(outcome, expect))
		add(checkMissing(outcome, expect))
	} else {
		add(checkArchiveName(outcome, expect))
		for _, want := range expect.HeaderContains {
			add(checkContains("header_contains", outcome.HeaderText, want))
		}
		for _, want := range expect.DetailContains {
			add(checkContains("detail_contains", outcome.DetailText, want))
		}
		add(checkDetailLines(outcome, expect))
		add(checkExtracted(outcome, expect))
	}
	add(checkWarnings(outcome, expect))
	return errs
}

func checkSuccess(outcome *engine.Result, want bool) error {
	actual := "success"
	if !outcome.Success {
		actual = fmt.Sprintf("failure at %s: [%s] %s", outcome.Stage, outcome.Error.Category, outcome.Error.Message)
	}
	expected := "success"
	if !want {
		expected = "failure"
	}
	return &AssertionError{Check: "success", Expected: expected, Actual: actual}
}

func checkCategory(outcome *engine.Result, expect Expect) error {
	if expect.Category == "" || outcome.Error.Category == expect.Category {
		return nil
	}
	return &AssertionError{
		Check:    "category",
		Expected: string(expect.Category),
		Actual:   fmt.Sprintf("%s (%s)", outcome.Error.Category, outcome.Error.Message),
	}
}

func checkMessage(outcome *engine.Result, expect Expect) error {
	if expect.MessageContains == "" || strings.Contains(outcome.Error.Message, expect.MessageContains) {
		return nil
	}
	return &AssertionError{
		Check:    "message_contains",
		Expected: fmt.Sprintf("message containing %q", expect.MessageContains),
		Actual:   outcome.Error.Message,
	}
}

func checkMissing(outcome *engine.Result, expect Expect) error {
	if expect.Missing == nil || slices.Equal(outcome.Error.Fields, expect.Missing) {
		return nil
	}
	return &AssertionError{
		Check:    "missing",
		Expected: fmt.Sprintf("%v", expect.Missing),
		Actual:   fmt.Sprintf("%v", outcome.Error.Fields),
	}
}

func checkArchiveName(outcome *engine.Result, expect Expect) error {
	if expect.ArchiveName == "" || outcome.ArchiveName == expect.ArchiveName {
		return nil
	}
	return &AssertionError{
		Check:    "archive_name",
		Expected: expect.ArchiveName,
		Actual:   outcome.ArchiveName,
	}
}

func checkContains(check, text, want string) error {
	if strings.Contains(text, want) {
		return nil
	}
	return &AssertionError{
		Check:    check,
		Expected: fmt.Sprintf("output containing %q", want),
		Actual:   "not found",
		Context:  text,
	}
}

func checkDetailLines(outcome *engine.Result, expect Expect) error {
	if expect.DetailLines == nil {
		return nil
	}
	lines := 0
	if outcome.DetailText != "" {
		lines = strings.Count(outcome.DetailText, "\n") + 1
	}
	if lines == *expect.DetailLines {
		return nil
	}
	return &AssertionError{
		Check:    "detail_lines",
		Expected: fmt.Sprintf("%d lines", *expect.DetailLines),
		Actual:   fmt.Sprintf("%d lines", lines),
		Context:  outcome.DetailText,
	}
}

func checkWarnings(outcome *engine.Result, expect Expect) error {
	if expect.Warnings == nil || len(outcome.Warnings) == *expect.Warnings {
		return nil
	}
	messages := make([]string, len(outcome.Warnings))
	for i, w := range outcome.Warnings {
		messages[i] = w.Message
	}
	return &AssertionError{
		Check:    "warnings",
		Expected: fmt.Sprintf("%d warning(s)", *expect.Warnings),
		Actual:   fmt.Sprintf("%d warning(s)", len(outcome.Warnings)),
		Context:  strings.Join(messages, "\n"),
	}
}

// checkExtracted uses subset semantics: only the listed fields are compared.
func checkExtracted(outcome *engine.Result, expect Expect) error {
	if len(expect.Extracted) == 0 {
		return nil
	}

	keys := make([]string, 0, len(expect.Extracted))
	for k := range expect.Extracted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := outcome.Extracted.Header[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: absent", k))
			continue
		}
		if got != expect.Extracted[k] {
			mismatches = append(mismatches, fmt.Sprintf("%s: %q != %q", k, got, expect.Extracted[k]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Check:    "extracted",
		Expected: fmt.Sprintf("%v", expect.Extracted),
		Actual:   strings.Join(mismatches, "; "),
	}
}
