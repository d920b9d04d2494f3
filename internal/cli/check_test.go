package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValid(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "text", Config: testConfig})

	out, _, err := execute(cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
}

func TestCheckValidJSON(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "json", Config: testConfig})

	out, _, err := execute(cmd)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Errors)
}

func TestCheckInvalid(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "text", Config: "testdata/invalid.yaml"})

	out, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Configuration invalid")
	assert.Contains(t, err.Error(), "configuration check failed")
}

func TestCheckInvalidJSON(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "json", Config: "testdata/invalid.yaml"})

	out, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Message)
	// Every problem is reported, not just the first.
	assert.Greater(t, len(resp.Data.Schema)+len(resp.Data.Errors), 1)
}

func TestCheckMissingConfig(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "text", Config: "testdata/nope.yaml"})

	_, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
