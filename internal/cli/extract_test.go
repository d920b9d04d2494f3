package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/engine"
)

func TestExtractText(t *testing.T) {
	path := writeWorkbook(t, coralCells())
	cmd := NewExtractCommand(&RootOptions{Format: "text", Config: testConfig})

	out, _, err := execute(cmd, "--source", "coral", path)
	require.NoError(t, err)
	assert.Contains(t, out, `NumAtCard = "12345"`)
	assert.Contains(t, out, `DocDate = "20240115"`)
	assert.Contains(t, out, "Detail (2 rows):")
	assert.Contains(t, out, `[1] ItemCode="PTQCH068077" Quantity="4"`)
	assert.Contains(t, out, `[2] ItemCode="7861001234567" Quantity="2.5"`)
}

func TestExtractJSON(t *testing.T) {
	path := writeWorkbook(t, coralCells())
	cmd := NewExtractCommand(&RootOptions{Format: "json", Config: testConfig})

	out, _, err := execute(cmd, "--source", "coral", path)
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   engine.ExtractedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "12345", resp.Data.Header["NumAtCard"])
	assert.Equal(t, "C0991234567", resp.Data.Header["CardCode"])
	require.Len(t, resp.Data.Detail, 2)
	assert.Equal(t, "PTQCH068077", resp.Data.Detail[0]["ItemCode"])
}

func TestExtractNotAWorkbook(t *testing.T) {
	path := writeCSV(t)
	cmd := NewExtractCommand(&RootOptions{Format: "text", Config: testConfig})

	out, _, err := execute(cmd, "--source", "coral", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [FILE_FORMAT]: Invalid file format:")
	assert.Contains(t, out, "Suggestions:")
}
