package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/config"
)

func TestSourcesText(t *testing.T) {
	cmd := NewSourcesCommand(&RootOptions{Format: "text", Config: testConfig})

	out, _, err := execute(cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "coral: Coral Hipermercados")
	assert.Contains(t, out, "DocDueDate [date] Fecha de entrega")
	assert.NotContains(t, out, "NumAtCard [")
}

func TestSourcesJSON(t *testing.T) {
	cmd := NewSourcesCommand(&RootOptions{Format: "json", Config: testConfig})

	out, _, err := execute(cmd)
	require.NoError(t, err)

	var resp struct {
		Status string                 `json:"status"`
		Data   []config.RuntimeSource `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "coral", resp.Data[0].Name)
	require.Len(t, resp.Data[0].UserInputFields, 1)
	assert.Equal(t, "DocDueDate", resp.Data[0].UserInputFields[0].Name)
}

func TestSourcesMissingConfig(t *testing.T) {
	cmd := NewSourcesCommand(&RootOptions{Format: "text", Config: "testdata/nope.yaml"})

	out, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [")
}
