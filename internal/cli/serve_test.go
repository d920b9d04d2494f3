package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRefusesBrokenConfig(t *testing.T) {
	cmd := NewServeCommand(&RootOptions{Format: "text", Config: "testdata/nope.yaml"})

	out, _, err := execute(cmd, "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [")
}

func TestServeStopsWithContext(t *testing.T) {
	cmd := NewServeCommand(&RootOptions{Format: "text", Config: testConfig})
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, cmd.ExecuteContext(ctx))
}
