package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/testutil"
)

const testConfig = "testdata/tikrana.yaml"

func coralCells() map[string]testutil.Value {
	return map[string]testutil.Value{
		"A3":  testutil.Text("Orden"),
		"B3":  testutil.Text("12345"),
		"A4":  testutil.Text("Fecha"),
		"B4":  testutil.Text("2024-01-15"),
		"A12": testutil.Text("BARRA"),
		"B12": testutil.Text("CANTIDAD"),
		"A13": testutil.Number(68077),
		"B13": testutil.Number(4),
		"A14": testutil.Text("7861001234567"),
		"B14": testutil.Number(2.5),
	}
}

// writeWorkbook writes an xlsx built from cells into a temp directory and
// returns its path.
func writeWorkbook(t *testing.T, cells map[string]testutil.Value) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pedido-coral.xlsx")
	data := testutil.BuildXLSX(t, testutil.SheetSpec{Name: "Pedido", Cells: cells})
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeCSV writes a comma-separated export large enough to pass the size
// check, so the extension check is the one that rejects it.
func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pedido.csv")
	data := "BARRA,CANTIDAD\n" + strings.Repeat("7861001234567,4\n", 64)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}
