package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/failure"
)

func strPtr(s string) *string { return &s }

func TestLoadFile_YAMLEnvelope(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "tikrana.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Tikrana", cfg.Name)
	assert.Equal(t, []string{"coral", "tia"}, cfg.SourceNames())
	assert.Equal(t, "500", cfg.Parameters["maxRows"])

	coral, ok := cfg.Source("coral")
	require.True(t, ok)
	require.Len(t, coral.Header, 2)
	assert.Equal(t, "NumAtCard", coral.Header[0].Name)
	assert.Equal(t, "B3", coral.Header[0].Locator)
	assert.Equal(t, Replacements{{Pattern: "-", Replacement: ""}}, coral.Header[1].Replacements)

	assert.Equal(t, "A12", coral.Detail.Locator)
	assert.Nil(t, coral.Detail.EndValue)
	require.Len(t, coral.Detail.Properties, 2)
	assert.Equal(t, Replacements{
		{Pattern: "68077", Replacement: "PTQCH068077"},
		{Pattern: "68074", Replacement: "PTQH068074"},
	}, coral.Detail.Properties[0].Replacements)
	assert.Equal(t, Strings{"CardCode": "C0991234567"}, coral.DefaultValues)

	tia, ok := cfg.Source("tia")
	require.True(t, ok)
	assert.Equal(t, 1, tia.SheetIndex)
	assert.Equal(t, strPtr("TOTAL"), tia.Detail.EndValue)

	assert.Equal(t, "\t", cfg.Result.Separator)
	assert.Equal(t, "sap-pedido-${sourceName}-${NumAtCard}", cfg.Result.BaseName)
	assert.Equal(t, "cabecera.txt", cfg.Result.Header.Filename)
	assert.Equal(t, "detalle.txt", cfg.Result.Detail.Filename)
	assert.Contains(t, cfg.Result.Header.Prolog, "DocNum\tDocEntry\tDocType")

	docNum := cfg.Result.Header.Properties[0]
	assert.Equal(t, "DocNum", docNum.Name)
	assert.Equal(t, strPtr("1"), docNum.DefaultValue)

	whs := cfg.Result.Detail.Properties[4]
	assert.Equal(t, "WhsCode", whs.Name)
	assert.Equal(t, strPtr("BD-PTE"), whs.DefaultValue)

	due := cfg.Result.Header.Properties[6]
	assert.True(t, due.IsDate())
	assert.Nil(t, due.DefaultValue)
}

func TestLoadFile_JSONBare(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "bare.json"))
	require.NoError(t, err)

	assert.Equal(t, Strings{"source": "Cliente", "retries": "3"}, cfg.Parameters)

	rosado, ok := cfg.Source("rosado")
	require.True(t, ok)
	assert.Equal(t, 0, rosado.SheetIndex)
	assert.Equal(t, Strings{"CardCode": "C0990004196", "Series": "12"}, rosado.DefaultValues)
	assert.Equal(t, Replacements{
		{Pattern: "^0+", Replacement: ""},
		{Pattern: "PED", Replacement: ""},
		{Pattern: `\s+`, Replacement: "-"},
	}, rosado.Header[0].Replacements)

	assert.Equal(t, strPtr("1"), cfg.Result.Header.Properties[0].DefaultValue)
	assert.Equal(t, strPtr("false"), cfg.Result.Header.Properties[1].DefaultValue)
	assert.Nil(t, cfg.Result.Header.Properties[2].DefaultValue)
	assert.Equal(t, "END", cfg.Result.Detail.Epilog)
}

func TestParse_YAMLAndJSONAgree(t *testing.T) {
	yamlDoc := `
name: demo
sources:
  - name: s
    detail:
      locator: A1
      properties:
        - name: Code
          locator: CODE
          replacements:
            z: "1"
            a: 2
result:
  separator: ","
  baseName: out
  header: {filename: h.txt, properties: [{name: X, defaultValue: 7}]}
  detail: {filename: d.txt, properties: []}
`
	jsonDoc := `{
  "name": "demo",
  "sources": [{"name": "s", "detail": {"locator": "A1", "properties": [
    {"name": "Code", "locator": "CODE", "replacements": {"z": "1", "a": 2}}]}}],
  "result": {"separator": ",", "baseName": "out",
    "header": {"filename": "h.txt", "properties": [{"name": "X", "defaultValue": 7}]},
    "detail": {"filename": "d.txt", "properties": []}}
}`

	fromYAML, err := Parse([]byte(yamlDoc), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(jsonDoc), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromJSON)
	assert.Equal(t, Replacements{{"z", "1"}, {"a", "2"}}, fromYAML.Sources[0].Detail.Properties[0].Replacements)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"name": "n", "sources": [{"name": "s", "detail": {"locator": "A1"}}],
		"result": {"header": {}, "detail": {}}}`), FormatJSON)
	require.NoError(t, err)

	s := cfg.Sources[0]
	assert.Equal(t, 0, s.SheetIndex)
	assert.NotNil(t, s.Header)
	assert.Empty(t, s.Header)
	assert.NotNil(t, s.DefaultValues)
	assert.NotNil(t, s.Detail.Properties)
	assert.NotNil(t, cfg.Parameters)
	assert.NotNil(t, cfg.Result.Header.Properties)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"invalid json", `{"name":`, FormatJSON},
		{"invalid yaml", "config:\n  name: [unterminated", FormatYAML},
		{"empty yaml", "", FormatYAML},
		{"yaml scalar root", "just text", FormatYAML},
		{"replacements list", `{"sources":[{"header":[{"name":"a","locator":"A1","replacements":["x"]}]}]}`, FormatJSON},
		{"unknown format", `{}`, Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Equal(t, failure.Config, failure.Wrap(err, "test").Category)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Format
	}{
		{"config.yaml", `{}`, FormatYAML},
		{"CONFIG.YML", ``, FormatYAML},
		{"config", "port: 8080\nconfig: {}", FormatYAML},
		{"config", "\n  config:\n  name: x", FormatYAML},
		{"config.json", `{"name": "x"}`, FormatJSON},
		{"config", `{"name": "x"}`, FormatJSON},
		{"config.txt", "name: x", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.name, []byte(tt.data)))
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, failure.Config, failure.Wrap(err, "test").Category)
}

func TestResolve_RemoteAndLocal(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "tikrana.yaml"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tikrana.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	ctx := context.Background()

	remote, err := Resolve(ctx, srv.Client(), srv.URL+"/tikrana.yaml")
	require.NoError(t, err)
	local, err := Resolve(ctx, nil, filepath.Join("testdata", "tikrana.yaml"))
	require.NoError(t, err)
	assert.Equal(t, local, remote)

	_, err = Resolve(ctx, srv.Client(), srv.URL+"/missing.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	fe := failure.Wrap(err, "test")
	assert.Equal(t, failure.Network, fe.Category)
	assert.Contains(t, fe.Message, "404")
}

func TestReplacements_MarshalKeepsOrder(t *testing.T) {
	r := Replacements{{"z", "1"}, {"a", "2"}}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"1","a":"2"}`, string(data))

	var back Replacements
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}
