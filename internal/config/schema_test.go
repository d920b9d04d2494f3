package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema_TestdataConforms(t *testing.T) {
	for _, name := range []string{"tikrana.yaml", "bare.json"} {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("testdata", name))
			require.NoError(t, err)
			assert.Empty(t, CheckSchema(data, DetectFormat(name, data)))
		})
	}
}

func TestCheckSchema_Violations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{
			name: "no sources",
			doc: `{"name": "x", "sources": [], "result": {"separator": ",", "baseName": "b",
				"header": {"filename": "h", "properties": []}, "detail": {"filename": "d", "properties": []}}}`,
			path: "sources",
		},
		{
			name: "bad detail locator",
			doc: `{"name": "x", "sources": [{"name": "s", "detail": {"locator": "12A", "properties": []}}],
				"result": {"separator": ",", "baseName": "b",
				"header": {"filename": "h", "properties": []}, "detail": {"filename": "d", "properties": []}}}`,
			path: "sources.0.detail.locator",
		},
		{
			name: "unknown field",
			doc: `{"name": "x", "colour": "red", "sources": [{"name": "s", "detail": {"locator": "A1", "properties": []}}],
				"result": {"separator": ",", "baseName": "b",
				"header": {"filename": "h", "properties": []}, "detail": {"filename": "d", "properties": []}}}`,
			path: "colour",
		},
		{
			name: "negative sheet index",
			doc: `{"name": "x", "sources": [{"name": "s", "sheetIndex": -1, "detail": {"locator": "A1", "properties": []}}],
				"result": {"separator": ",", "baseName": "b",
				"header": {"filename": "h", "properties": []}, "detail": {"filename": "d", "properties": []}}}`,
			path: "sources.0.sheetIndex",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := CheckSchema([]byte(tt.doc), FormatJSON)
			require.NotEmpty(t, issues)

			var paths []string
			for _, issue := range issues {
				paths = append(paths, issue.Path)
				assert.NotEmpty(t, issue.Message)
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestCheckSchema_SyntaxError(t *testing.T) {
	issues := CheckSchema([]byte(`{"name": `), FormatJSON)
	require.NotEmpty(t, issues)
}

func TestSchemaIssue_String(t *testing.T) {
	assert.Equal(t, "a.b (line 3): bad", SchemaIssue{Path: "a.b", Message: "bad", Line: 3}.String())
	assert.Equal(t, "<document>: bad", SchemaIssue{Message: "bad"}.String())
}
