package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProbe = errors.New("probe failed")

func init() {
	Register(errProbe, NewExtraction, "Probe", "Look at the probe")
}

func TestConstructors_DefaultSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		category Category
		message  string
	}{
		{"file format", NewFileFormat("bad magic"), FileFormat, "Invalid file format: bad magic"},
		{"config", NewConfig("no sources"), Config, "Configuration error: no sources"},
		{"extraction", NewExtraction("no table"), Extraction, "Data extraction failed: no table"},
		{"network", NewNetwork("timeout"), Network, "Failed to load: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.Len(t, tt.err.Suggestions, 3)
		})
	}
}

func TestNewValidation_VerbatimMessage(t *testing.T) {
	err := NewValidation("Missing header properties: A")
	assert.Equal(t, "Missing header properties: A", err.Message)
	assert.Empty(t, err.Suggestions)
}

func TestMissing(t *testing.T) {
	err := Missing([]string{"DocDueDate", "CardCode"})
	assert.Equal(t, Validation, err.Category)
	assert.Equal(t, "Missing header properties: DocDueDate, CardCode", err.Message)
	assert.Equal(t, []string{"DocDueDate", "CardCode"}, err.Fields)
}

func TestDisplay(t *testing.T) {
	err := New(Config, "broken", "first", "second")
	assert.Equal(t, "broken\n\nSuggestions:\n• first\n• second", err.Display())
	assert.Equal(t, "bare", New(Unknown, "bare").Display())
}

func TestWrap_PassesThroughTaggedErrors(t *testing.T) {
	orig := NewConfig("x")
	wrapped := fmt.Errorf("loading: %w", orig)

	got := Wrap(wrapped, "ctx")
	assert.Same(t, orig, got)
	assert.True(t, Is(wrapped, Config))
	assert.Equal(t, Config, CategoryOf(wrapped))
}

func TestWrap_RegisteredSentinel(t *testing.T) {
	err := fmt.Errorf("%w: sensor 3", errProbe)

	got := Wrap(err, "ctx")
	require.NotNil(t, got)
	assert.Equal(t, Extraction, got.Category)
	assert.Equal(t, "Data extraction failed: Probe: probe failed: sensor 3", got.Message)
	assert.Equal(t, []string{"Look at the probe"}, got.Suggestions)
	assert.ErrorIs(t, got, errProbe)
}

func TestWrap_Unknown(t *testing.T) {
	got := Wrap(errors.New("boom"), "processing")
	assert.Equal(t, Unknown, got.Category)
	assert.Equal(t, "processing: boom", got.Message)
	assert.Equal(t, []string{"If this error persists, please contact support"}, got.Suggestions)
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.False(t, Is(nil, Unknown))
	assert.Equal(t, Unknown, CategoryOf(errors.New("plain")))
}
