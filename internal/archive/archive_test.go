package archive

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
)

var sample = []Entry{
	{Name: "cabecera.txt", Content: "DocNum\tCardCode\n1\tC0991234567"},
	{Name: "detalle.txt", Content: "ParentKey\tItemCode\n1\tPTQCH068077\n1\t7861001234567"},
}

func TestBuild_RoundTrip(t *testing.T) {
	data, err := Build(sample...)
	require.NoError(t, err)

	got, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(sample...)
	require.NoError(t, err)
	second, err := Build(sample...)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "archives differ between builds")
}

func TestBuild_NoTimestamps(t *testing.T) {
	data, err := Build(sample...)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	for _, f := range zr.File {
		assert.Zero(t, f.ModifiedDate, f.Name)
		assert.Zero(t, f.ModifiedTime, f.Name)
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	reversed := []Entry{sample[1], sample[0]}
	data, err := Build(reversed...)
	require.NoError(t, err)

	got, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, "detalle.txt", got[0].Name)
	assert.Equal(t, "cabecera.txt", got[1].Name)
}

func TestBuild_EmptyContent(t *testing.T) {
	data, err := Build(Entry{Name: "empty.txt"})
	require.NoError(t, err)

	got, err := Read(data)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "empty.txt", Content: ""}}, got)
}

func TestWrite_DuplicateNames(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Entry{Name: "a.txt"}, Entry{Name: "a.txt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Zero(t, buf.Len())
	assert.Equal(t, failure.Config, failure.Wrap(err, "test").Category)
}

func TestRead_Corrupt(t *testing.T) {
	_, err := Read([]byte("definitely not a zip"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, failure.FileFormat, failure.Wrap(err, "test").Category)
}

func TestFromResult(t *testing.T) {
	cfg := config.ResultConfig{
		Header: config.FileSpec{Filename: "cabecera.txt"},
		Detail: config.FileSpec{Filename: "detalle.txt"},
	}
	res := &engine.Result{
		Success:    true,
		HeaderText: sample[0].Content,
		DetailText: sample[1].Content,
	}

	entries, err := FromResult(res, cfg)
	require.NoError(t, err)
	assert.Equal(t, sample, entries)
}

func TestFromResult_Failed(t *testing.T) {
	_, err := FromResult(&engine.Result{Error: failure.Missing([]string{"DocDueDate"})}, config.ResultConfig{})
	assert.ErrorIs(t, err, ErrNotProcessed)

	_, err = FromResult(nil, config.ResultConfig{})
	assert.ErrorIs(t, err, ErrNotProcessed)
}
