package validate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/testutil"
)

func padded(prefix []byte, size int) []byte {
	return append(append([]byte{}, prefix...), make([]byte, size-len(prefix))...)
}

func TestFile_EmptyFile(t *testing.T) {
	r := File(nil, "pedido.xlsx")
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "File is empty", r.Errors[0].Message)
	assert.Equal(t, CodeEmptyFile, r.Errors[0].Code)
	assert.Equal(t, failure.FileFormat, r.Category)
}

func TestFile_TooSmall(t *testing.T) {
	r := File(padded([]byte("PK\x03\x04"), 100), "pedido.xlsx")
	require.False(t, r.Valid)
	assert.Equal(t, "File is too small (100 bytes). This does not appear to be a valid Excel file.", r.Errors[0].Message)
}

func TestFile_SizeCheckedBeforeExtension(t *testing.T) {
	r := File([]byte("x"), "data.csv")
	require.Len(t, r.Errors, 1)
	assert.Equal(t, CodeFileTooSmall, r.Errors[0].Code)
}

func TestFile_BadExtension(t *testing.T) {
	r := File(padded([]byte("PK\x03\x04"), 1024), "data.csv")
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, `Invalid file extension ".csv". Expected: .xls, .xlsx, .xlsm, .xlsb`, r.Errors[0].Message)
	assert.Equal(t, "data.csv", r.Errors[0].Value)
}

func TestFile_ExtensionIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"A.XLSX", "b.Xls", "c.xlsm", "d.xlsb"} {
		r := File(padded([]byte("PK\x03\x04"), 1024), name)
		assert.True(t, r.Valid, name)
	}
}

func TestFile_BadSignature(t *testing.T) {
	r := File(bytes.Repeat([]byte("a"), 1024), "pedido.xlsx")
	require.False(t, r.Valid)
	assert.Equal(t, CodeBadSignature, r.Errors[0].Code)
	assert.Contains(t, r.Errors[0].Message, "signature is not recognized")
}

func TestFile_CompoundBinaryAccepted(t *testing.T) {
	r := File(padded([]byte{0xD0, 0xCF, 0x11, 0xE0}, 2048), "pedido.xls")
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestFile_LargeFileWarning(t *testing.T) {
	r := File(padded([]byte("PK\x03\x04"), LargeFileSize+1), "big.xlsx")
	assert.True(t, r.Valid)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "Large file (10.0 MB). Processing may take longer.", r.Warnings[0].Message)
}

func TestParse_Unreadable(t *testing.T) {
	r := Parse(padded([]byte{0xD0, 0xCF, 0x11, 0xE0}, 2048))
	require.False(t, r.Valid)
	assert.Equal(t, CodeUnreadable, r.Errors[0].Code)
	assert.Equal(t, "File appears to be corrupted or in an unsupported format.", r.Errors[0].Message)
	assert.Nil(t, r.Workbook)

	r = Parse(padded([]byte("PK\x03\x04"), 2048))
	require.False(t, r.Valid)
	assert.Contains(t, r.Errors[0].Message, "Failed to read Excel file")
}

func TestParse_Valid(t *testing.T) {
	r := Parse(testutil.BuildXLSX(t, testutil.SheetSpec{Name: "S"}))
	require.True(t, r.Valid)
	require.NotNil(t, r.Workbook)
	assert.Equal(t, []string{"S"}, r.Workbook.SheetNames())
}

func TestResult_Err(t *testing.T) {
	assert.Nil(t, newResult().Err())

	r := File(nil, "x.xlsx")
	err := r.Err()
	require.NotNil(t, err)
	assert.Equal(t, failure.FileFormat, err.Category)
	assert.Equal(t, "Invalid file format: File is empty", err.Message)
	assert.Equal(t, []string{"file"}, err.Fields)
}
