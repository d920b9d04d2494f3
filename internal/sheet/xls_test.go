package sheet

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, name string) *Workbook {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	wb, err := Open(data)
	require.NoError(t, err)
	return wb
}

func TestWorkbook_XLSCellFormatting(t *testing.T) {
	wb := openFixture(t, "pedido-coral.xls")
	assert.Equal(t, ContainerCFB, wb.Container())
	assert.Equal(t, []string{"Pedido", "Notas"}, wb.SheetNames())

	sh, err := wb.Sheet(0)
	require.NoError(t, err)

	tests := map[string]string{
		"A1":  "PEDIDO DE COMPRA",
		"B3":  "0012345",       // text keeps leading zeros
		"B4":  "20240115",      // built-in date format 14
		"C4":  "20231231",      // custom date format dd/mm/yyyy
		"D4":  "4",             // custom number format #,##0.000
		"A6":  "1",             // MULRK integer
		"B6":  "2.5",           // MULRK scaled by 1/100
		"C6":  "20240115",      // MULRK date
		"A13": "68077",         // RK integer
		"B13": "4",             // NUMBER in #,##0.000
		"D13": "true",          // BOOLERR
		"E13": "Té matcha 抹茶",  // shared string split by CONTINUE
		"F13": "3",             // 2.995 rounded
		"A14": "7861001234567", // LABEL
		"B14": "2.5",           // numeric formula result
		"C14": "Yogur griego",  // string formula result
		"D14": "#N/A",          // error formula result
		"E14": "false",         // boolean formula result
		"F14": "Leche entera",  // string starting a CONTINUE
		"A2":  "",
		"Z99": "",
	}
	for addr, want := range tests {
		got, err := sh.ReadCell(addr)
		require.NoError(t, err, addr)
		assert.Equal(t, want, got, addr)
	}

	c, err := sh.Cell(Address{Row: 3, Col: 3})
	require.NoError(t, err)
	assert.Equal(t, KindNumber, c.Kind)

	rows, err := sh.ReadTable("A12", nil)
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{"BARRA": "68077", "CANTIDAD": "4", "DESCRIPCION": "Queso fresco"},
		{"BARRA": "7861001234567", "CANTIDAD": "2.5", "DESCRIPCION": "Yogur griego"},
	}, rows)

	notes, err := wb.Sheet(1)
	require.NoError(t, err)
	v, err := notes.ReadCell("A1")
	require.NoError(t, err)
	assert.Equal(t, "sin datos", v)
}

func TestDecodeRK(t *testing.T) {
	float := func(f float64) uint32 { return uint32(math.Float64bits(f) >> 32) }
	negative := int32(-5)

	tests := []struct {
		name string
		rk   uint32
		want float64
	}{
		{"integer", 45306<<2 | 0x02, 45306},
		{"negative integer", uint32(negative<<2) | 0x02, -5},
		{"integer over 100", 250<<2 | 0x03, 2.5},
		{"float", float(1.5), 1.5},
		{"float over 100", float(1234) | 0x01, 12.34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, decodeRK(tt.rk), 1e-9)
		})
	}
}

func TestSegments_CharsAcrossContinue(t *testing.T) {
	rec := record{parts: [][]byte{
		{0x04, 0x00, 0x00, 'a', 'b'},
		{0x01, 'c', 0x00, 'd', 0x00},
	}}
	str, err := newSegments(rec).unicodeString()
	require.NoError(t, err)
	assert.Equal(t, "abcd", str)

	rec = record{parts: [][]byte{{0x04, 0x00, 0x00, 'a', 'b'}}}
	_, err = newSegments(rec).unicodeString()
	assert.ErrorIs(t, err, errTruncated)
}

func TestSegments_RichString(t *testing.T) {
	// Two formatting runs and four bytes of phonetic data follow the chars.
	body := []byte{0x02, 0x00, 0x0C, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 'o', 'k'}
	body = append(body, make([]byte, 8+4)...)
	body = append(body, 0x01, 0x00, 0x00, 'z')

	s := newSegments(record{parts: [][]byte{body}})
	first, err := s.richString()
	require.NoError(t, err)
	assert.Equal(t, "ok", first)
	second, err := s.richString()
	require.NoError(t, err)
	assert.Equal(t, "z", second)
}

func biffRecord(id uint16, body []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, id)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(body)))
	return append(out, body...)
}

func biffBOF(version, kind uint16) []byte {
	body := binary.LittleEndian.AppendUint16(nil, version)
	body = binary.LittleEndian.AppendUint16(body, kind)
	return biffRecord(recBOF, append(body, make([]byte, 12)...))
}

// biffStream lays out a globals substream with one sheet followed by the
// sheet's records.
func biffStream(globals, sheet []byte) []byte {
	name := []byte{0x01, 0x00, 'S'}
	boundLen := len(biffRecord(recBoundSheet, make([]byte, 6+len(name))))
	offset := len(biffBOF(biff8Version, 0x05)) + len(globals) + boundLen + len(biffRecord(recEOF, nil))

	bound := binary.LittleEndian.AppendUint32(nil, uint32(offset))
	bound = append(bound, 0x00, 0x00)
	bound = append(bound, name...)

	var out []byte
	out = append(out, biffBOF(biff8Version, 0x05)...)
	out = append(out, globals...)
	out = append(out, biffRecord(recBoundSheet, bound)...)
	out = append(out, biffRecord(recEOF, nil)...)
	out = append(out, biffBOF(biff8Version, 0x10)...)
	out = append(out, sheet...)
	return append(out, biffRecord(recEOF, nil)...)
}

func TestDecodeWorkbook(t *testing.T) {
	number := func(row, col, xf uint16, v float64) []byte {
		body := binary.LittleEndian.AppendUint16(nil, row)
		body = binary.LittleEndian.AppendUint16(body, col)
		body = binary.LittleEndian.AppendUint16(body, xf)
		body = binary.LittleEndian.AppendUint64(body, math.Float64bits(v))
		return biffRecord(recNumber, body)
	}
	xf := func(format uint16) []byte {
		body := binary.LittleEndian.AppendUint16([]byte{0x00, 0x00}, format)
		return biffRecord(recXF, append(body, make([]byte, 16)...))
	}

	t.Run("1904 date system", func(t *testing.T) {
		globals := append(biffRecord(recDateMode, []byte{0x01, 0x00}), xf(14)...)
		b, err := decodeWorkbook(biffStream(globals, number(0, 0, 0, 45306)))
		require.NoError(t, err)
		c, err := b.Cell(0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "20280116", c.String())
	})

	t.Run("format code overrides built-in id", func(t *testing.T) {
		code := append([]byte{0x03, 0x00, 0x00}, "0.0"...)
		globals := append(biffRecord(recFormat, append([]byte{0x0E, 0x00}, code...)), xf(14)...)
		b, err := decodeWorkbook(biffStream(globals, number(0, 0, 0, 45306)))
		require.NoError(t, err)
		c, err := b.Cell(0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, KindNumber, c.Kind)
	})

	t.Run("unknown XF is a plain number", func(t *testing.T) {
		b, err := decodeWorkbook(biffStream(nil, number(2, 1, 40, 45306)))
		require.NoError(t, err)
		c, err := b.Cell(0, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, "45306", c.String())
	})

	t.Run("sheet index out of range", func(t *testing.T) {
		b, err := decodeWorkbook(biffStream(nil, nil))
		require.NoError(t, err)
		_, err = b.Cell(1, 0, 0)
		assert.ErrorIs(t, err, ErrSheetOutOfRange)
	})
}

func TestDecodeWorkbook_Errors(t *testing.T) {
	labelSST := biffRecord(recLabelSST, []byte{0, 0, 0, 0, 0, 0, 3, 0, 0, 0})

	tests := []struct {
		name   string
		stream []byte
		want   string
	}{
		{"empty stream", nil, "does not start with a BOF"},
		{"BIFF5", biffBOF(0x0500, 0x05), "BIFF version 0x0500 is not supported"},
		{"encrypted", append(biffBOF(biff8Version, 0x05), biffRecord(recFilePass, []byte{0, 0})...), "password-protected"},
		{"globals without EOF", biffBOF(biff8Version, 0x05), "without an EOF"},
		{"dangling shared string", biffStream(nil, labelSST), "shared string 3 of 0"},
		{"short cell record", biffStream(nil, biffRecord(recNumber, []byte{0, 0})), "truncated record"},
		{"overrun", append(biffBOF(biff8Version, 0x05), 0x0A, 0x00, 0x10, 0x00), "overruns the stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeWorkbook(tt.stream)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpen_CompoundFileWithoutWorkbook(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "pedido-coral.xls"))
	require.NoError(t, err)

	// Rename the directory entry so no workbook stream is found.
	renamed := append([]byte(nil), data...)
	entry := 1024 + 128
	copy(renamed[entry:], []byte{'X', 0})

	_, err = Open(renamed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.Contains(t, err.Error(), "no workbook stream")
}
