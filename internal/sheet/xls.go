package sheet

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/richardlehane/mscfb"
	"github.com/xuri/excelize/v2"
)

// xlsBackend reads compound-binary (BIFF8) workbooks. mscfb opens the
// compound file; the Workbook stream's records are decoded here into typed
// cells. Numbers are dates when their XF's number format displays a date,
// using the same rules as the xlsx backend.
type xlsBackend struct {
	names    []string
	sheets   []map[cellKey]Cell
	date1904 bool

	xfFormats []uint16
	formats   map[uint16]string
	sst       []string
}

type cellKey struct {
	row, col int
}

type boundSheet struct {
	name   string
	offset int
}

func openXLS(data []byte) (b *xlsBackend, err error) {
	// Malformed records can still index past a body; report them as
	// unreadable rather than crashing the caller.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: %v (the file may be corrupted)", ErrUnreadable, r)
		}
	}()

	stream, err := workbookStream(data)
	if err != nil {
		return nil, err
	}
	b, err = decodeWorkbook(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return b, nil
}

// workbookStream extracts the BIFF stream from a compound file.
func workbookStream(data []byte) ([]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	encrypted := false
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "Workbook", "Book":
			if entry.Size <= 0 || entry.Size > int64(len(data)) {
				return nil, fmt.Errorf("%w: workbook stream size %d is out of range", ErrUnreadable, entry.Size)
			}
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err != nil {
				return nil, fmt.Errorf("%w: reading workbook stream: %v", ErrUnreadable, err)
			}
			return buf, nil
		case "EncryptedPackage":
			encrypted = true
		}
	}
	if encrypted {
		return nil, fmt.Errorf("%w: the file is password-protected", ErrUnreadable)
	}
	return nil, fmt.Errorf("%w: no workbook stream in compound file", ErrUnreadable)
}

// decodeWorkbook reads the globals substream, then every sheet substream
// it points to.
func decodeWorkbook(stream []byte) (*xlsBackend, error) {
	r := &recordReader{stream: stream}
	bof, ok, err := r.next()
	if err != nil {
		return nil, err
	}
	if !ok || bof.id != recBOF {
		return nil, fmt.Errorf("workbook stream does not start with a BOF record")
	}
	if err := bof.need(2); err != nil {
		return nil, err
	}
	if v := le.Uint16(bof.data()); v != biff8Version {
		return nil, fmt.Errorf("BIFF version 0x%04X is not supported; save the file as Excel 97-2003 (.xls) or .xlsx", v)
	}

	b := &xlsBackend{formats: make(map[uint16]string)}
	var bounds []boundSheet

globals:
	for {
		rec, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("workbook globals end without an EOF record")
		}

		switch rec.id {
		case recEOF:
			break globals
		case recFilePass:
			return nil, fmt.Errorf("the file is password-protected")
		case recDateMode:
			if err := rec.need(2); err != nil {
				return nil, err
			}
			b.date1904 = le.Uint16(rec.data()) == 1
		case recXF:
			if err := rec.need(4); err != nil {
				return nil, err
			}
			b.xfFormats = append(b.xfFormats, le.Uint16(rec.data()[2:]))
		case recFormat:
			s := newSegments(rec)
			id, err := s.u16()
			if err != nil {
				return nil, err
			}
			code, err := s.unicodeString()
			if err != nil {
				return nil, fmt.Errorf("FORMAT record %d: %w", id, err)
			}
			b.formats[id] = code
		case recSST:
			if err := b.readSST(rec); err != nil {
				return nil, err
			}
		case recBoundSheet:
			s := newSegments(rec)
			offset, err := s.u32()
			if err != nil {
				return nil, err
			}
			if err := s.skip(2); err != nil {
				return nil, err
			}
			name, err := s.shortUnicodeString()
			if err != nil {
				return nil, fmt.Errorf("BOUNDSHEET record: %w", err)
			}
			bounds = append(bounds, boundSheet{name: name, offset: int(offset)})
		}
	}

	for _, bs := range bounds {
		cells, err := b.readSheet(stream, bs.offset)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", bs.name, err)
		}
		b.names = append(b.names, bs.name)
		b.sheets = append(b.sheets, cells)
	}
	return b, nil
}

func (b *xlsBackend) readSST(rec record) error {
	s := newSegments(rec)
	if _, err := s.u32(); err != nil {
		return err
	}
	unique, err := s.u32()
	if err != nil {
		return err
	}
	b.sst = make([]string, 0, min(int(unique), 1<<16))
	for i := 0; i < int(unique); i++ {
		str, err := s.richString()
		if err != nil {
			return fmt.Errorf("shared string %d: %w", i, err)
		}
		b.sst = append(b.sst, str)
	}
	return nil
}

// readSheet decodes the cell records of the worksheet substream at offset.
// Blank cells are left out of the map.
func (b *xlsBackend) readSheet(stream []byte, offset int) (map[cellKey]Cell, error) {
	if offset < 0 || offset >= len(stream) {
		return nil, fmt.Errorf("substream offset %d is outside the workbook stream", offset)
	}
	r := &recordReader{stream: stream, pos: offset}
	bof, ok, err := r.next()
	if err != nil {
		return nil, err
	}
	if !ok || bof.id != recBOF {
		return nil, fmt.Errorf("no BOF record at offset %d", offset)
	}

	cells := make(map[cellKey]Cell)
	var pending *cellKey // formula waiting for its STRING result
	depth := 0           // embedded substreams such as charts

	for {
		rec, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("substream ends without an EOF record")
		}

		switch rec.id {
		case recBOF:
			depth++
			continue
		case recEOF:
			if depth == 0 {
				return cells, nil
			}
			depth--
			continue
		}
		if depth > 0 {
			continue
		}

		switch rec.id {
		case recLabelSST:
			if err := rec.need(10); err != nil {
				return nil, err
			}
			key, _ := cellAt(rec)
			idx := le.Uint32(rec.data()[6:])
			if int(idx) >= len(b.sst) {
				return nil, fmt.Errorf("cell %s refers to shared string %d of %d", key, idx, len(b.sst))
			}
			cells[key] = Cell{Kind: KindString, Text: b.sst[idx]}

		case recLabel, recRString:
			if err := rec.need(6); err != nil {
				return nil, err
			}
			key, _ := cellAt(rec)
			s := newSegments(rec)
			_ = s.skip(6)
			str, err := s.unicodeString()
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", key, err)
			}
			cells[key] = Cell{Kind: KindString, Text: str}

		case recNumber:
			if err := rec.need(14); err != nil {
				return nil, err
			}
			key, xf := cellAt(rec)
			cells[key] = b.number(xf, math.Float64frombits(le.Uint64(rec.data()[6:])))

		case recRK:
			if err := rec.need(10); err != nil {
				return nil, err
			}
			key, xf := cellAt(rec)
			cells[key] = b.number(xf, decodeRK(le.Uint32(rec.data()[6:])))

		case recMulRK:
			if err := rec.need(6); err != nil {
				return nil, err
			}
			d := rec.data()
			row := int(le.Uint16(d))
			first := int(le.Uint16(d[2:]))
			for i := 0; 4+6*i+6 <= len(d)-2; i++ {
				at := 4 + 6*i
				xf := le.Uint16(d[at:])
				cells[cellKey{row, first + i}] = b.number(xf, decodeRK(le.Uint32(d[at+2:])))
			}

		case recBoolErr:
			if err := rec.need(8); err != nil {
				return nil, err
			}
			key, _ := cellAt(rec)
			d := rec.data()
			if d[7] != 0 {
				cells[key] = cellError(d[6])
			} else {
				cells[key] = Cell{Kind: KindBool, Bool: d[6] != 0}
			}

		case recFormula:
			if err := rec.need(14); err != nil {
				return nil, err
			}
			key, xf := cellAt(rec)
			res := rec.data()[6:14]
			if res[6] != 0xFF || res[7] != 0xFF {
				cells[key] = b.number(xf, math.Float64frombits(le.Uint64(res)))
				continue
			}
			switch res[0] {
			case 0x00:
				k := key
				pending = &k
			case 0x01:
				cells[key] = Cell{Kind: KindBool, Bool: res[2] != 0}
			case 0x02:
				cells[key] = cellError(res[2])
			}

		case recString:
			if pending == nil {
				continue
			}
			str, err := newSegments(rec).unicodeString()
			if err != nil {
				return nil, fmt.Errorf("cell %s: formula result: %w", *pending, err)
			}
			cells[*pending] = Cell{Kind: KindString, Text: str}
			pending = nil
		}
	}
}

// cellAt reads the row, column and XF index that open every cell record.
func cellAt(rec record) (cellKey, uint16) {
	d := rec.data()
	return cellKey{row: int(le.Uint16(d)), col: int(le.Uint16(d[2:]))}, le.Uint16(d[4:])
}

func (k cellKey) String() string {
	return Address{Row: k.row, Col: k.col}.String()
}

// number types a numeric value by its cell format.
func (b *xlsBackend) number(xf uint16, v float64) Cell {
	if b.isDateXF(xf) {
		if t, err := excelize.ExcelDateToTime(v, b.date1904); err == nil {
			return Cell{Kind: KindDate, Time: t}
		}
	}
	return Cell{Kind: KindNumber, Number: v}
}

// isDateXF reports whether the number format of an XF record displays a
// date. Format codes stored in the file win over built-in ids.
func (b *xlsBackend) isDateXF(xf uint16) bool {
	if int(xf) >= len(b.xfFormats) {
		return false
	}
	id := b.xfFormats[xf]
	if code, ok := b.formats[id]; ok {
		return IsDateFormat(code)
	}
	return IsBuiltinDateFormat(int(id))
}

func (b *xlsBackend) SheetNames() []string {
	return b.names
}

func (b *xlsBackend) Cell(sheet int, row, col int) (Cell, error) {
	if sheet < 0 || sheet >= len(b.sheets) {
		return Cell{}, fmt.Errorf("%w: index %d", ErrSheetOutOfRange, sheet)
	}
	return b.sheets[sheet][cellKey{row, col}], nil
}
