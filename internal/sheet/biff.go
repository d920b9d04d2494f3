package sheet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// BIFF8 record identifiers read by the compound-binary backend.
const (
	recFormula    = 0x0006
	recEOF        = 0x000A
	recDateMode   = 0x0022
	recFilePass   = 0x002F
	recContinue   = 0x003C
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recRString    = 0x00D6
	recXF         = 0x00E0
	recSST        = 0x00FC
	recLabelSST   = 0x00FD
	recNumber     = 0x0203
	recLabel      = 0x0204
	recBoolErr    = 0x0205
	recString     = 0x0207
	recRK         = 0x027E
	recFormat     = 0x041E
	recBOF        = 0x0809
)

const biff8Version = 0x0600

var errTruncated = errors.New("truncated record")

var le = binary.LittleEndian

// record is one BIFF record. parts holds the record body followed by the
// bodies of any CONTINUE records that immediately follow it.
type record struct {
	id     uint16
	offset int
	parts  [][]byte
}

func (r record) data() []byte {
	return r.parts[0]
}

// need reports whether the record body holds at least n bytes.
func (r record) need(n int) error {
	if len(r.parts[0]) < n {
		return fmt.Errorf("record 0x%04X at offset %d: %w (%d < %d bytes)", r.id, r.offset, errTruncated, len(r.parts[0]), n)
	}
	return nil
}

// recordReader walks the records of a workbook stream.
type recordReader struct {
	stream []byte
	pos    int
}

// next returns the next record with its CONTINUE bodies attached. ok is
// false at the end of the stream.
func (r *recordReader) next() (rec record, ok bool, err error) {
	id, body, ok, err := r.raw()
	if !ok || err != nil {
		return record{}, ok, err
	}
	rec = record{id: id, offset: r.pos - len(body) - 4, parts: [][]byte{body}}
	for r.peek() == recContinue {
		_, cont, _, err := r.raw()
		if err != nil {
			return record{}, false, err
		}
		rec.parts = append(rec.parts, cont)
	}
	return rec, true, nil
}

func (r *recordReader) raw() (id uint16, body []byte, ok bool, err error) {
	if r.pos+4 > len(r.stream) {
		return 0, nil, false, nil
	}
	id = le.Uint16(r.stream[r.pos:])
	size := int(le.Uint16(r.stream[r.pos+2:]))
	start := r.pos + 4
	if start+size > len(r.stream) {
		return 0, nil, false, fmt.Errorf("record 0x%04X at offset %d overruns the stream", id, r.pos)
	}
	r.pos = start + size
	return id, r.stream[start:r.pos], true, nil
}

func (r *recordReader) peek() uint16 {
	if r.pos+4 > len(r.stream) {
		return 0
	}
	return le.Uint16(r.stream[r.pos:])
}

// segments reads a record body and its continuations as one byte sequence.
// Character arrays are the exception: when one is split, the continuation
// starts with a fresh option byte that says whether the remaining characters
// are 8 or 16 bits wide.
type segments struct {
	parts [][]byte
	i     int
	pos   int
}

func newSegments(rec record) *segments {
	return &segments{parts: rec.parts}
}

// settle moves past exhausted parts.
func (s *segments) settle() {
	for s.i < len(s.parts) && s.pos >= len(s.parts[s.i]) {
		s.i++
		s.pos = 0
	}
}

func (s *segments) read(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		s.settle()
		if s.i >= len(s.parts) {
			return nil, errTruncated
		}
		part := s.parts[s.i][s.pos:]
		take := min(n-len(out), len(part))
		out = append(out, part[:take]...)
		s.pos += take
	}
	return out, nil
}

func (s *segments) skip(n int) error {
	_, err := s.read(n)
	return err
}

func (s *segments) u8() (byte, error) {
	b, err := s.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *segments) u16() (uint16, error) {
	b, err := s.read(2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

func (s *segments) u32() (uint32, error) {
	b, err := s.read(4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// chars reads cch characters, starting 16 bits wide when flags has the
// fHighByte bit.
func (s *segments) chars(cch int, flags byte) (string, error) {
	units := make([]uint16, 0, cch)
	wide := flags&0x01 != 0
	for len(units) < cch {
		if s.i < len(s.parts) && s.pos >= len(s.parts[s.i]) {
			s.i++
			s.pos = 0
			if s.i >= len(s.parts) {
				return "", errTruncated
			}
			f, err := s.u8()
			if err != nil {
				return "", err
			}
			wide = f&0x01 != 0
		}
		if s.i >= len(s.parts) {
			return "", errTruncated
		}
		part := s.parts[s.i]
		if wide {
			if s.pos+2 > len(part) {
				return "", errTruncated
			}
			units = append(units, le.Uint16(part[s.pos:]))
			s.pos += 2
		} else {
			units = append(units, uint16(part[s.pos]))
			s.pos++
		}
	}
	return string(utf16.Decode(units)), nil
}

// unicodeString reads an XLUnicodeString: 16-bit count, option byte, chars.
func (s *segments) unicodeString() (string, error) {
	cch, err := s.u16()
	if err != nil {
		return "", err
	}
	flags, err := s.u8()
	if err != nil {
		return "", err
	}
	return s.chars(int(cch), flags)
}

// shortUnicodeString reads a ShortXLUnicodeString (8-bit count).
func (s *segments) shortUnicodeString() (string, error) {
	cch, err := s.u8()
	if err != nil {
		return "", err
	}
	flags, err := s.u8()
	if err != nil {
		return "", err
	}
	return s.chars(int(cch), flags)
}

// richString reads an XLUnicodeRichExtendedString as stored in the shared
// string table, dropping formatting runs and phonetic data.
func (s *segments) richString() (string, error) {
	cch, err := s.u16()
	if err != nil {
		return "", err
	}
	flags, err := s.u8()
	if err != nil {
		return "", err
	}
	var runs, ext int
	if flags&0x08 != 0 {
		n, err := s.u16()
		if err != nil {
			return "", err
		}
		runs = int(n)
	}
	if flags&0x04 != 0 {
		n, err := s.u32()
		if err != nil {
			return "", err
		}
		ext = int(n)
	}
	str, err := s.chars(int(cch), flags)
	if err != nil {
		return "", err
	}
	if err := s.skip(4*runs + ext); err != nil {
		return "", err
	}
	return str, nil
}

// decodeRK expands an RK-encoded number: either a 30-bit signed integer or
// the upper 30 bits of an IEEE double, optionally scaled by 1/100.
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

// cellErrors maps BIFF error codes to their display text.
var cellErrors = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
}

func cellError(code byte) Cell {
	text, ok := cellErrors[code]
	if !ok {
		text = "#ERR"
	}
	return Cell{Kind: KindString, Text: text}
}
