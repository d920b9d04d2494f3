package sheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidAddress is returned for cell locators that are not A1 notation.
var ErrInvalidAddress = errors.New("invalid cell address")

var addressPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// Address is a 0-based cell coordinate.
type Address struct {
	Row int
	Col int
}

// ParseAddress converts an A1-style reference to 0-based coordinates.
// Letters are case-insensitive and use spreadsheet column numbering
// (A=1..Z=26, AA=27), which has no zero digit.
//
//	"A1"   -> {Row: 0, Col: 0}
//	"B3"   -> {Row: 2, Col: 1}
//	"AA10" -> {Row: 9, Col: 26}
func ParseAddress(s string) (Address, error) {
	m := addressPattern.FindStringSubmatch(s)
	if m == nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	// XFD is the widest column real workbooks address; seven letters keeps
	// the arithmetic well inside int range.
	if len(m[1]) > 7 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	col := 0
	for _, r := range strings.ToUpper(m[1]) {
		col = col*26 + int(r-'A'+1)
	}

	row, err := strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	return Address{Row: row - 1, Col: col - 1}, nil
}

// MustParseAddress is ParseAddress for literals known to be valid.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ColumnName converts a 0-based column index to its letters (0 -> "A", 26 -> "AA").
func ColumnName(col int) string {
	var buf [8]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// String renders the address in A1 notation.
func (a Address) String() string {
	return ColumnName(a.Col) + strconv.Itoa(a.Row+1)
}

// Right returns the address n columns to the right.
func (a Address) Right(n int) Address {
	return Address{Row: a.Row, Col: a.Col + n}
}

// Down returns the address n rows below.
func (a Address) Down(n int) Address {
	return Address{Row: a.Row + n, Col: a.Col}
}
