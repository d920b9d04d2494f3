package sheet

import (
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"
)

// Kind is the value type of a cell after backend decoding.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

// Cell is a decoded cell value. Backends fill the field matching Kind.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time
}

// String formats the cell with the rules shared by header and table reads:
// empty -> "", dates -> YYYYMMDD, integers without a decimal point, fractions
// rounded to two places with trailing zeros stripped, booleans as
// "true"/"false", text NFC-normalized.
func (c Cell) String() string {
	switch c.Kind {
	case KindString:
		return norm.NFC.String(c.Text)
	case KindNumber:
		return FormatNumber(c.Number)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	case KindDate:
		return FormatDate(c.Time)
	default:
		return ""
	}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || (c.Kind == KindString && c.Text == "")
}

// FormatDate renders t as an 8-digit YYYYMMDD string.
func FormatDate(t time.Time) string {
	return t.Format("20060102")
}

var twoPlaces = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// FormatNumber renders a number with at most two decimals, dot separated and
// without thousands separators. Integers never carry a decimal point. Rounding
// is half-up on the shortest decimal form, so 2.995 becomes "3" and 2.10
// becomes "2.1".
func FormatNumber(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	if num == math.Trunc(num) {
		if num == 0 {
			return "0"
		}
		return strconv.FormatFloat(num, 'f', -1, 64)
	}

	d, _, err := apd.NewFromString(strconv.FormatFloat(num, 'f', -1, 64))
	if err != nil {
		return strconv.FormatFloat(num, 'f', 2, 64)
	}
	var rounded apd.Decimal
	if _, err := twoPlaces.Quantize(&rounded, d, -2); err != nil {
		return strconv.FormatFloat(num, 'f', 2, 64)
	}
	rounded.Reduce(&rounded)

	s := rounded.Text('f')
	if s == "-0" {
		return "0"
	}
	return s
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[dmy]`),
		regexp.MustCompile(`\[.*\]`),
	}
	numberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`0\.0`),
		regexp.MustCompile(`#`),
		regexp.MustCompile(`\$`),
		regexp.MustCompile(`%`),
	}
)

// IsDateFormat reports whether a number format code describes a date. The
// code must mention day/month/year letters or a bracketed locale marker and
// must not look like a decimal, currency or percentage format. This is a
// heuristic: formats such as "[Red]0" are misread as dates.
func IsDateFormat(format string) bool {
	if format == "" {
		return false
	}
	looksLikeDate := false
	for _, p := range datePatterns {
		if p.MatchString(format) {
			looksLikeDate = true
			break
		}
	}
	if !looksLikeDate {
		return false
	}
	for _, p := range numberPatterns {
		if p.MatchString(format) {
			return false
		}
	}
	return true
}

// builtinDateFormats are the built-in number format ids that display dates.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// IsBuiltinDateFormat reports whether a built-in number format id is a date format.
func IsBuiltinDateFormat(id int) bool {
	return builtinDateFormats[id]
}
