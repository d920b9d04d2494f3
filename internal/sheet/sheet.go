package sheet

import (
	"fmt"
	"strings"
)

// Row is one table row keyed by the table's header labels.
type Row map[string]string

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	backend Backend
	index   int
	name    string
}

// Name returns the worksheet name.
func (s *Sheet) Name() string {
	return s.name
}

// Index returns the 0-based worksheet position.
func (s *Sheet) Index() int {
	return s.index
}

// Cell returns the decoded cell at a, without formatting.
func (s *Sheet) Cell(a Address) (Cell, error) {
	c, err := s.backend.Cell(s.index, a.Row, a.Col)
	if err != nil {
		return Cell{}, fmt.Errorf("reading %s!%s: %w", s.name, a, err)
	}
	return c, nil
}

// CellAt returns the formatted value at 0-based coordinates.
func (s *Sheet) CellAt(row, col int) (string, error) {
	c, err := s.Cell(Address{Row: row, Col: col})
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// ReadCell returns the formatted value at an A1 address such as "B3".
func (s *Sheet) ReadCell(address string) (string, error) {
	a, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	return s.CellAt(a.Row, a.Col)
}

// HeaderLabels reads the labels of the table anchored at address, starting at
// the anchor and stopping before the first blank cell to the right.
func (s *Sheet) HeaderLabels(anchor string) ([]string, error) {
	a, err := ParseAddress(anchor)
	if err != nil {
		return nil, err
	}
	return s.headerLabels(a)
}

func (s *Sheet) headerLabels(a Address) ([]string, error) {
	var labels []string
	for col := a.Col; ; col++ {
		v, err := s.CellAt(a.Row, col)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return labels, nil
		}
		labels = append(labels, v)
	}
}

// ReadTable reads the table anchored at anchor (the top-left header cell).
//
// Column count comes from HeaderLabels. Rows are read downward from the row
// after the header until the first cell of a row is blank or, when endValue
// is set, equals *endValue. The blank-cell stop always applies, so a table
// whose end marker never appears ends at its first blank row.
func (s *Sheet) ReadTable(anchor string, endValue *string) ([]Row, error) {
	a, err := ParseAddress(anchor)
	if err != nil {
		return nil, err
	}

	labels, err := s.headerLabels(a)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for row := a.Row + 1; ; row++ {
		first, err := s.CellAt(row, a.Col)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(first) == "" {
			break
		}
		if endValue != nil && first == *endValue {
			break
		}

		r := make(Row, len(labels))
		for i, label := range labels {
			v, err := s.CellAt(row, a.Col+i)
			if err != nil {
				return nil, err
			}
			r[label] = v
		}
		rows = append(rows, r)
	}
	return rows, nil
}
