package model

import "time"

// Workbook is the top-level document: an ordered collection of sheets.
type Workbook struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SheetOrder []string  `json:"sheetOrder"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Sheet holds a rectangular grid addressed in A1 notation. Columns and
// Rows define the visible extent; Cells is sparse and keyed by cell id.
// Invariant: every key in Cells is a Columns entry followed by a Rows
// entry (e.g. "B4").
type Sheet struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Columns []string            `json:"columns"`
	Rows    []int               `json:"rows"`
	Cells   map[string]CellData `json:"cells"`
}

// CellData is the stored form of a cell. Value is the raw text the user
// entered; a leading "=" marks a formula. Display values are derived at
// render time and never written back here.
type CellData struct {
	Value string     `json:"value"`
	Style *CellStyle `json:"style,omitempty"`
}

type CellStyle struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Align     string `json:"align,omitempty"` // "left", "center", "right"
}

// NewSheet returns an empty sheet spanning cols x rows starting at A1.
func NewSheet(id, name string, cols, rows int) Sheet {
	s := Sheet{
		ID:    id,
		Name:  name,
		Cells: map[string]CellData{},
	}
	for c := 1; c <= cols; c++ {
		s.Columns = append(s.Columns, ColumnLabel(c))
	}
	for r := 1; r <= rows; r++ {
		s.Rows = append(s.Rows, r)
	}
	return s
}

// ColumnLabel converts a 1-based column index to its letter label
// (1 -> "A", 26 -> "Z", 27 -> "AA").
func ColumnLabel(n int) string {
	if n < 1 {
		return ""
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}

// ColumnIndex is the inverse of ColumnLabel ("A" -> 1). Returns 0 for
// input that is not a pure letter sequence.
func ColumnIndex(label string) int {
	n := 0
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z':
			n = n*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			n = n*26 + int(r-'a') + 1
		default:
			return 0
		}
	}
	return n
}
