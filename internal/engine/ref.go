package engine

import (
	"fmt"
	"strconv"
	"strings"

	"cf0/internal/model"
)

// IsFormula reports whether a raw cell value denotes a formula.
func IsFormula(raw string) bool {
	return strings.HasPrefix(raw, "=")
}

// Ref is a parsed single-cell reference. Sheet is empty for same-sheet
// references.
type Ref struct {
	Sheet  string
	Column string
	Row    int
}

// CellID returns the bare A1-notation id without any sheet qualifier.
func (r Ref) CellID() string {
	return BuildCellID(r.Column, r.Row)
}

// RangeRef is a parsed rectangular range reference ("A1:B4", optionally
// sheet-qualified). Anchor and Focus are bare cell ids.
type RangeRef struct {
	Sheet  string
	Anchor string
	Focus  string
}

// ParseCellID splits an A1-notation id into its column letters and
// 1-based row. The id must match ^[A-Za-z]+[0-9]+$ exactly; anything
// else fails with ErrInvalidReference.
func ParseCellID(id string) (col string, row int, err error) {
	letters := 0
	for letters < len(id) && isLetter(id[letters]) {
		letters++
	}
	if letters == 0 || letters == len(id) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidReference, id)
	}
	for i := letters; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return "", 0, fmt.Errorf("%w: %q", ErrInvalidReference, id)
		}
	}
	row, convErr := strconv.Atoi(id[letters:])
	if convErr != nil || row < 1 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidReference, id)
	}
	return strings.ToUpper(id[:letters]), row, nil
}

// BuildCellID formats a column label and row into an A1-notation id.
// No validation beyond non-empty inputs.
func BuildCellID(col string, row int) string {
	return strings.ToUpper(col) + strconv.Itoa(row)
}

// BuildReference formats a reference to (col,row) on targetSheet as
// seen from originSheet: bare when the sheets match, sheet-qualified
// otherwise. This is what gets inserted into a draft when the user
// points at a cell while typing a formula.
func BuildReference(row int, col, targetSheet, originSheet string) string {
	id := BuildCellID(col, row)
	if targetSheet == originSheet {
		return id
	}
	return targetSheet + "!" + id
}

// BuildRangeReference is the range form of BuildReference, joining the
// anchor and focus cell ids with ":".
func BuildRangeReference(anchor, focus, targetSheet, originSheet string) string {
	ref := anchor + ":" + focus
	if targetSheet == originSheet {
		return ref
	}
	return targetSheet + "!" + ref
}

// splitSheet splits an optional "Sheet!" qualifier off a reference.
// Quoted sheet names ('My Sheet'!A1) are unwrapped.
func splitSheet(s string) (sheet, rest string) {
	i := strings.IndexByte(s, '!')
	if i < 0 {
		return "", s
	}
	sheet = s[:i]
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = sheet[1 : len(sheet)-1]
	}
	return sheet, s[i+1:]
}

// ParseRef parses a single-cell reference with an optional sheet
// qualifier.
func ParseRef(s string) (Ref, error) {
	sheet, rest := splitSheet(s)
	col, row, err := ParseCellID(rest)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Sheet: sheet, Column: col, Row: row}, nil
}

// ParseRangeRef parses an "anchor:focus" range with an optional sheet
// qualifier. Both endpoints must be valid cell ids.
func ParseRangeRef(s string) (RangeRef, error) {
	sheet, rest := splitSheet(s)
	anchor, focus, ok := strings.Cut(rest, ":")
	if !ok {
		return RangeRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	ac, ar, err := ParseCellID(anchor)
	if err != nil {
		return RangeRef{}, err
	}
	fc, fr, err := ParseCellID(focus)
	if err != nil {
		return RangeRef{}, err
	}
	return RangeRef{
		Sheet:  sheet,
		Anchor: BuildCellID(ac, ar),
		Focus:  BuildCellID(fc, fr),
	}, nil
}

// Cells enumerates every cell id inside the range, row-major, with the
// bounds normalized so the anchor/focus order does not matter.
func (r RangeRef) Cells() []string {
	ac, ar, err1 := ParseCellID(r.Anchor)
	fc, fr, err2 := ParseCellID(r.Focus)
	if err1 != nil || err2 != nil {
		return nil
	}
	c1, c2 := model.ColumnIndex(ac), model.ColumnIndex(fc)
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if ar > fr {
		ar, fr = fr, ar
	}
	var ids []string
	for row := ar; row <= fr; row++ {
		for col := c1; col <= c2; col++ {
			ids = append(ids, BuildCellID(model.ColumnLabel(col), row))
		}
	}
	return ids
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
