package tui

import (
	"strconv"
	"strings"

	"cf0/internal/engine"
	"cf0/internal/model"
)

// Pure cell-rendering helpers, kept free of the bubbletea model so they
// can be tested directly.

// padCell fits text into width columns, truncating with an ellipsis
// when it overflows. Numbers and error tokens are right-aligned the
// way spreadsheets usually draw them.
func padCell(text string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(text)
	if len(runes) > width {
		if width == 1 {
			return "…"
		}
		return string(runes[:width-1]) + "…"
	}
	pad := strings.Repeat(" ", width-len(runes))
	if alignRight(text) {
		return pad + text
	}
	return text + pad
}

func alignRight(text string) bool {
	if text == "" {
		return false
	}
	if engine.IsErrorToken(text) {
		return true
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

// draftWithCaret renders an in-progress draft with a visible caret.
func draftWithCaret(draft string, caret int) string {
	runes := []rune(draft)
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	return string(runes[:caret]) + "▏" + string(runes[caret:])
}

// rangeBounds returns the zero-based column/row bounds of a range
// selection, normalized so min <= max. ok is false for unparsable ids.
func rangeBounds(anchor, focus string) (minCol, minRow, maxCol, maxRow int, ok bool) {
	ac, ar, err1 := engine.ParseCellID(anchor)
	fc, fr, err2 := engine.ParseCellID(focus)
	if err1 != nil || err2 != nil {
		return 0, 0, 0, 0, false
	}
	aci, fci := model.ColumnIndex(ac)-1, model.ColumnIndex(fc)-1
	ari, fri := ar-1, fr-1
	if aci > fci {
		aci, fci = fci, aci
	}
	if ari > fri {
		ari, fri = fri, ari
	}
	return aci, ari, fci, fri, true
}
