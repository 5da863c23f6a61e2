package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cf0/internal/docs"
	"cf0/internal/engine"
	"cf0/internal/model"
)

func (m appModel) View() string {
	if m.view == viewPicker {
		return m.viewPicker()
	}
	return m.viewGrid()
}

func (m appModel) viewPicker() string {
	var b strings.Builder
	b.WriteString(m.workbookList.View())
	if m.modal == modalNewWorkbook || m.modal == modalRenameWorkbook {
		b.WriteString("\n")
		b.WriteString(m.modalPrompt())
	}
	return b.String()
}

func (m appModel) viewGrid() string {
	sheet, ok := m.ed.ActiveSheet()
	if !ok {
		return styleMuted().Render("no sheet")
	}

	var b strings.Builder
	b.WriteString(m.formulaBar())
	b.WriteString("\n")
	b.WriteString(m.sheetTabs())
	b.WriteString("\n")

	if m.showHelp {
		body, _ := docs.Get("navigation")
		b.WriteString(renderMarkdown(body, m.width-2))
	} else {
		b.WriteString(m.gridBody(sheet))
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// formulaBar shows the selected address and either the open draft with
// its caret or the stored raw value.
func (m appModel) formulaBar() string {
	addr := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(m.ed.Selection.CellID)
	var content string
	if ed := m.ed.Editing; ed != nil {
		content = draftWithCaret(ed.Draft, ed.Caret)
	} else {
		content = m.ed.RawValue(m.ed.Selection.CellID)
	}
	return addr + "  " + lipgloss.NewStyle().Foreground(colorSurfaceFg).Render(content)
}

func (m appModel) sheetTabs() string {
	var tabs []string
	for _, id := range m.ed.SheetOrder {
		sheet, ok := m.ed.Sheets[id]
		if !ok {
			continue
		}
		if id == m.ed.ActiveSheetID {
			tabs = append(tabs, styleSelected().Render(" "+sheet.Name+" "))
		} else {
			tabs = append(tabs, styleMuted().Render(" "+sheet.Name+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func (m appModel) gridBody(sheet model.Sheet) string {
	rows := m.gridRows()
	cols := m.gridCols()

	var b strings.Builder

	// Column header.
	b.WriteString(strings.Repeat(" ", rowLabelWidth))
	for c := m.colOff; c < m.colOff+cols && c < len(sheet.Columns); c++ {
		label := sheet.Columns[c]
		pad := cellWidth - len(label)
		left := pad / 2
		cell := strings.Repeat(" ", left) + label + strings.Repeat(" ", pad-left)
		b.WriteString(styleHeader().Render(cell))
	}
	b.WriteString("\n")

	selCol, selRow := -1, -1
	if mc, mr, _, _, ok := rangeBounds(m.ed.Selection.CellID, m.ed.Selection.CellID); ok {
		selCol, selRow = mc, mr
	}
	var rMinC, rMinR, rMaxC, rMaxR int
	hasRange := false
	if rg := m.ed.Range; rg != nil && rg.SheetID == m.ed.ActiveSheetID {
		rMinC, rMinR, rMaxC, rMaxR, hasRange = rangeBounds(rg.Anchor, rg.Focus)
	}

	for r := m.rowOff; r < m.rowOff+rows && r < len(sheet.Rows); r++ {
		b.WriteString(styleHeader().Render(fmt.Sprintf("%*d ", rowLabelWidth-1, sheet.Rows[r])))
		for c := m.colOff; c < m.colOff+cols && c < len(sheet.Columns); c++ {
			cellID := sheet.Columns[c] + fmt.Sprint(sheet.Rows[r])
			b.WriteString(m.renderCell(sheet, cellID, c, r, selCol, selRow,
				hasRange, rMinC, rMinR, rMaxC, rMaxR))
		}
		if r < m.rowOff+rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) renderCell(sheet model.Sheet, cellID string, c, r, selCol, selRow int,
	hasRange bool, rMinC, rMinR, rMaxC, rMaxR int) string {

	selected := c == selCol && r == selRow
	inRange := hasRange && c >= rMinC && c <= rMaxC && r >= rMinR && r <= rMaxR

	// The cell being edited shows its draft in place.
	if ed := m.ed.Editing; ed != nil && ed.SheetID == sheet.ID && ed.CellID == cellID {
		text := padCell(draftWithCaret(ed.Draft, ed.Caret), cellWidth)
		return styleSelected().Underline(true).Render(text)
	}

	display := m.ed.DisplayValue(cellID)
	text := padCell(display, cellWidth)

	st := lipgloss.NewStyle().Foreground(colorSurfaceFg)
	if data, ok := sheet.Cells[cellID]; ok && data.Style != nil {
		if data.Style.Bold {
			st = st.Bold(true)
		}
		if data.Style.Italic {
			st = st.Italic(true)
		}
		if data.Style.Underline {
			st = st.Underline(true)
		}
	}
	if engine.IsErrorToken(display) {
		st = st.Foreground(colorErrorCellFg).Bold(true)
	}
	switch {
	case selected:
		st = st.Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	case inRange:
		st = st.Background(colorRangeBg)
	}
	return st.Render(text)
}

func (m appModel) statusLine() string {
	if m.modal == modalGotoCell {
		return m.modalPrompt()
	}
	if m.status != "" {
		if m.statusSticky {
			return styleError().Render(m.status)
		}
		return lipgloss.NewStyle().Foreground(colorAccent).Render(m.status)
	}
	if m.ed.Editing != nil {
		return styleMuted().Render("enter commit · tab commit+right · esc cancel · click cell to insert reference")
	}
	return styleMuted().Render("arrows move · enter edit · ctrl+g goto · [ ] sheets · ctrl+w workbooks · ? help · q quit")
}

func (m appModel) modalPrompt() string {
	var label string
	switch m.modal {
	case modalNewWorkbook:
		label = "New workbook"
	case modalRenameWorkbook:
		label = "Rename workbook"
	case modalGotoCell:
		label = "Go to"
	default:
		return ""
	}
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label+": ") + m.input.View()
}
