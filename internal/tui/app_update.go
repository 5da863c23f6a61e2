package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cf0/internal/editor"
	"cf0/internal/engine"
	"cf0/internal/model"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.workbookList.SetSize(msg.Width-4, msg.Height-4)
		m.ensureVisible()
		return m, nil

	case workbooksListedMsg:
		m.workbookList.SetItems(workbookItems(msg.workbooks))
		return m, nil

	case workbookLoadedMsg:
		if msg.err != "" {
			return m, m.setStatus("open workbook: "+msg.err, true)
		}
		m.ed = editor.NewState(msg.workbook, msg.sheets)
		m.loaded = true
		m.view = viewGrid
		m.rowOff, m.colOff = 0, 0
		return m, nil

	case workbookCreatedMsg:
		if msg.err != "" {
			return m, m.setStatus("create workbook: "+msg.err, true)
		}
		return m, m.openWorkbookCmd(msg.workbook.ID)

	case cellSavedMsg:
		if msg.err != "" {
			// The optimistic local value stays; the user is told the
			// write failed and the log has the detail.
			m.log.Error("persist cell failed",
				zap.String("sheet", msg.sheetID),
				zap.String("cell", msg.cellID),
				zap.String("error", msg.err))
			return m, m.setStatus(fmt.Sprintf("save failed for %s: %s", msg.cellID, msg.err), true)
		}
		m.log.Debug("cell saved", zap.String("sheet", msg.sheetID), zap.String("cell", msg.cellID))
		return m, nil

	case statusClearMsg:
		if !m.statusSticky && msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.MouseMsg:
		if m.view == viewGrid && m.modal == modalNone {
			return m.updateMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.view == viewPicker {
		var cmd tea.Cmd
		m.workbookList, cmd = m.workbookList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A sticky error stays until the user does anything else.
	if m.statusSticky {
		m.status = ""
		m.statusSticky = false
	}

	if m.modal != modalNone {
		return m.updateModalKey(msg)
	}

	switch m.view {
	case viewPicker:
		return m.updatePickerKey(msg)
	case viewGrid:
		return m.updateGridKey(msg)
	}
	return m, nil
}

func (m appModel) updatePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.workbookList.SettingFilter() {
		var cmd tea.Cmd
		m.workbookList, cmd = m.workbookList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter":
		if it, ok := m.workbookList.SelectedItem().(workbookItem); ok {
			return m, m.openWorkbookCmd(it.wb.ID)
		}
		return m, nil
	case "n":
		m.modal = modalNewWorkbook
		m.input.Placeholder = "Workbook name"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil
	case "r":
		if it, ok := m.workbookList.SelectedItem().(workbookItem); ok {
			m.modal = modalRenameWorkbook
			m.input.Placeholder = "New name"
			m.input.SetValue(it.wb.Name)
			m.input.Focus()
		}
		return m, nil
	case "esc":
		if m.loaded {
			m.view = viewGrid
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.workbookList, cmd = m.workbookList.Update(msg)
	return m, cmd
}

func (m appModel) updateModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		modal := m.modal
		m.modal = modalNone
		m.input.Blur()
		if text == "" {
			return m, nil
		}
		switch modal {
		case modalNewWorkbook:
			return m, m.createWorkbookCmd(text)
		case modalRenameWorkbook:
			if it, ok := m.workbookList.SelectedItem().(workbookItem); ok {
				return m, m.renameWorkbookCmd(it.wb.ID, text)
			}
			return m, nil
		case modalGotoCell:
			return m.gotoCell(text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editing := m.ed.Editing != nil

	switch msg.String() {
	case "ctrl+c":
		// Commit any open draft before leaving so nothing typed is lost.
		m2, cmd := m.dispatch(editor.Commit{})
		return m2, tea.Sequence(cmd, tea.Quit)

	case "ctrl+w":
		m2, cmd := m.dispatch(editor.Commit{})
		m2.view = viewPicker
		return m2, tea.Batch(cmd, func() tea.Msg { return m2.listWorkbooks() })

	case "ctrl+g":
		m.modal = modalGotoCell
		m.input.Placeholder = "Cell (e.g. C12 or Sheet2!B4)"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case "esc":
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if editing {
			m.pointCursor = ""
			return m.dispatch(editor.Cancel{})
		}
		return m.dispatch(editor.ClearRange{})

	case "enter":
		if editing {
			m.pointCursor = ""
			m2, cmd := m.dispatch(editor.Commit{})
			if m2.ed.Editing != nil {
				// Commit rejected (circular reference); stay put.
				return m2, cmd
			}
			m3, moveCmd := m2.moveSelection(0, 1)
			return m3, tea.Batch(cmd, moveCmd)
		}
		return m.dispatch(editor.StartEdit{})

	case "tab":
		if editing {
			m.pointCursor = ""
			m2, cmd := m.dispatch(editor.Commit{})
			if m2.ed.Editing != nil {
				return m2, cmd
			}
			m3, moveCmd := m2.moveSelection(1, 0)
			return m3, tea.Batch(cmd, moveCmd)
		}
		return m.moveSelection(1, 0)

	case "shift+tab":
		if !editing {
			return m.moveSelection(-1, 0)
		}
		return m, nil

	case "f2":
		if !editing {
			return m.dispatch(editor.StartEdit{})
		}
		return m, nil

	case "backspace":
		if editing {
			m.pointCursor = ""
			return m.dispatch(editor.DeleteBack{})
		}
		return m.dispatch(editor.ClearCell{})

	case "delete":
		if !editing {
			return m.dispatch(editor.ClearCell{})
		}
		return m, nil

	case "left":
		if editing {
			m.pointCursor = ""
			return m.dispatch(editor.MoveCaret{Delta: -1})
		}
		return m.moveSelection(-1, 0)

	case "right":
		if editing {
			m.pointCursor = ""
			return m.dispatch(editor.MoveCaret{Delta: 1})
		}
		return m.moveSelection(1, 0)

	case "up":
		if !editing {
			return m.moveSelection(0, -1)
		}
		if engine.IsFormula(m.ed.Editing.Draft) {
			return m.pointAdjacent(0, -1)
		}
		return m, nil

	case "down":
		if !editing {
			return m.moveSelection(0, 1)
		}
		if engine.IsFormula(m.ed.Editing.Draft) {
			return m.pointAdjacent(0, 1)
		}
		return m, nil

	case "pgup":
		if !editing {
			return m.moveSelection(0, -m.gridRows())
		}
		return m, nil

	case "pgdown":
		if !editing {
			return m.moveSelection(0, m.gridRows())
		}
		return m, nil

	case "[":
		if !editing {
			return m.switchSheet(-1)
		}

	case "]":
		if !editing {
			return m.switchSheet(1)
		}

	case "?":
		if !editing {
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	if !editing {
		switch msg.String() {
		case "h":
			return m.moveSelection(-1, 0)
		case "l":
			return m.moveSelection(1, 0)
		case "k":
			return m.moveSelection(0, -1)
		case "j":
			return m.moveSelection(0, 1)
		case "q":
			return m, tea.Quit
		}
	}

	// Printable input: start or extend a draft.
	if msg.Type == tea.KeyRunes && !msg.Alt {
		m.pointCursor = ""
		text := string(msg.Runes)
		if editing {
			return m.dispatch(editor.InsertText{Text: text})
		}
		// Typing over a selected cell replaces its content.
		return m.dispatch(
			editor.StartEdit{Seed: text, Replace: true},
		)
	}
	if msg.Type == tea.KeySpace {
		if editing {
			m.pointCursor = ""
			return m.dispatch(editor.InsertText{Text: " "})
		}
		return m, nil
	}

	return m, nil
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	formulaEdit := m.ed.Editing != nil && engine.IsFormula(m.ed.Editing.Draft)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		cell, ok := m.cellAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.dragging = true
		m.dragSheet = m.ed.ActiveSheetID
		m.dragAnchor = cell
		m.dragFocus = ""
		if formulaEdit {
			// Pointing: the reference is inserted on release, so a drag
			// can still become a range.
			return m, nil
		}
		return m.dispatch(
			editor.SelectCell{SheetID: m.ed.ActiveSheetID, CellID: cell},
			editor.BeginRange{SheetID: m.ed.ActiveSheetID, CellID: cell},
		)

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		cell, ok := m.cellAt(msg.X, msg.Y)
		if !ok || cell == m.dragAnchor {
			return m, nil
		}
		m.dragFocus = cell
		if formulaEdit {
			return m, nil
		}
		return m.dispatch(editor.ExtendRange{CellID: cell})

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		anchor, focus, sheet := m.dragAnchor, m.dragFocus, m.dragSheet
		if formulaEdit {
			if focus != "" && focus != anchor {
				m.pointCursor = focus
				return m.dispatch(editor.PointRange{SheetID: sheet, Anchor: anchor, Focus: focus})
			}
			m.pointCursor = anchor
			return m.dispatch(editor.PointCell{SheetID: sheet, CellID: anchor})
		}
		if focus == "" || focus == anchor {
			// Plain click: no range selection left behind.
			return m.dispatch(editor.ClearRange{})
		}
		return m, nil
	}
	return m, nil
}

// dispatch feeds actions through the state machine and turns the
// resulting effects into commands.
func (m appModel) dispatch(actions ...editor.Action) (appModel, tea.Cmd) {
	var cmds []tea.Cmd
	for _, a := range actions {
		var effects []editor.Effect
		m.ed, effects = editor.Apply(m.ed, a)
		for _, eff := range effects {
			switch e := eff.(type) {
			case editor.PersistCell:
				cmds = append(cmds, m.persistCellCmd(e))
			case editor.CycleRejected:
				m.log.Info("commit rejected",
					zap.String("sheet", e.SheetID),
					zap.String("cell", e.CellID),
					zap.String("reason", "circular reference"))
				cmds = append(cmds, m.setStatus(
					fmt.Sprintf("Circular reference: %s would depend on itself", e.CellID), false))
			}
		}
	}
	m.ensureVisible()
	return m, tea.Batch(cmds...)
}

// moveSelection shifts the selection by columns/rows, clamped to the
// sheet extent. An open draft commits first (implicit commit); if that
// commit is rejected, the selection stays.
func (m appModel) moveSelection(dc, dr int) (appModel, tea.Cmd) {
	sheet, ok := m.ed.ActiveSheet()
	if !ok {
		return m, nil
	}
	col, row, err := engine.ParseCellID(m.ed.Selection.CellID)
	if err != nil {
		return m, nil
	}
	ci := clampInt(model.ColumnIndex(col)+dc, 1, len(sheet.Columns))
	ri := clampInt(row+dr, 1, len(sheet.Rows))
	target := engine.BuildCellID(model.ColumnLabel(ci), ri)
	return m.dispatch(editor.SelectCell{SheetID: m.ed.ActiveSheetID, CellID: target})
}

// pointAdjacent points the formula draft at the cell next to the last
// pointed one (starting from the edit origin), replacing the pending
// reference so arrowing walks the pointer instead of appending.
func (m appModel) pointAdjacent(dc, dr int) (appModel, tea.Cmd) {
	sheet, ok := m.ed.ActiveSheet()
	if !ok || m.ed.Editing == nil {
		return m, nil
	}
	base := m.pointCursor
	if base == "" {
		base = m.ed.Editing.CellID
	}
	col, row, err := engine.ParseCellID(base)
	if err != nil {
		return m, nil
	}
	ci := clampInt(model.ColumnIndex(col)+dc, 1, len(sheet.Columns))
	ri := clampInt(row+dr, 1, len(sheet.Rows))
	target := engine.BuildCellID(model.ColumnLabel(ci), ri)
	m.pointCursor = target
	return m.dispatch(editor.PointCell{SheetID: m.ed.ActiveSheetID, CellID: target})
}

func (m appModel) switchSheet(delta int) (appModel, tea.Cmd) {
	order := m.ed.SheetOrder
	if len(order) < 2 {
		return m, nil
	}
	idx := 0
	for i, id := range order {
		if id == m.ed.ActiveSheetID {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	m2, cmd := m.dispatch(editor.SwitchSheet{SheetID: order[idx]})
	m2.rowOff, m2.colOff = 0, 0
	return m2, cmd
}

func (m appModel) gotoCell(text string) (appModel, tea.Cmd) {
	ref, err := engine.ParseRef(text)
	if err != nil {
		m2 := m
		return m2, m2.setStatus(fmt.Sprintf("not a cell address: %q", text), false)
	}

	actions := []editor.Action{}
	sheetID := m.ed.ActiveSheetID
	if ref.Sheet != "" {
		found := false
		for id, sh := range m.ed.Sheets {
			if strings.EqualFold(sh.Name, ref.Sheet) {
				sheetID = id
				found = true
				break
			}
		}
		if !found {
			m2 := m
			return m2, m2.setStatus(fmt.Sprintf("no sheet named %q", ref.Sheet), false)
		}
		actions = append(actions, editor.SwitchSheet{SheetID: sheetID})
	}
	actions = append(actions, editor.SelectCell{SheetID: sheetID, CellID: ref.CellID()})
	return m.dispatch(actions...)
}

// ensureVisible scrolls the viewport so the selection stays on screen.
func (m *appModel) ensureVisible() {
	if !m.loaded {
		return
	}
	col, row, err := engine.ParseCellID(m.ed.Selection.CellID)
	if err != nil {
		return
	}
	ci := model.ColumnIndex(col) - 1
	ri := row - 1

	if ci < m.colOff {
		m.colOff = ci
	}
	if cols := m.gridCols(); ci >= m.colOff+cols {
		m.colOff = ci - cols + 1
	}
	if ri < m.rowOff {
		m.rowOff = ri
	}
	if rows := m.gridRows(); ri >= m.rowOff+rows {
		m.rowOff = ri - rows + 1
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
