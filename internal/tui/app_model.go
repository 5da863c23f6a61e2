package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cf0/internal/editor"
	"cf0/internal/model"
	"cf0/internal/store"
)

// Grid geometry. The view and mouse hit-testing must agree on these.
const (
	rowLabelWidth = 5
	cellWidth     = 11
	// Lines above the grid body: formula bar, sheet tabs, column header.
	topChromeLines = 3
	// Lines below: status line.
	bottomChromeLines = 1
)

type appModel struct {
	store store.Store
	log   *zap.Logger

	width  int
	height int

	view  view
	modal modalKind

	workbookList list.Model

	// Grid state. ed is the whole editing state machine; the TUI only
	// translates terminal events into actions and executes effects.
	ed     editor.State
	loaded bool

	rowOff int
	colOff int

	input textinput.Model

	// Mouse drag tracking. dragAnchor/dragFocus are cell ids on the
	// sheet under the pointer.
	dragging   bool
	dragSheet  string
	dragAnchor string
	dragFocus  string

	// pointCursor is the cell the open formula draft last pointed at;
	// arrow keys walk it. Cleared whenever the draft changes by typing.
	pointCursor string

	showHelp bool

	status       string
	statusSticky bool
	statusSeq    int
}

func newAppModel(s store.Store, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}

	input := textinput.New()
	input.CharLimit = 120
	input.Width = 40

	m := appModel{
		store:        s,
		log:          log,
		view:         viewPicker,
		workbookList: newWorkbookList(nil),
		input:        input,
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.openInitialWorkbookCmd()
}

// openInitialWorkbookCmd loads the config's current workbook, if any.
// A missing or unloadable workbook leaves the picker showing.
func (m appModel) openInitialWorkbookCmd() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		cfg, err := s.LoadConfig()
		if err != nil || cfg.CurrentWorkbookID == "" {
			return m.listWorkbooks()
		}
		wb, sheets, err := s.OpenWorkbook(context.Background(), cfg.CurrentWorkbookID)
		if err != nil {
			return m.listWorkbooks()
		}
		return workbookLoadedMsg{workbook: wb, sheets: sheets}
	}
}

func (m appModel) listWorkbooks() tea.Msg {
	wbs, err := m.store.ListWorkbooks(context.Background())
	if err != nil {
		return workbookLoadedMsg{err: err.Error()}
	}
	return workbooksListedMsg{workbooks: wbs}
}

type workbooksListedMsg struct {
	workbooks []model.Workbook
}

func (m appModel) openWorkbookCmd(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		wb, sheets, err := s.OpenWorkbook(context.Background(), id)
		if err != nil {
			return workbookLoadedMsg{err: err.Error()}
		}
		cfg, err := s.LoadConfig()
		if err == nil {
			cfg.CurrentWorkbookID = wb.ID
			_ = s.SaveConfig(cfg)
		}
		return workbookLoadedMsg{workbook: wb, sheets: sheets}
	}
}

func (m appModel) createWorkbookCmd(name string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		wb, err := s.CreateWorkbook(context.Background(), name)
		if err != nil {
			return workbookCreatedMsg{err: err.Error()}
		}
		return workbookCreatedMsg{workbook: wb}
	}
}

func (m appModel) renameWorkbookCmd(id, name string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.RenameWorkbook(context.Background(), id, name); err != nil {
			return workbookCreatedMsg{err: err.Error()}
		}
		return m.listWorkbooks()
	}
}

// persistCellCmd writes one committed cell through to SQLite.
func (m appModel) persistCellCmd(e editor.PersistCell) tea.Cmd {
	s := m.store
	workbookID := m.ed.Workbook.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg := cellSavedMsg{sheetID: e.SheetID, cellID: e.CellID}
		if err := s.UpdateCell(ctx, workbookID, e.SheetID, e.CellID, e.Value); err != nil {
			msg.err = err.Error()
		}
		return msg
	}
}

func (m appModel) clearStatusCmd() tea.Cmd {
	seq := m.statusSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

// setStatus replaces the status line. Sticky messages survive the
// expiry tick and clear on the next keypress.
func (m *appModel) setStatus(text string, sticky bool) tea.Cmd {
	m.status = text
	m.statusSticky = sticky
	m.statusSeq++
	if sticky {
		return nil
	}
	return m.clearStatusCmd()
}

// gridRows returns how many sheet rows fit in the current viewport.
func (m appModel) gridRows() int {
	n := m.height - topChromeLines - bottomChromeLines
	if n < 1 {
		n = 1
	}
	return n
}

// gridCols returns how many columns fit beside the row-number gutter.
func (m appModel) gridCols() int {
	n := (m.width - rowLabelWidth) / cellWidth
	if n < 1 {
		n = 1
	}
	return n
}

// cellAt maps terminal coordinates to a cell id on the active sheet.
func (m appModel) cellAt(x, y int) (string, bool) {
	sheet, ok := m.ed.ActiveSheet()
	if !ok {
		return "", false
	}
	row := m.rowOff + (y - topChromeLines)
	col := m.colOff + (x-rowLabelWidth)/cellWidth
	if y < topChromeLines || x < rowLabelWidth || row < 0 || col < 0 {
		return "", false
	}
	if row >= len(sheet.Rows) || col >= len(sheet.Columns) {
		return "", false
	}
	return fmt.Sprintf("%s%d", sheet.Columns[col], sheet.Rows[row]), true
}
