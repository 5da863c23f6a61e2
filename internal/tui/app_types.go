package tui

import (
	"cf0/internal/model"
)

type view int

const (
	viewPicker view = iota
	viewGrid
)

type modalKind int

const (
	modalNone modalKind = iota
	modalNewWorkbook
	modalRenameWorkbook
	modalGotoCell
)

// workbookLoadedMsg carries a freshly opened workbook into the model.
type workbookLoadedMsg struct {
	workbook model.Workbook
	sheets   map[string]model.Sheet
	err      string
}

// cellSavedMsg reports the outcome of a PersistCell write-through.
type cellSavedMsg struct {
	sheetID string
	cellID  string
	err     string
}

// workbookCreatedMsg reports the outcome of creating a workbook from
// the picker.
type workbookCreatedMsg struct {
	workbook model.Workbook
	err      string
}

// statusClearMsg expires a transient status-line message. Sticky
// messages (persistence failures) ignore it.
type statusClearMsg struct{ seq int }
