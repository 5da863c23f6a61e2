package editor

// Action is the closed set of inputs the editing state machine accepts.
// The UI layer translates raw key/mouse events into these; Apply
// matches them exhaustively.
type Action interface {
	isAction()
}

// SelectCell moves the single-cell selection. Any in-progress edit is
// implicitly committed first (and the selection stays put if that
// commit is rejected for a circular reference).
type SelectCell struct {
	SheetID string
	CellID  string
}

// StartEdit begins editing the selected cell. Seed is the text the
// draft starts with: the cell's current raw value for an "open" edit
// (double-click, F2), or the typed character that triggered the edit
// ("=" included), which replaces the cell content.
type StartEdit struct {
	Seed    string
	Replace bool
}

// InsertText inserts text at the caret of the active draft.
type InsertText struct {
	Text string
}

// DeleteBack removes the rune before the caret.
type DeleteBack struct{}

// MoveCaret shifts the caret by Delta runes, clamped to the draft.
type MoveCaret struct {
	Delta int
}

// PointCell is a click or arrow-navigation onto another cell. While a
// formula draft is active it inserts that cell's reference at the
// caret; otherwise it behaves like SelectCell.
type PointCell struct {
	SheetID string
	CellID  string
}

// PointRange is a drag over a cell block while a formula draft is
// active: the range reference is inserted at the caret.
type PointRange struct {
	SheetID string
	Anchor  string
	Focus   string
}

// Commit ends the edit via Enter/Tab or programmatically. Formula
// drafts run the circular-reference check first; on a cycle the state
// machine stays in editing and emits CycleRejected.
type Commit struct{}

// Cancel discards the draft (Escape). No persistence call is made.
type Cancel struct{}

// ClearCell empties the selected cell when no edit is in progress.
type ClearCell struct{}

// BeginRange anchors a new range selection (mouse down).
type BeginRange struct {
	SheetID string
	CellID  string
}

// ExtendRange moves the focus edge of the range selection (drag).
type ExtendRange struct {
	CellID string
}

// ClearRange drops the range selection.
type ClearRange struct{}

// SwitchSheet activates another sheet. An in-progress edit is
// implicitly committed, same as SelectCell.
type SwitchSheet struct {
	SheetID string
}

func (SelectCell) isAction()  {}
func (StartEdit) isAction()   {}
func (InsertText) isAction()  {}
func (DeleteBack) isAction()  {}
func (MoveCaret) isAction()   {}
func (PointCell) isAction()   {}
func (PointRange) isAction()  {}
func (Commit) isAction()      {}
func (Cancel) isAction()      {}
func (ClearCell) isAction()   {}
func (BeginRange) isAction()  {}
func (ExtendRange) isAction() {}
func (ClearRange) isAction()  {}
func (SwitchSheet) isAction() {}

// Effect describes work the caller must perform after a transition.
// The state machine never does I/O itself.
type Effect interface {
	isEffect()
}

// PersistCell asks the caller to persist a committed raw value. The
// local state has already applied it optimistically.
type PersistCell struct {
	SheetID string
	CellID  string
	Value   string
}

// CycleRejected reports that a formula commit was blocked because it
// would introduce a circular reference. The draft is still open; the
// prior stored value is untouched.
type CycleRejected struct {
	SheetID string
	CellID  string
}

func (PersistCell) isEffect()   {}
func (CycleRejected) isEffect() {}
