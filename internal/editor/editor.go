// Package editor holds the workbook view state and the cell-editing
// state machine. It is pure: transitions go through Apply, persistence
// and rendering are the caller's problem. The TUI translates terminal
// events into Actions; tests drive Apply directly.
package editor

import (
	"strings"

	"cf0/internal/engine"
	"cf0/internal/model"
)

// Editing tracks an in-progress cell edit: where it started, the draft
// text, and the caret position (in runes). PendingRef is the rune
// length of a reference just inserted by pointing; the next pointing
// action replaces it instead of inserting again, so arrowing across
// cells retargets the reference. Any other draft mutation clears it.
type Editing struct {
	SheetID    string
	CellID     string
	Draft      string
	Caret      int
	PendingRef int
}

// Selection is the single-cell cursor.
type Selection struct {
	SheetID string
	CellID  string
}

// RangeSelection is a rectangular block between an anchor and a focus
// cell on one sheet.
type RangeSelection struct {
	SheetID string
	Anchor  string
	Focus   string
}

// State is the whole editor-visible workbook state for one open
// workbook. It is owned by a single UI loop; Apply mutates the cell
// maps in place and returns the updated value.
type State struct {
	Workbook   model.Workbook
	Sheets     map[string]model.Sheet
	SheetOrder []string

	ActiveSheetID string
	Selection     Selection
	Range         *RangeSelection
	Editing       *Editing
}

// NewState builds the initial state with the first sheet active and A1
// selected.
func NewState(wb model.Workbook, sheets map[string]model.Sheet) State {
	st := State{
		Workbook:   wb,
		Sheets:     sheets,
		SheetOrder: wb.SheetOrder,
	}
	if len(st.SheetOrder) > 0 {
		st.ActiveSheetID = st.SheetOrder[0]
		st.Selection = Selection{SheetID: st.ActiveSheetID, CellID: "A1"}
	}
	return st
}

// Lookup adapts the in-memory sheets to the engine's lookup
// collaborator. Sheet ids and sheet names both resolve, since formulas
// reference sheets by name.
func (s *State) Lookup() engine.Lookup {
	return func(sheetID, cellID string) (string, bool) {
		sheet, ok := s.sheetByIDOrName(sheetID)
		if !ok {
			return "", false
		}
		return sheet.Cells[strings.ToUpper(cellID)].Value, true
	}
}

func (s *State) sheetByIDOrName(key string) (model.Sheet, bool) {
	if sheet, ok := s.Sheets[key]; ok {
		return sheet, true
	}
	for _, sheet := range s.Sheets {
		if sheet.Name == key {
			return sheet, true
		}
	}
	return model.Sheet{}, false
}

// ActiveSheet returns the currently visible sheet.
func (s *State) ActiveSheet() (model.Sheet, bool) {
	sheet, ok := s.Sheets[s.ActiveSheetID]
	return sheet, ok
}

// RawValue returns the stored raw value of a cell on the active sheet.
func (s *State) RawValue(cellID string) string {
	sheet, ok := s.ActiveSheet()
	if !ok {
		return ""
	}
	return sheet.Cells[cellID].Value
}

// DisplayValue evaluates a cell of the active sheet for rendering.
func (s *State) DisplayValue(cellID string) string {
	sheet, ok := s.ActiveSheet()
	if !ok {
		return ""
	}
	return engine.Evaluate(sheet.Cells[cellID].Value, sheet.Name, s.Lookup())
}

// Apply runs one state-machine transition and returns the effects the
// caller must execute. It is the only mutation path for State.
func Apply(s State, a Action) (State, []Effect) {
	switch act := a.(type) {
	case SelectCell:
		return applySelect(s, act.SheetID, act.CellID)

	case StartEdit:
		return applyStartEdit(s, act)

	case InsertText:
		if s.Editing == nil {
			return s, nil
		}
		s.Editing.Draft, s.Editing.Caret = insertAt(s.Editing.Draft, s.Editing.Caret, act.Text)
		s.Editing.PendingRef = 0
		return s, nil

	case DeleteBack:
		if s.Editing == nil || s.Editing.Caret == 0 {
			return s, nil
		}
		runes := []rune(s.Editing.Draft)
		i := s.Editing.Caret
		s.Editing.Draft = string(runes[:i-1]) + string(runes[i:])
		s.Editing.Caret = i - 1
		s.Editing.PendingRef = 0
		return s, nil

	case MoveCaret:
		if s.Editing == nil {
			return s, nil
		}
		s.Editing.Caret = clamp(s.Editing.Caret+act.Delta, 0, len([]rune(s.Editing.Draft)))
		s.Editing.PendingRef = 0
		return s, nil

	case PointCell:
		if s.Editing != nil && engine.IsFormula(s.Editing.Draft) {
			return insertReference(s, act.SheetID, act.CellID, "")
		}
		return applySelect(s, act.SheetID, act.CellID)

	case PointRange:
		if s.Editing != nil && engine.IsFormula(s.Editing.Draft) {
			return insertReference(s, act.SheetID, act.Anchor, act.Focus)
		}
		s.Range = &RangeSelection{SheetID: act.SheetID, Anchor: act.Anchor, Focus: act.Focus}
		return s, nil

	case Commit:
		return applyCommit(s)

	case Cancel:
		s.Editing = nil
		return s, nil

	case ClearCell:
		if s.Editing != nil {
			return s, nil
		}
		sheet, ok := s.Sheets[s.Selection.SheetID]
		if !ok {
			return s, nil
		}
		if _, exists := sheet.Cells[s.Selection.CellID]; !exists {
			return s, nil
		}
		delete(sheet.Cells, s.Selection.CellID)
		return s, []Effect{PersistCell{SheetID: sheet.ID, CellID: s.Selection.CellID, Value: ""}}

	case BeginRange:
		s.Range = &RangeSelection{SheetID: act.SheetID, Anchor: act.CellID, Focus: act.CellID}
		s.Selection = Selection{SheetID: act.SheetID, CellID: act.CellID}
		return s, nil

	case ExtendRange:
		if s.Range == nil {
			return s, nil
		}
		s.Range.Focus = act.CellID
		return s, nil

	case ClearRange:
		s.Range = nil
		return s, nil

	case SwitchSheet:
		var effects []Effect
		if s.Editing != nil {
			var committed bool
			s, effects, committed = commitDraft(s)
			if !committed {
				return s, effects
			}
		}
		if _, ok := s.Sheets[act.SheetID]; !ok {
			return s, effects
		}
		s.ActiveSheetID = act.SheetID
		s.Selection = Selection{SheetID: act.SheetID, CellID: "A1"}
		s.Range = nil
		return s, effects
	}
	return s, nil
}

// applySelect commits any open draft (implicit-commit policy), then
// moves the selection. A rejected commit keeps the edit open and the
// selection unchanged.
func applySelect(s State, sheetID, cellID string) (State, []Effect) {
	var effects []Effect
	if s.Editing != nil {
		var committed bool
		s, effects, committed = commitDraft(s)
		if !committed {
			return s, effects
		}
	}
	s.Selection = Selection{SheetID: sheetID, CellID: strings.ToUpper(cellID)}
	s.Range = nil
	return s, effects
}

func applyStartEdit(s State, act StartEdit) (State, []Effect) {
	var effects []Effect
	if s.Editing != nil {
		var committed bool
		s, effects, committed = commitDraft(s)
		if !committed {
			return s, effects
		}
	}

	draft := act.Seed
	if !act.Replace {
		draft = s.RawValue(s.Selection.CellID) + act.Seed
	}
	s.Editing = &Editing{
		SheetID: s.Selection.SheetID,
		CellID:  s.Selection.CellID,
		Draft:   draft,
		Caret:   len([]rune(draft)),
	}
	return s, effects
}

func applyCommit(s State) (State, []Effect) {
	next, effects, _ := commitDraft(s)
	return next, effects
}

// commitDraft validates and applies the open draft. The committed raw
// text is applied to local state immediately (optimistic apply) and a
// PersistCell effect tells the caller to write it through; evaluation
// results are never stored.
func commitDraft(s State) (State, []Effect, bool) {
	ed := s.Editing
	if ed == nil {
		return s, nil, true
	}
	sheet, ok := s.Sheets[ed.SheetID]
	if !ok {
		s.Editing = nil
		return s, nil, true
	}

	if engine.IsFormula(ed.Draft) &&
		engine.HasCycle(sheet.Name, ed.CellID, ed.Draft, s.Lookup()) {
		return s, []Effect{CycleRejected{SheetID: ed.SheetID, CellID: ed.CellID}}, false
	}

	if ed.Draft == "" {
		delete(sheet.Cells, ed.CellID)
	} else {
		cell := sheet.Cells[ed.CellID]
		cell.Value = ed.Draft
		sheet.Cells[ed.CellID] = cell
	}
	s.Editing = nil
	return s, []Effect{PersistCell{SheetID: ed.SheetID, CellID: ed.CellID, Value: ed.Draft}}, true
}

// insertReference inserts a cell or range reference at the caret while
// a formula draft is active. The reference is sheet-qualified only when
// it points off the edit's origin sheet. A reference inserted by the
// immediately preceding pointing action is replaced, not appended to.
func insertReference(s State, targetSheetID, anchor, focus string) (State, []Effect) {
	ed := s.Editing
	originSheet, ok := s.Sheets[ed.SheetID]
	if !ok {
		return s, nil
	}
	targetSheet, ok := s.Sheets[targetSheetID]
	if !ok {
		return s, nil
	}

	var ref string
	if focus == "" || focus == anchor {
		col, row, err := engine.ParseCellID(anchor)
		if err != nil {
			return s, nil
		}
		ref = engine.BuildReference(row, col, targetSheet.Name, originSheet.Name)
	} else {
		ref = engine.BuildRangeReference(anchor, focus, targetSheet.Name, originSheet.Name)
	}

	if ed.PendingRef > 0 && ed.Caret >= ed.PendingRef {
		runes := []rune(ed.Draft)
		ed.Draft = string(runes[:ed.Caret-ed.PendingRef]) + string(runes[ed.Caret:])
		ed.Caret -= ed.PendingRef
	}
	ed.Draft, ed.Caret = insertAt(ed.Draft, ed.Caret, ref)
	ed.PendingRef = len([]rune(ref))
	return s, nil
}

func insertAt(s string, caret int, text string) (string, int) {
	runes := []rune(s)
	caret = clamp(caret, 0, len(runes))
	out := string(runes[:caret]) + text + string(runes[caret:])
	return out, caret + len([]rune(text))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
