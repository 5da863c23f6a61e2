package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"cf0/internal/model"
)

func testState() State {
	s1 := model.NewSheet("sh-1", "Sheet1", 8, 12)
	s2 := model.NewSheet("sh-2", "Sheet2", 8, 12)
	s1.Cells["A1"] = model.CellData{Value: "2"}
	s1.Cells["A2"] = model.CellData{Value: "3"}
	wb := model.Workbook{ID: "wb-1", Name: "test", SheetOrder: []string{"sh-1", "sh-2"}}
	return NewState(wb, map[string]model.Sheet{"sh-1": s1, "sh-2": s2})
}

func apply(t *testing.T, s State, actions ...Action) (State, []Effect) {
	t.Helper()
	var all []Effect
	for _, a := range actions {
		var effects []Effect
		s, effects = Apply(s, a)
		all = append(all, effects...)
	}
	return s, all
}

func TestStartEditSeedsAndCommits(t *testing.T) {
	s := testState()
	s, effects := apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "4", Replace: true},
		InsertText{Text: "2"},
		Commit{},
	)

	if s.Editing != nil {
		t.Fatal("expected idle state after commit")
	}
	if got := s.RawValue("C3"); got != "42" {
		t.Fatalf("stored raw value = %q, want %q", got, "42")
	}
	want := []Effect{PersistCell{SheetID: "sh-1", CellID: "C3", Value: "42"}}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestPointCellInsertsReferenceIntoFormulaDraft(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "=", Replace: true},
		PointCell{SheetID: "sh-1", CellID: "D4"},
	)

	if s.Editing == nil {
		t.Fatal("pointing at a cell mid-formula must keep the draft open")
	}
	if s.Editing.Draft != "=D4" {
		t.Fatalf("draft = %q, want %q", s.Editing.Draft, "=D4")
	}
	if s.Editing.Caret != 3 {
		t.Fatalf("caret = %d, want 3", s.Editing.Caret)
	}
}

func TestPointCellOnCrossSheetQualifiesReference(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "=", Replace: true},
		PointCell{SheetID: "sh-2", CellID: "D4"},
	)
	if s.Editing.Draft != "=Sheet2!D4" {
		t.Fatalf("draft = %q, want %q", s.Editing.Draft, "=Sheet2!D4")
	}
}

func TestPointingAgainReplacesPendingReference(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "=", Replace: true},
		PointCell{SheetID: "sh-1", CellID: "D4"},
		PointCell{SheetID: "sh-1", CellID: "D5"},
	)
	// Arrowing from D4 to D5 retargets the reference instead of
	// producing "=D4D5".
	if s.Editing.Draft != "=D5" {
		t.Fatalf("draft = %q, want %q", s.Editing.Draft, "=D5")
	}

	// Typing ends the pending reference; the next pointing appends.
	s, _ = apply(t, s,
		InsertText{Text: "+"},
		PointCell{SheetID: "sh-1", CellID: "A1"},
	)
	if s.Editing.Draft != "=D5+A1" {
		t.Fatalf("draft = %q, want %q", s.Editing.Draft, "=D5+A1")
	}
}

func TestPointRangeInsertsRangeReference(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "=SUM(", Replace: true},
		PointRange{SheetID: "sh-1", Anchor: "A1", Focus: "A2"},
	)
	if s.Editing.Draft != "=SUM(A1:A2" {
		t.Fatalf("draft = %q, want %q", s.Editing.Draft, "=SUM(A1:A2")
	}
}

func TestCancelRestoresNothing(t *testing.T) {
	s := testState()
	before := s.RawValue("A1")

	s, effects := apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "A1"},
		StartEdit{Seed: "999", Replace: true},
		Cancel{},
	)

	if len(effects) != 0 {
		t.Fatalf("cancel must not persist, got %v", effects)
	}
	if s.Editing != nil {
		t.Fatal("expected idle state after cancel")
	}
	if got := s.RawValue("A1"); got != before {
		t.Fatalf("raw value changed across cancel: %q -> %q", before, got)
	}
}

func TestCommitRejectsCircularReference(t *testing.T) {
	s := testState()
	sheet := s.Sheets["sh-1"]
	sheet.Cells["B1"] = model.CellData{Value: "=A1"}

	// A1 <- B1 <- A1 would close the loop.
	s, effects := apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "A1"},
		StartEdit{Seed: "=B1", Replace: true},
		Commit{},
	)

	if s.Editing == nil {
		t.Fatal("rejected commit must remain in editing state")
	}
	want := []Effect{CycleRejected{SheetID: "sh-1", CellID: "A1"}}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
	if got := s.RawValue("A1"); got != "2" {
		t.Fatalf("stored value changed on rejected commit: %q", got)
	}
	if got := s.RawValue("B1"); got != "=A1" {
		t.Fatalf("neighbor value changed on rejected commit: %q", got)
	}
}

func TestSelectCellImplicitlyCommitsOpenDraft(t *testing.T) {
	s := testState()
	s, effects := apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "C3"},
		StartEdit{Seed: "7", Replace: true},
		SelectCell{SheetID: "sh-1", CellID: "D4"},
	)

	if s.Editing != nil {
		t.Fatal("starting a new selection must close the prior edit")
	}
	if got := s.RawValue("C3"); got != "7" {
		t.Fatalf("implicit commit did not store draft, got %q", got)
	}
	if s.Selection.CellID != "D4" {
		t.Fatalf("selection = %q, want D4", s.Selection.CellID)
	}
	want := []Effect{PersistCell{SheetID: "sh-1", CellID: "C3", Value: "7"}}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestStartEditAppendsWhenNotReplacing(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "A1"},
		StartEdit{}, // open edit keeps the existing raw value
	)
	if s.Editing.Draft != "2" {
		t.Fatalf("draft = %q, want existing value %q", s.Editing.Draft, "2")
	}
}

func TestClearCellPersistsEmptyValue(t *testing.T) {
	s := testState()
	s, effects := apply(t, s,
		SelectCell{SheetID: "sh-1", CellID: "A1"},
		ClearCell{},
	)
	if got := s.RawValue("A1"); got != "" {
		t.Fatalf("cell not cleared, got %q", got)
	}
	want := []Effect{PersistCell{SheetID: "sh-1", CellID: "A1", Value: ""}}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeSelectionLifecycle(t *testing.T) {
	s := testState()
	s, _ = apply(t, s,
		BeginRange{SheetID: "sh-1", CellID: "B2"},
		ExtendRange{CellID: "D5"},
	)
	if s.Range == nil || s.Range.Anchor != "B2" || s.Range.Focus != "D5" {
		t.Fatalf("range = %+v", s.Range)
	}
	// A fresh single-cell selection clears the range.
	s, _ = apply(t, s, SelectCell{SheetID: "sh-1", CellID: "A1"})
	if s.Range != nil {
		t.Fatal("single-cell selection must clear the range selection")
	}
}

func TestDisplayValueEvaluatesFormulas(t *testing.T) {
	s := testState()
	sheet := s.Sheets["sh-1"]
	sheet.Cells["A3"] = model.CellData{Value: "=A1+A2"}
	if got := s.DisplayValue("A3"); got != "5" {
		t.Fatalf("DisplayValue(A3) = %q, want 5", got)
	}
	// The raw value stays the formula text.
	if got := s.RawValue("A3"); got != "=A1+A2" {
		t.Fatalf("RawValue(A3) = %q, want the formula text", got)
	}
}
