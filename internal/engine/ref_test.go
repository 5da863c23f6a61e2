package engine

import (
	"errors"
	"testing"
)

func TestParseCellIDRoundTrip(t *testing.T) {
	ids := []string{"A1", "B4", "Z99", "AA10", "AZC730", "c3"}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			col, row, err := ParseCellID(id)
			if err != nil {
				t.Fatalf("ParseCellID(%q): %v", id, err)
			}
			rebuilt := BuildCellID(col, row)
			col2, row2, err := ParseCellID(rebuilt)
			if err != nil {
				t.Fatalf("ParseCellID(%q): %v", rebuilt, err)
			}
			if col2 != col || row2 != row {
				t.Fatalf("round trip mismatch: %q -> (%s,%d) -> %q -> (%s,%d)",
					id, col, row, rebuilt, col2, row2)
			}
		})
	}
}

func TestParseCellIDInvalid(t *testing.T) {
	bad := []string{"", "A", "1", "1A", "A1B", "A-1", "A1!", "Sheet1!A1", "A0"}
	for _, id := range bad {
		t.Run(id, func(t *testing.T) {
			if _, _, err := ParseCellID(id); !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("ParseCellID(%q): want ErrInvalidReference, got %v", id, err)
			}
		})
	}
}

func TestBuildReference(t *testing.T) {
	if got := BuildReference(4, "D", "Sheet2", "Sheet1"); got != "Sheet2!D4" {
		t.Fatalf("cross-sheet reference = %q, want %q", got, "Sheet2!D4")
	}
	if got := BuildReference(4, "D", "Sheet1", "Sheet1"); got != "D4" {
		t.Fatalf("same-sheet reference = %q, want %q", got, "D4")
	}
}

func TestBuildRangeReference(t *testing.T) {
	if got := BuildRangeReference("A1", "B4", "Data", "Sheet1"); got != "Data!A1:B4" {
		t.Fatalf("cross-sheet range = %q, want %q", got, "Data!A1:B4")
	}
	if got := BuildRangeReference("A1", "B4", "Sheet1", "Sheet1"); got != "A1:B4" {
		t.Fatalf("same-sheet range = %q, want %q", got, "A1:B4")
	}
}

func TestParseRefSheetQualifier(t *testing.T) {
	ref, err := ParseRef("Sheet2!b12")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if ref.Sheet != "Sheet2" || ref.Column != "B" || ref.Row != 12 {
		t.Fatalf("ParseRef = %+v", ref)
	}
}

func TestRangeRefCellsNormalizesBounds(t *testing.T) {
	rr, err := ParseRangeRef("B2:A1")
	if err != nil {
		t.Fatalf("ParseRangeRef: %v", err)
	}
	got := rr.Cells()
	want := []string{"A1", "B1", "A2", "B2"}
	if len(got) != len(want) {
		t.Fatalf("Cells() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Cells() = %v, want %v", got, want)
		}
	}
}
