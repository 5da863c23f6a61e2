package tui

import "testing"

func TestPadCellAlignment(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 8, "hello   "},
		{"42", 8, "      42"},
		{"-3.5", 8, "    -3.5"},
		{"#DIV/0!", 8, " #DIV/0!"},
		{"", 4, "    "},
	}
	for _, tc := range cases {
		if got := padCell(tc.in, tc.width); got != tc.want {
			t.Errorf("padCell(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestPadCellTruncates(t *testing.T) {
	if got := padCell("a very long label", 6); got != "a ver…" {
		t.Fatalf("padCell = %q", got)
	}
	if got := padCell("ab", 1); got != "…" {
		t.Fatalf("padCell width 1 = %q", got)
	}
}

func TestDraftWithCaret(t *testing.T) {
	if got := draftWithCaret("=A1", 3); got != "=A1▏" {
		t.Fatalf("caret at end: %q", got)
	}
	if got := draftWithCaret("=A1", 1); got != "=▏A1" {
		t.Fatalf("caret mid-draft: %q", got)
	}
	if got := draftWithCaret("", 5); got != "▏" {
		t.Fatalf("caret clamped: %q", got)
	}
}

func TestRangeBoundsNormalizes(t *testing.T) {
	minC, minR, maxC, maxR, ok := rangeBounds("C3", "A1")
	if !ok {
		t.Fatal("expected ok")
	}
	if minC != 0 || minR != 0 || maxC != 2 || maxR != 2 {
		t.Fatalf("bounds = %d,%d..%d,%d", minC, minR, maxC, maxR)
	}

	if _, _, _, _, ok := rangeBounds("??", "A1"); ok {
		t.Fatal("expected !ok for junk input")
	}
}
