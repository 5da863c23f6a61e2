package engine

import "testing"

// gridLookup builds a Lookup over sheet -> cellID -> raw value. Cells
// absent from a known sheet read as empty; unknown sheets fail.
func gridLookup(sheets map[string]map[string]string) Lookup {
	return func(sheetID, cellID string) (string, bool) {
		cells, ok := sheets[sheetID]
		if !ok {
			return "", false
		}
		return cells[cellID], true
	}
}

func TestEvaluateLiterals(t *testing.T) {
	lookup := gridLookup(map[string]map[string]string{"Sheet1": {}})
	tests := []struct {
		raw  string
		want string
	}{
		{"hello", "hello"},
		{"42", "42"},
		{"", ""},
		{"=1+2", "3"},
		{"=2*3+4", "10"},
		{"=2+3*4", "14"},
		{"=(2+3)*4", "20"},
		{"=2^10", "1024"},
		{"=-5+1", "-4"},
		{"=50%", "0.5"},
		{"=1.5+1.25", "2.75"},
		{`="foo"&"bar"`, "foobar"},
		{`=1=1`, "TRUE"},
		{`=2<>2`, "FALSE"},
		{`=3>=2`, "TRUE"},
		{"=TRUE", "TRUE"},
		{"=1/0", "#DIV/0!"},
		{`="a"+1`, "#VALUE!"},
		{"=NOPE(1)", "#NAME?"},
		{"=1+", "#ERROR!"},
		{"=", "#ERROR!"},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := Evaluate(tc.raw, "Sheet1", lookup); got != tc.want {
				t.Fatalf("Evaluate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEvaluateCellReferences(t *testing.T) {
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"A1": "2",
			"A2": "3",
			"A3": "=A1+A2",
			"B1": "text",
			"C1": "=Sheet2!A1*2",
		},
		"Sheet2": {
			"A1": "7",
		},
	})

	tests := []struct {
		raw  string
		want string
	}{
		{"=A1+A2", "5"},
		{"=A3*2", "10"},          // formula referencing a formula
		{"=Sheet2!A1+1", "8"},    // cross-sheet
		{"=C1", "14"},            // nested cross-sheet
		{"=A1/0", "#DIV/0!"},     // property 4: error token, no panic
		{"=B1+1", "#VALUE!"},     // text operand
		{"=D9+1", "1"},           // empty cell coerces to 0
		{"=Nowhere!A1", "#REF!"}, // unknown sheet
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := Evaluate(tc.raw, "Sheet1", lookup); got != tc.want {
				t.Fatalf("Evaluate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEvaluateFunctions(t *testing.T) {
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"A1": "1",
			"A2": "2",
			"A3": "3",
			"B1": "skip me",
		},
	})

	tests := []struct {
		raw  string
		want string
	}{
		{"=SUM(A1:A3)", "6"},
		{"=SUM(A1,A2,10)", "13"},
		{"=SUM(B1:B3)", "0"}, // text and empties are skipped
		{"=AVERAGE(A1:A3)", "2"},
		{"=MIN(A1:A3)", "1"},
		{"=MAX(A1:A3)", "3"},
		{"=COUNT(A1:B3)", "3"},
		{"=ABS(-4)", "4"},
		{"=ROUND(2.567,2)", "2.57"},
		{"=IF(A1=1,\"yes\",\"no\")", "yes"},
		{"=IF(A1>5,1,2)", "2"},
		{"=LEN(\"héllo\")", "5"},
		{"=CONCATENATE(\"a\",A1,\"b\")", "a1b"},
		{"=AVERAGE(B1)", "#DIV/0!"},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := Evaluate(tc.raw, "Sheet1", lookup); got != tc.want {
				t.Fatalf("Evaluate(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEvaluateSelfReferenceYieldsCycleToken(t *testing.T) {
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"A1": "=B1",
			"B1": "=A1",
		},
	})
	// Evaluating an existing cycle must terminate with the in-band
	// token rather than recursing forever.
	if got := Evaluate("=A1", "Sheet1", lookup); got != "#CYCLE!" {
		t.Fatalf("Evaluate(=A1) = %q, want #CYCLE!", got)
	}
}

func TestIsFormula(t *testing.T) {
	if !IsFormula("=1") {
		t.Fatal("IsFormula(\"=1\") = false")
	}
	if IsFormula("1=1") || IsFormula("") {
		t.Fatal("IsFormula matched a non-formula")
	}
}
