package engine

import "testing"

func TestHasCycle(t *testing.T) {
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"A1": "1",
			"B1": "=A1",
			"C1": "=B1+A1",
			"D1": "=Sheet2!A1",
		},
		"Sheet2": {
			"A1": "=Sheet1!E1",
		},
	})

	tests := []struct {
		name    string
		cell    string
		formula string
		want    bool
	}{
		{"direct self reference", "A1", "=A1", true},
		{"two-cell cycle", "A1", "=B1", true},
		{"transitive cycle", "A1", "=C1", true},
		{"cross-sheet cycle", "E1", "=D1", true},
		{"acyclic chain", "E1", "=C1*2", false},
		{"plain value commit", "A1", "42", false},
		{"range containing origin", "A1", "=SUM(A1:A3)", true},
		{"range not containing origin", "A9", "=SUM(A1:A3)", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HasCycle("Sheet1", tc.cell, tc.formula, lookup)
			if got != tc.want {
				t.Fatalf("HasCycle(%s, %q) = %v, want %v", tc.cell, tc.formula, got, tc.want)
			}
		})
	}
}

func TestHasCycleTerminatesOnSharedDiamond(t *testing.T) {
	// D depends on B and C which both depend on A; no cycle, and the
	// visited set must keep the walk linear.
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"A1": "1",
			"B1": "=A1",
			"C1": "=A1",
			"D1": "=B1+C1",
		},
	})
	if HasCycle("Sheet1", "E1", "=D1", lookup) {
		t.Fatal("diamond dependency misreported as a cycle")
	}
}

func TestHasCycleDoesNotFlagSiblingCycles(t *testing.T) {
	// The committed cell only cares about chains that loop back to it.
	lookup := gridLookup(map[string]map[string]string{
		"Sheet1": {
			"B1": "=C1",
			"C1": "=B1",
		},
	})
	if HasCycle("Sheet1", "A1", "=B1", lookup) {
		t.Fatal("cycle not involving the origin should not block the commit")
	}
}
