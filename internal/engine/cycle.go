package engine

import "strings"

// refKey identifies a cell across sheets in the dependency walk.
type refKey struct {
	sheet string
	cell  string
}

// HasCycle reports whether committing candidateFormula into the origin
// cell would create a circular reference chain. It walks the reference
// graph depth-first through the lookup collaborator; a visited set
// bounds the traversal on any finite sheet, and nothing is mutated.
// Callers run this before persisting a formula commit.
func HasCycle(originSheet, originCellID string, candidateFormula string, lookup Lookup) bool {
	if !IsFormula(candidateFormula) {
		return false
	}
	origin := refKey{sheet: originSheet, cell: strings.ToUpper(originCellID)}
	visited := map[refKey]struct{}{origin: {}}

	stack := extractRefs(candidateFormula, originSheet)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if next == origin {
			return true
		}
		if _, seen := visited[next]; seen {
			continue
		}
		visited[next] = struct{}{}

		raw, ok := lookup(next.sheet, next.cell)
		if !ok || !IsFormula(raw) {
			continue
		}
		stack = append(stack, extractRefs(raw, next.sheet)...)
	}
	return false
}

// extractRefs collects every cell the formula references, with ranges
// expanded to their member cells. Lex errors yield no references; the
// evaluator reports those separately.
func extractRefs(formula, currentSheet string) []refKey {
	toks, err := lex(strings.TrimPrefix(formula, "="))
	if err != nil {
		return nil
	}
	var refs []refKey
	for _, tok := range toks {
		switch tok.typ {
		case tokenCell:
			ref, err := ParseRef(tok.val)
			if err != nil {
				continue
			}
			sheet := ref.Sheet
			if sheet == "" {
				sheet = currentSheet
			}
			refs = append(refs, refKey{sheet: sheet, cell: ref.CellID()})
		case tokenRange:
			rr, err := ParseRangeRef(tok.val)
			if err != nil {
				continue
			}
			sheet := rr.Sheet
			if sheet == "" {
				sheet = currentSheet
			}
			for _, id := range rr.Cells() {
				refs = append(refs, refKey{sheet: sheet, cell: id})
			}
		}
	}
	return refs
}
