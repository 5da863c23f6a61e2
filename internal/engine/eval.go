package engine

import (
	"math"
	"strconv"
	"strings"
)

// Lookup resolves a cell's raw stored value. It is supplied by the
// workbook state container; the engine never touches storage directly.
// ok=false means the sheet or cell does not exist.
type Lookup func(sheetID, cellID string) (raw string, ok bool)

// value is the runtime type of an evaluated expression:
// float64, string, bool, nil (empty cell), *CellError, or
// []value (an expanded range, valid only as a function argument).
type value any

type env struct {
	lookup Lookup
	sheet  string
	// visiting guards recursive reference resolution. Keys are
	// sheet + "\x00" + cellID.
	visiting map[string]struct{}
}

// Evaluate computes the display value for a raw cell value. Plain text
// is returned as-is; formulas are parsed and computed against the
// lookup collaborator. The result is always a string: numbers print
// without a trailing ".0", errors print as their in-band token. It is
// pure and safe to call on every render.
func Evaluate(raw, currentSheet string, lookup Lookup) string {
	if !IsFormula(raw) {
		return raw
	}
	e := &env{lookup: lookup, sheet: currentSheet, visiting: map[string]struct{}{}}
	return formatValue(e.evalFormula(raw))
}

// evalFormula parses and evaluates the body of a formula.
func (e *env) evalFormula(raw string) value {
	body := strings.TrimPrefix(raw, "=")
	if strings.TrimSpace(body) == "" {
		return newCellError(ErrorCodeParse, "empty formula")
	}
	n, err := parse(body)
	if err != nil {
		return newCellError(ErrorCodeParse, err.Error())
	}
	return n.eval(e)
}

// resolve returns the evaluated value of a referenced cell. Formulas
// evaluate recursively; a revisit on the active resolution path means
// the sheet contains a reference cycle.
func (e *env) resolve(sheet, cellID string) value {
	if sheet == "" {
		sheet = e.sheet
	}
	key := sheet + "\x00" + cellID
	if _, ok := e.visiting[key]; ok {
		return newCellError(ErrorCodeCycle, "circular reference via "+cellID)
	}

	raw, ok := e.lookup(sheet, cellID)
	if !ok {
		return newCellError(ErrorCodeRef, "unresolvable reference "+cellID)
	}
	if !IsFormula(raw) {
		return literalValue(raw)
	}

	e.visiting[key] = struct{}{}
	defer delete(e.visiting, key)

	prevSheet := e.sheet
	e.sheet = sheet
	v := e.evalFormula(raw)
	e.sheet = prevSheet
	return v
}

// literalValue interprets a non-formula raw value: number, boolean, or
// plain text. Empty raw text is the nil (empty-cell) value.
func literalValue(raw string) value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return raw
}

func (n *numberNode) eval(*env) value { return n.v }

func (n *stringNode) eval(*env) value { return n.v }

func (n *boolNode) eval(*env) value { return n.v }

func (n *cellNode) eval(e *env) value {
	ref, err := ParseRef(n.ref)
	if err != nil {
		return newCellError(ErrorCodeRef, err.Error())
	}
	return e.resolve(ref.Sheet, ref.CellID())
}

func (n *rangeNode) eval(e *env) value {
	rr, err := ParseRangeRef(n.ref)
	if err != nil {
		return newCellError(ErrorCodeRef, err.Error())
	}
	var out []value
	for _, id := range rr.Cells() {
		out = append(out, e.resolve(rr.Sheet, id))
	}
	return out
}

func (n *unaryNode) eval(e *env) value {
	v := n.operand.eval(e)
	f, cerr := toNumber(v)
	if cerr != nil {
		return cerr
	}
	if n.op == "-" {
		return -f
	}
	return f
}

func (n *percentNode) eval(e *env) value {
	f, cerr := toNumber(n.operand.eval(e))
	if cerr != nil {
		return cerr
	}
	return f / 100
}

func (n *binaryNode) eval(e *env) value {
	left := n.left.eval(e)
	right := n.right.eval(e)
	if cerr, ok := left.(*CellError); ok {
		return cerr
	}
	if cerr, ok := right.(*CellError); ok {
		return cerr
	}

	switch n.op {
	case "&":
		return formatValue(left) + formatValue(right)
	case "=", "<>", "<", "<=", ">", ">=":
		return compareValues(n.op, left, right)
	}

	lf, cerr := toNumber(left)
	if cerr != nil {
		return cerr
	}
	rf, cerr := toNumber(right)
	if cerr != nil {
		return cerr
	}

	switch n.op {
	case "+":
		return lf + rf
	case "-":
		return lf - rf
	case "*":
		return lf * rf
	case "/":
		if rf == 0 {
			return newCellError(ErrorCodeDiv0, "division by zero")
		}
		return lf / rf
	case "^":
		return math.Pow(lf, rf)
	}
	return newCellError(ErrorCodeParse, "unknown operator "+n.op)
}

func (n *callNode) eval(e *env) value {
	fn, ok := builtins[n.name]
	if !ok {
		return newCellError(ErrorCodeName, "unknown function "+n.name)
	}
	args := make([]value, 0, len(n.args))
	for _, a := range n.args {
		args = append(args, a.eval(e))
	}
	return fn(args)
}

// compareValues applies a comparison operator. Numbers compare
// numerically, everything else falls back to case-insensitive string
// comparison the way spreadsheets do.
func compareValues(op string, left, right value) value {
	lf, lerr := toNumber(left)
	rf, rerr := toNumber(right)

	var cmp int
	if lerr == nil && rerr == nil {
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	} else {
		ls := strings.ToLower(formatValue(left))
		rs := strings.ToLower(formatValue(right))
		cmp = strings.Compare(ls, rs)
	}

	switch op {
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return newCellError(ErrorCodeParse, "unknown comparison "+op)
}

// toNumber coerces a value for arithmetic. Empty cells count as 0,
// booleans as 0/1, numeric-looking strings parse; anything else is a
// #VALUE! error. Ranges never coerce.
func toNumber(v value) (float64, *CellError) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, nil
		}
		return 0, newCellError(ErrorCodeValue, "non-numeric operand "+strconv.Quote(x))
	case *CellError:
		return 0, x
	}
	return 0, newCellError(ErrorCodeValue, "non-numeric operand")
}

// formatValue renders an evaluated value for display. Integral floats
// print without a decimal point.
func formatValue(v value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errorTokens[ErrorCodeValue]
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *CellError:
		return x.Error()
	case []value:
		// A bare range outside a function argument has no scalar form.
		return errorTokens[ErrorCodeValue]
	}
	return errorTokens[ErrorCodeValue]
}
