package engine

import (
	"math"
	"unicode/utf8"
)

// builtins is the supported function set. Each function receives its
// already-evaluated arguments; range arguments arrive as []value.
var builtins = map[string]func(args []value) value{
	"SUM":         fnSum,
	"AVERAGE":     fnAverage,
	"MIN":         fnMin,
	"MAX":         fnMax,
	"COUNT":       fnCount,
	"ABS":         fnAbs,
	"ROUND":       fnRound,
	"IF":          fnIf,
	"LEN":         fnLen,
	"CONCATENATE": fnConcatenate,
}

// flattenNumbers expands ranges and collects the numeric arguments.
// Empty cells and plain text inside ranges are skipped (spreadsheet
// aggregate semantics); errors short-circuit.
func flattenNumbers(args []value) ([]float64, *CellError) {
	var nums []float64
	for _, a := range args {
		switch x := a.(type) {
		case []value:
			inner, cerr := flattenNumbers(x)
			if cerr != nil {
				return nil, cerr
			}
			nums = append(nums, inner...)
		case *CellError:
			return nil, x
		case float64:
			nums = append(nums, x)
		}
	}
	return nums, nil
}

func fnSum(args []value) value {
	nums, cerr := flattenNumbers(args)
	if cerr != nil {
		return cerr
	}
	total := 0.0
	for _, f := range nums {
		total += f
	}
	return total
}

func fnAverage(args []value) value {
	nums, cerr := flattenNumbers(args)
	if cerr != nil {
		return cerr
	}
	if len(nums) == 0 {
		return newCellError(ErrorCodeDiv0, "AVERAGE of no numbers")
	}
	total := 0.0
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums))
}

func fnMin(args []value) value {
	nums, cerr := flattenNumbers(args)
	if cerr != nil {
		return cerr
	}
	if len(nums) == 0 {
		return 0.0
	}
	min := nums[0]
	for _, f := range nums[1:] {
		if f < min {
			min = f
		}
	}
	return min
}

func fnMax(args []value) value {
	nums, cerr := flattenNumbers(args)
	if cerr != nil {
		return cerr
	}
	if len(nums) == 0 {
		return 0.0
	}
	max := nums[0]
	for _, f := range nums[1:] {
		if f > max {
			max = f
		}
	}
	return max
}

func fnCount(args []value) value {
	nums, cerr := flattenNumbers(args)
	if cerr != nil {
		return cerr
	}
	return float64(len(nums))
}

func fnAbs(args []value) value {
	if len(args) != 1 {
		return newCellError(ErrorCodeValue, "ABS takes one argument")
	}
	f, cerr := toNumber(args[0])
	if cerr != nil {
		return cerr
	}
	return math.Abs(f)
}

func fnRound(args []value) value {
	if len(args) < 1 || len(args) > 2 {
		return newCellError(ErrorCodeValue, "ROUND takes one or two arguments")
	}
	f, cerr := toNumber(args[0])
	if cerr != nil {
		return cerr
	}
	digits := 0.0
	if len(args) == 2 {
		digits, cerr = toNumber(args[1])
		if cerr != nil {
			return cerr
		}
	}
	scale := math.Pow(10, math.Trunc(digits))
	return math.Round(f*scale) / scale
}

func fnIf(args []value) value {
	if len(args) < 2 || len(args) > 3 {
		return newCellError(ErrorCodeValue, "IF takes two or three arguments")
	}
	cond, cerr := toBool(args[0])
	if cerr != nil {
		return cerr
	}
	if cond {
		return args[1]
	}
	if len(args) == 3 {
		return args[2]
	}
	return false
}

func fnLen(args []value) value {
	if len(args) != 1 {
		return newCellError(ErrorCodeValue, "LEN takes one argument")
	}
	if cerr, ok := args[0].(*CellError); ok {
		return cerr
	}
	return float64(utf8.RuneCountInString(formatValue(args[0])))
}

func fnConcatenate(args []value) value {
	out := ""
	for _, a := range args {
		switch x := a.(type) {
		case *CellError:
			return x
		case []value:
			for _, inner := range x {
				if cerr, ok := inner.(*CellError); ok {
					return cerr
				}
				out += formatValue(inner)
			}
		default:
			out += formatValue(a)
		}
	}
	return out
}

// toBool coerces a value for IF conditions: booleans pass through,
// numbers are truthy when nonzero.
func toBool(v value) (bool, *CellError) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case *CellError:
		return false, x
	}
	f, cerr := toNumber(v)
	if cerr != nil {
		return false, cerr
	}
	return f != 0, nil
}
