package engine

import (
	"errors"
	"strings"
)

// ErrInvalidReference reports a string that does not match the cell
// addressing grammar (letters followed by digits).
var ErrInvalidReference = errors.New("invalid cell reference")

// ErrorCode enumerates in-band evaluation errors. They render as
// Excel-style tokens inside the cell instead of propagating as Go
// errors across the render boundary.
type ErrorCode uint8

const (
	ErrorCodeRef   ErrorCode = iota + 1 // #REF! - invalid or unresolvable reference
	ErrorCodeDiv0                       // #DIV/0! - division by zero
	ErrorCodeValue                      // #VALUE! - operand of the wrong type
	ErrorCodeName                       // #NAME? - unknown function
	ErrorCodeCycle                      // #CYCLE! - self-referential evaluation
	ErrorCodeParse                      // #ERROR! - malformed formula
)

var errorTokens = map[ErrorCode]string{
	ErrorCodeRef:   "#REF!",
	ErrorCodeDiv0:  "#DIV/0!",
	ErrorCodeValue: "#VALUE!",
	ErrorCodeName:  "#NAME?",
	ErrorCodeCycle: "#CYCLE!",
	ErrorCodeParse: "#ERROR!",
}

// CellError is an evaluation error carried as a value. It flows through
// arithmetic unchanged, so a single bad cell poisons only the formulas
// that read it.
type CellError struct {
	Code    ErrorCode
	Message string
}

func (e *CellError) Error() string {
	return errorTokens[e.Code]
}

func newCellError(code ErrorCode, message string) *CellError {
	return &CellError{Code: code, Message: message}
}

// IsErrorToken reports whether a display value is one of the in-band
// error tokens.
func IsErrorToken(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	for _, tok := range errorTokens {
		if s == tok {
			return true
		}
	}
	return false
}
