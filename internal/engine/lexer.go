package engine

import "strings"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenString
	tokenBool
	tokenCell
	tokenRange
	tokenFunc
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	typ tokenType
	val string
	pos int
}

type lexer struct {
	input []rune
	pos   int
}

// lex tokenizes a formula body (the text after the leading "=").
// Cell and range tokens carry any sheet qualifier in their value, so
// the parser never has to reassemble "Sheet!A1" from pieces.
func lex(input string) ([]token, error) {
	l := &lexer{input: []rune(input)}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.typ == tokenEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '"':
		return l.scanString()
	case ch == '\'':
		return l.scanQuotedSheetRef()
	case isDigit(ch) || (ch == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.scanNumber(), nil
	case isAlphaRune(ch) || ch == '_':
		return l.scanWord()
	}

	switch ch {
	case '(':
		l.pos++
		return token{typ: tokenLParen, val: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{typ: tokenRParen, val: ")", pos: start}, nil
	case ',':
		l.pos++
		return token{typ: tokenComma, val: ",", pos: start}, nil
	case '+', '-', '*', '/', '^', '&', '%', '=':
		l.pos++
		return token{typ: tokenOp, val: string(ch), pos: start}, nil
	case '<':
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '=' || l.input[l.pos] == '>') {
			l.pos++
			return token{typ: tokenOp, val: string(l.input[start:l.pos]), pos: start}, nil
		}
		return token{typ: tokenOp, val: "<", pos: start}, nil
	case '>':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			l.pos++
			return token{typ: tokenOp, val: ">=", pos: start}, nil
		}
		return token{typ: tokenOp, val: ">", pos: start}, nil
	}

	return token{}, newParseError("unexpected character %q", string(ch))
}

// scanNumber consumes an integer/decimal literal with an optional
// exponent part.
func (l *lexer) scanNumber() token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	return token{typ: tokenNumber, val: string(l.input[start:l.pos]), pos: start}
}

// scanString consumes a double-quoted literal; "" escapes a quote.
func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++
	var out []rune
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				out = append(out, '"')
				l.pos += 2
				continue
			}
			l.pos++
			return token{typ: tokenString, val: string(out), pos: start}, nil
		}
		out = append(out, ch)
		l.pos++
	}
	return token{}, newParseError("unclosed string literal")
}

// scanWord consumes letters/digits/underscores and classifies the
// result: boolean, cell, range, sheet-qualified reference, function
// call, or bare identifier.
func (l *lexer) scanWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && (isAlnumRune(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
	word := string(l.input[start:l.pos])
	upper := strings.ToUpper(word)

	if upper == "TRUE" || upper == "FALSE" {
		return token{typ: tokenBool, val: upper, pos: start}, nil
	}

	// Sheet-qualified reference: word followed by "!".
	if l.pos < len(l.input) && l.input[l.pos] == '!' {
		l.pos++
		return l.scanSheetRef(word, start)
	}

	if isCellWord(word) {
		if l.pos < len(l.input) && l.input[l.pos] == ':' {
			save := l.pos
			l.pos++
			second := l.scanCellWord()
			if isCellWord(second) {
				return token{typ: tokenRange, val: word + ":" + second, pos: start}, nil
			}
			l.pos = save
		}
		return token{typ: tokenCell, val: word, pos: start}, nil
	}

	if l.pos < len(l.input) && l.input[l.pos] == '(' {
		return token{typ: tokenFunc, val: upper, pos: start}, nil
	}
	return token{typ: tokenIdent, val: word, pos: start}, nil
}

// scanQuotedSheetRef handles 'Sheet Name'!A1 style references.
func (l *lexer) scanQuotedSheetRef() (token, error) {
	start := l.pos
	l.pos++
	nameStart := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{}, newParseError("unclosed sheet name")
	}
	name := string(l.input[nameStart:l.pos])
	l.pos++
	if l.pos >= len(l.input) || l.input[l.pos] != '!' {
		return token{}, newParseError("expected '!' after sheet name")
	}
	l.pos++
	tok, err := l.scanSheetRef(name, start)
	if err != nil {
		return token{}, err
	}
	return tok, nil
}

// scanSheetRef scans the cell or range part after "Sheet!". The sheet
// name stays embedded in the token value.
func (l *lexer) scanSheetRef(sheet string, start int) (token, error) {
	cell := l.scanCellWord()
	if !isCellWord(cell) {
		return token{}, newParseError("invalid cell reference after sheet %q", sheet)
	}
	if l.pos < len(l.input) && l.input[l.pos] == ':' {
		save := l.pos
		l.pos++
		second := l.scanCellWord()
		if isCellWord(second) {
			return token{typ: tokenRange, val: sheet + "!" + cell + ":" + second, pos: start}, nil
		}
		l.pos = save
	}
	return token{typ: tokenCell, val: sheet + "!" + cell, pos: start}, nil
}

func (l *lexer) scanCellWord() string {
	start := l.pos
	for l.pos < len(l.input) && isAlnumRune(l.input[l.pos]) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}

// isCellWord reports whether a word is letters followed by digits.
func isCellWord(s string) bool {
	_, _, err := ParseCellID(s)
	return err == nil
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlphaRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAlnumRune(r rune) bool { return isAlphaRune(r) || isDigit(r) }
