package engine

import (
	"fmt"
	"strconv"
)

func newParseError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// node is a parsed expression. eval never returns a Go error: failures
// become *CellError values so they render in-band.
type node interface {
	eval(env *env) value
}

type numberNode struct{ v float64 }

type stringNode struct{ v string }

type boolNode struct{ v bool }

type cellNode struct{ ref string }

type rangeNode struct{ ref string }

type unaryNode struct {
	op      string // "+" or "-"
	operand node
}

type percentNode struct{ operand node }

type binaryNode struct {
	op          string
	left, right node
}

type callNode struct {
	name string
	args []node
}

type parser struct {
	toks []token
	pos  int
}

// parse turns a formula body into an AST. The input must already have
// its leading "=" stripped.
func parse(body string) (node, error) {
	toks, err := lex(body)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.current().typ != tokenEOF {
		return nil, newParseError("unexpected token %q", p.current().val)
	}
	return n, nil
}

func (p *parser) current() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

// Precedence, loosest first: comparison, concatenation, additive,
// multiplicative, power, unary, postfix percent, primary.

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.current()
		if tok.typ != tokenOp {
			return left, nil
		}
		switch tok.val {
		case "=", "<>", "<", "<=", ">", ">=":
			p.advance()
			right, err := p.parseConcat()
			if err != nil {
				return nil, err
			}
			left = &binaryNode{op: tok.val, left: left, right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseConcat() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.current().typ == tokenOp && p.current().val == "&" {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.current().typ == tokenOp && (p.current().val == "+" || p.current().val == "-") {
		op := p.advance().val
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.current().typ == tokenOp && (p.current().val == "*" || p.current().val == "/") {
		op := p.advance().val
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parsePower() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	// Right-associative.
	if p.current().typ == tokenOp && p.current().val == "^" {
		p.advance()
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: "^", left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.current().typ == tokenOp && (p.current().val == "+" || p.current().val == "-") {
		op := p.advance().val
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.current().typ == tokenOp && p.current().val == "%" {
		p.advance()
		n = &percentNode{operand: n}
	}
	return n, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.current()
	switch tok.typ {
	case tokenNumber:
		p.advance()
		f, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, newParseError("bad number %q", tok.val)
		}
		return &numberNode{v: f}, nil
	case tokenString:
		p.advance()
		return &stringNode{v: tok.val}, nil
	case tokenBool:
		p.advance()
		return &boolNode{v: tok.val == "TRUE"}, nil
	case tokenCell:
		p.advance()
		return &cellNode{ref: tok.val}, nil
	case tokenRange:
		p.advance()
		return &rangeNode{ref: tok.val}, nil
	case tokenFunc:
		return p.parseCall()
	case tokenLParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.current().typ != tokenRParen {
			return nil, newParseError("missing closing parenthesis")
		}
		p.advance()
		return inner, nil
	case tokenIdent:
		return nil, newParseError("unknown identifier %q", tok.val)
	case tokenEOF:
		return nil, newParseError("unexpected end of formula")
	}
	return nil, newParseError("unexpected token %q", tok.val)
}

func (p *parser) parseCall() (node, error) {
	name := p.advance().val
	if p.current().typ != tokenLParen {
		return nil, newParseError("expected '(' after %s", name)
	}
	p.advance()

	call := &callNode{name: name}
	if p.current().typ == tokenRParen {
		p.advance()
		return call, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		switch p.current().typ {
		case tokenComma:
			p.advance()
		case tokenRParen:
			p.advance()
			return call, nil
		default:
			return nil, newParseError("expected ',' or ')' in %s arguments", name)
		}
	}
}
