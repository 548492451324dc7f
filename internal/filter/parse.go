package filter

import (
	"fmt"
	"strings"
)

const opHas = "has"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse compiles a predicate into an Expression. Errors name the offending
// token and its byte offset so the caller can surface them verbatim.
func Parse(input string) (*Expression, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
	return &Expression{root: root}, nil
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case c == ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case c == '\'' || c == '"':
		return l.scanString(c)
	case c == '=':
		l.pos++
		return token{tokOp, "=", start}, nil
	case c == '!':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{tokOp, "!=", start}, nil
		}
		return token{}, fmt.Errorf("unexpected %q at offset %d", string(c), start)
	case c == '<' || c == '>':
		op := string(c)
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '=' {
			op += "="
			l.pos++
		}
		return token{tokOp, op, start}, nil
	case isWordByte(c):
		for l.pos < len(l.input) && isWordByte(l.input[l.pos]) {
			l.pos++
		}
		return token{tokWord, l.input[start:l.pos], start}, nil
	}
	return token{}, fmt.Errorf("unexpected %q at offset %d", string(c), start)
}

// scanString reads a quoted literal. No escape sequences; a value containing
// one quote style can be wrapped in the other.
func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) {
		if l.input[l.pos] == quote {
			text := l.input[start+1 : l.pos]
			l.pos++
			return token{tokString, text, start}, nil
		}
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) keyword(word string) bool {
	return p.tok.kind == tokWord && strings.EqualFold(p.tok.text, word)
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.keyword("NOT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{inner: inner}, nil
	}
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at offset %d, got %q", p.tok.pos, p.tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseCond()
}

func (p *parser) parseCond() (node, error) {
	if p.tok.kind != tokWord {
		return nil, fmt.Errorf("expected field name at offset %d, got %q", p.tok.pos, p.tok.text)
	}
	field := strings.ToLower(p.tok.text)
	if !validField(field) {
		return nil, fmt.Errorf("unknown field %q (valid fields: %s)",
			p.tok.text, strings.Join(Fields, ", "))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var op string
	switch {
	case p.tok.kind == tokOp:
		op = p.tok.text
	case p.keyword("HAS"):
		op = opHas
	default:
		return nil, fmt.Errorf("expected operator after %q at offset %d, got %q",
			field, p.tok.pos, p.tok.text)
	}
	if field == "tags" && op != opHas {
		return nil, fmt.Errorf("operator %q not valid for tags (use HAS)", op)
	}
	if op == opHas && field != "tags" {
		return nil, fmt.Errorf("HAS only applies to tags, not %q", field)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.kind != tokWord && p.tok.kind != tokString {
		return nil, fmt.Errorf("expected value after operator at offset %d, got %q",
			p.tok.pos, p.tok.text)
	}
	value := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &condNode{field: field, op: op, value: value}, nil
}

func validField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}
