package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type ParseError struct {
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter error at position %d: %s", e.Position, e.Message)
}

// Fields maps the names a filter may use to table columns.
type Fields map[string]string

func (f Fields) column(name string) (string, bool) {
	col, ok := f[strings.ToLower(name)]
	return col, ok
}

func (f Fields) names() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Parse parses a filter expression.
func Parse(src string) (Expression, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok == tokenEOF {
		return nil, p.errorf("empty filter")
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.tok != tokenEOF {
		return nil, p.errorf("unexpected %s", p.describe())
	}
	return expr, nil
}

// ToSql turns a parsed expression into a condition over the columns of fields.
func ToSql(expr Expression, fields Fields) (sq.Sqlizer, error) {
	return expr.toSql(fields)
}

// Compile parses src and turns it into a condition over the columns of fields.
func Compile(src string, fields Fields) (sq.Sqlizer, error) {
	expr, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return ToSql(expr, fields)
}

type parser struct {
	lex *lexer
	pos int
	tok Token
	val string
}

func (p *parser) next() error {
	p.pos, p.tok, p.val = p.lex.scan()
	if p.tok == tokenIllegal {
		return &ParseError{Position: p.pos, Message: p.val}
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Position: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) describe() string {
	switch p.tok {
	case tokenEOF:
		return p.tok.String()
	case tokenIdent, tokenNumber, tokenBool:
		return fmt.Sprintf("%s %q", p.tok, p.val)
	}
	return fmt.Sprintf("%q", p.tok.String())
}

func (p *parser) expression() (Expression, error) {
	return p.binary(tokenOr, p.term)
}

func (p *parser) term() (Expression, error) {
	return p.binary(tokenAnd, p.factor)
}

// binary parses operand ( op operand )*, folding to the left.
func (p *parser) binary(op Token, operand func() (Expression, error)) (Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.tok == op {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) factor() (Expression, error) {
	if p.tok != tokenLParen {
		return p.comparison()
	}

	if err := p.next(); err != nil {
		return nil, err
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.tok != tokenRParen {
		return nil, p.errorf("expected \")\", got %s", p.describe())
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) comparison() (Expression, error) {
	if p.tok != tokenIdent {
		return nil, p.errorf("expected field name, got %s", p.describe())
	}
	expr := &comparisonExpr{field: p.val, pos: p.pos}
	if err := p.next(); err != nil {
		return nil, err
	}

	if !p.tok.isComparison() {
		return nil, p.errorf("expected operator after %q, got %s", expr.field, p.describe())
	}
	expr.op = p.tok
	if err := p.next(); err != nil {
		return nil, err
	}

	value, err := p.literal(expr.op)
	if err != nil {
		return nil, err
	}
	expr.value = value
	return expr, p.next()
}

func (p *parser) literal(op Token) (literal, error) {
	if op.isMatch() {
		if p.tok != tokenRegex {
			return literal{}, p.errorf("operator %s expects a regex, got %s", op, p.describe())
		}
		if _, err := regexp.Compile(p.val); err != nil {
			return literal{}, p.errorf("invalid regex: %v", err)
		}
		return literal{kind: tokenRegex, value: p.val}, nil
	}

	switch p.tok {
	case tokenString:
		return literal{kind: tokenString, value: p.val}, nil
	case tokenBool:
		return literal{kind: tokenBool, value: p.val == "true"}, nil
	case tokenNumber:
		if i, err := strconv.ParseInt(p.val, 10, 64); err == nil {
			return literal{kind: tokenNumber, value: i}, nil
		}
		f, err := strconv.ParseFloat(p.val, 64)
		if err != nil {
			return literal{}, p.errorf("invalid number %q", p.val)
		}
		return literal{kind: tokenNumber, value: f}, nil
	case tokenRegex:
		return literal{}, p.errorf("regex is only allowed with ~ and !~")
	}
	return literal{}, p.errorf("expected value, got %s", p.describe())
}
