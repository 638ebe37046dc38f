package filter

import (
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

type Expression interface {
	String() string
	toSql(fields Fields) (sq.Sqlizer, error)
}

type logicalExpr struct {
	op    Token
	left  Expression
	right Expression
}

func (e *logicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.left, e.op, e.right)
}

func (e *logicalExpr) toSql(fields Fields) (sq.Sqlizer, error) {
	left, err := e.left.toSql(fields)
	if err != nil {
		return nil, err
	}
	right, err := e.right.toSql(fields)
	if err != nil {
		return nil, err
	}
	if e.op == tokenOr {
		return sq.Or{left, right}, nil
	}
	return sq.And{left, right}, nil
}

type comparisonExpr struct {
	field string
	pos   int
	op    Token
	value literal
}

func (e *comparisonExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.field, e.op, e.value)
}

func (e *comparisonExpr) toSql(fields Fields) (sq.Sqlizer, error) {
	col, ok := fields.column(e.field)
	if !ok {
		return nil, &ParseError{
			Position: e.pos,
			Message:  fmt.Sprintf("unknown field %q, expected one of %s", e.field, fields.names()),
		}
	}

	v := e.value.value
	switch e.op {
	case tokenEq:
		return sq.Eq{col: v}, nil
	case tokenNotEq:
		return sq.NotEq{col: v}, nil
	case tokenLt:
		return sq.Lt{col: v}, nil
	case tokenLte:
		return sq.LtOrEq{col: v}, nil
	case tokenGt:
		return sq.Gt{col: v}, nil
	case tokenGte:
		return sq.GtOrEq{col: v}, nil
	case tokenMatch:
		return sq.Expr(fmt.Sprintf("regexp_matches(%s, ?)", col), v), nil
	case tokenNotMatch:
		return sq.Expr(fmt.Sprintf("NOT regexp_matches(%s, ?)", col), v), nil
	}
	return nil, &ParseError{Position: e.pos, Message: fmt.Sprintf("unsupported operator %s", e.op)}
}

// literal is a typed value ready to be bound as a query argument.
type literal struct {
	kind  Token
	value any
}

func (l literal) String() string {
	switch l.kind {
	case tokenString:
		return strconv.Quote(l.value.(string))
	case tokenRegex:
		return "/" + l.value.(string) + "/"
	default:
		return fmt.Sprint(l.value)
	}
}
