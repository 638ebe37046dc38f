package filter

import (
	"fmt"
	"strings"
)

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// scan returns the position, kind and value of the next token. An illegal token
// carries the error message as its value.
func (l *lexer) scan() (int, Token, string) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return l.pos, tokenEOF, ""
	}

	start := l.pos
	ch := l.src[l.pos]

	switch {
	case isIdentStart(ch):
		return l.scanWord(start)
	case isDigit(ch) || (ch == '-' && isDigit(l.peek(1))):
		return l.scanNumber(start)
	case ch == '\'' || ch == '"':
		return l.scanQuoted(start, ch, tokenString, "unclosed string")
	case ch == '/':
		return l.scanQuoted(start, ch, tokenRegex, "unclosed regex")
	}

	l.pos++
	switch ch {
	case '(':
		return start, tokenLParen, "("
	case ')':
		return start, tokenRParen, ")"
	case '=':
		return start, tokenEq, "="
	case '~':
		return start, tokenMatch, "~"
	case '!':
		switch l.peek(0) {
		case '=':
			l.pos++
			return start, tokenNotEq, "!="
		case '~':
			l.pos++
			return start, tokenNotMatch, "!~"
		}
		return start, tokenIllegal, "expected = or ~ after !"
	case '<':
		if l.peek(0) == '=' {
			l.pos++
			return start, tokenLte, "<="
		}
		return start, tokenLt, "<"
	case '>':
		if l.peek(0) == '=' {
			l.pos++
			return start, tokenGte, ">="
		}
		return start, tokenGt, ">"
	}

	return start, tokenIllegal, fmt.Sprintf("unexpected character %q", ch)
}

func (l *lexer) scanWord(start int) (int, Token, string) {
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]

	switch strings.ToLower(word) {
	case "and":
		return start, tokenAnd, word
	case "or":
		return start, tokenOr, word
	case "true", "false":
		return start, tokenBool, strings.ToLower(word)
	}
	return start, tokenIdent, word
}

func (l *lexer) scanNumber(start int) (int, Token, string) {
	if l.src[l.pos] == '-' {
		l.pos++
	}
	l.skipDigits()
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.pos++
		l.skipDigits()
	}
	if isIdentPart(l.peek(0)) {
		return start, tokenIllegal, "malformed number"
	}
	return start, tokenNumber, l.src[start:l.pos]
}

// scanQuoted reads up to the closing quote. A backslash escapes the quote.
func (l *lexer) scanQuoted(start int, quote byte, tok Token, unclosed string) (int, Token, string) {
	l.pos++

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return start, tokenIllegal, unclosed
		}
		ch := l.src[l.pos]
		switch {
		case ch == '\\' && l.peek(1) == quote:
			b.WriteByte(quote)
			l.pos += 2
		case ch == quote:
			l.pos++
			return start, tok, b.String()
		default:
			b.WriteByte(ch)
			l.pos++
		}
	}
}

func (l *lexer) skipDigits() {
	for isDigit(l.peek(0)) {
		l.pos++
	}
}

// peek returns the byte n positions ahead, or 0 past the end.
func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '.'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
