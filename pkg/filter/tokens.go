package filter

type Token int

const (
	tokenIllegal Token = iota
	tokenEOF
	tokenAnd
	tokenOr
	tokenEq
	tokenNotEq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenMatch
	tokenNotMatch
	tokenLParen
	tokenRParen
	tokenString
	tokenNumber
	tokenBool
	tokenRegex
	tokenIdent
)

var tokenNames = map[Token]string{
	tokenIllegal:  "illegal",
	tokenEOF:      "end of filter",
	tokenAnd:      "and",
	tokenOr:       "or",
	tokenEq:       "=",
	tokenNotEq:    "!=",
	tokenLt:       "<",
	tokenLte:      "<=",
	tokenGt:       ">",
	tokenGte:      ">=",
	tokenMatch:    "~",
	tokenNotMatch: "!~",
	tokenLParen:   "(",
	tokenRParen:   ")",
	tokenString:   "string",
	tokenNumber:   "number",
	tokenBool:     "boolean",
	tokenRegex:    "regex",
	tokenIdent:    "identifier",
}

func (t Token) String() string {
	return tokenNames[t]
}

func (t Token) isComparison() bool {
	return t >= tokenEq && t <= tokenNotMatch
}

func (t Token) isMatch() bool {
	return t == tokenMatch || t == tokenNotMatch
}
