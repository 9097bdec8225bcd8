// Package sqlexpr provides the expression tree, parser, and renderer used by
// catalog metadata: partition expressions and distribution keys.
//
// Column references are a closed variant that is bound either to a display
// name or to a stable column identifier, never both. Rendering is a pure
// function of the tree and an explicit leaf policy, so the same tree can be
// written as user-facing SQL or as rename-invariant identifier text.
package sqlexpr

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

// TOKEN_EOF and friends enumerate all token types produced by the lexer.
const (
	TOKEN_EOF     TokenType = iota // end of input
	TOKEN_ILLEGAL                  // unexpected character

	TOKEN_IDENT  // identifier or `quoted identifier`
	TOKEN_NUMBER // 123, 45.67, 1e10
	TOKEN_STRING // 'hello' or "hello"

	TOKEN_PLUS     // +
	TOKEN_MINUS    // -
	TOKEN_STAR     // *
	TOKEN_SLASH    // /
	TOKEN_MOD      // %
	TOKEN_DPIPE    // ||
	TOKEN_EQ       // =
	TOKEN_NE       // != or <>
	TOKEN_LT       // <
	TOKEN_GT       // >
	TOKEN_LE       // <=
	TOKEN_GE       // >=
	TOKEN_DOT      // .
	TOKEN_COMMA    // ,
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_AMP      // &
	TOKEN_PIPE     // |
	TOKEN_CARET    // ^
	TOKEN_TILDE    // ~
	TOKEN_NULLSAFE // <=>

	// TOKEN_AND and below are SQL keywords (alphabetical).
	TOKEN_AND
	TOKEN_AS
	TOKEN_BETWEEN
	TOKEN_CASE
	TOKEN_CAST
	TOKEN_DISTINCT
	TOKEN_DIV
	TOKEN_ELSE
	TOKEN_END
	TOKEN_FALSE
	TOKEN_IN
	TOKEN_INTERVAL
	TOKEN_IS
	TOKEN_LIKE
	TOKEN_NOT
	TOKEN_NULL
	TOKEN_OR
	TOKEN_REGEXP
	TOKEN_THEN
	TOKEN_TRUE
	TOKEN_WHEN
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_IDENT:   "IDENT",
	TOKEN_NUMBER:  "NUMBER",
	TOKEN_STRING:  "STRING",

	TOKEN_PLUS:     "+",
	TOKEN_MINUS:    "-",
	TOKEN_STAR:     "*",
	TOKEN_SLASH:    "/",
	TOKEN_MOD:      "%",
	TOKEN_DPIPE:    "||",
	TOKEN_EQ:       "=",
	TOKEN_NE:       "!=",
	TOKEN_LT:       "<",
	TOKEN_GT:       ">",
	TOKEN_LE:       "<=",
	TOKEN_GE:       ">=",
	TOKEN_DOT:      ".",
	TOKEN_COMMA:    ",",
	TOKEN_LPAREN:   "(",
	TOKEN_RPAREN:   ")",
	TOKEN_AMP:      "&",
	TOKEN_PIPE:     "|",
	TOKEN_CARET:    "^",
	TOKEN_TILDE:    "~",
	TOKEN_NULLSAFE: "<=>",

	TOKEN_AND:      "AND",
	TOKEN_AS:       "AS",
	TOKEN_BETWEEN:  "BETWEEN",
	TOKEN_CASE:     "CASE",
	TOKEN_CAST:     "CAST",
	TOKEN_DISTINCT: "DISTINCT",
	TOKEN_DIV:      "DIV",
	TOKEN_ELSE:     "ELSE",
	TOKEN_END:      "END",
	TOKEN_FALSE:    "FALSE",
	TOKEN_IN:       "IN",
	TOKEN_INTERVAL: "INTERVAL",
	TOKEN_IS:       "IS",
	TOKEN_LIKE:     "LIKE",
	TOKEN_NOT:      "NOT",
	TOKEN_NULL:     "NULL",
	TOKEN_OR:       "OR",
	TOKEN_REGEXP:   "REGEXP",
	TOKEN_THEN:     "THEN",
	TOKEN_TRUE:     "TRUE",
	TOKEN_WHEN:     "WHEN",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"and":      TOKEN_AND,
	"as":       TOKEN_AS,
	"between":  TOKEN_BETWEEN,
	"case":     TOKEN_CASE,
	"cast":     TOKEN_CAST,
	"distinct": TOKEN_DISTINCT,
	"div":      TOKEN_DIV,
	"else":     TOKEN_ELSE,
	"end":      TOKEN_END,
	"false":    TOKEN_FALSE,
	"in":       TOKEN_IN,
	"interval": TOKEN_INTERVAL,
	"is":       TOKEN_IS,
	"like":     TOKEN_LIKE,
	"not":      TOKEN_NOT,
	"null":     TOKEN_NULL,
	"or":       TOKEN_OR,
	"regexp":   TOKEN_REGEXP,
	"then":     TOKEN_THEN,
	"true":     TOKEN_TRUE,
	"when":     TOKEN_WHEN,
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool // true for `backquoted` identifiers
}

// lookupKeyword returns the keyword token type for a lowercase identifier,
// or TOKEN_IDENT if it is not a keyword.
func lookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}

// Precedence constants for operator precedence parsing (Pratt parser).
const (
	PrecedenceNone       = 0
	PrecedenceOr         = 1
	PrecedenceAnd        = 2
	PrecedenceNot        = 3
	PrecedenceComparison = 4 // =, !=, <, >, <=, >=, <=>, LIKE, IN, BETWEEN, IS
	PrecedenceBitOr      = 5 // |
	PrecedenceBitAnd     = 6 // &
	PrecedenceAddition   = 7 // +, -, ||
	PrecedenceMultiply   = 8 // *, /, %, DIV
	PrecedenceBitXor     = 9 // ^
	PrecedenceUnary      = 10
)
