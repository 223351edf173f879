package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	NUMBER     // decimal literal, optionally fractional
	IDENTIFIER // variable / function name

	// Comparison operators
	GREATER    // >
	GREATER_EQ // >=
	LESS       // <
	LESS_EQ    // <=
	EQUALS     // ==
	NOT_EQ     // !=
	NOT        // !

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	ASSIGN // =
	COMMA  // ,

	// Paired delimiters
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }

	// Keywords
	IF     // "if"
	ELSE   // "else"
	WHILE  // "while"
	FN     // "fn"
	RETURN // "return"
	MOVE   // "move"
	ROTATE // "rotate"
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	GREATER:    "GREATER",
	GREATER_EQ: "GREATER_EQ",
	LESS:       "LESS",
	LESS_EQ:    "LESS_EQ",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	NOT:        "NOT",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	ASSIGN:     "ASSIGN",
	COMMA:      "COMMA",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	IF:         "IF",
	ELSE:       "ELSE",
	WHILE:      "WHILE",
	FN:         "FN",
	RETURN:     "RETURN",
	MOVE:       "MOVE",
	ROTATE:     "ROTATE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Describe returns the wording used in diagnostics, e.g. "'{'" or "end of file".
func (tt TokenType) Describe() string {
	switch tt {
	case EOF:
		return "end of file"
	case NUMBER:
		return "number"
	case IDENTIFIER:
		return "identifier"
	}
	for text, kw := range keywords {
		if kw == tt {
			return "'" + text + "'"
		}
	}
	if text, ok := punctuation[tt]; ok {
		return "'" + text + "'"
	}
	return tt.String()
}

var punctuation = map[TokenType]string{
	GREATER:    ">",
	GREATER_EQ: ">=",
	LESS:       "<",
	LESS_EQ:    "<=",
	EQUALS:     "==",
	NOT_EQ:     "!=",
	NOT:        "!",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	ASSIGN:     "=",
	COMMA:      ",",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
