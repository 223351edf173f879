package compiler

import (
	"fmt"
	"strings"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"fn":     FN,
	"return": RETURN,
	"move":   MOVE,
	"rotate": ROTATE,
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Lexer hands out one token at a time and can hold one token of lookahead.
type Lexer struct {
	src   string
	pos   int // index of the next byte to consume
	line  int // current 1-based source line
	lines []string

	buffered bool
	ahead    Token
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, lines: strings.Split(src, "\n")}
}

// errorf builds a diagnostic pointing at line.
func (l *Lexer) errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	e := &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
	if idx := line - 1; idx >= 0 && idx < len(l.lines) {
		e.Snippet = strings.TrimSpace(l.lines[idx])
	}
	return e
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one byte, counting newlines.
func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
	}
	return ch
}

// match consumes the next byte only if it equals ch.
func (l *Lexer) match(ch byte) bool {
	if l.pos < len(l.src) && l.src[l.pos] == ch {
		l.advance()
		return true
	}
	return false
}

// skipTrivia discards blanks and '#' comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '#':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipTrivia()

	line := l.line
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: line}, nil
	}

	ch := l.advance()
	tok := func(tt TokenType) (Token, error) {
		return Token{Type: tt, Lexeme: l.src[start:l.pos], Line: line}, nil
	}

	switch ch {
	case '!':
		if l.match('=') {
			return tok(NOT_EQ)
		}
		return tok(NOT)
	case '>':
		if l.match('=') {
			return tok(GREATER_EQ)
		}
		return tok(GREATER)
	case '<':
		if l.match('=') {
			return tok(LESS_EQ)
		}
		return tok(LESS)
	case '=':
		if l.match('=') { // lookahead: distinguish = vs ==
			return tok(EQUALS)
		}
		return tok(ASSIGN)
	case '+':
		return tok(PLUS)
	case '-':
		return tok(MINUS)
	case '*':
		return tok(STAR)
	case '/':
		return tok(SLASH)
	case ',':
		return tok(COMMA)
	case '(':
		return tok(LPAREN)
	case ')':
		return tok(RPAREN)
	case '{':
		return tok(LBRACE)
	case '}':
		return tok(RBRACE)
	}

	if isDigit(ch) {
		for isDigit(l.peekByte()) {
			l.advance()
		}
		if l.match('.') {
			for isDigit(l.peekByte()) {
				l.advance()
			}
		}
		return tok(NUMBER)
	}

	if isIdentStart(ch) {
		for c := l.peekByte(); isIdentStart(c) || isDigit(c); c = l.peekByte() {
			l.advance()
		}
		lexeme := l.src[start:l.pos]
		if kw, ok := keywords[lexeme]; ok {
			return Token{Type: kw, Lexeme: lexeme, Line: line}, nil
		}
		return Token{Type: IDENTIFIER, Lexeme: lexeme, Line: line}, nil
	}

	return Token{}, l.errorf(Lexical, line, "invalid character %q", rune(ch))
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.buffered {
		l.buffered = false
		return l.ahead, nil
	}
	return l.scan()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if !l.buffered {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.ahead = tok
		l.buffered = true
	}
	return l.ahead, nil
}

// Expect consumes the next token and fails unless it has type tt.
func (l *Lexer) Expect(tt TokenType) (Token, error) {
	tok, err := l.Next()
	if err != nil {
		return tok, err
	}
	if tok.Type != tt {
		return tok, l.errorf(Syntax, tok.Line, "expected %s, found %s", tt.Describe(), tok.Type.Describe())
	}
	return tok, nil
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It stops at the first invalid character.
func Lex(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
