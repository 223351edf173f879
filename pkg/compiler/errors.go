package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a compile-time diagnostic.
type ErrorKind int

const (
	Lexical  ErrorKind = iota // invalid character
	Syntax                    // unexpected token
	Semantic                  // name resolution and statement placement
	Capacity                  // a fixed-size table is full
)

func (k ErrorKind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Capacity:
		return "capacity error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single diagnostic a failed compilation produces.
type Error struct {
	Kind    ErrorKind
	Line    int
	Msg     string
	Snippet string // trimmed source line, empty when unavailable
	Err     error  // underlying capacity error, if any
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: line %d: %s", e.Kind, e.Line, e.Msg)
	if e.Snippet != "" {
		fmt.Fprintf(&sb, "\n  |> %s", e.Snippet)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
