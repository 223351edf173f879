package vm

import (
	"errors"
	"fmt"
)

var (
	ErrProgramOverflow  = errors.New("program overflow")
	ErrFunctionOverflow = errors.New("functions overflow")
	ErrVariableOverflow = errors.New("variables overflow")

	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrPointOverflow  = errors.New("point buffer overflow")
	ErrBadOperand     = errors.New("operand out of range")
	ErrTypeMismatch   = errors.New("value has the wrong numeric variant")
	ErrStepLimit      = errors.New("instruction budget exhausted")
)

// RuntimeError reports the first failure of an evaluation pass together with
// the instruction that triggered it.
type RuntimeError struct {
	PC  int
	Op  Opcode
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at op %d (%s): %v", e.PC, e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
