package compiler

import (
	"fmt"
	"strings"

	"gopen/pkg/vm"
)

// Variable is a compile-time variable descriptor. Local variables live in the
// current call frame; globals live in the program's global slots.
type Variable struct {
	Name  string
	Local bool
}

// SymbolTable is a flat, vector-backed variable table with scope checkpoints.
// Leaving a block truncates the table back to its checkpoint, so names
// declared inside become invisible while their slots may be reused.
// Function descriptors are stored directly in the program being built.
type SymbolTable struct {
	prog  *vm.Program
	vars  []Variable
	limit int

	// Frame tracking for the function being compiled.
	inFunction bool
	base       int // table index of the function's first parameter
	high       int // high-water mark of vars since EnterFunction
}

func NewSymbolTable(prog *vm.Program) *SymbolTable {
	return &SymbolTable{prog: prog, limit: prog.Limits.Variables}
}

// Checkpoint returns the current table size for a later Restore.
func (s *SymbolTable) Checkpoint() int {
	return len(s.vars)
}

// Restore closes a scope opened at mark, recording how many slots it used.
func (s *SymbolTable) Restore(mark int) {
	if len(s.vars) > s.high {
		s.high = len(s.vars)
	}
	s.vars = s.vars[:mark]
}

func (s *SymbolTable) EnterFunction() {
	s.inFunction = true
	s.base = len(s.vars)
	s.high = len(s.vars)
}

// ExitFunction drops the function's parameters and returns its frame size.
func (s *SymbolTable) ExitFunction() int {
	s.Restore(s.base)
	frame := s.high - s.base
	s.inFunction = false
	return frame
}

func (s *SymbolTable) InFunction() bool {
	return s.inFunction
}

// Declare appends name, local when inside a function body, and returns its
// table index.
func (s *SymbolTable) Declare(name string) (int, error) {
	if len(s.vars) >= s.limit {
		return 0, vm.ErrVariableOverflow
	}
	s.vars = append(s.vars, Variable{Name: name, Local: s.inFunction})
	idx := len(s.vars) - 1
	if !s.inFunction {
		s.prog.BindGlobal(idx, name)
	}
	return idx, nil
}

// Lookup finds the newest visible declaration of name.
func (s *SymbolTable) Lookup(name string) (int, Variable, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].Name == name {
			return i, s.vars[i], true
		}
	}
	return 0, Variable{}, false
}

// Address returns the operand for variable idx: a frame offset for locals,
// the absolute slot for globals.
func (s *SymbolTable) Address(idx int) int {
	if s.vars[idx].Local {
		return idx - s.base
	}
	return idx
}

// LookupFunction resolves name in the program's function table.
func (s *SymbolTable) LookupFunction(name string) (int, vm.Function, bool) {
	idx, ok := s.prog.FindFunction(name)
	if !ok {
		return 0, vm.Function{}, false
	}
	return idx, s.prog.Functions[idx], true
}

// String returns a dump of the visible variables.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.vars) == 0 {
		sb.WriteString("Variables: (empty)\n")
		return sb.String()
	}
	sb.WriteString("Variables:\n")
	for i, v := range s.vars {
		scope := "global"
		if v.Local {
			scope = "local"
		}
		fmt.Fprintf(&sb, "  %3d  %-20s  %s (addr %d)\n", i, v.Name, scope, s.Address(i))
	}
	return sb.String()
}
