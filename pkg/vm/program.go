package vm

import (
	"fmt"
	"strings"
)

// Opcode identifies a single VM instruction.
type Opcode uint8

const (
	OpPush Opcode = iota // push Arg (float literal)

	// Comparisons produce 0 or 1.
	OpGreater
	OpGreaterEq
	OpLess
	OpLessEq
	OpEqual
	OpNotEqual

	OpAdd
	OpSub
	OpMul
	OpDiv

	OpNot
	OpNeg

	OpJumpIfFalse // Arg: absolute target, taken when the popped value is zero
	OpJump        // Arg: absolute target
	OpCall        // Arg: function index (script function)
	OpNative      // Arg: function index (host function)
	OpReturn      // Arg: index of the returning function

	OpDrop
	OpGetGlobal // Arg: global slot
	OpSetGlobal
	OpGetLocal // Arg: offset from the frame pointer
	OpSetLocal

	OpMove   // pop distance, advance the turtle
	OpRotate // pop degrees, turn the turtle
)

var opcodeNames = [...]string{
	OpPush:        "PUSH",
	OpGreater:     "GT",
	OpGreaterEq:   "GE",
	OpLess:        "LT",
	OpLessEq:      "LE",
	OpEqual:       "EQ",
	OpNotEqual:    "NE",
	OpAdd:         "ADD",
	OpSub:         "SUB",
	OpMul:         "MUL",
	OpDiv:         "DIV",
	OpNot:         "NOT",
	OpNeg:         "NEG",
	OpJumpIfFalse: "JZ",
	OpJump:        "JMP",
	OpCall:        "CALL",
	OpNative:      "NATIVE",
	OpReturn:      "RET",
	OpDrop:        "DROP",
	OpGetGlobal:   "GETG",
	OpSetGlobal:   "SETG",
	OpGetLocal:    "GETL",
	OpSetLocal:    "SETL",
	OpMove:        "MOVE",
	OpRotate:      "ROTATE",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// hasArg reports whether the opcode carries a meaningful operand.
func (op Opcode) hasArg() bool {
	switch op {
	case OpPush, OpJumpIfFalse, OpJump, OpCall, OpNative, OpReturn,
		OpGetGlobal, OpSetGlobal, OpGetLocal, OpSetLocal:
		return true
	}
	return false
}

// IsStore reports whether the opcode consumes its value without leaving one.
func (op Opcode) IsStore() bool {
	return op == OpSetGlobal || op == OpSetLocal
}

type Op struct {
	Code Opcode
	Arg  Value
}

func (o Op) String() string {
	if o.Code.hasArg() {
		return fmt.Sprintf("%-7s %s", o.Code, o.Arg)
	}
	return o.Code.String()
}

// NativeFunc is a host function callable from script. It receives exactly
// Arity arguments.
type NativeFunc func(args []float64) (float64, error)

// Native describes a host function to pre-register before compilation.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFunc
}

// Function is a compile-time function descriptor. Frame counts every local
// slot live in the body, parameters included. Entry < 0 marks a native whose
// index in Program.Natives is -Entry-1.
type Function struct {
	Name  string
	Arity int
	Frame int
	Entry int
}

func (f Function) IsNative() bool {
	return f.Entry < 0
}

// Limits bounds every fixed-capacity table. Steps caps executed instructions;
// zero means no budget.
type Limits struct {
	Ops       int `yaml:"ops"`
	Functions int `yaml:"functions"`
	Variables int `yaml:"variables"`
	Stack     int `yaml:"stack"`
	Points    int `yaml:"points"`
	Steps     int `yaml:"steps"`
}

func DefaultLimits() Limits {
	return Limits{
		Ops:       1024,
		Functions: 1024,
		Variables: 1024,
		Stack:     1024,
		Points:    1024,
	}
}

// Program is the output of one compilation. It only grows while the compiler
// owns it and is read-only during evaluation.
type Program struct {
	Ops       []Op
	Functions []Function
	Globals   []string // name last bound to each global slot
	Natives   []NativeFunc
	Limits    Limits
}

func NewProgram(limits Limits) *Program {
	return &Program{Limits: limits}
}

// Emit appends an op and returns its address.
func (p *Program) Emit(code Opcode, arg Value) (int, error) {
	if len(p.Ops) >= p.Limits.Ops {
		return 0, ErrProgramOverflow
	}
	p.Ops = append(p.Ops, Op{Code: code, Arg: arg})
	return len(p.Ops) - 1, nil
}

// Patch retargets the jump at addr to the current end of the program.
func (p *Program) Patch(addr int) {
	p.Ops[addr].Arg = Int(len(p.Ops))
}

// Len is the address the next emitted op will get.
func (p *Program) Len() int {
	return len(p.Ops)
}

// Last returns the most recently emitted op.
func (p *Program) Last() (Op, bool) {
	if len(p.Ops) == 0 {
		return Op{}, false
	}
	return p.Ops[len(p.Ops)-1], true
}

func (p *Program) AddFunction(f Function) (int, error) {
	if len(p.Functions) >= p.Limits.Functions {
		return 0, ErrFunctionOverflow
	}
	p.Functions = append(p.Functions, f)
	return len(p.Functions) - 1, nil
}

func (p *Program) AddNative(n Native) (int, error) {
	idx, err := p.AddFunction(Function{
		Name:  n.Name,
		Arity: n.Arity,
		Frame: n.Arity,
		Entry: -len(p.Natives) - 1,
	})
	if err != nil {
		return 0, err
	}
	p.Natives = append(p.Natives, n.Fn)
	return idx, nil
}

func (p *Program) FindFunction(name string) (int, bool) {
	for i, f := range p.Functions {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// BindGlobal records name as the current owner of slot, growing the slot list.
func (p *Program) BindGlobal(slot int, name string) {
	for len(p.Globals) <= slot {
		p.Globals = append(p.Globals, "")
	}
	p.Globals[slot] = name
}

// String returns a disassembly listing of the program.
func (p *Program) String() string {
	entries := make(map[int]string)
	for _, f := range p.Functions {
		if !f.IsNative() {
			entries[f.Entry] = f.Name
		}
	}

	var sb strings.Builder
	for i, op := range p.Ops {
		if name, ok := entries[i]; ok {
			fmt.Fprintf(&sb, "%s:\n", name)
		}
		fmt.Fprintf(&sb, "  %04d  %s\n", i, op)
	}

	if len(p.Functions) > 0 {
		sb.WriteString("Functions:\n")
		for i, f := range p.Functions {
			if f.IsNative() {
				fmt.Fprintf(&sb, "  %3d  %-16s arity %d  native\n", i, f.Name, f.Arity)
				continue
			}
			fmt.Fprintf(&sb, "  %3d  %-16s arity %d  frame %d  entry %04d\n", i, f.Name, f.Arity, f.Frame, f.Entry)
		}
	}
	if len(p.Globals) > 0 {
		sb.WriteString("Globals:\n")
		for i, name := range p.Globals {
			fmt.Fprintf(&sb, "  %3d  %s\n", i, name)
		}
	}
	return sb.String()
}
