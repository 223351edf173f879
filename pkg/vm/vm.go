package vm

import "fmt"

// Machine evaluates a Program on an operand stack. Calls and returns are
// handled by the instruction loop itself, so script recursion depth is bounded
// by the stack capacity and never by the Go call stack.
type Machine struct {
	Turtle *Turtle

	limits  Limits
	prog    *Program
	stack   []Value
	fp      int
	globals []Value
	steps   int
}

func NewMachine(limits Limits) *Machine {
	return &Machine{
		Turtle: NewTurtle(limits.Points),
		limits: limits,
		stack:  make([]Value, 0, limits.Stack),
	}
}

// Points returns the turtle's point buffer. The slice is owned by the machine.
func (m *Machine) Points() []Point {
	return m.Turtle.Points
}

// StackDepth is the number of values currently on the operand stack.
func (m *Machine) StackDepth() int {
	return len(m.stack)
}

// Global returns the value of the global last bound to name.
func (m *Machine) Global(name string) (Value, bool) {
	if m.prog == nil {
		return Value{}, false
	}
	for i := len(m.prog.Globals) - 1; i >= 0; i-- {
		if m.prog.Globals[i] == name && i < len(m.globals) {
			return m.globals[i], true
		}
	}
	return Value{}, false
}

func (m *Machine) reset(prog *Program) {
	m.prog = prog
	m.stack = m.stack[:0]
	m.fp = 0
	m.steps = 0
	m.globals = make([]Value, len(prog.Globals))
	for i := range m.globals {
		m.globals[i] = Float(0)
	}
	m.Turtle.Reset()
}

func (m *Machine) push(v Value) error {
	if len(m.stack) >= m.limits.Stack {
		return ErrStackOverflow
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *Machine) pop() (Value, error) {
	if len(m.stack) == 0 {
		return Value{}, ErrStackUnderflow
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) popFloat() (float64, error) {
	v, err := m.pop()
	if err != nil {
		return 0, err
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, ErrTypeMismatch
	}
	return f, nil
}

func (m *Machine) popInt() (int, error) {
	v, err := m.pop()
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, ErrTypeMismatch
	}
	return i, nil
}

// operand decodes an int operand and checks it against [0, limit).
func operand(op Op, limit int) (int, error) {
	i, ok := op.Arg.AsInt()
	if !ok {
		return 0, ErrTypeMismatch
	}
	if i < 0 || i >= limit {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrBadOperand, i, limit)
	}
	return i, nil
}

func (m *Machine) binary(fn func(a, b float64) Value) error {
	b, err := m.popFloat()
	if err != nil {
		return err
	}
	a, err := m.popFloat()
	if err != nil {
		return err
	}
	return m.push(fn(a, b))
}

func (m *Machine) unary(fn func(a float64) float64) error {
	a, err := m.popFloat()
	if err != nil {
		return err
	}
	return m.push(Float(fn(a)))
}

// Run evaluates prog from its first op. The stack, globals and turtle are
// reset first. On failure the turtle keeps every point recorded before the
// failing op.
func (m *Machine) Run(prog *Program) error {
	m.reset(prog)

	for i := 0; i < len(prog.Ops); i++ {
		if m.limits.Steps > 0 {
			m.steps++
			if m.steps > m.limits.Steps {
				return &RuntimeError{PC: i, Op: prog.Ops[i].Code, Err: ErrStepLimit}
			}
		}

		next, err := m.step(i, prog.Ops[i])
		if err != nil {
			return &RuntimeError{PC: i, Op: prog.Ops[i].Code, Err: err}
		}
		i = next
	}
	return nil
}

// step executes the op at i and returns the index the loop continues from,
// minus one.
func (m *Machine) step(i int, op Op) (int, error) {
	switch op.Code {
	case OpPush:
		if op.Arg.Kind != KindFloat {
			return i, ErrTypeMismatch
		}
		return i, m.push(op.Arg)

	case OpGreater:
		return i, m.binary(func(a, b float64) Value { return boolValue(a > b) })
	case OpGreaterEq:
		return i, m.binary(func(a, b float64) Value { return boolValue(a >= b) })
	case OpLess:
		return i, m.binary(func(a, b float64) Value { return boolValue(a < b) })
	case OpLessEq:
		return i, m.binary(func(a, b float64) Value { return boolValue(a <= b) })
	case OpEqual:
		return i, m.binary(func(a, b float64) Value { return boolValue(a == b) })
	case OpNotEqual:
		return i, m.binary(func(a, b float64) Value { return boolValue(a != b) })

	case OpAdd:
		return i, m.binary(func(a, b float64) Value { return Float(a + b) })
	case OpSub:
		return i, m.binary(func(a, b float64) Value { return Float(a - b) })
	case OpMul:
		return i, m.binary(func(a, b float64) Value { return Float(a * b) })
	case OpDiv:
		return i, m.binary(func(a, b float64) Value { return Float(a / b) })

	case OpNot:
		return i, m.unary(func(a float64) float64 {
			if a == 0 {
				return 1
			}
			return 0
		})
	case OpNeg:
		return i, m.unary(func(a float64) float64 { return -a })

	case OpJumpIfFalse:
		cond, err := m.popFloat()
		if err != nil {
			return i, err
		}
		if cond != 0 {
			return i, nil
		}
		target, err := operand(op, len(m.prog.Ops)+1)
		if err != nil {
			return i, err
		}
		return target - 1, nil

	case OpJump:
		target, err := operand(op, len(m.prog.Ops)+1)
		if err != nil {
			return i, err
		}
		return target - 1, nil

	case OpCall:
		return m.call(i, op)

	case OpNative:
		return i, m.native(op)

	case OpReturn:
		return m.ret(op)

	case OpDrop:
		_, err := m.pop()
		return i, err

	case OpGetGlobal:
		slot, err := operand(op, len(m.globals))
		if err != nil {
			return i, err
		}
		return i, m.push(m.globals[slot])

	case OpSetGlobal:
		slot, err := operand(op, len(m.globals))
		if err != nil {
			return i, err
		}
		v, err := m.pop()
		if err != nil {
			return i, err
		}
		m.globals[slot] = v
		return i, nil

	case OpGetLocal:
		slot, err := m.local(op)
		if err != nil {
			return i, err
		}
		return i, m.push(m.stack[slot])

	case OpSetLocal:
		v, err := m.pop()
		if err != nil {
			return i, err
		}
		slot, err := m.local(op)
		if err != nil {
			return i, err
		}
		m.stack[slot] = v
		return i, nil

	case OpMove:
		d, err := m.popFloat()
		if err != nil {
			return i, err
		}
		return i, m.Turtle.Move(d)

	case OpRotate:
		deg, err := m.popFloat()
		if err != nil {
			return i, err
		}
		m.Turtle.Rotate(deg)
		return i, nil
	}
	return i, fmt.Errorf("unknown opcode %s", op.Code)
}

// local resolves a frame-relative operand to an absolute stack index.
func (m *Machine) local(op Op) (int, error) {
	off, ok := op.Arg.AsInt()
	if !ok {
		return 0, ErrTypeMismatch
	}
	slot := m.fp + off
	if off < 0 || slot >= len(m.stack) {
		return 0, fmt.Errorf("%w: local %d outside frame at %d", ErrBadOperand, off, m.fp)
	}
	return slot, nil
}

func (m *Machine) function(op Op) (Function, error) {
	idx, err := operand(op, len(m.prog.Functions))
	if err != nil {
		return Function{}, err
	}
	return m.prog.Functions[idx], nil
}

// call lays out a frame as
//
//	fp -> arg0 .. argN-1 local.. | return address | saved fp
//
// and jumps to the function entry.
func (m *Machine) call(i int, op Op) (int, error) {
	f, err := m.function(op)
	if err != nil {
		return i, err
	}
	if f.IsNative() || f.Entry >= len(m.prog.Ops) {
		return i, fmt.Errorf("%w: %q has no bytecode entry", ErrBadOperand, f.Name)
	}
	if len(m.stack) < f.Arity {
		return i, ErrStackUnderflow
	}

	extra := f.Frame - f.Arity
	if len(m.stack)+extra > m.limits.Stack {
		return i, ErrStackOverflow
	}
	for k := 0; k < extra; k++ {
		m.stack = append(m.stack, Float(0))
	}

	if err := m.push(Int(i)); err != nil {
		return i, err
	}
	if err := m.push(Int(m.fp)); err != nil {
		return i, err
	}
	m.fp = len(m.stack) - f.Frame - 2
	return f.Entry - 1, nil
}

// ret replaces the callee's whole frame with its result and resumes after
// the call site.
func (m *Machine) ret(op Op) (int, error) {
	f, err := m.function(op)
	if err != nil {
		return 0, err
	}
	result, err := m.pop()
	if err != nil {
		return 0, err
	}
	fp, err := m.popInt()
	if err != nil {
		return 0, err
	}
	addr, err := m.popInt()
	if err != nil {
		return 0, err
	}
	if f.Frame > len(m.stack) {
		return 0, ErrStackUnderflow
	}
	if fp < 0 || fp > len(m.stack) || addr < 0 || addr >= len(m.prog.Ops) {
		return 0, fmt.Errorf("%w: corrupt frame (fp %d, return %d)", ErrBadOperand, fp, addr)
	}
	m.stack = m.stack[:len(m.stack)-f.Frame]
	m.fp = fp
	return addr, m.push(result)
}

func (m *Machine) native(op Op) error {
	f, err := m.function(op)
	if err != nil {
		return err
	}
	idx := -f.Entry - 1
	if !f.IsNative() || idx >= len(m.prog.Natives) {
		return fmt.Errorf("%w: %q is not a native", ErrBadOperand, f.Name)
	}
	if len(m.stack) < f.Arity {
		return ErrStackUnderflow
	}

	base := len(m.stack) - f.Arity
	args := make([]float64, f.Arity)
	for k, v := range m.stack[base:] {
		a, ok := v.AsFloat()
		if !ok {
			return ErrTypeMismatch
		}
		args[k] = a
	}
	m.stack = m.stack[:base]

	result, err := m.prog.Natives[idx](args)
	if err != nil {
		return fmt.Errorf("native %s: %w", f.Name, err)
	}
	return m.push(Float(result))
}
