package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"gopen/pkg/vm"
)

// Power is an operator binding power. Higher binds tighter.
type Power int

const (
	PowerNone Power = iota
	PowerAssign
	PowerCompare
	PowerAdd
	PowerMul
	PowerPrefix
)

// infixOps maps each binary operator to its binding power and opcode.
var infixOps = map[TokenType]struct {
	power Power
	code  vm.Opcode
}{
	GREATER:    {PowerCompare, vm.OpGreater},
	GREATER_EQ: {PowerCompare, vm.OpGreaterEq},
	LESS:       {PowerCompare, vm.OpLess},
	LESS_EQ:    {PowerCompare, vm.OpLessEq},
	EQUALS:     {PowerCompare, vm.OpEqual},
	NOT_EQ:     {PowerCompare, vm.OpNotEqual},
	PLUS:       {PowerAdd, vm.OpAdd},
	MINUS:      {PowerAdd, vm.OpSub},
	STAR:       {PowerMul, vm.OpMul},
	SLASH:      {PowerMul, vm.OpDiv},
}

func powerOf(tt TokenType) Power {
	if tt == ASSIGN {
		return PowerAssign
	}
	return infixOps[tt].power
}

// Compiler turns source text into a vm.Program in a single pass, emitting
// bytecode directly while it parses.
type Compiler struct {
	limits  vm.Limits
	natives []vm.Native

	lex  *Lexer
	prog *vm.Program
	syms *SymbolTable
	fn   int // index of the function being compiled
}

// New returns a compiler that builds programs under limits and pre-registers
// natives in every program's function table.
func New(limits vm.Limits, natives ...vm.Native) *Compiler {
	return &Compiler{limits: limits, natives: natives}
}

// Compile compiles src with the default limits and no natives.
func Compile(src string) (*vm.Program, error) {
	return New(vm.DefaultLimits()).Compile(src)
}

// Compile discards all state from previous calls and compiles src. The
// returned program is only non-nil when compilation succeeded.
func (c *Compiler) Compile(src string) (*vm.Program, error) {
	c.lex = NewLexer(src)
	c.prog = vm.NewProgram(c.limits)
	c.syms = NewSymbolTable(c.prog)
	c.fn = 0

	for _, n := range c.natives {
		if _, exists := c.prog.FindFunction(n.Name); exists {
			return nil, c.errorf(Semantic, 0, "redefinition of function '%s'", n.Name)
		}
		if _, err := c.prog.AddNative(n); err != nil {
			return nil, c.capacity(0, err)
		}
	}

	for {
		tok, err := c.lex.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			break
		}
		if err := c.statement(); err != nil {
			return nil, err
		}
	}
	return c.prog, nil
}

// Symbols exposes the symbol table of the last compilation.
func (c *Compiler) Symbols() *SymbolTable {
	return c.syms
}

func (c *Compiler) errorf(kind ErrorKind, line int, format string, args ...any) error {
	if c.lex == nil {
		return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
	}
	return c.lex.errorf(kind, line, format, args...)
}

func (c *Compiler) capacity(line int, err error) error {
	e := c.errorf(Capacity, line, "%v", err).(*Error)
	e.Err = err
	return e
}

func (c *Compiler) unexpected(tok Token) error {
	return c.errorf(Syntax, tok.Line, "unexpected %s", tok.Type.Describe())
}

func (c *Compiler) undefined(tok Token, what string) error {
	return c.errorf(Semantic, tok.Line, "undefined %s '%s'", what, tok.Lexeme)
}

// emit appends an op, turning table overflow into a capacity diagnostic.
func (c *Compiler) emit(line int, code vm.Opcode, arg vm.Value) (int, error) {
	addr, err := c.prog.Emit(code, arg)
	if err != nil {
		return 0, c.capacity(line, err)
	}
	return addr, nil
}

func (c *Compiler) emitOp(line int, code vm.Opcode) error {
	_, err := c.emit(line, code, vm.Int(0))
	return err
}

// expect consumes a token of type tt.
func (c *Compiler) expect(tt TokenType) (Token, error) {
	return c.lex.Expect(tt)
}

// expectAhead checks that the next token has type tt without consuming it.
func (c *Compiler) expectAhead(tt TokenType) error {
	tok, err := c.lex.Peek()
	if err != nil {
		return err
	}
	if tok.Type != tt {
		return c.errorf(Syntax, tok.Line, "expected %s, found %s", tt.Describe(), tok.Type.Describe())
	}
	return nil
}

// expression compiles one expression whose operators all bind tighter than
// min.
func (c *Compiler) expression(min Power) error {
	tok, err := c.lex.Next()
	if err != nil {
		return err
	}

	switch tok.Type {
	case NUMBER:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return c.errorf(Syntax, tok.Line, "invalid number '%s'", tok.Lexeme)
		}
		if _, err := c.emit(tok.Line, vm.OpPush, vm.Float(f)); err != nil {
			return err
		}

	case IDENTIFIER:
		next, err := c.lex.Peek()
		if err != nil {
			return err
		}
		switch next.Type {
		case LPAREN:
			c.lex.Next()
			if err := c.call(tok); err != nil {
				return err
			}
		case ASSIGN:
			if min != PowerNone {
				return c.errorf(Semantic, next.Line, "assignment to '%s' is not allowed inside an expression", tok.Lexeme)
			}
			c.lex.Next()
			// An assignment is a complete statement-level expression.
			return c.assignment(tok)
		default:
			if err := c.variable(tok); err != nil {
				return err
			}
		}

	case NOT, MINUS:
		if err := c.expression(PowerPrefix); err != nil {
			return err
		}
		code := vm.OpNot
		if tok.Type == MINUS {
			code = vm.OpNeg
		}
		if err := c.emitOp(tok.Line, code); err != nil {
			return err
		}

	case LPAREN:
		if err := c.expression(PowerAssign); err != nil {
			return err
		}
		if _, err := c.expect(RPAREN); err != nil {
			return err
		}

	default:
		return c.unexpected(tok)
	}

	for {
		op, err := c.lex.Peek()
		if err != nil {
			return err
		}
		power := powerOf(op.Type)
		if power <= min {
			return nil
		}
		c.lex.Next()

		if op.Type == ASSIGN {
			return c.errorf(Semantic, op.Line, "invalid assignment target")
		}
		if err := c.expression(power); err != nil {
			return err
		}
		if err := c.emitOp(op.Line, infixOps[op.Type].code); err != nil {
			return err
		}
	}
}

// call compiles the argument list of name( ... ) and the call itself. The
// opening parenthesis has been consumed.
func (c *Compiler) call(name Token) error {
	idx, fn, ok := c.syms.LookupFunction(name.Lexeme)
	if !ok {
		return c.undefined(name, "function")
	}

	for i := 0; i < fn.Arity; i++ {
		if i > 0 {
			if _, err := c.expect(COMMA); err != nil {
				return err
			}
		}
		if err := c.expression(PowerAssign); err != nil {
			return err
		}
	}
	if _, err := c.expect(RPAREN); err != nil {
		return err
	}

	code := vm.OpCall
	if fn.IsNative() {
		code = vm.OpNative
	}
	_, err := c.emit(name.Line, code, vm.Int(idx))
	return err
}

// assignment compiles the right-hand side, then resolves or declares the
// target. Declaring after the value is compiled means `x = x` fails for an
// unseen x.
func (c *Compiler) assignment(name Token) error {
	if err := c.expression(PowerAssign); err != nil {
		return err
	}

	idx, v, ok := c.syms.Lookup(name.Lexeme)
	if !ok {
		var err error
		if idx, err = c.syms.Declare(name.Lexeme); err != nil {
			return c.capacity(name.Line, err)
		}
		v.Local = c.syms.InFunction()
	}

	code := vm.OpSetGlobal
	if v.Local {
		code = vm.OpSetLocal
	}
	_, err := c.emit(name.Line, code, vm.Int(c.syms.Address(idx)))
	return err
}

func (c *Compiler) variable(name Token) error {
	idx, v, ok := c.syms.Lookup(name.Lexeme)
	if !ok {
		return c.undefined(name, "variable")
	}
	code := vm.OpGetGlobal
	if v.Local {
		code = vm.OpGetLocal
	}
	_, err := c.emit(name.Line, code, vm.Int(c.syms.Address(idx)))
	return err
}

func (c *Compiler) statement() error {
	tok, err := c.lex.Peek()
	if err != nil {
		return err
	}

	switch tok.Type {
	case LBRACE:
		return c.block()
	case IF:
		return c.ifStatement()
	case WHILE:
		return c.whileStatement()
	case FN:
		return c.function()
	case RETURN:
		return c.returnStatement()
	case MOVE, ROTATE:
		return c.turtleStatement()
	}

	if err := c.expression(PowerNone); err != nil {
		return err
	}
	if last, ok := c.prog.Last(); ok && last.Code.IsStore() {
		return nil
	}
	return c.emitOp(tok.Line, vm.OpDrop)
}

// block compiles { stmt* } in its own scope.
func (c *Compiler) block() error {
	if _, err := c.expect(LBRACE); err != nil {
		return err
	}
	mark := c.syms.Checkpoint()
	for {
		tok, err := c.lex.Peek()
		if err != nil {
			return err
		}
		if tok.Type == RBRACE {
			break
		}
		if tok.Type == EOF {
			return c.errorf(Syntax, tok.Line, "expected %s, found %s", RBRACE.Describe(), EOF.Describe())
		}
		if err := c.statement(); err != nil {
			return err
		}
	}
	c.lex.Next()
	c.syms.Restore(mark)
	return nil
}

// condition compiles a condition followed by a placeholder conditional skip
// and returns the placeholder's address.
func (c *Compiler) condition(line int) (int, error) {
	if err := c.expression(PowerAssign); err != nil {
		return 0, err
	}
	if err := c.expectAhead(LBRACE); err != nil {
		return 0, err
	}
	return c.emit(line, vm.OpJumpIfFalse, vm.Int(0))
}

func (c *Compiler) ifStatement() error {
	tok, _ := c.lex.Next()

	skip, err := c.condition(tok.Line)
	if err != nil {
		return err
	}
	if err := c.block(); err != nil {
		return err
	}

	next, err := c.lex.Peek()
	if err != nil {
		return err
	}
	if next.Type != ELSE {
		c.prog.Patch(skip)
		return nil
	}
	c.lex.Next()

	after, err := c.lex.Peek()
	if err != nil {
		return err
	}
	if after.Type != IF && after.Type != LBRACE {
		return c.errorf(Syntax, after.Line, "expected %s, found %s", LBRACE.Describe(), after.Type.Describe())
	}

	exit, err := c.emit(next.Line, vm.OpJump, vm.Int(0))
	if err != nil {
		return err
	}
	c.prog.Patch(skip)

	if after.Type == IF {
		err = c.ifStatement()
	} else {
		err = c.block()
	}
	if err != nil {
		return err
	}
	c.prog.Patch(exit)
	return nil
}

func (c *Compiler) whileStatement() error {
	tok, _ := c.lex.Next()

	top := c.prog.Len()
	skip, err := c.condition(tok.Line)
	if err != nil {
		return err
	}
	if err := c.block(); err != nil {
		return err
	}
	if _, err := c.emit(tok.Line, vm.OpJump, vm.Int(top)); err != nil {
		return err
	}
	c.prog.Patch(skip)
	return nil
}

// function compiles fn name(params) { body }. The body is reached only
// through calls, so a leading jump steps over it.
func (c *Compiler) function() error {
	kw, _ := c.lex.Next()
	if c.syms.InFunction() {
		return c.errorf(Semantic, kw.Line, "nested function definitions are not allowed")
	}

	name, err := c.expect(IDENTIFIER)
	if err != nil {
		return err
	}
	if _, _, exists := c.syms.LookupFunction(name.Lexeme); exists {
		return c.errorf(Semantic, name.Line, "redefinition of function '%s'", name.Lexeme)
	}
	if _, err := c.expect(LPAREN); err != nil {
		return err
	}

	c.syms.EnterFunction()
	arity := 0
	for {
		tok, err := c.lex.Peek()
		if err != nil {
			return err
		}
		if tok.Type == RPAREN {
			c.lex.Next()
			break
		}
		if arity > 0 {
			if _, err := c.expect(COMMA); err != nil {
				return err
			}
		}
		param, err := c.expect(IDENTIFIER)
		if err != nil {
			return err
		}
		if _, err := c.syms.Declare(param.Lexeme); err != nil {
			return c.capacity(param.Line, err)
		}
		arity++
	}
	if err := c.expectAhead(LBRACE); err != nil {
		return err
	}

	skip, err := c.emit(kw.Line, vm.OpJump, vm.Int(0))
	if err != nil {
		return err
	}
	idx, err := c.prog.AddFunction(vm.Function{Name: name.Lexeme, Arity: arity, Entry: c.prog.Len()})
	if err != nil {
		return c.capacity(name.Line, err)
	}
	c.fn = idx

	if err := c.block(); err != nil {
		return err
	}
	c.prog.Functions[idx].Frame = c.syms.ExitFunction()

	// Falling off the end returns 0.
	if _, err := c.emit(kw.Line, vm.OpPush, vm.Float(0)); err != nil {
		return err
	}
	if _, err := c.emit(kw.Line, vm.OpReturn, vm.Int(idx)); err != nil {
		return err
	}
	c.prog.Patch(skip)
	return nil
}

func (c *Compiler) returnStatement() error {
	tok, _ := c.lex.Next()
	if !c.syms.InFunction() {
		return c.errorf(Semantic, tok.Line, "'return' outside of a function")
	}
	if err := c.expression(PowerAssign); err != nil {
		return err
	}
	_, err := c.emit(tok.Line, vm.OpReturn, vm.Int(c.fn))
	return err
}

// turtleStatement compiles move(expr) and rotate(expr).
func (c *Compiler) turtleStatement() error {
	tok, _ := c.lex.Next()
	if _, err := c.expect(LPAREN); err != nil {
		return err
	}
	if err := c.expression(PowerAssign); err != nil {
		return err
	}
	if _, err := c.expect(RPAREN); err != nil {
		return err
	}
	code := vm.OpMove
	if tok.Type == ROTATE {
		code = vm.OpRotate
	}
	return c.emitOp(tok.Line, code)
}

// IsKind reports whether err is a compile diagnostic of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
