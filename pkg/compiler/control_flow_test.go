package compiler

import (
	"testing"

	"gopen/pkg/vm"
)

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []vm.Op
	}{
		{
			name:  "if without else",
			input: "x = 1 if x { x = 2 }",
			want: []vm.Op{
				push(1), op(vm.OpSetGlobal, 0),
				op(vm.OpGetGlobal, 0), op(vm.OpJumpIfFalse, 6),
				push(2), op(vm.OpSetGlobal, 0),
			},
		},
		{
			name:  "if with else",
			input: "x = 1 if x { x = 2 } else { x = 3 }",
			want: []vm.Op{
				push(1), op(vm.OpSetGlobal, 0),
				op(vm.OpGetGlobal, 0), op(vm.OpJumpIfFalse, 7),
				push(2), op(vm.OpSetGlobal, 0),
				op(vm.OpJump, 9),
				push(3), op(vm.OpSetGlobal, 0),
			},
		},
		{
			name:  "else if chain",
			input: "x = 1 if x == 1 { move(1) } else if x == 2 { move(2) } else { move(3) }",
			want: []vm.Op{
				push(1), op(vm.OpSetGlobal, 0),
				op(vm.OpGetGlobal, 0), push(1), bare(vm.OpEqual), op(vm.OpJumpIfFalse, 9),
				push(1), bare(vm.OpMove),
				op(vm.OpJump, 18),
				op(vm.OpGetGlobal, 0), push(2), bare(vm.OpEqual), op(vm.OpJumpIfFalse, 16),
				push(2), bare(vm.OpMove),
				op(vm.OpJump, 18),
				push(3), bare(vm.OpMove),
			},
		},
		{
			name:  "while loop",
			input: "i = 0 while i < 3 { i = i + 1 }",
			want: []vm.Op{
				push(0), op(vm.OpSetGlobal, 0),
				op(vm.OpGetGlobal, 0), push(3), bare(vm.OpLess), op(vm.OpJumpIfFalse, 11),
				op(vm.OpGetGlobal, 0), push(1), bare(vm.OpAdd), op(vm.OpSetGlobal, 0),
				op(vm.OpJump, 2),
			},
		},
		{
			name:  "empty bodies",
			input: "if 0 { }\nwhile 0 { }",
			want: []vm.Op{
				push(0), op(vm.OpJumpIfFalse, 2),
				push(0), op(vm.OpJumpIfFalse, 5),
				op(vm.OpJump, 2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertOps(t, mustCompile(t, tt.input), tt.want)
		})
	}
}

// Every jump emitted by the compiler must land inside the program or exactly
// one past its end.
func TestJumpTargetsInRange(t *testing.T) {
	src := `
fn walk(n) {
	i = 0
	while i < n {
		if i == 2 { rotate(90) } else if i == 3 { rotate(-90) } else { move(i) }
		i = i + 1
	}
	return i
}
x = walk(5)
if x > 4 { move(x) }
`
	prog := mustCompile(t, src)
	for i, o := range prog.Ops {
		if o.Code != vm.OpJump && o.Code != vm.OpJumpIfFalse {
			continue
		}
		target, ok := o.Arg.AsInt()
		if !ok {
			t.Fatalf("op %d: jump operand is not an int: %v", i, o)
		}
		if target < 0 || target > len(prog.Ops) {
			t.Errorf("op %d: target %d out of range [0, %d]", i, target, len(prog.Ops))
		}
	}
}
