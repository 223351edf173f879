package compiler

import (
	"testing"

	"gopen/pkg/vm"
)

func TestFunctions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []vm.Op
		fns   []vm.Function
	}{
		{
			name:  "identity",
			input: "fn id(x) { return x }",
			want: []vm.Op{
				op(vm.OpJump, 5),
				op(vm.OpGetLocal, 0), op(vm.OpReturn, 0),
				push(0), op(vm.OpReturn, 0),
			},
			fns: []vm.Function{{Name: "id", Arity: 1, Frame: 1, Entry: 1}},
		},
		{
			name:  "call with arguments",
			input: "fn add(a, b) { return a + b }\nx = add(1, 2)",
			want: []vm.Op{
				op(vm.OpJump, 7),
				op(vm.OpGetLocal, 0), op(vm.OpGetLocal, 1), bare(vm.OpAdd), op(vm.OpReturn, 0),
				push(0), op(vm.OpReturn, 0),
				push(1), push(2), op(vm.OpCall, 0), op(vm.OpSetGlobal, 0),
			},
			fns: []vm.Function{{Name: "add", Arity: 2, Frame: 2, Entry: 1}},
		},
		{
			name:  "call statement result is dropped",
			input: "fn f() { }\nf()",
			want: []vm.Op{
				op(vm.OpJump, 3),
				push(0), op(vm.OpReturn, 0),
				op(vm.OpCall, 0), bare(vm.OpDrop),
			},
			fns: []vm.Function{{Name: "f", Arity: 0, Frame: 0, Entry: 1}},
		},
		{
			name:  "locals",
			input: "fn f(a) { b = a return b }",
			want: []vm.Op{
				op(vm.OpJump, 7),
				op(vm.OpGetLocal, 0), op(vm.OpSetLocal, 1),
				op(vm.OpGetLocal, 1), op(vm.OpReturn, 0),
				push(0), op(vm.OpReturn, 0),
			},
			fns: []vm.Function{{Name: "f", Arity: 1, Frame: 2, Entry: 1}},
		},
		{
			name:  "existing global is assigned in place",
			input: "g = 0\nfn f() { g = 1 }",
			want: []vm.Op{
				push(0), op(vm.OpSetGlobal, 0),
				op(vm.OpJump, 7),
				push(1), op(vm.OpSetGlobal, 0),
				push(0), op(vm.OpReturn, 0),
			},
			fns: []vm.Function{{Name: "f", Arity: 0, Frame: 0, Entry: 3}},
		},
		{
			name:  "parameter shadows global",
			input: "x = 5\nfn f(x) { return x }",
			want: []vm.Op{
				push(5), op(vm.OpSetGlobal, 0),
				op(vm.OpJump, 7),
				op(vm.OpGetLocal, 0), op(vm.OpReturn, 0),
				push(0), op(vm.OpReturn, 0),
			},
			fns: []vm.Function{{Name: "f", Arity: 1, Frame: 1, Entry: 3}},
		},
		{
			name:  "recursion",
			input: "fn f(n) { return f(n) }",
			want: []vm.Op{
				op(vm.OpJump, 6),
				op(vm.OpGetLocal, 0), op(vm.OpCall, 0), op(vm.OpReturn, 0),
				push(0), op(vm.OpReturn, 0),
			},
			fns: []vm.Function{{Name: "f", Arity: 1, Frame: 1, Entry: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustCompile(t, tt.input)
			assertOps(t, prog, tt.want)
			if len(prog.Functions) != len(tt.fns) {
				t.Fatalf("functions: expected %d, got %d", len(tt.fns), len(prog.Functions))
			}
			for i, want := range tt.fns {
				if got := prog.Functions[i]; got != want {
					t.Errorf("function %d: expected %+v, got %+v", i, want, got)
				}
			}
		})
	}
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		input string
		frame int
	}{
		{"fn f() { }", 0},
		{"fn f(a, b, c) { }", 3},
		{"fn f(a) { b = 1 { c = 2 } { d = 3 } }", 3},
		{"fn f(a) { { b = 1 { c = 2 { d = 3 } } } }", 4},
		{"fn f() { while 1 { i = 0 } if 1 { j = 0 k = 0 } }", 2},
	}
	for _, tt := range tests {
		prog := mustCompile(t, tt.input)
		if got := prog.Functions[0].Frame; got != tt.frame {
			t.Errorf("%q: frame expected %d, got %d", tt.input, tt.frame, got)
		}
	}
}

func TestFunctionLocalsDoNotLeak(t *testing.T) {
	prog := mustCompile(t, "a = 1\nfn f(p) { q = p return q }\nb = 2")
	want := []string{"a", "b"}
	if len(prog.Globals) != len(want) {
		t.Fatalf("globals: expected %v, got %v", want, prog.Globals)
	}
	for i := range want {
		if prog.Globals[i] != want[i] {
			t.Errorf("global %d: expected %q, got %q", i, want[i], prog.Globals[i])
		}
	}
}
