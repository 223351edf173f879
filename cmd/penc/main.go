package main

import (
	"fmt"
	"os"

	"gopen/pkg/compiler"
	"gopen/pkg/pen"
	"gopen/pkg/vm"
)

const testSource = `fn step(n) {
	move(n)
	rotate(90)
	return n
}
i = 0
while i < 4 { step(10) i = i + 1 }
`

// penc prints every stage of the pipeline for one script: tokens, bytecode
// and the symbols left visible at the end of compilation.
func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Compile
	c := compiler.New(vm.DefaultLimits(), pen.StandardNatives()...)
	prog, err := c.Compile(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Println("Generated Bytecode")
	fmt.Print(prog)
	fmt.Println()
	fmt.Print(c.Symbols())
}
