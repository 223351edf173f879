// Package compiler provides the lexer and the single-pass Pratt compiler for
// the pen scripting language. It emits vm bytecode directly while parsing;
// there is no intermediate syntax tree.
//
// Pipeline: source → Lexer → Compiler → *vm.Program
package compiler
