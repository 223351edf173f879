// Package vm holds the bytecode representation of pen programs and the stack
// machine that evaluates them, including the turtle that records the drawn
// polyline.
package vm
