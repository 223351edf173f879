package vm

import (
	"fmt"
	"strconv"
)

// Kind tags which numeric variant a Value holds.
type Kind uint8

const (
	KindFloat Kind = iota // script numbers: literals, arithmetic, comparisons
	KindInt               // addresses, table indexes, frame bookkeeping
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a two-variant numeric union. The opcode that produces a value
// decides its variant; the tag is kept at rest so the machine can check it.
type Value struct {
	Kind Kind
	i    int64
	f    float64
}

// Float returns a float-variant Value.
func Float(f float64) Value {
	return Value{Kind: KindFloat, f: f}
}

// Int returns an int-variant Value.
func Int(i int) Value {
	return Value{Kind: KindInt, i: int64(i)}
}

// AsFloat returns the float payload. ok is false for an int-variant value.
func (v Value) AsFloat() (f float64, ok bool) {
	return v.f, v.Kind == KindFloat
}

// AsInt returns the int payload. ok is false for a float-variant value.
func (v Value) AsInt() (i int, ok bool) {
	return int(v.i), v.Kind == KindInt
}

func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.i, 10)
	}
	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

func boolValue(b bool) Value {
	if b {
		return Float(1)
	}
	return Float(0)
}
