package types

import (
	"math"
	"strconv"
)

type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// Value is one operand-stack word. The tag is consulted by every accessor,
// so a value is never reinterpreted as the wrong representation.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
}

// NewInt creates an integer Value.
func NewInt(i int64) Value {
	return Value{Kind: KindInt, I: i}
}

// NewFloat creates a floating Value.
func NewFloat(f float64) Value {
	return Value{Kind: KindFloat, F: f}
}

// NewString creates a string Value.
func NewString(s string) Value {
	return Value{Kind: KindString, S: s}
}

// NewBool creates the 0/1 integer used for truth values.
func NewBool(b bool) Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// Int converts the value to int64.
func (v Value) Int() int64 {
	switch v.Kind {
	case KindInt:
		return v.I
	case KindFloat:
		if math.IsNaN(v.F) {
			return 0
		}
		return int64(v.F)
	case KindString:
		n, err := strconv.ParseInt(v.S, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float converts the value to float64.
func (v Value) Float() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I)
	case KindFloat:
		return v.F
	case KindString:
		f, err := strconv.ParseFloat(v.S, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Str converts the value to its textual form.
func (v Value) Str() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', 8, 64)
	case KindString:
		return v.S
	default:
		return ""
	}
}

// Truth reports whether the value counts as true: non-zero numbers and
// non-empty strings.
func (v Value) Truth() bool {
	switch v.Kind {
	case KindInt:
		return v.I != 0
	case KindFloat:
		return v.F != 0
	case KindString:
		return v.S != ""
	default:
		return false
	}
}

// String renders the value for diagnostics.
func (v Value) String() string {
	if v.Kind == KindString {
		return strconv.Quote(v.S)
	}
	if v.Kind == KindNone {
		return "<none>"
	}
	return v.Str()
}
