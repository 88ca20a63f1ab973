package types

import (
	"fmt"
	"math"
	"strconv"

	"cellar/pkg/bytecode"
)

// BinaryFunc combines two operands already converted to the descriptor's type.
type BinaryFunc func(a, b Value) (Value, error)

// kernel holds the representation-specific arithmetic of one descriptor.
type kernel interface {
	zero() Value
	convert(v Value) Value
	format(layout string, v Value) string
	parse(s string) (Value, error)
	binary(f bytecode.Family) (BinaryFunc, bool)
	less(a, b Value) bool
	equal(a, b Value) bool
	neg(v Value) Value
}

type intKernel struct {
	bits int
	wrap func(int64) int64
}

func wrap8(x int64) int64  { return int64(int8(x)) }
func wrap16(x int64) int64 { return int64(int16(x)) }
func wrap64(x int64) int64 { return x }

func (k intKernel) zero() Value { return NewInt(0) }

func (k intKernel) convert(v Value) Value { return NewInt(k.wrap(v.Int())) }

func (k intKernel) format(layout string, v Value) string {
	return fmt.Sprintf(layout, k.wrap(v.Int()))
}

func (k intKernel) parse(s string) (Value, error) {
	n, err := strconv.ParseInt(s, 10, k.bits)
	if err != nil {
		return Value{}, err
	}
	return NewInt(n), nil
}

func (k intKernel) binary(f bytecode.Family) (BinaryFunc, bool) {
	switch f {
	case bytecode.FamAdd:
		return func(a, b Value) (Value, error) { return NewInt(k.wrap(a.Int() + b.Int())), nil }, true
	case bytecode.FamSub:
		return func(a, b Value) (Value, error) { return NewInt(k.wrap(a.Int() - b.Int())), nil }, true
	case bytecode.FamMul:
		return func(a, b Value) (Value, error) { return NewInt(k.wrap(a.Int() * b.Int())), nil }, true
	case bytecode.FamDiv:
		return func(a, b Value) (Value, error) {
			d := b.Int()
			if d == 0 {
				return Value{}, ErrDivideByZero
			}
			return NewInt(k.wrap(a.Int() / d)), nil
		}, true
	case bytecode.FamMod:
		return func(a, b Value) (Value, error) {
			d := b.Int()
			if d == 0 {
				return Value{}, ErrDivideByZero
			}
			return NewInt(k.wrap(a.Int() % d)), nil
		}, true
	case bytecode.FamPow:
		return func(a, b Value) (Value, error) {
			r, err := ipow(a.Int(), b.Int(), k.wrap)
			if err != nil {
				return Value{}, err
			}
			return NewInt(r), nil
		}, true
	default:
		return nil, false
	}
}

func (k intKernel) less(a, b Value) bool  { return a.Int() < b.Int() }
func (k intKernel) equal(a, b Value) bool { return a.Int() == b.Int() }
func (k intKernel) neg(v Value) Value     { return NewInt(k.wrap(-v.Int())) }

// ipow raises base to exp by squaring, wrapping every intermediate product.
func ipow(base, exp int64, wrap func(int64) int64) (int64, error) {
	if base == 0 && exp <= 0 {
		return 0, fmt.Errorf("%w: %d^%d", ErrDomain, base, exp)
	}
	if exp < 0 {
		switch base {
		case 1:
			return 1, nil
		case -1:
			if exp%2 == 0 {
				return 1, nil
			}
			return -1, nil
		default:
			return 0, nil
		}
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = wrap(result * base)
		}
		base = wrap(base * base)
		exp >>= 1
	}
	return result, nil
}

type floatKernel struct {
	bits  int
	round func(float64) float64
}

func round32(x float64) float64 { return float64(float32(x)) }
func round64(x float64) float64 { return x }

func (k floatKernel) zero() Value { return NewFloat(0) }

func (k floatKernel) convert(v Value) Value { return NewFloat(k.round(v.Float())) }

func (k floatKernel) format(layout string, v Value) string {
	return fmt.Sprintf(layout, k.round(v.Float()))
}

func (k floatKernel) parse(s string) (Value, error) {
	f, err := strconv.ParseFloat(s, k.bits)
	if err != nil {
		return Value{}, err
	}
	return NewFloat(f), nil
}

func (k floatKernel) binary(f bytecode.Family) (BinaryFunc, bool) {
	switch f {
	case bytecode.FamAdd:
		return func(a, b Value) (Value, error) { return NewFloat(k.round(a.Float() + b.Float())), nil }, true
	case bytecode.FamSub:
		return func(a, b Value) (Value, error) { return NewFloat(k.round(a.Float() - b.Float())), nil }, true
	case bytecode.FamMul:
		return func(a, b Value) (Value, error) { return NewFloat(k.round(a.Float() * b.Float())), nil }, true
	case bytecode.FamDiv:
		return func(a, b Value) (Value, error) {
			d := b.Float()
			if d == 0 {
				return Value{}, ErrDivideByZero
			}
			return NewFloat(k.round(a.Float() / d)), nil
		}, true
	case bytecode.FamMod:
		return func(a, b Value) (Value, error) {
			d := b.Float()
			if d == 0 {
				return Value{}, ErrDivideByZero
			}
			return NewFloat(k.round(math.Mod(a.Float(), d))), nil
		}, true
	case bytecode.FamPow:
		return func(a, b Value) (Value, error) {
			r, err := Pow(a.Float(), b.Float())
			if err != nil {
				return Value{}, err
			}
			return NewFloat(k.round(r)), nil
		}, true
	default:
		return nil, false
	}
}

func (k floatKernel) less(a, b Value) bool  { return a.Float() < b.Float() }
func (k floatKernel) equal(a, b Value) bool { return a.Float() == b.Float() }
func (k floatKernel) neg(v Value) Value     { return NewFloat(-k.round(v.Float())) }

// Pow is math.Pow with the domain and range checks of the language.
func Pow(x, y float64) (float64, error) {
	if x == 0 && y == 0 {
		return 0, fmt.Errorf("%w: 0^0", ErrDomain)
	}
	r := math.Pow(x, y)
	if math.IsNaN(r) {
		return 0, fmt.Errorf("%w: %g^%g", ErrDomain, x, y)
	}
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: %g^%g", ErrRange, x, y)
	}
	return r, nil
}

type stringKernel struct{}

func (stringKernel) zero() Value { return NewString("") }

func (stringKernel) convert(v Value) Value { return NewString(v.Str()) }

func (stringKernel) format(layout string, v Value) string { return fmt.Sprintf(layout, v.Str()) }

func (stringKernel) parse(s string) (Value, error) { return NewString(s), nil }

func (stringKernel) binary(f bytecode.Family) (BinaryFunc, bool) {
	if f != bytecode.FamAdd {
		return nil, false
	}
	return func(a, b Value) (Value, error) { return NewString(a.Str() + b.Str()), nil }, true
}

func (stringKernel) less(a, b Value) bool  { return a.Str() < b.Str() }
func (stringKernel) equal(a, b Value) bool { return a.Str() == b.Str() }
func (stringKernel) neg(v Value) Value     { return v }
