// Package mathlib provides the numeric builtins.
package mathlib

import (
	"fmt"
	"math"
	"math/rand/v2"

	"cellar/pkg/builtin"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

func init() {
	builtin.Add(builtin.Plugin{Name: "math", Install: install})
}

func install(tab *symbol.Table, reg *types.Registry) error {
	d := reg.Double()
	x := []symbol.Formal{{Name: "x", Type: d}}
	xy := []symbol.Formal{{Name: "y", Type: d}, {Name: "x", Type: d}}

	return builtin.RegisterAll(tab, []builtin.Spec{
		{Name: "sin", Returns: d, Params: x, Fn: unary("sin", math.Sin)},
		{Name: "cos", Returns: d, Params: x, Fn: unary("cos", math.Cos)},
		{Name: "atan", Returns: d, Params: x, Fn: unary("atan", math.Atan)},
		{Name: "exp", Returns: d, Params: x, Fn: unary("exp", math.Exp)},
		{Name: "log", Returns: d, Params: x, Fn: unary("log", math.Log)},
		{Name: "log10", Returns: d, Params: x, Fn: unary("log10", math.Log10)},
		{Name: "sqrt", Returns: d, Params: x, Fn: unary("sqrt", math.Sqrt)},
		{Name: "int", Returns: d, Params: x, Fn: unary("int", math.Trunc)},
		{Name: "abs", Returns: d, Params: x, Fn: unary("abs", math.Abs)},
		{Name: "atan2", Returns: d, Params: xy, Fn: binary("atan2", math.Atan2)},
		{Name: "pow", Returns: d, Params: xy, Fn: pow},
		{Name: "rand", Returns: d, Fn: random},
	})
}

// check maps NaN to a domain error and an overflow to a range error
func check(name string, in, out float64) (types.Value, error) {
	if math.IsNaN(out) && !math.IsNaN(in) {
		return types.Value{}, fmt.Errorf("%w: %s(%g)", builtin.ErrDomain, name, in)
	}
	if math.IsInf(out, 0) && !math.IsInf(in, 0) {
		return types.Value{}, fmt.Errorf("%w: %s(%g)", builtin.ErrRange, name, in)
	}
	return types.NewFloat(out), nil
}

func unary(name string, fn func(float64) float64) symbol.Native {
	return func(args symbol.Args) (types.Value, error) {
		x, err := builtin.Float(args, 1)
		if err != nil {
			return types.Value{}, err
		}
		return check(name, x, fn(x))
	}
}

func binary(name string, fn func(a, b float64) float64) symbol.Native {
	return func(args symbol.Args) (types.Value, error) {
		a, err := builtin.Float(args, 1)
		if err != nil {
			return types.Value{}, err
		}
		b, err := builtin.Float(args, 2)
		if err != nil {
			return types.Value{}, err
		}
		return check(name, a, fn(a, b))
	}
}

func pow(args symbol.Args) (types.Value, error) {
	x, err := builtin.Float(args, 1)
	if err != nil {
		return types.Value{}, err
	}
	y, err := builtin.Float(args, 2)
	if err != nil {
		return types.Value{}, err
	}
	r, err := types.Pow(x, y)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewFloat(r), nil
}

func random(symbol.Args) (types.Value, error) {
	return types.NewFloat(rand.Float64()), nil
}
