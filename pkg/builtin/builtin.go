// Package builtin binds native callbacks to symbols and keeps the catalog of
// native libraries installed into every interpreter.
package builtin

import (
	"errors"
	"fmt"

	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

var (
	ErrAlreadyRegistered = errors.New("builtin already registered")
	ErrNoCallback        = errors.New("builtin has no callback")
	ErrBadParam          = errors.New("bad builtin parameter")
	ErrMalformedNumber   = errors.New("malformed number")

	// Math failures share the sentinels of the arithmetic kernels.
	ErrDomain = types.ErrDomain
	ErrRange  = types.ErrRange
)

// Spec describes one native routine.
type Spec struct {
	Name    string
	Returns *types.Descriptor // nil for a procedure
	Fn      symbol.Native
	Params  []symbol.Formal
}

// Register installs spec as a builtin function (with a return type) or
// procedure (without), laying out its parameters like a user routine.
func Register(tab *symbol.Table, spec Spec) (*symbol.Symbol, error) {
	if spec.Fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCallback, spec.Name)
	}
	if _, exists := tab.LookupInScope(spec.Name); exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, spec.Name)
	}

	for _, p := range spec.Params {
		if p.Type == nil || p.Name == "" {
			return nil, fmt.Errorf("%w: %s(%s)", ErrBadParam, spec.Name, p.Name)
		}
	}

	kind := symbol.BuiltinProc
	if spec.Returns != nil {
		kind = symbol.BuiltinFunc
	}

	head := tab.Head()
	sym := tab.Install(spec.Name, kind)
	sym.Type = spec.Returns
	sym.Native = spec.Fn

	tab.StartScope()
	if err := tab.DeclareFormals(sym, spec.Params); err != nil {
		_, endErr := tab.EndScope()
		tab.Unwind(head)
		return nil, fmt.Errorf("%w: %s: %w", ErrBadParam, spec.Name, errors.Join(err, endErr))
	}
	if _, err := tab.EndScope(); err != nil {
		return nil, err
	}

	return sym, nil
}

// Float returns argument n as a float64.
func Float(args symbol.Args, n int) (float64, error) {
	v, err := args.Arg(n)
	if err != nil {
		return 0, err
	}
	return v.Float(), nil
}

// Str returns argument n as a string.
func Str(args symbol.Args, n int) (string, error) {
	v, err := args.Arg(n)
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}
