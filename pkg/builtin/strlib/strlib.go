// Package strlib provides the string builtins.
package strlib

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cellar/pkg/builtin"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

func init() {
	builtin.Add(builtin.Plugin{Name: "string", Install: install})
}

func install(tab *symbol.Table, reg *types.Registry) error {
	s := []symbol.Formal{{Name: "s", Type: reg.Str()}}

	return builtin.RegisterAll(tab, []builtin.Spec{
		{Name: "len", Returns: reg.Long(), Params: s, Fn: length},
		{Name: "upper", Returns: reg.Str(), Params: s, Fn: mapString(strings.ToUpper)},
		{Name: "lower", Returns: reg.Str(), Params: s, Fn: mapString(strings.ToLower)},
		{Name: "str", Returns: reg.Str(), Params: []symbol.Formal{{Name: "x", Type: reg.Double()}}, Fn: toString(reg.Double())},
		{Name: "num", Returns: reg.Double(), Params: s, Fn: toNumber},
	})
}

func length(args symbol.Args) (types.Value, error) {
	s, err := builtin.Str(args, 1)
	if err != nil {
		return types.Value{}, err
	}
	return types.NewInt(int64(utf8.RuneCountInString(s))), nil
}

func mapString(fn func(string) string) symbol.Native {
	return func(args symbol.Args) (types.Value, error) {
		s, err := builtin.Str(args, 1)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewString(fn(s)), nil
	}
}

func toString(d *types.Descriptor) symbol.Native {
	return func(args symbol.Args) (types.Value, error) {
		v, err := args.Arg(1)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewString(d.Format(v)), nil
	}
}

func toNumber(args symbol.Args) (types.Value, error) {
	s, err := builtin.Str(args, 1)
	if err != nil {
		return types.Value{}, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return types.Value{}, fmt.Errorf("%w: %q", builtin.ErrMalformedNumber, s)
	}
	return types.NewFloat(f), nil
}
