package builtin_test

import (
	"errors"
	"testing"

	"cellar/pkg/builtin"
	_ "cellar/pkg/builtin/all"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

func noop(symbol.Args) (types.Value, error) { return types.Value{}, nil }

func TestRegister(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()

	fn, err := builtin.Register(tab, builtin.Spec{
		Name:    "hypot",
		Returns: reg.Double(),
		Fn:      noop,
		Params:  []symbol.Formal{{Name: "a", Type: reg.Double()}, {Name: "b", Type: reg.Double()}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if fn.Kind != symbol.BuiltinFunc || fn.ArgSize != 16 || len(fn.Formals) != 2 {
		t.Errorf("unexpected builtin %s args=%d formals=%d", fn, fn.ArgSize, len(fn.Formals))
	}
	if fn.Formals[1].Offset-fn.Formals[0].Offset != 8 {
		t.Errorf("parameter offsets must follow the routine layout")
	}
	if tab.Depth() != 0 {
		t.Errorf("registration must close its scope")
	}
	if _, ok := tab.Lookup("a"); ok {
		t.Errorf("parameters must not leak into the global scope")
	}

	proc, err := builtin.Register(tab, builtin.Spec{Name: "beep", Fn: noop})
	if err != nil {
		t.Fatal(err)
	}
	if proc.Kind != symbol.BuiltinProc {
		t.Errorf("expected a builtin procedure, got %s", proc.Kind)
	}
}

func TestRegisterFailures(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	builtin.Register(tab, builtin.Spec{Name: "f", Fn: noop})
	head := tab.Head()

	tests := []struct {
		spec builtin.Spec
		err  error
	}{
		{builtin.Spec{Name: "f", Fn: noop}, builtin.ErrAlreadyRegistered},
		{builtin.Spec{Name: "g"}, builtin.ErrNoCallback},
		{builtin.Spec{Name: "h", Fn: noop, Params: []symbol.Formal{{Name: "x", Type: reg.Long()}, {Name: "x", Type: reg.Long()}}}, builtin.ErrBadParam},
		{builtin.Spec{Name: "k", Fn: noop, Params: []symbol.Formal{{Name: "x"}}}, builtin.ErrBadParam},
	}

	for _, test := range tests {
		if _, err := builtin.Register(tab, test.spec); !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.spec.Name, test.err, err)
		}
		if tab.Head() != head {
			t.Errorf("%s: a failed registration must not install anything", test.spec.Name)
		}
		if tab.Depth() != 0 {
			t.Errorf("%s: a failed registration must close its scope", test.spec.Name)
		}
	}
}

func TestRegisterDuplicateParams(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	outer := tab.StartScope()
	head := tab.Head()

	_, err := builtin.Register(tab, builtin.Spec{
		Name:   "twice",
		Fn:     noop,
		Params: []symbol.Formal{{Name: "x", Type: reg.Long()}, {Name: "x", Type: reg.Double()}},
	})
	if !errors.Is(err, builtin.ErrBadParam) || !errors.Is(err, symbol.ErrRedeclared) {
		t.Fatalf("expected ErrBadParam wrapping ErrRedeclared, got %v", err)
	}
	if tab.Head() != head {
		t.Errorf("the failed builtin and its parameters must be unlinked")
	}
	if sc, ok := tab.Scope(); !ok || sc != outer || tab.Depth() != 1 {
		t.Errorf("an enclosing scope must survive a failed registration")
	}
	if _, ok := tab.Lookup("twice"); ok {
		t.Errorf("twice must not be visible")
	}
}

func TestCatalog(t *testing.T) {
	names := []string{}
	for _, p := range builtin.Plugins() {
		names = append(names, p.Name)
	}
	if len(names) != 2 || names[0] != "math" || names[1] != "string" {
		t.Errorf("unexpected catalog %v", names)
	}

	reg := types.NewRegistry()
	tab := symbol.NewTable()
	if err := builtin.Install(tab, reg); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"sin", "atan2", "rand", "len", "num"} {
		if _, ok := tab.Lookup(name); !ok {
			t.Errorf("expected %s to be installed", name)
		}
	}

	if err := builtin.Install(tab, reg); !errors.Is(err, builtin.ErrAlreadyRegistered) {
		t.Errorf("installing twice must fail, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected a duplicate plugin to panic")
		}
	}()
	builtin.Add(builtin.Plugin{Name: "math", Install: func(*symbol.Table, *types.Registry) error { return nil }})
}
