package symbol_test

import (
	"errors"
	"testing"

	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

func TestShadowing(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	outer := tab.Install("x", symbol.GlobalVar)

	tab.StartScope()
	inner, err := tab.DeclareLocal("x", reg.Long())
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := tab.Lookup("x"); got != inner {
		t.Errorf("expected inner x while the scope is open")
	}
	if _, err := tab.EndScope(); err != nil {
		t.Fatal(err)
	}
	if got, _ := tab.Lookup("x"); got != outer {
		t.Errorf("expected outer x after the scope closed, got %v", got)
	}

	tab.StartScope()
	if _, err := tab.DeclareLocal("y", reg.Long()); err != nil {
		t.Fatal(err)
	}
	tab.EndScope()
	if _, ok := tab.Lookup("y"); ok {
		t.Errorf("y must not be visible outside its scope")
	}
}

func TestInstallNeverReplaces(t *testing.T) {
	tab := symbol.NewTable()
	first := tab.Install("a", symbol.GlobalVar)
	second := tab.Install("a", symbol.Const)

	if first == second {
		t.Fatal("expected a new symbol")
	}
	if second.Next() != first || first.Kind != symbol.GlobalVar {
		t.Errorf("existing entry must be left untouched")
	}
	if len(tab.All()) != 2 {
		t.Errorf("expected 2 symbols, got %d", len(tab.All()))
	}
}

func TestLookupInScope(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	tab.Install("g", symbol.GlobalVar)

	if _, ok := tab.LookupInScope("g"); !ok {
		t.Errorf("without a scope the global chain is searched")
	}

	tab.StartScope()
	if _, ok := tab.LookupInScope("g"); ok {
		t.Errorf("g belongs to the enclosing scope")
	}
	tab.DeclareLocal("l", reg.Short())
	if _, ok := tab.LookupInScope("l"); !ok {
		t.Errorf("expected l in the current scope")
	}
	if _, err := tab.DeclareLocal("l", reg.Short()); !errors.Is(err, symbol.ErrRedeclared) {
		t.Errorf("expected ErrRedeclared, got %v", err)
	}
}

func TestScopeOffsets(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()

	tab.StartScope()
	a, _ := tab.DeclareLocal("a", reg.Long())
	b, _ := tab.DeclareLocal("b", reg.Short())
	inner := tab.StartScope()
	c, _ := tab.DeclareLocal("c", reg.Double())

	if a.Offset != 0 || b.Offset != 8 {
		t.Errorf("unexpected outer offsets a=%d b=%d", a.Offset, b.Offset)
	}
	if inner.Base() != 10 || c.Offset != 10 {
		t.Errorf("expected inner scope to start at 10, got base=%d c=%d", inner.Base(), c.Offset)
	}
}

func TestEndScope(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()

	if _, err := tab.EndScope(); !errors.Is(err, symbol.ErrNoScope) {
		t.Errorf("expected ErrNoScope, got %v", err)
	}

	before := tab.Install("g", symbol.GlobalVar)
	tab.StartScope()
	last, _ := tab.DeclareLocal("l", reg.Long())
	old, err := tab.EndScope()
	if err != nil {
		t.Fatal(err)
	}
	if old != last {
		t.Errorf("expected EndScope to return the previous head")
	}
	if tab.Head() != before {
		t.Errorf("expected head to be restored to the sentinel")
	}

	tab.StartScope()
	tab.Install("oops", symbol.Func)
	if _, err := tab.EndScope(); !errors.Is(err, symbol.ErrScopeCorrupt) {
		t.Errorf("expected ErrScopeCorrupt, got %v", err)
	}
	if tab.Head() != before {
		t.Errorf("a corrupt scope must still be discarded")
	}
}

func TestOffsetMonotonicity(t *testing.T) {
	reg := types.NewRegistry()
	byteType, _ := reg.Lookup(types.Byte)
	floatType, _ := reg.Lookup(types.Float)

	tab := symbol.NewTable()
	fn := tab.Install("f", symbol.Func)
	fn.Type = reg.Double()

	tab.StartScope()
	err := tab.DeclareFormals(fn, []symbol.Formal{
		{Name: "p1", Type: reg.Long()},
		{Name: "p2", Type: byteType},
		{Name: "p3", Type: floatType},
	})
	if err != nil {
		t.Fatal(err)
	}
	p1, p2, p3 := fn.Formals[0], fn.Formals[1], fn.Formals[2]

	if p2.Offset-p1.Offset != 8 || p3.Offset-p2.Offset != 1 {
		t.Errorf("offsets not monotonic by size: %d %d %d", p1.Offset, p2.Offset, p3.Offset)
	}
	if fn.ArgSize != 13 {
		t.Errorf("expected argument size 13, got %d", fn.ArgSize)
	}
	if p3.Offset+4 != 0 {
		t.Errorf("last parameter must end at the frame pointer, got %d", p3.Offset)
	}
	if fn.RetOffset != -21 {
		t.Errorf("expected result offset -21, got %d", fn.RetOffset)
	}
	for i, p := range fn.Formals {
		if p.Slot != i+1 || p.Kind != symbol.Param {
			t.Errorf("%s: unexpected slot %d kind %s", p.Name, p.Slot, p.Kind)
		}
	}

	if _, err := tab.EndScope(); err != nil {
		t.Errorf("parameters must be accepted at teardown: %v", err)
	}
}

func TestDuplicateFormals(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	fn := tab.Install("p", symbol.Proc)

	if err := tab.DeclareFormals(fn, nil); !errors.Is(err, symbol.ErrNoScope) {
		t.Errorf("expected ErrNoScope, got %v", err)
	}

	tab.StartScope()
	err := tab.DeclareFormals(fn, []symbol.Formal{{Name: "a", Type: reg.Long()}, {Name: "a", Type: reg.Long()}})
	if !errors.Is(err, symbol.ErrRedeclared) {
		t.Errorf("expected ErrRedeclared, got %v", err)
	}
}

func TestRollback(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	tab.Install("keep", symbol.GlobalVar)
	head := tab.Head()

	tab.Install("drop", symbol.Undefined)
	tab.StartScope()
	tab.DeclareLocal("l", reg.Long())

	tab.Rollback(head)
	if _, ok := tab.Lookup("drop"); ok {
		t.Errorf("expected drop to be rolled back")
	}
	if tab.Depth() != 0 {
		t.Errorf("expected scopes to be cleared, depth %d", tab.Depth())
	}
	if _, ok := tab.Lookup("keep"); !ok {
		t.Errorf("expected keep to survive")
	}
}

func TestInstallGlobal(t *testing.T) {
	reg := types.NewRegistry()
	tab := symbol.NewTable()
	tab.Install("before", symbol.GlobalVar)

	tab.StartScope()
	tab.StartScope()
	g := tab.InstallGlobal("g", symbol.Undefined)
	if _, err := tab.DeclareLocal("l", reg.Long()); err != nil {
		t.Fatal(err)
	}
	if _, ok := tab.LookupInScope("g"); ok {
		t.Errorf("g must not belong to the inner scope")
	}
	tab.InstallGlobal("h", symbol.Undefined)

	for range 2 {
		if _, err := tab.EndScope(); err != nil {
			t.Fatal(err)
		}
	}
	if got, ok := tab.Lookup("g"); !ok || got != g {
		t.Errorf("expected g to survive the scopes")
	}
	if _, ok := tab.Lookup("h"); !ok {
		t.Errorf("expected h to survive the scopes")
	}
	if _, ok := tab.Lookup("l"); ok {
		t.Errorf("l must be dropped with its scope")
	}

	top := tab.InstallGlobal("top", symbol.GlobalVar)
	if tab.Head() != top {
		t.Errorf("without scopes InstallGlobal must install at the head")
	}
}
