package symbol

import (
	"errors"
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/intern"
	"cellar/pkg/stack"
	"cellar/pkg/types"
)

var (
	ErrNoScope      = errors.New("no open scope")
	ErrScopeCorrupt = errors.New("scope holds a non-local symbol")
	ErrRedeclared   = errors.New("name already declared in this scope")
)

// Scope bounds the symbols declared since it was opened.
type Scope struct {
	sentinel *Symbol // head of the chain when the scope opened
	base     int     // first frame offset available to the scope
	size     int     // bytes allocated in the scope so far
}

// Base returns the first offset owned by the scope.
func (s *Scope) Base() int { return s.base }

// Size returns the number of bytes allocated in the scope.
func (s *Scope) Size() int { return s.size }

// Table is the chained symbol table with its lexical scope stack.
type Table struct {
	head   *Symbol
	scopes *stack.Stack[*Scope]
	pool   *intern.Pool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		scopes: stack.New[*Scope](),
		pool:   intern.New(),
	}
}

// Install always creates a new symbol at the front of the chain.
func (t *Table) Install(name string, kind Kind) *Symbol {
	sym := &Symbol{
		Name:  t.pool.Intern(name),
		Kind:  kind,
		Entry: bytecode.NoAddr,
		next:  t.head,
	}
	t.head = sym
	return sym
}

// InstallGlobal creates a symbol below every open scope, so closing them
// keeps it. Without an open scope it is Install.
func (t *Table) InstallGlobal(name string, kind Kind) *Symbol {
	scopes := t.scopes.Array()
	if len(scopes) == 0 {
		return t.Install(name, kind)
	}

	outer := scopes[0].sentinel
	sym := &Symbol{
		Name:  t.pool.Intern(name),
		Kind:  kind,
		Entry: bytecode.NoAddr,
		next:  outer,
	}
	if t.head == outer {
		t.head = sym
	} else {
		p := t.head
		for p.next != outer {
			p = p.next
		}
		p.next = sym
	}
	for _, sc := range scopes {
		if sc.sentinel == outer {
			sc.sentinel = sym
		}
	}
	return sym
}

// Lookup returns the most recently installed symbol with the given name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for sym := t.head; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// LookupInScope searches only the symbols of the current scope. Without an
// open scope the whole chain is the global scope.
func (t *Table) LookupInScope(name string) (*Symbol, bool) {
	var stop *Symbol
	if sc, ok := t.scopes.Peek(); ok {
		stop = sc.sentinel
	}
	for sym := t.head; sym != nil && sym != stop; sym = sym.next {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// StartScope opens a scope whose offsets continue from the enclosing one.
func (t *Table) StartScope() *Scope {
	base := 0
	if outer, ok := t.scopes.Peek(); ok {
		base = outer.base + outer.size
	}
	sc := &Scope{sentinel: t.head, base: base}
	t.scopes.Push(sc)
	return sc
}

// EndScope closes the current scope and drops its symbols from the chain.
// It returns the head of the chain as it was before closing.
func (t *Table) EndScope() (*Symbol, error) {
	sc, ok := t.scopes.Pop()
	if !ok {
		return nil, ErrNoScope
	}
	old := t.head
	for sym := old; sym != nil && sym != sc.sentinel; sym = sym.next {
		switch sym.Kind {
		case LocalVar, Param, Main:
		default:
			t.head = sc.sentinel
			return old, fmt.Errorf("%w: %s", ErrScopeCorrupt, sym)
		}
	}
	t.head = sc.sentinel
	return old, nil
}

// Scope returns the innermost open scope.
func (t *Table) Scope() (*Scope, bool) {
	return t.scopes.Peek()
}

// Depth returns the number of open scopes.
func (t *Table) Depth() int {
	return t.scopes.Size()
}

// DeclareLocal installs a local variable at the next offset of the current scope.
func (t *Table) DeclareLocal(name string, typ *types.Descriptor) (*Symbol, error) {
	sc, ok := t.scopes.Peek()
	if !ok {
		return nil, ErrNoScope
	}
	if _, dup := t.LookupInScope(name); dup {
		return nil, fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	sym := t.Install(name, LocalVar)
	sym.Type = typ
	sym.Offset = sc.base + sc.size
	sc.size += typ.Size()
	return sym, nil
}

// DeclareFormals installs the parameters of routine into the current scope
// and computes their offsets, the argument size and the result offset.
func (t *Table) DeclareFormals(routine *Symbol, params []Formal) error {
	if _, ok := t.scopes.Peek(); !ok {
		return ErrNoScope
	}
	formals := make([]*Symbol, 0, len(params))
	for _, p := range params {
		if _, dup := t.LookupInScope(p.Name); dup {
			return fmt.Errorf("%w: %s", ErrRedeclared, p.Name)
		}
		sym := t.Install(p.Name, Param)
		sym.Type = p.Type
		formals = append(formals, sym)
	}

	routine.Formals = formals
	routine.ArgSize = AssignOffsets(formals)
	if routine.Kind.IsFunction() && routine.Type != nil {
		routine.RetOffset = -(routine.ArgSize + routine.Type.Size())
	}
	return nil
}

// AssignOffsets lays parameters out below the frame pointer in two passes:
// increasing offsets first, then biased by the total so the last parameter
// ends right under the frame. It returns the total argument size.
func AssignOffsets(formals []*Symbol) int {
	total := 0
	for i, sym := range formals {
		sym.Offset = total
		sym.Slot = i + 1
		total += sym.Type.Size()
	}
	for _, sym := range formals {
		sym.Offset -= total
	}
	return total
}

// Head returns the most recent symbol.
func (t *Table) Head() *Symbol {
	return t.head
}

// Unwind drops the symbols installed after head. Open scopes are kept, so
// head must not be older than the innermost scope's sentinel.
func (t *Table) Unwind(head *Symbol) {
	t.head = head
}

// Rollback restores the chain to a previously observed head and drops all
// open scopes. Only the top-level recovery point uses it.
func (t *Table) Rollback(head *Symbol) {
	t.Unwind(head)
	t.scopes.Clear()
}

// All returns every reachable symbol, most recent first.
func (t *Table) All() []*Symbol {
	var out []*Symbol
	for sym := t.head; sym != nil; sym = sym.next {
		out = append(out, sym)
	}
	return out
}
