package codegen

import (
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/cell"
	"cellar/pkg/symbol"
	"cellar/pkg/types"

	"github.com/charmbracelet/log"
)

type Codegen struct {
	store    *cell.Store     // Cell store receiving code and literals
	symbols  *symbol.Table   // Symbol table and scope stack
	types    *types.Registry // Storage type descriptors
	progBase bytecode.Addr   // Start of the unit being generated
	routine  *symbol.Symbol  // Routine being defined, nil at top level
	err      error           // First error of the unit
}

// NewCodegen creates a code generator writing into store
func NewCodegen(store *cell.Store, symbols *symbol.Table, registry *types.Registry) *Codegen {
	return &Codegen{
		store:    store,
		symbols:  symbols,
		types:    registry,
		progBase: store.Cursor(),
	}
}

func (c *Codegen) Store() *cell.Store      { return c.store }
func (c *Codegen) Symbols() *symbol.Table  { return c.symbols }
func (c *Codegen) Types() *types.Registry  { return c.types }
func (c *Codegen) Routine() *symbol.Symbol { return c.routine }
func (c *Codegen) ProgBase() bytecode.Addr { return c.progBase }
func (c *Codegen) Cursor() bytecode.Addr   { return c.store.Cursor() }

// Err returns the first error recorded since the last ResetUnit
func (c *Codegen) Err() error {
	return c.err
}

// Fail records err unless an earlier error is already pending
func (c *Codegen) Fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

// emit appends one cell; after the first failure nothing is written
func (c *Codegen) emit(v cell.Cell) bytecode.Addr {
	if c.err != nil {
		return bytecode.NoAddr
	}

	at, err := c.store.Append(v)
	if err != nil {
		c.Fail(err)
		return bytecode.NoAddr
	}

	return at
}

// EmitOpcode appends an opcode cell
func (c *Codegen) EmitOpcode(op bytecode.Opcode) bytecode.Addr {
	return c.emit(cell.NewOpcode(op))
}

// EmitSymbol appends a symbol reference
func (c *Codegen) EmitSymbol(sym *symbol.Symbol) bytecode.Addr {
	return c.emit(cell.NewSymbol(sym))
}

// EmitLiteral appends a literal in the representation of d
func (c *Codegen) EmitLiteral(v types.Value, d *types.Descriptor) bytecode.Addr {
	return c.emit(cell.Literal(v, d))
}

// EmitString appends a string reference
func (c *Codegen) EmitString(s string) bytecode.Addr {
	return c.emit(cell.NewString(s))
}

// EmitCount appends a small integer operand
func (c *Codegen) EmitCount(n int) bytecode.Addr {
	return c.emit(cell.NewCount(n))
}

// EmitAddress appends an address operand; NoAddr stands for "absent"
func (c *Codegen) EmitAddress(addr bytecode.Addr) bytecode.Addr {
	return c.emit(cell.NewAddress(addr))
}

// Reserve appends a placeholder for a forward address
func (c *Codegen) Reserve() bytecode.Addr {
	return c.EmitAddress(bytecode.NoAddr)
}

// Patch overwrites a reserved cell with its resolved target
func (c *Codegen) Patch(at, target bytecode.Addr) {
	if c.err != nil {
		return
	}

	old, err := c.store.Read(at)
	if err != nil {
		c.Fail(err)
		return
	}
	if _, ok := old.Address(); !ok {
		c.Fail(fmt.Errorf("%w: %04d holds %s", ErrBadPatch, at, old.Kind()))
		return
	}

	log.Debug("Backpatch", "at", at, "target", target)
	c.Fail(c.store.Write(at, cell.NewAddress(target)))
}

// PatchHere resolves a reserved cell to the current cursor
func (c *Codegen) PatchHere(at bytecode.Addr) {
	c.Patch(at, c.Cursor())
}

// EmitTyped appends the opcode implementing f for storage type d
func (c *Codegen) EmitTyped(f bytecode.Family, d *types.Descriptor) bytecode.Addr {
	op, ok := d.Opcode(f)
	if !ok {
		c.Fail(fmt.Errorf("%w: %s on %s", ErrOperatorUndefined, f, d))
		return bytecode.NoAddr
	}

	return c.EmitOpcode(op)
}

// Convert coerces the value on top of the stack from one type to another
func (c *Codegen) Convert(from, to *types.Descriptor) {
	if from == to {
		return
	}
	if from.Is(types.Pointer) != to.Is(types.Pointer) {
		c.Fail(fmt.Errorf("%w: cannot convert %s to %s", types.ErrTypeMismatch, from, to))
		return
	}

	c.EmitTyped(bytecode.FamCvt, to)
}

// ConvertUnder coerces the value just below the top of the stack
func (c *Codegen) ConvertUnder(from, to *types.Descriptor) {
	if from == to {
		return
	}
	if from.Is(types.Pointer) != to.Is(types.Pointer) {
		c.Fail(fmt.Errorf("%w: cannot convert %s to %s", types.ErrTypeMismatch, from, to))
		return
	}

	c.EmitTyped(bytecode.FamCvtUnder, to)
}

// ResetUnit discards the code of the unit being generated and clears the error
func (c *Codegen) ResetUnit() {
	c.store.Truncate(c.progBase)
	c.err = nil

	if c.routine != nil {
		log.Debug("Abandon routine", "name", c.routine.Name)
		c.routine.Kind = symbol.Undefined
		c.routine.Entry = bytecode.NoAddr
		c.routine = nil
	}
}
