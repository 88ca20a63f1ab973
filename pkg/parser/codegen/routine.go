package codegen

import (
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/symbol"
	"cellar/pkg/types"

	"github.com/charmbracelet/log"
)

// Branch holds the reserved address cells of an if or while header
type Branch struct {
	Then bytecode.Addr // then branch, or loop body
	Else bytecode.Addr // else branch, NoAddr for while
	Next bytecode.Addr // first cell after the construct
}

// EmitIf lays down `if <then> <else> <next>`; the condition block follows
func (c *Codegen) EmitIf() Branch {
	c.EmitOpcode(bytecode.OpIf)
	return Branch{Then: c.Reserve(), Else: c.Reserve(), Next: c.Reserve()}
}

// EmitWhile lays down `while <body> <next>`; the condition block follows
func (c *Codegen) EmitWhile() Branch {
	c.EmitOpcode(bytecode.OpWhile)
	return Branch{Then: c.Reserve(), Else: bytecode.NoAddr, Next: c.Reserve()}
}

// BeginRoutine starts the definition of a user routine at the cursor
func (c *Codegen) BeginRoutine(sym *symbol.Symbol, kind symbol.Kind, ret *types.Descriptor) error {
	if sym.Kind != symbol.Undefined {
		err := fmt.Errorf("%s %w as %s", sym.Name, ErrRedefinition, sym.Kind)
		c.Fail(err)
		return err
	}

	sym.Kind = kind
	sym.Type = ret
	sym.Entry = c.Cursor()
	sym.LocalSize = 0
	sym.LocalSlots = 0
	c.routine = sym

	log.Debug("Begin routine", "name", sym.Name, "kind", kind, "entry", sym.Entry)

	return nil
}

// EndRoutine keeps the routine's code by moving the unit start past it
func (c *Codegen) EndRoutine() {
	if c.routine != nil {
		log.Debug("End routine", "name", c.routine.Name, "cells", int(c.Cursor()-c.routine.Entry))
	}

	c.progBase = c.Cursor()
	c.routine = nil
}

// DeclareLocal allocates a local of the routine being defined
func (c *Codegen) DeclareLocal(name string, typ *types.Descriptor) (*symbol.Symbol, error) {
	if c.routine == nil {
		err := fmt.Errorf("%w: %s", ErrLocalOutsideRoutine, name)
		c.Fail(err)
		return nil, err
	}

	sym, err := c.symbols.DeclareLocal(name, typ)
	if err != nil {
		c.Fail(err)
		return nil, err
	}

	sym.Slot = c.routine.LocalSlots
	c.routine.LocalSlots++
	c.routine.LocalSize = max(c.routine.LocalSize, sym.Offset+typ.Size())

	return sym, nil
}
