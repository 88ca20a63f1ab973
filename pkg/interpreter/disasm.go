package interpreter

import (
	"fmt"
	"io"
	"strings"

	"cellar/pkg/bytecode"
	"cellar/pkg/cell"
)

// Disassemble writes the cells in [from, to) one instruction per line
func (i *Interpreter) Disassemble(w io.Writer, from, to bytecode.Addr) error {
	if to > i.store.Cursor() {
		to = i.store.Cursor()
	}

	for at := from; at < to; {
		c, err := i.store.Read(at)
		if err != nil {
			return err
		}

		op, ok := c.Opcode()
		if !ok || !op.Valid() || i.table[op].disasm == nil {
			if _, err := fmt.Fprintf(w, "%04d %-12s %s\n", at, "."+c.Kind().String(), c.Text()); err != nil {
				return err
			}
			at++
			continue
		}

		detail, next := i.table[op].disasm(i, at+1, op)
		line := fmt.Sprintf("%04d %-12s", at, op)
		if detail != "" {
			line += " " + detail
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		at = next
	}

	return nil
}

// DisassembleRoutine writes the code of a user routine up to its end
func (i *Interpreter) DisassembleRoutine(w io.Writer, name string) error {
	sym, ok := i.symbols.Lookup(name)
	if !ok || sym.Entry == bytecode.NoAddr {
		return fmt.Errorf("%w: %s", ErrUndefinedRoutine, name)
	}

	end := i.cg.ProgBase()
	for _, other := range i.symbols.All() {
		if other.Entry > sym.Entry && other.Entry < end {
			end = other.Entry
		}
	}

	if _, err := fmt.Fprintf(w, "%s %s (args=%d, locals=%d)\n", sym.Kind, sym.Name, sym.ArgSize, sym.LocalSlots); err != nil {
		return err
	}
	return i.Disassemble(w, sym.Entry, end)
}

// operandCells reads the cells of op's operand layout
func (i *Interpreter) operandCells(at bytecode.Addr, op bytecode.Opcode) ([]cell.Cell, bytecode.Addr) {
	layout := op.Operands()
	cells := make([]cell.Cell, 0, len(layout))
	for range layout {
		c, err := i.store.Read(at)
		if err != nil {
			break
		}
		cells = append(cells, c)
		at++
	}
	return cells, at
}

func disasmOperands(i *Interpreter, at bytecode.Addr, op bytecode.Opcode) (string, bytecode.Addr) {
	cells, next := i.operandCells(at, op)
	parts := make([]string, len(cells))
	for k, c := range cells {
		parts[k] = c.Text()
	}
	return strings.Join(parts, " "), next
}

func disasmIf(i *Interpreter, at bytecode.Addr, op bytecode.Opcode) (string, bytecode.Addr) {
	cells, next := i.operandCells(at, op)
	if len(cells) != 3 {
		return "?", next
	}
	return fmt.Sprintf("then=%s else=%s next=%s", cells[0].Text(), cells[1].Text(), cells[2].Text()), next
}

func disasmWhile(i *Interpreter, at bytecode.Addr, op bytecode.Opcode) (string, bytecode.Addr) {
	cells, next := i.operandCells(at, op)
	if len(cells) != 2 {
		return "?", next
	}
	return fmt.Sprintf("body=%s next=%s", cells[0].Text(), cells[1].Text()), next
}
