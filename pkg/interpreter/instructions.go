package interpreter

import (
	"fmt"
	"io"
	"strings"

	"cellar/pkg/bytecode"
	"cellar/pkg/cell"
	"cellar/pkg/symbol"
	"cellar/pkg/types"

	"github.com/charmbracelet/log"
)

// instruction is one dispatch table entry. exec runs with pc already past
// the opcode cell and consumes its own operands. disasm renders the operands
// starting at at and returns the address of the next opcode.
type instruction struct {
	exec   func(i *Interpreter) error
	disasm func(i *Interpreter, at bytecode.Addr, op bytecode.Opcode) (string, bytecode.Addr)
}

func (i *Interpreter) buildTable() {
	untyped := map[bytecode.Opcode]func(*Interpreter) error{
		bytecode.OpStop:      func(*Interpreter) error { return nil },
		bytecode.OpNop:       func(*Interpreter) error { return nil },
		bytecode.OpPop:       execPop,
		bytecode.OpDup:       execDup,
		bytecode.OpJump:      execJump,
		bytecode.OpJumpFalse: func(i *Interpreter) error { return i.condJump(false) },
		bytecode.OpJumpTrue:  func(i *Interpreter) error { return i.condJump(true) },
		bytecode.OpTruth:     func(i *Interpreter) error { return i.logical(false) },
		bytecode.OpNot:       func(i *Interpreter) error { return i.logical(true) },
		bytecode.OpIf:        execIf,
		bytecode.OpWhile:     execWhile,
		bytecode.OpCall:      execCall,
		bytecode.OpProcRet:   execProcRet,
		bytecode.OpFuncRet:   execFuncRet,
		bytecode.OpBltin0:    func(i *Interpreter) error { return i.bltin(0) },
		bytecode.OpBltin1:    func(i *Interpreter) error { return i.bltin(1) },
		bytecode.OpBltin2:    func(i *Interpreter) error { return i.bltin(2) },
		bytecode.OpBltinV:    func(i *Interpreter) error { return i.bltin(-1) },
		bytecode.OpPrStr:     execPrStr,
		bytecode.OpPrNl:      execPrNl,
		bytecode.OpSymbols:   func(i *Interpreter) error { return i.ListSymbols(i.out) },
	}

	for op, exec := range untyped {
		i.table[op] = instruction{exec: exec, disasm: disasmOperands}
	}
	i.table[bytecode.OpIf].disasm = disasmIf
	i.table[bytecode.OpWhile].disasm = disasmWhile

	for _, d := range i.types.All() {
		for _, f := range d.Families() {
			op, _ := d.Opcode(f)
			if exec := typedExec(f, d); exec != nil {
				i.table[op] = instruction{exec: exec, disasm: disasmOperands}
			}
		}
	}
}

func corrupt(c cell.Cell, want string) error {
	return fmt.Errorf("%w: %s cell where %s is expected", ErrCorruptCode, c.Kind(), want)
}

// operand consumes the cell at pc
func (i *Interpreter) operand() (cell.Cell, error) {
	c, err := i.store.Read(i.pc)
	if err != nil {
		return c, err
	}
	i.pc++
	return c, nil
}

func (i *Interpreter) symbolOperand() (*symbol.Symbol, error) {
	c, err := i.operand()
	if err != nil {
		return nil, err
	}
	sym, ok := c.Symbol()
	if !ok || sym == nil {
		return nil, corrupt(c, "a symbol")
	}
	return sym, nil
}

func (i *Interpreter) countOperand() (int, error) {
	c, err := i.operand()
	if err != nil {
		return 0, err
	}
	n, ok := c.Count()
	if !ok {
		return 0, corrupt(c, "a count")
	}
	return n, nil
}

func (i *Interpreter) addrOperand() (bytecode.Addr, error) {
	c, err := i.operand()
	if err != nil {
		return bytecode.NoAddr, err
	}
	addr, ok := c.Address()
	if !ok {
		return bytecode.NoAddr, corrupt(c, "an address")
	}
	return addr, nil
}

func (i *Interpreter) stringOperand() (string, error) {
	c, err := i.operand()
	if err != nil {
		return "", err
	}
	s, ok := c.Str()
	if !ok {
		return "", corrupt(c, "a string")
	}
	return s, nil
}

func (i *Interpreter) literalOperand() (types.Value, error) {
	c, err := i.operand()
	if err != nil {
		return types.Value{}, err
	}
	v, ok := c.Value()
	if !ok {
		return types.Value{}, corrupt(c, "a literal")
	}
	return v, nil
}

func execPop(i *Interpreter) error {
	_, err := i.pop()
	return err
}

func execDup(i *Interpreter) error {
	v, err := i.peek(0)
	if err != nil {
		return err
	}
	return i.push(*v)
}

func execJump(i *Interpreter) error {
	addr, err := i.addrOperand()
	if err != nil {
		return err
	}
	i.pc = addr
	return nil
}

func (i *Interpreter) condJump(when bool) error {
	addr, err := i.addrOperand()
	if err != nil {
		return err
	}
	v, err := i.pop()
	if err != nil {
		return err
	}
	if v.Truth() == when {
		i.pc = addr
	}
	return nil
}

func (i *Interpreter) logical(negate bool) error {
	v, err := i.peek(0)
	if err != nil {
		return err
	}
	*v = types.NewBool(v.Truth() != negate)
	return nil
}

// execIf runs `if then else next` followed by the condition block. Each part
// is a sub-execution ending at stop; a pending return skips the jump to next.
func execIf(i *Interpreter) error {
	thenAddr, err := i.addrOperand()
	if err != nil {
		return err
	}
	elseAddr, err := i.addrOperand()
	if err != nil {
		return err
	}
	next, err := i.addrOperand()
	if err != nil {
		return err
	}

	if err := i.nested(i.pc); err != nil {
		return err
	}
	cond, err := i.pop()
	if err != nil {
		return err
	}

	if cond.Truth() {
		err = i.nested(thenAddr)
	} else if elseAddr != bytecode.NoAddr {
		err = i.nested(elseAddr)
	}
	if err != nil {
		return err
	}

	if !i.returning {
		i.pc = next
	}
	return nil
}

// nested runs one block of an if or while up to its stop; the enclosing
// dispatch loop keeps running afterwards
func (i *Interpreter) nested(at bytecode.Addr) error {
	if err := i.execute(at); err != nil {
		return err
	}
	i.state = Running
	return nil
}

// execWhile runs `while body next` followed by the condition block.
func execWhile(i *Interpreter) error {
	body, err := i.addrOperand()
	if err != nil {
		return err
	}
	next, err := i.addrOperand()
	if err != nil {
		return err
	}
	cond := i.pc

	for {
		if err := i.nested(cond); err != nil {
			return err
		}
		v, err := i.pop()
		if err != nil {
			return err
		}
		if !v.Truth() {
			break
		}
		if err := i.nested(body); err != nil {
			return err
		}
		if i.returning {
			break
		}
	}

	if !i.returning {
		i.pc = next
	}
	return nil
}

func execCall(i *Interpreter) error {
	sym, err := i.symbolOperand()
	if err != nil {
		return err
	}
	n, err := i.countOperand()
	if err != nil {
		return err
	}

	if sym.Kind != symbol.Func && sym.Kind != symbol.Proc {
		return fmt.Errorf("%w: %s", ErrUndefinedRoutine, sym.Name)
	}
	if n != len(sym.Formals) {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArgCount, sym.Name, len(sym.Formals), n)
	}

	if err := i.pushFrame(sym, n); err != nil {
		return err
	}
	resume := i.pc
	if i.trace {
		log.Debug("Call", "name", sym.Name, "args", n, "frames", i.FrameDepth())
	}

	if err := i.execute(sym.Entry); err != nil {
		return err
	}
	if !i.returning {
		return fmt.Errorf("%w: %s ended without a return", ErrCorruptCode, sym.Name)
	}

	i.popFrame()
	i.pc = resume
	i.returning = false
	i.state = Running

	if i.trace {
		log.Debug("Return", "name", sym.Name, "sp", i.sp)
	}
	return nil
}

func execProcRet(i *Interpreter) error {
	f := i.frame()
	if f == nil {
		return ErrUnexpectedReturn
	}
	if f.Routine.Kind.IsFunction() {
		return fmt.Errorf("%w: %s", ErrNoReturnValue, f.Routine.Name)
	}
	return i.ret()
}

func execFuncRet(i *Interpreter) error {
	f := i.frame()
	if f == nil || !f.Routine.Kind.IsFunction() {
		return ErrUnexpectedReturn
	}
	v, err := i.pop()
	if err != nil {
		return err
	}
	if err := i.ret(); err != nil {
		return err
	}
	return i.push(v)
}

// bltin calls a native routine; a negative n reads the count from the stream
func (i *Interpreter) bltin(n int) error {
	sym, err := i.symbolOperand()
	if err != nil {
		return err
	}
	if n < 0 {
		if n, err = i.countOperand(); err != nil {
			return err
		}
	}

	if !sym.Kind.IsBuiltin() || sym.Native == nil {
		return fmt.Errorf("%w: %s", ErrUndefinedRoutine, sym.Name)
	}
	if n != len(sym.Formals) {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArgCount, sym.Name, len(sym.Formals), n)
	}
	if i.sp < n {
		return ErrStackUnderflow
	}

	v, err := sym.Native(window{it: i, base: i.sp - n, n: n})
	if err != nil {
		return fmt.Errorf("%s: %w", sym.Name, err)
	}
	for k := 0; k < n; k++ {
		if _, err := i.pop(); err != nil {
			return err
		}
	}

	if sym.Kind != symbol.BuiltinFunc {
		return nil
	}
	if sym.Type != nil {
		v = sym.Type.Convert(v)
	}
	return i.push(v)
}

func execPrStr(i *Interpreter) error {
	s, err := i.stringOperand()
	if err != nil {
		return err
	}
	_, err = io.WriteString(i.out, s)
	return err
}

func execPrNl(i *Interpreter) error {
	_, err := io.WriteString(i.out, "\n")
	return err
}

// readToken reads one whitespace-delimited word from the input
func (i *Interpreter) readToken() (string, error) {
	var sb strings.Builder
	for {
		r, _, err := i.in.ReadRune()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		if strings.ContainsRune(" \t\r\n\v\f", r) {
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			continue
		}
		sb.WriteRune(r)
	}
}
