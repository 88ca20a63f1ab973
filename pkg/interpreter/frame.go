package interpreter

import (
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

// Frame represents a routine call record.
type Frame struct {
	Routine *symbol.Symbol // callee
	RetPC   bytecode.Addr  // where the caller resumes
	ArgN    int            // operand stack index of the last argument
	NArgs   int            // number of arguments
	Locals  []types.Value  // local slots of the activation
}

// pushFrame opens a frame for a call whose nargs arguments are on the stack
func (i *Interpreter) pushFrame(sym *symbol.Symbol, nargs int) error {
	if i.fp == 0 {
		return fmt.Errorf("%w: %d frames", ErrCallStackExhausted, len(i.frames))
	}
	if i.sp < nargs {
		return ErrStackUnderflow
	}

	i.fp--
	i.frames[i.fp] = Frame{
		Routine: sym,
		RetPC:   i.pc,
		ArgN:    i.sp - 1,
		NArgs:   nargs,
		Locals:  make([]types.Value, sym.LocalSlots),
	}

	return nil
}

// popFrame discards the current frame
func (i *Interpreter) popFrame() {
	if i.fp < len(i.frames) {
		i.frames[i.fp] = Frame{}
		i.fp++
	}
}

// frame returns the current frame, or nil at top level
func (i *Interpreter) frame() *Frame {
	if i.fp >= len(i.frames) {
		return nil
	}
	return &i.frames[i.fp]
}

// argIndex resolves a 1-based argument position to an operand stack index
func (i *Interpreter) argIndex(n int) (int, error) {
	f := i.frame()
	if f == nil {
		return 0, fmt.Errorf("%w: $%d used outside a routine", ErrArgumentIndexOutOfRange, n)
	}
	if n < 1 || n > f.NArgs {
		return 0, fmt.Errorf("%w: $%d of %s with %d arguments", ErrArgumentIndexOutOfRange, n, f.Routine.Name, f.NArgs)
	}
	return f.ArgN - f.NArgs + n, nil
}

// localSlot returns the storage of a local of the current frame
func (i *Interpreter) localSlot(n int) (*types.Value, error) {
	f := i.frame()
	if f == nil || n < 0 || n >= len(f.Locals) {
		return nil, fmt.Errorf("%w: local slot %d", ErrCorruptCode, n)
	}
	return &f.Locals[n], nil
}

// ret pops the arguments of the current frame and starts unwinding
func (i *Interpreter) ret() error {
	f := i.frame()
	if f == nil {
		return ErrUnexpectedReturn
	}
	for n := 0; n < f.NArgs; n++ {
		if _, err := i.pop(); err != nil {
			return err
		}
	}
	i.pc = f.RetPC
	i.returning = true
	i.state = Returning
	return nil
}

// window exposes arguments on the operand stack to native callbacks
type window struct {
	it   *Interpreter
	base int // operand stack index of the first argument
	n    int
}

func (w window) Len() int {
	return w.n
}

func (w window) Arg(n int) (types.Value, error) {
	if n < 1 || n > w.n {
		return types.Value{}, fmt.Errorf("%w: $%d of %d", ErrArgumentIndexOutOfRange, n, w.n)
	}
	return w.it.stack[w.base+n-1], nil
}

func (w window) SetArg(n int, v types.Value) error {
	if n < 1 || n > w.n {
		return fmt.Errorf("%w: $%d of %d", ErrArgumentIndexOutOfRange, n, w.n)
	}
	w.it.stack[w.base+n-1] = v
	return nil
}
