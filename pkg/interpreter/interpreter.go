package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"cellar/pkg/bytecode"
	"cellar/pkg/cell"
	"cellar/pkg/parser/codegen"
	"cellar/pkg/symbol"
	"cellar/pkg/types"

	"github.com/charmbracelet/log"
)

const (
	DefaultStackSize  = 256
	DefaultFrameDepth = 100
)

var (
	ErrStackOverflow           = errors.New("stack too deep")
	ErrStackUnderflow          = errors.New("stack underflow")
	ErrCallStackExhausted      = errors.New("call nested too deeply")
	ErrUndefinedVariable       = errors.New("undefined variable")
	ErrUndefinedRoutine        = errors.New("undefined routine")
	ErrNotVariable             = errors.New("not a variable")
	ErrArgumentIndexOutOfRange = errors.New("argument index out of range")
	ErrArgCount                = errors.New("wrong number of arguments")
	ErrNoReturnValue           = errors.New("function returns no value")
	ErrUnexpectedReturn        = errors.New("return outside a function")
	ErrMalformedInput          = errors.New("malformed input")
	ErrCorruptCode             = errors.New("corrupt code")
	ErrMaxStepsExceeded        = errors.New("maximum steps exceeded")
)

// RuntimeError reports the instruction that failed.
type RuntimeError struct {
	PC  bytecode.Addr   // address of the failing opcode
	Op  bytecode.Opcode // failing opcode
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %04d: %v", e.Op, e.PC, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// State is the execution state of the engine.
type State uint8

const (
	Idle State = iota
	Running
	Returning
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Returning:
		return "returning"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Interpreter executes the cell store produced by its code generator
type Interpreter struct {
	store   *cell.Store      // code and literals
	symbols *symbol.Table    // symbol chain and scopes
	types   *types.Registry  // storage types
	cg      *codegen.Codegen // code generator over the same store

	stack []types.Value // operand stack
	sp    int           // next free operand slot

	frames []Frame // call frames, growing toward index 0
	fp     int     // index of the current frame, len(frames) when empty

	pc        bytecode.Addr // program counter
	returning bool          // a return is unwinding to its call site
	state     State

	table [bytecode.MaxOpcode]instruction // dispatch table

	out io.Writer     // output writer for print
	in  *bufio.Reader // input for read

	storeSize  int
	stackSize  int
	frameDepth int

	maxSteps int  // maximum steps per run (0 = unlimited)
	steps    int  // steps executed in the current run
	trace    bool // log every instruction
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print statements
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithReader sets the input consumed by read
func WithReader(r io.Reader) Option {
	return func(i *Interpreter) { i.in = bufio.NewReader(r) }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithStackSize sets the operand stack capacity
func WithStackSize(n int) Option {
	return func(i *Interpreter) { i.stackSize = n }
}

// WithFrameDepth sets the call frame capacity
func WithFrameDepth(n int) Option {
	return func(i *Interpreter) { i.frameDepth = n }
}

// WithStoreSize sets the cell store capacity
func WithStoreSize(n int) Option {
	return func(i *Interpreter) { i.storeSize = n }
}

// WithTrace logs every executed instruction at debug level
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// NewInterpreter creates an interpreter with its own store, symbol table and code generator
func NewInterpreter(opts ...Option) *Interpreter {
	it := &Interpreter{
		storeSize:  cell.DefaultCapacity,
		stackSize:  DefaultStackSize,
		frameDepth: DefaultFrameDepth,
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.in == nil {
		it.in = bufio.NewReader(os.Stdin)
	}
	if it.stackSize <= 0 {
		it.stackSize = DefaultStackSize
	}
	if it.frameDepth <= 0 {
		it.frameDepth = DefaultFrameDepth
	}

	it.store = cell.NewStore(it.storeSize)
	it.symbols = symbol.NewTable()
	it.types = types.NewRegistry()
	it.cg = codegen.NewCodegen(it.store, it.symbols, it.types)
	it.stack = make([]types.Value, it.stackSize)
	it.frames = make([]Frame, it.frameDepth)
	it.fp = len(it.frames)

	it.buildTable()
	it.installPredefined()

	return it
}

func (i *Interpreter) Codegen() *codegen.Codegen { return i.cg }
func (i *Interpreter) Symbols() *symbol.Table    { return i.symbols }
func (i *Interpreter) Types() *types.Registry    { return i.types }
func (i *Interpreter) Store() *cell.Store        { return i.store }
func (i *Interpreter) Output() io.Writer         { return i.out }
func (i *Interpreter) State() State              { return i.state }

// Depth returns the operand stack depth
func (i *Interpreter) Depth() int {
	return i.sp
}

// Top returns the value on top of the operand stack
func (i *Interpreter) Top() (types.Value, bool) {
	if i.sp == 0 {
		return types.Value{}, false
	}
	return i.stack[i.sp-1], true
}

// FrameDepth returns the number of active call frames
func (i *Interpreter) FrameDepth() int {
	return len(i.frames) - i.fp
}

// Steps returns the number of instructions executed by the last run
func (i *Interpreter) Steps() int {
	return i.steps
}

// ResetUnit clears the run-time state and rewinds the code generator to the
// start of the current unit
func (i *Interpreter) ResetUnit() {
	clear(i.stack[:i.sp])
	i.sp = 0
	clear(i.frames[i.fp:])
	i.fp = len(i.frames)
	i.returning = false
	i.state = Idle
	i.cg.ResetUnit()
}

// Recover is the top-level recovery point: it discards everything the
// failed unit did, including symbols installed after head
func (i *Interpreter) Recover(head *symbol.Symbol) {
	i.ResetUnit()
	i.symbols.Rollback(head)
}

// Run executes the code starting at entry until it halts
func (i *Interpreter) Run(entry bytecode.Addr) error {
	i.steps = 0
	i.state = Running

	err := i.execute(entry)
	if err == nil && i.returning {
		err = &RuntimeError{PC: i.pc, Op: bytecode.OpFuncRet, Err: ErrUnexpectedReturn}
	}

	i.returning = false
	i.state = Idle

	return err
}

// execute is the fetch-dispatch loop. It stops at a stop opcode, at the end
// of the written code, or when a return is pending.
func (i *Interpreter) execute(at bytecode.Addr) error {
	i.pc = at

	for !i.returning {
		c, err := i.store.Read(i.pc)
		if err != nil {
			return &RuntimeError{PC: i.pc, Op: bytecode.OpStop, Err: err}
		}
		if c.IsEmpty() {
			i.state = Halted
			return nil
		}

		op, ok := c.Opcode()
		if !ok || !op.Valid() || i.table[op].exec == nil {
			return &RuntimeError{PC: i.pc, Op: op, Err: fmt.Errorf("%w: %s cell where an opcode is expected", ErrCorruptCode, c.Kind())}
		}
		if op == bytecode.OpStop {
			i.state = Halted
			return nil
		}

		if i.maxSteps > 0 && i.steps >= i.maxSteps {
			return &RuntimeError{PC: i.pc, Op: op, Err: ErrMaxStepsExceeded}
		}
		i.steps++

		if i.trace {
			log.Debug("Exec", "pc", i.pc, "op", op, "sp", i.sp, "frames", i.FrameDepth())
		}

		start := i.pc
		i.pc++
		if err := i.table[op].exec(i); err != nil {
			var rt *RuntimeError
			if errors.As(err, &rt) {
				return err
			}
			return &RuntimeError{PC: start, Op: op, Err: err}
		}
	}

	return nil
}

// push puts v on the operand stack
func (i *Interpreter) push(v types.Value) error {
	if i.sp >= len(i.stack) {
		return ErrStackOverflow
	}
	i.stack[i.sp] = v
	i.sp++
	return nil
}

// pop removes the top of the operand stack
func (i *Interpreter) pop() (types.Value, error) {
	if i.sp == 0 {
		return types.Value{}, ErrStackUnderflow
	}
	i.sp--
	v := i.stack[i.sp]
	i.stack[i.sp] = types.Value{}
	return v, nil
}

// peek returns a pointer to the value depth slots below the top
func (i *Interpreter) peek(depth int) (*types.Value, error) {
	if i.sp <= depth {
		return nil, ErrStackUnderflow
	}
	return &i.stack[i.sp-1-depth], nil
}
