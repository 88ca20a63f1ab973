package symbol

import (
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/types"
)

type Kind uint8

const (
	Undefined   Kind = iota // referenced but not yet defined
	GlobalVar               // global variable
	LocalVar                // block-local variable
	Param                   // formal parameter
	Const                   // numeric constant
	BuiltinFunc             // native function
	BuiltinProc             // native procedure
	Func                    // user function
	Proc                    // user procedure
	Type                    // storage type name
	Main                    // main routine marker
)

var kindNames = map[Kind]string{
	Undefined:   "undefined",
	GlobalVar:   "var",
	LocalVar:    "local",
	Param:       "param",
	Const:       "const",
	BuiltinFunc: "builtin func",
	BuiltinProc: "builtin proc",
	Func:        "func",
	Proc:        "proc",
	Type:        "type",
	Main:        "main",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsRoutine reports whether symbols of this kind can be called.
func (k Kind) IsRoutine() bool {
	switch k {
	case BuiltinFunc, BuiltinProc, Func, Proc:
		return true
	default:
		return false
	}
}

// IsBuiltin reports whether the kind is backed by a native callback.
func (k Kind) IsBuiltin() bool {
	return k == BuiltinFunc || k == BuiltinProc
}

// IsFunction reports whether a call leaves a value on the stack.
func (k Kind) IsFunction() bool {
	return k == BuiltinFunc || k == Func
}

// Args is the positional argument window handed to native callbacks.
// Indices are 1-based, like the argeval instruction.
type Args interface {
	Len() int
	Arg(i int) (types.Value, error)
	SetArg(i int, v types.Value) error
}

// Native is the callback behind a builtin symbol.
type Native func(args Args) (types.Value, error)

// Formal is one declared formal parameter.
type Formal struct {
	Name string
	Type *types.Descriptor
}

// Symbol is one entry of the chained symbol table. Which fields are
// meaningful depends on Kind.
type Symbol struct {
	Name  string
	Kind  Kind
	Type  *types.Descriptor // value type, return type of functions
	Value types.Value       // globals and constants

	Entry      bytecode.Addr // first cell of a user routine
	Formals    []*Symbol     // parameters in declaration order
	ArgSize    int           // total size of the parameters
	LocalSize  int           // high-water mark of local storage
	LocalSlots int           // number of local slots in a frame
	RetOffset  int           // frame offset reserved for the result
	Native     Native        // builtin callback

	Offset int // frame offset of a local or parameter
	Slot   int // 1-based position of a parameter, 0-based index of a local

	next *Symbol
}

// Next returns the symbol installed before s.
func (s *Symbol) Next() *Symbol {
	return s.next
}

// String renders the symbol for diagnostics.
func (s *Symbol) String() string {
	if s.Type != nil {
		return fmt.Sprintf("%s %s: %s", s.Kind, s.Name, s.Type)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Name)
}
