package cell

import (
	"fmt"
	"math"
	"strconv"

	"cellar/pkg/bytecode"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

type Kind uint8

const (
	Empty Kind = iota
	Opcode
	Symbol
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Address
	String
)

var kindNames = [...]string{
	Empty:   "empty",
	Opcode:  "opcode",
	Symbol:  "symbol",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
	Address: "address",
	String:  "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Cell is one tagged word of the store. Accessors check the tag, so an
// operand can never be read as the wrong variant.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	s    string
	sym  *symbol.Symbol
}

func NewOpcode(op bytecode.Opcode) Cell  { return Cell{kind: Opcode, i: int64(op)} }
func NewSymbol(sym *symbol.Symbol) Cell  { return Cell{kind: Symbol, sym: sym} }
func NewAddress(addr bytecode.Addr) Cell { return Cell{kind: Address, i: int64(addr)} }
func NewString(s string) Cell            { return Cell{kind: String, s: s} }
func NewCount(n int) Cell                { return Cell{kind: Int32, i: int64(int32(n))} }
func NewInt(kind Kind, v int64) Cell     { return Cell{kind: kind, i: v} }
func NewFloat(kind Kind, v float64) Cell { return Cell{kind: kind, f: v} }

// Literal stores v in the representation of the given type.
func Literal(v types.Value, d *types.Descriptor) Cell {
	v = d.Convert(v)
	switch d.Storage() {
	case types.StorageInt8:
		return Cell{kind: Int8, i: v.Int()}
	case types.StorageInt16:
		return Cell{kind: Int16, i: v.Int()}
	case types.StorageInt64:
		return Cell{kind: Int64, i: v.Int()}
	case types.StorageFloat32:
		return Cell{kind: Float32, f: v.Float()}
	case types.StorageFloat64:
		return Cell{kind: Float64, f: v.Float()}
	default:
		return Cell{kind: String, s: v.Str()}
	}
}

func (c Cell) Kind() Kind { return c.kind }

func (c Cell) IsEmpty() bool { return c.kind == Empty }

func (c Cell) Opcode() (bytecode.Opcode, bool) {
	if c.kind != Opcode {
		return 0, false
	}
	return bytecode.Opcode(c.i), true
}

func (c Cell) Symbol() (*symbol.Symbol, bool) {
	if c.kind != Symbol {
		return nil, false
	}
	return c.sym, true
}

func (c Cell) Address() (bytecode.Addr, bool) {
	if c.kind != Address {
		return bytecode.NoAddr, false
	}
	return bytecode.Addr(c.i), true
}

func (c Cell) Count() (int, bool) {
	if c.kind != Int32 {
		return 0, false
	}
	return int(c.i), true
}

func (c Cell) Str() (string, bool) {
	if c.kind != String {
		return "", false
	}
	return c.s, true
}

// Int returns the payload of any integer cell.
func (c Cell) Int() (int64, bool) {
	switch c.kind {
	case Int8, Int16, Int32, Int64:
		return c.i, true
	default:
		return 0, false
	}
}

// Float returns the payload of any floating cell.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case Float32, Float64:
		return c.f, true
	default:
		return 0, false
	}
}

// Value converts a literal cell into an operand-stack value.
func (c Cell) Value() (types.Value, bool) {
	switch c.kind {
	case Int8, Int16, Int32, Int64:
		return types.NewInt(c.i), true
	case Float32, Float64:
		return types.NewFloat(c.f), true
	case String:
		return types.NewString(c.s), true
	default:
		return types.Value{}, false
	}
}

// Text renders the payload for disassembly.
func (c Cell) Text() string {
	switch c.kind {
	case Empty:
		return "-"
	case Opcode:
		return bytecode.Opcode(c.i).String()
	case Symbol:
		if c.sym == nil {
			return "<nil>"
		}
		return c.sym.Name
	case Int8, Int16, Int32, Int64:
		return strconv.FormatInt(c.i, 10)
	case Float32:
		return strconv.FormatFloat(c.f, 'g', -1, 32)
	case Float64:
		if math.IsInf(c.f, 0) || math.IsNaN(c.f) {
			return fmt.Sprint(c.f)
		}
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case Address:
		if c.i < 0 {
			return "-"
		}
		return fmt.Sprintf("%04d", c.i)
	case String:
		return strconv.Quote(c.s)
	default:
		return "?"
	}
}
