package types

import (
	"errors"
	"fmt"

	"cellar/pkg/bytecode"
)

// Type names known to the registry.
const (
	Byte   = "byte"
	Short  = "short"
	Long   = "long"
	Float  = "float"
	Double = "double"
	String = "string"
)

var (
	ErrTypeMismatch = errors.New("type mismatch")
	ErrDivideByZero = errors.New("division by zero")
	ErrDomain       = errors.New("argument out of domain")
	ErrRange        = errors.New("result out of range")
)

var numericFamilies = []bytecode.Family{
	bytecode.FamConst, bytecode.FamEval, bytecode.FamAssign,
	bytecode.FamArgEval, bytecode.FamArgAssign, bytecode.FamLocalEval, bytecode.FamLocalAssign,
	bytecode.FamAdd, bytecode.FamSub, bytecode.FamMul, bytecode.FamDiv, bytecode.FamMod, bytecode.FamPow, bytecode.FamNeg,
	bytecode.FamLt, bytecode.FamLe, bytecode.FamGt, bytecode.FamGe, bytecode.FamEq, bytecode.FamNe,
	bytecode.FamPreInc, bytecode.FamPreDec, bytecode.FamPostInc, bytecode.FamPostDec,
	bytecode.FamCvt, bytecode.FamCvtUnder, bytecode.FamPrExpr, bytecode.FamPrVal, bytecode.FamRead,
}

var stringFamilies = []bytecode.Family{
	bytecode.FamConst, bytecode.FamEval, bytecode.FamAssign,
	bytecode.FamArgEval, bytecode.FamArgAssign, bytecode.FamLocalEval, bytecode.FamLocalAssign,
	bytecode.FamAdd,
	bytecode.FamLt, bytecode.FamLe, bytecode.FamGt, bytecode.FamGe, bytecode.FamEq, bytecode.FamNe,
	bytecode.FamCvt, bytecode.FamCvtUnder, bytecode.FamPrExpr, bytecode.FamPrVal, bytecode.FamRead,
}

// Registry holds the descriptor of every storage type. It is built once and
// never modified afterwards.
type Registry struct {
	list   []*Descriptor
	byName map[string]*Descriptor
}

// NewRegistry creates the registry with its six storage types.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Descriptor)}

	r.add(&Descriptor{name: Byte, slot: bytecode.SlotByte, storage: StorageInt8, size: 1, align: 1,
		flags: Integer, weight: 1, format: "%d", one: NewInt(1), k: intKernel{bits: 8, wrap: wrap8}}, numericFamilies)
	r.add(&Descriptor{name: Short, slot: bytecode.SlotShort, storage: StorageInt16, size: 2, align: 2,
		flags: Integer, weight: 2, format: "%d", one: NewInt(1), k: intKernel{bits: 16, wrap: wrap16}}, numericFamilies)
	r.add(&Descriptor{name: Long, slot: bytecode.SlotLong, storage: StorageInt64, size: 8, align: 8,
		flags: Integer, weight: 4, format: "%d", one: NewInt(1), k: intKernel{bits: 64, wrap: wrap64}}, numericFamilies)
	r.add(&Descriptor{name: Float, slot: bytecode.SlotFloat, storage: StorageFloat32, size: 4, align: 4,
		flags: Floating, weight: 5, format: "%.7g", one: NewFloat(1), k: floatKernel{bits: 32, round: round32}}, numericFamilies)
	r.add(&Descriptor{name: Double, slot: bytecode.SlotDouble, storage: StorageFloat64, size: 8, align: 8,
		flags: Floating, weight: 6, format: "%.8g", one: NewFloat(1), k: floatKernel{bits: 64, round: round64}}, numericFamilies)
	r.add(&Descriptor{name: String, slot: bytecode.SlotString, storage: StorageString, size: 16, align: 8,
		flags: Pointer, weight: 0, format: "%s", k: stringKernel{}}, stringFamilies)

	return r
}

func (r *Registry) add(d *Descriptor, families []bytecode.Family) {
	d.ops = make(map[bytecode.Family]bytecode.Opcode, len(families))
	for _, f := range families {
		d.ops[f] = bytecode.Typed(f, d.slot)
	}
	r.list = append(r.list, d)
	r.byName[d.name] = d
}

// Lookup finds a descriptor by type name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns the descriptors in registry order.
func (r *Registry) All() []*Descriptor {
	return append([]*Descriptor(nil), r.list...)
}

// BySlot returns the descriptor occupying a typed-opcode slot.
func (r *Registry) BySlot(slot int) (*Descriptor, bool) {
	for _, d := range r.list {
		if d.slot == slot {
			return d, true
		}
	}
	return nil, false
}

func (r *Registry) Short() *Descriptor  { return r.byName[Short] }
func (r *Registry) Long() *Descriptor   { return r.byName[Long] }
func (r *Registry) Double() *Descriptor { return r.byName[Double] }
func (r *Registry) Str() *Descriptor    { return r.byName[String] }

// Promote picks the operand type of a binary operator: the heavier of the
// two, floating over integer on a tie, then registry order.
func (r *Registry) Promote(a, b *Descriptor) (*Descriptor, error) {
	if a == b {
		return a, nil
	}
	if a.Is(Pointer) != b.Is(Pointer) {
		return nil, fmt.Errorf("%w: %s and %s", ErrTypeMismatch, a, b)
	}
	if a.weight != b.weight {
		if a.weight > b.weight {
			return a, nil
		}
		return b, nil
	}
	if a.Is(Floating) != b.Is(Floating) {
		if a.Is(Floating) {
			return a, nil
		}
		return b, nil
	}
	if a.slot < b.slot {
		return a, nil
	}
	return b, nil
}
