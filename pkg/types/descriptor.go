package types

import (
	"sort"

	"cellar/pkg/bytecode"
)

// Flags classify a storage type.
type Flags uint8

const (
	Integer Flags = 1 << iota
	Floating
	Pointer
)

// Storage is the machine representation behind a descriptor.
type Storage uint8

const (
	StorageInt8 Storage = iota
	StorageInt16
	StorageInt64
	StorageFloat32
	StorageFloat64
	StorageString
)

// Descriptor is the immutable description of one storage type: its
// representation, its promotion weight, and the concrete opcode chosen for
// each abstract operation.
type Descriptor struct {
	name    string
	slot    int
	storage Storage
	size    int
	align   int
	flags   Flags
	weight  int
	format  string
	one     Value
	ops     map[bytecode.Family]bytecode.Opcode
	k       kernel
}

func (d *Descriptor) Name() string     { return d.name }
func (d *Descriptor) String() string   { return d.name }
func (d *Descriptor) Slot() int        { return d.slot }
func (d *Descriptor) Storage() Storage { return d.storage }
func (d *Descriptor) Size() int        { return d.size }
func (d *Descriptor) Align() int       { return d.align }
func (d *Descriptor) Flags() Flags     { return d.flags }
func (d *Descriptor) Weight() int      { return d.weight }

// Layout returns the display format used by print.
func (d *Descriptor) Layout() string { return d.format }

// Is reports whether every flag in f is set.
func (d *Descriptor) Is(f Flags) bool { return d.flags&f == f }

// One returns the increment unit; strings have none.
func (d *Descriptor) One() (Value, bool) {
	return d.one, d.one.Kind != KindNone
}

// Opcode returns the concrete opcode for an abstract operation.
func (d *Descriptor) Opcode(f bytecode.Family) (bytecode.Opcode, bool) {
	op, ok := d.ops[f]
	return op, ok
}

// Supports reports whether the descriptor defines the operation.
func (d *Descriptor) Supports(f bytecode.Family) bool {
	_, ok := d.ops[f]
	return ok
}

// Families lists the supported abstract operations in family order.
func (d *Descriptor) Families() []bytecode.Family {
	out := make([]bytecode.Family, 0, len(d.ops))
	for f := range d.ops {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Zero returns the zero value of the type.
func (d *Descriptor) Zero() Value { return d.k.zero() }

// Convert coerces any value into this type's representation.
func (d *Descriptor) Convert(v Value) Value { return d.k.convert(v) }

// Format renders a value with the type's display format.
func (d *Descriptor) Format(v Value) string { return d.k.format(d.format, v) }

// Parse reads a value of this type from text.
func (d *Descriptor) Parse(s string) (Value, error) { return d.k.parse(s) }

// Binary returns the arithmetic kernel for an arithmetic family.
func (d *Descriptor) Binary(f bytecode.Family) (BinaryFunc, bool) {
	if !d.Supports(f) {
		return nil, false
	}
	return d.k.binary(f)
}

// Negate returns the unary minus kernel.
func (d *Descriptor) Negate() (func(Value) Value, bool) {
	if !d.Supports(bytecode.FamNeg) {
		return nil, false
	}
	return d.k.neg, true
}

// Compare returns the predicate for a comparison family.
func (d *Descriptor) Compare(f bytecode.Family) (func(a, b Value) bool, bool) {
	if !d.Supports(f) {
		return nil, false
	}
	k := d.k
	switch f {
	case bytecode.FamLt:
		return k.less, true
	case bytecode.FamLe:
		return func(a, b Value) bool { return k.less(a, b) || k.equal(a, b) }, true
	case bytecode.FamGt:
		return func(a, b Value) bool { return k.less(b, a) }, true
	case bytecode.FamGe:
		return func(a, b Value) bool { return k.less(b, a) || k.equal(a, b) }, true
	case bytecode.FamEq:
		return k.equal, true
	case bytecode.FamNe:
		return func(a, b Value) bool { return !k.equal(a, b) }, true
	default:
		return nil, false
	}
}
