package bytecode

import "fmt"

// Addr is the index of a cell in the store.
type Addr int

// NoAddr marks an absent address operand, e.g. an if without an else branch.
const NoAddr Addr = -1

// Opcode identifies an instruction. Untyped instructions occupy the low range,
// typed families start at typedBase and are laid out in blocks of familyWidth,
// one slot per storage type.
type Opcode uint16

// Operand describes one cell following an opcode in the stream.
type Operand uint8

const (
	OperandSymbol  Operand = iota + 1 // symbol reference
	OperandLiteral                    // typed literal (int or float cell)
	OperandString                     // string reference
	OperandCount                      // small integer (argument count, slot index)
	OperandAddr                       // cell address
)

// String returns the operand kind name.
func (o Operand) String() string {
	switch o {
	case OperandSymbol:
		return "symbol"
	case OperandLiteral:
		return "literal"
	case OperandString:
		return "string"
	case OperandCount:
		return "count"
	case OperandAddr:
		return "addr"
	default:
		return fmt.Sprintf("operand(%d)", uint8(o))
	}
}

// Untyped instructions.
const (
	OpStop      Opcode = iota // end of a block
	OpNop                     // no operation
	OpPop                     // discard top of stack
	OpDup                     // duplicate top of stack
	OpJump                    // jump <addr>
	OpJumpFalse               // pop, jump <addr> if false
	OpJumpTrue                // pop, jump <addr> if true
	OpTruth                   // replace top with 0/1
	OpNot                     // logical negation, result 0/1
	OpIf                      // if <then> <else> <next>, condition block follows
	OpWhile                   // while <body> <next>, condition block follows
	OpCall                    // call <sym> <nargs>
	OpProcRet                 // return from procedure
	OpFuncRet                 // return from function, value on top
	OpBltin0                  // bltin0 <sym>
	OpBltin1                  // bltin1 <sym>
	OpBltin2                  // bltin2 <sym>
	OpBltinV                  // bltinv <sym> <nargs>
	OpPrStr                   // prstr <string>
	OpPrNl                    // print newline
	OpSymbols                 // list the symbol table

	numUntyped
)

// Family is an abstract operation that expands into one opcode per storage type.
type Family uint8

const (
	FamConst Family = iota
	FamEval
	FamAssign
	FamArgEval
	FamArgAssign
	FamLocalEval
	FamLocalAssign
	FamAdd
	FamSub
	FamMul
	FamDiv
	FamMod
	FamPow
	FamNeg
	FamLt
	FamLe
	FamGt
	FamGe
	FamEq
	FamNe
	FamPreInc
	FamPreDec
	FamPostInc
	FamPostDec
	FamCvt
	FamCvtUnder
	FamPrExpr
	FamPrVal
	FamRead

	NumFamilies
)

const (
	typedBase   Opcode = 0x40
	familyWidth        = 8

	// MaxOpcode is one past the highest opcode id.
	MaxOpcode = typedBase + Opcode(NumFamilies)*familyWidth
)

// Storage type slots inside a family block.
const (
	SlotByte = iota
	SlotShort
	SlotLong
	SlotFloat
	SlotDouble
	SlotString

	NumSlots
)

var slotSuffix = [NumSlots]string{"b", "s", "l", "f", "d", "str"}

var untypedNames = [numUntyped]string{
	OpStop:      "stop",
	OpNop:       "nop",
	OpPop:       "pop",
	OpDup:       "dup",
	OpJump:      "jump",
	OpJumpFalse: "jumpfalse",
	OpJumpTrue:  "jumptrue",
	OpTruth:     "truth",
	OpNot:       "not",
	OpIf:        "if",
	OpWhile:     "while",
	OpCall:      "call",
	OpProcRet:   "procret",
	OpFuncRet:   "funcret",
	OpBltin0:    "bltin0",
	OpBltin1:    "bltin1",
	OpBltin2:    "bltin2",
	OpBltinV:    "bltinv",
	OpPrStr:     "prstr",
	OpPrNl:      "prnl",
	OpSymbols:   "symbols",
}

var untypedOperands = [numUntyped][]Operand{
	OpJump:      {OperandAddr},
	OpJumpFalse: {OperandAddr},
	OpJumpTrue:  {OperandAddr},
	OpIf:        {OperandAddr, OperandAddr, OperandAddr},
	OpWhile:     {OperandAddr, OperandAddr},
	OpCall:      {OperandSymbol, OperandCount},
	OpBltin0:    {OperandSymbol},
	OpBltin1:    {OperandSymbol},
	OpBltin2:    {OperandSymbol},
	OpBltinV:    {OperandSymbol, OperandCount},
	OpPrStr:     {OperandString},
}

var familyNames = [NumFamilies]string{
	FamConst:       "const",
	FamEval:        "eval",
	FamAssign:      "assign",
	FamArgEval:     "argeval",
	FamArgAssign:   "argassign",
	FamLocalEval:   "localeval",
	FamLocalAssign: "localassign",
	FamAdd:         "add",
	FamSub:         "sub",
	FamMul:         "mul",
	FamDiv:         "div",
	FamMod:         "mod",
	FamPow:         "pow",
	FamNeg:         "neg",
	FamLt:          "lt",
	FamLe:          "le",
	FamGt:          "gt",
	FamGe:          "ge",
	FamEq:          "eq",
	FamNe:          "ne",
	FamPreInc:      "preinc",
	FamPreDec:      "predec",
	FamPostInc:     "postinc",
	FamPostDec:     "postdec",
	FamCvt:         "cvt",
	FamCvtUnder:    "cvtu",
	FamPrExpr:      "prexpr",
	FamPrVal:       "prval",
	FamRead:        "read",
}

// Typed returns the opcode of family f specialised for storage slot.
func Typed(f Family, slot int) Opcode {
	return typedBase + Opcode(f)*familyWidth + Opcode(slot)
}

// Decode splits a typed opcode into its family and storage slot.
func (op Opcode) Decode() (Family, int, bool) {
	if op < typedBase || op >= MaxOpcode {
		return 0, 0, false
	}
	rel := op - typedBase
	slot := int(rel % familyWidth)
	if slot >= NumSlots {
		return 0, 0, false
	}
	return Family(rel / familyWidth), slot, true
}

// Valid reports whether op names a defined instruction.
func (op Opcode) Valid() bool {
	if op < numUntyped {
		return true
	}
	_, _, ok := op.Decode()
	return ok
}

// Operands returns the layout of cells that follow op.
func (op Opcode) Operands() []Operand {
	if op < numUntyped {
		return untypedOperands[op]
	}
	f, _, ok := op.Decode()
	if !ok {
		return nil
	}
	return f.Operands()
}

// String returns the mnemonic, e.g. "call" or "add.l".
func (op Opcode) String() string {
	if op < numUntyped {
		return untypedNames[op]
	}
	if f, slot, ok := op.Decode(); ok {
		return familyNames[f] + "." + slotSuffix[slot]
	}
	return fmt.Sprintf("op(0x%03X)", uint16(op))
}

// String returns the family name.
func (f Family) String() string {
	if f < NumFamilies {
		return familyNames[f]
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

// Operands returns the operand layout shared by every opcode of the family.
func (f Family) Operands() []Operand {
	switch f {
	case FamConst:
		return []Operand{OperandLiteral}
	case FamEval, FamAssign, FamPreInc, FamPreDec, FamPostInc, FamPostDec, FamRead:
		return []Operand{OperandSymbol}
	case FamArgEval, FamArgAssign, FamLocalEval, FamLocalAssign:
		return []Operand{OperandCount}
	default:
		return nil
	}
}

// IsComparison reports whether the family yields a 0/1 long result.
func (f Family) IsComparison() bool {
	switch f {
	case FamLt, FamLe, FamGt, FamGe, FamEq, FamNe:
		return true
	default:
		return false
	}
}

// SlotSuffix returns the mnemonic suffix of a storage slot.
func SlotSuffix(slot int) string {
	if slot < 0 || slot >= NumSlots {
		return "?"
	}
	return slotSuffix[slot]
}
