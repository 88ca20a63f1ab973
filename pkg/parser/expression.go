package parser

import (
	"fmt"
	"strconv"
	"strings"

	"cellar/pkg/bytecode"
	"cellar/pkg/lexer"
	"cellar/pkg/parser/codegen"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

// Binary operator levels, loosest first.
var (
	equality       = map[lexer.TokenType]bytecode.Family{lexer.EQ: bytecode.FamEq, lexer.NE: bytecode.FamNe}
	relational     = map[lexer.TokenType]bytecode.Family{lexer.LT: bytecode.FamLt, lexer.LE: bytecode.FamLe, lexer.GT: bytecode.FamGt, lexer.GE: bytecode.FamGe}
	additive       = map[lexer.TokenType]bytecode.Family{lexer.PLUS: bytecode.FamAdd, lexer.MINUS: bytecode.FamSub}
	multiplicative = map[lexer.TokenType]bytecode.Family{lexer.MULT: bytecode.FamMul, lexer.DIV: bytecode.FamDiv, lexer.MOD: bytecode.FamMod}
)

// lvalue is a resolved assignment target. Globals are addressed by symbol,
// locals and parameters by slot.
type lvalue struct {
	sym    *symbol.Symbol
	slot   int
	eval   bytecode.Family
	assign bytecode.Family
	typ    *types.Descriptor
}

// value compiles an expression that must leave a value on the stack
func (p *Parser) value() (*types.Descriptor, error) {
	tok := p.cur
	d, err := p.expression()
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, semantic(tok, fmt.Errorf("%w: %s", ErrNoValue, tok.Lexeme))
	}
	return d, nil
}

// expression compiles an expression. The result is nil for a procedure call,
// which leaves nothing on the stack.
func (p *Parser) expression() (*types.Descriptor, error) {
	if p.assignmentAhead() {
		return p.assignment()
	}
	return p.or()
}

// assignmentAhead reports whether the cursor is at `NAME =` or `$n =`
func (p *Parser) assignmentAhead() bool {
	if !p.at(lexer.ID) && !p.at(lexer.ARG) {
		return false
	}
	next := p.lexer.Peek()
	return next.Type == lexer.ASSIGN && !next.LineStart
}

// assignment compiles the right-associative `target = expr`; the assigned
// value stays on the stack
func (p *Parser) assignment() (*types.Descriptor, error) {
	target := p.cur
	p.advance()
	p.advance()

	rhs, err := p.value()
	if err != nil {
		return nil, err
	}

	lv, err := p.lvalue(target)
	if err != nil {
		return nil, err
	}
	if lv.sym != nil && lv.sym.Kind == symbol.Undefined {
		lv.sym.Type = rhs
		lv.typ = rhs
	}

	p.cg.Convert(rhs, lv.typ)
	p.store(lv)
	return lv.typ, p.check(target)
}

// or compiles `a || b`, skipping b when a is true
func (p *Parser) or() (*types.Descriptor, error) {
	return p.logical(lexer.OR, bytecode.OpJumpTrue, p.and)
}

// and compiles `a && b`, skipping b when a is false
func (p *Parser) and() (*types.Descriptor, error) {
	return p.logical(lexer.AND, bytecode.OpJumpFalse, p.equality)
}

// logical compiles a short-circuit level as
// `a truth dup jump L pop b truth L:`
func (p *Parser) logical(t lexer.TokenType, jump bytecode.Opcode, next func() (*types.Descriptor, error)) (*types.Descriptor, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}

	for p.continues(t) {
		tok := p.cur
		if lhs == nil {
			return nil, semantic(tok, ErrNoValue)
		}
		p.advance()

		p.cg.EmitOpcode(bytecode.OpTruth)
		p.cg.EmitOpcode(bytecode.OpDup)
		p.cg.EmitOpcode(jump)
		skip := p.cg.Reserve()
		p.cg.EmitOpcode(bytecode.OpPop)

		rhs, err := next()
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, semantic(tok, ErrNoValue)
		}
		p.cg.EmitOpcode(bytecode.OpTruth)
		p.cg.PatchHere(skip)

		lhs = p.types.Long()
	}

	return lhs, nil
}

func (p *Parser) equality() (*types.Descriptor, error) {
	return p.binary(equality, p.relational)
}

func (p *Parser) relational() (*types.Descriptor, error) {
	return p.binary(relational, p.additive)
}

func (p *Parser) additive() (*types.Descriptor, error) {
	return p.binary(additive, p.multiplicative)
}

func (p *Parser) multiplicative() (*types.Descriptor, error) {
	return p.binary(multiplicative, p.unary)
}

// binary compiles a left-associative level of operators
func (p *Parser) binary(ops map[lexer.TokenType]bytecode.Family, next func() (*types.Descriptor, error)) (*types.Descriptor, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}

	for {
		f, ok := ops[p.cur.Type]
		if !ok || p.cur.LineStart {
			return lhs, nil
		}
		tok := p.cur
		p.advance()

		rhs, err := next()
		if err != nil {
			return nil, err
		}
		if lhs, err = p.arith(tok, f, lhs, rhs); err != nil {
			return nil, err
		}
	}
}

// arith converts both operands to their promoted type and emits the typed
// operator; comparisons yield a long 0/1
func (p *Parser) arith(tok lexer.Token, f bytecode.Family, lhs, rhs *types.Descriptor) (*types.Descriptor, error) {
	if lhs == nil || rhs == nil {
		return nil, semantic(tok, ErrNoValue)
	}

	t, err := p.types.Promote(lhs, rhs)
	if err != nil {
		return nil, semantic(tok, fmt.Errorf("%s: %w", tok.Lexeme, err))
	}
	p.cg.ConvertUnder(lhs, t)
	p.cg.Convert(rhs, t)
	p.cg.EmitTyped(f, t)
	if err := p.check(tok); err != nil {
		return nil, err
	}

	if f.IsComparison() {
		return p.types.Long(), nil
	}
	return t, nil
}

// unary compiles prefix `-` and `!`, which bind looser than `^`
func (p *Parser) unary() (*types.Descriptor, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.MINUS:
		p.advance()
		d, err := p.unary()
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, semantic(tok, ErrNoValue)
		}
		p.cg.EmitTyped(bytecode.FamNeg, d)
		return d, p.check(tok)

	case lexer.NOT:
		p.advance()
		d, err := p.unary()
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, semantic(tok, ErrNoValue)
		}
		p.cg.EmitOpcode(bytecode.OpNot)
		return p.types.Long(), nil

	default:
		return p.power()
	}
}

// power compiles the right-associative `a ^ b`
func (p *Parser) power() (*types.Descriptor, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.continues(lexer.CARET) {
		return base, nil
	}

	tok := p.cur
	p.advance()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return p.arith(tok, bytecode.FamPow, base, exp)
}

// primary compiles operands: literals, names, calls, increments, read and
// parenthesised expressions
func (p *Parser) primary() (*types.Descriptor, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.NUM:
		p.advance()
		return p.number(tok)

	case lexer.STRING:
		p.advance()
		s := p.types.Str()
		p.cg.EmitTyped(bytecode.FamConst, s)
		p.cg.EmitLiteral(types.NewString(tok.Literal), s)
		return s, nil

	case lexer.ARG, lexer.ID:
		p.advance()
		if tok.Type == lexer.ID && p.continues(lexer.LPAREN) {
			return p.call(tok)
		}
		if p.continues(lexer.INC) || p.continues(lexer.DEC) {
			op := p.cur
			p.advance()
			return p.step(tok, op.Type == lexer.INC, true)
		}
		return p.variable(tok)

	case lexer.INC, lexer.DEC:
		p.advance()
		target := p.cur
		if !p.at(lexer.ID) && !p.at(lexer.ARG) {
			return nil, p.unexpected("increment")
		}
		p.advance()
		return p.step(target, tok.Type == lexer.INC, false)

	case lexer.READ:
		p.advance()
		return p.read()

	case lexer.LPAREN:
		p.advance()
		d, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "parenthesised expression"); err != nil {
			return nil, err
		}
		return d, nil

	default:
		return nil, p.unexpected("expression")
	}
}

// number emits an integer literal as long and any other as double
func (p *Parser) number(tok lexer.Token) (*types.Descriptor, error) {
	lit := tok.Literal
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, semantic(tok, fmt.Errorf("%w: %s", ErrNumberRange, lit))
		}
		d := p.types.Double()
		p.cg.EmitTyped(bytecode.FamConst, d)
		p.cg.EmitLiteral(types.NewFloat(f), d)
		return d, nil
	}

	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, semantic(tok, fmt.Errorf("%w: %s", ErrNumberRange, lit))
	}
	d := p.types.Long()
	p.cg.EmitTyped(bytecode.FamConst, d)
	p.cg.EmitLiteral(types.NewInt(n), d)
	return d, nil
}

// resolve finds a name, installing it as an undefined global on first use
func (p *Parser) resolve(name string) *symbol.Symbol {
	if sym, ok := p.symbols.Lookup(name); ok {
		return sym
	}
	return p.symbols.InstallGlobal(name, symbol.Undefined)
}

// variable emits the load of a name or positional argument
func (p *Parser) variable(tok lexer.Token) (*types.Descriptor, error) {
	if tok.Type == lexer.ARG {
		lv, err := p.arg(tok)
		if err != nil {
			return nil, err
		}
		p.load(lv)
		return lv.typ, nil
	}

	sym := p.resolve(tok.Lexeme)
	switch sym.Kind {
	case symbol.GlobalVar, symbol.Const, symbol.Undefined:
		// an undefined name fails at run time unless assigned first
		typ := sym.Type
		if typ == nil {
			typ = p.types.Double()
		}
		p.cg.EmitTyped(bytecode.FamEval, typ)
		p.cg.EmitSymbol(sym)
		return typ, nil
	case symbol.LocalVar:
		p.cg.EmitTyped(bytecode.FamLocalEval, sym.Type)
		p.cg.EmitCount(sym.Slot)
		return sym.Type, nil
	case symbol.Param:
		p.cg.EmitTyped(bytecode.FamArgEval, sym.Type)
		p.cg.EmitCount(sym.Slot)
		return sym.Type, nil
	default:
		return nil, semantic(tok, fmt.Errorf("%w: %s is a %s", ErrNotVariable, sym.Name, sym.Kind))
	}
}

// arg resolves `$n` against the formals of the routine being defined. An
// index beyond the formals is left to the run-time check.
func (p *Parser) arg(tok lexer.Token) (lvalue, error) {
	routine := p.cg.Routine()
	if routine == nil {
		return lvalue{}, semantic(tok, fmt.Errorf("%w: %s", ErrArgOutsideRoutine, tok.Lexeme))
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		return lvalue{}, semantic(tok, fmt.Errorf("%w: %s", ErrNumberRange, tok.Lexeme))
	}

	typ := p.types.Double()
	if n >= 1 && n <= len(routine.Formals) {
		typ = routine.Formals[n-1].Type
	}
	return lvalue{slot: n, eval: bytecode.FamArgEval, assign: bytecode.FamArgAssign, typ: typ}, nil
}

// lvalue resolves an assignment target
func (p *Parser) lvalue(tok lexer.Token) (lvalue, error) {
	if tok.Type == lexer.ARG {
		return p.arg(tok)
	}

	sym := p.resolve(tok.Lexeme)
	switch sym.Kind {
	case symbol.GlobalVar, symbol.Undefined:
		return lvalue{sym: sym, eval: bytecode.FamEval, assign: bytecode.FamAssign, typ: sym.Type}, nil
	case symbol.LocalVar:
		return lvalue{slot: sym.Slot, eval: bytecode.FamLocalEval, assign: bytecode.FamLocalAssign, typ: sym.Type}, nil
	case symbol.Param:
		return lvalue{slot: sym.Slot, eval: bytecode.FamArgEval, assign: bytecode.FamArgAssign, typ: sym.Type}, nil
	default:
		return lvalue{}, semantic(tok, fmt.Errorf("%w: %s is a %s", ErrNotAssignable, sym.Name, sym.Kind))
	}
}

func (p *Parser) load(lv lvalue) {
	p.cg.EmitTyped(lv.eval, lv.typ)
	p.operand(lv)
}

func (p *Parser) store(lv lvalue) {
	p.cg.EmitTyped(lv.assign, lv.typ)
	p.operand(lv)
}

func (p *Parser) operand(lv lvalue) {
	if lv.sym != nil {
		p.cg.EmitSymbol(lv.sym)
	} else {
		p.cg.EmitCount(lv.slot)
	}
}

// step compiles `++x`, `--x`, `x++` and `x--`. Globals have dedicated
// opcodes; slots are rewritten as load, add one, store.
func (p *Parser) step(tok lexer.Token, inc, post bool) (*types.Descriptor, error) {
	lv, err := p.lvalue(tok)
	if err != nil {
		return nil, err
	}

	var f bytecode.Family
	switch {
	case inc && post:
		f = bytecode.FamPostInc
	case inc:
		f = bytecode.FamPreInc
	case post:
		f = bytecode.FamPostDec
	default:
		f = bytecode.FamPreDec
	}

	if lv.typ == nil {
		lv.typ = p.types.Double()
		lv.sym.Type = lv.typ
	}
	if !lv.typ.Supports(f) {
		return nil, semantic(tok, fmt.Errorf("%w: %s on %s", codegen.ErrOperatorUndefined, f, lv.typ))
	}

	if lv.sym != nil {
		p.cg.EmitTyped(f, lv.typ)
		p.cg.EmitSymbol(lv.sym)
		return lv.typ, p.check(tok)
	}

	one, _ := lv.typ.One()
	arith := bytecode.FamAdd
	if !inc {
		arith = bytecode.FamSub
	}

	p.load(lv)
	if post {
		p.cg.EmitOpcode(bytecode.OpDup)
	}
	p.cg.EmitTyped(bytecode.FamConst, lv.typ)
	p.cg.EmitLiteral(one, lv.typ)
	p.cg.EmitTyped(arith, lv.typ)
	p.store(lv)
	if post {
		p.cg.EmitOpcode(bytecode.OpPop)
	}
	return lv.typ, p.check(tok)
}

// read compiles `read(NAME)`, which yields 1 on success and 0 at end of input
func (p *Parser) read() (*types.Descriptor, error) {
	if _, err := p.expect(lexer.LPAREN, "read"); err != nil {
		return nil, err
	}
	tok, err := p.expect(lexer.ID, "read")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "read"); err != nil {
		return nil, err
	}

	sym := p.resolve(tok.Lexeme)
	if sym.Kind != symbol.GlobalVar && sym.Kind != symbol.Undefined {
		return nil, semantic(tok, fmt.Errorf("%w: read into %s %s", ErrNotAssignable, sym.Kind, sym.Name))
	}
	if sym.Type == nil {
		sym.Type = p.types.Double()
	}

	p.cg.EmitTyped(bytecode.FamRead, sym.Type)
	p.cg.EmitSymbol(sym)
	return p.types.Long(), p.check(tok)
}

// call compiles `NAME(args)`. Routines must be defined before they are
// called; each argument is converted to its parameter type.
func (p *Parser) call(tok lexer.Token) (*types.Descriptor, error) {
	sym, ok := p.symbols.Lookup(tok.Lexeme)
	if !ok || sym.Kind == symbol.Undefined {
		return nil, semantic(tok, fmt.Errorf("%w: %s", ErrUndefinedRoutine, tok.Lexeme))
	}
	if !sym.Kind.IsRoutine() {
		return nil, semantic(tok, fmt.Errorf("%w: %s is a %s", ErrNotCallable, sym.Name, sym.Kind))
	}

	p.advance()
	n := 0
	for !p.accept(lexer.RPAREN) {
		if n > 0 {
			if _, err := p.expect(lexer.COMMA, "argument list"); err != nil {
				return nil, err
			}
		}
		d, err := p.value()
		if err != nil {
			return nil, err
		}
		if n < len(sym.Formals) {
			p.cg.Convert(d, sym.Formals[n].Type)
		}
		n++
	}
	if n != len(sym.Formals) {
		return nil, semantic(tok, fmt.Errorf("%w: %s takes %d, got %d", ErrArgCount, sym.Name, len(sym.Formals), n))
	}

	switch {
	case sym.Kind.IsBuiltin() && n <= 2:
		p.cg.EmitOpcode(bytecode.OpBltin0 + bytecode.Opcode(n))
		p.cg.EmitSymbol(sym)
	case sym.Kind.IsBuiltin():
		p.cg.EmitOpcode(bytecode.OpBltinV)
		p.cg.EmitSymbol(sym)
		p.cg.EmitCount(n)
	default:
		p.cg.EmitOpcode(bytecode.OpCall)
		p.cg.EmitSymbol(sym)
		p.cg.EmitCount(n)
	}
	if err := p.check(tok); err != nil {
		return nil, err
	}

	if !sym.Kind.IsFunction() {
		return nil, nil
	}
	return sym.Type, nil
}
