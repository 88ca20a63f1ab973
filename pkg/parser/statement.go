package parser

import (
	"fmt"

	"cellar/pkg/bytecode"
	"cellar/pkg/lexer"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

// definition compiles `proc NAME(params) stmt` or `func NAME(params) [: type] stmt`
func (p *Parser) definition() error {
	kind := symbol.Proc
	if p.at(lexer.FUNC) {
		kind = symbol.Func
	}
	p.advance()

	nameTok, err := p.expect(lexer.ID, "routine definition")
	if err != nil {
		return err
	}
	params, err := p.params()
	if err != nil {
		return err
	}

	var ret *types.Descriptor
	if kind == symbol.Func {
		if ret, err = p.optionalType(); err != nil {
			return err
		}
	}

	sym, ok := p.symbols.Lookup(nameTok.Lexeme)
	if !ok {
		sym = p.symbols.Install(nameTok.Lexeme, symbol.Undefined)
	}
	if err := p.cg.BeginRoutine(sym, kind, ret); err != nil {
		return semantic(nameTok, err)
	}

	p.symbols.StartScope()
	if err := p.symbols.DeclareFormals(sym, params); err != nil {
		return semantic(nameTok, err)
	}

	if err := p.statement(false); err != nil {
		return err
	}
	p.cg.EmitOpcode(bytecode.OpProcRet)

	if _, err := p.symbols.EndScope(); err != nil {
		return semantic(nameTok, err)
	}
	if err := p.check(nameTok); err != nil {
		return err
	}
	p.cg.EndRoutine()

	return nil
}

// params compiles `( [NAME [: type] {, NAME [: type]}] )`
func (p *Parser) params() ([]symbol.Formal, error) {
	if _, err := p.expect(lexer.LPAREN, "parameter list"); err != nil {
		return nil, err
	}

	var params []symbol.Formal
	for !p.accept(lexer.RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(lexer.COMMA, "parameter list"); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(lexer.ID, "parameter list")
		if err != nil {
			return nil, err
		}
		typ, err := p.optionalType()
		if err != nil {
			return nil, err
		}
		params = append(params, symbol.Formal{Name: name.Lexeme, Type: typ})
	}

	return params, nil
}

// optionalType compiles `[: type]`, defaulting to double
func (p *Parser) optionalType() (*types.Descriptor, error) {
	if !p.at(lexer.COLON) {
		return p.types.Double(), nil
	}
	return p.typeName()
}

// typeName compiles `: type`
func (p *Parser) typeName() (*types.Descriptor, error) {
	if _, err := p.expect(lexer.COLON, "type annotation"); err != nil {
		return nil, err
	}
	tok, err := p.expect(lexer.ID, "type annotation")
	if err != nil {
		return nil, err
	}
	d, ok := p.types.Lookup(tok.Lexeme)
	if !ok {
		return nil, semantic(tok, fmt.Errorf("%w: %s", ErrUnknownType, tok.Lexeme))
	}
	return d, nil
}

// statement compiles one statement; top marks a statement that is a whole
// unit, whose bare expressions print their value
func (p *Parser) statement(top bool) error {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.block()
	case lexer.IF:
		return p.ifStatement()
	case lexer.WHILE:
		return p.whileStatement()
	case lexer.PROC, lexer.FUNC:
		return semantic(p.cur, ErrNestedDefinition)
	}

	var err error
	switch p.cur.Type {
	case lexer.VAR:
		err = p.varStatement()
	case lexer.LOCAL:
		err = p.localStatement()
	case lexer.PRINT:
		err = p.printStatement()
	case lexer.RETURN:
		err = p.returnStatement()
	case lexer.SYMBOLS:
		p.advance()
		p.cg.EmitOpcode(bytecode.OpSymbols)
	default:
		err = p.expressionStatement(top)
	}
	if err != nil {
		return err
	}

	return p.terminator()
}

// terminator ends a simple statement: a semicolon, a new line, or a token
// that closes the enclosing construct
func (p *Parser) terminator() error {
	switch {
	case p.accept(lexer.SEMICOLON):
		return nil
	case p.at(lexer.EOF), p.at(lexer.RBRACE), p.at(lexer.ELSE), p.cur.LineStart:
		return nil
	default:
		return p.unexpected("statement")
	}
}

// block compiles `{ stmt* }`; inside a routine it opens a scope for locals
func (p *Parser) block() error {
	open := p.cur
	p.advance()
	p.depth++

	scoped := p.cg.Routine() != nil
	if scoped {
		p.symbols.StartScope()
	}

	for !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			return p.syntax("missing \"}\" for block at %s", open.Pos)
		}
		if p.accept(lexer.SEMICOLON) {
			continue
		}
		if err := p.statement(false); err != nil {
			return err
		}
	}
	p.advance()
	p.depth--

	if scoped {
		if _, err := p.symbols.EndScope(); err != nil {
			return semantic(open, err)
		}
	}
	return nil
}

// condition compiles `( expr )` followed by the stop ending its block
func (p *Parser) condition(context string) error {
	if _, err := p.expect(lexer.LPAREN, context); err != nil {
		return err
	}
	if _, err := p.value(); err != nil {
		return err
	}
	if _, err := p.expect(lexer.RPAREN, context); err != nil {
		return err
	}
	p.cg.EmitOpcode(bytecode.OpStop)
	return nil
}

// ifStatement compiles `if (expr) stmt [else stmt]` as
// `if then else next | cond stop | then stop | [else stop]`
func (p *Parser) ifStatement() error {
	p.advance()
	br := p.cg.EmitIf()

	if err := p.condition("if condition"); err != nil {
		return err
	}

	p.cg.PatchHere(br.Then)
	if err := p.statement(false); err != nil {
		return err
	}
	p.cg.EmitOpcode(bytecode.OpStop)

	if p.accept(lexer.ELSE) {
		p.cg.PatchHere(br.Else)
		if err := p.statement(false); err != nil {
			return err
		}
		p.cg.EmitOpcode(bytecode.OpStop)
	}

	p.cg.PatchHere(br.Next)
	return nil
}

// whileStatement compiles `while (expr) stmt` as `while body next | cond stop | body stop`
func (p *Parser) whileStatement() error {
	p.advance()
	br := p.cg.EmitWhile()

	if err := p.condition("while condition"); err != nil {
		return err
	}

	p.cg.PatchHere(br.Then)
	if err := p.statement(false); err != nil {
		return err
	}
	p.cg.EmitOpcode(bytecode.OpStop)

	p.cg.PatchHere(br.Next)
	return nil
}

// varStatement compiles `var NAME [: type] [= expr]`, a global declaration
func (p *Parser) varStatement() error {
	p.advance()
	nameTok, err := p.expect(lexer.ID, "var declaration")
	if err != nil {
		return err
	}
	typ, err := p.optionalType()
	if err != nil {
		return err
	}

	sym, ok := p.symbols.Lookup(nameTok.Lexeme)
	switch {
	case !ok || sym.Kind == symbol.LocalVar || sym.Kind == symbol.Param:
		sym = p.symbols.InstallGlobal(nameTok.Lexeme, symbol.GlobalVar)
		sym.Type = typ
		sym.Value = typ.Zero()
	case sym.Kind == symbol.Undefined:
		sym.Kind = symbol.GlobalVar
		sym.Type = typ
		sym.Value = typ.Zero()
	case sym.Kind == symbol.GlobalVar && sym.Type == typ:
	default:
		return semantic(nameTok, fmt.Errorf("%w: %s", symbol.ErrRedeclared, sym))
	}

	if !p.accept(lexer.ASSIGN) {
		return nil
	}
	rhs, err := p.value()
	if err != nil {
		return err
	}
	p.cg.Convert(rhs, typ)
	p.cg.EmitTyped(bytecode.FamAssign, typ)
	p.cg.EmitSymbol(sym)
	p.cg.EmitOpcode(bytecode.OpPop)
	return nil
}

// localStatement compiles `local NAME : type [= expr]`; a local without an
// initializer starts at zero on every pass
func (p *Parser) localStatement() error {
	p.advance()
	nameTok, err := p.expect(lexer.ID, "local declaration")
	if err != nil {
		return err
	}
	typ, err := p.typeName()
	if err != nil {
		return err
	}

	var rhs *types.Descriptor
	if p.accept(lexer.ASSIGN) {
		if rhs, err = p.value(); err != nil {
			return err
		}
	} else {
		rhs = typ
		p.cg.EmitTyped(bytecode.FamConst, typ)
		p.cg.EmitLiteral(typ.Zero(), typ)
	}

	// declared after the initializer so it cannot refer to itself
	sym, err := p.cg.DeclareLocal(nameTok.Lexeme, typ)
	if err != nil {
		return semantic(nameTok, err)
	}
	p.cg.Convert(rhs, typ)
	p.cg.EmitTyped(bytecode.FamLocalAssign, typ)
	p.cg.EmitCount(sym.Slot)
	p.cg.EmitOpcode(bytecode.OpPop)
	return nil
}

// printStatement compiles `print item {, item}` without a trailing newline
func (p *Parser) printStatement() error {
	p.advance()
	for {
		if p.at(lexer.STRING) && p.standalone() {
			p.cg.EmitOpcode(bytecode.OpPrStr)
			p.cg.EmitString(p.cur.Literal)
			p.advance()
		} else {
			d, err := p.value()
			if err != nil {
				return err
			}
			p.cg.EmitTyped(bytecode.FamPrVal, d)
		}
		if !p.continues(lexer.COMMA) {
			return nil
		}
		p.advance()
	}
}

// standalone reports whether the string at the cursor is a whole print item
func (p *Parser) standalone() bool {
	next := p.lexer.Peek()
	if next.LineStart {
		return true
	}
	switch next.Type {
	case lexer.COMMA, lexer.SEMICOLON, lexer.RBRACE, lexer.ELSE, lexer.EOF:
		return true
	default:
		return false
	}
}

// returnStatement compiles `return [expr]`
func (p *Parser) returnStatement() error {
	tok := p.cur
	p.advance()

	routine := p.cg.Routine()
	if routine == nil {
		return semantic(tok, ErrReturnOutsideRoutine)
	}

	hasValue := !p.cur.LineStart
	switch p.cur.Type {
	case lexer.SEMICOLON, lexer.RBRACE, lexer.ELSE, lexer.EOF:
		hasValue = false
	}

	if !routine.Kind.IsFunction() {
		if hasValue {
			return semantic(p.cur, fmt.Errorf("%w: %s", ErrUnexpectedValue, routine.Name))
		}
		p.cg.EmitOpcode(bytecode.OpProcRet)
		return nil
	}

	if !hasValue {
		return semantic(tok, fmt.Errorf("%w: %s", ErrMissingValue, routine.Name))
	}
	d, err := p.value()
	if err != nil {
		return err
	}
	p.cg.Convert(d, routine.Type)
	p.cg.EmitOpcode(bytecode.OpFuncRet)
	return nil
}

// expressionStatement compiles a bare expression. At top level its value is
// printed unless it is an assignment; elsewhere the value is discarded.
func (p *Parser) expressionStatement(top bool) error {
	assignment := p.assignmentAhead()

	d, err := p.expression()
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}

	if top && !assignment {
		p.cg.EmitTyped(bytecode.FamPrExpr, d)
	} else {
		p.cg.EmitOpcode(bytecode.OpPop)
	}
	return nil
}
