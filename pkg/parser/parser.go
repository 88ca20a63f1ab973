package parser

import (
	"errors"
	"io"

	"cellar/pkg/bytecode"
	"cellar/pkg/lexer"
	"cellar/pkg/parser/codegen"
	"cellar/pkg/symbol"
	"cellar/pkg/types"

	"github.com/charmbracelet/log"
)

type Parser struct {
	lexer   *lexer.Lexer     // Token source
	cg      *codegen.Codegen // Code generator receiving the unit
	symbols *symbol.Table    // Symbol table shared with the code generator
	types   *types.Registry  // Storage type descriptors
	cur     lexer.Token      // Current token
	prev    lexer.Token      // Last consumed token
	depth   int              // Open braces of the unit being parsed
}

// Unit is one top-level definition or statement.
type Unit struct {
	Entry    bytecode.Addr  // first cell of the unit
	Runnable bool           // false for routine definitions
	Pos      lexer.Position // where the unit starts
}

// NewParser creates a parser feeding cg from l
func NewParser(l *lexer.Lexer, cg *codegen.Codegen) *Parser {
	p := &Parser{
		lexer:   l,
		cg:      cg,
		symbols: cg.Symbols(),
		types:   cg.Types(),
	}
	p.advance()
	return p
}

// advance moves to the next token
func (p *Parser) advance() {
	p.prev = p.cur
	p.cur = p.lexer.NextToken()
}

// at reports whether the current token has type t
func (p *Parser) at(t lexer.TokenType) bool {
	return p.cur.Type == t
}

// continues reports whether the current token extends the expression on its
// left. An operator that starts a line begins a new statement instead.
func (p *Parser) continues(t lexer.TokenType) bool {
	return p.cur.Type == t && !p.cur.LineStart
}

// accept consumes the current token if it has type t
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.cur.Type != t {
		return false
	}
	p.advance()
	return true
}

// expect consumes a token of type t or fails
func (p *Parser) expect(t lexer.TokenType, context string) (lexer.Token, error) {
	if p.cur.Type != t {
		return p.cur, p.syntax("expected %q in %s, found %s", t.String(), context, describe(p.cur))
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// Offset returns the byte offset of the first token not yet consumed
func (p *Parser) Offset() int {
	return p.cur.Pos.Offset
}

// ParseUnit compiles the next top-level unit. It returns io.EOF when the
// input is exhausted and an error wrapping ErrIncomplete when the input ends
// inside a construct.
func (p *Parser) ParseUnit() (Unit, error) {
	p.depth = 0
	for p.accept(lexer.SEMICOLON) {
	}
	if p.at(lexer.EOF) {
		return Unit{}, io.EOF
	}

	unit := Unit{Entry: p.cg.Cursor(), Pos: p.cur.Pos}
	start := p.cur

	var err error
	switch p.cur.Type {
	case lexer.PROC, lexer.FUNC:
		err = p.definition()
	default:
		unit.Runnable = true
		err = p.statement(true)
		p.cg.EmitOpcode(bytecode.OpStop)
	}

	if err != nil {
		if !errors.Is(err, ErrIncomplete) {
			p.synchronize(start)
		}
		return unit, err
	}
	if err := p.check(start); err != nil {
		return unit, err
	}

	log.Debug("Parsed unit", "at", unit.Pos, "entry", unit.Entry, "cells", int(p.cg.Cursor()-unit.Entry))

	return unit, nil
}

// synchronize skips the rest of a failed unit: to the end of the braces it
// opened, then to the next line or semicolon. It always moves past start.
func (p *Parser) synchronize(start lexer.Token) {
	depth := p.depth
	for !p.at(lexer.EOF) {
		if depth <= 0 && p.cur.LineStart && p.cur.Pos.Offset > start.Pos.Offset {
			return
		}
		switch p.cur.Type {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth <= 0 {
				p.advance()
				return
			}
		case lexer.SEMICOLON:
			if depth <= 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// describe names a token for diagnostics
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.ID, lexer.NUM, lexer.ARG:
		return tok.Lexeme
	case lexer.STRING:
		return "string " + tok.Lexeme
	default:
		return "\"" + tok.Lexeme + "\""
	}
}
