package parser

import (
	"errors"
	"fmt"

	"cellar/pkg/lexer"
)

var (
	ErrSyntax               = errors.New("syntax error")
	ErrIncomplete           = errors.New("incomplete input")
	ErrUnknownType          = errors.New("unknown type")
	ErrUndefinedRoutine     = errors.New("undefined routine")
	ErrNotCallable          = errors.New("not a routine")
	ErrNotVariable          = errors.New("not a variable")
	ErrNotAssignable        = errors.New("cannot assign")
	ErrArgCount             = errors.New("wrong number of arguments")
	ErrNoValue              = errors.New("procedure has no value")
	ErrReturnOutsideRoutine = errors.New("return outside a routine")
	ErrArgOutsideRoutine    = errors.New("positional argument outside a routine")
	ErrNestedDefinition     = errors.New("routines cannot be nested")
	ErrMissingValue         = errors.New("function must return a value")
	ErrUnexpectedValue      = errors.New("procedure cannot return a value")
	ErrNumberRange          = errors.New("number out of range")
)

// Error is a compile error located in the source
type Error struct {
	Pos lexer.Position // where the offending token starts
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// syntax reports an unexpected current token; at end of input the construct
// is incomplete rather than wrong
func (p *Parser) syntax(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.cur.Type == lexer.EOF {
		return &Error{Pos: p.cur.Pos, Err: fmt.Errorf("%w: %s", ErrIncomplete, msg)}
	}
	return &Error{Pos: p.cur.Pos, Err: fmt.Errorf("%w: %s", ErrSyntax, msg)}
}

// unexpected reports the current token as out of place
func (p *Parser) unexpected(context string) error {
	switch p.cur.Type {
	case lexer.EOF:
		return p.syntax("unexpected end of input in %s", context)
	case lexer.ILLEGAL:
		return p.syntax("illegal character %q", p.cur.Lexeme)
	default:
		return p.syntax("unexpected %q in %s", p.cur.Lexeme, context)
	}
}

// semantic attaches a position to a non-syntax error
func semantic(tok lexer.Token, err error) error {
	return &Error{Pos: tok.Pos, Err: err}
}

// check surfaces the sticky code generation error at tok
func (p *Parser) check(tok lexer.Token) error {
	if err := p.cg.Err(); err != nil {
		return semantic(tok, err)
	}
	return nil
}
