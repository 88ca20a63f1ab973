package lexer

import (
	"fmt"
)

type TokenType int
type TokenCategory int

type Token struct {
	Type      TokenType // Type of the token
	Lexeme    string    // Actual string from source code
	Literal   string    // Literal value (if applicable), empty string if not
	Pos       Position  // Position in source code
	LineStart bool      // First token on its line
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	NONE TokenCategory = iota
	KEYWORD
	IDENTIFIER
	LITERAL
	OPERATOR
	DELIMITER
)

const (
	EOF TokenType = iota // End of file

	PROC    // proc
	FUNC    // func
	RETURN  // return
	IF      // if
	ELSE    // else
	WHILE   // while
	PRINT   // print
	READ    // read
	VAR     // var
	LOCAL   // local
	SYMBOLS // symbols

	ID     // id (identifier)
	NUM    // num (number)
	STRING // string literal
	ARG    // $n positional argument

	ASSIGN // =
	PLUS   // +
	MINUS  // -
	MULT   // *
	DIV    // /
	MOD    // %
	CARET  // ^
	INC    // ++
	DEC    // --
	NOT    // !
	AND    // &&
	OR     // ||
	LT     // <
	GT     // >
	LE     // <=
	GE     // >=
	EQ     // ==
	NE     // !=

	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }

	ILLEGAL // illegal token
)

var Keywords = map[string]TokenType{
	"proc":    PROC,
	"func":    FUNC,
	"return":  RETURN,
	"if":      IF,
	"else":    ELSE,
	"while":   WHILE,
	"print":   PRINT,
	"read":    READ,
	"var":     VAR,
	"local":   LOCAL,
	"symbols": SYMBOLS,
}

var tokenNames = map[TokenType]string{
	PROC:      "proc",
	FUNC:      "func",
	RETURN:    "return",
	IF:        "if",
	ELSE:      "else",
	WHILE:     "while",
	PRINT:     "print",
	READ:      "read",
	VAR:       "var",
	LOCAL:     "local",
	SYMBOLS:   "symbols",
	ID:        "id",
	NUM:       "num",
	STRING:    "string",
	ARG:       "arg",
	ASSIGN:    "=",
	PLUS:      "+",
	MINUS:     "-",
	MULT:      "*",
	DIV:       "/",
	MOD:       "%",
	CARET:     "^",
	INC:       "++",
	DEC:       "--",
	NOT:       "!",
	AND:       "&&",
	OR:        "||",
	LT:        "<",
	GT:        ">",
	LE:        "<=",
	GE:        ">=",
	EQ:        "==",
	NE:        "!=",
	SEMICOLON: ";",
	COMMA:     ",",
	COLON:     ":",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	EOF:       "end of input",
	ILLEGAL:   "illegal",
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := tokenNames[t]; ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// GetCategory returns the category of the token
func (t TokenType) GetCategory() TokenCategory {
	switch t {
	case PROC, FUNC, RETURN, IF, ELSE, WHILE, PRINT, READ, VAR, LOCAL, SYMBOLS:
		return KEYWORD
	case ID, ARG:
		return IDENTIFIER
	case NUM, STRING:
		return LITERAL
	case ASSIGN, PLUS, MINUS, MULT, DIV, MOD, CARET, INC, DEC, NOT, AND, OR, LT, GT, LE, GE, EQ, NE:
		return OPERATOR
	case SEMICOLON, COMMA, COLON, LPAREN, RPAREN, LBRACE, RBRACE:
		return DELIMITER
	default:
		return NONE
	}
}

// IsKeyword checks if the given identifier is a keyword and returns its TokenType if it is
func IsKeyword(identifier string) (TokenType, bool) {
	tokenType, ok := Keywords[identifier]
	return tokenType, ok
}
