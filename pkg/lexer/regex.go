package lexer

import (
	"regexp"
)

type tokenRegex struct {
	Pattern *regexp.Regexp
	Raw     string
}

func rx(raw string) tokenRegex {
	return tokenRegex{regexp.MustCompile(raw), raw}
}

// Token regex patterns
var tokenRegexes = map[TokenType]tokenRegex{
	INC: rx(`^\+\+`),
	DEC: rx(`^--`),
	AND: rx(`^&&`),
	OR:  rx(`^\|\|`),
	LE:  rx(`^<=`),
	GE:  rx(`^>=`),
	EQ:  rx(`^==`),
	NE:  rx(`^!=`),

	SYMBOLS: rx(`^symbols\b`),
	RETURN:  rx(`^return\b`),
	LOCAL:   rx(`^local\b`),
	PRINT:   rx(`^print\b`),
	WHILE:   rx(`^while\b`),
	PROC:    rx(`^proc\b`),
	FUNC:    rx(`^func\b`),
	ELSE:    rx(`^else\b`),
	READ:    rx(`^read\b`),
	VAR:     rx(`^var\b`),
	IF:      rx(`^if\b`),

	ASSIGN: rx(`^=`),
	PLUS:   rx(`^\+`),
	MINUS:  rx(`^-`),
	MULT:   rx(`^\*`),
	DIV:    rx(`^/`),
	MOD:    rx(`^%`),
	CARET:  rx(`^\^`),
	NOT:    rx(`^!`),
	LT:     rx(`^<`),
	GT:     rx(`^>`),

	SEMICOLON: rx(`^;`),
	COMMA:     rx(`^,`),
	COLON:     rx(`^:`),
	LPAREN:    rx(`^\(`),
	RPAREN:    rx(`^\)`),
	LBRACE:    rx(`^\{`),
	RBRACE:    rx(`^\}`),

	NUM:    rx(`^(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`),
	STRING: rx(`^"([^"\\\n]|\\.)*"`),
	ARG:    rx(`^\$\d+`),
	ID:     rx(`^[a-zA-Z_][a-zA-Z0-9_]*`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^\s+`)
	commentRegex    = regexp.MustCompile(`^(//|#).*`)
)

// Token precedence order for matching (longer patterns first)
var tokenPrecedenceOrder = []TokenType{
	SYMBOLS, RETURN, LOCAL, PRINT, WHILE, PROC, FUNC, ELSE, READ, VAR, IF,
	INC, DEC, AND, OR, LE, GE, EQ, NE,
	ASSIGN, PLUS, MINUS, MULT, DIV, MOD, CARET, NOT, LT, GT,
	SEMICOLON, COMMA, COLON, LPAREN, RPAREN, LBRACE, RBRACE,
	NUM, STRING, ARG, ID,
}

// Get the regex pattern for a token type
func (t TokenType) Regex() *regexp.Regexp {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Pattern
	}

	return nil
}

// Get the raw regex string for a token type
func (t TokenType) RawRegex() string {
	if regex, ok := tokenRegexes[t]; ok {
		return regex.Raw
	}

	return ""
}

// Match the whitespace run or comment at the start of the string, if any
func MatchSkippable(s string) string {
	if match := whitespaceRegex.FindString(s); match != "" {
		return match
	}
	return commentRegex.FindString(s)
}

// Match the first token at the start of the string in precedence order
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.Pattern.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}
