package lexer

import "strconv"

type Lexer struct {
	input     string // input string to be tokenized
	length    int    // length of the input string
	position  int    // current position in the input string
	line      int    // current line number for error reporting
	column    int    // current column number for error reporting
	lastLine  int    // line of the previous token, 0 before the first
	lineStart bool   // next token is the first on its line
}

// Create a new lexer instance
func NewLexer(s string) *Lexer {
	return &Lexer{
		input:     s,
		length:    len(s),
		position:  0,
		line:      1,
		column:    1,
		lineStart: true,
	}
}

// Get the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	first := l.lineStart || l.line != l.lastLine
	l.lineStart = false
	l.lastLine = l.line

	// End of input
	if l.position >= l.length {
		tok := NewToken(EOF, "", "", l.currentPosition())
		tok.LineStart = first
		return tok
	}

	// Regex match the first token it sees from the remaining input from current position to the end
	pos := l.currentPosition()
	remaining := l.input[l.position:]
	token_type, lexeme, matched := MatchToken(remaining)

	if !matched {
		char := string(l.input[l.position])
		l.advance(1)

		tok := NewToken(ILLEGAL, char, "", pos)
		tok.LineStart = first
		return tok
	}

	var literal string
	switch token_type {
	case STRING:
		s, err := strconv.Unquote(lexeme)
		if err != nil {
			token_type = ILLEGAL
		}
		literal = s
	case ARG:
		literal = lexeme[1:]
	default:
		literal = lexeme
	}

	tok := NewToken(token_type, lexeme, literal, pos)
	tok.LineStart = first
	l.advance(len(lexeme))

	return tok
}

// View next token without advancing the position
func (l *Lexer) Peek() Token {
	// save state
	saved := *l

	token := l.NextToken()

	// restore state
	*l = saved

	return token
}

// Check if there are more characters to read
func (l *Lexer) HasMore() bool {
	return l.position < l.length
}

// Offset returns the byte offset of the next unread character
func (l *Lexer) Offset() int {
	return l.position
}

// Skip whitespace and comments
func (l *Lexer) skipWhitespace() {
	for l.position < l.length {
		match := MatchSkippable(l.input[l.position:])
		if match == "" {
			return
		}
		l.advance(len(match))
	}
}

// Advance the lexer position by n characters
func (l *Lexer) advance(n int) {
	for range n {
		if l.position >= l.length {
			break
		}

		if l.input[l.position] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}

		l.position++
	}
}

// Get the current position of the lexer
func (l *Lexer) currentPosition() Position {
	return Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}
