package lexer_test

import (
	"testing"

	"cellar/pkg/lexer"
)

func TestTokens(t *testing.T) {
	input := "func add(a: long, b) : long {\n" + "	local t: long = $1 + $2;\n" + "	while (t >= 10 && !done || x != 2) t--\n" + "	return t ^ 2 % 3\n" + "}\nprint \"sum: \", add(1, 2.5)\nread(x); symbols; ++y"
	mylexer := lexer.NewLexer(input)

	expectedTokens := []lexer.TokenType{
		lexer.FUNC, lexer.ID, lexer.LPAREN, lexer.ID, lexer.COLON, lexer.ID, lexer.COMMA, lexer.ID, lexer.RPAREN, lexer.COLON, lexer.ID, lexer.LBRACE,
		lexer.LOCAL, lexer.ID, lexer.COLON, lexer.ID, lexer.ASSIGN, lexer.ARG, lexer.PLUS, lexer.ARG, lexer.SEMICOLON,
		lexer.WHILE, lexer.LPAREN, lexer.ID, lexer.GE, lexer.NUM, lexer.AND, lexer.NOT, lexer.ID, lexer.OR, lexer.ID, lexer.NE, lexer.NUM, lexer.RPAREN, lexer.ID, lexer.DEC,
		lexer.RETURN, lexer.ID, lexer.CARET, lexer.NUM, lexer.MOD, lexer.NUM,
		lexer.RBRACE,
		lexer.PRINT, lexer.STRING, lexer.COMMA, lexer.ID, lexer.LPAREN, lexer.NUM, lexer.COMMA, lexer.NUM, lexer.RPAREN,
		lexer.READ, lexer.LPAREN, lexer.ID, lexer.RPAREN, lexer.SEMICOLON, lexer.SYMBOLS, lexer.SEMICOLON, lexer.INC, lexer.ID,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s (%s)", i, expected, token.Type, token.Lexeme)
		}
	}
}

func TestLiterals(t *testing.T) {
	mylexer := lexer.NewLexer(`"tab\there" $12 "q\"uote"`)

	tests := []struct {
		tokenType lexer.TokenType
		literal   string
	}{
		{lexer.STRING, "tab\there"},
		{lexer.ARG, "12"},
		{lexer.STRING, `q"uote`},
	}

	for _, test := range tests {
		token := mylexer.NextToken()
		if token.Type != test.tokenType || token.Literal != test.literal {
			t.Errorf("expected %s %q, got %s", test.tokenType, test.literal, token)
		}
	}

	bad := lexer.NewLexer(`"\q"`).NextToken()
	if bad.Type != lexer.ILLEGAL {
		t.Errorf("expected an invalid escape to be illegal, got %s", bad)
	}
}

func TestKeywordsNeedBoundary(t *testing.T) {
	for _, input := range []string{"variable", "iffy", "printer", "procs", "local_x"} {
		token := lexer.NewLexer(input).NextToken()
		if token.Type != lexer.ID || token.Lexeme != input {
			t.Errorf("%s: expected an identifier, got %s", input, token)
		}
	}
}

func TestPositionsAndLines(t *testing.T) {
	mylexer := lexer.NewLexer("x = 1\n  -2 y")

	expected := []struct {
		tokenType lexer.TokenType
		line      int
		column    int
		lineStart bool
	}{
		{lexer.ID, 1, 1, true},
		{lexer.ASSIGN, 1, 3, false},
		{lexer.NUM, 1, 5, false},
		{lexer.MINUS, 2, 3, true},
		{lexer.NUM, 2, 4, false},
		{lexer.ID, 2, 6, false},
		{lexer.EOF, 2, 7, false},
	}

	for i, e := range expected {
		if peeked := mylexer.Peek(); peeked.Type != e.tokenType {
			t.Errorf("Token %d: Peek returned %s", i, peeked.Type)
		}
		token := mylexer.NextToken()
		if token.Type != e.tokenType || token.Pos.Line != e.line || token.Pos.Column != e.column || token.LineStart != e.lineStart {
			t.Errorf("Token %d: expected %s at %d:%d (start %v), got %s at %d:%d (start %v)",
				i, e.tokenType, e.line, e.column, e.lineStart, token.Type, token.Pos.Line, token.Pos.Column, token.LineStart)
		}
	}
}

func TestIllegal(t *testing.T) {
	mylexer := lexer.NewLexer("a @ b")
	types := []lexer.TokenType{lexer.ID, lexer.ILLEGAL, lexer.ID, lexer.EOF}
	for i, expected := range types {
		if token := mylexer.NextToken(); token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}
