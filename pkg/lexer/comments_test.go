package lexer_test

import (
	"testing"

	"cellar/pkg/lexer"
)

func TestComments(t *testing.T) {
	input := `// test comment
var x : long = 10; // another test comment
# shell style comment
x = x / 2 # trailing`

	mylexer := lexer.NewLexer(input)
	expectedTokens := []lexer.TokenType{
		lexer.VAR, lexer.ID, lexer.COLON, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.ID, lexer.ASSIGN, lexer.ID, lexer.DIV, lexer.NUM,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}

func TestMatchSkippable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{" \t\nx", " \t\n"},
		{"// note\nx", "// note"},
		{"# note", "# note"},
		{"x // note", ""},
		{"/ 2", ""},
		{"", ""},
	}

	for _, test := range tests {
		if got := lexer.MatchSkippable(test.input); got != test.expected {
			t.Errorf("MatchSkippable(%q): expected %q, got %q", test.input, test.expected, got)
		}
	}
}

func TestCommentsKeepPositions(t *testing.T) {
	mylexer := lexer.NewLexer("# one\n  // two\n\t x")
	token := mylexer.NextToken()
	if token.Type != lexer.ID || token.Pos.Line != 3 || token.Pos.Column != 3 {
		t.Errorf("expected x at 3:3, got %s at %s", token.Type, token.Pos)
	}
	if !token.LineStart {
		t.Errorf("expected x to start its line")
	}
}
