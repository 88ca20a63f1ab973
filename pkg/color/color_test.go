package color_test

import (
	"strings"
	"testing"

	"cellar/pkg/color"

	"github.com/muesli/termenv"
)

func TestDisabled(t *testing.T) {
	color.EnableColor(false)
	defer color.EnableColor(true)

	if color.IsColorEnabled() {
		t.Fatal("expected colour to be off")
	}
	if got := color.RedText("x"); got != "x" {
		t.Errorf("expected plain text, got %q", got)
	}

	tests := []struct {
		line, col int
		msg, ctx  string
		expected  string
	}{
		{2, 5, "boom", "", "Error at 2:5: boom"},
		{1, 1, "bad", "x = )\n    ^", "Error at 1:1: bad\nx = )\n    ^"},
	}
	for _, test := range tests {
		if got := color.ErrorWithPosition(test.line, test.col, test.msg, test.ctx); got != test.expected {
			t.Errorf("expected %q, got %q", test.expected, got)
		}
	}
}

func TestEnabled(t *testing.T) {
	color.SetProfile(termenv.ANSI)
	defer color.EnableColor(true)

	got := color.RedText("x")
	if got == "x" || !strings.Contains(got, "x") || !strings.HasPrefix(got, "\x1b[") {
		t.Errorf("expected an escape sequence around x, got %q", got)
	}
	if !strings.Contains(color.ErrorWithPosition(1, 2, "m", ""), "\x1b[") {
		t.Errorf("expected coloured diagnostics")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		src      string
		col      int
		expected string
	}{
		{"x = )", 5, "x = )\n    ^"},
		{"\tprint 1 +\n", 10, "\tprint 1 +\n\t        ^"},
		{"ab", 4, "ab\n   ^"},
		{"", 0, "\n^"},
	}
	for _, test := range tests {
		if got := color.Excerpt(test.src, test.col); got != test.expected {
			t.Errorf("Excerpt(%q, %d): expected %q, got %q", test.src, test.col, test.expected, got)
		}
	}
}
