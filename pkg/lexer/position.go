package lexer

import "fmt"

// Position locates a token in the source
type Position struct {
	Line   int // 1-based line
	Column int // 1-based column
	Offset int // byte offset
}

// Returns the line:column form used in diagnostics
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes earlier in the source than q
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}
