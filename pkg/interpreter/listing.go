package interpreter

import (
	"fmt"
	"io"
	"strconv"

	"cellar/pkg/symbol"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ListSymbols renders every visible symbol as a table, most recent first
func (i *Interpreter) ListSymbols(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "KIND", "TYPE", "VALUE")

	for _, sym := range i.symbols.All() {
		t.Row(sym.Name, sym.Kind.String(), typeName(sym), describe(sym))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func typeName(sym *symbol.Symbol) string {
	if sym.Type == nil {
		return ""
	}
	return sym.Type.Name()
}

func describe(sym *symbol.Symbol) string {
	switch sym.Kind {
	case symbol.GlobalVar, symbol.Const:
		if sym.Type != nil {
			return sym.Type.Format(sym.Value)
		}
		return sym.Value.Str()
	case symbol.Func, symbol.Proc:
		return fmt.Sprintf("entry=%04d args=%d locals=%d", sym.Entry, len(sym.Formals), sym.LocalSlots)
	case symbol.BuiltinFunc, symbol.BuiltinProc:
		return "args=" + strconv.Itoa(len(sym.Formals))
	case symbol.LocalVar, symbol.Param:
		return "offset=" + strconv.Itoa(sym.Offset)
	case symbol.Type:
		return fmt.Sprintf("size=%d weight=%d", sym.Type.Size(), sym.Type.Weight())
	default:
		return ""
	}
}
