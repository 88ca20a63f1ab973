package interpreter

import (
	"math"

	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

var constants = []struct {
	name  string
	value float64
}{
	{"PI", math.Pi},
	{"E", math.E},
	{"GAMMA", 0.57721566490153286060}, // Euler-Mascheroni
	{"DEG", 180 / math.Pi},            // degrees per radian
	{"PHI", math.Phi},
}

// installPredefined installs the type names and the numeric constants
func (i *Interpreter) installPredefined() {
	for _, d := range i.types.All() {
		sym := i.symbols.Install(d.Name(), symbol.Type)
		sym.Type = d
	}

	for _, c := range constants {
		sym := i.symbols.Install(c.name, symbol.Const)
		sym.Type = i.types.Double()
		sym.Value = types.NewFloat(c.value)
	}
}
