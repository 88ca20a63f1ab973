package builtin

import (
	"fmt"
	"sort"

	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

// Plugin is a native library. Plugin packages add themselves to the catalog
// from init.
type Plugin struct {
	Name    string
	Install func(tab *symbol.Table, reg *types.Registry) error
}

var catalog = map[string]Plugin{}

// Add puts a plugin into the process-wide catalog.
func Add(p Plugin) {
	if p.Install == nil {
		panic(fmt.Sprintf("plugin %s has nil install", p.Name))
	}
	if _, exists := catalog[p.Name]; exists {
		panic(fmt.Sprintf("plugin %s already added", p.Name))
	}
	catalog[p.Name] = p
}

// Plugins returns the catalog in name order.
func Plugins() []Plugin {
	out := make([]Plugin, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Install installs every catalogued plugin.
func Install(tab *symbol.Table, reg *types.Registry) error {
	for _, p := range Plugins() {
		if err := p.Install(tab, reg); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
	}
	return nil
}

// RegisterAll registers specs in order, stopping at the first failure.
func RegisterAll(tab *symbol.Table, specs []Spec) error {
	for _, spec := range specs {
		if _, err := Register(tab, spec); err != nil {
			return err
		}
	}
	return nil
}
