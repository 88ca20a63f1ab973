package strlib_test

import (
	"errors"
	"testing"

	"cellar/pkg/builtin"
	_ "cellar/pkg/builtin/strlib"
	"cellar/pkg/symbol"
	"cellar/pkg/types"
)

type args []types.Value

func (a args) Len() int                       { return len(a) }
func (a args) Arg(i int) (types.Value, error) { return a[i-1], nil }

func (a args) SetArg(i int, v types.Value) error {
	a[i-1] = v
	return nil
}

func TestStrings(t *testing.T) {
	tab := symbol.NewTable()
	if err := builtin.Install(tab, types.NewRegistry()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		in       types.Value
		expected string
	}{
		{"len", types.NewString("héllo"), "5"},
		{"upper", types.NewString("cellar"), "CELLAR"},
		{"lower", types.NewString("MiXeD"), "mixed"},
		{"str", types.NewFloat(1.0 / 3), "0.33333333"},
		{"num", types.NewString(" 2.5 "), "2.5"},
	}

	for _, test := range tests {
		sym, ok := tab.Lookup(test.name)
		if !ok {
			t.Fatalf("%s not installed", test.name)
		}
		v, err := sym.Native(args{test.in})
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if v.Str() != test.expected {
			t.Errorf("%s: expected %q, got %q", test.name, test.expected, v.Str())
		}
	}

	num, _ := tab.Lookup("num")
	if _, err := num.Native(args{types.NewString("abc")}); !errors.Is(err, builtin.ErrMalformedNumber) {
		t.Errorf("expected ErrMalformedNumber, got %v", err)
	}
}
