package parser_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"cellar/pkg/builtin"
	_ "cellar/pkg/builtin/all"
	"cellar/pkg/interpreter"
	"cellar/pkg/lexer"
	"cellar/pkg/parser"
	"cellar/pkg/parser/codegen"
	"cellar/pkg/types"
)

// execute compiles and runs src unit by unit, recovering after each failure
func execute(t *testing.T, src, input string) (string, []error) {
	t.Helper()

	var out bytes.Buffer
	it := interpreter.NewInterpreter(
		interpreter.WithWriter(&out),
		interpreter.WithReader(strings.NewReader(input)),
		interpreter.WithMaxSteps(100000),
	)
	if err := builtin.Install(it.Symbols(), it.Types()); err != nil {
		t.Fatal(err)
	}

	p := parser.NewParser(lexer.NewLexer(src), it.Codegen())
	var errs []error
	for {
		head := it.Symbols().Head()
		unit, err := p.ParseUnit()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil && unit.Runnable {
			err = it.Run(unit.Entry)
		}
		if err != nil {
			errs = append(errs, err)
			it.Recover(head)
			continue
		}
		it.ResetUnit()
	}

	return out.String(), errs
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"precedence", "1 + 2 * 3", "7\n"},
		{"power binds tighter than minus", "-2^2", "-4\n"},
		{"power is right associative", "2^3^2", "512\n"},
		{"double arithmetic", "x = 2.5\nx * 2", "5\n"},
		{"comparison yields long", "1 < 2.5", "1\n"},
		{"print items", `print "a", 1, "b"`, "a1b"},
		{"string concatenation", `"cell" + "ar"`, "cellar\n"},
		{"semicolons", "x = 1; y = 2; x + y", "3\n"},
		{"newline ends expression", "x = 1\n-2", "-2\n"},
		{"if else", `if (0) print "a" else print "b"`, "b"},
		{"else on next line", "if (1) print \"a\"\nelse print \"b\"", "a"},
		{"while", "i = 0\nwhile (i < 3) { print i; i++ }", "012"},
		{"increments", "n = 5\nn++\n++n\nn", "5\n7\n7\n"},
		{"short circuit and", "0 && undefined", "0\n"},
		{"short circuit or", "1 || undefined", "1\n"},
		{"logical values", "2 && 3\n0 || 0\n!0", "1\n0\n1\n"},
		{"narrow wrap", "var b: byte = 127\nb = b + 1\nb", "-128\n"},
		{"constants", "PI", "3.1415927\n"},
		{"builtins", "sqrt(16)\nlen(\"abc\")\natan2(0, 1)", "4\n3\n0\n"},
		{
			"function",
			"func sq(x) { return x * x }\nsq(3)",
			"9\n",
		},
		{
			"recursion",
			`func fib(n: long): long {
				if (n < 2) return n
				return fib(n-1) + fib(n-2)
			}
			fib(10)`,
			"55\n",
		},
		{
			"positional arguments",
			"func add(a, b) return $1 + $2\nadd(2, 3)",
			"5\n",
		},
		{
			"argument assignment",
			"func twice(a: long): long { $1 = $1 * 2; return a }\ntwice(21)",
			"42\n",
		},
		{
			"locals",
			`proc count(n: long) {
				local k: long = 0
				while (k < n) { print k; k = k + 1 }
			}
			count(3)`,
			"012",
		},
		{
			"locals restart at zero",
			`proc p() {
				local k: long
				k++
				print k
			}
			p(); p()`,
			"11",
		},
		{
			"return from nested blocks",
			`func find(n: long): long {
				local i: long = 0
				while (1) {
					if (i * i >= n) { return i }
					i++
				}
			}
			find(50)`,
			"8\n",
		},
		{
			"global assigned in routine",
			"proc setg() { g = 3 }\nsetg()\ng",
			"3\n",
		},
		{
			"var inside routine",
			"proc mk() { var made: short = 7 }\nmk()\nmade",
			"7\n",
		},
		{
			"string parameters",
			`func greet(who: string): string return "hi " + who
			print greet("there")`,
			"hi there",
		},
		{
			"comments",
			"# full line\nx = 4 // trailing\nx",
			"4\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, errs := execute(t, test.src, "")
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if out != test.expected {
				t.Errorf("expected %q, got %q", test.expected, out)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"type mismatch", `"a" - 1`, types.ErrTypeMismatch},
		{"operator undefined", `"a" - "b"`, codegen.ErrOperatorUndefined},
		{"undefined routine", "foo(1)", parser.ErrUndefinedRoutine},
		{"argument count", "func f(a) { return a }\nf(1, 2)", parser.ErrArgCount},
		{"return outside routine", "return 1", parser.ErrReturnOutsideRoutine},
		{"argument outside routine", "$1", parser.ErrArgOutsideRoutine},
		{"procedure value", "proc p() print 1\nx = p()", parser.ErrNoValue},
		{"nested definition", "proc p() { proc q() print 1 }", parser.ErrNestedDefinition},
		{"procedure returns value", "proc p() return 1", parser.ErrUnexpectedValue},
		{"function returns nothing", "func f() return", parser.ErrMissingValue},
		{"unknown type", "var x: word", parser.ErrUnknownType},
		{"assign constant", "PI = 3", parser.ErrNotAssignable},
		{"call variable", "x = 1\nx(2)", parser.ErrNotCallable},
		{"type as value", "long + 1", parser.ErrNotVariable},
		{"local outside routine", "local x: long", codegen.ErrLocalOutsideRoutine},
		{"redefinition", "proc p() print 1\nproc p() print 2", codegen.ErrRedefinition},
		{"syntax", "x = )", parser.ErrSyntax},
		{"trailing token", "x = 1 2", parser.ErrSyntax},
		{"number range", "99999999999999999999", parser.ErrNumberRange},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, errs := execute(t, test.src, "")
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if !errors.Is(errs[0], test.err) {
				t.Errorf("expected %v, got %v", test.err, errs[0])
			}
			var perr *parser.Error
			if !errors.As(errs[0], &perr) {
				t.Errorf("expected a positioned error, got %T", errs[0])
			}
		})
	}
}

func TestIncomplete(t *testing.T) {
	for _, src := range []string{"func f(a) {", "x = ", "if (x", "print 1,", "while (1) {\n print 1\n"} {
		_, errs := execute(t, src, "")
		if len(errs) != 1 || !errors.Is(errs[0], parser.ErrIncomplete) {
			t.Errorf("%q: expected ErrIncomplete, got %v", src, errs)
		}
	}
}

func TestRecovery(t *testing.T) {
	src := `print 1 +
print 2
proc bad() { local x: long; x = "s" }
bad()
print 3`

	out, errs := execute(t, src, "")
	if out != "23" {
		t.Errorf("expected output 23, got %q", out)
	}
	if len(errs) != 3 {
		t.Fatalf("expected three errors, got %v", errs)
	}
	if !errors.Is(errs[0], parser.ErrSyntax) {
		t.Errorf("expected a syntax error first, got %v", errs[0])
	}
	if !errors.Is(errs[1], types.ErrTypeMismatch) {
		t.Errorf("expected a type mismatch, got %v", errs[1])
	}
	if !errors.Is(errs[2], parser.ErrUndefinedRoutine) {
		t.Errorf("expected bad to be rolled back, got %v", errs[2])
	}
}

func TestRedefinitionKeepsFirst(t *testing.T) {
	out, errs := execute(t, "proc p() print 1\nproc p() print 2\np()", "")
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if out != "1" {
		t.Errorf("expected the first definition to survive, got %q", out)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"undefined variable", "y + 1", interpreter.ErrUndefinedVariable},
		{"divide by zero", "1 / 0", types.ErrDivideByZero},
		{"missing return", "func f() { }\nf()", interpreter.ErrNoReturnValue},
		{"argument index", "func f(a) return $2\nf(1)", interpreter.ErrArgumentIndexOutOfRange},
		{"domain", "sqrt(-1)", builtin.ErrDomain},
		{"recursion depth", "func r(n) return r(n)\nr(1)", interpreter.ErrCallStackExhausted},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, errs := execute(t, test.src, "")
			if len(errs) != 1 || !errors.Is(errs[0], test.err) {
				t.Errorf("expected %v, got %v", test.err, errs)
			}
		})
	}
}

func TestRead(t *testing.T) {
	out, errs := execute(t, "read(v)\nv\nread(v)\nread(v)", "42 x")
	if out != "1\n42\n0\n" {
		t.Errorf("unexpected output %q", out)
	}
	if len(errs) != 1 || !errors.Is(errs[0], interpreter.ErrMalformedInput) {
		t.Fatalf("expected one malformed input error, got %v", errs)
	}
}

func TestReadAtEnd(t *testing.T) {
	out, errs := execute(t, "while (read(v)) print v, \" \"", "1 2 3")
	if len(errs) > 0 {
		t.Fatal(errs)
	}
	if out != "1 2 3 " {
		t.Errorf("unexpected output %q", out)
	}
}

func TestErrorPosition(t *testing.T) {
	_, errs := execute(t, "x = 1\ny = (2 +", "")
	var perr *parser.Error
	if len(errs) != 1 || !errors.As(errs[0], &perr) {
		t.Fatalf("expected a positioned error, got %v", errs)
	}
	if perr.Pos.Line != 2 {
		t.Errorf("expected line 2, got %s", perr.Pos)
	}
}

func TestUnitBoundaries(t *testing.T) {
	it := interpreter.NewInterpreter(interpreter.WithWriter(io.Discard))
	p := parser.NewParser(lexer.NewLexer("proc p() print 1\n\np()\n"), it.Codegen())

	def, err := p.ParseUnit()
	if err != nil {
		t.Fatal(err)
	}
	if def.Runnable {
		t.Errorf("a definition is not runnable")
	}
	it.ResetUnit()

	call, err := p.ParseUnit()
	if err != nil {
		t.Fatal(err)
	}
	if !call.Runnable || call.Pos.Line != 3 {
		t.Errorf("unexpected unit %+v", call)
	}
	if call.Entry <= def.Entry {
		t.Errorf("the call must follow the routine body, got %d after %d", call.Entry, def.Entry)
	}

	if _, err := p.ParseUnit(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
