package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cellar/pkg/builtin"
	_ "cellar/pkg/builtin/all"
	"cellar/pkg/color"
	"cellar/pkg/interpreter"
	"cellar/pkg/lexer"
	"cellar/pkg/parser"

	"github.com/charmbracelet/log"
)

var ErrUnitsFailed = errors.New("units failed")

// Session drives one interpreter over a sequence of sources. Every top-level
// unit is compiled, run and discarded on its own; a failing unit is rolled
// back and the session carries on with the next one.
type Session struct {
	it          *interpreter.Interpreter
	diag        io.Writer // Diagnostics and disassembly
	disassemble bool      // List each unit's code before running it
	pending     string    // Incomplete interactive input
	line        int       // Interactive lines consumed before pending
	failures    int       // Units that failed so far
}

type Option func(*Session)

// WithDiagnostics sets where errors and disassembly are written
func WithDiagnostics(w io.Writer) Option {
	return func(s *Session) { s.diag = w }
}

// WithDisassembly lists every unit before it runs
func WithDisassembly(on bool) Option {
	return func(s *Session) { s.disassemble = on }
}

// NewSession creates a session over a fresh interpreter with every native
// library installed
func NewSession(opts []Option, itOpts ...interpreter.Option) (*Session, error) {
	s := &Session{diag: os.Stderr}
	for _, o := range opts {
		o(s)
	}

	s.it = interpreter.NewInterpreter(itOpts...)
	if err := builtin.Install(s.it.Symbols(), s.it.Types()); err != nil {
		return nil, fmt.Errorf("installing builtins: %w", err)
	}

	return s, nil
}

func (s *Session) Interpreter() *interpreter.Interpreter { return s.it }
func (s *Session) Failures() int                         { return s.failures }
func (s *Session) Pending() bool                         { return s.pending != "" }

// Execute runs a complete source. Unit errors are reported as they happen;
// the returned error only summarises them.
func (s *Session) Execute(name, src string) error {
	log.Info("Processing source", "name", name, "bytes", len(src))

	before := s.failures
	s.run(name, src, 0, false)

	if n := s.failures - before; n > 0 {
		return fmt.Errorf("%w: %d in %s", ErrUnitsFailed, n, name)
	}
	return nil
}

// Feed adds one line of interactive input. It reports false while the
// buffered input ends inside a construct and more lines are needed.
func (s *Session) Feed(line string) bool {
	src := s.pending + line
	rest := s.run("stdin", src, s.line, true)

	consumed := src[:len(src)-len(rest)]
	s.line += strings.Count(consumed, "\n")
	s.pending = rest

	return rest == ""
}

// Flush compiles whatever interactive input is still buffered, reporting it
// as incomplete
func (s *Session) Flush() {
	if s.pending == "" {
		return
	}
	s.run("stdin", s.pending, s.line, false)
	s.line += strings.Count(s.pending, "\n")
	s.pending = ""
}

// run compiles and executes the units of src. With partial set, input that
// ends inside a construct is handed back instead of being reported.
func (s *Session) run(name, src string, base int, partial bool) string {
	p := parser.NewParser(lexer.NewLexer(src), s.it.Codegen())

	for {
		head := s.it.Symbols().Head()
		start := p.Offset()

		unit, err := p.ParseUnit()
		if errors.Is(err, io.EOF) {
			return ""
		}
		if partial && errors.Is(err, parser.ErrIncomplete) {
			s.it.Recover(head)
			return src[start:]
		}

		if err == nil {
			if s.disassemble {
				s.listing(name, base, unit)
			}
			if unit.Runnable {
				err = s.it.Run(unit.Entry)
			}
		}

		if err != nil {
			s.report(name, src, base, unit, err)
			s.it.Recover(head)
			continue
		}

		log.Debug("Unit done", "source", name, "line", base+unit.Pos.Line, "steps", s.it.Steps())
		s.it.ResetUnit()
	}
}

// listing disassembles the cells the unit generated
func (s *Session) listing(name string, base int, unit parser.Unit) {
	fmt.Fprintln(s.diag, color.GreenText(fmt.Sprintf("=== %s:%d ===", name, base+unit.Pos.Line)))
	if err := s.it.Disassemble(s.diag, unit.Entry, s.it.Codegen().Cursor()); err != nil {
		log.Warn("Disassembly failed", "error", err)
	}
}

// report prints a failed unit at the most precise position known: the
// offending token for compile errors, the unit start for run-time errors
func (s *Session) report(name, src string, base int, unit parser.Unit, err error) {
	s.failures++

	pos := unit.Pos
	msg := err.Error()
	var perr *parser.Error
	if errors.As(err, &perr) {
		pos = perr.Pos
		msg = perr.Err.Error()
	}

	context := ""
	if line, ok := sourceLine(src, pos.Line); ok {
		context = color.Excerpt(line, pos.Column)
	}

	fmt.Fprintln(s.diag, color.ErrorWithPosition(base+pos.Line, pos.Column, name+": "+msg, context))
	log.Debug("Unit failed", "source", name, "line", base+pos.Line, "error", err)
}

func sourceLine(src string, n int) (string, bool) {
	lines := strings.Split(src, "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}
