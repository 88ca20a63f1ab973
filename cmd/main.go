package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"cellar/internal/compiler"
	"cellar/internal/config"
	"cellar/internal/logger"
	"cellar/pkg/color"
	"cellar/pkg/interpreter"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

const (
	prompt       = "cellar> "
	continuation = "....... "
)

type options struct {
	Help        bool
	Verbose     bool
	NoColor     bool
	Disassemble bool
	Trace       bool
	ConfigFile  string
	MaxSteps    int
}

// Main entry point for the cellar interpreter.
func main() {
	opts := options{}

	flag.BoolVar(&opts.Help, "h", false, "Show help")
	flag.BoolVar(&opts.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&opts.NoColor, "n", false, "No color")
	flag.BoolVar(&opts.Disassemble, "d", false, "Disassemble each unit before running it")
	flag.BoolVar(&opts.Trace, "t", false, "Trace calls and returns")
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file (default: nearest "+config.FileName+")")
	flag.IntVar(&opts.MaxSteps, "steps", -1, "Instructions allowed per unit, 0 for no limit")

	flag.Parse()
	args := flag.Args()

	logger.Init(opts.Verbose, opts.NoColor)
	if opts.Help {
		fmt.Printf("Usage: %s [options] [file ...]\n", os.Args[0])
		fmt.Println("Without files, statements are read from standard input.")
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		log.Fatal("Configuration failed", "error", err)
	}
	opts.apply(cfg)

	if cfg.Output.NoColor {
		color.EnableColor(false)
		logger.Init(opts.Verbose, true)
	}
	log.Debug("Configuration", "path", cfg.Path, "limits", fmt.Sprintf("%+v", cfg.Limits))

	// read statements and the read builtin share one buffered stdin
	stdin := bufio.NewReader(os.Stdin)
	session, err := compiler.NewSession(
		[]compiler.Option{compiler.WithDisassembly(cfg.Output.Disassemble)},
		append(cfg.Options(), interpreter.WithReader(stdin))...,
	)
	if err != nil {
		log.Fatal("Startup failed", "error", err)
	}

	if len(args) == 0 {
		tty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		err = interactive(session, stdin, tty)
	} else {
		err = runFiles(session, args)
	}
	if err != nil {
		log.Fatal("Execution failed", "error", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	return config.FindAndLoad(dir)
}

// apply lets command line flags override the configuration file
func (o options) apply(cfg *config.Config) {
	if o.NoColor {
		cfg.Output.NoColor = true
	}
	if o.Disassemble {
		cfg.Output.Disassemble = true
	}
	if o.Trace {
		cfg.Output.Trace = true
	}
	if o.MaxSteps >= 0 {
		cfg.Limits.Steps = o.MaxSteps
	}
}

// runFiles executes each file in turn; a failing file does not stop the rest
func runFiles(s *compiler.Session, files []string) error {
	var errs []error
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot read source: %w", err))
			continue
		}
		if err := s.Execute(file, string(src)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// interactive feeds standard input line by line, prompting when it is a
// terminal
func interactive(s *compiler.Session, reader *bufio.Reader, tty bool) error {
	complete := true
	for {
		if tty {
			if complete {
				fmt.Fprint(os.Stderr, color.GrayText(prompt))
			} else {
				fmt.Fprint(os.Stderr, color.GrayText(continuation))
			}
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			complete = s.Feed(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	s.Flush()
	if tty {
		fmt.Fprintln(os.Stderr)
	}

	if n := s.Failures(); n > 0 && !tty {
		return fmt.Errorf("%w: %d in stdin", compiler.ErrUnitsFailed, n)
	}
	return nil
}
