// Package config handles cellar.toml interpreter configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cellar/pkg/cell"
	"cellar/pkg/interpreter"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "cellar.toml"

var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the cellar.toml configuration.
type Config struct {
	Limits Limits `toml:"limits"`
	Output Output `toml:"output"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Limits bounds the machine.
type Limits struct {
	Cells  int `toml:"cells"`  // cell store capacity
	Stack  int `toml:"stack"`  // operand stack depth
	Frames int `toml:"frames"` // call frames
	Steps  int `toml:"steps"`  // instructions per unit, 0 for no limit
}

// Output configures diagnostics.
type Output struct {
	NoColor     bool `toml:"no-color"`
	Disassemble bool `toml:"disassemble"` // list each unit's code before running it
	Trace       bool `toml:"trace"`       // log calls and returns
}

// Default returns the configuration used without a cellar.toml.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Limits.Cells <= 0 {
		c.Limits.Cells = cell.DefaultCapacity
	}
	if c.Limits.Stack <= 0 {
		c.Limits.Stack = interpreter.DefaultStackSize
	}
	if c.Limits.Frames <= 0 {
		c.Limits.Frames = interpreter.DefaultFrameDepth
	}
	if c.Limits.Steps < 0 {
		c.Limits.Steps = 0
	}
}

// Parse decodes TOML text. Keys outside the schema are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}

	c.applyDefaults()
	return &c, nil
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir to the first cellar.toml and loads it.
// Without one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Options translates the configuration into interpreter options.
func (c *Config) Options() []interpreter.Option {
	return []interpreter.Option{
		interpreter.WithStoreSize(c.Limits.Cells),
		interpreter.WithStackSize(c.Limits.Stack),
		interpreter.WithFrameDepth(c.Limits.Frames),
		interpreter.WithMaxSteps(c.Limits.Steps),
		interpreter.WithTrace(c.Output.Trace),
	}
}
