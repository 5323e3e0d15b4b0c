// Package cli provides the configuration and program loading shared by the commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/pflag"

	"go.creack.net/chipple/asm"
	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/assets"
	"go.creack.net/chipple/disasm"
	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

// Accepted file extensions.
var (
	BinaryExts = []string{".ch8", ".c8"}
	SourceExts = []string{assets.SourceExt}
)

// Defaults.
const (
	DefaultCyclesPerFrame = 10 // ~600 instructions per second at 60 fps.
	DefaultScale          = 10
	DefaultMaxCycles      = 1000
)

type Config struct {
	Sample         string // Embedded sample name, used when no path is given.
	LoadAddress    uint16 // Zero means op.ProgramStart.
	CyclesPerFrame int    // Cycles executed per rendered frame.
	Scale          int    // Window pixels per cell.
	Trace          bool   // Log every executed instruction.
	Quiet          bool   // Only log errors.
	MaxCycles      int    // Cycle budget for headless runs.
}

func DefaultConfig() Config {
	return Config{
		LoadAddress:    op.ProgramStart,
		CyclesPerFrame: DefaultCyclesPerFrame,
		Scale:          DefaultScale,
		MaxCycles:      DefaultMaxCycles,
	}
}

// RegisterFlags binds the config to the given flag set.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Sample, "sample", "s", c.Sample, fmt.Sprintf("run an embedded sample instead of a file (%s)", strings.Join(assets.Names(), ", ")))
	fs.Uint16Var(&c.LoadAddress, "load-address", c.LoadAddress, "address the program is loaded at")
	fs.IntVarP(&c.CyclesPerFrame, "cycles", "c", c.CyclesPerFrame, "cycles per frame")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per screen cell")
	fs.BoolVarP(&c.Trace, "trace", "t", c.Trace, "log every executed instruction")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "only log errors")
	fs.IntVarP(&c.MaxCycles, "max-cycles", "n", c.MaxCycles, "cycle budget for headless runs")
}

// NewLogger creates the logger for the configured verbosity.
// Traces are logged at debug level.
func (c Config) NewLogger() *log.Logger {
	cfg := log.DefaultConfig()
	if c.Trace {
		cfg.Level = log.DebugLevel
	} else if c.Quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func (c Config) Validate() error {
	var errs []error
	if c.LoadAddress%op.InstructionSize != 0 || c.LoadAddress > op.MaxAddress {
		errs = append(errs, fmt.Errorf("invalid load address 0x%X, must be even and at most 0x%03X", c.LoadAddress, op.MaxAddress))
	}
	if c.CyclesPerFrame <= 0 {
		errs = append(errs, fmt.Errorf("invalid cycles per frame %d, must be positive", c.CyclesPerFrame))
	}
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("invalid scale %d, must be positive", c.Scale))
	}
	if c.MaxCycles < 0 {
		errs = append(errs, fmt.Errorf("invalid max cycles %d, must not be negative", c.MaxCycles))
	}
	return errors.Join(errs...)
}

func (c Config) base() uint16 {
	if c.LoadAddress == 0 {
		return op.ProgramStart
	}
	return c.LoadAddress
}

// ROM is a loaded program image.
type ROM struct {
	PathName  string
	ShortName string
	Data      []byte

	Prog  *parser.Program // Set when assembled from source.
	Lines []disasm.Line
}

// Load returns the program to run: the file at path,
// or the configured sample when path is empty.
func (c Config) Load(path string) (*ROM, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case path != "" && c.Sample != "":
		return nil, fmt.Errorf("can't use both a file and the %q sample", c.Sample)
	case path != "":
		return LoadROM(path, c.base())
	case c.Sample != "":
		return LoadSample(c.Sample, c.base())
	default:
		return nil, fmt.Errorf("no program provided")
	}
}

// VMConfig returns the interpreter config for the rom.
func (c Config) VMConfig(rom *ROM) vm.Config {
	return vm.Config{
		Program:     rom.Data,
		LoadAddress: c.base(),
		Trace:       c.Trace,
	}
}

func shortName(pathName string) string {
	return strings.TrimSuffix(filepath.Base(pathName), filepath.Ext(pathName))
}

// LoadROM reads the file. Sources get assembled at base.
func LoadROM(pathName string, base uint16) (*ROM, error) {
	ext := strings.ToLower(filepath.Ext(pathName))
	if !slices.Contains(BinaryExts, ext) && !slices.Contains(SourceExts, ext) {
		return nil, fmt.Errorf("invalid file extension for %q, must be one of %s", pathName, strings.Join(append(slices.Clone(BinaryExts), SourceExts...), ", "))
	}

	data, err := os.ReadFile(pathName)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", pathName, err)
	}

	rom := &ROM{PathName: pathName, ShortName: shortName(pathName)}
	if slices.Contains(SourceExts, ext) {
		buf, pr, err := asm.Compile(pathName, string(data), int(base))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %q: %w", pathName, err)
		}
		rom.Prog = pr
		data = buf
	}
	if err := rom.setData(data, base); err != nil {
		return nil, fmt.Errorf("invalid program %q: %w", pathName, err)
	}
	return rom, nil
}

// LoadSample assembles the named embedded sample at base.
func LoadSample(name string, base uint16) (*ROM, error) {
	src, err := assets.Source(name)
	if err != nil {
		return nil, err
	}
	buf, pr, err := asm.Compile(name+assets.SourceExt, src, int(base))
	if err != nil {
		return nil, fmt.Errorf("failed to compile sample %q: %w", name, err)
	}
	rom := &ROM{PathName: name + assets.SourceExt, ShortName: name, Prog: pr}
	if err := rom.setData(buf, base); err != nil {
		return nil, fmt.Errorf("invalid sample %q: %w", name, err)
	}
	return rom, nil
}

func (r *ROM) setData(data []byte, base uint16) error {
	if len(data) == 0 {
		return fmt.Errorf("empty program")
	}
	if maxSize := op.MemSize - int(base); len(data) > maxSize {
		return fmt.Errorf("program of %d bytes exceeds the %d bytes available at 0x%03X", len(data), maxSize, base)
	}
	r.Data = data
	r.Lines = disasm.Disasm(data, base)
	return nil
}
