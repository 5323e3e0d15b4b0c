package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/spf13/pflag"

	"go.creack.net/chipple/assets"
	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadROMBinary(t *testing.T) {
	p := writeFile(t, "test.ch8", []byte{0x6A, 0x07, 0x12, 0x00})
	rom, err := LoadROM(p, op.ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, "test", rom.ShortName)
	assert.Equal(t, []byte{0x6A, 0x07, 0x12, 0x00}, rom.Data)
	assert.Equal(t, true, rom.Prog == nil)
	assert.Equal(t, 2, len(rom.Lines))
}

func TestLoadROMSource(t *testing.T) {
	p := writeFile(t, "loop.s", []byte("loop: jp loop\n"))
	rom, err := LoadROM(p, 0x300)
	assert.NoError(t, err)
	assert.Equal(t, "loop", rom.ShortName)
	assert.Equal(t, []byte{0x13, 0x00}, rom.Data)
	assert.Equal(t, true, rom.Prog != nil)
}

func TestLoadROMErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"bad extension", writeFile(t, "test.cor", []byte{0x00, 0xE0})},
		{"missing file", filepath.Join(t.TempDir(), "missing.ch8")},
		{"empty", writeFile(t, "empty.ch8", nil)},
		{"too large", writeFile(t, "large.c8", make([]byte, op.MemSize))},
		{"bad source", writeFile(t, "bad.s", []byte("nop\n"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadROM(tt.path, op.ProgramStart)
			assert.Equal(t, true, err != nil)
		})
	}
}

func TestConfigFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	assert.NoError(t, fs.Parse([]string{"--sample", "walker", "-c", "3", "--load-address", "768", "--trace"}))

	assert.Equal(t, "walker", cfg.Sample)
	assert.Equal(t, 3, cfg.CyclesPerFrame)
	assert.Equal(t, uint16(0x300), cfg.LoadAddress)
	assert.Equal(t, true, cfg.Trace)
	assert.Equal(t, DefaultScale, cfg.Scale)
	assert.NoError(t, cfg.Validate())

	rom, err := cfg.Load("")
	assert.NoError(t, err)
	vmCfg := cfg.VMConfig(rom)
	assert.Equal(t, uint16(0x300), vmCfg.LoadAddress)
	assert.Equal(t, true, vmCfg.Trace)
}

func TestConfigLogger(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	assert.NoError(t, fs.Parse([]string{"-q"}))

	assert.Equal(t, true, cfg.Quiet)
	assert.Equal(t, false, cfg.Trace)
	assert.Equal(t, true, cfg.NewLogger() != nil)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoadAddress = 0x201
	cfg.Scale = 0
	err := cfg.Validate()
	assert.Equal(t, true, err != nil)

	_, err = cfg.Load("")
	assert.Equal(t, true, err != nil)
}

func TestConfigLoad(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Load("")
	assert.Equal(t, true, err != nil)

	cfg.Sample = "glyphs"
	_, err = cfg.Load(writeFile(t, "x.ch8", []byte{0x00, 0xE0}))
	assert.Equal(t, true, err != nil)

	_, err = LoadSample("missing", op.ProgramStart)
	assert.Equal(t, true, err != nil)
}

// The samples end in a self jump, they must never fault.
func TestSamplesRun(t *testing.T) {
	for _, name := range assets.Names() {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Sample = name
			rom, err := cfg.Load("")
			assert.NoError(t, err)

			in, err := vm.NewInterpreter(cfg.VMConfig(rom))
			assert.NoError(t, err)
			n, err := in.Run(context.Background(), cfg.MaxCycles)
			assert.NoError(t, err)
			assert.Equal(t, cfg.MaxCycles, n)
			assert.Equal(t, true, in.Machine.Screen.Lit() > 0)
		})
	}
}

func TestSampleCollide(t *testing.T) {
	rom, err := LoadSample("collide", op.ProgramStart)
	assert.NoError(t, err)
	in, err := vm.NewInterpreter(vm.Config{Program: rom.Data})
	assert.NoError(t, err)
	_, err = in.Run(context.Background(), 100)
	assert.NoError(t, err)

	// Glyph 1 drawn at (40, 12): its first row is 0x20.
	assert.Equal(t, false, in.Machine.Screen.At(40, 12))
	assert.Equal(t, true, in.Machine.Screen.At(42, 12))
	assert.NoError(t, in.Step())
}
