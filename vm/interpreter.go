// Package vm implements the machine state, the executor and the cycle driver.
package vm

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/op"
)

// MessageBufferSize is how many messages can be pending before new ones get dropped.
const MessageBufferSize = 256

type Config struct {
	Program     []byte // Raw program image.
	LoadAddress uint16 // Where to load the image. Zero means op.ProgramStart.
	Trace       bool   // Emit a MsgDebug message per executed instruction.
}

// Interpreter drives the fetch, decode, execute cycle.
// It is either running or halted, halted is terminal until Reset.
type Interpreter struct {
	Config Config

	Machine *Machine

	Cycle int // Completed cycles.

	base, end int // Loaded program extent, [base, end).
	halt      *HaltError

	// Messages is a channel where the interpreter sends events.
	// Sends never block, messages are dropped when nobody consumes them.
	Messages chan Message `json:"-"`
}

func NewInterpreter(cfg Config) (*Interpreter, error) {
	if cfg.LoadAddress == 0 {
		cfg.LoadAddress = op.ProgramStart
	}
	if cfg.LoadAddress%op.InstructionSize != 0 {
		return nil, fmt.Errorf("load address 0x%03X is not word aligned: %w", cfg.LoadAddress, ErrInvalidAddress)
	}
	if len(cfg.Program) == 0 {
		return nil, errors.New("empty program")
	}
	if int(cfg.LoadAddress)+len(cfg.Program) > op.MemSize {
		return nil, fmt.Errorf("program of %d bytes does not fit at 0x%03X: %w", len(cfg.Program), cfg.LoadAddress, ErrInvalidAddress)
	}

	cfg.Program = bytes.Clone(cfg.Program) // Kept for Reset.

	in := &Interpreter{
		Config:   cfg,
		Messages: make(chan Message, MessageBufferSize),
	}
	if err := in.load(); err != nil {
		return nil, err
	}
	return in, nil
}

// load creates a fresh machine with the program image.
func (in *Interpreter) load() error {
	m := NewMachine()
	if err := m.Load(in.Config.LoadAddress, in.Config.Program); err != nil {
		return err
	}
	in.Machine = m
	in.Cycle = 0
	in.base = int(in.Config.LoadAddress)
	in.end = in.base + len(in.Config.Program)
	in.halt = nil
	return nil
}

func (in *Interpreter) send(mt MessageType, pc uint16, msg string) {
	select {
	case in.Messages <- NewMessage(mt, pc, in.Cycle, msg):
	default:
	}
}

// Halted reports whether the interpreter stopped.
func (in *Interpreter) Halted() bool { return in.halt != nil }

// Err returns the *HaltError once halted, nil while running.
func (in *Interpreter) Err() error {
	if in.halt == nil {
		return nil
	}
	return in.halt
}

func (in *Interpreter) stop(pc uint16, err error) error {
	in.halt = &HaltError{PC: pc, Cycle: in.Cycle, Err: err}
	in.send(MsgHalt, pc, in.halt.Error())
	return in.halt
}

// Step runs one cycle.
// Once halted, it keeps returning the same *HaltError without touching the machine.
func (in *Interpreter) Step() error {
	if in.halt != nil {
		return in.halt
	}
	m := in.Machine
	pc := m.PC

	// Fetch.
	if int(pc) < in.base || int(pc)+op.InstructionSize > in.end {
		return in.stop(pc, ErrEndOfProgram)
	}
	word, err := m.Ram.Word(pc)
	if err != nil {
		return in.stop(pc, err)
	}

	// Decode.
	ins, err := parser.Decode(word)
	if err != nil {
		return in.stop(pc, err)
	}

	// Advance before executing so control flow can override the PC.
	m.PC += op.InstructionSize

	// Execute.
	if err := m.Exec(ins); err != nil {
		m.PC = pc
		return in.stop(pc, fmt.Errorf("%s: %w", ins, err))
	}
	in.Cycle++

	if in.Config.Trace {
		in.send(MsgDebug, pc, fmt.Sprintf("%04X %s", word, ins))
	}
	switch ins.(type) {
	case parser.ClearScreen:
		in.send(MsgClear, pc, "")
	case parser.Draw:
		in.send(MsgDraw, pc, fmt.Sprintf("VF=%d", m.Registers[op.FlagRegister]))
	}
	return nil
}

// Run executes up to n cycles. It stops early when halted or when
// the context is done. Returns how many cycles completed.
func (in *Interpreter) Run(ctx context.Context, n int) (int, error) {
	for i := range n {
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}
		if err := in.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Reset restores the initial state from the program image.
func (in *Interpreter) Reset() {
	// The image was validated at creation, load can't fail.
	if err := in.load(); err != nil {
		panic(fmt.Errorf("reset: %w", err))
	}
	in.send(MsgReset, in.Machine.PC, "")
}
