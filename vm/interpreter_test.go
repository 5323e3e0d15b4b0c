package vm

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/op"
)

func program(words ...uint16) []byte {
	out := make([]byte, 0, len(words)*op.InstructionSize)
	for _, w := range words {
		out = op.Endian.AppendUint16(out, w)
	}
	return out
}

func newInterpreter(t *testing.T, words ...uint16) *Interpreter {
	t.Helper()
	in, err := NewInterpreter(Config{Program: program(words...)})
	assert.NoError(t, err)
	return in
}

func TestNewInterpreter(t *testing.T) {
	in := newInterpreter(t, 0x6A07)
	assert.Equal(t, uint16(op.ProgramStart), in.Machine.PC)
	assert.Equal(t, byte(0x6A), in.Machine.Ram[op.ProgramStart])
	assert.Equal(t, op.Font[0], in.Machine.Ram[op.FontStart])
	assert.Equal(t, false, in.Halted())
	assert.NoError(t, in.Err())
}

func TestNewInterpreterErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"odd load address", Config{Program: program(0x00E0), LoadAddress: 0x201}},
		{"too large", Config{Program: make([]byte, op.MemSize-op.ProgramStart+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInterpreter(tt.cfg)
			assert.Equal(t, true, err != nil)
		})
	}
}

func TestStep(t *testing.T) {
	in := newInterpreter(t, 0x6A07, 0x7A01)

	assert.NoError(t, in.Step())
	assert.Equal(t, uint8(0x07), in.Machine.Registers[0xA])
	assert.Equal(t, uint16(0x202), in.Machine.PC)

	assert.NoError(t, in.Step())
	assert.Equal(t, uint8(0x08), in.Machine.Registers[0xA])
	assert.Equal(t, 2, in.Cycle)
}

func TestStepEndOfProgram(t *testing.T) {
	in := newInterpreter(t, 0x6A07)
	assert.NoError(t, in.Step())

	err := in.Step()
	assert.Equal(t, true, errors.Is(err, ErrEndOfProgram))
	assert.Equal(t, true, errors.Is(err, io.EOF))
	assert.Equal(t, true, in.Halted())

	var he *HaltError
	assert.Equal(t, true, errors.As(err, &he))
	assert.Equal(t, uint16(0x202), he.PC)
	assert.Equal(t, 1, he.Cycle)

	// Halted is terminal, nothing moves anymore.
	in.Machine.Registers[0] = 0x11
	before := *in.Machine
	for range 3 {
		assert.Equal(t, error(he), in.Step())
	}
	assert.Equal(t, before.PC, in.Machine.PC)
	assert.Equal(t, before.Registers, in.Machine.Registers)
	assert.Equal(t, 1, in.Cycle)
}

func TestStepJumpOutsideProgram(t *testing.T) {
	in := newInterpreter(t, 0x1400)
	assert.NoError(t, in.Step())
	assert.Equal(t, true, errors.Is(in.Step(), ErrEndOfProgram))
}

func TestStepDecodeError(t *testing.T) {
	in := newInterpreter(t, 0x6001, 0x8123)
	assert.NoError(t, in.Step())

	err := in.Step()
	var de *parser.DecodeError
	assert.Equal(t, true, errors.As(err, &de))
	assert.Equal(t, uint16(0x8123), de.Word)
	assert.Equal(t, uint16(0x202), in.Machine.PC)
	assert.Equal(t, true, in.Halted())
}

func TestStepExecFault(t *testing.T) {
	in := newInterpreter(t, 0x00EE)
	err := in.Step()
	assert.Equal(t, true, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(0x200), in.Machine.PC)
	assert.Equal(t, 0, in.Cycle)
}

func TestStepSkip(t *testing.T) {
	// se v0, 0 skips the ld, jp lands on itself.
	in := newInterpreter(t, 0x3000, 0x6001, 0x1204)
	_, err := in.Run(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), in.Machine.Registers[0])
	assert.Equal(t, uint16(0x204), in.Machine.PC)
}

func TestStepCallReturn(t *testing.T) {
	// 0x200 call 0x206
	// 0x202 ld v1, 1
	// 0x204 jp 0x204
	// 0x206 ret
	in := newInterpreter(t, 0x2206, 0x6101, 0x1204, 0x00EE)

	assert.NoError(t, in.Step())
	assert.Equal(t, uint16(0x206), in.Machine.PC)
	assert.Equal(t, []uint16{0x202}, in.Machine.Stack)

	assert.NoError(t, in.Step())
	assert.Equal(t, uint16(0x202), in.Machine.PC)

	assert.NoError(t, in.Step())
	assert.Equal(t, uint8(1), in.Machine.Registers[1])
}

func TestRun(t *testing.T) {
	// Infinite loop.
	in := newInterpreter(t, 0x7001, 0x1200)
	n, err := in.Run(context.Background(), 100)
	assert.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, uint8(50), in.Machine.Registers[0])
}

func TestRunHalts(t *testing.T) {
	in := newInterpreter(t, 0x00E0, 0x00E0)
	n, err := in.Run(context.Background(), 10)
	assert.Equal(t, 2, n)
	assert.Equal(t, true, errors.Is(err, io.EOF))
}

func TestRunCancelled(t *testing.T) {
	in := newInterpreter(t, 0x1200)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := in.Run(ctx, 10)
	assert.Equal(t, 0, n)
	assert.Equal(t, true, errors.Is(err, context.Canceled))
	assert.Equal(t, false, in.Halted())
}

func TestReset(t *testing.T) {
	in := newInterpreter(t, 0x6A07, 0xA050, 0xD005)
	_, err := in.Run(context.Background(), 10)
	assert.Equal(t, true, errors.Is(err, ErrEndOfProgram))
	assert.Equal(t, true, in.Machine.Screen.Lit() > 0)

	in.Reset()
	assert.Equal(t, false, in.Halted())
	assert.Equal(t, 0, in.Cycle)
	assert.Equal(t, uint16(op.ProgramStart), in.Machine.PC)
	assert.Equal(t, uint8(0), in.Machine.Registers[0xA])
	assert.Equal(t, 0, in.Machine.Screen.Lit())
	assert.NoError(t, in.Step())
}

func TestMessages(t *testing.T) {
	in, err := NewInterpreter(Config{Program: program(0x00E0, 0xD005), Trace: true})
	assert.NoError(t, err)
	_, _ = in.Run(context.Background(), 5)

	var types []MessageType
	for len(in.Messages) > 0 {
		types = append(types, (<-in.Messages).Type)
	}
	assert.Equal(t, []MessageType{MsgDebug, MsgClear, MsgDebug, MsgDraw, MsgHalt}, types)
}

func TestMessagesNeverBlock(t *testing.T) {
	in := newInterpreter(t, 0x00E0, 0x1200)
	n, err := in.Run(context.Background(), 2*MessageBufferSize+10)
	assert.NoError(t, err)
	assert.Equal(t, 2*MessageBufferSize+10, n)
	assert.Equal(t, MessageBufferSize, len(in.Messages))
}

func TestHaltErrorMessage(t *testing.T) {
	err := &HaltError{PC: 0x20A, Cycle: 5, Err: ErrStackUnderflow}
	assert.Equal(t, "halted at 0x20A after 5 cycles: stack underflow", err.Error())
}
