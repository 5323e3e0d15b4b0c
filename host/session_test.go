package host

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

func newSession(t *testing.T, paused bool, words ...uint16) *Session {
	t.Helper()
	prog := make([]byte, 0, 2*len(words))
	for _, w := range words {
		prog = op.Endian.AppendUint16(prog, w)
	}
	in, err := vm.NewInterpreter(vm.Config{Program: prog})
	assert.NoError(t, err)
	return NewSession(in, 4, paused)
}

func TestSessionTick(t *testing.T) {
	// add v0, 1 then loop.
	s := newSession(t, false, 0x7001, 0x1200)

	n, err := s.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	st := s.Snapshot()
	assert.Equal(t, 4, st.Cycle)
	assert.Equal(t, uint8(2), st.Registers[0])
	assert.Equal(t, false, st.Paused)
	assert.NoError(t, st.Err)
}

func TestSessionPauseAndStep(t *testing.T) {
	s := newSession(t, true, 0x7001, 0x1200)

	n, err := s.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	s.StepOnce()
	n, err = s.Tick(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint16(0x202), s.Snapshot().PC)

	// The step request is consumed.
	n, _ = s.Tick(context.Background())
	assert.Equal(t, 0, n)

	s.TogglePause()
	assert.Equal(t, false, s.Paused())
	n, _ = s.Tick(context.Background())
	assert.Equal(t, 4, n)
}

func TestSessionHaltAndReset(t *testing.T) {
	s := newSession(t, false, 0x6005, 0x00EE)

	n, err := s.Tick(context.Background())
	assert.Equal(t, 1, n)
	assert.Equal(t, true, errors.Is(err, vm.ErrStackUnderflow))

	n, err = s.Tick(context.Background())
	assert.Equal(t, 0, n)
	assert.Equal(t, true, errors.Is(err, vm.ErrStackUnderflow))
	assert.Equal(t, true, errors.Is(s.Snapshot().Err, vm.ErrStackUnderflow))

	s.Reset()
	st := s.Snapshot()
	assert.NoError(t, st.Err)
	assert.Equal(t, 0, st.Cycle)
	assert.Equal(t, uint8(0), st.Registers[0])
}

func TestSessionSnapshotIsACopy(t *testing.T) {
	s := newSession(t, false, 0x2204, 0x1202, 0x1204)
	_, err := s.Tick(context.Background())
	assert.NoError(t, err)

	st := s.Snapshot()
	assert.Equal(t, []uint16{0x202}, st.Stack)
	st.Stack[0] = 0
	assert.Equal(t, []uint16{0x202}, s.Snapshot().Stack)

	assert.Equal(t, []byte{0x22, 0x04}, s.Memory(op.ProgramStart, 2))
}

func TestFrame(t *testing.T) {
	var screen vm.Screen
	screen.Toggle(1, 0)

	pix := make([]byte, FrameSize(&screen))
	Frame(pix, &screen, ColorOn, ColorOff)
	assert.Equal(t, []byte{ColorOff.R, ColorOff.G, ColorOff.B, ColorOff.A}, pix[0:4])
	assert.Equal(t, []byte{ColorOn.R, ColorOn.G, ColorOn.B, ColorOn.A}, pix[4:8])
}

func TestHalfBlocks(t *testing.T) {
	var screen vm.Screen
	screen.Toggle(0, 0)
	screen.Toggle(1, 1)
	screen.Toggle(2, 0)
	screen.Toggle(2, 1)

	lines := strings.Split(HalfBlocks(&screen), "\n")
	assert.Equal(t, 17, len(lines)) // 16 lines and the trailing newline.
	assert.Equal(t, "▀▄█ ", lines[0][:len("▀▄█ ")])
	assert.Equal(t, strings.Repeat(" ", 64), lines[1])
}
