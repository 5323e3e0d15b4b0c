// Package host drives an interpreter on behalf of the front ends:
// pause, single step, reset and per frame cadence.
package host

import (
	"context"
	"slices"
	"sync"

	"go.creack.net/chipple/op"
	"go.creack.net/chipple/vm"
)

// Session serializes every access to the interpreter.
// Front ends call Tick once per frame and read a Snapshot to render.
type Session struct {
	mu sync.Mutex

	in             *vm.Interpreter
	cyclesPerFrame int

	paused   bool
	nextStep bool
}

func NewSession(in *vm.Interpreter, cyclesPerFrame int, paused bool) *Session {
	return &Session{
		in:             in,
		cyclesPerFrame: max(cyclesPerFrame, 1),
		paused:         paused,
	}
}

// Messages returns the interpreter event stream.
func (s *Session) Messages() <-chan vm.Message {
	return s.in.Messages
}

func (s *Session) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// StepOnce requests a single cycle on the next Tick, even when paused.
func (s *Session) StepOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStep = true
}

// Reset restores the initial machine state, the pause state is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.in.Reset()
	s.nextStep = false
}

// Tick runs the cycles of one frame. Returns how many cycles ran and
// the *vm.HaltError once the interpreter is halted.
func (s *Session) Tick(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.in.Err(); err != nil {
		return 0, err
	}
	n := s.cyclesPerFrame
	if s.nextStep {
		s.nextStep = false
		n = 1
	} else if s.paused {
		return 0, nil
	}
	return s.in.Run(ctx, n)
}

// State is a copy of the machine state, safe to read from any goroutine.
type State struct {
	PC        uint16
	I         uint16
	Registers [op.RegisterCount]uint8
	Stack     []uint16
	Cycle     int
	Paused    bool
	Err       error // Halt reason, nil while running.

	Screen vm.Screen
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.in.Machine
	return State{
		PC:        m.PC,
		I:         m.I,
		Registers: m.Registers,
		Stack:     slices.Clone(m.Stack),
		Cycle:     s.in.Cycle,
		Paused:    s.paused,
		Err:       s.in.Err(),
		Screen:    m.Screen.Snapshot(),
	}
}

// Memory returns a copy of size bytes of memory at addr.
func (s *Session) Memory(addr uint16, size int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in.Machine.Ram.Bytes(addr, size)
}
