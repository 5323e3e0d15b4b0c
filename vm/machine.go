package vm

import (
	"fmt"

	"go.creack.net/chipple/op"
)

// Machine is the whole hardware state. It is owned by a single caller,
// nothing in it is safe for concurrent use.
type Machine struct {
	PC        uint16
	Registers [op.RegisterCount]uint8 // V0 <--> VF.
	I         uint16                  // Index register.
	Stack     []uint16                // Return addresses, at most op.StackSize.

	Ram    Ram
	Screen Screen
}

// NewMachine returns a zeroed machine with the font loaded.
func NewMachine() *Machine {
	return &Machine{
		Stack: make([]uint16, 0, op.StackSize),
		Ram:   NewRam(),
	}
}

// Load copies the program image at addr and points the PC at it.
func (m *Machine) Load(addr uint16, program []byte) error {
	if err := m.Ram.Load(addr, program); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	m.PC = addr
	return nil
}
