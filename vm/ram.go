package vm

import (
	"fmt"

	"go.creack.net/chipple/op"
)

// Ram is the flat memory of the machine. Accesses never wrap around.
type Ram []byte

func NewRam() Ram {
	r := make(Ram, op.MemSize)
	copy(r[op.FontStart:], op.Font[:])
	return r
}

// Contains reports whether [addr, addr+size) is inside the memory.
func (r Ram) Contains(addr, size int) bool {
	return addr >= 0 && size >= 0 && addr+size <= len(r)
}

// Word reads the big endian instruction word at addr.
func (r Ram) Word(addr uint16) (uint16, error) {
	if !r.Contains(int(addr), op.InstructionSize) {
		return 0, fmt.Errorf("word at 0x%03X: %w", addr, ErrInvalidAddress)
	}
	return op.Endian.Uint16(r[addr:]), nil
}

// Read returns the size bytes starting at addr.
// The returned slice aliases the memory.
func (r Ram) Read(addr uint16, size int) ([]byte, error) {
	if !r.Contains(int(addr), size) {
		return nil, fmt.Errorf("read %d bytes at 0x%03X: %w", size, addr, ErrInvalidAddress)
	}
	return r[int(addr) : int(addr)+size], nil
}

// Load copies data into the memory at addr.
func (r Ram) Load(addr uint16, data []byte) error {
	if !r.Contains(int(addr), len(data)) {
		return fmt.Errorf("load %d bytes at 0x%03X exceeds %d bytes of memory: %w", len(data), addr, len(r), ErrInvalidAddress)
	}
	copy(r[addr:], data)
	return nil
}

// Bytes returns a copy of up to size bytes starting at addr, truncated
// at the end of the memory. Used by the hosts to display memory.
func (r Ram) Bytes(addr uint16, size int) []byte {
	if int(addr) >= len(r) || size <= 0 {
		return nil
	}
	end := min(int(addr)+size, len(r))
	out := make([]byte, end-int(addr))
	copy(out, r[addr:end])
	return out
}
