package vm

import (
	"errors"
	"fmt"
	"io"
)

// Execution faults. All of them halt the interpreter.
var (
	ErrStackOverflow   = errors.New("stack overflow")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrOutOfBoundsRead = errors.New("out-of-bounds sprite read")
	ErrInvalidAddress  = errors.New("invalid address")

	// ErrEndOfProgram is the normal end of a run, the PC left the loaded image.
	ErrEndOfProgram = fmt.Errorf("end of program: %w", io.EOF)
)

// HaltError is the terminal state of the interpreter.
type HaltError struct {
	PC    uint16 // Address of the instruction being fetched or executed.
	Cycle int    // Completed cycles before the halt.
	Err   error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halted at 0x%03X after %d cycles: %s", e.PC, e.Cycle, e.Err)
}

func (e *HaltError) Unwrap() error { return e.Err }
