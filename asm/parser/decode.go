package parser

import (
	"errors"
	"fmt"

	"go.creack.net/chipple/op"
)

var ErrInvalidOpcode = errors.New("unrecognized opcode")

// DecodeError reports an instruction word outside of the opcode table.
type DecodeError struct {
	Word uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s 0x%04X", ErrInvalidOpcode, e.Word)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidOpcode }

// Decode maps an instruction word to its instruction.
// Words outside of the opcode table yield a *DecodeError.
func Decode(word uint16) (Instruction, error) {
	var (
		x    = op.Nibble(word, 1)
		y    = op.Nibble(word, 2)
		n    = op.Nibble(word, 3)
		kk   = uint8(op.Extract(word, 8, 16))
		addr = op.Extract(word, 4, 16)
	)

	switch op.Nibble(word, 0) {
	case op.ClassSys:
		switch n {
		case op.SubReturn:
			return Return{}, nil
		case op.SubClearScreen:
			return ClearScreen{}, nil
		}
	case op.ClassJump:
		return Jump{Addr: addr}, nil
	case op.ClassCall:
		return Call{Addr: addr}, nil
	case op.ClassSkipEqImm:
		return CompareImmediate{X: x, Imm: kk, WantEqual: true}, nil
	case op.ClassSkipNeImm:
		return CompareImmediate{X: x, Imm: kk, WantEqual: false}, nil
	case op.ClassSkipEqReg:
		return CompareRegisters{X: x, Y: y, WantEqual: true}, nil
	case op.ClassSetImm:
		return SetImmediate{Register: x, Value: kk}, nil
	case op.ClassAddImm:
		return AddImmediate{Register: x, Value: kk}, nil
	case op.ClassSetIndex:
		return SetIndex{Value: addr}, nil
	case op.ClassDraw:
		return Draw{X: x, Y: y, Height: n}, nil
	}
	return nil, &DecodeError{Word: word}
}

// DecodeNextInstruction decodes the instruction word at the start of buf.
// Returns the instruction and how many bytes have been consumed.
func DecodeNextInstruction(buf []byte) (Instruction, int, error) {
	if len(buf) < op.InstructionSize {
		return nil, 0, fmt.Errorf("short buffer, got %d bytes, need %d", len(buf), op.InstructionSize)
	}
	ins, err := Decode(op.Endian.Uint16(buf))
	if err != nil {
		return nil, op.InstructionSize, err
	}
	return ins, op.InstructionSize, nil
}
