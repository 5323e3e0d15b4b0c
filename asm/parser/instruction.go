package parser

import (
	"fmt"

	"go.creack.net/chipple/op"
)

// Instruction is a decoded instruction word.
//
// The set of implementations is closed: ClearScreen, Jump, Call, Return,
// CompareRegisters, CompareImmediate, AddImmediate, SetImmediate, SetIndex
// and Draw.
type Instruction interface {
	// Encode returns the instruction word.
	Encode() uint16
	// OpCode returns the opcode table entry.
	OpCode() op.OpCode
	// String returns the listing form, e.g. "LD V6, $07".
	String() string

	instruction()
}

type (
	// ClearScreen turns every pixel off.
	ClearScreen struct{}

	// Jump sets the PC to Addr.
	Jump struct{ Addr uint16 }

	// Call pushes the PC and sets it to Addr.
	Call struct{ Addr uint16 }

	// Return pops the PC from the stack.
	Return struct{}

	// CompareRegisters skips the next instruction when (Vx == Vy) == WantEqual.
	CompareRegisters struct {
		X, Y      uint8
		WantEqual bool
	}

	// CompareImmediate skips the next instruction when (Vx == Imm) == WantEqual.
	CompareImmediate struct {
		X         uint8
		Imm       uint8
		WantEqual bool
	}

	// AddImmediate adds Value to the register, wrapping at 8 bits.
	AddImmediate struct{ Register, Value uint8 }

	// SetImmediate loads Value into the register.
	SetImmediate struct{ Register, Value uint8 }

	// SetIndex loads Value into I.
	SetIndex struct{ Value uint16 }

	// Draw xors a Height rows sprite read at I onto the screen at (VX, VY).
	Draw struct{ X, Y, Height uint8 }
)

func (ClearScreen) instruction()      {}
func (Jump) instruction()             {}
func (Call) instruction()             {}
func (Return) instruction()           {}
func (CompareRegisters) instruction() {}
func (CompareImmediate) instruction() {}
func (AddImmediate) instruction()     {}
func (SetImmediate) instruction()     {}
func (SetIndex) instruction()         {}
func (Draw) instruction()             {}

func (ClearScreen) Encode() uint16 { return op.Word(op.ClassSys, 0, 0xE, op.SubClearScreen) }
func (Return) Encode() uint16      { return op.Word(op.ClassSys, 0, 0xE, op.SubReturn) }
func (ins Jump) Encode() uint16    { return op.WordAddr(op.ClassJump, ins.Addr) }
func (ins Call) Encode() uint16    { return op.WordAddr(op.ClassCall, ins.Addr) }

func (ins CompareRegisters) Encode() uint16 {
	// NOTE: Only the equal form exists in the encoding table.
	return op.Word(op.ClassSkipEqReg, ins.X, ins.Y, 0)
}

func (ins CompareImmediate) Encode() uint16 {
	class := uint8(op.ClassSkipNeImm)
	if ins.WantEqual {
		class = op.ClassSkipEqImm
	}
	return op.WordByte(class, ins.X, ins.Imm)
}

func (ins AddImmediate) Encode() uint16 { return op.WordByte(op.ClassAddImm, ins.Register, ins.Value) }
func (ins SetImmediate) Encode() uint16 { return op.WordByte(op.ClassSetImm, ins.Register, ins.Value) }
func (ins SetIndex) Encode() uint16     { return op.WordAddr(op.ClassSetIndex, ins.Value) }
func (ins Draw) Encode() uint16         { return op.Word(op.ClassDraw, ins.X, ins.Y, ins.Height) }

func (ins ClearScreen) OpCode() op.OpCode      { return opCode(ins) }
func (ins Jump) OpCode() op.OpCode             { return opCode(ins) }
func (ins Call) OpCode() op.OpCode             { return opCode(ins) }
func (ins Return) OpCode() op.OpCode           { return opCode(ins) }
func (ins CompareRegisters) OpCode() op.OpCode { return opCode(ins) }
func (ins CompareImmediate) OpCode() op.OpCode { return opCode(ins) }
func (ins AddImmediate) OpCode() op.OpCode     { return opCode(ins) }
func (ins SetImmediate) OpCode() op.OpCode     { return opCode(ins) }
func (ins SetIndex) OpCode() op.OpCode         { return opCode(ins) }
func (ins Draw) OpCode() op.OpCode             { return opCode(ins) }

func opCode(ins interface{ Encode() uint16 }) op.OpCode {
	opc, ok := op.Find(ins.Encode())
	if !ok {
		// Every variant encodes to a table entry.
		panic(fmt.Sprintf("no opcode for word 0x%04X", ins.Encode()))
	}
	return opc
}

func (ins ClearScreen) String() string { return ins.OpCode().Mnemonic() }
func (ins Return) String() string      { return ins.OpCode().Mnemonic() }

func (ins Jump) String() string {
	return fmt.Sprintf("%s $%03X", ins.OpCode().Mnemonic(), ins.Addr)
}

func (ins Call) String() string {
	return fmt.Sprintf("%s $%03X", ins.OpCode().Mnemonic(), ins.Addr)
}

func (ins CompareRegisters) String() string {
	return fmt.Sprintf("%s V%X, V%X", ins.OpCode().Mnemonic(), ins.X, ins.Y)
}

func (ins CompareImmediate) String() string {
	return fmt.Sprintf("%s V%X, $%02X", ins.OpCode().Mnemonic(), ins.X, ins.Imm)
}

func (ins AddImmediate) String() string {
	return fmt.Sprintf("%s V%X, $%02X", ins.OpCode().Mnemonic(), ins.Register, ins.Value)
}

func (ins SetImmediate) String() string {
	return fmt.Sprintf("%s V%X, $%02X", ins.OpCode().Mnemonic(), ins.Register, ins.Value)
}

func (ins SetIndex) String() string {
	return fmt.Sprintf("%s I, $%03X", ins.OpCode().Mnemonic(), ins.Value)
}

func (ins Draw) String() string {
	return fmt.Sprintf("%s V%X, V%X, $%X", ins.OpCode().Mnemonic(), ins.X, ins.Y, ins.Height)
}
