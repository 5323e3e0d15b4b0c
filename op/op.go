// Package op holds the machine definition shared by the assembler,
// the disassembler and the vm: sizes, memory layout, opcode classes
// and the opcode table.
package op

import (
	"encoding/binary"
	"strings"
)

// Endian is the byte order of instruction words in memory.
var Endian = binary.BigEndian

// Memory layout.
const (
	MemSize      = 4096  // 4Kb.
	ProgramStart = 0x200 // Default load address of program images.
	FontStart    = 0x050 // Where the built-in hex font is stored.
	MaxAddress   = 0xFFF // Highest 12-bit address.
)

const (
	RegisterCount   = 16  // V0 <--> VF
	FlagRegister    = 0xF // VF, written by draw.
	StackSize       = 16  // Max nested calls.
	InstructionSize = 2   // Size of an instruction word in bytes.
)

// Display.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
	SpriteWidth  = 8 // A sprite row is one byte.
)

// Opcode classes, i.e. the value of nibble 0.
const (
	ClassSys       = 0x0
	ClassJump      = 0x1
	ClassCall      = 0x2
	ClassSkipEqImm = 0x3
	ClassSkipNeImm = 0x4
	ClassSkipEqReg = 0x5
	ClassSetImm    = 0x6
	ClassAddImm    = 0x7
	ClassSetIndex  = 0xA
	ClassDraw      = 0xD
)

// Sub-opcodes of ClassSys, i.e. the value of nibble 3.
const (
	SubClearScreen = 0x0
	SubReturn      = 0xE

	NoSub = -1 // The class alone identifies the opcode.
)

// Layout describes how the operands are packed in the instruction word.
type Layout int

const (
	LayoutNone         Layout = iota // No operand.
	LayoutAddr                       // _nnn: 12-bit address.
	LayoutIndexAddr                  // _nnn: 12-bit address, loaded into I.
	LayoutRegByte                    // _xkk: register and 8-bit immediate.
	LayoutRegReg                     // _xy_: two registers.
	LayoutRegRegNibble               // _xyn: two registers and a 4-bit height.
)

func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "none"
	case LayoutAddr:
		return "addr"
	case LayoutIndexAddr:
		return "I, addr"
	case LayoutRegByte:
		return "Vx, byte"
	case LayoutRegReg:
		return "Vx, Vy"
	case LayoutRegRegNibble:
		return "Vx, Vy, nibble"
	default:
		return "unknown layout"
	}
}

// Operands returns how many operands the layout expects in source form.
func (l Layout) Operands() int {
	switch l {
	case LayoutAddr:
		return 1
	case LayoutIndexAddr, LayoutRegByte, LayoutRegReg:
		return 2
	case LayoutRegRegNibble:
		return 3
	default:
		return 0
	}
}

// OpCode is the definition of instructions.
type OpCode struct {
	Name    string
	Class   uint8
	Sub     int // NoSub unless Class is ClassSys.
	Layout  Layout
	Comment string
}

// Mnemonic is the upper case name used in listings.
func (o OpCode) Mnemonic() string { return strings.ToUpper(o.Name) }

var OpCodeTable = []OpCode{
	{"cls", ClassSys, SubClearScreen, LayoutNone, "clear the screen"},
	{"ret", ClassSys, SubReturn, LayoutNone, "return from subroutine"},
	{"jp", ClassJump, NoSub, LayoutAddr, "jump to nnn"},
	{"call", ClassCall, NoSub, LayoutAddr, "call subroutine at nnn"},
	{"se", ClassSkipEqImm, NoSub, LayoutRegByte, "skip next if Vx == kk"},
	{"sne", ClassSkipNeImm, NoSub, LayoutRegByte, "skip next if Vx != kk"},
	{"se", ClassSkipEqReg, NoSub, LayoutRegReg, "skip next if Vx == Vy"},
	{"ld", ClassSetImm, NoSub, LayoutRegByte, "Vx = kk"},
	{"add", ClassAddImm, NoSub, LayoutRegByte, "Vx = Vx + kk, wrapping"},
	{"ld", ClassSetIndex, NoSub, LayoutIndexAddr, "I = nnn"},
	{"drw", ClassDraw, NoSub, LayoutRegRegNibble, "xor n-byte sprite at (Vx, Vy), VF = collision"},
}

// Find returns the table entry matching the given instruction word.
func Find(word uint16) (OpCode, bool) {
	class := Nibble(word, 0)
	for _, elem := range OpCodeTable {
		if elem.Class != class {
			continue
		}
		if elem.Sub != NoSub && int(Nibble(word, 3)) != elem.Sub {
			continue
		}
		return elem, true
	}
	return OpCode{}, false
}

// ByName returns all the table entries sharing the given mnemonic.
// Lookup is case insensitive.
func ByName(name string) []OpCode {
	var out []OpCode
	for _, elem := range OpCodeTable {
		if strings.EqualFold(elem.Name, name) {
			out = append(out, elem)
		}
	}
	return out
}

// Tokens.
const (
	CommentChars  = ";#"
	LabelChar     = ':'
	SeparatorChar = ','
	DirectiveChar = '.'
	HexChar       = '$'
	RegisterChar  = 'v'
	IndexRegister = "i"
	LabelChars    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_0123456789"
)
