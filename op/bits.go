package op

import "fmt"

// WordBits is the width of an instruction word.
const WordBits = 16

// Extract returns the bits [start, end) of word, bit 0 being the most
// significant one, packed in the low end-start bits of the result.
// Invalid ranges are programming errors and panic.
func Extract(word uint16, start, end int) uint16 {
	if start < 0 || end > WordBits || start >= end {
		panic(fmt.Sprintf("op: invalid bit range [%d,%d)", start, end))
	}
	width := end - start
	v := word >> (WordBits - end)
	if width == WordBits {
		return v
	}
	return v & (1<<width - 1)
}

// Nibble returns the 4-bit field at the given offset, 0 being the most
// significant nibble.
func Nibble(word uint16, offset int) uint8 {
	if offset < 0 || offset > 3 {
		panic(fmt.Sprintf("op: invalid nibble offset %d", offset))
	}
	return uint8(Extract(word, 4*offset, 4*offset+4))
}

// Word packs the four nibbles into an instruction word.
func Word(n0, n1, n2, n3 uint8) uint16 {
	return uint16(n0&0xF)<<12 | uint16(n1&0xF)<<8 | uint16(n2&0xF)<<4 | uint16(n3&0xF)
}

// WordAddr packs a class and a 12-bit address.
func WordAddr(class uint8, addr uint16) uint16 {
	return uint16(class&0xF)<<12 | addr&MaxAddress
}

// WordByte packs a class, a register and an 8-bit immediate.
func WordByte(class, x, kk uint8) uint16 {
	return uint16(class&0xF)<<12 | uint16(x&0xF)<<8 | uint16(kk)
}
