package op

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestExtractFullRangeIsIdentity(t *testing.T) {
	for w := 0; w <= 0xFFFF; w++ {
		if got := Extract(uint16(w), 0, 16); got != uint16(w) {
			t.Fatalf("Extract(0x%04X, 0, 16) = 0x%04X", w, got)
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		word       uint16
		start, end int
		expected   uint16
	}{
		{"low nibble of high byte", 0xF500, 4, 8, 0x5},
		{"inner bits", 0xF000, 1, 7, 56},
		{"address field", 0x1ABC, 4, 16, 0xABC},
		{"immediate field", 0x6A07, 8, 16, 0x07},
		{"single msb", 0x8000, 0, 1, 1},
		{"single lsb", 0x0001, 15, 16, 1},
		{"run of ones", 0xFFFF, 3, 11, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.word, tt.start, tt.end))
		})
	}
}

func TestNibble(t *testing.T) {
	tests := []struct {
		word     uint16
		offset   int
		expected uint8
	}{
		{0xEEDA, 3, 0xA},
		{0xEEDA, 2, 0xD},
		{0xEEDA, 0, 0xE},
		{0x00F5, 1, 0x0},
		{0x00F5, 2, 0xF},
		{0x00F5, 3, 0x5},
		{0x1234, 0, 0x1},
		{0x1234, 1, 0x2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Nibble(tt.word, tt.offset))
		assert.Equal(t, uint16(tt.expected), Extract(tt.word, 4*tt.offset, 4*tt.offset+4))
	}
}

func TestNibbleInvalidOffsetPanics(t *testing.T) {
	defer func() {
		assert.Equal(t, true, recover() != nil)
	}()
	Nibble(0x1234, 4)
}

func TestExtractInvalidRangePanics(t *testing.T) {
	for _, r := range [][2]int{{-1, 4}, {4, 17}, {8, 8}, {9, 3}} {
		func() {
			defer func() {
				assert.Equal(t, true, recover() != nil)
			}()
			Extract(0xFFFF, r[0], r[1])
		}()
	}
}

func TestWordPacking(t *testing.T) {
	assert.Equal(t, uint16(0xD125), Word(0xD, 1, 2, 5))
	assert.Equal(t, uint16(0x2ABC), WordAddr(ClassCall, 0xABC))
	assert.Equal(t, uint16(0x2ABC), WordAddr(ClassCall, 0xFABC))
	assert.Equal(t, uint16(0x7F02), WordByte(ClassAddImm, 0xF, 0x02))
}

func TestFind(t *testing.T) {
	tests := []struct {
		word     uint16
		name     string
		found    bool
		expected Layout
	}{
		{0x00E0, "cls", true, LayoutNone},
		{0x00EE, "ret", true, LayoutNone},
		{0x1ABC, "jp", true, LayoutAddr},
		{0x5120, "se", true, LayoutRegReg},
		{0x3107, "se", true, LayoutRegByte},
		{0xA123, "ld", true, LayoutIndexAddr},
		{0xD125, "drw", true, LayoutRegRegNibble},
		{0x00E1, "", false, LayoutNone},
		{0x8120, "", false, LayoutNone},
		{0xF00A, "", false, LayoutNone},
	}
	for _, tt := range tests {
		opc, ok := Find(tt.word)
		assert.Equal(t, tt.found, ok)
		assert.Equal(t, tt.name, opc.Name)
		assert.Equal(t, tt.expected, opc.Layout)
	}
}

func TestByName(t *testing.T) {
	assert.Equal(t, 2, len(ByName("LD")))
	assert.Equal(t, 2, len(ByName("se")))
	assert.Equal(t, 1, len(ByName("Drw")))
	assert.Equal(t, 0, len(ByName("xor")))
}

func TestGlyphAddress(t *testing.T) {
	assert.Equal(t, uint16(FontStart), GlyphAddress(0))
	assert.Equal(t, uint16(FontStart+0xF*GlyphHeight), GlyphAddress(0xF))
	assert.Equal(t, byte(0xF0), Font[0xF*GlyphHeight])
}
