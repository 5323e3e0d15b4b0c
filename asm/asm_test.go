package asm

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestCompile(t *testing.T) {
	buf, pr, err := Compile("test.s", "start: ld v6, $07\n\tjp start\n", 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x66, 0x07, 0x12, 0x00}, buf)
	assert.Equal(t, 4, pr.Size())
}

func TestCompileBase(t *testing.T) {
	buf, _, err := Compile("test.s", "cls\nhere: jp here\n", 0x300)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0, 0x13, 0x02}, buf)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		base  int
	}{
		{"parse error", "ld v1, 12ab\n", 0},
		{"encode error", "jp missing\n", 0},
		{"empty program", "; nothing here\n", 0},
		{"base out of memory", "cls\n", 0x1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile("test.s", tt.input, tt.base)
			assert.Equal(t, true, err != nil)
		})
	}
}

func TestListing(t *testing.T) {
	_, pr, err := Compile("test.s", "loop: add v1, 1\njp loop\n", 0)
	assert.NoError(t, err)
	out := Listing(pr)
	assert.Equal(t, true, strings.HasPrefix(out, "loop:\n"))
	assert.Equal(t, true, strings.Contains(out, "ADD"))
}
