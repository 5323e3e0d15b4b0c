// Package disasm turns program images back into listings.
package disasm

import (
	"crypto/md5"
	"fmt"
	"strings"

	"go.creack.net/chipple/asm"
	"go.creack.net/chipple/asm/parser"
	"go.creack.net/chipple/assets"
	"go.creack.net/chipple/op"
)

// Line is one decoded word, or trailing data.
type Line struct {
	Addr uint16
	Raw  []byte
	Ins  parser.Instruction // Nil when Raw doesn't decode.
}

func (l Line) String() string {
	switch {
	case l.Ins != nil:
		return fmt.Sprintf("0x%03X  %04X  %s", l.Addr, op.Endian.Uint16(l.Raw), l.Ins)
	case len(l.Raw) == op.InstructionSize:
		w := op.Endian.Uint16(l.Raw)
		return fmt.Sprintf("0x%03X  %04X  %cword $%04X", l.Addr, w, op.DirectiveChar, w)
	default:
		return fmt.Sprintf("0x%03X  %02X    %cbyte $%02X", l.Addr, l.Raw[0], op.DirectiveChar, l.Raw[0])
	}
}

// Disasm decodes the image word by word, as if loaded at base.
// Words that don't decode are kept as data.
func Disasm(binData []byte, base uint16) []Line {
	lines := make([]Line, 0, len(binData)/op.InstructionSize+1)
	for idx := 0; idx < len(binData); {
		addr := base + uint16(idx)
		ins, n, err := parser.DecodeNextInstruction(binData[idx:])
		if n == 0 {
			// Odd trailing byte.
			lines = append(lines, Line{Addr: addr, Raw: binData[idx : idx+1]})
			break
		}
		if err != nil {
			ins = nil
		}
		lines = append(lines, Line{Addr: addr, Raw: binData[idx : idx+n], Ins: ins})
		idx += n
	}
	return lines
}

// Format renders the lines, one per row.
func Format(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// At returns the index of the line at addr.
func At(lines []Line, addr uint16) (int, bool) {
	for i, l := range lines {
		if l.Addr == addr {
			return i, true
		}
	}
	return -1, false
}

func md5sum(data []byte) string {
	h := md5.New()
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Known looks for a sample that assembles to the given image.
// Returns the sample name and its source.
func Known(binData []byte, base uint16) (string, string, bool) {
	search := md5sum(binData)
	for _, name := range assets.Names() {
		src, err := assets.Source(name)
		if err != nil {
			continue
		}
		buf, _, err := asm.Compile(name+assets.SourceExt, src, int(base))
		if err != nil {
			// Should not happen, samples are tested.
			continue
		}
		if md5sum(buf) == search {
			return name, src, true
		}
	}
	return "", "", false
}

// Disam returns the best listing for the image: the known source
// when it matches a sample, the raw disassembly otherwise.
func Disam(inputName string, binData []byte, base uint16) string {
	if name, src, ok := Known(binData, base); ok {
		return fmt.Sprintf("; %s matches sample %q.\n%s", inputName, name, src)
	}
	return Format(Disasm(binData, base))
}
