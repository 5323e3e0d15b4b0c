package host

import (
	"image/color"
	"strings"

	"go.creack.net/chipple/vm"
)

// Default palette.
var (
	ColorOn  = color.RGBA{R: 0x33, G: 0xFF, B: 0x66, A: 0xFF}
	ColorOff = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
)

// Frame fills pix, an RGBA buffer of width*height*4 bytes, with the grid.
// It panics if pix is too small.
func Frame(pix []byte, screen *vm.Screen, on, off color.RGBA) {
	w := screen.Width()
	for y := range screen.Height() {
		for x := range w {
			c := off
			if screen.At(x, y) {
				c = on
			}
			i := 4 * (y*w + x)
			pix[i+0] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
		}
	}
}

// FrameSize is the size of the RGBA buffer expected by Frame.
func FrameSize(screen *vm.Screen) int {
	return 4 * screen.Width() * screen.Height()
}

// HalfBlocks renders the grid packing two rows per line with half block runes.
func HalfBlocks(screen *vm.Screen) string {
	var sb strings.Builder
	for y := 0; y < screen.Height(); y += 2 {
		for x := range screen.Width() {
			top, bottom := screen.At(x, y), screen.At(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
