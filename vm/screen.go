package vm

import (
	"strings"

	"go.creack.net/chipple/op"
)

// Screen is the monochrome pixel grid.
// Cells are addressed by (x, y): x is the column, y is the row,
// (0, 0) is the top left corner.
type Screen struct {
	cells [op.ScreenHeight][op.ScreenWidth]bool
}

func (s *Screen) Width() int  { return op.ScreenWidth }
func (s *Screen) Height() int { return op.ScreenHeight }

// Contains reports whether (x, y) is inside the grid.
func (s *Screen) Contains(x, y int) bool {
	return x >= 0 && x < op.ScreenWidth && y >= 0 && y < op.ScreenHeight
}

// At returns the cell state. Out of the grid cells are off.
func (s *Screen) At(x, y int) bool {
	if !s.Contains(x, y) {
		return false
	}
	return s.cells[y][x]
}

// Toggle flips the cell and returns its state before the flip.
// Out of the grid cells are left alone.
func (s *Screen) Toggle(x, y int) bool {
	if !s.Contains(x, y) {
		return false
	}
	was := s.cells[y][x]
	s.cells[y][x] = !was
	return was
}

func (s *Screen) Clear() {
	s.cells = [op.ScreenHeight][op.ScreenWidth]bool{}
}

// Lit returns how many cells are on.
func (s *Screen) Lit() int {
	n := 0
	for y := range s.cells {
		for x := range s.cells[y] {
			if s.cells[y][x] {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a copy of the grid, safe to read while the machine runs.
func (s *Screen) Snapshot() Screen {
	return *s
}

// String renders the grid, one line per row, '#' for on and '.' for off.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow((op.ScreenWidth + 1) * op.ScreenHeight)
	for y := range s.cells {
		for x := range s.cells[y] {
			if s.cells[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
