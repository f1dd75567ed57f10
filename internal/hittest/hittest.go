// Package hittest maps pointer coordinates on a rendered board to fields.
package hittest

const Size = 8

type Point struct {
	X, Y float64
}

// Bounds is the rendered size of the board; the origin is its top-left corner.
type Bounds struct {
	Width, Height float64
}

// FieldAt returns row*8+col for the cell under p. Coordinates outside the
// board are clamped onto the nearest edge cell; use Contains to reject them.
func FieldAt(p Point, b Bounds) int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	row := cell(p.Y, b.Height)
	col := cell(p.X, b.Width)
	return row*Size + col
}

func cell(v, extent float64) int {
	c := int(Size * v / extent)
	if v < 0 || c < 0 {
		return 0
	}
	if c >= Size {
		return Size - 1
	}
	return c
}

// Contains reports whether p lies on the board.
func Contains(p Point, b Bounds) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.Width && p.Y < b.Height
}
