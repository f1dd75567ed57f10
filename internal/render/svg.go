// Package render draws boards as SVG and rasterises them to PNG.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/park285/othello-trainer/internal/othello"
)

const (
	// ImageSize is the edge length of the SVG in user units.
	ImageSize = 800

	cellSize    = ImageSize / 8.0
	discRadius  = 0.38 * cellSize
	moveRadius  = 0.08 * cellSize
	crossWidth  = 0.3 * cellSize
	gridStroke  = 2
	crossStroke = 7
)

var (
	boardFill  = colornames.Green
	lineColor  = colornames.Black
	blackDisc  = colornames.Black
	whiteDisc  = colornames.White
	crossColor = colornames.Red
)

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func discColor(c othello.Color) color.RGBA {
	if c == othello.White {
		return whiteDisc
	}
	return blackDisc
}

// SVG renders board with legal moves as dots in the color of the side to
// move and a red cross on every mistake field. Mistakes outside 0..63 are
// ignored.
func SVG(board othello.Board, mistakes []int) []byte {
	var b strings.Builder
	b.Grow(8 << 10)

	fmt.Fprintf(&b, `<?xml version="1.0"?>`+"\n")
	fmt.Fprintf(&b, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`+"\n",
		ImageSize, ImageSize, ImageSize, ImageSize)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
		ImageSize, ImageSize, hex(boardFill), hex(lineColor), gridStroke)

	for i := 1; i < 8; i++ {
		offset := int(cellSize * float64(i))
		fmt.Fprintf(&b, `<line x1="%d" y1="0" x2="%d" y2="%d" stroke="%s" stroke-width="%d"/>`+"\n",
			offset, offset, ImageSize, hex(lineColor), gridStroke)
		fmt.Fprintf(&b, `<line x1="0" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%d"/>`+"\n",
			offset, ImageSize, offset, hex(lineColor), gridStroke)
	}

	moveFill := hex(discColor(board.Turn))
	for index, field := range board.Fields() {
		cx, cy := center(index)
		switch field {
		case othello.FieldMove:
			fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n", cx, cy, moveRadius, moveFill)
		case othello.FieldBlack:
			fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n", cx, cy, discRadius, hex(blackDisc))
		case othello.FieldWhite:
			fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n", cx, cy, discRadius, hex(whiteDisc))
		}
	}

	for _, index := range mistakes {
		if index < 0 || index >= 64 {
			continue
		}
		cx, cy := center(index)
		minX, minY := cx-crossWidth/2, cy-crossWidth/2
		maxX, maxY := minX+crossWidth, minY+crossWidth
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%d"/>`+"\n",
			minX, minY, maxX, maxY, hex(crossColor), crossStroke)
		fmt.Fprintf(&b, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%d"/>`+"\n",
			maxX, minY, minX, maxY, hex(crossColor), crossStroke)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func center(index int) (float64, float64) {
	return cellSize/2 + cellSize*float64(index%8), cellSize/2 + cellSize*float64(index/8)
}

// ParseFields reads a comma separated list of field indexes, skipping
// anything that is not a number in 0..63.
func ParseFields(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if n >= 0 && n < 64 {
			out = append(out, n)
		}
	}
	return out
}
