package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/park285/othello-trainer/internal/hittest"
	"github.com/park285/othello-trainer/internal/othello"
	"github.com/park285/othello-trainer/internal/trainer"
)

// Each field is cellW columns by cellH rows; the board starts after the
// rank labels and the file header.
const (
	cellW  = 4
	cellH  = 2
	boardX = 3
	boardY = 1
)

var boardBounds = hittest.Bounds{Width: hittest.Size * cellW, Height: hittest.Size * cellH}

var (
	styleBoard   = tcell.StyleDefault.Background(tcell.ColorGreen)
	styleBlack   = styleBoard.Foreground(tcell.ColorBlack).Bold(true)
	styleWhite   = styleBoard.Foreground(tcell.ColorWhite).Bold(true)
	styleMistake = styleBoard.Foreground(tcell.ColorRed).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// boardPoint converts a terminal cell to board coordinates. ok is false off
// the board.
func boardPoint(x, y int) (hittest.Point, bool) {
	p := hittest.Point{X: float64(x - boardX), Y: float64(y - boardY)}
	return p, hittest.Contains(p, boardBounds)
}

func drawBoard(s *Screen, v trainer.View) {
	for col := range hittest.Size {
		s.SetContent(boardX+col*cellW+cellW/2, 0, rune('a'+col), styleLabel)
	}
	for row := range hittest.Size {
		s.SetContent(1, boardY+row*cellH, rune('1'+row), styleLabel)
	}

	var fields [64]othello.Field
	turn := styleBlack
	if v.Position != nil {
		if b, err := othello.FromID(v.Position.ID); err == nil {
			fields = b.Fields()
			if b.Turn == othello.White {
				turn = styleWhite
			}
		}
	}
	mistakes := make(map[int]bool, len(v.Mistakes))
	for _, m := range v.Mistakes {
		mistakes[m] = true
	}

	for i, f := range fields {
		x0, y0 := boardX+(i%8)*cellW, boardY+(i/8)*cellH
		for dy := range cellH {
			for dx := range cellW {
				s.SetContent(x0+dx, y0+dy, ' ', styleBoard)
			}
		}
		cx := x0 + cellW/2 - 1
		switch {
		case mistakes[i]:
			s.Text(cx, y0, "><", styleMistake)
		case f == othello.FieldBlack:
			s.Text(cx, y0, "██", styleBlack)
		case f == othello.FieldWhite:
			s.Text(cx, y0, "██", styleWhite)
		case f == othello.FieldMove:
			s.SetContent(cx, y0, '·', turn)
		}
	}
}
