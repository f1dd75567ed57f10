package openings

import (
	"errors"

	"github.com/park285/othello-trainer/internal/othello"
)

var ErrXOTGame = errors.New("xot games are not checked")

type CheckStatus string

const (
	StatusCorrect  CheckStatus = "correct"
	StatusWrong    CheckStatus = "wrong"
	StatusNotFound CheckStatus = "not_found"
	StatusSkipped  CheckStatus = "skipped"
)

// CheckResult describes one of the player's moves. Correct is set for
// wrong moves and holds the board the repertoire expected.
type CheckResult struct {
	Move    int
	Board   othello.Board
	Played  othello.Board
	Status  CheckStatus
	Correct *othello.Board
}

// Check walks game and compares every move of player with the tree. It stops
// at the first wrong move and at the first pass.
func (t *Tree) Check(game *othello.Game, player string) ([]CheckResult, error) {
	if game.IsXOT() {
		return nil, ErrXOTGame
	}
	color, err := game.Color(player)
	if err != nil {
		return nil, err
	}

	var out []CheckResult
	for i := 0; i+1 < len(game.Boards); i++ {
		board, child := game.Boards[i], game.Boards[i+1]
		if board.Turn != color {
			continue
		}
		res := CheckResult{Move: i + 1, Board: board, Played: child}
		if game.Moves[i] == othello.MovePass {
			res.Status = StatusSkipped
			return append(out, res), nil
		}

		best, ok := t.Lookup(board)
		if !ok {
			res.Status = StatusNotFound
			out = append(out, res)
			continue
		}
		if played, _ := child.Normalized(); played != best {
			res.Status = StatusWrong
			if correct, _, ok := board.DenormalizeChild(best); ok {
				res.Correct = &correct
			}
			return append(out, res), nil
		}
		res.Status = StatusCorrect
		out = append(out, res)
	}
	return out, nil
}
