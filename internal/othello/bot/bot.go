// Package bot picks moves with a fixed-depth alpha-beta search.
package bot

import (
	"context"
	"math"
	"math/bits"

	"github.com/park285/othello-trainer/internal/othello"
)

const (
	DefaultDepth = 4

	cornerMask  = 0x8100000000000081
	cornerValue = 3
	exactWeight = 1000
)

// Bot searches Depth plies ahead. The zero value searches DefaultDepth.
type Bot struct {
	Depth int
}

func New(depth int) *Bot {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Bot{Depth: depth}
}

// Move returns the child of board the bot would play together with its
// move index. Passing positions return the passed board with MovePass.
func (b *Bot) Move(ctx context.Context, board othello.Board) (othello.Board, int, error) {
	if !board.HasMoves() {
		if board.GameOver() {
			return othello.Board{}, 0, othello.ErrNoMoves
		}
		return board.Pass(), othello.MovePass, nil
	}
	depth := b.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	var (
		best     othello.Board
		bestMove = -1
		alpha    = math.MinInt
	)
	for _, m := range othello.MoveIndexes(board.Moves()) {
		if err := ctx.Err(); err != nil {
			return othello.Board{}, 0, err
		}
		child, _ := board.DoMove(m)
		score := -search(child, depth-1, math.MinInt+1, negate(alpha))
		if bestMove < 0 || score > alpha {
			best, bestMove, alpha = child, m, score
		}
	}
	return best, bestMove, nil
}

func negate(v int) int {
	if v == math.MinInt {
		return math.MaxInt
	}
	return -v
}

// search is a negamax alpha-beta over the side to move in board.
func search(board othello.Board, depth, alpha, beta int) int {
	if board.GameOver() {
		return exactWeight * board.ExactScore()
	}
	if depth <= 0 {
		return Heuristic(board)
	}
	moves := board.Moves()
	if moves == 0 {
		return -search(board.Pass(), depth, -beta, -alpha)
	}
	for _, m := range othello.MoveIndexes(moves) {
		child, _ := board.DoMove(m)
		score := -search(child, depth-1, -beta, -alpha)
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// Heuristic scores board for the side to move: mobility difference plus
// weighted corner difference.
func Heuristic(board othello.Board) int {
	mobility := bits.OnesCount64(board.Moves()) - bits.OnesCount64(board.Pass().Moves())
	corners := bits.OnesCount64(board.Me&cornerMask) - bits.OnesCount64(board.Opp&cornerMask)
	return mobility + cornerValue*corners
}
