package gateway

import (
	"context"
	"errors"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/othello"
)

var (
	// ErrNotFound means the server does not know the position id.
	ErrNotFound = errors.New("position not found")
	// ErrUnavailable covers transport failures and server errors.
	ErrUnavailable = errors.New("board service unavailable")
)

// Position is a board as served by the board API. Children maps field
// index to child id. Pass is set when the side to move has no move but the
// game goes on.
type Position struct {
	ID       string         `json:"id"`
	Children map[int]string `json:"children"`
	Turn     string         `json:"turn,omitempty"`
	Pass     string         `json:"pass,omitempty"`
	GameOver bool           `json:"game_over"`
}

// Child returns the id reached by playing field, if it is a legal move.
func (p *Position) Child(field int) (string, bool) {
	if p == nil {
		return "", false
	}
	id, ok := p.Children[field]
	return id, ok
}

// BotReply is the automated opponent's choice for a position.
type BotReply struct {
	ID   string `json:"id"`
	Move int    `json:"move"`
}

// Gateway is what the trainer needs from the board service. Implementations
// do not retry and do not cache.
type Gateway interface {
	Fetch(ctx context.Context, positionID string) (*Position, error)
	Openings(ctx context.Context, color string) ([]drill.Opening, error)
	BotMove(ctx context.Context, positionID string) (*BotReply, error)
}

// PositionOf builds the API view of a board.
func PositionOf(b othello.Board) *Position {
	p := &Position{
		ID:       b.ID(),
		Children: make(map[int]string),
		Turn:     b.Turn.String(),
	}
	for move, child := range b.ChildMap() {
		p.Children[move] = child.ID()
	}
	if len(p.Children) == 0 {
		if b.GameOver() {
			p.GameOver = true
		} else {
			p.Pass = b.Pass().ID()
		}
	}
	return p
}
