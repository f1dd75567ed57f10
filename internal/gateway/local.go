package gateway

import (
	"context"
	"fmt"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/othello"
	"github.com/park285/othello-trainer/internal/othello/bot"
)

// LinesProvider expands the openings repertoire into drill lines.
type LinesProvider interface {
	Lines(ctx context.Context, color othello.Color) ([]drill.Opening, error)
}

// Local answers gateway calls in process, without HTTP. The server uses it
// for websocket sessions and the terminal client when no board API is set.
type Local struct {
	lines LinesProvider
	bot   *bot.Bot
}

func NewLocal(lines LinesProvider, b *bot.Bot) *Local {
	if b == nil {
		b = bot.New(bot.DefaultDepth)
	}
	return &Local{lines: lines, bot: b}
}

func (l *Local) Fetch(ctx context.Context, positionID string) (*Position, error) {
	b, err := othello.FromID(positionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, positionID, err)
	}
	return PositionOf(b), nil
}

// Openings returns lines for color, or for both colors when color is empty.
func (l *Local) Openings(ctx context.Context, color string) ([]drill.Opening, error) {
	if l.lines == nil {
		return nil, fmt.Errorf("%w: no openings source", ErrUnavailable)
	}
	if color == "" {
		black, err := l.lines.Lines(ctx, othello.Black)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		white, err := l.lines.Lines(ctx, othello.White)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return append(black, white...), nil
	}
	c, err := othello.ParseColor(color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	lines, err := l.lines.Lines(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return lines, nil
}

func (l *Local) BotMove(ctx context.Context, positionID string) (*BotReply, error) {
	b, err := othello.FromID(positionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, positionID, err)
	}
	child, move, err := l.bot.Move(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &BotReply{ID: child.ID(), Move: move}, nil
}
