package wsclient

import (
	"context"
	"fmt"

	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/hittest"
	"github.com/park285/othello-trainer/internal/server"
	"github.com/park285/othello-trainer/internal/trainer"
)

// Remote exposes a Session with the same calls as a local trainer
// controller. Transport failures surface as gateway.ErrUnavailable.
type Remote struct {
	s *Session
}

func NewRemote(s *Session) *Remote { return &Remote{s: s} }

func (r *Remote) NewGame(ctx context.Context) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgNewGame})
}

func (r *Remote) AlternateOpening(ctx context.Context) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgXOT})
}

func (r *Remote) EnterTraining(ctx context.Context, color string) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgTrain, Color: color})
}

func (r *Remote) Click(ctx context.Context, p hittest.Point, b hittest.Bounds) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgClick, X: p.X, Y: p.Y, Width: b.Width, Height: b.Height})
}

func (r *Remote) Select(ctx context.Context, field int) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgSelect, Field: field})
}

func (r *Remote) BotMove(ctx context.Context) (trainer.View, error) {
	return r.do(ctx, server.Request{Type: server.MsgBot})
}

func (r *Remote) do(ctx context.Context, req server.Request) (trainer.View, error) {
	reply, err := r.s.Do(ctx, req)
	if err != nil {
		return trainer.View{}, fmt.Errorf("%w: %v", gateway.ErrUnavailable, err)
	}
	return reply.View, trainer.ErrorFromCode(reply.Error, reply.Message)
}
