package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/othello-trainer/internal/hittest"
	"github.com/park285/othello-trainer/internal/trainer"
)

// Training message types sent by the browser.
const (
	MsgNewGame = "new_game"
	MsgXOT     = "xot"
	MsgTrain   = "train"
	MsgClick   = "click"
	MsgSelect  = "select"
	MsgBot     = "bot"
)

// Request is one client action. Click carries pointer coordinates relative
// to the rendered board, Select a field index directly. Seq is echoed in the
// reply.
type Request struct {
	Seq    uint64  `json:"seq,omitempty"`
	Type   string  `json:"type"`
	Color  string  `json:"color,omitempty"`
	Field  int     `json:"field,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Reply is sent after every request. Error and Message are set when the
// action failed; View is always the current state.
type Reply struct {
	Seq     uint64       `json:"seq,omitempty"`
	Session string       `json:"session"`
	View    trainer.View `json:"view"`
	Status  string       `json:"status,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

var (
	errUnknownType = errors.New("unknown message type")
	errNoBounds    = errors.New("click needs a positive board width and height")
)

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	id := uuid.NewString()
	logger := s.logger.With(zap.String("session", id))
	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	logger.Info("ws_session_start", zap.String("remote", r.RemoteAddr))

	c := trainer.New(s.local, trainer.WithLogger(logger))
	ctx := r.Context()
	if err := s.reply(ctx, conn, id, 0, c.View(), nil); err != nil {
		return
	}
	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				logger.Debug("ws_read_failed", zap.Error(err))
			}
			logger.Info("ws_session_end")
			return
		}
		v, err := s.dispatch(ctx, c, req)
		if err != nil {
			logger.Debug("ws_request_failed", zap.String("type", req.Type), zap.Error(err))
		}
		if err := s.reply(ctx, conn, id, req.Seq, v, err); err != nil {
			logger.Debug("ws_write_failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, c *trainer.Controller, req Request) (trainer.View, error) {
	switch req.Type {
	case MsgNewGame:
		return c.NewGame(ctx)
	case MsgXOT:
		return c.AlternateOpening(ctx)
	case MsgTrain:
		return c.EnterTraining(ctx, req.Color)
	case MsgClick:
		if req.Width <= 0 || req.Height <= 0 {
			return c.View(), errNoBounds
		}
		return c.Click(ctx, hittest.Point{X: req.X, Y: req.Y}, hittest.Bounds{Width: req.Width, Height: req.Height})
	case MsgSelect:
		return c.Select(ctx, req.Field)
	case MsgBot:
		return c.BotMove(ctx)
	}
	return c.View(), errUnknownType
}

func (s *Server) reply(ctx context.Context, conn *websocket.Conn, session string, seq uint64, v trainer.View, err error) error {
	out := Reply{Seq: seq, Session: session, View: v, Status: trainer.StatusText(s.catalog, v)}
	if err != nil {
		id := ""
		if v.Position != nil {
			id = v.Position.ID
		}
		out.Error = trainer.ErrorCode(err)
		out.Message = trainer.ErrorText(s.catalog, err, id)
	}
	return wsjson.Write(ctx, conn, out)
}
