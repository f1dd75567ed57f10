package trainer

import (
	"errors"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/msgcat"
	"github.com/park285/othello-trainer/internal/othello"
)

// ErrorCode is the stable name of err for clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, ErrNoPosition):
		return "not_found"
	case errors.Is(err, gateway.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, drill.ErrEmptySession):
		return "empty_session"
	case errors.Is(err, ErrBusy):
		return "busy"
	default:
		return "bad_request"
	}
}

// ErrorText renders err for the user. id is the position involved, if any.
func ErrorText(cat *msgcat.Catalog, err error, id string) string {
	code := ErrorCode(err)
	data := map[string]any{"ID": id, "Reason": err.Error()}
	return cat.Text("error."+code, data, err.Error())
}

// StatusText is the one-line status for v: drill progress in training,
// the side to move in game mode.
func StatusText(cat *msgcat.Catalog, v View) string {
	if v.Summary != nil {
		s := map[string]any{"Done": v.Summary.Done, "Total": v.Summary.Total, "Percent": v.Summary.Percent}
		stats := cat.Text("training.stats", s, "")
		switch {
		case v.Complete:
			return cat.Text("training.complete", s, stats)
		case v.Mastered:
			return cat.Text("training.mastered", s, stats)
		case v.Outcome == drill.Mistake.String():
			return stats + "  " + cat.Text("training.mistake", nil, "")
		}
		return stats
	}
	if v.Position == nil {
		return ""
	}
	switch {
	case v.Position.GameOver:
		b, err := othello.FromID(v.Position.ID)
		if err != nil {
			return ""
		}
		return cat.Text("game.over", map[string]any{"Black": b.Count(othello.Black), "White": b.Count(othello.White)}, "")
	case v.Position.Pass != "":
		return cat.Text("game.pass", map[string]any{"Turn": v.Position.Turn}, "")
	}
	return cat.Text("game.turn", map[string]any{"Turn": v.Position.Turn}, "")
}

// ErrorFromCode maps a code produced by ErrorCode back to its sentinel.
// Unknown codes become a plain error carrying message.
func ErrorFromCode(code, message string) error {
	switch code {
	case "":
		return nil
	case "not_found":
		return gateway.ErrNotFound
	case "unavailable":
		return gateway.ErrUnavailable
	case "empty_session":
		return drill.ErrEmptySession
	case "busy":
		return ErrBusy
	}
	if message == "" {
		message = code
	}
	return errors.New(message)
}
