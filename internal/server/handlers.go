package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/othello"
	"github.com/park285/othello-trainer/internal/render"
)

type errorResp struct {
	Error string `json:"error"`
}

// moveResp is a board by disc indexes, for clients that keep discs rather
// than ids.
type moveResp struct {
	ID    string `json:"id"`
	Turn  int    `json:"turn"`
	Black []int  `json:"black"`
	White []int  `json:"white"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.ExecuteTemplate(w, "index.tmpl", map[string]any{"BoardSize": render.ImageSize}); err != nil {
		s.logger.Error("index_render_failed", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx, span := s.tracer.Start(r.Context(), "server.board")
	span.SetAttributes(attribute.String("board.id", id))
	defer span.End()

	pos, err := s.local.Fetch(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (s *Server) handleBot(w http.ResponseWriter, r *http.Request) {
	reply, err := s.local.BotMove(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// handleMove plays move on the board given by disc index lists. Indexes
// outside 0..63 are ignored and any turn other than 1 means black.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	turn := othello.Black
	if q.Get("turn") == "1" {
		turn = othello.White
	}
	board := othello.FromIndexes(render.ParseFields(q.Get("black")), render.ParseFields(q.Get("white")), turn)

	move, err := strconv.Atoi(q.Get("move"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad move formatting")
		return
	}
	if move < 0 || move > 63 || board.Moves()&(1<<uint(move)) == 0 {
		writeError(w, http.StatusBadRequest, "invalid move")
		return
	}
	child, err := board.DoMove(move)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, moveResp{
		ID:    child.ID(),
		Turn:  int(child.Turn),
		Black: othello.MoveIndexes(child.Black()),
		White: othello.MoveIndexes(child.White()),
	})
}

func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	color := r.URL.Query().Get("color")
	lines, err := s.local.Openings(r.Context(), color)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusNotFound {
			status = http.StatusBadRequest
		}
		s.logger.Warn("openings_failed", zap.String("color", color), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	if lines == nil {
		lines = []drill.Opening{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	board, err := othello.FromID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid board", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(render.SVG(board, render.ParseFields(r.URL.Query().Get("mistakes"))))
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	board, err := othello.FromID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid board", http.StatusBadRequest)
		return
	}
	size := render.DefaultPNGSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			http.Error(w, "bad size", http.StatusBadRequest)
			return
		}
	}
	data, err := render.BoardPNG(board, render.ParseFields(r.URL.Query().Get("mistakes")), size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
