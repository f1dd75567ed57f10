// Package server exposes boards, openings and rendered images over HTTP and
// runs training sessions over a websocket.
package server

import (
	"bufio"
	"html/template"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/msgcat"
	"github.com/park285/othello-trainer/internal/othello/bot"
	"github.com/park285/othello-trainer/internal/telemetry"
)

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

func WithBot(b *bot.Bot) Option {
	return func(s *Server) { s.bot = b }
}

// WithOriginPatterns sets the hosts allowed to open /ws/train from a
// browser on another origin.
func WithOriginPatterns(patterns []string) Option {
	return func(s *Server) { s.origins = patterns }
}

type Server struct {
	local   *gateway.Local
	bot     *bot.Bot
	catalog *msgcat.Catalog
	logger  *zap.Logger
	tracer  trace.Tracer
	origins []string
	index   *template.Template

	sessions atomic.Int64
}

// New serves lines from the given provider. A nil provider makes the
// openings endpoints answer 503.
func New(lines gateway.LinesProvider, opts ...Option) *Server {
	s := &Server{
		logger: zap.NewNop(),
		tracer: telemetry.Tracer("server"),
		index:  indexTemplate(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.local = gateway.NewLocal(lines, s.bot)
	return s
}

// Handler returns the routed mux wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/boards/{id}", s.handleBoard)
	mux.HandleFunc("GET /api/boards/{id}/bot", s.handleBot)
	mux.HandleFunc("GET /api/move", s.handleMove)
	mux.HandleFunc("GET /api/openings", s.handleOpenings)
	mux.HandleFunc("GET /svg/boards/{id}", s.handleSVG)
	mux.HandleFunc("GET /png/boards/{id}", s.handlePNG)
	mux.HandleFunc("GET /ws/train", s.handleTrain)
	return requestLogger(s.logger, mux)
}

// ActiveSessions is the number of open training websockets.
func (s *Server) ActiveSessions() int64 { return s.sessions.Load() }

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Hijack lets websocket upgrades pass through the logger.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.status = http.StatusSwitchingProtocols
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		logger.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Int("bytes", sw.bytes),
			zap.Duration("dur", time.Since(start).Round(time.Millisecond)),
		)
	})
}
