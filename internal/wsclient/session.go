// Package wsclient drives a server-side training session over /ws/train,
// reconnecting with backoff when the connection drops.
package wsclient

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/server"
)

var ErrNotConnected = errors.New("training session not connected")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

type StateCallback func(State)

type Option func(*Session)

// WithReconnect sets how many dial attempts follow a dropped connection.
// Zero disables reconnecting.
func WithReconnect(attempts int) Option {
	return func(s *Session) { s.maxReconnectAttempts = attempts }
}

func WithHeaderProvider(h gateway.HeaderProvider) Option {
	return func(s *Session) { s.headerProvider = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session is one connection to /ws/train. Do allows a single request in
// flight and matches its reply by sequence number. A reconnect opens a fresh
// server session; the caller sees it through the state callbacks.
type Session struct {
	wsURL          string
	headerProvider gateway.HeaderProvider
	logger         *zap.Logger

	connM sync.Mutex
	conn  *websocket.Conn
	done  chan struct{} // closed when conn is dropped
	id    string

	state  State
	stateM sync.RWMutex

	stateCbs []StateCallback
	cbM      sync.RWMutex

	maxReconnectAttempts int
	pingInterval         time.Duration

	reqM    sync.Mutex
	replies chan server.Reply
	seq     atomic.Uint64
	waiting atomic.Uint64 // seq of the request Do is waiting on, 0 when idle

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func NewSession(wsURL string, opts ...Option) *Session {
	s := &Session{
		wsURL:                wsURL,
		logger:               zap.NewNop(),
		state:                StateDisconnected,
		maxReconnectAttempts: 5,
		pingInterval:         30 * time.Second,
		replies:              make(chan server.Reply, 1),
		stopCh:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rootCtx, s.rootCancel = context.WithCancel(context.Background())
	return s
}

// Connect dials the server and waits for the greeting that carries the
// session id.
func (s *Session) Connect(ctx context.Context) error {
	switch s.State() {
	case StateConnected, StateConnecting:
		return nil
	}
	s.setState(StateConnecting)

	conn, hello, err := s.dial(ctx)
	if err != nil {
		s.setState(StateFailed)
		return err
	}
	s.attach(conn, hello)
	return nil
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, server.Reply, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      s.buildHeaders(),
	})
	if err != nil {
		return nil, server.Reply{}, err
	}
	var hello server.Reply
	if err := wsjson.Read(dialCtx, conn, &hello); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "no greeting")
		return nil, server.Reply{}, err
	}
	return conn, hello, nil
}

func (s *Session) attach(conn *websocket.Conn, hello server.Reply) {
	done := make(chan struct{})
	s.connM.Lock()
	s.conn, s.done, s.id = conn, done, hello.Session
	s.connM.Unlock()
	s.setState(StateConnected)
	s.logger.Info("ws_session_connected", zap.String("session", hello.Session))

	s.wg.Add(2)
	go s.listen(conn, done)
	go s.pingLoop(conn)
}

// detach drops conn if it is still current and reports whether it was.
func (s *Session) detach(conn *websocket.Conn) bool {
	s.connM.Lock()
	defer s.connM.Unlock()
	if s.conn != conn {
		return false
	}
	close(s.done)
	s.conn, s.done, s.id = nil, nil, ""
	return true
}

func (s *Session) listen(conn *websocket.Conn, done <-chan struct{}) {
	defer s.wg.Done()
	for {
		var r server.Reply
		if err := wsjson.Read(s.rootCtx, conn, &r); err != nil {
			if s.isStopping() || !s.detach(conn) {
				return
			}
			s.logger.Warn("ws_session_lost", zap.Error(err))
			_ = conn.Close(websocket.StatusGoingAway, "reconnect")
			s.setState(StateDisconnected)
			s.scheduleReconnect()
			return
		}
		if r.Seq == 0 || r.Seq != s.waiting.Load() {
			s.logger.Debug("ws_reply_dropped", zap.Uint64("seq", r.Seq))
			continue
		}
		select {
		case s.replies <- r:
		case <-done:
			return
		case <-s.stopCh:
			return
		}
	}
}

func (s *Session) pingLoop(conn *websocket.Conn) {
	defer s.wg.Done()
	t := time.NewTicker(s.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			if s.current() != conn {
				return
			}
			ctx, cancel := context.WithTimeout(s.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				// listen sees the closed conn and reconnects
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (s *Session) scheduleReconnect() {
	if s.maxReconnectAttempts <= 0 {
		return
	}
	s.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= s.maxReconnectAttempts; attempt++ {
			select {
			case <-s.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			conn, hello, err := s.dial(s.rootCtx)
			if err != nil {
				s.logger.Debug("ws_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			s.attach(conn, hello)
			return
		}
		s.setState(StateFailed)
	}()
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

// Do sends req and waits for its reply. A connection dropped while waiting
// returns ErrNotConnected; replies to abandoned requests are discarded.
func (s *Session) Do(ctx context.Context, req server.Request) (server.Reply, error) {
	s.reqM.Lock()
	defer s.reqM.Unlock()

	conn, done := s.link()
	if conn == nil {
		return server.Reply{}, ErrNotConnected
	}
	req.Seq = s.seq.Add(1)
	s.waiting.Store(req.Seq)
	defer s.waiting.Store(0)

	if err := wsjson.Write(ctx, conn, req); err != nil {
		return server.Reply{}, err
	}
	for {
		select {
		case r := <-s.replies:
			if r.Seq != req.Seq {
				continue
			}
			return r, nil
		case <-done:
			return server.Reply{}, ErrNotConnected
		case <-ctx.Done():
			return server.Reply{}, ctx.Err()
		case <-s.stopCh:
			return server.Reply{}, ErrNotConnected
		}
	}
}

func (s *Session) current() *websocket.Conn {
	conn, _ := s.link()
	return conn
}

func (s *Session) link() (*websocket.Conn, <-chan struct{}) {
	s.connM.Lock()
	defer s.connM.Unlock()
	return s.conn, s.done
}

// ID is the server's id for the current connection.
func (s *Session) ID() string {
	s.connM.Lock()
	defer s.connM.Unlock()
	return s.id
}

func (s *Session) State() State {
	s.stateM.RLock()
	defer s.stateM.RUnlock()
	return s.state
}

// OnStateChange registers cb for every later state change.
func (s *Session) OnStateChange(cb StateCallback) {
	s.cbM.Lock()
	defer s.cbM.Unlock()
	s.stateCbs = append(s.stateCbs, cb)
}

func (s *Session) setState(state State) {
	s.stateM.Lock()
	s.state = state
	s.stateM.Unlock()

	s.cbM.RLock()
	callbacks := slices.Clone(s.stateCbs)
	s.cbM.RUnlock()
	for _, cb := range callbacks {
		if cb != nil {
			cb(state)
		}
	}
}

func (s *Session) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if conn := s.current(); conn != nil {
		s.detach(conn)
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		s.rootCancel()
		s.setState(StateDisconnected)
		return nil
	}
}

func (s *Session) isStopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Session) buildHeaders() http.Header {
	hdr := http.Header{}
	if s.headerProvider == nil {
		return hdr
	}
	for k, v := range s.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
