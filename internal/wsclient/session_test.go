package wsclient

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "nhooyr.io/websocket"
    "nhooyr.io/websocket/wsjson"

    "github.com/park285/othello-trainer/internal/drill"
    "github.com/park285/othello-trainer/internal/gateway"
    "github.com/park285/othello-trainer/internal/hittest"
    "github.com/park285/othello-trainer/internal/othello"
    "github.com/park285/othello-trainer/internal/server"
    "github.com/park285/othello-trainer/internal/tui"
)

var _ tui.Driver = (*Remote)(nil)

type staticLines map[othello.Color][]drill.Opening

func (s staticLines) Lines(ctx context.Context, c othello.Color) ([]drill.Opening, error) { return s[c], nil }

func connect(t *testing.T, opts ...Option) (*Session, *httptest.Server) {
    t.Helper()
    ts := httptest.NewServer(server.New(staticLines{}).Handler())
    t.Cleanup(ts.Close)
    s := NewSession("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/train", opts...)
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := s.Connect(ctx); err != nil { t.Fatalf("Connect: %v", err) }
    t.Cleanup(func() { _ = s.Close(context.Background()) })
    return s, ts
}

func TestRemoteRoundTrip(t *testing.T) {
    var mu sync.Mutex
    var states []State
    s, _ := connect(t, WithReconnect(0), WithHeaderProvider(func() map[string]string { return map[string]string{"X-Client": "test", "": "skip"} }))
    s.OnStateChange(func(st State) { mu.Lock(); states = append(states, st); mu.Unlock() })
    if s.State() != StateConnected || s.ID() == "" { t.Fatalf("state = %v id = %q", s.State(), s.ID()) }

    r := NewRemote(s)
    ctx := context.Background()
    v, err := r.NewGame(ctx)
    if err != nil || v.Position.ID != othello.New().ID() { t.Fatalf("NewGame = %+v, %v", v, err) }
    v, err = r.Click(ctx, hittest.Point{X: 550, Y: 450}, hittest.Bounds{Width: 800, Height: 800})
    if err != nil || v.Position.Turn != "white" { t.Fatalf("Click = %+v, %v", v.Position, err) }
    v, err = r.Select(ctx, 0)
    if err != nil || v.Position.Turn != "white" { t.Fatalf("ignored Select = %+v, %v", v.Position, err) }

    if _, err := r.EnterTraining(ctx, ""); !errors.Is(err, drill.ErrEmptySession) { t.Fatalf("EnterTraining err = %v", err) }

    if err := s.Close(ctx); err != nil { t.Fatalf("Close: %v", err) }
    if _, err := r.BotMove(ctx); !errors.Is(err, gateway.ErrUnavailable) { t.Fatalf("after close err = %v", err) }
    mu.Lock()
    defer mu.Unlock()
    if len(states) == 0 || states[len(states)-1] != StateDisconnected { t.Fatalf("states = %v", states) }
}

func TestConnectFails(t *testing.T) {
    s := NewSession("ws://127.0.0.1:1/ws/train", WithReconnect(0))
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := s.Connect(ctx); err == nil { t.Fatalf("expected dial error") }
    if s.State() != StateFailed { t.Fatalf("state = %v", s.State()) }
    if _, err := s.Do(ctx, server.Request{Type: server.MsgNewGame}); !errors.Is(err, ErrNotConnected) { t.Fatalf("Do err = %v", err) }
}

func TestBackoffDuration(t *testing.T) {
    cases := map[int]time.Duration{0: 100 * time.Millisecond, 1: 100 * time.Millisecond, 3: 400 * time.Millisecond, 9: 3200 * time.Millisecond}
    for attempt, want := range cases {
        if got := backoffDuration(attempt); got != want { t.Fatalf("backoff(%d) = %v, want %v", attempt, got, want) }
    }
}

func TestStateString(t *testing.T) {
    if StateReconnecting.String() != "reconnecting" || State(42).String() != "disconnected" { t.Fatalf("unexpected names") }
}

// scriptedServer greets every connection and hands it to handle together
// with its 1-based connection number.
func scriptedServer(t *testing.T, handle func(n int32, conn *websocket.Conn)) (*Session, *atomic.Int32) {
    t.Helper()
    var conns atomic.Int32
    ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        conn, err := websocket.Accept(w, r, nil)
        if err != nil { return }
        defer conn.Close(websocket.StatusNormalClosure, "")
        n := conns.Add(1)
        if err := wsjson.Write(r.Context(), conn, server.Reply{Session: fmt.Sprintf("s%d", n)}); err != nil { return }
        handle(n, conn)
    }))
    t.Cleanup(ts.Close)
    s := NewSession("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/train", WithReconnect(3))
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := s.Connect(ctx); err != nil { t.Fatalf("Connect: %v", err) }
    t.Cleanup(func() { _ = s.Close(context.Background()) })
    return s, &conns
}

// echo answers every request with its type in Status after delay.
func echo(conn *websocket.Conn, delay time.Duration) {
    ctx := context.Background()
    for {
        var req server.Request
        if err := wsjson.Read(ctx, conn, &req); err != nil { return }
        time.Sleep(delay)
        if err := wsjson.Write(ctx, conn, server.Reply{Seq: req.Seq, Status: req.Type}); err != nil { return }
    }
}

func TestDoReturnsWhenConnectionDrops(t *testing.T) {
    s, conns := scriptedServer(t, func(n int32, conn *websocket.Conn) {
        if n == 1 {
            var req server.Request
            _ = wsjson.Read(context.Background(), conn, &req)
            conn.Close(websocket.StatusGoingAway, "drop")
            return
        }
        echo(conn, 0)
    })

    errc := make(chan error, 1)
    go func() {
        _, err := s.Do(context.Background(), server.Request{Type: server.MsgNewGame})
        errc <- err
    }()
    select {
    case err := <-errc:
        if !errors.Is(err, ErrNotConnected) { t.Fatalf("Do err = %v", err) }
    case <-time.After(5 * time.Second):
        t.Fatalf("Do still blocked after the connection dropped")
    }

    deadline := time.Now().Add(5 * time.Second)
    for s.State() != StateConnected {
        if time.Now().After(deadline) { t.Fatalf("no reconnect, state = %v", s.State()) }
        time.Sleep(20 * time.Millisecond)
    }
    if conns.Load() != 2 || s.ID() != "s2" { t.Fatalf("conns = %d id = %q", conns.Load(), s.ID()) }

    // the retry goes through on the new connection
    r, err := s.Do(context.Background(), server.Request{Type: server.MsgBot})
    if err != nil || r.Status != server.MsgBot { t.Fatalf("retry = %+v, %v", r, err) }
}

func TestRemoteDropMapsToUnavailable(t *testing.T) {
    s, _ := scriptedServer(t, func(n int32, conn *websocket.Conn) {
        var req server.Request
        _ = wsjson.Read(context.Background(), conn, &req)
        conn.Close(websocket.StatusGoingAway, "drop")
    })
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if _, err := NewRemote(s).NewGame(ctx); !errors.Is(err, gateway.ErrUnavailable) || ctx.Err() != nil { t.Fatalf("NewGame err = %v (ctx %v)", err, ctx.Err()) }
}

func TestLateReplyIsDiscarded(t *testing.T) {
    s, _ := scriptedServer(t, func(n int32, conn *websocket.Conn) { echo(conn, 200*time.Millisecond) })

    ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
    _, err := s.Do(ctx, server.Request{Type: server.MsgNewGame})
    cancel()
    if !errors.Is(err, context.DeadlineExceeded) { t.Fatalf("first Do err = %v", err) }

    for _, typ := range []string{server.MsgBot, server.MsgXOT} {
        r, err := s.Do(context.Background(), server.Request{Type: typ})
        if err != nil { t.Fatalf("Do %s: %v", typ, err) }
        if r.Status != typ { t.Fatalf("request %q answered with reply to %q", typ, r.Status) }
    }
}
