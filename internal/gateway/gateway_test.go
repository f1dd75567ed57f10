package gateway

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    "github.com/park285/othello-trainer/internal/drill"
    "github.com/park285/othello-trainer/internal/othello"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
    t.Helper()
    srv := httptest.NewServer(h)
    t.Cleanup(srv.Close)
    return NewClient(srv.URL, WithTimeout(2*time.Second))
}

func TestFetchDecodesPosition(t *testing.T) {
    initial := othello.New()
    c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/api/boards/initial" { http.NotFound(w, r); return }
        _ = json.NewEncoder(w).Encode(PositionOf(initial))
    })
    pos, err := c.Fetch(context.Background(), "initial")
    if err != nil { t.Fatalf("Fetch: %v", err) }
    if pos.ID != initial.ID() || pos.Turn != "black" { t.Fatalf("pos = %+v", pos) }
    if len(pos.Children) != 4 { t.Fatalf("children = %v", pos.Children) }
    if id, ok := pos.Child(19); !ok || id == "" { t.Fatalf("missing child 19") }
    if _, ok := pos.Child(0); ok { t.Fatalf("unexpected child 0") }
}

func TestFetchErrors(t *testing.T) {
    cases := []struct {
        status int
        want   error
    }{
        {http.StatusNotFound, ErrNotFound},
        {http.StatusBadRequest, ErrNotFound},
        {http.StatusInternalServerError, ErrUnavailable},
        {http.StatusBadGateway, ErrUnavailable},
    }
    for _, tc := range cases {
        var calls atomic.Int32
        c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
            calls.Add(1)
            w.WriteHeader(tc.status)
        })
        _, err := c.Fetch(context.Background(), "x")
        if !errors.Is(err, tc.want) { t.Fatalf("status %d: err = %v", tc.status, err) }
        if n := calls.Load(); n != 1 { t.Fatalf("status %d: %d calls, want no retry", tc.status, n) }
    }
}

func TestFetchTransportFailure(t *testing.T) {
    srv := httptest.NewServer(http.NotFoundHandler())
    url := srv.URL
    srv.Close()
    _, err := NewClient(url, WithTimeout(time.Second)).Fetch(context.Background(), "initial")
    if !errors.Is(err, ErrUnavailable) { t.Fatalf("err = %v", err) }
}

func TestFetchBadJSON(t *testing.T) {
    c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("{")) })
    if _, err := c.Fetch(context.Background(), "initial"); !errors.Is(err, ErrUnavailable) { t.Fatalf("err = %v", err) }
}

func TestOpeningsAndBot(t *testing.T) {
    lines := []drill.Opening{{{Board: "A", BestChild: 3}}}
    c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/api/openings":
            if r.URL.Query().Get("color") != "white" { w.WriteHeader(http.StatusBadRequest); return }
            _ = json.NewEncoder(w).Encode(lines)
        case "/api/boards/initial/bot":
            _ = json.NewEncoder(w).Encode(BotReply{ID: "child", Move: 19})
        default:
            http.NotFound(w, r)
        }
    })
    got, err := c.Openings(context.Background(), "white")
    if err != nil { t.Fatalf("Openings: %v", err) }
    if len(got) != 1 || got[0][0] != lines[0][0] { t.Fatalf("openings = %+v", got) }
    if _, err := c.Openings(context.Background(), ""); !errors.Is(err, ErrNotFound) { t.Fatalf("no color err = %v", err) }
    reply, err := c.BotMove(context.Background(), "initial")
    if err != nil || reply.Move != 19 || reply.ID != "child" { t.Fatalf("bot = %+v, %v", reply, err) }
}

func TestHeaderProvider(t *testing.T) {
    c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
        if r.Header.Get("X-Trainer") != "tui" { w.WriteHeader(http.StatusBadRequest); return }
        _ = json.NewEncoder(w).Encode(PositionOf(othello.New()))
    })
    WithHeaderProvider(func() map[string]string { return map[string]string{"X-Trainer": "tui", " ": "skip"} })(c)
    if _, err := c.Fetch(context.Background(), "initial"); err != nil { t.Fatalf("Fetch: %v", err) }
}

func TestPositionOfPassAndGameOver(t *testing.T) {
    pass := othello.FromIndexes([]int{1}, []int{0}, othello.Black)
    p := PositionOf(pass)
    if len(p.Children) != 0 || p.Pass != pass.Pass().ID() || p.GameOver { t.Fatalf("pass position = %+v", p) }

    over := PositionOf(othello.FromDiscs(0xFFFFFFFF00000000, 0x00000000FFFFFFFF, othello.Black))
    if !over.GameOver || over.Pass != "" { t.Fatalf("game over position = %+v", over) }
}

type staticLines map[othello.Color][]drill.Opening

func (s staticLines) Lines(ctx context.Context, c othello.Color) ([]drill.Opening, error) { return s[c], nil }

func TestLocal(t *testing.T) {
    l := NewLocal(staticLines{
        othello.Black: {{{Board: "B", BestChild: 1}}},
        othello.White: {{{Board: "W", BestChild: 2}}},
    }, nil)
    ctx := context.Background()

    pos, err := l.Fetch(ctx, "initial")
    if err != nil || len(pos.Children) != 4 { t.Fatalf("Fetch = %+v, %v", pos, err) }
    if _, err := l.Fetch(ctx, "garbage"); !errors.Is(err, ErrNotFound) { t.Fatalf("garbage err = %v", err) }

    all, err := l.Openings(ctx, "")
    if err != nil || len(all) != 2 { t.Fatalf("all = %v, %v", all, err) }
    white, err := l.Openings(ctx, "white")
    if err != nil || len(white) != 1 || white[0][0].Board != "W" { t.Fatalf("white = %v, %v", white, err) }
    if _, err := l.Openings(ctx, "red"); !errors.Is(err, ErrNotFound) { t.Fatalf("red err = %v", err) }

    reply, err := l.BotMove(ctx, "initial")
    if err != nil { t.Fatalf("BotMove: %v", err) }
    if _, ok := pos.Child(reply.Move); !ok { t.Fatalf("bot move %d is not legal", reply.Move) }

    if _, err := NewLocal(nil, nil).Openings(ctx, ""); !errors.Is(err, ErrUnavailable) { t.Fatalf("nil source err = %v", err) }
}
