package openings

import (
    "errors"
    "testing"

    "github.com/park285/othello-trainer/internal/othello"
)

func play(t *testing.T, fields ...string) othello.Board {
    t.Helper()
    b := othello.New()
    for _, f := range fields {
        m, err := othello.FieldToIndex(f)
        if err != nil { t.Fatalf("field %s: %v", f, err) }
        if b, err = b.DoMove(m); err != nil { t.Fatalf("move %s: %v", f, err) }
    }
    return b
}

// sampleTree: black plays f5, after d6 black plays c3; white answers f5 with d6.
func sampleTree(t *testing.T) *Tree {
    t.Helper()
    tr := NewTree()
    tr.Upsert(play(t), play(t, "f5"))
    tr.Upsert(play(t, "f5", "d6"), play(t, "f5", "d6", "c3"))
    tr.Upsert(play(t, "f5"), play(t, "f5", "d6"))
    return tr
}

func TestLookupIsSymmetric(t *testing.T) {
    tr := sampleTree(t)
    got, ok := tr.Lookup(play(t, "d3"))
    if !ok { t.Fatalf("symmetric position not found") }
    if got.NormalizedID() != play(t, "f5", "d6").NormalizedID() { t.Fatalf("lookup = %s", got.ID()) }
    if _, ok := tr.Lookup(play(t, "f5", "f6")); ok { t.Fatalf("unexpected entry") }
}

func TestValidate(t *testing.T) {
    tr := sampleTree(t)
    if err := tr.Validate(); err != nil { t.Fatalf("Validate: %v", err) }

    bad := TreeFrom(map[string]string{"nope": othello.New().ID()})
    var ve *ValidationError
    if err := bad.Validate(); !errors.As(err, &ve) || ve.Reason != "invalid ID" { t.Fatalf("err = %v", err) }

    bad = TreeFrom(map[string]string{othello.New().NormalizedID(): "x"})
    if err := bad.Validate(); !errors.Is(err, ErrInvalidTree) { t.Fatalf("err = %v", err) }

    // best child two plies away is not a child
    bad = NewTree()
    bad.entries[othello.New().NormalizedID()] = play(t, "f5", "d6").NormalizedID()
    if err := bad.Validate(); !errors.As(err, &ve) || ve.Reason != "best_child is not a valid child" { t.Fatalf("err = %v", err) }
}

func checkLine(t *testing.T, tr *Tree, steps []othello.Board, moves []int) {
    t.Helper()
    for i, b := range steps {
        child, err := b.DoMove(moves[i])
        if err != nil { t.Fatalf("step %d: %v", i, err) }
        want, ok := tr.Lookup(b)
        if !ok { t.Fatalf("step %d board not in tree", i) }
        if n, _ := child.Normalized(); n != want { t.Fatalf("step %d plays %s, tree says %s", i, child.ID(), want.ID()) }
    }
}

func TestLinesBlack(t *testing.T) {
    tr := sampleTree(t)
    lines, err := tr.Lines(othello.Black)
    if err != nil { t.Fatalf("Lines: %v", err) }
    if len(lines) != 2 { t.Fatalf("lines = %d: %+v", len(lines), lines) }
    if len(lines[0]) != 1 || len(lines[1]) != 2 { t.Fatalf("line lengths %d %d", len(lines[0]), len(lines[1])) }
    for _, line := range lines {
        var boards []othello.Board
        var moves []int
        for _, s := range line {
            b, err := othello.FromID(s.Board)
            if err != nil { t.Fatalf("step board %q: %v", s.Board, err) }
            if b.Turn != othello.Black { t.Fatalf("step for wrong color") }
            boards = append(boards, b)
            moves = append(moves, s.BestChild)
        }
        checkLine(t, tr, boards, moves)
    }
    if lines[0][0].Board != othello.New().ID() { t.Fatalf("black lines must start at the initial board") }
}

func TestLinesWhite(t *testing.T) {
    tr := sampleTree(t)
    lines, err := tr.Lines(othello.White)
    if err != nil { t.Fatalf("Lines: %v", err) }
    if len(lines) != 4 { t.Fatalf("lines = %d", len(lines)) }
    seen := map[string]bool{}
    for _, line := range lines {
        if len(line) != 1 { t.Fatalf("line length %d", len(line)) }
        seen[line[0].Board] = true
    }
    for _, c := range othello.New().Children() {
        if !seen[c.ID()] { t.Fatalf("missing start %s", c.ID()) }
    }
}

func TestLinesEmptyTree(t *testing.T) {
    lines, err := NewTree().Lines(othello.Black)
    if err != nil || len(lines) != 0 { t.Fatalf("lines = %v, err = %v", lines, err) }
}
