package openings

import (
    "context"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestFileSourceRoundTrip(t *testing.T) {
    ctx := context.Background()
    path := filepath.Join(t.TempDir(), "data", "openings.json")
    src := NewFileSource(path)

    tr, err := src.Tree(ctx)
    if err != nil { t.Fatalf("Tree on missing file: %v", err) }
    if tr.Len() != 0 { t.Fatalf("expected empty tree") }

    if err := src.Upsert(ctx, play(t), play(t, "f5")); err != nil { t.Fatalf("Upsert: %v", err) }
    if err := src.Upsert(ctx, play(t, "f5", "d6"), play(t, "f5", "d6", "c3")); err != nil { t.Fatalf("Upsert: %v", err) }

    raw, err := os.ReadFile(path)
    if err != nil { t.Fatalf("read: %v", err) }
    if !strings.Contains(string(raw), `"best_child"`) || !strings.Contains(string(raw), `"openings"`) { t.Fatalf("unexpected file:\n%s", raw) }

    tr, err = src.Tree(ctx)
    if err != nil { t.Fatalf("Tree: %v", err) }
    if tr.Len() != 2 { t.Fatalf("len = %d", tr.Len()) }
    if _, ok := tr.Lookup(play(t, "c4", "e3")); !ok { t.Fatalf("symmetric entry missing") }
}

func TestFileSourceRejectsInvalid(t *testing.T) {
    src := NewFileSource(filepath.Join(t.TempDir(), "openings.json"))
    bad := TreeFrom(map[string]string{"initial": "bogus"})
    if err := src.Save(context.Background(), bad); err == nil { t.Fatalf("expected validation error") }
    if _, err := os.Stat(src.Path); !os.IsNotExist(err) { t.Fatalf("invalid tree was written: %v", err) }
}

func TestDecodeTreeError(t *testing.T) {
    if _, err := DecodeTree([]byte("{")); err == nil { t.Fatalf("expected decode error") }
}

func TestNewRepositoryRequiresURL(t *testing.T) {
    if _, err := NewRepository("  "); err == nil { t.Fatalf("expected error") }
}
