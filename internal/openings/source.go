package openings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/park285/othello-trainer/internal/othello"
)

// Source loads and updates the repertoire.
type Source interface {
	Tree(ctx context.Context) (*Tree, error)
	Upsert(ctx context.Context, board, bestChild othello.Board) error
}

type fileEntry struct {
	BestChild string `json:"best_child"`
}

type fileDoc struct {
	Openings map[string]fileEntry `json:"openings"`
}

// FileSource keeps the tree in a JSON file.
type FileSource struct {
	Path string

	mu sync.Mutex
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Tree reads the file. A missing file is an empty tree.
func (f *FileSource) Tree(ctx context.Context) (*Tree, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileSource) load() (*Tree, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return NewTree(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read openings: %w", err)
	}
	return DecodeTree(raw)
}

func (f *FileSource) Upsert(ctx context.Context, board, bestChild othello.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.load()
	if err != nil {
		return err
	}
	t.Upsert(board, bestChild)
	return f.save(t)
}

// Save validates t and writes it to the file.
func (f *FileSource) Save(ctx context.Context, t *Tree) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(t)
}

func (f *FileSource) save(t *Tree) error {
	if err := t.Validate(); err != nil {
		return err
	}
	raw, err := EncodeTree(t)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create openings dir: %w", err)
		}
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write openings: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

// DecodeTree parses the JSON document form of a tree.
func DecodeTree(raw []byte) (*Tree, error) {
	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode openings: %w", err)
	}
	t := NewTree()
	for id, e := range doc.Openings {
		t.entries[id] = e.BestChild
	}
	return t, nil
}

func EncodeTree(t *Tree) ([]byte, error) {
	doc := fileDoc{Openings: make(map[string]fileEntry)}
	for id, child := range t.Entries() {
		doc.Openings[id] = fileEntry{BestChild: child}
	}
	return json.MarshalIndent(doc, "", "    ")
}
