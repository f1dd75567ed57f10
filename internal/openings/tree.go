// Package openings stores the opening repertoire as a map from normalized
// board ids to the normalized id of the best reply, and expands it into
// drill lines.
package openings

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/othello"
)

var ErrInvalidTree = errors.New("invalid openings tree")

// ValidationError names the entry that failed validation.
type ValidationError struct {
	BoardID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("board %s: %s", e.BoardID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTree }

// Tree is safe for concurrent use.
type Tree struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewTree() *Tree {
	return &Tree{entries: make(map[string]string)}
}

// TreeFrom builds a tree from raw normalized ids without validating them.
func TreeFrom(entries map[string]string) *Tree {
	t := NewTree()
	maps.Copy(t.entries, entries)
	return t
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of the normalized board id to best child id map.
func (t *Tree) Entries() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.entries)
}

// Lookup returns the normalized best child for board.
func (t *Tree) Lookup(board othello.Board) (othello.Board, bool) {
	t.mu.RLock()
	id, ok := t.entries[board.NormalizedID()]
	t.mu.RUnlock()
	if !ok {
		return othello.Board{}, false
	}
	child, err := othello.FromID(id)
	if err != nil {
		return othello.Board{}, false
	}
	return child, true
}

// Upsert records bestChild as the reply to board. Both are stored normalized.
func (t *Tree) Upsert(board, bestChild othello.Board) {
	t.mu.Lock()
	t.entries[board.NormalizedID()] = bestChild.NormalizedID()
	t.mu.Unlock()
}

// Validate checks that every id parses and every best child is a child of
// its board.
func (t *Tree) Validate() error {
	for boardID, childID := range t.Entries() {
		board, err := othello.FromID(boardID)
		if err != nil {
			return &ValidationError{BoardID: boardID, Reason: "invalid ID"}
		}
		child, err := othello.FromID(childID)
		if err != nil {
			return &ValidationError{BoardID: boardID, Reason: "invalid best_child ID"}
		}
		if _, _, ok := board.DenormalizeChild(child); !ok {
			return &ValidationError{BoardID: boardID, Reason: "best_child is not a valid child"}
		}
	}
	return nil
}

// maxLineDepth bounds recursion on corrupt trees with cycles.
const maxLineDepth = 60

// Lines expands the tree into drill lines for color. Black lines start from
// the initial position, white lines from each of its children. At each own
// position the best child is played and every opponent reply branches a new
// line; a line ends where the tree has no entry.
func (t *Tree) Lines(color othello.Color) ([]drill.Opening, error) {
	var starts []othello.Board
	if color == othello.Black {
		starts = []othello.Board{othello.New()}
	} else {
		starts = othello.New().Children()
	}

	var out []drill.Opening
	for _, start := range starts {
		lines, err := t.lines(color, start, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func (t *Tree) lines(color othello.Color, board othello.Board, prefix drill.Opening) ([]drill.Opening, error) {
	if board.Turn != color {
		return nil, fmt.Errorf("%w: %s is not %s to move", ErrInvalidTree, board.ID(), color)
	}
	normalized, ok := t.Lookup(board)
	if !ok {
		return nil, nil
	}
	best, move, ok := board.DenormalizeChild(normalized)
	if !ok {
		return nil, &ValidationError{BoardID: board.NormalizedID(), Reason: "best_child is not a valid child"}
	}

	line := append(prefix[:len(prefix):len(prefix)], drill.Step{Board: board.ID(), BestChild: move})
	replies := best.Children()
	// a reply without an entry ends the line there; it is emitted once
	ends := len(replies) == 0 || len(line) >= maxLineDepth
	var out []drill.Opening
	for _, reply := range replies {
		if ends && len(line) >= maxLineDepth {
			break
		}
		if _, known := t.Lookup(reply); !known {
			ends = true
			continue
		}
		lines, err := t.lines(color, reply, line)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	if ends {
		out = append([]drill.Opening{line}, out...)
	}
	return out, nil
}
