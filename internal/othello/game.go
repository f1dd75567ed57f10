package othello

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNotPlaying = errors.New("player is not playing this game")

// Game is a recorded game: header tags plus every position from the start.
type Game struct {
	Metadata map[string]string
	Boards   []Board
	Moves    []int
}

// ParseGame reads a PGN-like game record: `[Key "Value"]` header lines
// followed by whitespace separated move words. Words starting with a digit
// are move numbers and are skipped.
func ParseGame(r io.Reader) (*Game, error) {
	g := &Game{Metadata: make(map[string]string)}
	board := New()
	g.Boards = append(g.Boards, board)

	sc := bufio.NewScanner(r)
	inHeader := true
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if inHeader && strings.HasPrefix(line, "[") {
			key, value, ok := parseTag(line)
			if !ok {
				return nil, fmt.Errorf("line %d: malformed tag %q", lineNo, line)
			}
			g.Metadata[key] = value
			continue
		}
		inHeader = false
		for _, word := range strings.Fields(line) {
			if word[0] >= '0' && word[0] <= '9' {
				continue
			}
			move, err := FieldToIndex(word)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			board, err = board.DoMove(move)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			g.Moves = append(g.Moves, move)
			g.Boards = append(g.Boards, board)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read game: %w", err)
	}
	return g, nil
}

func parseTag(line string) (string, string, bool) {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	key, rest, ok := strings.Cut(line, " ")
	if !ok || key == "" {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", "", false
	}
	return key, rest[1 : len(rest)-1], true
}

// Color returns the color the named player had in this game.
func (g *Game) Color(player string) (Color, error) {
	switch {
	case player == "":
	case player == g.Metadata["Black"]:
		return Black, nil
	case player == g.Metadata["White"]:
		return White, nil
	}
	return Black, fmt.Errorf("%q: %w", player, ErrNotPlaying)
}

func (g *Game) IsXOT() bool {
	return g.Metadata["Variant"] == "xot"
}

// Replay returns the move sequence up to (excluding) offset in field notation.
func (g *Game) Replay(offset int) string {
	if offset > len(g.Moves) {
		offset = len(g.Moves)
	}
	words := make([]string, 0, offset)
	for _, m := range g.Moves[:offset] {
		words = append(words, IndexToField(m))
	}
	return strings.Join(words, " ")
}
