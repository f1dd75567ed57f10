package othello

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Color identifies the side to move.
type Color int

const (
	Black Color = 0
	White Color = 1
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Opponent returns the other side.
func (c Color) Opponent() Color { return 1 - c }

// ParseColor accepts black/white and their one-letter forms.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "0":
		return Black, nil
	case "white", "w", "1":
		return White, nil
	default:
		return Black, fmt.Errorf("unknown color %q", s)
	}
}

// Field is the content of a single square as seen by a renderer.
type Field int

const (
	FieldEmpty Field = iota
	FieldBlack
	FieldWhite
	FieldMove
)

const (
	// MovePass is the move index for passing the turn.
	MovePass = -1

	// IDInitial and IDXOT are the special position ids understood by FromID.
	IDInitial = "initial"
	IDXOT     = "xot"

	idLength  = 33
	xotMoves  = 8
	edgeMask  = 0x7E7E7E7E7E7E7E7E
	fullBoard = 64
)

var (
	ErrIDLength   = errors.New("unexpected id length")
	ErrIDTurn     = errors.New("unexpected turn value")
	ErrIDDiscs    = errors.New("unexpected base 16 char in discs")
	ErrIDOverlap  = errors.New("overlapping discs")
	ErrOccupied   = errors.New("field is occupied")
	ErrOutOfRange = errors.New("field index out of bounds")
	ErrNoMoves    = errors.New("board has no moves")
)

// Board is a position seen from the side to move: Me holds the discs of the
// player to move, Opp those of the opponent.
type Board struct {
	Me   uint64
	Opp  uint64
	Turn Color
}

// New returns the standard starting position with black to move.
func New() Board {
	return Board{
		Me:   1<<28 | 1<<35,
		Opp:  1<<27 | 1<<36,
		Turn: Black,
	}
}

// FromDiscs builds a board from the discs of the side to move and its opponent.
func FromDiscs(me, opp uint64, turn Color) Board {
	return Board{Me: me, Opp: opp, Turn: turn}
}

// FromIndexes builds a board from black and white field lists. Indexes
// outside 0..63 are ignored.
func FromIndexes(blacks, whites []int, turn Color) Board {
	var black, white uint64
	for _, i := range blacks {
		if i >= 0 && i < fullBoard {
			black |= 1 << uint(i)
		}
	}
	for _, i := range whites {
		if i >= 0 && i < fullBoard {
			white |= 1 << uint(i)
		}
	}
	return fromColors(black, white, turn)
}

func fromColors(black, white uint64, turn Color) Board {
	if turn == White {
		return Board{Me: white, Opp: black, Turn: White}
	}
	return Board{Me: black, Opp: white, Turn: Black}
}

// FromID parses a position id. The special ids "initial" and "xot" produce
// the starting position and a random XOT position respectively.
func FromID(id string) (Board, error) {
	switch id {
	case IDInitial:
		return New(), nil
	case IDXOT:
		return RandomXOT(nil), nil
	}
	if len(id) != idLength {
		return Board{}, ErrIDLength
	}
	var turn Color
	switch id[0] {
	case 'B':
		turn = Black
	case 'W':
		turn = White
	default:
		return Board{}, ErrIDTurn
	}
	black, err := strconv.ParseUint(id[1:17], 16, 64)
	if err != nil {
		return Board{}, ErrIDDiscs
	}
	white, err := strconv.ParseUint(id[17:], 16, 64)
	if err != nil {
		return Board{}, ErrIDDiscs
	}
	if black&white != 0 {
		return Board{}, ErrIDOverlap
	}
	return fromColors(black, white, turn), nil
}

// ID returns the canonical id: turn letter, then black and white discs in hex.
func (b Board) ID() string {
	turn := byte('B')
	if b.Turn == White {
		turn = 'W'
	}
	return fmt.Sprintf("%c%016x%016x", turn, b.Black(), b.White())
}

func (b Board) Black() uint64 {
	if b.Turn == Black {
		return b.Me
	}
	return b.Opp
}

func (b Board) White() uint64 {
	if b.Turn == White {
		return b.Me
	}
	return b.Opp
}

// Count returns the number of discs of the given color.
func (b Board) Count(c Color) int {
	if c == White {
		return bits.OnesCount64(b.White())
	}
	return bits.OnesCount64(b.Black())
}

// ExactScore is the disc difference from the point of view of the side to move.
func (b Board) ExactScore() int {
	return bits.OnesCount64(b.Me) - bits.OnesCount64(b.Opp)
}

// Moves returns the bitset of legal moves for the side to move.
func (b Board) Moves() uint64 {
	mask := b.Opp & edgeMask
	moves := directionMoves(b.Me, mask, 1)
	moves |= directionMoves(b.Me, mask, 7)
	moves |= directionMoves(b.Me, mask, 9)
	moves |= directionMoves(b.Me, b.Opp, 8)
	return moves &^ (b.Me | b.Opp)
}

func directionMoves(me, mask uint64, dir uint) uint64 {
	flipL := mask & (me << dir)
	flipL |= mask & (flipL << dir)
	maskL := mask & (mask << dir)
	flipL |= maskL & (flipL << (2 * dir))
	flipL |= maskL & (flipL << (2 * dir))

	flipR := mask & (me >> dir)
	flipR |= mask & (flipR >> dir)
	maskR := mask & (mask >> dir)
	flipR |= maskR & (flipR >> (2 * dir))
	flipR |= maskR & (flipR >> (2 * dir))

	return (flipL << dir) | (flipR >> dir)
}

func (b Board) HasMoves() bool { return b.Moves() != 0 }

// GameOver reports whether neither side can move.
func (b Board) GameOver() bool {
	return !b.HasMoves() && !b.Pass().HasMoves()
}

// Pass returns the board with the turn handed to the opponent.
func (b Board) Pass() Board {
	return Board{Me: b.Opp, Opp: b.Me, Turn: b.Turn.Opponent()}
}

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// DoMove plays move for the side to move and returns the resulting board.
// Legality is not checked beyond the field being empty; use Moves for that.
func (b Board) DoMove(move int) (Board, error) {
	if move == MovePass {
		return b.Pass(), nil
	}
	if move < 0 || move >= fullBoard {
		return Board{}, ErrOutOfRange
	}
	if (b.Me|b.Opp)&(1<<uint(move)) != 0 {
		return Board{}, fmt.Errorf("move %s: %w", IndexToField(move), ErrOccupied)
	}

	var flipped uint64
	x0, y0 := move%8, move/8
	for _, d := range directions {
		dx, dy := d[0], d[1]
		for s := 1; ; s++ {
			x, y := x0+dx*s, y0+dy*s
			if x < 0 || x >= 8 || y < 0 || y >= 8 {
				break
			}
			cur := uint(8*y + x)
			if b.Opp&(1<<cur) != 0 {
				continue
			}
			if b.Me&(1<<cur) != 0 && s >= 2 {
				for p := 1; p < s; p++ {
					flipped |= 1 << uint(move+p*(8*dy+dx))
				}
			}
			break
		}
	}

	mover := b.Me | flipped | 1<<uint(move)
	return Board{
		Me:   b.Opp &^ mover,
		Opp:  mover,
		Turn: b.Turn.Opponent(),
	}, nil
}

// Children returns the boards reachable by one legal move, ordered by field.
func (b Board) Children() []Board {
	var out []Board
	for _, m := range MoveIndexes(b.Moves()) {
		child, _ := b.DoMove(m)
		out = append(out, child)
	}
	return out
}

// ChildMap maps each legal move to the resulting board.
func (b Board) ChildMap() map[int]Board {
	out := make(map[int]Board)
	for _, m := range MoveIndexes(b.Moves()) {
		child, _ := b.DoMove(m)
		out[m] = child
	}
	return out
}

// MoveOf returns the move that leads from b to child, or false.
func (b Board) MoveOf(child Board) (int, bool) {
	for m, c := range b.ChildMap() {
		if c == child {
			return m, true
		}
	}
	return 0, false
}

// MoveIndexes lists the set bits of a move bitset in ascending order.
func MoveIndexes(moves uint64) []int {
	out := make([]int, 0, bits.OnesCount64(moves))
	for moves != 0 {
		i := bits.TrailingZeros64(moves)
		out = append(out, i)
		moves &= moves - 1
	}
	return out
}

// Fields returns the content of all 64 fields, marking legal moves.
func (b Board) Fields() [fullBoard]Field {
	var out [fullBoard]Field
	moves := b.Moves()
	black, white := b.Black(), b.White()
	for i := 0; i < fullBoard; i++ {
		bit := uint64(1) << uint(i)
		switch {
		case black&bit != 0:
			out[i] = FieldBlack
		case white&bit != 0:
			out[i] = FieldWhite
		case moves&bit != 0:
			out[i] = FieldMove
		}
	}
	return out
}

// Normalized returns the symmetric variant with the smallest (Me, Opp) pair
// and the rotation that produced it.
func (b Board) Normalized() (Board, int) {
	best, bestRotation := b, 0
	for r := 1; r < 8; r++ {
		c := Board{Me: Rotate(b.Me, r), Opp: Rotate(b.Opp, r), Turn: b.Turn}
		if c.Me < best.Me || (c.Me == best.Me && c.Opp < best.Opp) {
			best, bestRotation = c, r
		}
	}
	return best, bestRotation
}

// Denormalized undoes the rotation returned by Normalized.
func (b Board) Denormalized(rotation int) Board {
	return Board{Me: Unrotate(b.Me, rotation), Opp: Unrotate(b.Opp, rotation), Turn: b.Turn}
}

func (b Board) NormalizedID() string {
	n, _ := b.Normalized()
	return n.ID()
}

// DenormalizeChild finds the child of b whose normalized form equals the
// given normalized child.
func (b Board) DenormalizeChild(normalized Board) (Board, int, bool) {
	target := normalized.ID()
	for _, m := range MoveIndexes(b.Moves()) {
		child, _ := b.DoMove(m)
		if child.NormalizedID() == target {
			return child, m, true
		}
	}
	return Board{}, 0, false
}

// RandomXOT plays 8 random legal moves from the starting position. A nil rng
// uses the package-level source.
func RandomXOT(rng *rand.Rand) Board {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for {
		b := New()
		ok := true
		for i := 0; i < xotMoves; i++ {
			moves := MoveIndexes(b.Moves())
			if len(moves) == 0 {
				ok = false
				break
			}
			b, _ = b.DoMove(moves[intN(len(moves))])
		}
		if ok {
			return b
		}
	}
}

// FieldToIndex converts "c4" style names to an index. "--" is a pass.
func FieldToIndex(field string) (int, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if len(field) != 2 {
		return 0, fmt.Errorf("invalid field %q", field)
	}
	if field == "--" {
		return MovePass, nil
	}
	x := int(field[0]) - 'a'
	y := int(field[1]) - '1'
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return 0, fmt.Errorf("invalid field %q", field)
	}
	return 8*y + x, nil
}

// IndexToField is the inverse of FieldToIndex.
func IndexToField(index int) string {
	if index == MovePass {
		return "--"
	}
	if index < 0 || index >= fullBoard {
		return "??"
	}
	return string([]byte{"abcdefgh"[index%8], "12345678"[index/8]})
}

// Show writes an ASCII rendering with legal moves marked by dots.
func (b Board) Show(w io.Writer) {
	moves := b.Moves()
	black, white := b.Black(), b.White()
	fmt.Fprintln(w, "+-a-b-c-d-e-f-g-h-+")
	for y := 0; y < 8; y++ {
		fmt.Fprintf(w, "%d ", y+1)
		for x := 0; x < 8; x++ {
			mask := uint64(1) << uint(y*8+x)
			switch {
			case black&mask != 0:
				fmt.Fprint(w, "○ ")
			case white&mask != 0:
				fmt.Fprint(w, "● ")
			case moves&mask != 0:
				fmt.Fprint(w, "· ")
			default:
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprintln(w, "|")
	}
	fmt.Fprintln(w, "+-----------------+")
}
