// Package drill holds the opening drill state: a shuffled queue of opening
// lines, per-line progress and mistake tracking.
package drill

import (
	"errors"
	"math/rand/v2"
	"slices"
)

var ErrEmptySession = errors.New("no openings to train")

// Step is one ply of an opening: the position to show and the correct field.
type Step struct {
	Board     string `json:"board"`
	BestChild int    `json:"best_child"`
}

// Opening is a non-empty sequence of steps.
type Opening []Step

// Session is the mutable state of one training run. It is not safe for
// concurrent use; the owner serialises calls.
type Session struct {
	queue    []Opening
	opening  int
	step     int
	mistakes map[int]struct{}
	flawless bool
	total    int
}

// Start shuffles a copy of openings and returns a fresh session. A nil rng
// uses the package-level source.
func Start(openings []Opening, rng *rand.Rand) (*Session, error) {
	if len(openings) == 0 {
		return nil, ErrEmptySession
	}
	for _, o := range openings {
		if len(o) == 0 {
			return nil, ErrEmptySession
		}
	}
	queue := slices.Clone(openings)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(queue) - 1; i > 0; i-- {
		j := intN(i + 1)
		queue[i], queue[j] = queue[j], queue[i]
	}
	return &Session{
		queue:    queue,
		mistakes: make(map[int]struct{}),
		flawless: true,
		total:    len(openings),
	}, nil
}

// CurrentStep panics when the queue is empty.
func (s *Session) CurrentStep() Step {
	if len(s.queue) == 0 {
		panic("drill: current step of an empty session")
	}
	return s.queue[s.opening][s.step]
}

func (s *Session) Remaining() int { return len(s.queue) }

func (s *Session) Completed() int { return s.total - len(s.queue) }

func (s *Session) Total() int { return s.total }

func (s *Session) Done() bool { return len(s.queue) == 0 }

func (s *Session) Flawless() bool { return s.flawless }

// Cursor returns the opening and step cursors.
func (s *Session) Cursor() (opening, step int) { return s.opening, s.step }

// Mistakes returns the fields flagged wrong for the current step, ascending.
func (s *Session) Mistakes() []int {
	out := make([]int, 0, len(s.mistakes))
	for f := range s.mistakes {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Queue returns a copy of the openings still to be mastered, in order.
func (s *Session) Queue() []Opening {
	return slices.Clone(s.queue)
}

func (s *Session) resetAttempt() {
	clear(s.mistakes)
}
