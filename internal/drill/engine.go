package drill

import "slices"

type OutcomeKind int

const (
	NoChange OutcomeKind = iota
	Mistake
	Advance
	Complete
)

func (k OutcomeKind) String() string {
	switch k {
	case Mistake:
		return "mistake"
	case Advance:
		return "advance"
	case Complete:
		return "complete"
	default:
		return "no_change"
	}
}

// Outcome is the result of one attempt. Board is the position to display
// next: the current one on Mistake, the next step's on Advance, empty on
// Complete and NoChange. Mastered is set when the attempt finished an
// opening without mistakes and removed it from the queue.
type Outcome struct {
	Kind     OutcomeKind
	Mastered bool
	Board    string
	Mistakes []int
	Summary  Summary
}

// RecordAttempt resolves the user's choice of field against the current
// step and updates the session.
func (s *Session) RecordAttempt(field int) Outcome {
	cur := s.CurrentStep()
	if field != cur.BestChild {
		return s.wrong(cur, field)
	}

	opening := s.queue[s.opening]
	if s.step < len(opening)-1 {
		s.step++
		s.resetAttempt()
		return Outcome{Kind: Advance, Board: s.CurrentStep().Board, Summary: s.Summary()}
	}

	mastered := s.flawless
	if mastered {
		s.queue = slices.Delete(s.queue, s.opening, s.opening+1)
		if len(s.queue) == 0 {
			s.opening = 0
		} else {
			s.opening %= len(s.queue)
		}
	} else {
		s.opening = (s.opening + 1) % len(s.queue)
	}
	s.step = 0
	s.flawless = true
	s.resetAttempt()

	out := Outcome{Mastered: mastered, Summary: s.Summary()}
	if len(s.queue) == 0 {
		out.Kind = Complete
		return out
	}
	out.Kind = Advance
	out.Board = s.CurrentStep().Board
	return out
}

func (s *Session) wrong(cur Step, field int) Outcome {
	if _, seen := s.mistakes[field]; seen {
		return Outcome{Kind: NoChange, Mistakes: s.Mistakes(), Summary: s.Summary()}
	}
	s.mistakes[field] = struct{}{}
	s.flawless = false
	return Outcome{Kind: Mistake, Board: cur.Board, Mistakes: s.Mistakes(), Summary: s.Summary()}
}
