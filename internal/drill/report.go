package drill

// Summary is the progress of a session. Total is fixed at start, so Percent
// counts mastered openings rather than queue churn.
type Summary struct {
	Done    int `json:"done"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Summary panics on a session that was never started.
func (s *Session) Summary() Summary {
	if s.total == 0 {
		panic("drill: summary of a session that was not started")
	}
	done := s.Completed()
	return Summary{Done: done, Total: s.total, Percent: 100 * done / s.total}
}
