package trainer

import "github.com/park285/othello-trainer/internal/drill"

// Mode is either GameMode or TrainingMode.
type Mode interface {
	Name() string
	isMode()
}

// GameMode is free play: any legal move is followed.
type GameMode struct{}

func (GameMode) Name() string { return "game" }
func (GameMode) isMode()      {}

// TrainingMode drills a session of opening lines.
type TrainingMode struct {
	Session *drill.Session
	Color   string
}

func (TrainingMode) Name() string { return "training" }
func (TrainingMode) isMode()      {}
