// Package tui is the terminal client: a mouse driven board with a status
// line, backed by a trainer controller.
package tui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with the calls the client needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes the terminal screen with mouse input.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newScreen(s)
}

func newScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.EnableMouse()
	s.Clear()
	return &Screen{screen: s}, nil
}

func (s *Screen) Close() { s.screen.Fini() }

func (s *Screen) PollEvent() tcell.Event { return s.screen.PollEvent() }

// PostEvent queues ev for PollEvent; it is safe to call from any goroutine.
func (s *Screen) PostEvent(ev tcell.Event) error { return s.screen.PostEvent(ev) }

func (s *Screen) Clear() { s.screen.Clear() }

func (s *Screen) Show() { s.screen.Show() }

func (s *Screen) Sync() { s.screen.Sync() }

func (s *Screen) Size() (width, height int) { return s.screen.Size() }

func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// Text writes msg starting at x, y.
func (s *Screen) Text(x, y int, msg string, style tcell.Style) {
	for _, ch := range msg {
		s.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
