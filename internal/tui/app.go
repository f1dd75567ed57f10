package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/hittest"
	"github.com/park285/othello-trainer/internal/msgcat"
	"github.com/park285/othello-trainer/internal/trainer"
)

var styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite)
var styleError = tcell.StyleDefault.Foreground(tcell.ColorRed)

// Driver is the board state machine behind the screen: a local
// trainer.Controller or a remote websocket session.
type Driver interface {
	NewGame(ctx context.Context) (trainer.View, error)
	AlternateOpening(ctx context.Context) (trainer.View, error)
	EnterTraining(ctx context.Context, color string) (trainer.View, error)
	Click(ctx context.Context, p hittest.Point, b hittest.Bounds) (trainer.View, error)
	BotMove(ctx context.Context) (trainer.View, error)
}

// result is posted back to the event loop when a controller call returns.
type result struct {
	view trainer.View
	err  error
}

// App runs the event loop. Controller calls run off the loop so the screen
// keeps redrawing; clicks during a call are answered with the busy text.
type App struct {
	screen  *Screen
	ctrl    Driver
	catalog *msgcat.Catalog
	logger  *zap.Logger

	view    trainer.View
	status  string
	failed  bool
	running bool

	spawn func(func())
	copy  func(string) error
}

func New(screen *Screen, ctrl Driver, catalog *msgcat.Catalog, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		screen:  screen,
		ctrl:    ctrl,
		catalog: catalog,
		logger:  logger,
		running: true,
		spawn:   func(f func()) { go f() },
		copy:    clipboard.WriteAll,
	}
}

// Run starts a new game and handles events until the user quits or ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	defer a.screen.Close()
	a.start(ctx, a.ctrl.NewGame)
	for a.running && ctx.Err() == nil {
		a.render()
		a.handle(ctx, a.screen.PollEvent())
	}
	return nil
}

func (a *App) handle(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKey(ctx, ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return
		}
		p, ok := boardPoint(ev.Position())
		if !ok {
			return
		}
		a.start(ctx, func(ctx context.Context) (trainer.View, error) {
			return a.ctrl.Click(ctx, p, boardBounds)
		})
	case *tcell.EventInterrupt:
		if r, ok := ev.Data().(result); ok {
			a.apply(r)
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false
		return
	case tcell.KeyRune:
	default:
		return
	}
	switch ev.Rune() {
	case 'q', 'Q':
		a.running = false
	case 'n':
		a.start(ctx, a.ctrl.NewGame)
	case 'x':
		a.start(ctx, a.ctrl.AlternateOpening)
	case 't':
		a.train(ctx, "")
	case 'k':
		a.train(ctx, "black")
	case 'w':
		a.train(ctx, "white")
	case 'b':
		a.setStatus(a.catalog.Text("game.bot_thinking", nil, "..."), false)
		a.start(ctx, a.ctrl.BotMove)
	case 'c':
		a.copyID()
	}
}

func (a *App) train(ctx context.Context, color string) {
	a.start(ctx, func(ctx context.Context) (trainer.View, error) {
		return a.ctrl.EnterTraining(ctx, color)
	})
}

func (a *App) start(ctx context.Context, op func(context.Context) (trainer.View, error)) {
	a.spawn(func() {
		v, err := op(ctx)
		if perr := a.screen.PostEvent(tcell.NewEventInterrupt(result{view: v, err: err})); perr != nil {
			a.logger.Warn("tui_post_failed", zap.Error(perr))
		}
	})
}

func (a *App) apply(r result) {
	if r.err != nil {
		id := ""
		if r.view.Position != nil {
			id = r.view.Position.ID
		}
		// a busy reply carries a snapshot taken mid-fetch; keep the last view
		if trainer.ErrorCode(r.err) != "busy" {
			a.view = r.view
		}
		a.setStatus(trainer.ErrorText(a.catalog, r.err, id), true)
		return
	}
	a.view = r.view
	a.setStatus(trainer.StatusText(a.catalog, r.view), false)
}

func (a *App) copyID() {
	if a.view.Position == nil {
		return
	}
	id := a.view.Position.ID
	if err := a.copy(id); err != nil {
		a.logger.Debug("clipboard_write_failed", zap.Error(err))
		a.setStatus(a.catalog.Text("tui.copy_failed", nil, err.Error()), true)
		return
	}
	a.setStatus(a.catalog.Text("tui.copied", map[string]any{"ID": id}, id), false)
}

func (a *App) setStatus(msg string, failed bool) {
	a.status, a.failed = msg, failed
}

func (a *App) render() {
	a.screen.Clear()
	drawBoard(a.screen, a.view)
	y := boardY + boardBounds.Height + 1
	style := styleStatus
	if a.failed {
		style = styleError
	}
	a.screen.Text(boardX, int(y), a.status, style)
	a.screen.Text(boardX, int(y)+1, a.catalog.Text("tui.help", nil, ""), styleLabel)
	a.screen.Show()
}
