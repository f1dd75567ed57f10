// Package trainer drives the board view: free play, bot moves and opening
// drills, with one outstanding board fetch at a time.
package trainer

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/gateway"
	"github.com/park285/othello-trainer/internal/hittest"
	"github.com/park285/othello-trainer/internal/othello"
	"github.com/park285/othello-trainer/internal/telemetry"
)

var (
	ErrBusy       = errors.New("a board fetch is still pending")
	ErrNoPosition = errors.New("no position loaded")
	ErrNotInGame  = errors.New("only available in game mode")
)

// maxPassFollow bounds automatic passes; two passes in a row end the game.
const maxPassFollow = 2

// View is what a client renders after an operation.
type View struct {
	Position *gateway.Position `json:"position,omitempty"`
	Mode     string            `json:"mode"`
	Mistakes []int             `json:"mistakes,omitempty"`
	Summary  *drill.Summary    `json:"summary,omitempty"`
	Outcome  string            `json:"outcome,omitempty"`
	Mastered bool              `json:"mastered,omitempty"`
	Complete bool              `json:"complete,omitempty"`
}

type Option func(*Controller)

func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller owns the mode, the displayed position and the drill session.
// Calls made while a fetch is outstanding fail with ErrBusy.
type Controller struct {
	gw     gateway.Gateway
	rng    *rand.Rand
	logger *zap.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	pending bool
	mode    Mode
	pos     *gateway.Position
	retryID string
	outcome *drill.Outcome
}

func New(gw gateway.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:     gw,
		logger: zap.NewNop(),
		tracer: telemetry.Tracer("trainer"),
		mode:   GameMode{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// NewGame leaves training and shows the initial position.
func (c *Controller) NewGame(ctx context.Context) (View, error) {
	return c.reset(ctx, othello.IDInitial)
}

// AlternateOpening leaves training and shows a random XOT position.
func (c *Controller) AlternateOpening(ctx context.Context) (View, error) {
	return c.reset(ctx, othello.IDXOT)
}

func (c *Controller) reset(ctx context.Context, id string) (View, error) {
	c.mu.Lock()
	if c.pending {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	c.pending = true
	c.mode = GameMode{}
	c.outcome = nil
	c.mu.Unlock()
	return c.finish(ctx, id, true)
}

// EnterTraining fetches the lines for color (empty for both) and starts a
// session. With no lines the mode is left unchanged and ErrEmptySession is
// returned.
func (c *Controller) EnterTraining(ctx context.Context, color string) (View, error) {
	c.mu.Lock()
	if c.pending {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	c.pending = true
	c.mu.Unlock()

	lines, err := c.gw.Openings(ctx, color)
	if err == nil {
		var s *drill.Session
		if s, err = drill.Start(lines, c.rng); err == nil {
			c.mu.Lock()
			c.mode = TrainingMode{Session: s, Color: color}
			c.outcome = nil
			c.mu.Unlock()
			c.logger.Info("training_start", zap.String("color", color), zap.Int("openings", s.Total()))
			return c.finish(ctx, s.CurrentStep().Board, false)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	c.logger.Warn("training_start_failed", zap.String("color", color), zap.Error(err))
	return c.viewLocked(), err
}

// Click hit-tests p against the rendered board and selects the field.
func (c *Controller) Click(ctx context.Context, p hittest.Point, b hittest.Bounds) (View, error) {
	return c.Select(ctx, hittest.FieldAt(p, b))
}

// Select plays field in game mode or resolves it as a drill attempt in
// training mode. Fields that are not legal moves are ignored. When the last
// fetch failed as unavailable, Select retries it instead.
func (c *Controller) Select(ctx context.Context, field int) (View, error) {
	ctx, span := c.tracer.Start(ctx, "trainer.click")
	span.SetAttributes(attribute.Int("field", field))
	defer span.End()

	c.mu.Lock()
	if c.pending {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	_, training := c.mode.(TrainingMode)
	if c.retryID != "" {
		id := c.retryID
		c.outcome = nil
		c.pending = true
		c.mu.Unlock()
		c.logger.Debug("board_fetch_retry", zap.String("id", id))
		return c.finish(ctx, id, !training)
	}
	if c.pos == nil {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrNoPosition
	}
	next, ok := c.pos.Child(field)
	if !ok {
		c.outcome = nil
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}

	if m, isTraining := c.mode.(TrainingMode); isTraining {
		if m.Session.Done() {
			v := c.viewLocked()
			c.mu.Unlock()
			return v, nil
		}
		out := m.Session.RecordAttempt(field)
		c.outcome = &out
		span.SetAttributes(attribute.String("outcome", out.Kind.String()))
		c.logger.Debug("drill_attempt",
			zap.Int("field", field),
			zap.String("outcome", out.Kind.String()),
			zap.Bool("mastered", out.Mastered),
			zap.Int("remaining", m.Session.Remaining()),
		)
		if out.Kind != drill.Advance {
			v := c.viewLocked()
			c.mu.Unlock()
			return v, nil
		}
		next = out.Board
	}

	c.pending = true
	c.mu.Unlock()
	return c.finish(ctx, next, !training)
}

// BotMove lets the bot play the displayed position.
func (c *Controller) BotMove(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.pending {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	if _, ok := c.mode.(GameMode); !ok {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrNotInGame
	}
	if c.pos == nil || c.retryID != "" {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrNoPosition
	}
	id := c.pos.ID
	c.pending = true
	c.mu.Unlock()

	reply, err := c.gw.BotMove(ctx, id)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.pending = false
		return c.viewLocked(), err
	}
	return c.finish(ctx, reply.ID, true)
}

// finish performs the single awaited fetch and applies its result.
func (c *Controller) finish(ctx context.Context, id string, followPass bool) (View, error) {
	pos, err := c.fetch(ctx, id, followPass)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err != nil {
		c.pos = nil
		if errors.Is(err, gateway.ErrUnavailable) {
			c.retryID = id
		} else {
			c.retryID = ""
		}
		c.logger.Warn("board_fetch_failed", zap.String("id", id), zap.Error(err))
		return c.viewLocked(), err
	}
	c.pos = pos
	c.retryID = ""
	return c.viewLocked(), nil
}

func (c *Controller) fetch(ctx context.Context, id string, followPass bool) (*gateway.Position, error) {
	pos, err := c.gw.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := 0; followPass && i < maxPassFollow && len(pos.Children) == 0 && pos.Pass != ""; i++ {
		if pos, err = c.gw.Fetch(ctx, pos.Pass); err != nil {
			return nil, err
		}
	}
	return pos, nil
}

func (c *Controller) viewLocked() View {
	v := View{Position: c.pos, Mode: c.mode.Name()}
	m, ok := c.mode.(TrainingMode)
	if !ok {
		return v
	}
	sum := m.Session.Summary()
	v.Summary = &sum
	v.Mistakes = m.Session.Mistakes()
	v.Complete = m.Session.Done()
	if c.outcome != nil {
		v.Outcome = c.outcome.Kind.String()
		v.Mastered = c.outcome.Mastered
	}
	return v
}
