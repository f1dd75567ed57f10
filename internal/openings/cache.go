package openings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/othello"
)

const defaultCacheTTL = 10 * time.Minute

// CachedSource serves drill lines from Redis and falls back to the wrapped
// source on a miss. A nil Redis client disables caching.
type CachedSource struct {
	src    Source
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(src Source, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{src: src, rdb: rdb, ttl: ttl, logger: logger}
}

func keyLines(color othello.Color) string { return "othello:openings:lines:" + color.String() }

func (c *CachedSource) Tree(ctx context.Context) (*Tree, error) { return c.src.Tree(ctx) }

// Upsert writes through and drops the cached lines of both colors.
func (c *CachedSource) Upsert(ctx context.Context, board, bestChild othello.Board) error {
	if err := c.src.Upsert(ctx, board, bestChild); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *CachedSource) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, keyLines(othello.Black), keyLines(othello.White)).Err(); err != nil {
		c.logger.Warn("openings_cache_invalidate_failed", zap.Error(err))
	}
}

// Lines returns the drill lines for color. Cache errors are logged and the
// lines are rebuilt from the source.
func (c *CachedSource) Lines(ctx context.Context, color othello.Color) ([]drill.Opening, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, keyLines(color)).Bytes()
		switch {
		case err == nil:
			var lines []drill.Opening
			if err := json.Unmarshal(raw, &lines); err == nil {
				return lines, nil
			}
			c.logger.Warn("openings_cache_corrupt", zap.String("color", color.String()))
		case err != redis.Nil:
			c.logger.Warn("openings_cache_get_failed", zap.Error(err))
		}
	}

	t, err := c.src.Tree(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := t.Lines(color)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		raw, err := json.Marshal(lines)
		if err == nil {
			err = c.rdb.Set(ctx, keyLines(color), raw, c.ttl).Err()
		}
		if err != nil {
			c.logger.Warn("openings_cache_set_failed", zap.Error(err))
		}
	}
	return lines, nil
}

// AllLines returns black lines followed by white lines.
func (c *CachedSource) AllLines(ctx context.Context) ([]drill.Opening, error) {
	black, err := c.Lines(ctx, othello.Black)
	if err != nil {
		return nil, err
	}
	white, err := c.Lines(ctx, othello.White)
	if err != nil {
		return nil, err
	}
	return append(black, white...), nil
}
