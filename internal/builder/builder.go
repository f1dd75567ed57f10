// Package builder wires the openings source, cache, bot and message catalog
// from the application config.
package builder

import (
    "context"
    "fmt"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/park285/othello-trainer/internal/config"
    "github.com/park285/othello-trainer/internal/msgcat"
    "github.com/park285/othello-trainer/internal/openings"
    "github.com/park285/othello-trainer/internal/othello/bot"
)

type Deps struct {
    Source  openings.Source
    Lines   *openings.CachedSource
    Repo    *openings.Repository // nil without DATABASE_URL
    Redis   *redis.Client        // nil without REDIS_URL
    Bot     *bot.Bot
    Catalog *msgcat.Catalog
}

// New opens the openings store: Postgres when DATABASE_URL is set, the JSON
// file otherwise. Redis is optional and only caches drill lines.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    cat, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        return nil, fmt.Errorf("load messages: %w", err)
    }
    d := &Deps{Bot: bot.New(cfg.BotDepth), Catalog: cat}

    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        repo, err := openings.NewRepository(cfg.DatabaseURL)
        if err != nil {
            return nil, fmt.Errorf("init repository: %w", err)
        }
        if err := repo.EnsureSchema(ctx); err != nil {
            _ = repo.Close()
            return nil, fmt.Errorf("ensure schema: %w", err)
        }
        d.Repo, d.Source = repo, repo
        logger.Info("openings_source", zap.String("kind", "postgres"))
    } else {
        d.Source = openings.NewFileSource(cfg.OpeningsFile)
        logger.Info("openings_source", zap.String("kind", "file"), zap.String("path", cfg.OpeningsFile))
    }

    if strings.TrimSpace(cfg.RedisURL) != "" {
        opts, err := parseRedisURL(cfg.RedisURL)
        if err != nil {
            d.Close()
            return nil, fmt.Errorf("parse redis url: %w", err)
        }
        rdb := redis.NewClient(opts)
        pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
        defer cancel()
        if err := rdb.Ping(pctx).Err(); err != nil {
            _ = rdb.Close()
            d.Close()
            return nil, fmt.Errorf("redis ping: %w", err)
        }
        d.Redis = rdb
    }
    d.Lines = openings.NewCachedSource(d.Source, d.Redis, cfg.OpeningsCacheTTL, logger)
    return d, nil
}

func (d *Deps) Close() {
    if d == nil { return }
    if d.Redis != nil { _ = d.Redis.Close() }
    if d.Repo != nil { _ = d.Repo.Close() }
}

func parseRedisURL(raw string) (*redis.Options, error) {
    u, err := url.Parse(raw)
    if err != nil { return nil, err }
    if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
    db := 0
    if p := strings.TrimPrefix(u.Path, "/"); p != "" { if n, err := strconv.Atoi(p); err == nil { db = n } }
    pass, _ := u.User.Password()
    return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
