package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "github.com/park285/othello-trainer/internal/builder"
    appcfg "github.com/park285/othello-trainer/internal/config"
    "github.com/park285/othello-trainer/internal/obslog"
    "github.com/park285/othello-trainer/internal/server"
    "github.com/park285/othello-trainer/internal/telemetry"
)

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := cfg.ValidateServer(); err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer obslog.Sync()
    logger := obslog.L()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    shutdownTracing, err := telemetry.Setup(ctx, "othello-server")
    if err != nil {
        logger.Fatal("telemetry_init_failed", zap.Error(err))
    }
    defer func() {
        sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        _ = shutdownTracing(sctx)
    }()

    deps, err := builder.New(ctx, cfg, logger)
    if err != nil {
        logger.Fatal("deps_init_failed", zap.Error(err))
    }
    defer deps.Close()

    srv := server.New(deps.Lines,
        server.WithLogger(logger),
        server.WithCatalog(deps.Catalog),
        server.WithBot(deps.Bot),
        server.WithOriginPatterns(cfg.AllowedOrigins),
    )
    httpSrv := &http.Server{
        Addr:              cfg.ListenAddr,
        Handler:           srv.Handler(),
        ReadHeaderTimeout: 5 * time.Second,
    }

    go func() {
        <-ctx.Done()
        sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if err := httpSrv.Shutdown(sctx); err != nil {
            logger.Warn("server_shutdown_failed", zap.Error(err))
        }
    }()

    logger.Info("listening",
        zap.String("addr", cfg.ListenAddr),
        zap.Bool("redis", deps.Redis != nil),
        zap.Bool("postgres", deps.Repo != nil),
        zap.Bool("tracing", telemetry.Enabled()),
    )
    if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logger.Error("server_error", zap.Error(err))
        os.Exit(1)
    }
    logger.Info("server_stopped", zap.Int64("open_sessions", srv.ActiveSessions()))
}
