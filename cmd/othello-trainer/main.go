package main

import (
    "context"
    "log"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"
    "time"

    "github.com/MakeNowJust/heredoc/v2"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "github.com/park285/othello-trainer/internal/builder"
    appcfg "github.com/park285/othello-trainer/internal/config"
    "github.com/park285/othello-trainer/internal/gateway"
    "github.com/park285/othello-trainer/internal/obslog"
    "github.com/park285/othello-trainer/internal/telemetry"
    "github.com/park285/othello-trainer/internal/trainer"
    "github.com/park285/othello-trainer/internal/tui"
    "github.com/park285/othello-trainer/internal/wsclient"
)

func main() {
    if err := root().Execute(); err != nil {
        log.Fatal(err)
    }
}

func root() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "othello-trainer",
        Short: "Drill Othello openings in the terminal",
        Long: heredoc.Doc(`
            othello-trainer shows a board you can click on. In game mode any
            legal move is played; in training mode each click is checked
            against the openings repertoire.

            By default boards come from the board API at BOARD_API_URL. With
            --local the rules, bot and openings run in process; with --ws the
            whole session runs on the server.
        `),
        Args:          cobra.NoArgs,
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE:          run,
    }
    cmd.Flags().Bool("local", false, "run without a board server")
    cmd.Flags().String("api", "", "board API base URL (overrides BOARD_API_URL)")
    cmd.Flags().String("ws", "", "train on a server session at this websocket URL, e.g. ws://host:5000/ws/train")
    return cmd
}

func run(cmd *cobra.Command, args []string) error {
    cfg, err := appcfg.Load()
    if err != nil {
        return err
    }
    // stdout belongs to the screen
    if err := obslog.InitFromEnvWith(obslog.Defaults{File: true, Path: filepath.Join("logs", "othello-trainer.log")}); err != nil {
        return err
    }
    defer obslog.Sync()
    logger := obslog.L()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    shutdownTracing, err := telemetry.Setup(ctx, "othello-trainer")
    if err != nil {
        return err
    }
    defer func() { _ = shutdownTracing(context.Background()) }()

    deps, err := builder.New(ctx, localConfig(cfg, cmd), logger)
    if err != nil {
        return err
    }
    defer deps.Close()

    driver, closeDriver, err := newDriver(ctx, cmd, cfg, deps, logger)
    if err != nil {
        return err
    }
    defer closeDriver()

    screen, err := tui.NewScreen()
    if err != nil {
        return err
    }
    return tui.New(screen, driver, deps.Catalog, logger).Run(ctx)
}

func newDriver(ctx context.Context, cmd *cobra.Command, cfg *appcfg.AppConfig, deps *builder.Deps, logger *zap.Logger) (tui.Driver, func(), error) {
    if wsURL, _ := cmd.Flags().GetString("ws"); wsURL != "" {
        s := wsclient.NewSession(wsURL, wsclient.WithLogger(logger), wsclient.WithHeaderProvider(clientHeaders))
        s.OnStateChange(func(st wsclient.State) { logger.Info("ws_state", zap.Stringer("state", st)) })
        if err := s.Connect(ctx); err != nil {
            return nil, nil, err
        }
        closeFn := func() {
            cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
            defer cancel()
            _ = s.Close(cctx)
        }
        return wsclient.NewRemote(s), closeFn, nil
    }

    var gw gateway.Gateway
    if local, _ := cmd.Flags().GetBool("local"); local {
        gw = gateway.NewLocal(deps.Lines, deps.Bot)
    } else {
        base := cfg.BoardAPIURL
        if api, _ := cmd.Flags().GetString("api"); api != "" {
            base = api
        }
        gw = gateway.NewClient(base, gateway.WithTimeout(cfg.HTTPTimeout), gateway.WithLogger(logger), gateway.WithHeaderProvider(clientHeaders))
        logger.Info("board_api", zap.String("url", base))
    }
    return trainer.New(gw, trainer.WithLogger(logger)), func() {}, nil
}

func clientHeaders() map[string]string {
    return map[string]string{"User-Agent": "othello-trainer"}
}

// localConfig drops the stores a remote client does not use; the catalog
// and bot are still built from cfg.
func localConfig(cfg *appcfg.AppConfig, cmd *cobra.Command) *appcfg.AppConfig {
    if local, _ := cmd.Flags().GetBool("local"); local {
        return cfg
    }
    c := *cfg
    c.DatabaseURL, c.RedisURL = "", ""
    return &c
}
