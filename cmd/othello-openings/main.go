package main

import (
    "log"
    "os"

    "github.com/park285/othello-trainer/internal/cli"
    "github.com/park285/othello-trainer/internal/obslog"
)

func main() {
    if err := obslog.InitFromEnvWith(obslog.Defaults{Console: false}); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer obslog.Sync()

    root := cli.Root()
    root.SetArgs(os.Args[1:])
    if err := root.Execute(); err != nil {
        log.Fatal(err)
    }
}
