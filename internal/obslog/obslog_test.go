package obslog

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "go.uber.org/zap/zapcore"
)

func TestInitFromEnvWritesFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "test.log")
    t.Setenv("LOG_TO_CONSOLE", "false")
    t.Setenv("LOG_TO_FILE", "true")
    t.Setenv("LOG_FILE", path)
    t.Setenv("LOG_FORMAT", "json")
    if err := InitFromEnv(); err != nil { t.Fatalf("InitFromEnv: %v", err) }
    L().Info("board_fetch")
    Sync()
    raw, err := os.ReadFile(path)
    if err != nil { t.Fatalf("read log: %v", err) }
    if !strings.Contains(string(raw), `"msg":"board_fetch"`) { t.Fatalf("log = %s", raw) }
}

func TestInitFromEnvNothingEnabled(t *testing.T) {
    t.Setenv("LOG_TO_CONSOLE", "")
    t.Setenv("LOG_TO_FILE", "")
    if err := InitFromEnvWith(Defaults{}); err != nil { t.Fatalf("InitFromEnvWith: %v", err) }
    if L().Core().Enabled(zapcore.ErrorLevel) { t.Fatalf("expected nop logger") }
}

func TestParseLevel(t *testing.T) {
    cases := map[string]zapcore.Level{"debug": zapcore.DebugLevel, "WARNING": zapcore.WarnLevel, "bogus": zapcore.InfoLevel}
    for in, want := range cases {
        if got := parseLevel(in); got != want { t.Fatalf("parseLevel(%q) = %v", in, got) }
    }
}
