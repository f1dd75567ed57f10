package config

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func clearEnv(t *testing.T) {
    t.Helper()
    for _, k := range []string{"LISTEN_ADDR", "BOARD_API_URL", "REDIS_URL", "DATABASE_URL", "OPENINGS_FILE", "OPENINGS_CACHE_TTL", "BOT_DEPTH", "HTTP_TIMEOUT", "MESSAGES_DIR", "ALLOWED_ORIGINS"} {
        t.Setenv(k, "")
    }
}

func TestLoadDefaults(t *testing.T) {
    clearEnv(t)
    t.Chdir(t.TempDir())
    cfg, err := Load()
    if err != nil { t.Fatalf("Load: %v", err) }
    if cfg.ListenAddr != ":5000" || cfg.BoardAPIURL != "http://127.0.0.1:5000" { t.Fatalf("cfg = %+v", cfg) }
    if cfg.BotDepth != 4 || cfg.HTTPTimeout != 10*time.Second || cfg.OpeningsCacheTTL != 600*time.Second { t.Fatalf("cfg = %+v", cfg) }
    if !strings.HasSuffix(cfg.OpeningsFile, filepath.Join("othello-trainer", "openings.json")) { t.Fatalf("openings file = %s", cfg.OpeningsFile) }
    if err := cfg.ValidateDatabase(); err == nil { t.Fatalf("expected DATABASE_URL error") }
    if err := cfg.ValidateServer(); err != nil { t.Fatalf("ValidateServer: %v", err) }
}

func TestLoadEnvOverrides(t *testing.T) {
    clearEnv(t)
    t.Setenv("LISTEN_ADDR", ":8080")
    t.Setenv("BOARD_API_URL", "http://board:9000/")
    t.Setenv("BOT_DEPTH", "6")
    t.Setenv("HTTP_TIMEOUT", "3")
    t.Setenv("OPENINGS_CACHE_TTL", "-1")
    t.Setenv("ALLOWED_ORIGINS", "localhost:*, ,example.com")
    cfg, err := LoadFiles()
    if err != nil { t.Fatalf("LoadFiles: %v", err) }
    if cfg.ListenAddr != ":8080" || cfg.BoardAPIURL != "http://board:9000" { t.Fatalf("cfg = %+v", cfg) }
    if cfg.BotDepth != 6 || cfg.HTTPTimeout != 3*time.Second { t.Fatalf("cfg = %+v", cfg) }
    if cfg.OpeningsCacheTTL != 600*time.Second { t.Fatalf("invalid ttl accepted: %v", cfg.OpeningsCacheTTL) }
    if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "example.com" { t.Fatalf("origins = %v", cfg.AllowedOrigins) }
}

func TestLoadDotenvFile(t *testing.T) {
    clearEnv(t)
    os.Unsetenv("DATABASE_URL")
    dir := t.TempDir()
    env := filepath.Join(dir, "test.env")
    if err := os.WriteFile(env, []byte("DATABASE_URL=postgres://localhost/othello\nBOT_DEPTH=2\n"), 0o644); err != nil { t.Fatalf("write: %v", err) }
    os.Unsetenv("BOT_DEPTH")
    t.Cleanup(func() { os.Unsetenv("DATABASE_URL"); os.Unsetenv("BOT_DEPTH") })
    cfg, err := LoadFiles(env, filepath.Join(dir, "missing.env"))
    if err != nil { t.Fatalf("LoadFiles: %v", err) }
    if cfg.DatabaseURL != "postgres://localhost/othello" || cfg.BotDepth != 2 { t.Fatalf("cfg = %+v", cfg) }
    if err := cfg.ValidateDatabase(); err != nil { t.Fatalf("ValidateDatabase: %v", err) }
}

func TestOpeningsFileInWorkingDir(t *testing.T) {
    clearEnv(t)
    dir := t.TempDir()
    t.Chdir(dir)
    if err := os.WriteFile("openings.json", []byte(`{"openings":{}}`), 0o644); err != nil { t.Fatalf("write: %v", err) }
    cfg, err := LoadFiles()
    if err != nil { t.Fatalf("LoadFiles: %v", err) }
    if cfg.OpeningsFile != "openings.json" { t.Fatalf("openings file = %s", cfg.OpeningsFile) }
}
