package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	appName         = "othello-trainer"
	openingsName    = "openings.json"
	defaultListen   = ":5000"
	defaultBoardAPI = "http://127.0.0.1:5000"
)

type AppConfig struct {
	ListenAddr  string
	BoardAPIURL string

	RedisURL    string
	DatabaseURL string

	OpeningsFile     string
	OpeningsCacheTTL time.Duration

	BotDepth    int
	HTTPTimeout time.Duration

	MessagesDir    string
	AllowedOrigins []string
}

// Load reads an optional .env file and then the environment. Variables that
// are already set win over the file.
func Load() (*AppConfig, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(envFiles ...string) (*AppConfig, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, err
		}
	}

	cfg := &AppConfig{
		ListenAddr:       defaultListen,
		BoardAPIURL:      defaultBoardAPI,
		OpeningsCacheTTL: 600 * time.Second,
		BotDepth:         4,
		HTTPTimeout:      10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_API_URL")); v != "" {
		cfg.BoardAPIURL = strings.TrimRight(v, "/")
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	cfg.OpeningsFile = strings.TrimSpace(os.Getenv("OPENINGS_FILE"))
	if cfg.OpeningsFile == "" {
		cfg.OpeningsFile = defaultOpeningsFile()
	}

	if v := strings.TrimSpace(os.Getenv("OPENINGS_CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpeningsCacheTTL = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("BOT_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BotDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, s)
			}
		}
	}

	return cfg, nil
}

// defaultOpeningsFile prefers openings.json in the working directory and
// falls back to the XDG data dir.
func defaultOpeningsFile() string {
	if _, err := os.Stat(openingsName); err == nil {
		return openingsName
	}
	return filepath.Join(xdg.DataHome, appName, openingsName)
}

// ValidateDatabase is for commands that need Postgres.
func (c *AppConfig) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (c *AppConfig) ValidateServer() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.OpeningsFile == "" && c.DatabaseURL == "" {
		return errors.New("OPENINGS_FILE or DATABASE_URL is required")
	}
	return nil
}
