package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"tasklist/internal/notify"
	"tasklist/internal/storage"
)

type Config struct {
	StoreDriver string
	StorePath   string
	StoreDSN    string
	StoreSlot   string
	NotifyTTL   time.Duration
	LogLevel    string
	MetricsFile string

	TelegramToken  string
	TelegramChatID int64
}

func defaults() Config {
	return Config{
		StoreDriver: "file",
		StorePath:   "./data",
		StoreSlot:   storage.DefaultSlot,
		NotifyTTL:   notify.DefaultTTL,
		LogLevel:    "info",
	}
}

// Load reads the given dotenv files (".env" when none are named) and then
// the environment. Missing dotenv files are skipped; variables already set
// in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := defaults()
	str(&cfg.StoreDriver, "STORE_DRIVER")
	str(&cfg.StorePath, "STORE_PATH")
	str(&cfg.StoreDSN, "STORE_DSN")
	str(&cfg.StoreSlot, "STORE_SLOT")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.MetricsFile, "METRICS_FILE")
	str(&cfg.TelegramToken, "TELEGRAM_TOKEN")

	if v := os.Getenv("NOTIFY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("NOTIFY_TTL: invalid duration %q", v)
		}
		cfg.NotifyTTL = d
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	switch cfg.StoreDriver {
	case "file", "memory", "sqlite", "mysql", "postgres":
	default:
		return Config{}, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, cfg.StoreDriver)
	}
	if (cfg.StoreDriver == "mysql" || cfg.StoreDriver == "postgres") && cfg.StoreDSN == "" {
		return Config{}, fmt.Errorf("STORE_DSN must be set for driver %s", cfg.StoreDriver)
	}
	return cfg, nil
}

// OpenStore opens the configured backend.
func (c Config) OpenStore() (*storage.Store, error) {
	return storage.Open(c.StoreDriver, c.StorePath, c.StoreDSN, c.StoreSlot)
}

func str(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
