package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/archnets/learn-miniapp/internal/env"
)

// ErrMissing is returned when a required setting is absent.
var ErrMissing = errors.New("missing required config")

type Config struct {
	APIBaseURL string
	BotToken   string
	// URL of the Mini App frontend opened from the bot
	WebAppURL string
	// Raw Telegram init data forwarded by the host, if any
	InitData string

	DataDir   string
	RedisAddr string
	LogLevel  string

	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// OS color scheme reported by the host ("light" or "dark")
	ColorScheme string
}

// Load reads configuration from the environment. API_BASE_URL has no
// default: a missing value fails startup.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL: strings.TrimRight(env.GetString("API_BASE_URL", ""), "/"),
		BotToken:   env.GetString("TELEGRAM_BOT_TOKEN", ""),
		WebAppURL:  env.GetString("WEBAPP_URL", ""),
		InitData:   env.GetString("TELEGRAM_INIT_DATA", ""),

		DataDir:   env.GetString("DATA_DIR", ".miniapp"),
		RedisAddr: env.GetString("REDIS_ADDR", ""),
		LogLevel:  env.GetString("LOG_LEVEL", "INFO"),

		RequestTimeout: env.GetMillis("API_TIMEOUT_MS", 15*time.Second),
		MaxRetries:     env.GetInt("API_MAX_RETRIES", 3),
		RetryDelay:     env.GetMillis("API_RETRY_DELAY_MS", time.Second),

		ColorScheme: env.GetString("COLOR_SCHEME", "light"),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("%w: API_BASE_URL", ErrMissing)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return cfg, nil
}

// RequireBotToken fails when the bot token is not configured.
func (c Config) RequireBotToken() error {
	if c.BotToken == "" {
		return fmt.Errorf("%w: TELEGRAM_BOT_TOKEN", ErrMissing)
	}
	return nil
}
