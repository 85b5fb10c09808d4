package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Defaults for configuration values.
const (
	DefaultEnvFile       = ".env"
	DefaultContestsPath  = "contests.yaml"
	DefaultStatsPath     = "stats.txt"
	DefaultHistoryDriver = "sqlite3"
	DefaultRetention     = 30 * 24 * time.Hour
	DefaultPollInterval  = 60 * time.Second
	DefaultWorkers       = 4
	DefaultAlertCooldown = 5 * time.Minute
	DefaultLogLevel      = "info"
	DefaultPort          = "8080"
)

// ThresholdVar names the value threshold setting. It is not part of Config:
// the threshold is read again for every contest, see LoadThreshold.
const ThresholdVar = "VALUE_THRESHOLD_PCT"

// Config holds all application configuration.
type Config struct {
	ContestsPath string `env:"CONTESTS_PATH" envDefault:"contests.yaml"`
	StatsPath    string `env:"STATS_PATH" envDefault:"stats.txt"`

	// Flag history; an empty DSN disables it.
	HistoryDriver string `env:"HISTORY_DRIVER" envDefault:"sqlite3"`
	HistoryDSN    string `env:"HISTORY_DSN"`

	// Days of flags kept in watch mode; 0 keeps everything.
	HistoryRetentionDays int `env:"HISTORY_RETENTION_DAYS" envDefault:"30"`

	PollIntervalMS   int `env:"POLL_INTERVAL_MS" envDefault:"60000"`
	Workers          int `env:"WORKERS" envDefault:"4"`
	AlertCooldownSec int `env:"ALERT_COOLDOWN_SEC" envDefault:"300"`

	// Telegram sink, enabled when a token is set.
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     string `env:"PORT" envDefault:"8080"`
}

// PollInterval is the watch-mode re-scan interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// HistoryRetention is how long flags stay in the history database.
func (c Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

// AlertCooldown is the window in which a repeated report is suppressed.
func (c Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSec) * time.Second
}

// Load reads configuration from environment variables (and .env file if present).
func Load() (Config, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that configuration values are within acceptable ranges.
func Validate(cfg Config) error {
	if cfg.ContestsPath == "" {
		return fmt.Errorf("CONTESTS_PATH must not be empty")
	}
	if cfg.StatsPath == "" {
		return fmt.Errorf("STATS_PATH must not be empty")
	}
	if cfg.HistoryDriver != "sqlite3" && cfg.HistoryDriver != "postgres" {
		return fmt.Errorf("HISTORY_DRIVER must be sqlite3 or postgres, got %q", cfg.HistoryDriver)
	}
	if cfg.HistoryRetentionDays < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must be non-negative, got %d", cfg.HistoryRetentionDays)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", cfg.Workers)
	}
	if cfg.PollInterval() < 10*time.Millisecond {
		return fmt.Errorf("POLL_INTERVAL_MS must be at least 10ms, got %v", cfg.PollInterval())
	}
	if cfg.AlertCooldownSec < 0 {
		return fmt.Errorf("ALERT_COOLDOWN_SEC must be non-negative, got %d", cfg.AlertCooldownSec)
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// LoadThreshold reads the integer value threshold in percent. The env file is
// read on every call and takes precedence over the process environment, so
// the threshold can be changed between contests without a restart. A missing
// file is not an error; a missing or non-integer threshold is.
func LoadThreshold(envFile string) (int, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	if fileVars, err := godotenv.Read(envFile); err == nil {
		for k, v := range fileVars {
			environ[k] = v
		}
	}

	var t struct {
		Pct int `env:"VALUE_THRESHOLD_PCT,required,notEmpty"`
	}
	if err := env.ParseWithOptions(&t, env.Options{Environment: environ}); err != nil {
		return 0, fmt.Errorf("value threshold: %w", err)
	}
	return t.Pct, nil
}
