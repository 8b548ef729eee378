package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendSQLite = "sqlite"
	BackendGorm   = "gorm"
	BackendHTTP   = "http"
)

type Config struct {
	Backend   string `json:"backend" env:"TASKDECK_BACKEND" env-default:"sqlite"`
	Dir       string `json:"dir,omitempty" env:"TASKDECK_DIR"`
	GormDSN   string `json:"gormDSN,omitempty" env:"TASKDECK_GORM_DSN"`
	RemoteURL string `json:"remoteURL" env:"TASKDECK_REMOTE_URL" env-default:"http://127.0.0.1:8080"`
	Listen    string `json:"listen" env:"TASKDECK_LISTEN" env-default:":8080"`

	Log       LogConfig       `json:"log"`
	Simulate  SimulateConfig  `json:"simulate"`
	Reminders RemindersConfig `json:"reminders"`
	Telegram  TelegramConfig  `json:"telegram"`
}

type LogConfig struct {
	Level  string `json:"level" env:"TASKDECK_LOG_LEVEL" env-default:"info"`
	Format string `json:"format" env:"TASKDECK_LOG_FORMAT" env-default:"json"`
	// File receives logs instead of stderr (the TUI owns the terminal).
	File string `json:"file,omitempty" env:"TASKDECK_LOG_FILE"`
}

// SimulateConfig wraps the backend in remote.Flaky when either field is set.
type SimulateConfig struct {
	Latency     Duration `json:"latency,omitempty" env:"TASKDECK_SIMULATE_LATENCY"`
	FailureRate float64  `json:"failureRate,omitempty" env:"TASKDECK_SIMULATE_FAILURE_RATE"`
	Seed        int64    `json:"seed,omitempty" env:"TASKDECK_SIMULATE_SEED"`
}

func (s SimulateConfig) Enabled() bool {
	return s.Latency > 0 || s.FailureRate > 0
}

type RemindersConfig struct {
	Interval Duration `json:"interval" env:"TASKDECK_REMINDERS_INTERVAL" env-default:"1m"`
	Resync   Duration `json:"resync" env:"TASKDECK_RESYNC_INTERVAL" env-default:"30s"`
}

type TelegramConfig struct {
	Token  string `json:"token,omitempty" env:"TASKDECK_TELEGRAM_TOKEN"`
	ChatID int64  `json:"chatID,omitempty" env:"TASKDECK_TELEGRAM_CHAT_ID"`
}

func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.Token) != "" && t.ChatID != 0
}

// ConfigDir is ~/.taskdeck unless TASKDECK_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file at path (ConfigPath when empty; a missing file is
// fine) and overlays TASKDECK_* environment variables.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := new(Config)
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	default:
		return nil, statErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendGorm, BackendHTTP:
	default:
		return fmt.Errorf("unknown backend %q (expected sqlite, gorm or http)", c.Backend)
	}
	if c.Simulate.FailureRate < 0 || c.Simulate.FailureRate > 1 {
		return fmt.Errorf("simulate.failureRate must be within [0,1], got %v", c.Simulate.FailureRate)
	}
	if c.Simulate.Latency < 0 {
		return errors.New("simulate.latency must not be negative")
	}
	if c.Backend == BackendHTTP && strings.TrimSpace(c.RemoteURL) == "" {
		return errors.New("remoteURL is required for the http backend")
	}
	return nil
}

// Usage describes every environment variable.
func Usage() (string, error) {
	return cleanenv.GetDescription(new(Config), nil)
}

// Duration is a time.Duration written as "30s" in files and the environment.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}
