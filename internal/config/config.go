// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

// MTProtoConfig configures the user-client that performs the actual
// relocation (history reads need MTProto, not the Bot API).
type MTProtoConfig struct {
	AppID       int    `yaml:"app_id"`
	AppHash     string `yaml:"app_hash"`
	SessionFile string `yaml:"session_file"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port      int    `yaml:"port"`
	APISecret string `yaml:"api_secret"` // HMAC secret for the ops API
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ForwardConfig tunes the relocation engine.
type ForwardConfig struct {
	HistoryLimit int           `yaml:"history_limit"` // "all" mode scan ceiling
	Throttle     time.Duration `yaml:"throttle"`      // delay after every relocation call
	RunWorkers   int           `yaml:"run_workers"`   // concurrent forward runs
	StateBackend string        `yaml:"state_backend"` // memory | redis
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	MTProto  MTProtoConfig  `yaml:"mtproto"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Forward  ForwardConfig  `yaml:"forward"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Forward.HistoryLimit <= 0 {
		cfg.Forward.HistoryLimit = 1000
	}
	if cfg.Forward.Throttle <= 0 {
		cfg.Forward.Throttle = 500 * time.Millisecond
	}
	if cfg.Forward.RunWorkers <= 0 {
		cfg.Forward.RunWorkers = 4
	}
	if cfg.Forward.StateBackend == "" {
		cfg.Forward.StateBackend = "memory"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.MTProto.SessionFile == "" {
		cfg.MTProto.SessionFile = "session.dat"
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.MTProto.AppID == 0 || cfg.MTProto.AppHash == "" {
		return nil, errors.New("mtproto.app_id and mtproto.app_hash are required")
	}
	if cfg.Forward.StateBackend == "redis" && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required when forward.state_backend is redis")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
