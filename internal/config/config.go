package config

import (
	"ctchen222/tictactoe-bot/internal/validator"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr" validate:"required"`
}

type Redis struct {
	// ConnString is a host:port or redis:// URL. Empty keeps games in memory.
	ConnString string `yaml:"conn_string"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint" validate:"required_if=Enabled true"`
	StdoutTraces bool   `yaml:"stdout_traces"`
	ServiceName  string `yaml:"service_name" validate:"required"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type Bot struct {
	Algorithm   string        `yaml:"algorithm" validate:"oneof=minimax alphabeta"`
	Depth       int           `yaml:"depth" validate:"min=1,max=9"`
	Difficulty  string        `yaml:"difficulty" validate:"oneof=easy medium hard"`
	ThinkDelay  time.Duration `yaml:"think_delay" validate:"min=0"`
	MoveTimeout time.Duration `yaml:"move_timeout" validate:"gt=0"`
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
	Log       Log       `yaml:"log"`
	Bot       Bot       `yaml:"bot"`
}

// Default returns the configuration used when no file or environment is given.
func Default() *Config {
	return &Config{
		HTTP:      HTTP{Addr: ":8080"},
		Telemetry: Telemetry{ServiceName: "tictactoe-bot"},
		Log:       Log{Level: "info"},
		Bot: Bot{
			Algorithm:   "alphabeta",
			Depth:       2,
			Difficulty:  "hard",
			ThinkDelay:  time.Second,
			MoveTimeout: 30 * time.Second,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) over the
// defaults, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("HTTP_ADDR"); ok {
		c.HTTP.Addr = v
	}
	if v, ok := lookup("REDIS_CONNSTRING"); ok {
		c.Redis.ConnString = v
	}
	if v, ok := lookup("OTEL_EXPORTER_OTLP_ENDPOINT"); ok && v != "" {
		c.Telemetry.Enabled = true
		c.Telemetry.Endpoint = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("BOT_ALGORITHM"); ok {
		c.Bot.Algorithm = v
	}
	if v, ok := lookup("BOT_DEPTH"); ok {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOT_DEPTH: %w", err)
		}
		c.Bot.Depth = depth
	}
	if v, ok := lookup("BOT_THINK_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOT_THINK_DELAY: %w", err)
		}
		c.Bot.ThinkDelay = d
	}
	return nil
}

// SlogLevel maps Log.Level onto slog. Load has already rejected unknown names.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
