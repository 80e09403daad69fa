// Package config loads the rules and server settings for a Seeet process.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML or TOML file (chosen by extension), and SEEET_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/benbenpetit/Seeet/internal/game"
)

// Config is the top-level configuration.
type Config struct {
	Rules  Rules  `yaml:"rules" toml:"rules"`
	Server Server `yaml:"server" toml:"server"`
}

// Rules configures the game engine.
type Rules struct {
	InitialBoardSize int    `yaml:"initial_board_size" toml:"initial_board_size" env:"SEEET_INITIAL_BOARD_SIZE"`
	ReplenishCount   int    `yaml:"replenish_count" toml:"replenish_count" env:"SEEET_REPLENISH_COUNT"`
	MaxBoardSize     int    `yaml:"max_board_size" toml:"max_board_size" env:"SEEET_MAX_BOARD_SIZE"`
	AutoReplenish    bool   `yaml:"auto_replenish" toml:"auto_replenish" env:"SEEET_AUTO_REPLENISH"`
	SuccessDelay     string `yaml:"success_delay" toml:"success_delay" env:"SEEET_SUCCESS_DELAY"` // e.g. "500ms"
	FailDelay        string `yaml:"fail_delay" toml:"fail_delay" env:"SEEET_FAIL_DELAY"`
	Seed             int64  `yaml:"seed" toml:"seed" env:"SEEET_SEED"` // 0 = random
}

// Server configures the network front ends.
type Server struct {
	Port         string  `yaml:"port" toml:"port" env:"SEEET_PORT"`
	Addr         string  `yaml:"addr" toml:"addr" env:"SEEET_ADDR"`
	CommandRate  float64 `yaml:"command_rate" toml:"command_rate" env:"SEEET_COMMAND_RATE"` // commands per second per session
	CommandBurst int     `yaml:"command_burst" toml:"command_burst" env:"SEEET_COMMAND_BURST"`
}

// DefaultConfig returns the default configuration: the classic small
// board that grows three cards at a time on request.
func DefaultConfig() *Config {
	return &Config{
		Rules: Rules{
			InitialBoardSize: game.DefaultInitialBoardSize,
			ReplenishCount:   game.DefaultReplenishCount,
			MaxBoardSize:     game.DefaultMaxBoardSize,
			AutoReplenish:    false,
			SuccessDelay:     game.DefaultSuccessDelay.String(),
			FailDelay:        game.DefaultFailDelay.String(),
		},
		Server: Server{
			Port:         "9000",
			Addr:         "localhost:9000",
			CommandRate:  20,
			CommandBurst: 10,
		},
	}
}

// Load builds a Config from defaults, the file at path (if path is not
// empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := Decode(cfg, filepath.Ext(path), data); err != nil {
			return nil, err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals data over cfg. ext selects the format: ".yaml",
// ".yml" or ".toml".
func Decode(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

// ParseEnv applies SEEET_* environment overrides.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	r := c.Rules
	if r.InitialBoardSize < 0 || r.InitialBoardSize > game.DeckSize {
		return fmt.Errorf("initial board size must be in 0..%d: %d", game.DeckSize, r.InitialBoardSize)
	}
	if r.ReplenishCount < 0 {
		return fmt.Errorf("replenish count cannot be negative: %d", r.ReplenishCount)
	}
	if r.MaxBoardSize != 0 && r.MaxBoardSize < r.InitialBoardSize {
		return fmt.Errorf("max board size %d is below initial board size %d", r.MaxBoardSize, r.InitialBoardSize)
	}
	success, err := r.successDelay()
	if err != nil {
		return err
	}
	fail, err := r.failDelay()
	if err != nil {
		return err
	}
	// Zero means the engine default; a miss must clear faster than a find.
	if success <= 0 {
		success = game.DefaultSuccessDelay
	}
	if fail <= 0 {
		fail = game.DefaultFailDelay
	}
	if fail >= success {
		return fmt.Errorf("fail delay %s must be shorter than success delay %s", fail, success)
	}
	if c.Server.CommandRate < 0 || c.Server.CommandBurst < 0 {
		return fmt.Errorf("command rate and burst cannot be negative")
	}
	return nil
}

func (r Rules) successDelay() (time.Duration, error) {
	return parseDelay("success delay", r.SuccessDelay)
}

func (r Rules) failDelay() (time.Duration, error) {
	return parseDelay("fail delay", r.FailDelay)
}

func parseDelay(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative", name, s)
	}
	return d, nil
}

// EngineConfig converts the rules into an engine configuration. Call
// Validate first; unparsable delays fall back to the engine defaults.
func (r Rules) EngineConfig() game.EngineConfig {
	success, _ := r.successDelay()
	fail, _ := r.failDelay()
	return game.EngineConfig{
		InitialBoardSize: r.InitialBoardSize,
		ReplenishCount:   r.ReplenishCount,
		MaxBoardSize:     r.MaxBoardSize,
		AutoReplenish:    r.AutoReplenish,
		SuccessDelay:     success,
		FailDelay:        fail,
		Seed:             r.Seed,
	}
}
