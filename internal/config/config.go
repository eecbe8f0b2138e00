// Package config loads goldfish configuration from a YAML file with
// GOLDFISH_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/magefree/mage-goldfish/internal/game"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/manasim"
)

// Config is the full goldfish configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	ManaSim    ManaSimConfig    `mapstructure:"manasim"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Deck       DeckConfig       `mapstructure:"deck"`
	Replay     ReplayConfig     `mapstructure:"replay"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimulationConfig configures the batch of games.
type SimulationConfig struct {
	Games                int    `mapstructure:"games"`
	MaxTurn              int    `mapstructure:"max_turn"`
	Seed                 int64  `mapstructure:"seed"`
	Workers              int    `mapstructure:"workers"`
	OnThePlay            bool   `mapstructure:"on_the_play"`
	StartingLife         int    `mapstructure:"starting_life"`
	OpponentLife         int    `mapstructure:"opponent_life"`
	HandSize             int    `mapstructure:"hand_size"`
	BoardWipeTurn        int    `mapstructure:"board_wipe_turn"`
	SacrificePolicy      string `mapstructure:"sacrifice_policy"`
	MaxTriggerIterations int    `mapstructure:"max_trigger_iterations"`
}

// ManaSimConfig configures the mana simulator.
type ManaSimConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Iterations int  `mapstructure:"iterations"`
}

// CatalogConfig points at the card database. An empty URL means cards are
// read from the deck section.
type CatalogConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
	MaxConns    int32  `mapstructure:"max_conns"`
}

// DeckConfig is the deck to simulate: names resolved through the catalog,
// or full records given inline.
type DeckConfig struct {
	Commander string        `mapstructure:"commander"`
	Names     []string      `mapstructure:"names"`
	Cards     []card.Record `mapstructure:"cards"`
}

// ReplayConfig controls saving a replay of one game of the batch.
type ReplayConfig struct {
	Directory string `mapstructure:"directory"`
	Game      int    `mapstructure:"game"`
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultOptions()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("simulation.games", 1000)
	v.SetDefault("simulation.max_turn", d.MaxTurns)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.on_the_play", d.OnThePlay)
	v.SetDefault("simulation.starting_life", d.StartingLife)
	v.SetDefault("simulation.opponent_life", d.OpponentLife)
	v.SetDefault("simulation.hand_size", d.HandSize)
	v.SetDefault("simulation.board_wipe_turn", 0)
	v.SetDefault("simulation.sacrifice_policy", string(d.SacrificePolicy))
	v.SetDefault("simulation.max_trigger_iterations", d.MaxTriggerIterations)

	v.SetDefault("manasim.enabled", true)
	v.SetDefault("manasim.iterations", 10000)

	v.SetDefault("catalog.max_conns", 4)
	v.SetDefault("replay.game", 0)
}

// Load reads the file at path, when it exists, and applies GOLDFISH_
// environment overrides such as GOLDFISH_SIMULATION_GAMES.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GOLDFISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can be checked without the card catalog.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.Simulation.Games <= 0 {
		return fmt.Errorf("simulation.games must be positive, got %d", c.Simulation.Games)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("simulation.workers must not be negative, got %d", c.Simulation.Workers)
	}
	if err := c.EngineOptions().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if c.ManaSim.Iterations < 0 {
		return fmt.Errorf("manasim.iterations must not be negative, got %d", c.ManaSim.Iterations)
	}
	if c.Replay.Game < 0 || c.Replay.Game >= c.Simulation.Games {
		return fmt.Errorf("replay.game must be in [0, %d), got %d", c.Simulation.Games, c.Replay.Game)
	}
	return nil
}

// EngineOptions converts the simulation section into engine options.
func (c *Config) EngineOptions() game.Options {
	s := c.Simulation
	return game.Options{
		MaxTurns:             s.MaxTurn,
		HandSize:             s.HandSize,
		OnThePlay:            s.OnThePlay,
		StartingLife:         s.StartingLife,
		OpponentLife:         s.OpponentLife,
		BoardWipeTurn:        s.BoardWipeTurn,
		SacrificePolicy:      game.SacrificePolicy(s.SacrificePolicy),
		MaxTriggerIterations: s.MaxTriggerIterations,
	}
}

// ManaSimParams converts the manasim section into simulator parameters.
func (c *Config) ManaSimParams() manasim.Params {
	return manasim.Params{
		Iterations: c.ManaSim.Iterations,
		MaxTurn:    c.Simulation.MaxTurn,
		OnThePlay:  c.Simulation.OnThePlay,
		Seed:       c.Simulation.Seed,
		Workers:    c.Simulation.Workers,
		HandSize:   c.Simulation.HandSize,
	}
}
