// Package config defines game configuration and its loading hooks.
//
// Values are layered: defaults from New, then an optional YAML file, then
// TRIO_* environment variables.
package config

import (
	"fmt"
	"math"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the local display/input
	// collaborator. Empty disables the HTTP server.
	Addr string `koanf:"addr"`

	HumanPlayers    int `koanf:"human_players"`
	ComputerPlayers int `koanf:"computer_players"`

	// TableSize is the number of slots on the board.
	TableSize int `koanf:"table_size"`

	// FeatureCount and FeatureSize define the card universe: every card
	// has FeatureCount features taking FeatureSize values each.
	FeatureCount int `koanf:"feature_count"`
	FeatureSize  int `koanf:"feature_size"`

	// DeckSize limits the universe to the first DeckSize cards. Zero means
	// FeatureSize^FeatureCount.
	DeckSize int `koanf:"deck_size"`

	TurnTimeoutMS        int `koanf:"turn_timeout_ms"`
	TurnTimeoutWarningMS int `koanf:"turn_timeout_warning_ms"`
	PointFreezeMS        int `koanf:"point_freeze_ms"`
	PenaltyFreezeMS      int `koanf:"penalty_freeze_ms"`

	// TableDelayMS pauses the dealer between card placements.
	TableDelayMS int `koanf:"table_delay_ms"`

	// TickMS bounds how long the dealer sleeps before refreshing the countdown.
	TickMS int `koanf:"tick_ms"`

	// ComputerDelayMS pauses simulated players between key presses.
	ComputerDelayMS int `koanf:"computer_delay_ms"`

	// Hints logs the matches present on the table after every deal.
	Hints bool `koanf:"hints"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		HumanPlayers:         0,
		ComputerPlayers:      2,
		TableSize:            12,
		FeatureCount:         4,
		FeatureSize:          3,
		DeckSize:             0,
		TurnTimeoutMS:        60_000,
		TurnTimeoutWarningMS: 5_000,
		PointFreezeMS:        1_000,
		PenaltyFreezeMS:      3_000,
		TableDelayMS:         0,
		TickMS:               1_000,
		ComputerDelayMS:      0,
		Hints:                false,
	}
}

// Players returns the total number of seated players.
func (c *Config) Players() int {
	return c.HumanPlayers + c.ComputerPlayers
}

// Universe returns the number of distinct cards the features can encode.
func (c *Config) Universe() int {
	return int(math.Pow(float64(c.FeatureSize), float64(c.FeatureCount)))
}

// EffectiveDeckSize resolves DeckSize against the universe.
func (c *Config) EffectiveDeckSize() int {
	if c.DeckSize <= 0 || c.DeckSize > c.Universe() {
		return c.Universe()
	}
	return c.DeckSize
}

// TurnTimeout returns the round timeout as a duration.
func (c *Config) TurnTimeout() time.Duration { return ms(c.TurnTimeoutMS) }

// TurnTimeoutWarning returns the warning threshold as a duration.
func (c *Config) TurnTimeoutWarning() time.Duration { return ms(c.TurnTimeoutWarningMS) }

// PointFreeze returns the freeze after a point.
func (c *Config) PointFreeze() time.Duration { return ms(c.PointFreezeMS) }

// PenaltyFreeze returns the freeze after a penalty.
func (c *Config) PenaltyFreeze() time.Duration { return ms(c.PenaltyFreezeMS) }

// TableDelay returns the pause between card placements.
func (c *Config) TableDelay() time.Duration { return ms(c.TableDelayMS) }

// Tick returns the dealer wake interval.
func (c *Config) Tick() time.Duration { return ms(c.TickMS) }

// ComputerDelay returns the pause between simulated key presses.
func (c *Config) ComputerDelay() time.Duration { return ms(c.ComputerDelayMS) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Validate checks the configuration for values the game cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Players() < 1:
		return fmt.Errorf("%w: at least one player is required", ErrInvalidConfig)
	case c.HumanPlayers < 0 || c.ComputerPlayers < 0:
		return fmt.Errorf("%w: player counts must not be negative", ErrInvalidConfig)
	case c.TableSize < 3:
		return fmt.Errorf("%w: table_size must be at least 3", ErrInvalidConfig)
	case c.FeatureCount < 1 || c.FeatureSize < 2:
		return fmt.Errorf("%w: feature_count must be >= 1 and feature_size >= 2", ErrInvalidConfig)
	case c.FeatureSize > 3:
		return fmt.Errorf("%w: feature_size above 3 cannot form a triple of distinct values", ErrInvalidConfig)
	case c.TurnTimeoutMS <= 0:
		return fmt.Errorf("%w: turn_timeout_ms must be positive", ErrInvalidConfig)
	case c.TickMS <= 0:
		return fmt.Errorf("%w: tick_ms must be positive", ErrInvalidConfig)
	case c.PointFreezeMS < 0 || c.PenaltyFreezeMS < 0 || c.TableDelayMS < 0 || c.ComputerDelayMS < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	return nil
}
