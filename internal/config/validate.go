package config

import (
	"errors"
	"fmt"

	reelerrors "github.com/reelab/reel/internal/errors"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Gesture.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gesture: %w", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Rank.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rank: %w", err))
	}
	if err := c.Ledger.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ledger: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", reelerrors.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if c.AutoplayRetries < 0 {
		return errors.New("autoplay_retries must be non-negative")
	}
	if c.ImageDwellMS < 0 || c.AdMinDwellMS < 0 || c.AdMaxDwellMS < 0 {
		return errors.New("dwell times must be non-negative")
	}
	if c.AdMaxDwellMS > 0 && c.AdMinDwellMS > c.AdMaxDwellMS {
		return errors.New("ad_min_dwell_ms must not exceed ad_max_dwell_ms")
	}
	return nil
}

// Validate checks GestureConfig for errors.
func (c *GestureConfig) Validate() error {
	if c.VelocityThreshold < 0 {
		return errors.New("velocity_threshold must be non-negative")
	}
	if c.DistanceFraction <= 0 || c.DistanceFraction >= 1 {
		return errors.New("distance_fraction must be between 0 and 1")
	}
	if c.RubberBand <= 0 || c.RubberBand > 1 {
		return errors.New("rubber_band must be between 0 and 1")
	}
	if c.WheelDebounceMS < 0 {
		return errors.New("wheel_debounce_ms must be non-negative")
	}
	if c.SpringTension <= 0 || c.SpringFriction <= 0 {
		return errors.New("spring tension and friction must be positive")
	}
	return nil
}

// Validate checks CacheConfig for errors.
func (c *CacheConfig) Validate() error {
	switch c.Strategy {
	case "", "badger", "memory":
		// valid
	default:
		return fmt.Errorf("invalid cache strategy: %s (must be badger or memory)", c.Strategy)
	}
	return nil
}

// Validate checks RankConfig for errors.
func (c *RankConfig) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return errors.New("learning_rate must be between 0 and 1")
	}
	if c.NoiseAmplitude < 0 {
		return errors.New("noise_amplitude must be non-negative")
	}
	if c.HistoryPenalty < 0 {
		return errors.New("history_penalty_window must be non-negative")
	}
	return nil
}

// Validate checks LedgerConfig for errors.
func (c *LedgerConfig) Validate() error {
	if c.SeenCap < 1 {
		return errors.New("seen_cap must be positive")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
