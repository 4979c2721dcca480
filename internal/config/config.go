package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	reelerrors "github.com/reelab/reel/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.reelrc, $XDG_CONFIG_HOME/reel/config.toml, ~/.config/reel/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", reelerrors.ErrConfigNotFound, path)
		}
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the preferred location for a new config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "reel", "config.toml")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".reelrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "reel", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Cache
	if v := os.Getenv("REEL_CACHE_STRATEGY"); v != "" {
		cfg.Cache.Strategy = v
	}
	if v := os.Getenv("REEL_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}

	// Gesture
	if v := os.Getenv("REEL_GESTURE_VELOCITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gesture.VelocityThreshold = f
		}
	}
	if v := os.Getenv("REEL_GESTURE_WHEEL_DEBOUNCE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Gesture.WheelDebounceMS = i
		}
	}

	// Rank
	if v := os.Getenv("REEL_RANK_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Rank.LearningRate = f
		}
	}

	// Log
	if v := os.Getenv("REEL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REEL_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
