// Package wizard provides the interactive first-run setup.
package wizard

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/reelab/reel/internal/config"
)

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run walks the user through the options people actually tune and
// returns a config ready to write. Everything else keeps its default.
func Run() (*config.Config, error) {
	if !IsTerminal() {
		return nil, fmt.Errorf("setup wizard requires a terminal")
	}

	cfg := config.Default()

	strategy := cfg.Cache.Strategy
	startMuted := cfg.Player.StartMuted
	logLevel := cfg.Log.Level
	seenCap := strconv.Itoa(cfg.Ledger.SeenCap)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Media cache").
				Description("Badger keeps fetched media across runs; memory starts cold every time").
				Options(
					huh.NewOption("Persistent (badger)", "badger"),
					huh.NewOption("In-memory only", "memory"),
				).
				Value(&strategy),

			huh.NewConfirm().
				Title("Start playback muted?").
				Description("Muted autoplay is the safe default for embedded surfaces").
				Value(&startMuted),

			huh.NewInput().
				Title("Seen history cap").
				Description("How many watched moment ids to remember").
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}).
				Value(&seenCap),

			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("error", "error"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("info", "info"),
					huh.NewOption("debug", "debug"),
				).
				Value(&logLevel),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("setup cancelled: %w", err)
	}

	cfg.Cache.Strategy = strategy
	cfg.Player.StartMuted = startMuted
	cfg.Log.Level = logLevel
	if n, err := strconv.Atoi(seenCap); err == nil {
		cfg.Ledger.SeenCap = n
	}

	return cfg, nil
}
